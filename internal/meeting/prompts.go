package meeting

import (
	"fmt"
	"strings"

	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/llm"
)

// fileExcerptLimit caps how much extracted text from a single document
// goes into a prompt.
const fileExcerptLimit = 2000

// defaultChairSystemPrompt is used when no chair agent has been configured
const defaultChairSystemPrompt = `You are the Chair of the Board of Directors. Your role is to synthesize the opinions of all board members and provide a unified recommendation.

You must:
1. Consider all perspectives presented by board members
2. Weigh opinions based on their confidence levels and relevance to their expertise
3. Identify areas of consensus and disagreement
4. Formulate a clear, actionable recommendation`

// weightsSection renders an agent's expertise weights as percentages
func weightsSection(w database.Weights) string {
	return fmt.Sprintf(`Your expertise weights in different areas:
- Finance: %.0f%%
- Technology: %.0f%%
- Operations: %.0f%%
- People & HR: %.0f%%
- Logistics: %.0f%%

Focus more on areas where your expertise weight is higher.`,
		w.Finance*100, w.Technology*100, w.Operations*100, w.PeopleHR*100, w.Logistics*100)
}

// opinionSystemPrompt builds the system message for a board member
func opinionSystemPrompt(agent *database.Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the %s on a corporate Board of Directors.\n\n", agent.Name, agent.Role)
	b.WriteString(agent.SystemPrompt)
	b.WriteString("\n\n")
	b.WriteString(weightsSection(agent.Weights))
	b.WriteString(`

You must provide your expert opinion on questions brought to the board. Be professional, insightful, and consider the perspective of your role.

You MUST respond with ONLY a valid JSON object (no markdown, no explanation before or after) in this exact structure:
{
    "opinion": "Your clear, concise opinion on the matter",
    "reasoning": "Detailed reasoning behind your opinion",
    "confidence": 0.85
}

The confidence value must be a number between 0.0 and 1.0.`)
	return b.String()
}

// opinionUserMessage builds the deliberation request for one agent.
// Documents the model can consume natively ride along as parts; the
// rest contribute extracted-text excerpts.
func opinionUserMessage(agent *database.Agent, question, context string, files []*database.CompanyFile) llm.Message {
	caps := llm.Capabilities(agent.Model)

	var b strings.Builder
	b.WriteString("The board has received the following question for deliberation:\n\n")
	fmt.Fprintf(&b, "QUESTION: %s\n", question)
	if context != "" {
		fmt.Fprintf(&b, "\nADDITIONAL CONTEXT: %s\n", context)
	}

	var parts []llm.Part
	var textFiles []*database.CompanyFile
	for _, f := range files {
		switch {
		case caps.Vision && isImage(f.MIMEType) && len(f.RawData) > 0:
			parts = append(parts, llm.ImagePart(f.MIMEType, f.RawData))
		case caps.FileInput && f.MIMEType == "application/pdf" && len(f.RawData) > 0:
			parts = append(parts, llm.FilePart(f.Filename, f.MIMEType, f.RawData))
		default:
			textFiles = append(textFiles, f)
		}
	}

	if len(textFiles) > 0 {
		b.WriteString("\n=== COMPANY DOCUMENTS ===\n")
		for _, f := range textFiles {
			fmt.Fprintf(&b, "\n--- %s (%s) ---\n", f.Filename, f.Category)
			b.WriteString(truncateRunes(f.Content, fileExcerptLimit))
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nPlease provide your professional opinion as the %s. Remember to respond with ONLY valid JSON.", agent.Role)

	if len(parts) == 0 {
		return llm.NewUserMessage(b.String())
	}

	all := append([]llm.Part{llm.TextPart(b.String())}, parts...)
	return llm.NewMultimodalMessage(all...)
}

// chairSystemPrompt builds the synthesis system message
func chairSystemPrompt(chair *database.Agent) string {
	return chair.SystemPrompt + `

You MUST respond with ONLY a valid JSON object (no markdown, no explanation before or after) in this exact structure:
{
    "summary": "A comprehensive summary of the board's discussion and key points raised",
    "recommendation": "Your final recommendation based on the collective wisdom of the board"
}`
}

// chairUserMessage builds the synthesis request over the board's opinions
func chairUserMessage(question, context string, opinions []database.Opinion) string {
	var b strings.Builder
	b.WriteString("QUESTION PRESENTED TO THE BOARD:\n")
	b.WriteString(question)
	b.WriteString("\n")
	if context != "" {
		fmt.Fprintf(&b, "\nCONTEXT: %s\n", context)
	}

	b.WriteString("\nBOARD MEMBER OPINIONS:\n")
	for _, op := range opinions {
		fmt.Fprintf(&b, `
--- %s (%s) ---
Opinion: %s
Reasoning: %s
Confidence: %.0f%%

`, op.AgentName, op.AgentRole, op.Opinion, op.Reasoning, op.Confidence*100)
	}

	b.WriteString("\nPlease synthesize these opinions and provide your recommendation as Chair of the Board. Remember to respond with ONLY valid JSON.")
	return b.String()
}

// followUpSystemPrompt builds the system message for answering a
// follow-up question
func followUpSystemPrompt(chair *database.Agent) string {
	return chair.SystemPrompt + `

You are responding to a follow-up question from the board meeting. Be specific, actionable, and reference the original discussion when relevant.`
}

// followUpUserMessage builds the follow-up request with the original
// deliberation as grounding
func followUpUserMessage(meeting *database.Meeting, question string) string {
	var lines []string
	for _, op := range meeting.Opinions {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", op.AgentName, op.AgentRole, op.Opinion))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ORIGINAL QUESTION:\n%s\n\n", meeting.Question)
	fmt.Fprintf(&b, "ORIGINAL BOARD RECOMMENDATION:\n%s\n\n", meeting.ChairRecommendation)
	fmt.Fprintf(&b, "BOARD MEMBER OPINIONS SUMMARY:\n%s\n\n", strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "FOLLOW-UP QUESTION:\n%s\n\n", question)
	b.WriteString("Please provide a detailed, actionable response to this follow-up question. Reference specific points from the original discussion where relevant. Be practical and specific with recommendations.")
	return b.String()
}

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
