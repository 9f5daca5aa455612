// Package report renders completed deliberations for export.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/types"
)

// Format selects the output rendering
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Render produces a report of the meeting's current version
func Render(m *database.Meeting, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(m), nil
	case FormatText:
		return renderText(m), nil
	default:
		return "", types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown report format %q", format))
	}
}

func renderMarkdown(m *database.Meeting) string {
	var b strings.Builder

	b.WriteString("# Board Meeting Report\n\n")
	fmt.Fprintf(&b, "**Question:** %s\n\n", m.Question)
	if m.Context != "" {
		fmt.Fprintf(&b, "**Context:** %s\n\n", m.Context)
	}
	fmt.Fprintf(&b, "**Status:** %s · **Version:** %d · **Held:** %s\n\n",
		m.Status, m.CurrentVersion, m.CreatedAt.Format(time.RFC1123))

	if len(m.AttachedFiles) > 0 {
		b.WriteString("**Documents considered:**\n\n")
		for _, f := range m.AttachedFiles {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Filename, f.Category)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Board Member Opinions\n\n")
	for _, op := range m.Opinions {
		fmt.Fprintf(&b, "### %s — %s\n\n", op.AgentName, op.AgentRole)
		if op.Error {
			fmt.Fprintf(&b, "_This member could not contribute: %s_\n\n", op.ErrorDetail)
			continue
		}
		fmt.Fprintf(&b, "%s\n\n", op.Opinion)
		fmt.Fprintf(&b, "**Reasoning:** %s\n\n", op.Reasoning)
		fmt.Fprintf(&b, "**Confidence:** %.0f%% · **Model:** %s\n\n", op.Confidence*100, op.ModelUsed)
	}

	if m.ChairSummary != "" {
		b.WriteString("## Chair's Summary\n\n")
		fmt.Fprintf(&b, "%s\n\n", m.ChairSummary)
		b.WriteString("## Recommendation\n\n")
		fmt.Fprintf(&b, "%s\n\n", m.ChairRecommendation)
	}

	if len(m.FollowUps) > 0 {
		b.WriteString("## Follow-up Questions\n\n")
		for _, fu := range m.FollowUps {
			fmt.Fprintf(&b, "**Q:** %s\n\n", fu.Question)
			fmt.Fprintf(&b, "**A:** %s\n\n", fu.Answer)
		}
	}

	fmt.Fprintf(&b, "---\n\nTokens used: %d · Cost: $%.4f\n", m.TotalTokensUsed, m.TotalCostUSD)

	return b.String()
}

func renderText(m *database.Meeting) string {
	var b strings.Builder

	rule := strings.Repeat("=", 60)
	b.WriteString(rule + "\nBOARD MEETING REPORT\n" + rule + "\n\n")
	fmt.Fprintf(&b, "Question: %s\n", m.Question)
	if m.Context != "" {
		fmt.Fprintf(&b, "Context:  %s\n", m.Context)
	}
	fmt.Fprintf(&b, "Status:   %s (version %d)\n", m.Status, m.CurrentVersion)
	fmt.Fprintf(&b, "Held:     %s\n\n", m.CreatedAt.Format(time.RFC1123))

	b.WriteString("BOARD MEMBER OPINIONS\n" + strings.Repeat("-", 60) + "\n")
	for _, op := range m.Opinions {
		fmt.Fprintf(&b, "\n%s (%s)\n", op.AgentName, op.AgentRole)
		if op.Error {
			fmt.Fprintf(&b, "  [no contribution: %s]\n", op.ErrorDetail)
			continue
		}
		fmt.Fprintf(&b, "  Opinion:    %s\n", op.Opinion)
		fmt.Fprintf(&b, "  Reasoning:  %s\n", op.Reasoning)
		fmt.Fprintf(&b, "  Confidence: %.0f%%\n", op.Confidence*100)
	}

	if m.ChairSummary != "" {
		b.WriteString("\nCHAIR'S SUMMARY\n" + strings.Repeat("-", 60) + "\n")
		fmt.Fprintf(&b, "%s\n", m.ChairSummary)
		b.WriteString("\nRECOMMENDATION\n" + strings.Repeat("-", 60) + "\n")
		fmt.Fprintf(&b, "%s\n", m.ChairRecommendation)
	}

	if len(m.FollowUps) > 0 {
		b.WriteString("\nFOLLOW-UPS\n" + strings.Repeat("-", 60) + "\n")
		for _, fu := range m.FollowUps {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", fu.Question, fu.Answer)
		}
	}

	fmt.Fprintf(&b, "\nTokens used: %d   Cost: $%.4f\n", m.TotalTokensUsed, m.TotalCostUSD)

	return b.String()
}
