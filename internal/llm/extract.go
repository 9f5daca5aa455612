package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// codeBlockPattern matches markdown code blocks with an optional language tag.
var codeBlockPattern = regexp.MustCompile("(?s)```" + `(\w*)\s*\n?(.+?)` + "```")

// opinionTruncateLen bounds how much raw text a degraded opinion carries.
const opinionTruncateLen = 500

// summaryTruncateLen bounds how much raw text a degraded summary carries.
const summaryTruncateLen = 1000

// formatViolationNote is the reasoning recorded when a reply could not be
// parsed as JSON and the raw text was used instead.
const formatViolationNote = "Response was not in expected JSON format."

// OpinionFields is the structured result expected from a board member call.
type OpinionFields struct {
	Opinion    string  `json:"opinion"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// SynthesisFields is the structured result expected from the chair call.
type SynthesisFields struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// ExtractJSON extracts a JSON document from a model reply that may be
// wrapped in markdown or surrounded by prose. Priority:
//  1. the reply as-is
//  2. ```json ... ``` or untagged ``` ... ``` code blocks
//  3. the first brace-delimited substring (bracket matched, string aware)
func ExtractJSON(reply string) (string, error) {
	trimmed := strings.TrimSpace(reply)
	if isValidJSON(trimmed) {
		return trimmed, nil
	}

	if jsonStr, found := extractFromCodeBlock(reply); found {
		return jsonStr, nil
	}

	if jsonStr, found := extractRawJSON(reply); found {
		return jsonStr, nil
	}

	return "", fmt.Errorf("no valid JSON object found in reply")
}

// extractFromCodeBlock finds JSON inside markdown code blocks.
func extractFromCodeBlock(reply string) (string, bool) {
	matches := codeBlockPattern.FindAllStringSubmatch(reply, -1)

	for _, match := range matches {
		if len(match) < 3 {
			continue
		}

		lang := strings.ToLower(match[1])
		content := strings.TrimSpace(match[2])

		// Accept json or no language tag; skip blocks tagged as other languages.
		if lang != "" && lang != "json" {
			continue
		}

		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			if isValidJSON(content) {
				return content, true
			}
		}
	}

	return "", false
}

// extractRawJSON finds the first JSON object or array embedded in prose.
func extractRawJSON(reply string) (string, bool) {
	startObj := strings.Index(reply, "{")
	startArr := strings.Index(reply, "[")

	start := -1
	endChar := byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		endChar = ']'
	}

	if start < 0 {
		return "", false
	}

	jsonStr := findMatchingBracket(reply[start:], endChar)
	if jsonStr != "" && isValidJSON(jsonStr) {
		return jsonStr, true
	}

	return "", false
}

// findMatchingBracket returns the prefix of s up to the bracket matching
// s[0], skipping brackets inside JSON strings.
func findMatchingBracket(s string, closeChar byte) string {
	if len(s) == 0 {
		return ""
	}

	openChar := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return ""
}

// isValidJSON checks if a string is valid JSON.
func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

// NormalizeOpinion extracts the structured opinion fields from a model reply.
//
// In strict mode the reply was requested under a JSON response contract, so
// a parse failure is a hard error rather than something to paper over. In
// non-strict mode the reply is searched for embedded JSON and, failing that,
// degraded into a record carrying the raw text with neutral confidence —
// free-form models are not contractually bound to the schema and a single
// malformed reply must not fail the deliberation.
func NormalizeOpinion(reply string, strict bool) (OpinionFields, error) {
	if strict {
		fields, err := decodeOpinion(strings.TrimSpace(reply))
		if err != nil {
			return OpinionFields{}, fmt.Errorf("strict JSON reply did not parse: %w", err)
		}
		return fields, nil
	}

	jsonStr, err := ExtractJSON(reply)
	if err == nil {
		if fields, decodeErr := decodeOpinion(jsonStr); decodeErr == nil {
			return fields, nil
		}
	}

	return OpinionFields{
		Opinion:    truncate(strings.TrimSpace(reply), opinionTruncateLen),
		Reasoning:  formatViolationNote,
		Confidence: 0.5,
	}, nil
}

// NormalizeSynthesis extracts the chair's summary and recommendation from a
// model reply, with the same strict/degraded split as NormalizeOpinion.
func NormalizeSynthesis(reply string, strict bool) (SynthesisFields, error) {
	if strict {
		var fields SynthesisFields
		if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &fields); err != nil {
			return SynthesisFields{}, fmt.Errorf("strict JSON reply did not parse: %w", err)
		}
		return fields, nil
	}

	if jsonStr, err := ExtractJSON(reply); err == nil {
		var fields SynthesisFields
		if json.Unmarshal([]byte(jsonStr), &fields) == nil && fields.Summary != "" {
			return fields, nil
		}
	}

	return SynthesisFields{
		Summary:        truncate(strings.TrimSpace(reply), summaryTruncateLen),
		Recommendation: "See summary above for details.",
	}, nil
}

// decodeOpinion unmarshals opinion fields, tolerating a confidence encoded
// as a JSON string and clamping it into [0,1].
func decodeOpinion(jsonStr string) (OpinionFields, error) {
	var raw struct {
		Opinion    string          `json:"opinion"`
		Reasoning  string          `json:"reasoning"`
		Confidence json.RawMessage `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return OpinionFields{}, err
	}

	fields := OpinionFields{
		Opinion:    raw.Opinion,
		Reasoning:  raw.Reasoning,
		Confidence: 0.5,
	}

	if len(raw.Confidence) > 0 {
		if c, ok := parseConfidence(raw.Confidence); ok {
			fields.Confidence = clamp01(c)
		}
	}

	return fields, nil
}

// parseConfidence accepts a confidence as a JSON number or numeric string.
func parseConfidence(raw json.RawMessage) (float64, bool) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if num, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return num, true
		}
	}

	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncate bounds s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
