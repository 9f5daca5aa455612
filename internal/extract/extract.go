// Package extract pulls plain text out of uploaded company documents so
// they can ride along in deliberation prompts. Extraction is best
// effort and never fails a file upload: unsupported or unreadable
// content degrades to a placeholder.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/prototypeforge/aicxo/internal/database"
)

// maxTextLen bounds extracted text so a huge upload cannot blow up
// meeting prompts or the database row.
const maxTextLen = 50000

// Result is the outcome of a text extraction attempt
type Result struct {
	Text   string
	Status database.ExtractionStatus
}

// Text extracts readable text from a document. The MIME type decides
// the strategy; anything unrecognized gets a placeholder.
func Text(filename, mimeType string, data []byte) Result {
	switch {
	case len(data) == 0:
		return Result{
			Text:   fmt.Sprintf("[Empty file: %s]", filename),
			Status: database.ExtractionStatusEmpty,
		}
	case isTextual(mimeType):
		return bounded(string(data))
	case mimeType == "application/pdf":
		return pdfText(data, filename)
	case strings.HasPrefix(mimeType, "image/"):
		// Vision-capable models receive the raw image instead
		return Result{
			Text:   fmt.Sprintf("[Image file: %s]", filename),
			Status: database.ExtractionStatusUnsupported,
		}
	default:
		return Result{
			Text:   fmt.Sprintf("[Unsupported file type %s: %s]", mimeType, filename),
			Status: database.ExtractionStatusUnsupported,
		}
	}
}

func isTextual(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/yaml", "application/x-yaml":
		return true
	}
	return false
}

// pdfText extracts text from PDF page content streams. PDF stores text
// as show-text operators rather than plain runs, so this walks each
// page's content and collects the string operands.
func pdfText(data []byte, filename string) Result {
	ctx, err := api.ReadContext(bytes.NewReader(data), nil)
	if err != nil {
		return Result{
			Text:   fmt.Sprintf("[Unreadable PDF: %s]", filename),
			Status: database.ExtractionStatusUnsupported,
		}
	}
	if err := api.ValidateContext(ctx); err != nil {
		return Result{
			Text:   fmt.Sprintf("[Invalid PDF: %s]", filename),
			Status: database.ExtractionStatusUnsupported,
		}
	}

	var b strings.Builder
	for i := 1; i <= ctx.PageCount; i++ {
		r, err := pdfcpu.ExtractPageContent(ctx, i)
		if err != nil || r == nil {
			continue
		}
		var content bytes.Buffer
		if _, err := content.ReadFrom(r); err != nil {
			continue
		}
		pageText := textFromContentStream(content.String())
		if pageText == "" {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
		if b.Len() > maxTextLen*4 {
			break
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return Result{
			Text:   fmt.Sprintf("[No extractable text in PDF: %s]", filename),
			Status: database.ExtractionStatusEmpty,
		}
	}

	return bounded(text)
}

// textFromContentStream collects the parenthesized string operands of
// Tj/TJ show-text operators. Escapes are resolved; non-text operators
// and positioning numbers are skipped.
func textFromContentStream(content string) string {
	var b strings.Builder
	depth := 0

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch {
		case ch == '\\' && depth > 0 && i+1 < len(content):
			i++
			switch content[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '(', ')', '\\':
				b.WriteByte(content[i])
			}
		case ch == '(':
			depth++
			if depth == 1 && b.Len() > 0 {
				b.WriteByte(' ')
			}
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case depth > 0:
			b.WriteByte(ch)
		}
	}

	return strings.TrimSpace(b.String())
}

func bounded(text string) Result {
	runes := []rune(text)
	if len(runes) > maxTextLen {
		text = string(runes[:maxTextLen])
	}
	return Result{Text: text, Status: database.ExtractionStatusSuccess}
}
