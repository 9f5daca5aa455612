package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prototypeforge/aicxo/internal/database"
)

func TestText_PlainText(t *testing.T) {
	r := Text("notes.txt", "text/plain", []byte("Q2 revenue grew 14%."))

	assert.Equal(t, database.ExtractionStatusSuccess, r.Status)
	assert.Equal(t, "Q2 revenue grew 14%.", r.Text)
}

func TestText_TextualMIMETypes(t *testing.T) {
	for _, mt := range []string{"text/csv", "text/markdown", "application/json", "application/yaml"} {
		r := Text("data", mt, []byte("content"))
		assert.Equal(t, database.ExtractionStatusSuccess, r.Status, mt)
		assert.Equal(t, "content", r.Text, mt)
	}
}

func TestText_EmptyFile(t *testing.T) {
	r := Text("empty.txt", "text/plain", nil)

	assert.Equal(t, database.ExtractionStatusEmpty, r.Status)
	assert.Equal(t, "[Empty file: empty.txt]", r.Text)
}

func TestText_Image(t *testing.T) {
	r := Text("chart.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})

	assert.Equal(t, database.ExtractionStatusUnsupported, r.Status)
	assert.Equal(t, "[Image file: chart.png]", r.Text)
}

func TestText_UnsupportedType(t *testing.T) {
	r := Text("deck.key", "application/x-iwork-keynote", []byte{0x01})

	assert.Equal(t, database.ExtractionStatusUnsupported, r.Status)
	assert.Contains(t, r.Text, "Unsupported file type")
	assert.Contains(t, r.Text, "deck.key")
}

func TestText_CorruptPDF(t *testing.T) {
	r := Text("broken.pdf", "application/pdf", []byte("not a pdf at all"))

	assert.Equal(t, database.ExtractionStatusUnsupported, r.Status)
	assert.Contains(t, r.Text, "broken.pdf")
}

func TestText_BoundsHugeDocuments(t *testing.T) {
	huge := strings.Repeat("x", maxTextLen+1000)
	r := Text("huge.txt", "text/plain", []byte(huge))

	assert.Equal(t, database.ExtractionStatusSuccess, r.Status)
	assert.Len(t, r.Text, maxTextLen)
}

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "single Tj operand",
			content: "BT /F1 12 Tf (Hello board) Tj ET",
			want:    "Hello board",
		},
		{
			name:    "TJ array with kerning numbers",
			content: "BT [(Rev)-20(enue)] TJ ET",
			want:    "Rev enue",
		},
		{
			name:    "escaped parentheses",
			content: `(margin \(gross\)) Tj`,
			want:    `margin (gross)`,
		},
		{
			name:    "escaped newline",
			content: `(line one\nline two) Tj`,
			want:    "line one\nline two",
		},
		{
			name:    "no text operators",
			content: "0 0 100 100 re f",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textFromContentStream(tt.content))
		})
	}
}
