package document

import (
	"bytes"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"
)

// DOCX renders a WordprocessingML document from the godocx default template.
type DOCX struct{}

func (DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (DOCX) Extension() string { return "docx" }

// spacing after each paragraph kind, in twentieths of a point
const (
	spacingTimestamp = 120
	spacingFeeling   = 240
	spacingBody      = 480
)

// run sizes in points; the PDF renderer uses the same scale
const (
	sizeTitle     = 16
	sizeTimestamp = 12
	sizeFeeling   = 11
	sizeBody      = 12
)

type runStyle struct {
	bold   bool
	italic bool
	size   uint64
}

func (d DOCX) Render(doc Document) ([]byte, error) {
	rd, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}

	title := addParagraph(rd, doc.Title, runStyle{bold: true, size: sizeTitle}, spacingBody)
	title.Justification(stypes.JustificationCenter)
	for _, b := range doc.Blocks {
		addParagraph(rd, b.Timestamp, runStyle{bold: true, size: sizeTimestamp}, spacingTimestamp)
		addParagraph(rd, b.Feeling, runStyle{italic: true, size: sizeFeeling}, spacingFeeling)
		addParagraph(rd, b.Body, runStyle{size: sizeBody}, spacingBody)
	}

	var buf bytes.Buffer
	if err := rd.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addParagraph appends one paragraph; newlines in text become line breaks.
func addParagraph(rd *docx.RootDoc, text string, style runStyle, spacingAfter uint64) *docx.Paragraph {
	p := rd.AddEmptyParagraph()
	ct := p.GetCT()
	if ct.Property == nil {
		ct.Property = ctypes.DefaultParaProperty()
	}
	ct.Property.Spacing = &ctypes.Spacing{After: &spacingAfter}

	if text == "" {
		return p
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if i > 0 {
			p.AddRun().AddBreak(nil)
		}
		r := p.AddText(line).Size(style.size)
		if style.bold {
			r.Bold(true)
		}
		if style.italic {
			r.Italic(true)
		}
	}
	return p
}
