package document

import (
	"bytes"
	_ "embed"

	"github.com/go-pdf/fpdf"
)

const pdfFont = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	fontOblique []byte
)

// PDF renders A4 portrait pages with a centered title and one block per entry.
// Text is set in an embedded UTF-8 font so non-Latin scripts survive.
type PDF struct {
	// Uncompressed leaves content streams readable; used by tests.
	Uncompressed bool
}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return "pdf" }

func (p PDF) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!p.Uncompressed)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(doc.Title, true)
	pdf.AddUTF8FontFromBytes(pdfFont, "", fontRegular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", fontBold)
	pdf.AddUTF8FontFromBytes(pdfFont, "I", fontOblique)
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 20)
	pdf.CellFormat(0, 12, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	for _, b := range doc.Blocks {
		pdf.SetFont(pdfFont, "B", sizeTimestamp)
		pdf.CellFormat(0, 7, b.Timestamp, "", 1, "L", false, 0, "")

		pdf.SetFont(pdfFont, "I", sizeFeeling)
		pdf.CellFormat(0, 6, b.Feeling, "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont(pdfFont, "", sizeBody)
		pdf.MultiCell(0, 6, b.Body, "", "J", false)
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
