// Package document renders a titled list of dated text blocks into
// downloadable formats. Renderers share one block model so PDF and DOCX
// carry identical content.
package document

// Block is one rendered entry. Feeling holds the full display line
// ("Feeling: Happy") or is empty.
type Block struct {
	Timestamp string
	Feeling   string
	Body      string
}

type Document struct {
	Title  string
	Blocks []Block
}

// Renderer turns a Document into a file body.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}
