package parser

import (
	"io"

	"github.com/dgallion1/regdiff/internal/doctree"
)

// TextParser handles plain text files. The text is kept verbatim as one
// body block: blank lines and heading lines carry the section structure.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := &doctree.Document{Title: trimExt(filename, ".txt")}
	doc.AddText(string(src), 0)
	return doc, nil
}
