package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/regdiff/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Inline markup is
// dropped so that emphasis changes do not show up as paragraph edits.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	root := goldmark.New().Parser().Parse(text.NewReader(src))
	doc := &doctree.Document{Title: trimExt(filename, ".md", ".markdown")}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			doc.AddHeading(node.Level, extractText(node, src))
		case *ast.List:
			// One block per list so items stay bullet-separated paragraphs.
			var items []string
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := extractText(item, src); t != "" {
					items = append(items, "- "+t)
				}
			}
			doc.AddText(strings.Join(items, "\n"), 0)
		case *ast.ThematicBreak:
		default:
			doc.AddText(extractText(n, src), 0)
		}
	}
	return doc, nil
}

// extractText gets the text content of a goldmark AST node. Code and raw
// HTML blocks contribute their source lines, everything else its inline text.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(src))
		default:
			if buf.Len() > 0 && c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
