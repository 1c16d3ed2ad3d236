package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/regdiff/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs styled Title or Heading1-6
// become headings; tables contribute one block per row.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	d, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &doctree.Document{Title: trimExt(filename, ".docx")}
	for _, item := range d.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if level := docxHeadingLevel(it); level > 0 {
				doc.AddHeading(level, text)
			} else {
				doc.AddText(text, 0)
			}
		case *docx.Table:
			for _, row := range it.TableRows {
				doc.AddText(docxRowText(row), 0)
			}
		}
	}
	return doc, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(style, "heading"); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
		return int(rest[0] - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.Tab:
				buf.WriteByte('\t')
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxRowText(row *docx.WTableRow) string {
	var cells []string
	for _, cell := range row.TableCells {
		var parts []string
		for _, para := range cell.Paragraphs {
			if t := docxParagraphText(para); t != "" {
				parts = append(parts, t)
			}
		}
		cells = append(cells, strings.Join(parts, " "))
	}
	return strings.TrimSpace(strings.Join(cells, " | "))
}
