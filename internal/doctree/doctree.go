package doctree

import "strings"

// Document is an uploaded file reduced to an ordered list of blocks.
type Document struct {
	Title  string  // From metadata or filename
	Blocks []Block // Headings and body text in reading order
}

// Block is a heading (Level 1-6) or a body paragraph (Level 0).
type Block struct {
	Level int
	Text  string
	Page  int // Source page, 0 if N/A
}

// AddHeading appends a heading block. Empty headings are skipped.
func (d *Document) AddHeading(level int, text string) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return
	}
	d.Blocks = append(d.Blocks, Block{Level: min(max(level, 1), 6), Text: text})
}

// AddText appends a body block. Blank text is skipped.
func (d *Document) AddText(text string, page int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	d.Blocks = append(d.Blocks, Block{Text: text, Page: page})
}

// Structured reports whether the document carries explicit headings.
func (d *Document) Structured() bool {
	for _, b := range d.Blocks {
		if b.Level > 0 {
			return true
		}
	}
	return false
}

// Render produces the text the section differ consumes. Blocks are separated
// by blank lines and headings become ATX headings ("## Fees") so that a
// heading always starts a line that follows a blank line.
func (d *Document) Render() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if b.Level > 0 {
			sb.WriteString(strings.Repeat("#", b.Level))
			sb.WriteByte(' ')
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}
