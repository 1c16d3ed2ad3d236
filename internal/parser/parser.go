package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/regdiff/internal/diff"
	"github.com/dgallion1/regdiff/internal/doctree"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tunes parser behavior.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF reader fails.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can compare.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", "":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported. Files
// without an extension are read as plain text.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == "" || SupportedExtensions[ext]
}

// Load parses data according to the filename's extension. Text formats are
// decoded first, so invalid encodings surface as *diff.DecodingError.
func Load(filename string, data []byte, opts Options) (*doctree.Document, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	if isTextFormat(filename) {
		text, err := diff.Decode(filename, data)
		if err != nil {
			return nil, err
		}
		data = []byte(text)
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

func isTextFormat(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return false
	}
	return true
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
