package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/regdiff/internal/doctree"
	"github.com/dgallion1/regdiff/internal/parser"
	"github.com/dgallion1/regdiff/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// SectionsCmd implements the 'sections' command.
type SectionsCmd struct {
	Old string `arg:"" type:"existingfile" help:"Old document version"`
	New string `arg:"" type:"existingfile" help:"New document version"`
}

func (c *SectionsCmd) Run(g *Global, root *CLI) error {
	in, err := loadPair(c.Old, c.New, root)
	if err != nil {
		return err
	}
	cmp := pipeline.NewComparator(nil, nil, nil, g.Logger, 0).Sections(in)
	return emit(g, root.Format, cmp.Result)
}

// ParagraphsCmd implements the 'paragraphs' command.
type ParagraphsCmd struct {
	Old     string   `arg:"" type:"existingfile" help:"Old document version"`
	New     string   `arg:"" type:"existingfile" help:"New document version"`
	Section []string `short:"s" help:"Restrict output to these section identifiers (repeatable)"`
}

func (c *ParagraphsCmd) Run(g *Global, root *CLI) error {
	in, err := loadPair(c.Old, c.New, root)
	if err != nil {
		return err
	}
	res, err := pipeline.NewComparator(nil, nil, nil, g.Logger, 0).Paragraphs(context.Background(), in, c.Section)
	if err != nil {
		return fmt.Errorf("compare paragraphs: %w", err)
	}
	return emit(g, root.Format, res)
}

func loadPair(oldPath, newPath string, root *CLI) (pipeline.Input, error) {
	opts := parser.Options{PDFFallbackPdftotext: root.Pdftotext}
	oldDoc, err := loadFile(oldPath, opts)
	if err != nil {
		return pipeline.Input{}, err
	}
	newDoc, err := loadFile(newPath, opts)
	if err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{Old: oldDoc, New: newDoc}, nil
}

func loadFile(path string, opts parser.Options) (*doctree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parser.Load(filepath.Base(path), data, opts)
}

// emit writes v in the requested format. YAML goes through the JSON form so
// both outputs share field names.
func emit(g *Global, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if format == "yaml" {
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		enc := yaml.NewEncoder(g.Out)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	_, err = fmt.Fprintf(g.Out, "%s\n", data)
	return err
}
