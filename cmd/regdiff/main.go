package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global carries what every command writes to.
type Global struct {
	Out    io.Writer
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	Format    string `short:"f" help:"Output format (json|yaml)" enum:"json,yaml" default:"json"`
	Pdftotext bool   `help:"Fall back to pdftotext when the Go PDF reader fails" default:"true" negatable:""`

	Sections   SectionsCmd   `cmd:"" help:"List sections added or deleted between two versions"`
	Paragraphs ParagraphsCmd `cmd:"" help:"Show paragraph changes inside sections common to both versions"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("regdiff"),
		kong.Description("Structural diff for versioned policy and regulation documents."),
		kong.UsageOnError(),
	)

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	g := &Global{
		Out:    os.Stdout,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
	ctx.FatalIfErrorf(ctx.Run(g, &cli))
}
