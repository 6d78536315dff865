package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/engine/pagination"
	"github.com/dshills/folio/internal/renderer/measure"
)

// Default page size for paginate, in pixels: A4 at 96 DPI less 20mm
// margins.
const (
	defaultPageWidth  = 643
	defaultPageHeight = 971
)

// runPaginate reads a document, reflows it onto pages of the given pixel
// size set in Go Regular, and writes it back with page breaks. The page
// count goes to stderr.
func runPaginate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("paginate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	width := fs.Int("width", defaultPageWidth, "Page width in pixels")
	height := fs.Int("height", defaultPageHeight, "Page height in pixels")
	size := fs.Float64("font-size", config.Default().FontSize, "Font size in points")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: folio paginate [options] [file]\n\n")
		fmt.Fprintf(stderr, "Reads HTML from file, or stdin, and writes it split into pages.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *width <= 0 || *height <= 0 || *size <= 0 {
		fmt.Fprintf(stderr, "Error: page and font sizes must be positive\n")
		return 2
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(stderr, "Error: read input: %v\n", err)
		return 1
	}

	font, err := measure.NewFont(*size, *width, *height)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer font.Close()

	engine := pagination.New(font)
	if err := engine.Load(string(data)); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	engine.Reflow()

	if _, err := io.WriteString(stdout, engine.DocumentContent()+"\n"); err != nil {
		fmt.Fprintf(stderr, "Error: write output: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "%d pages, %d words\n", engine.PageCount(), engine.WordCount())
	return 0
}
