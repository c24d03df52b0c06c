package console

import (
	"fmt"
	"io"
	"strings"
)

const ruleWidth = 70

// Printer writes status output using a fixed palette.
type Printer struct {
	w io.Writer
	p Palette
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, p Palette) *Printer {
	return &Printer{w: w, p: p}
}

// Palette returns the palette the printer was built with.
func (pr *Printer) Palette() Palette { return pr.p }

// Printf formats like fmt.Printf. Counts are printed without digit grouping.
func (pr *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(pr.w, format, args...) //nolint:errcheck
}

// Println writes args followed by a newline.
func (pr *Printer) Println(args ...any) {
	fmt.Fprintln(pr.w, args...) //nolint:errcheck
}

// Header prints a section banner.
func (pr *Printer) Header(text string) {
	rule := strings.Repeat("=", ruleWidth)
	pr.Println()
	pr.Printf("%s%s%s\n", pr.p.Blue, rule, pr.p.Reset)
	pr.Printf("%s%s  %s%s\n", pr.p.Blue, pr.p.Bold, text, pr.p.Reset)
	pr.Printf("%s%s%s\n", pr.p.Blue, rule, pr.p.Reset)
	pr.Println()
}

// Title prints a bold cyan line.
func (pr *Printer) Title(text string) {
	pr.Printf("%s%s%s%s\n", pr.p.Cyan, pr.p.Bold, text, pr.p.Reset)
}

// Note prints a cyan line.
func (pr *Printer) Note(text string) {
	pr.Printf("%s%s%s\n", pr.p.Cyan, text, pr.p.Reset)
}

func (pr *Printer) Step(text string)    { pr.mark(pr.p.Green, "→", text) }
func (pr *Printer) Warning(text string) { pr.mark(pr.p.Yellow, "⚠", text) }
func (pr *Printer) Error(text string)   { pr.mark(pr.p.Red, "✗", text) }
func (pr *Printer) Success(text string) { pr.mark(pr.p.Green, "✓", text) }

// Bullet prints an indented list entry with a colored marker.
func (pr *Printer) Bullet(marker, text string) {
	pr.Printf("  %s%s%s %s\n", pr.p.Green, marker, pr.p.Reset, text)
}

func (pr *Printer) mark(color, symbol, text string) {
	pr.Printf("%s%s%s %s\n", color, symbol, pr.p.Reset, text)
}
