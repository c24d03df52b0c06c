// Package console holds terminal output helpers: the color palette chosen once
// at start-up, a printer for section headers and status lines, and a spinner.
package console

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ColorMode selects how the palette is chosen.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Palette holds the escape sequences used by Printer. The zero value prints
// no color at all.
type Palette struct {
	Red    string
	Green  string
	Yellow string
	Blue   string
	Cyan   string
	Bold   string
	Reset  string
}

// ANSI returns the standard ANSI palette.
func ANSI() Palette {
	return Palette{
		Red:    "\033[0;31m",
		Green:  "\033[0;32m",
		Yellow: "\033[1;33m",
		Blue:   "\033[0;34m",
		Cyan:   "\033[0;36m",
		Bold:   "\033[1m",
		Reset:  "\033[0m",
	}
}

// Plain returns a palette with every color disabled.
func Plain() Palette { return Palette{} }

// Environment is what ResolvePalette inspects in auto mode.
type Environment struct {
	// Getenv looks up environment variables. os.Getenv when nil.
	Getenv func(string) string
	// GOOS is the target operating system, runtime.GOOS in production.
	GOOS string
	// IsTerminal reports whether out is an interactive terminal. When nil,
	// out is checked with term.IsTerminal if it is an *os.File.
	IsTerminal func(out io.Writer) bool
}

// ResolvePalette decides the palette for out. It is called once at process
// entry and the result is passed to every printer.
//
// In auto mode colors are disabled when NO_COLOR is set, when out is not a
// terminal, or on Windows unless ANSICON is set.
func ResolvePalette(mode ColorMode, out io.Writer, env Environment) (Palette, error) {
	switch mode {
	case ColorAlways:
		return ANSI(), nil
	case ColorNever:
		return Plain(), nil
	case ColorAuto, "":
	default:
		return Plain(), fmt.Errorf("invalid color mode %q: expected auto, always or never", mode)
	}

	getenv := env.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	isTerminal := env.IsTerminal
	if isTerminal == nil {
		isTerminal = IsTerminal
	}

	if getenv("NO_COLOR") != "" {
		return Plain(), nil
	}
	if env.GOOS == "windows" && getenv("ANSICON") == "" {
		return Plain(), nil
	}
	if !isTerminal(out) {
		return Plain(), nil
	}
	return ANSI(), nil
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
