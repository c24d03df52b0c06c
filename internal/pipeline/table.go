package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const maxNameWidth = 30

// WriteTable prints a step summary table:
//
//	Step            Status       Time
//	validate        passed       12ms
func (r *Result) WriteTable(w io.Writer) error {
	nameWidth := runewidth.StringWidth("Step")
	for _, s := range r.Steps {
		if sw := runewidth.StringWidth(s.Name); sw > nameWidth {
			nameWidth = sw
		}
	}
	if nameWidth > maxNameWidth {
		nameWidth = maxNameWidth
	}
	statusWidth := len(StatusSoftFailed)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", padRight("Step", nameWidth), padRight("Status", statusWidth), "Time")
	fmt.Fprintf(&b, "%s  %s  %s\n", strings.Repeat("-", nameWidth), strings.Repeat("-", statusWidth), "----")
	for _, s := range r.Steps {
		name := runewidth.Truncate(s.Name, nameWidth, "…")
		elapsed := "-"
		if s.Status != StatusSkipped {
			elapsed = formatDuration(s.Duration)
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", padRight(name, nameWidth), padRight(string(s.Status), statusWidth), elapsed)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// formatDuration keeps sub-second durations in milliseconds and rounds the
// rest to a tenth of a second.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}
