// Package reporting renders check runs as plain text, JSON or JUnit XML.
package reporting

import (
	"fmt"
	"io"

	"github.com/visioncraft/conform/internal/checks"
)

// WriteText prints one block per failing file followed by a summary line.
// Passing files produce no output, and a run without failures prints nothing.
func WriteText(w io.Writer, run *checks.CheckRun) error {
	failed := run.Failed()
	for _, res := range failed {
		if err := writeBlock(w, res); err != nil {
			return err
		}
	}
	if len(failed) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%d file(s) with %s issues\n", len(failed), run.Issue)
	return err
}

func writeBlock(w io.Writer, res *checks.CheckResult) error {
	if res.Fault != nil {
		_, err := fmt.Fprintf(w, "Error reading %s: %v\n", res.Path, res.Fault)
		return err
	}

	if res.Hint == "" && len(res.Diagnostics) == 1 {
		_, err := fmt.Fprintf(w, "%s: %s\n", res.Path, res.Diagnostics[0])
		return err
	}

	if _, err := fmt.Fprintf(w, "%s:\n", res.Path); err != nil {
		return err
	}
	if res.Hint != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", res.Hint); err != nil {
			return err
		}
	}
	for _, d := range res.Diagnostics {
		if _, err := fmt.Fprintf(w, "  %s\n", d); err != nil {
			return err
		}
	}
	return nil
}
