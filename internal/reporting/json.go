package reporting

import (
	"encoding/json"
	"io"
	"time"

	"github.com/visioncraft/conform/internal/checks"
)

type checkJSONReport struct {
	Timestamp string         `json:"timestamp"`
	Check     string         `json:"check"`
	Passed    bool           `json:"passed"`
	Checked   int            `json:"checked"`
	Failed    int            `json:"failed"`
	Files     []fileJSONItem `json:"files"`
}

type fileJSONItem struct {
	Path        string   `json:"path"`
	Passed      bool     `json:"passed"`
	Hint        string   `json:"hint,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// WriteJSON writes the run as an indented JSON document. Unlike WriteText,
// passing files are listed too.
func WriteJSON(w io.Writer, run *checks.CheckRun, now time.Time) error {
	report := checkJSONReport{
		Timestamp: now.UTC().Format(time.RFC3339),
		Check:     run.Check,
		Passed:    run.Passed(),
		Checked:   len(run.Results),
		Failed:    len(run.Failed()),
		Files:     make([]fileJSONItem, 0, len(run.Results)),
	}
	for _, res := range run.Results {
		item := fileJSONItem{
			Path:        res.Path,
			Passed:      res.Passed,
			Hint:        res.Hint,
			Diagnostics: res.Diagnostics,
		}
		if res.Fault != nil {
			item.Error = res.Fault.Error()
			item.Diagnostics = nil
		}
		report.Files = append(report.Files, item)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
