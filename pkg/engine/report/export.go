package report

import (
	"encoding/json"
	"io"
	"time"
)

// exportItem is the machine-readable per-hook record.
type exportItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Status     Status  `json:"status"`
	ExitCode   int     `json:"exit_code"`
	DurationMS float64 `json:"duration_ms"`
	Files      int     `json:"files"`
	Output     string  `json:"output,omitempty"`
	SkipReason string  `json:"skip_reason,omitempty"`
	Modified   bool    `json:"modified,omitempty"`
}

type exportRun struct {
	Stage   string       `json:"stage"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Skipped int          `json:"skipped"`
	Results []exportItem `json:"results"`
}

// WriteJSON emits the run as indented JSON, durations in milliseconds
// and outputs inline.
func WriteJSON(w io.Writer, run *Run) error {
	passed, failed, skipped := run.Counts()
	out := exportRun{
		Stage:   run.Stage,
		Passed:  passed,
		Failed:  failed,
		Skipped: skipped,
		Results: make([]exportItem, 0, len(run.Results)),
	}
	for _, res := range run.Results {
		out.Results = append(out.Results, exportItem{
			ID:         res.ID,
			Name:       res.Name,
			Status:     res.Status,
			ExitCode:   res.ExitCode,
			DurationMS: float64(res.Duration) / float64(time.Millisecond),
			Files:      res.Files,
			Output:     string(res.Output),
			SkipReason: res.SkipReason,
			Modified:   res.Modified,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
