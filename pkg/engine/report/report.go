// Package report models the outcome of a run and renders it: one status
// line per hook, failure detail blocks and a machine-readable export.
package report

import (
	"time"
)

// Status is the displayed outcome of one hook.
type Status string

const (
	StatusPassed  Status = "Passed"
	StatusFailed  Status = "Failed"
	StatusSkipped Status = "Skipped"
)

// HookResult is the outcome of one hook over its file set.
type HookResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
	Files    int           `json:"files"`
	Output   []byte        `json:"-"`

	// SkipReason annotates a skipped hook, e.g. "no files to check".
	SkipReason string `json:"skip_reason,omitempty"`

	// Modified is set when the hook changed files; that fails the run
	// even on a zero exit code.
	Modified bool `json:"modified,omitempty"`
}

// Failed reports whether this hook fails the run.
func (r HookResult) Failed() bool {
	return r.Status == StatusFailed
}

// Run aggregates one invocation.
type Run struct {
	Stage   string       `json:"stage"`
	Results []HookResult `json:"results"`
}

// Add appends a hook result.
func (r *Run) Add(res HookResult) {
	r.Results = append(r.Results, res)
}

// Failed reports whether any hook failed.
func (r *Run) Failed() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return true
		}
	}
	return false
}

// Counts returns how many hooks passed, failed and were skipped.
func (r *Run) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}
