package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *Run {
	run := &Run{Stage: "pre-commit"}
	run.Add(HookResult{
		ID:       "check-yaml",
		Name:     "check yaml",
		Status:   StatusPassed,
		Files:    3,
		Duration: 120 * time.Millisecond,
	})
	run.Add(HookResult{
		ID:         "flake8",
		Name:       "flake8",
		Status:     StatusSkipped,
		SkipReason: "no files to check",
	})
	run.Add(HookResult{
		ID:       "trailing-whitespace",
		Name:     "trim trailing whitespace",
		Status:   StatusFailed,
		ExitCode: 1,
		Files:    2,
		Duration: 500 * time.Millisecond,
		Output:   []byte("fixing src/app.py\n"),
		Modified: true,
	})
	return run
}

func TestRenderRunGolden(t *testing.T) {
	run := sampleRun()

	var buf bytes.Buffer
	r := NewRenderer(&buf)
	for _, res := range run.Results {
		r.Line(res)
	}
	r.Summary(run)

	g := goldie.New(t)
	g.Assert(t, "run_render", buf.Bytes())
}

func TestLineWidths(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Line(HookResult{ID: "x", Name: "check yaml", Status: StatusPassed})
	line := strings.TrimRight(buf.String(), "\n")
	assert.Len(t, line, 79)
	assert.True(t, strings.HasPrefix(line, "check yaml..."))
	assert.True(t, strings.HasSuffix(line, "Passed"))
}

func TestLineTruncatesLongNames(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Line(HookResult{ID: "x", Name: strings.Repeat("n", 100), Status: StatusPassed})
	line := strings.TrimRight(buf.String(), "\n")
	assert.Len(t, line, 79)
	assert.Contains(t, line, "...Passed")
}

func TestVerboseShowsPassingOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Verbose = true

	r.Line(HookResult{ID: "x", Name: "x", Status: StatusPassed, Output: []byte("all good\n")})
	assert.Contains(t, buf.String(), "all good")

	buf.Reset()
	r.Verbose = false
	r.Line(HookResult{ID: "x", Name: "x", Status: StatusPassed, Output: []byte("all good\n")})
	assert.NotContains(t, buf.String(), "all good")
}

func TestColoredOutputCarriesANSI(t *testing.T) {
	old := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(old) })

	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Color = true

	r.Line(HookResult{ID: "x", Name: "x", Status: StatusFailed, ExitCode: 1})
	require.Contains(t, buf.String(), "\x1b[", "expected ANSI escape when color is on")

	buf.Reset()
	r.Color = false
	r.Line(HookResult{ID: "x", Name: "x", Status: StatusPassed})
	require.NotContains(t, buf.String(), "\x1b[")
}

func TestRunCounts(t *testing.T) {
	run := sampleRun()
	passed, failed, skipped := run.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
	assert.True(t, run.Failed())

	empty := &Run{}
	assert.False(t, empty.Failed())
}
