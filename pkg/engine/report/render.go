package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass = lipgloss.Color("#00FF99")
	colorFail = lipgloss.Color("#FF0055")
	colorSkip = lipgloss.Color("#F59E0B")
	colorDim  = lipgloss.Color("#64748B")

	passStyle = lipgloss.NewStyle().Foreground(colorPass)
	failStyle = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	skipStyle = lipgloss.NewStyle().Foreground(colorSkip)
	dimStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// Renderer writes a run report as text. Width bounds the dot-padded
// status lines; Color switches the lipgloss styles on.
type Renderer struct {
	Out     io.Writer
	Width   int
	Color   bool
	Verbose bool
}

// NewRenderer builds a renderer with the conventional 79-column layout.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{Out: out, Width: 79}
}

// Line renders one hook's status line, plus its detail block when the
// hook failed or verbose output is on.
func (r *Renderer) Line(res HookResult) {
	status := string(res.Status)
	postfix := ""
	if res.Status == StatusSkipped && res.SkipReason != "" {
		postfix = "(" + res.SkipReason + ")"
	}

	name := res.Name
	dots := r.Width - len(name) - len(postfix) - len(status)
	if dots < 3 {
		keep := len(name) + dots - 3
		if keep < 1 {
			keep = 1
		}
		name = name[:keep]
		dots = 3
	}

	line := name + strings.Repeat(".", dots) + r.paint(postfix, dimStyle) + r.status(status, res.Status)
	fmt.Fprintln(r.Out, line)

	if res.Failed() || (r.Verbose && len(res.Output) > 0) {
		r.detail(res)
	}
}

// Summary renders the closing counts line.
func (r *Renderer) Summary(run *Run) {
	passed, failed, skipped := run.Counts()
	line := fmt.Sprintf("%d passed, %d failed, %d skipped", passed, failed, skipped)
	if failed > 0 {
		fmt.Fprintln(r.Out, r.paint(line, failStyle))
		return
	}
	fmt.Fprintln(r.Out, r.paint(line, dimStyle))
}

func (r *Renderer) detail(res HookResult) {
	fmt.Fprintf(r.Out, "- hook id: %s\n", res.ID)
	if res.Duration > 0 {
		fmt.Fprintf(r.Out, "- duration: %.2fs\n", res.Duration.Seconds())
	}
	if res.ExitCode != 0 {
		fmt.Fprintf(r.Out, "- exit code: %d\n", res.ExitCode)
	}
	if res.Modified {
		fmt.Fprintln(r.Out, "- files were modified by this hook")
	}
	out := strings.TrimRight(string(res.Output), "\n")
	if out != "" {
		fmt.Fprintln(r.Out)
		fmt.Fprintln(r.Out, out)
	}
	fmt.Fprintln(r.Out)
}

func (r *Renderer) status(text string, s Status) string {
	switch s {
	case StatusPassed:
		return r.paint(text, passStyle)
	case StatusFailed:
		return r.paint(text, failStyle)
	default:
		return r.paint(text, skipStyle)
	}
}

func (r *Renderer) paint(text string, style lipgloss.Style) string {
	if !r.Color || text == "" {
		return text
	}
	return style.Render(text)
}
