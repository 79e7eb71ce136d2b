// Package diag defines the finding model shared by the config validators,
// the policy engine and the meta hooks.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single diagnostic anchored to a position in a file.
type Finding struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// String renders a finding in the conventional file:line: severity form.
func (f Finding) String() string {
	var b strings.Builder
	b.WriteString(f.File)
	if f.Line > 0 {
		fmt.Fprintf(&b, ":%d", f.Line)
		if f.Column > 0 {
			fmt.Fprintf(&b, ":%d", f.Column)
		}
	}
	fmt.Fprintf(&b, ": %s: %s", f.Severity, f.Message)
	if f.Code != "" {
		fmt.Fprintf(&b, " [%s]", f.Code)
	}
	return b.String()
}

// List is an ordered collection of findings.
type List []Finding

// HasErrors reports whether any finding is error-severity.
func (l List) HasErrors() bool {
	for _, f := range l {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sort orders findings by file, then line, then column, then code.
// Validation walks maps and regex tables, so the raw order is not stable.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i], l[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Code < b.Code
	})
}

// Errorf appends an error-severity finding.
func (l *List) Errorf(file string, line int, code, format string, args ...any) {
	*l = append(*l, Finding{
		File:     file,
		Line:     line,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf appends a warning-severity finding.
func (l *List) Warnf(file string, line int, code, format string, args ...any) {
	*l = append(*l, Finding{
		File:     file,
		Line:     line,
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}
