// Package xargs turns a hook entry into concrete command invocations:
// splitting the entry like a shell would, partitioning filenames under a
// command-line length budget and running the resulting commands.
package xargs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultBudget caps a single command line. Far below every platform's
// real ARG_MAX so environment size never pushes it over.
const DefaultBudget = 32 << 10

// SplitEntry splits a hook entry into argv the way a POSIX shell
// tokenizes: whitespace separates, single and double quotes group, a
// backslash escapes the next byte outside single quotes.
func SplitEntry(entry string) ([]string, error) {
	var (
		argv    []string
		current bytes.Buffer
		started bool
		quote   byte
	)

	for i := 0; i < len(entry); i++ {
		c := entry[i]
		switch {
		case quote == '\'':
			if c == '\'' {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case quote == '"':
			switch c {
			case '"':
				quote = 0
			case '\\':
				if i+1 < len(entry) {
					i++
					current.WriteByte(entry[i])
				}
			default:
				current.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			started = true
		case c == '\\':
			if i+1 < len(entry) {
				i++
				current.WriteByte(entry[i])
				started = true
			}
		case c == ' ' || c == '\t' || c == '\n':
			if started {
				argv = append(argv, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteByte(c)
			started = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in entry %q", quote, entry)
	}
	if started {
		argv = append(argv, current.String())
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty entry")
	}
	return argv, nil
}

// Partition groups files into batches such that prefixLen plus the joined
// filenames stays under budget. A file longer than the budget still gets
// a batch of its own. No batch is empty; no files means no batches.
func Partition(prefixLen int, files []string, budget int) [][]string {
	if budget <= 0 {
		budget = DefaultBudget
	}

	var (
		batches [][]string
		batch   []string
		length  = prefixLen
	)
	for _, f := range files {
		cost := len(f) + 1
		if len(batch) > 0 && length+cost > budget {
			batches = append(batches, batch)
			batch = nil
			length = prefixLen
		}
		batch = append(batch, f)
		length += cost
	}
	if len(batch) > 0 {
		batches = append(batches, batch)
	}
	return batches
}

// ArgvLen is the prefix length Partition charges for the fixed part of
// the command line.
func ArgvLen(argv []string) int {
	n := 0
	for _, a := range argv {
		n += len(a) + 1
	}
	return n
}

// Result is the outcome of one command invocation. A non-zero exit code
// is data, not an error.
type Result struct {
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// Run executes argv in dir with stdout and stderr combined, the way the
// output is shown to the user. extraEnv entries are appended to the
// inherited environment. The returned error reports spawn failures only.
func Run(ctx context.Context, dir string, argv []string, extraEnv []string) (Result, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), extraEnv...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	err := cmd.Run()
	res := Result{Output: buf.Bytes(), Duration: time.Since(start)}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}
