// Package gitx wraps the git plumbing the runner needs: repository
// discovery, staged/changed file queries and working-tree diff snapshots.
// It shells out to the git binary rather than reimplementing index
// semantics.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Output runs git with args inside dir and returns its stdout. Stderr is
// folded into the returned error.
func Output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}

// TopLevel returns the absolute path of the working tree containing dir.
func TopLevel(ctx context.Context, dir string) (string, error) {
	out, err := Output(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GitDir returns the absolute path of the .git directory for dir.
func GitDir(ctx context.Context, dir string) (string, error) {
	out, err := Output(ctx, dir, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// HooksPath returns the absolute directory git consults for hook scripts,
// honoring core.hooksPath.
func HooksPath(ctx context.Context, dir string) (string, error) {
	out, err := Output(ctx, dir, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", err
	}
	path := strings.TrimSpace(string(out))
	if !filepath.IsAbs(path) {
		top, err := TopLevel(ctx, dir)
		if err != nil {
			return "", err
		}
		path = filepath.Join(top, path)
	}
	return path, nil
}

// StagedFiles lists files staged for commit, excluding deletions.
func StagedFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := Output(ctx, dir,
		"diff", "--staged", "--name-only", "--no-ext-diff", "-z", "--diff-filter=ACMRTB")
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// IntentToAddFiles lists paths registered with `git add --intent-to-add`.
// They do not show up in a staged diff yet but belong to the commit in
// progress.
func IntentToAddFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := Output(ctx, dir, "status", "--porcelain", "-z", "--ignore-submodules")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range zsplit(out) {
		// Porcelain entries are "XY path"; intent-to-add is worktree status A.
		if len(entry) > 3 && entry[1] == 'A' {
			files = append(files, entry[3:])
		}
	}
	return files, nil
}

// AllFiles lists every tracked file.
func AllFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := Output(ctx, dir, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// ChangedFiles lists files that differ between two revisions, excluding
// deletions. The triple-dot range compares toRef against the merge base.
func ChangedFiles(ctx context.Context, dir, fromRef, toRef string) ([]string, error) {
	out, err := Output(ctx, dir,
		"diff", "--name-only", "--no-ext-diff", "-z", "--diff-filter=ACMRTB",
		fmt.Sprintf("%s...%s", fromRef, toRef))
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// WorktreeDiff captures the unstaged working-tree diff. Comparing two
// snapshots around a hook run detects hooks that modified files.
func WorktreeDiff(ctx context.Context, dir string) ([]byte, error) {
	return Output(ctx, dir,
		"diff", "--no-ext-diff", "--no-textconv", "--ignore-submodules")
}

func zsplit(out []byte) []string {
	var files []string
	for _, f := range bytes.Split(out, []byte{0}) {
		if len(f) > 0 {
			files = append(files, string(f))
		}
	}
	return files
}
