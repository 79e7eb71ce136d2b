//go:build e2e

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// result captures one CLI invocation.
type result struct {
	stdout string
	stderr string
	code   int
}

// hookshot runs the built binary in dir with extra environment entries.
// The binary's directory is prefixed to PATH so installed shims resolve it.
func hookshot(t *testing.T, dir string, env []string, args ...string) result {
	t.Helper()

	cmd := exec.Command(hookshotBin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Env = append(cmd.Env, "PATH="+binPATH())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("running hookshot %v: %v", args, err)
		}
		code = exitErr.ExitCode()
	}
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func binPATH() string {
	return filepath.Dir(hookshotBin) + string(os.PathListSeparator) + os.Getenv("PATH")
}

// gitTry runs git and reports output plus exit code.
func gitTry(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "PATH="+binPATH())
	out, err := cmd.CombinedOutput()
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
		}
		return string(out), exitErr.ExitCode()
	}
	return string(out), 0
}

// gitRun runs git and fails the test on a nonzero exit.
func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()

	out, code := gitTry(t, dir, args...)
	if code != 0 {
		t.Fatalf("git %s exited %d:\n%s", strings.Join(args, " "), code, out)
	}
	return out
}

// initRepo creates a git repository with a single seed commit.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	gitRun(t, dir, "init")
	gitRun(t, dir, "config", "user.email", "e2e@example.com")
	gitRun(t, dir, "config", "user.name", "e2e")
	writeFile(t, dir, "base.txt", "base\n")
	gitRun(t, dir, "add", "base.txt")
	gitRun(t, dir, "commit", "-m", "init")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
