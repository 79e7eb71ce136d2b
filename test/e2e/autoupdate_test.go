//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// makeTagRemote builds a bare repository advertising v1.0.0 and v1.1.0.
func makeTagRemote(t *testing.T) string {
	t.Helper()

	src := initRepo(t)
	gitRun(t, src, "tag", "v1.0.0")
	writeFile(t, src, "second.txt", "2\n")
	gitRun(t, src, "add", "second.txt")
	gitRun(t, src, "commit", "-m", "second")
	gitRun(t, src, "tag", "v1.1.0")

	bare := filepath.Join(t.TempDir(), "remote.git")
	gitRun(t, filepath.Dir(bare), "clone", "--bare", src, bare)
	return bare
}

func autoupdateConfig(remote string) string {
	return fmt.Sprintf(`repos:
  - repo: file://%s
    rev: v1.0.0
    hooks:
      - id: demo
`, remote)
}

func TestAutoupdateMovesRevForward(t *testing.T) {
	remote := makeTagRemote(t)
	dir := initRepo(t)
	path := writeFile(t, dir, ".pre-commit-config.yaml", autoupdateConfig(remote))

	res := hookshot(t, dir, nil, "autoupdate")
	if res.code != 0 {
		t.Fatalf("autoupdate exited %d:\n%s%s", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, "updating v1.0.0 -> v1.1.0.") {
		t.Errorf("output:\n%s", res.stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rev: v1.1.0") {
		t.Errorf("rev not rewritten:\n%s", data)
	}
}

func TestAutoupdateDryRunLeavesFile(t *testing.T) {
	remote := makeTagRemote(t)
	dir := initRepo(t)
	path := writeFile(t, dir, ".pre-commit-config.yaml", autoupdateConfig(remote))

	res := hookshot(t, dir, nil, "autoupdate", "--dry-run")
	if res.code != 0 {
		t.Fatalf("autoupdate exited %d:\n%s%s", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, "updating v1.0.0 -> v1.1.0.") {
		t.Errorf("output:\n%s", res.stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rev: v1.0.0") {
		t.Errorf("dry run rewrote the file:\n%s", data)
	}
}

func TestAutoupdateAlreadyCurrent(t *testing.T) {
	remote := makeTagRemote(t)
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", strings.Replace(
		autoupdateConfig(remote), "rev: v1.0.0", "rev: v1.1.0", 1))

	res := hookshot(t, dir, nil, "autoupdate")
	if res.code != 0 {
		t.Fatalf("autoupdate exited %d:\n%s%s", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, "already up to date.") {
		t.Errorf("output:\n%s", res.stdout)
	}
}
