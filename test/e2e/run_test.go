//go:build e2e

package e2e

import (
	"encoding/json"
	"strings"
	"testing"
)

const passFailConfig = `repos:
  - repo: local
    hooks:
      - id: ok
        name: everything fine
        entry: "true"
        language: system
        always_run: true
      - id: bad
        name: always failing
        entry: "false"
        language: system
        always_run: true
`

const passOnlyConfig = `repos:
  - repo: local
    hooks:
      - id: ok
        name: everything fine
        entry: "true"
        language: system
        always_run: true
`

func TestRunReportsFailure(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", passFailConfig)

	res := hookshot(t, dir, nil, "run", "--all-files")
	if res.code != 1 {
		t.Fatalf("exit code = %d, want 1\nstdout:\n%s\nstderr:\n%s", res.code, res.stdout, res.stderr)
	}
	for _, want := range []string{"everything fine", "Passed", "always failing", "Failed"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestRunAllPassingExitsZero(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", passOnlyConfig)

	res := hookshot(t, dir, nil, "run", "--all-files")
	if res.code != 0 {
		t.Fatalf("exit code = %d, want 0\nstderr:\n%s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "1 passed, 0 failed, 0 skipped") {
		t.Errorf("stdout missing summary:\n%s", res.stdout)
	}
}

func TestRunSelectsSingleHook(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", passFailConfig)

	res := hookshot(t, dir, nil, "run", "ok", "--all-files")
	if res.code != 0 {
		t.Fatalf("exit code = %d, want 0\nstdout:\n%s", res.code, res.stdout)
	}
	if strings.Contains(res.stdout, "always failing") {
		t.Errorf("unselected hook ran:\n%s", res.stdout)
	}
}

func TestRunHonorsSkipEnv(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", passFailConfig)

	res := hookshot(t, dir, []string{"SKIP=bad"}, "run", "--all-files")
	if res.code != 0 {
		t.Fatalf("exit code = %d, want 0\nstdout:\n%s", res.code, res.stdout)
	}
	if !strings.Contains(res.stdout, "Skipped") {
		t.Errorf("stdout missing skip marker:\n%s", res.stdout)
	}
}

func TestRunJSONOutput(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", passFailConfig)

	res := hookshot(t, dir, nil, "run", "--all-files", "--output", "json")
	if res.code != 1 {
		t.Fatalf("exit code = %d, want 1", res.code)
	}

	var doc struct {
		Results []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &doc); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, res.stdout)
	}
	if len(doc.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(doc.Results))
	}
	if doc.Results[0].ID != "ok" || doc.Results[0].Status != "Passed" {
		t.Errorf("first result = %+v", doc.Results[0])
	}
	if doc.Results[1].ID != "bad" || doc.Results[1].Status != "Failed" {
		t.Errorf("second result = %+v", doc.Results[1])
	}
}

func TestRunUsageErrorExitsTwo(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", passOnlyConfig)

	res := hookshot(t, dir, nil, "run", "--output", "bogus")
	if res.code != 2 {
		t.Fatalf("exit code = %d, want 2\nstderr:\n%s", res.code, res.stderr)
	}
}
