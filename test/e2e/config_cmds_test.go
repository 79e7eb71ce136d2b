//go:build e2e

package e2e

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestValidateConfigGoodAndBad(t *testing.T) {
	dir := initRepo(t)
	good := writeFile(t, dir, "good.yaml", passOnlyConfig)

	res := hookshot(t, dir, nil, "validate-config", good)
	if res.code != 0 {
		t.Fatalf("good config rejected (%d):\n%s%s", res.code, res.stdout, res.stderr)
	}

	bad := writeFile(t, dir, "bad.yaml", `repos:
  - repo: local
    hooks:
      - id: broken
        name: broken
        entry: "true"
        language: system
        stages: [pre-lunch]
`)
	res = hookshot(t, dir, nil, "validate-config", bad)
	if res.code != 1 {
		t.Fatalf("bad config accepted (%d):\n%s", res.code, res.stdout)
	}
	if !strings.Contains(res.stdout, "pre-lunch") {
		t.Errorf("finding does not name the bad stage:\n%s", res.stdout)
	}
}

func TestSampleConfigValidates(t *testing.T) {
	dir := initRepo(t)

	res := hookshot(t, dir, nil, "sample-config")
	if res.code != 0 {
		t.Fatalf("sample-config exited %d", res.code)
	}

	sample := writeFile(t, dir, "sample.yaml", res.stdout)
	res = hookshot(t, dir, nil, "validate-config", sample)
	if res.code != 0 {
		t.Fatalf("sample config does not validate (%d):\n%s", res.code, res.stdout)
	}
}

func TestMigrateConfigRewritesLegacyLayout(t *testing.T) {
	dir := initRepo(t)
	path := writeFile(t, dir, ".pre-commit-config.yaml", `- repo: https://github.com/pre-commit/pre-commit-hooks
  sha: v4.0.1
  hooks:
    - id: trailing-whitespace
`)

	res := hookshot(t, dir, nil, "migrate-config")
	if res.code != 0 {
		t.Fatalf("migrate-config exited %d:\n%s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "migrated") {
		t.Errorf("output:\n%s", res.stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	migrated := string(data)
	if !strings.Contains(migrated, "repos:") || !strings.Contains(migrated, "rev: v4.0.1") {
		t.Errorf("file not migrated:\n%s", migrated)
	}

	res = hookshot(t, dir, nil, "migrate-config")
	if res.code != 0 || !strings.Contains(res.stdout, "already up to date") {
		t.Errorf("second migrate (%d):\n%s", res.code, res.stdout)
	}
}

func TestSchemaEmitsJSON(t *testing.T) {
	dir := initRepo(t)

	res := hookshot(t, dir, nil, "schema")
	if res.code != 0 {
		t.Fatalf("schema exited %d:\n%s", res.code, res.stderr)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(res.stdout), &doc); err != nil {
		t.Fatalf("schema output is not JSON: %v", err)
	}
	if doc["$schema"] == nil {
		t.Errorf("schema document missing $schema:\n%s", res.stdout)
	}
}

func TestPolicyFlagsViolations(t *testing.T) {
	dir := initRepo(t)
	writeFile(t, dir, ".pre-commit-config.yaml", passOnlyConfig)
	rules := writeFile(t, dir, "policy.yaml", `rules:
  - id: no-always-run
    description: hooks must not force themselves onto every run
    expr: always_run
    severity: error
`)

	res := hookshot(t, dir, nil, "policy", "--rules", rules)
	if res.code != 1 {
		t.Fatalf("policy exited %d, want 1:\n%s%s", res.code, res.stdout, res.stderr)
	}
	if !strings.Contains(res.stdout, "no-always-run") {
		t.Errorf("violation not reported:\n%s", res.stdout)
	}

	res = hookshot(t, dir, nil, "policy")
	if res.code != 2 {
		t.Fatalf("policy without --rules exited %d, want 2", res.code)
	}
}
