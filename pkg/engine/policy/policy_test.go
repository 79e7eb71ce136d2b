package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/diag"
	"github.com/hookshot-sh/hookshot/pkg/engine/hook"
)

func TestEngineEvaluate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rules := []Rule{
		{
			ID:          "no-mutable-rev",
			Description: "remote hooks must pin an immutable rev",
			Expr:        `!local && !meta && (rev == "master" || rev == "main" || rev == "HEAD")`,
			Severity:    "error",
		},
		{
			ID:          "no-serial-locals",
			Description: "local hooks should parallelize",
			Expr:        `local && require_serial`,
			Severity:    "warning",
		},
	}
	require.NoError(t, engine.Compile(rules))

	hooks := []hook.Hook{
		{
			Kind: hook.KindRemote,
			Repo: "https://github.com/pre-commit/pre-commit-hooks",
			Rev:  "main",
			ID:   "check-yaml",
		},
		{
			Kind: hook.KindRemote,
			Repo: "https://github.com/pycqa/flake8",
			Rev:  "5.0.4",
			ID:   "flake8",
		},
		{
			Kind:          hook.KindLocal,
			Repo:          config.RepoLocal,
			ID:            "lint",
			Entry:         "make lint",
			RequireSerial: true,
		},
	}

	findings, err := engine.Evaluate(".pre-commit-config.yaml", hooks)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "no-mutable-rev", findings[0].Code)
	assert.Equal(t, diag.SeverityError, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "check-yaml")

	assert.Equal(t, "no-serial-locals", findings[1].Code)
	assert.Equal(t, diag.SeverityWarning, findings[1].Severity)
	assert.True(t, findings.HasErrors())
}

func TestEngineCompileError(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	err = engine.Compile([]Rule{{ID: "broken", Expr: "rev ==="}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule broken")
}

func TestEngineUnknownVariable(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	err = engine.Compile([]Rule{{ID: "bad-var", Expr: "cost > 100"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-var")
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	data := `rules:
  - id: pinned-revs
    description: revs must look like versions
    expr: '!local && !meta && !rev.matches("^v?[0-9]")'
  - id: no-verbose
    expr: 'hook_id == "flake8" && "--verbose" in args'
    severity: warning
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// Severity defaults to error when omitted.
	assert.Equal(t, "error", rules[0].Severity)
	assert.Equal(t, "warning", rules[1].Severity)
}

func TestLoadRulesRejectsBadSeverity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	data := `rules:
  - id: x
    expr: "true"
    severity: fatal
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")
}

func TestLoadRulesRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
}

func TestCheckEndToEnd(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "policy.yaml")
	rulesData := `rules:
  - id: args-need-config
    description: flake8 must point at a config file
    expr: 'hook_id == "flake8" && size(args) == 0'
`
	require.NoError(t, os.WriteFile(rulesPath, []byte(rulesData), 0o644))

	cfg := &config.Config{
		Repos: []config.Repo{
			{
				Repo: config.RepoLocal,
				Hooks: []config.Hook{
					{ID: "flake8", Name: "flake8", Entry: "flake8", Language: "system"},
				},
			},
		},
	}

	findings, err := Check(rulesPath, ".pre-commit-config.yaml", cfg, nil)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "flake8 must point at a config file")
}
