// Package policy evaluates user-defined CEL rules over the configured
// hooks: organizations encode conventions like "every remote repo is
// pinned to a tag" or "no hook disables pass_filenames" as expressions.
package policy

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	"gopkg.in/yaml.v3"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/diag"
	"github.com/hookshot-sh/hookshot/pkg/engine/hook"
)

// Rule is one user-defined policy rule.
type Rule struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Expr        string `yaml:"expr" json:"expr"`
	Severity    string `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// RulesFile is the on-disk shape of a policy file.
type RulesFile struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// LoadRules reads a policy file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("%s declares no rules", path)
	}
	for i, r := range f.Rules {
		if r.ID == "" || r.Expr == "" {
			return nil, fmt.Errorf("%s: rule %d needs id and expr", path, i)
		}
		switch r.Severity {
		case "":
			f.Rules[i].Severity = string(diag.SeverityError)
		case string(diag.SeverityError), string(diag.SeverityWarning):
		default:
			return nil, fmt.Errorf("%s: rule %s has unknown severity %q", path, r.ID, r.Severity)
		}
	}
	return f.Rules, nil
}

// Engine compiles rules once and evaluates them per hook.
type Engine struct {
	env      *cel.Env
	rules    []Rule
	programs map[string]cel.Program
}

// NewEngine declares the variables rule expressions can reference.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("repo", decls.String),
			decls.NewVar("rev", decls.String),
			decls.NewVar("hook_id", decls.String),
			decls.NewVar("alias", decls.String),
			decls.NewVar("entry", decls.String),
			decls.NewVar("language", decls.String),
			decls.NewVar("args", decls.NewListType(decls.String)),
			decls.NewVar("stages", decls.NewListType(decls.String)),
			decls.NewVar("local", decls.Bool),
			decls.NewVar("meta", decls.Bool),
			decls.NewVar("always_run", decls.Bool),
			decls.NewVar("pass_filenames", decls.Bool),
			decls.NewVar("require_serial", decls.Bool),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL env: %w", err)
	}
	return &Engine{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Compile builds the programs. A rule that does not compile is a hard
// error naming the rule.
func (e *Engine) Compile(rules []Rule) error {
	for _, r := range rules {
		ast, issues := e.env.Compile(r.Expr)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s: %w", r.ID, issues.Err())
		}
		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
		e.programs[r.ID] = prg
	}
	e.rules = rules
	return nil
}

// Evaluate runs every rule against every hook. A rule returning true is
// a violation; the finding carries the rule's severity.
func (e *Engine) Evaluate(path string, hooks []hook.Hook) (diag.List, error) {
	var findings diag.List

	for _, h := range hooks {
		vars := hookVars(h)
		for _, r := range e.rules {
			out, _, err := e.programs[r.ID].Eval(vars)
			if err != nil {
				slog.Error("rule evaluation failed", "rule", r.ID, "hook", h.ID, "error", err)
				return nil, fmt.Errorf("rule %s on hook %s: %w", r.ID, h.ID, err)
			}
			violated, ok := out.Value().(bool)
			if !ok || !violated {
				continue
			}
			msg := r.Description
			if msg == "" {
				msg = r.Expr
			}
			severity := diag.Severity(r.Severity)
			findings = append(findings, diag.Finding{
				File:     path,
				Severity: severity,
				Code:     r.ID,
				Message:  fmt.Sprintf("hook %s (%s): %s", h.ID, h.Repo, msg),
			})
		}
	}
	findings.Sort()
	return findings, nil
}

func hookVars(h hook.Hook) map[string]any {
	return map[string]any{
		"repo":           h.Repo,
		"rev":            h.Rev,
		"hook_id":        h.ID,
		"alias":          h.Alias,
		"entry":          h.Entry,
		"language":       h.Language,
		"args":           h.Args,
		"stages":         h.Stages,
		"local":          h.Kind == hook.KindLocal,
		"meta":           h.Kind == hook.KindMeta,
		"always_run":     h.AlwaysRun,
		"pass_filenames": h.PassFilenames,
		"require_serial": h.RequireSerial,
	}
}

// Check is the one-call form used by the policy command: load, compile,
// resolve and evaluate.
func Check(rulesPath, configPath string, cfg *config.Config, lookup hook.Lookup) (diag.List, error) {
	rules, err := LoadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	eng, err := NewEngine()
	if err != nil {
		return nil, err
	}
	if err := eng.Compile(rules); err != nil {
		return nil, err
	}
	hooks, err := hook.Resolve(cfg, lookup)
	if err != nil {
		return nil, err
	}
	return eng.Evaluate(configPath, hooks)
}
