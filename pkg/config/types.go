// Package config models the .pre-commit-config.yaml file: loading it with
// strict field checking, validating it against the hook schema, and rewriting
// it in place for migrations and rev bumps.
package config

// FileName is the canonical configuration file name at the repository root.
const FileName = ".pre-commit-config.yaml"

// Sentinel repo values that mark non-remote repositories.
const (
	RepoLocal = "local"
	RepoMeta  = "meta"
)

// Stage names accepted in default_stages and per-hook stages. The legacy
// unprefixed forms (commit, push, merge-commit) are accepted on input and
// rewritten by migrate.
var KnownStages = []string{
	"commit-msg",
	"post-checkout",
	"post-commit",
	"post-merge",
	"post-rewrite",
	"pre-commit",
	"pre-merge-commit",
	"pre-push",
	"pre-rebase",
	"prepare-commit-msg",
	"manual",
}

// legacyStages maps deprecated stage spellings to their current names.
var legacyStages = map[string]string{
	"commit":       "pre-commit",
	"merge-commit": "pre-merge-commit",
	"push":         "pre-push",
}

// NormalizeStage maps legacy stage names to their current spelling and
// reports whether the input was a legacy form.
func NormalizeStage(stage string) (string, bool) {
	if cur, ok := legacyStages[stage]; ok {
		return cur, true
	}
	return stage, false
}

// KnownStage reports whether stage is valid after normalization.
func KnownStage(stage string) bool {
	stage, _ = NormalizeStage(stage)
	for _, s := range KnownStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Config is the root of .pre-commit-config.yaml.
type Config struct {
	Repos []Repo `yaml:"repos" json:"repos"`

	DefaultInstallHookTypes []string          `yaml:"default_install_hook_types,omitempty" json:"default_install_hook_types,omitempty"`
	DefaultLanguageVersion  map[string]string `yaml:"default_language_version,omitempty" json:"default_language_version,omitempty"`
	DefaultStages           []string          `yaml:"default_stages,omitempty" json:"default_stages,omitempty"`
	Files                   string            `yaml:"files,omitempty" json:"files,omitempty"`
	Exclude                 string            `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	FailFast                bool              `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	MinimumVersion          string            `yaml:"minimum_pre_commit_version,omitempty" json:"minimum_pre_commit_version,omitempty"`
	CI                      map[string]any    `yaml:"ci,omitempty" json:"ci,omitempty"`
}

// Repo is one entry under repos.
type Repo struct {
	Repo  string `yaml:"repo" json:"repo"`
	Rev   string `yaml:"rev,omitempty" json:"rev,omitempty"`
	Hooks []Hook `yaml:"hooks" json:"hooks"`
}

// IsLocal reports whether the repo declares locally-defined hooks.
func (r Repo) IsLocal() bool { return r.Repo == RepoLocal }

// IsMeta reports whether the repo refers to the built-in meta hooks.
func (r Repo) IsMeta() bool { return r.Repo == RepoMeta }

// IsRemote reports whether the repo names an external hook source.
func (r Repo) IsRemote() bool { return !r.IsLocal() && !r.IsMeta() }

// Hook is one configured hook. For remote and meta repos only ID is
// required and the remaining fields override the manifest entry; for local
// repos Name, Entry and Language are required too.
type Hook struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Entry    string   `yaml:"entry,omitempty" json:"entry,omitempty"`
	Language string   `yaml:"language,omitempty" json:"language,omitempty"`
	Alias    string   `yaml:"alias,omitempty" json:"alias,omitempty"`
	Args     []string `yaml:"args,omitempty" json:"args,omitempty"`

	Files        string   `yaml:"files,omitempty" json:"files,omitempty"`
	Exclude      string   `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Types        []string `yaml:"types,omitempty" json:"types,omitempty"`
	TypesOr      []string `yaml:"types_or,omitempty" json:"types_or,omitempty"`
	ExcludeTypes []string `yaml:"exclude_types,omitempty" json:"exclude_types,omitempty"`

	AdditionalDependencies []string `yaml:"additional_dependencies,omitempty" json:"additional_dependencies,omitempty"`
	LanguageVersion        string   `yaml:"language_version,omitempty" json:"language_version,omitempty"`
	LogFile                string   `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	MinimumVersion         string   `yaml:"minimum_pre_commit_version,omitempty" json:"minimum_pre_commit_version,omitempty"`

	AlwaysRun     *bool    `yaml:"always_run,omitempty" json:"always_run,omitempty"`
	FailFast      *bool    `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	PassFilenames *bool    `yaml:"pass_filenames,omitempty" json:"pass_filenames,omitempty"`
	RequireSerial *bool    `yaml:"require_serial,omitempty" json:"require_serial,omitempty"`
	Verbose       *bool    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	Stages        []string `yaml:"stages,omitempty" json:"stages,omitempty"`
}

// MetaHookIDs are the hook ids valid under a meta repo.
var MetaHookIDs = []string{
	"check-hooks-apply",
	"check-useless-excludes",
	"identity",
}

// KnownMetaHook reports whether id names a built-in meta hook.
func KnownMetaHook(id string) bool {
	for _, m := range MetaHookIDs {
		if m == id {
			return true
		}
	}
	return false
}
