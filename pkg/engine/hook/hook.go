// Package hook resolves configured hooks against manifest defaults into the
// flat records the runner executes.
package hook

import (
	"fmt"
	"strings"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/manifest"
	"github.com/hookshot-sh/hookshot/pkg/registry"
)

// Kind says where a hook's implementation comes from.
type Kind int

const (
	// KindRemote hooks resolve their defaults from a published manifest
	// and execute their entry from PATH.
	KindRemote Kind = iota
	// KindLocal hooks are fully defined in the config file.
	KindLocal
	// KindMeta hooks run in-process.
	KindMeta
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindMeta:
		return "meta"
	default:
		return "remote"
	}
}

// Hook is a fully resolved hook: manifest defaults with config overrides
// applied, ready to filter files and execute.
type Hook struct {
	Kind Kind

	// Source repository as written in the config.
	Repo string
	Rev  string

	ID    string
	Alias string
	Name  string

	Entry    string
	Language string
	Args     []string

	Files        string
	Exclude      string
	Types        []string
	TypesOr      []string
	ExcludeTypes []string

	Stages   []string
	LogFile  string
	Verbose  bool

	AlwaysRun     bool
	FailFast      bool
	PassFilenames bool
	RequireSerial bool
}

// DisplayName is what status lines show.
func (h Hook) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// MatchesID reports whether token selects this hook by id or alias.
func (h Hook) MatchesID(token string) bool {
	return token == h.ID || (h.Alias != "" && token == h.Alias)
}

// RunsInStage reports whether the hook participates in stage. Hooks
// without explicit stages run everywhere except manual.
func (h Hook) RunsInStage(stage string) bool {
	stage, _ = config.NormalizeStage(stage)
	if len(h.Stages) == 0 {
		return stage != "manual"
	}
	for _, s := range h.Stages {
		s, _ = config.NormalizeStage(s)
		if s == stage {
			return true
		}
	}
	return false
}

// Lookup resolves a repo URL to its known manifest. Swapped in tests.
type Lookup func(repoURL string) (manifest.Manifest, bool)

// Resolve flattens the whole config into execution order. Remote hooks
// merge manifest defaults; a config-side entry override stands in for a
// missing manifest. defaultStages applies to hooks that declare none.
func Resolve(cfg *config.Config, lookup Lookup) ([]Hook, error) {
	if lookup == nil {
		lookup = registry.Lookup
	}

	var hooks []Hook
	for _, repo := range cfg.Repos {
		for _, ch := range repo.Hooks {
			h, err := resolveOne(repo, ch, lookup)
			if err != nil {
				return nil, err
			}
			if len(h.Stages) == 0 {
				h.Stages = cfg.DefaultStages
			}
			if cfg.FailFast {
				h.FailFast = true
			}
			hooks = append(hooks, h)
		}
	}
	return hooks, nil
}

func resolveOne(repo config.Repo, ch config.Hook, lookup Lookup) (Hook, error) {
	switch {
	case repo.IsMeta():
		return resolveMeta(repo, ch)
	case repo.IsLocal():
		return resolveLocal(repo, ch)
	default:
		return resolveRemote(repo, ch, lookup)
	}
}

func resolveMeta(repo config.Repo, ch config.Hook) (Hook, error) {
	if !config.KnownMetaHook(ch.ID) {
		return Hook{}, fmt.Errorf("unknown meta hook %q; known: %s",
			ch.ID, strings.Join(config.MetaHookIDs, ", "))
	}
	h := Hook{
		Kind:          KindMeta,
		Repo:          repo.Repo,
		ID:            ch.ID,
		Name:          ch.ID,
		Language:      "system",
		PassFilenames: true,
	}
	switch ch.ID {
	case "check-hooks-apply", "check-useless-excludes":
		// These inspect the config file itself.
		h.Files = `^\.pre-commit-config\.ya?ml$`
		h.AlwaysRun = true
	case "identity":
		h.Types = []string{"file"}
	}
	applyOverrides(&h, ch)
	return h, nil
}

func resolveLocal(repo config.Repo, ch config.Hook) (Hook, error) {
	if ch.Name == "" || ch.Entry == "" {
		return Hook{}, fmt.Errorf("local hook %q must define name and entry", ch.ID)
	}
	h := Hook{
		Kind:          KindLocal,
		Repo:          repo.Repo,
		ID:            ch.ID,
		Language:      "system",
		PassFilenames: true,
	}
	applyOverrides(&h, ch)
	return h, nil
}

func resolveRemote(repo config.Repo, ch config.Hook, lookup Lookup) (Hook, error) {
	h := Hook{
		Kind:          KindRemote,
		Repo:          repo.Repo,
		Rev:           repo.Rev,
		ID:            ch.ID,
		Language:      "system",
		PassFilenames: true,
	}

	if m, ok := lookup(repo.Repo); ok {
		def, ok := m.ByID(ch.ID)
		if !ok && ch.Entry == "" {
			return Hook{}, fmt.Errorf("%s does not define hook %q; known ids: %s",
				repo.Repo, ch.ID, strings.Join(m.IDs(), ", "))
		}
		if ok {
			applyManifest(&h, def)
		}
	} else if ch.Entry == "" {
		return Hook{}, fmt.Errorf(
			"no manifest known for %s and hook %q has no entry override; add `entry:` to the hook or use a known repository",
			repo.Repo, ch.ID)
	}

	applyOverrides(&h, ch)
	return h, nil
}

func applyManifest(h *Hook, def manifest.Hook) {
	h.Name = def.Name
	h.Entry = def.Entry
	if def.Language != "" {
		h.Language = def.Language
	}
	h.Args = append([]string(nil), def.Args...)
	h.Files = def.Files
	h.Exclude = def.Exclude
	h.Types = append([]string(nil), def.Types...)
	h.TypesOr = append([]string(nil), def.TypesOr...)
	h.ExcludeTypes = append([]string(nil), def.ExcludeTypes...)
	h.Stages = append([]string(nil), def.Stages...)
	h.AlwaysRun = def.AlwaysRun
	h.FailFast = def.FailFast
	h.RequireSerial = def.RequireSerial
	h.Verbose = def.Verbose
	if def.PassFilenames != nil {
		h.PassFilenames = *def.PassFilenames
	}
}

func applyOverrides(h *Hook, ch config.Hook) {
	if ch.Name != "" {
		h.Name = ch.Name
	}
	if ch.Entry != "" {
		h.Entry = ch.Entry
	}
	if ch.Language != "" {
		h.Language = ch.Language
	}
	if ch.Alias != "" {
		h.Alias = ch.Alias
	}
	if ch.Args != nil {
		h.Args = append([]string(nil), ch.Args...)
	}
	if ch.Files != "" {
		h.Files = ch.Files
	}
	if ch.Exclude != "" {
		h.Exclude = ch.Exclude
	}
	if ch.Types != nil {
		h.Types = append([]string(nil), ch.Types...)
	}
	if ch.TypesOr != nil {
		h.TypesOr = append([]string(nil), ch.TypesOr...)
	}
	if ch.ExcludeTypes != nil {
		h.ExcludeTypes = append([]string(nil), ch.ExcludeTypes...)
	}
	if ch.Stages != nil {
		h.Stages = append([]string(nil), ch.Stages...)
	}
	if ch.LogFile != "" {
		h.LogFile = ch.LogFile
	}
	if ch.AlwaysRun != nil {
		h.AlwaysRun = *ch.AlwaysRun
	}
	if ch.FailFast != nil {
		h.FailFast = *ch.FailFast
	}
	if ch.PassFilenames != nil {
		h.PassFilenames = *ch.PassFilenames
	}
	if ch.RequireSerial != nil {
		h.RequireSerial = *ch.RequireSerial
	}
	if ch.Verbose != nil {
		h.Verbose = *ch.Verbose
	}
	if h.Name == "" {
		h.Name = h.ID
	}
}
