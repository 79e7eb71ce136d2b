package config

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hookshot-sh/hookshot/pkg/diag"
	"github.com/hookshot-sh/hookshot/pkg/identify"
)

// revs that move: pointing a pin at one defeats the point of pinning.
var mutableRevs = map[string]struct{}{
	"HEAD": {}, "FETCH_HEAD": {},
	"master": {}, "main": {}, "trunk": {}, "develop": {},
	"latest": {}, "stable": {},
}

// Validator checks a configuration file and reports findings with file
// positions. A hook lookup, when provided, cross-checks hook ids against
// the known manifests for a repo URL.
type Validator struct {
	lookupHooks func(repoURL string) ([]string, bool)
}

// ValidatorOption customizes a Validator.
type ValidatorOption func(*Validator)

// WithHookLookup wires a registry query used to flag hook ids that the
// repo's manifest does not declare.
func WithHookLookup(fn func(repoURL string) ([]string, bool)) ValidatorOption {
	return func(v *Validator) { v.lookupHooks = fn }
}

// NewValidator builds a Validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks configuration bytes read from path and returns all
// findings. The path is only used to label findings.
func (v *Validator) Validate(path string, data []byte) diag.List {
	var findings diag.List

	doc, err := ParseNode(data)
	if err != nil {
		findings.Errorf(path, 0, "config", "%v", err)
		return findings
	}
	root := documentRoot(doc)

	if root.Kind == yaml.SequenceNode {
		findings.Errorf(path, root.Line, "legacy-format",
			"top-level list is the legacy layout; run `hookshot migrate-config`")
		return findings
	}
	if root.Kind != yaml.MappingNode {
		findings.Errorf(path, root.Line, "config", "expected a mapping at the top level")
		return findings
	}

	// Strict decode catches unknown and mistyped fields with line numbers.
	if _, err := Parse(data); err != nil {
		appendDecodeErrors(&findings, path, err)
	}

	v.checkTopLevel(&findings, path, root)

	repos := mappingValue(root, "repos")
	switch {
	case repos == nil:
		findings.Errorf(path, root.Line, "config", "missing required key: repos")
	case repos.Kind != yaml.SequenceNode:
		findings.Errorf(path, repos.Line, "config", "repos must be a list")
	case len(repos.Content) == 0:
		findings.Warnf(path, repos.Line, "config", "repos list is empty; nothing will run")
	default:
		for _, repoNode := range repos.Content {
			v.checkRepo(&findings, path, repoNode)
		}
	}

	findings.Sort()
	return findings
}

func (v *Validator) checkTopLevel(findings *diag.List, path string, root *yaml.Node) {
	checkRegexNode(findings, path, mappingValue(root, "files"), "files")
	checkRegexNode(findings, path, mappingValue(root, "exclude"), "exclude")
	checkStagesNode(findings, path, mappingValue(root, "default_stages"))
}

func (v *Validator) checkRepo(findings *diag.List, path string, repoNode *yaml.Node) {
	if repoNode.Kind != yaml.MappingNode {
		findings.Errorf(path, repoNode.Line, "config", "repo entry must be a mapping")
		return
	}

	repoURL := scalarValue(mappingValue(repoNode, "repo"))
	if repoURL == "" {
		findings.Errorf(path, repoNode.Line, "config", "missing required key: repo")
		return
	}

	local := repoURL == RepoLocal
	meta := repoURL == RepoMeta

	if sha := mappingValue(repoNode, "sha"); sha != nil {
		findings.Errorf(path, sha.Line, "legacy-format",
			"`sha` was renamed to `rev`; run `hookshot migrate-config`")
	}

	rev := mappingValue(repoNode, "rev")
	switch {
	case local || meta:
		if rev != nil {
			findings.Errorf(path, rev.Line, "rev", "%s repos cannot have a rev", repoURL)
		}
	case rev == nil || scalarValue(rev) == "":
		findings.Errorf(path, repoNode.Line, "rev", "remote repo %s is missing required key: rev", repoURL)
	case revLooksMutable(scalarValue(rev)):
		findings.Warnf(path, rev.Line, "mutable-rev",
			"rev %q of %s looks like a mutable reference; pin a tag or commit instead", scalarValue(rev), repoURL)
	}

	hooks := mappingValue(repoNode, "hooks")
	switch {
	case hooks == nil:
		findings.Errorf(path, repoNode.Line, "config", "repo %s is missing required key: hooks", repoURL)
		return
	case hooks.Kind != yaml.SequenceNode || len(hooks.Content) == 0:
		findings.Errorf(path, hooks.Line, "config", "repo %s must list at least one hook", repoURL)
		return
	}

	var knownIDs []string
	haveManifest := false
	if v.lookupHooks != nil && !local && !meta {
		knownIDs, haveManifest = v.lookupHooks(repoURL)
	}

	for _, hookNode := range hooks.Content {
		v.checkHook(findings, path, hookNode, repoURL, local, meta, knownIDs, haveManifest)
	}
}

func (v *Validator) checkHook(findings *diag.List, path string, hookNode *yaml.Node, repoURL string, local, meta bool, knownIDs []string, haveManifest bool) {
	if hookNode.Kind != yaml.MappingNode {
		findings.Errorf(path, hookNode.Line, "config", "hook entry must be a mapping")
		return
	}

	id := scalarValue(mappingValue(hookNode, "id"))
	if id == "" {
		findings.Errorf(path, hookNode.Line, "config", "hook is missing required key: id")
		return
	}

	switch {
	case meta:
		if !KnownMetaHook(id) {
			findings.Errorf(path, hookNode.Line, "meta-hook",
				"unknown meta hook %q; known: %s", id, strings.Join(MetaHookIDs, ", "))
		}
	case local:
		for _, key := range []string{"name", "entry", "language"} {
			if scalarValue(mappingValue(hookNode, key)) == "" {
				findings.Errorf(path, hookNode.Line, "local-hook",
					"local hook %s is missing required key: %s", id, key)
			}
		}
	case haveManifest && !containsString(knownIDs, id):
		if scalarValue(mappingValue(hookNode, "entry")) == "" {
			findings.Warnf(path, hookNode.Line, "unknown-hook",
				"%s does not define hook %q; known ids: %s", repoURL, id, strings.Join(knownIDs, ", "))
		}
	}

	checkRegexNode(findings, path, mappingValue(hookNode, "files"), "files")
	checkRegexNode(findings, path, mappingValue(hookNode, "exclude"), "exclude")
	checkStagesNode(findings, path, mappingValue(hookNode, "stages"))

	for _, key := range []string{"types", "types_or", "exclude_types"} {
		checkTypeTags(findings, path, mappingValue(hookNode, key), key)
	}

	if deps := mappingValue(hookNode, "additional_dependencies"); deps != nil && len(deps.Content) > 0 {
		findings.Warnf(path, deps.Line, "additional-dependencies",
			"hook %s: additional_dependencies are not installed; the entry must already be on PATH", id)
	}
}

func checkRegexNode(findings *diag.List, path string, node *yaml.Node, key string) {
	if node == nil || node.Value == "" {
		return
	}
	if _, err := regexp.Compile(node.Value); err != nil {
		findings.Errorf(path, node.Line, "regex", "invalid %s pattern: %v", key, err)
	}
}

func checkStagesNode(findings *diag.List, path string, node *yaml.Node) {
	if node == nil || node.Kind != yaml.SequenceNode {
		return
	}
	for _, stage := range node.Content {
		name := stage.Value
		if current, legacy := NormalizeStage(name); legacy {
			findings.Warnf(path, stage.Line, "legacy-stage",
				"stage %q was renamed to %q; run `hookshot migrate-config`", name, current)
			continue
		}
		if !KnownStage(name) {
			findings.Errorf(path, stage.Line, "stage",
				"unknown stage %q; known: %s", name, strings.Join(KnownStages, ", "))
		}
	}
}

func checkTypeTags(findings *diag.List, path string, node *yaml.Node, key string) {
	if node == nil || node.Kind != yaml.SequenceNode {
		return
	}
	for _, tag := range node.Content {
		if !identify.ValidTag(tag.Value) {
			findings.Errorf(path, tag.Line, "type-tag", "unknown file type %q in %s", tag.Value, key)
		}
	}
}

// appendDecodeErrors converts strict-decode failures into findings,
// recovering the "line N:" prefix yaml.v3 puts on each type error.
func appendDecodeErrors(findings *diag.List, path string, err error) {
	var typeErr *yaml.TypeError
	if !errors.As(err, &typeErr) {
		findings.Errorf(path, 0, "config", "%v", err)
		return
	}
	for _, msg := range typeErr.Errors {
		line := 0
		if rest, ok := strings.CutPrefix(msg, "line "); ok {
			if i := strings.IndexByte(rest, ':'); i > 0 {
				if n, convErr := strconv.Atoi(rest[:i]); convErr == nil {
					line = n
					msg = strings.TrimSpace(rest[i+1:])
				}
			}
		}
		findings.Errorf(path, line, "schema", "%s", msg)
	}
}

func scalarValue(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

func revLooksMutable(rev string) bool {
	if _, ok := mutableRevs[rev]; ok {
		return true
	}
	// Branch names rarely carry digits; tags and hashes almost always do.
	return !strings.ContainsAny(rev, "0123456789")
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
