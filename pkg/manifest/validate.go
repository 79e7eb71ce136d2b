package manifest

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/diag"
	"github.com/hookshot-sh/hookshot/pkg/identify"
)

// Languages a manifest may declare. Execution always resolves the entry on
// PATH, but the names are validated so upstream manifests round-trip.
var knownLanguages = []string{
	"conda", "coursier", "dart", "docker", "docker_image", "dotnet", "fail",
	"golang", "haskell", "julia", "lua", "node", "perl", "pygrep", "python",
	"r", "ruby", "rust", "script", "swift", "system",
}

// KnownLanguage reports whether name is a recognized hook language.
func KnownLanguage(name string) bool {
	for _, l := range knownLanguages {
		if l == name {
			return true
		}
	}
	return false
}

// Validate checks manifest bytes read from path and returns all findings.
func Validate(path string, data []byte) diag.List {
	var findings diag.List

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		findings.Errorf(path, 0, "manifest", "%v", err)
		return findings
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		findings.Errorf(path, 0, "manifest", "manifest is empty")
		return findings
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		findings.Errorf(path, root.Line, "manifest", "manifest must be a list of hooks")
		return findings
	}

	if _, err := Parse(data); err != nil {
		findings.Errorf(path, 0, "schema", "%v", err)
	}

	for _, hookNode := range root.Content {
		checkHook(&findings, path, hookNode)
	}

	findings.Sort()
	return findings
}

func checkHook(findings *diag.List, path string, hookNode *yaml.Node) {
	if hookNode.Kind != yaml.MappingNode {
		findings.Errorf(path, hookNode.Line, "manifest", "hook entry must be a mapping")
		return
	}

	field := func(key string) *yaml.Node {
		for i := 0; i+1 < len(hookNode.Content); i += 2 {
			if hookNode.Content[i].Value == key {
				return hookNode.Content[i+1]
			}
		}
		return nil
	}
	scalar := func(key string) string {
		if n := field(key); n != nil && n.Kind == yaml.ScalarNode {
			return n.Value
		}
		return ""
	}

	id := scalar("id")
	for _, key := range []string{"id", "name", "entry"} {
		if scalar(key) == "" {
			findings.Errorf(path, hookNode.Line, "manifest", "hook %s is missing required key: %s", orUnnamed(id), key)
		}
	}

	if lang := field("language"); lang != nil && !KnownLanguage(lang.Value) {
		findings.Errorf(path, lang.Line, "language",
			"hook %s declares unknown language %q", orUnnamed(id), lang.Value)
	}

	for _, key := range []string{"files", "exclude"} {
		if n := field(key); n != nil && n.Value != "" {
			if _, err := regexp.Compile(n.Value); err != nil {
				findings.Errorf(path, n.Line, "regex", "invalid %s pattern: %v", key, err)
			}
		}
	}

	if stages := field("stages"); stages != nil && stages.Kind == yaml.SequenceNode {
		for _, stage := range stages.Content {
			if current, legacy := config.NormalizeStage(stage.Value); legacy {
				findings.Warnf(path, stage.Line, "legacy-stage",
					"stage %q was renamed to %q", stage.Value, current)
			} else if !config.KnownStage(stage.Value) {
				findings.Errorf(path, stage.Line, "stage",
					"unknown stage %q; known: %s", stage.Value, strings.Join(config.KnownStages, ", "))
			}
		}
	}

	for _, key := range []string{"types", "types_or", "exclude_types"} {
		if n := field(key); n != nil && n.Kind == yaml.SequenceNode {
			for _, tag := range n.Content {
				if !identify.ValidTag(tag.Value) {
					findings.Errorf(path, tag.Line, "type-tag", "unknown file type %q in %s", tag.Value, key)
				}
			}
		}
	}
}

func orUnnamed(id string) string {
	if id == "" {
		return "(unnamed)"
	}
	return id
}
