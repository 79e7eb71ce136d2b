package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Migrate rewrites legacy configuration shapes: a bare top-level list is
// wrapped under `repos:`, `sha:` keys become `rev:`, and renamed stages get
// their current spelling. Comments survive because the rewrite happens on
// the node tree. The second return reports whether anything changed; when
// nothing did, the input bytes come back untouched.
func Migrate(data []byte) ([]byte, bool, error) {
	doc, err := ParseNode(data)
	if err != nil {
		return nil, false, err
	}

	changed := false
	root := documentRoot(doc)

	if root.Kind == yaml.SequenceNode {
		wrapped := &yaml.Node{
			Kind: yaml.MappingNode,
			Tag:  "!!map",
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: "repos"},
				root,
			},
		}
		doc.Content[0] = wrapped
		root = wrapped
		changed = true
	}

	if root.Kind != yaml.MappingNode {
		return nil, false, fmt.Errorf("expected a mapping at the top level")
	}

	if migrateStageList(mappingValue(root, "default_stages")) {
		changed = true
	}

	if repos := mappingValue(root, "repos"); repos != nil && repos.Kind == yaml.SequenceNode {
		for _, repoNode := range repos.Content {
			if migrateRepo(repoNode) {
				changed = true
			}
		}
	}

	if !changed {
		return data, false, nil
	}
	out, err := encodeNode(doc)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// MigrateFile migrates the configuration at path in place. It reports
// whether the file was rewritten.
func MigrateFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out, changed, err := Migrate(data)
	if err != nil {
		return false, fmt.Errorf("migrating %s: %w", path, err)
	}
	if !changed {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(path, out, info.Mode().Perm())
}

func migrateRepo(repoNode *yaml.Node) bool {
	if repoNode.Kind != yaml.MappingNode {
		return false
	}
	changed := false
	for i := 0; i+1 < len(repoNode.Content); i += 2 {
		if repoNode.Content[i].Value == "sha" {
			repoNode.Content[i].Value = "rev"
			changed = true
		}
	}
	if hooks := mappingValue(repoNode, "hooks"); hooks != nil && hooks.Kind == yaml.SequenceNode {
		for _, hookNode := range hooks.Content {
			if migrateStageList(mappingValue(hookNode, "stages")) {
				changed = true
			}
		}
	}
	return changed
}

func migrateStageList(node *yaml.Node) bool {
	if node == nil || node.Kind != yaml.SequenceNode {
		return false
	}
	changed := false
	for _, stage := range node.Content {
		if current, legacy := NormalizeStage(stage.Value); legacy {
			stage.Value = current
			changed = true
		}
	}
	return changed
}
