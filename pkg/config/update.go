package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UpdateRevs rewrites the `rev` of every repo whose `repo` URL (as
// written) has an entry in revs. Only the rev scalars change; comments,
// ordering and everything else survive because the rewrite happens on
// the node tree. When no rev changes the input bytes come back untouched.
func UpdateRevs(data []byte, revs map[string]string) ([]byte, bool, error) {
	doc, err := ParseNode(data)
	if err != nil {
		return nil, false, err
	}
	root := documentRoot(doc)
	if root.Kind != yaml.MappingNode {
		return nil, false, fmt.Errorf("expected a mapping at the top level")
	}

	changed := false
	repos := mappingValue(root, "repos")
	if repos != nil && repos.Kind == yaml.SequenceNode {
		for _, repoNode := range repos.Content {
			urlNode := mappingValue(repoNode, "repo")
			revNode := mappingValue(repoNode, "rev")
			if urlNode == nil || revNode == nil {
				continue
			}
			newRev, ok := revs[urlNode.Value]
			if !ok || newRev == "" || revNode.Value == newRev {
				continue
			}
			revNode.Value = newRev
			// Version-like strings re-encode ambiguously without the tag.
			revNode.Tag = "!!str"
			changed = true
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
