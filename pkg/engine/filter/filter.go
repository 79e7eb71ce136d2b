// Package filter narrows a candidate file list down to what each hook
// actually receives: top-level patterns first, then the hook's own
// patterns and type tags.
package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/hookshot-sh/hookshot/pkg/engine/hook"
	"github.com/hookshot-sh/hookshot/pkg/identify"
)

// Classifier maps a repository-relative path to its type tags. The
// default stats the file under root; tests substitute a lexical one.
type Classifier func(path string) []string

// Filter applies the configured selection rules.
type Filter struct {
	root     string
	files    *regexp.Regexp
	exclude  *regexp.Regexp
	classify Classifier

	// tag cache; hooks repeatedly classify the same paths
	tags map[string][]string
}

// New compiles the top-level files/exclude patterns. root anchors
// classification; empty patterns match everything (files) or nothing
// (exclude).
func New(root, filesPattern, excludePattern string) (*Filter, error) {
	f := &Filter{root: root, tags: make(map[string][]string)}

	var err error
	if f.files, err = compile(filesPattern, "files"); err != nil {
		return nil, err
	}
	if f.exclude, err = compile(excludePattern, "exclude"); err != nil {
		return nil, err
	}

	f.classify = func(path string) []string {
		tags, err := identify.Tags(filepath.Join(root, path))
		if err != nil {
			if os.IsNotExist(err) {
				// Deleted between selection and classification.
				return nil
			}
			return identify.TagsFromFilename(path)
		}
		return tags
	}
	return f, nil
}

// WithClassifier replaces the filesystem classifier.
func (f *Filter) WithClassifier(c Classifier) *Filter {
	f.classify = c
	return f
}

// Select returns the candidate files that pass the top-level patterns.
func (f *Filter) Select(candidates []string) []string {
	var out []string
	for _, path := range candidates {
		if f.files != nil && !f.files.MatchString(path) {
			continue
		}
		if f.exclude != nil && f.exclude.MatchString(path) {
			continue
		}
		out = append(out, path)
	}
	return out
}

// ForHook narrows already-selected files to the ones hook h applies to.
func (f *Filter) ForHook(h hook.Hook, selected []string) ([]string, error) {
	files, err := compile(h.Files, "files")
	if err != nil {
		return nil, fmt.Errorf("hook %s: %w", h.ID, err)
	}
	exclude, err := compile(h.Exclude, "exclude")
	if err != nil {
		return nil, fmt.Errorf("hook %s: %w", h.ID, err)
	}

	var out []string
	for _, path := range selected {
		if files != nil && !files.MatchString(path) {
			continue
		}
		if exclude != nil && exclude.MatchString(path) {
			continue
		}
		if !f.matchTypes(h, path) {
			continue
		}
		out = append(out, path)
	}
	return out, nil
}

func (f *Filter) matchTypes(h hook.Hook, path string) bool {
	if len(h.Types) == 0 && len(h.TypesOr) == 0 && len(h.ExcludeTypes) == 0 {
		return true
	}

	tags, ok := f.tags[path]
	if !ok {
		tags = f.classify(path)
		f.tags[path] = tags
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}

	for _, t := range h.Types {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	if len(h.TypesOr) > 0 {
		any := false
		for _, t := range h.TypesOr {
			if _, ok := set[t]; ok {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	for _, t := range h.ExcludeTypes {
		if _, ok := set[t]; ok {
			return false
		}
	}
	return true
}

func compile(pattern, what string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", what, pattern, err)
	}
	return re, nil
}
