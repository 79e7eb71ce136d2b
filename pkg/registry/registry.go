// Package registry vendors the hook manifests of well-known hook
// repositories so hook ids resolve without cloning anything. Lookup is by
// normalized repository URL and is version-independent.
package registry

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hookshot-sh/hookshot/pkg/manifest"
)

//go:embed manifests/*.yaml
var manifestFS embed.FS

// manifestFiles maps a normalized repo URL to its vendored manifest.
var manifestFiles = map[string]string{
	"github.com/pre-commit/pre-commit-hooks": "manifests/pre-commit-hooks.yaml",
	"github.com/omnilib/ufmt":                "manifests/ufmt.yaml",
	"github.com/pycqa/flake8":                "manifests/flake8.yaml",
	"github.com/pycqa/pydocstyle":            "manifests/pydocstyle.yaml",
	"github.com/psf/black":                   "manifests/black.yaml",
	"github.com/pycqa/isort":                 "manifests/isort.yaml",
}

var (
	loadOnce  sync.Once
	loaded    map[string]manifest.Manifest
	loadError error
)

func load() {
	loaded = make(map[string]manifest.Manifest, len(manifestFiles))
	for repo, file := range manifestFiles {
		data, err := manifestFS.ReadFile(file)
		if err != nil {
			loadError = fmt.Errorf("registry: reading %s: %w", file, err)
			return
		}
		m, err := manifest.Parse(data)
		if err != nil {
			loadError = fmt.Errorf("registry: parsing %s: %w", file, err)
			return
		}
		loaded[repo] = m
	}
}

// Normalize canonicalizes a repository URL for registry lookup: scheme,
// "git@host:" form, trailing slash, ".git" suffix and letter case are all
// erased.
func Normalize(repoURL string) string {
	u := strings.TrimSpace(strings.ToLower(repoURL))
	for _, prefix := range []string{"https://", "http://", "git://", "ssh://git@", "ssh://"} {
		if rest, ok := strings.CutPrefix(u, prefix); ok {
			u = rest
			break
		}
	}
	if rest, ok := strings.CutPrefix(u, "git@"); ok {
		u = strings.Replace(rest, ":", "/", 1)
	}
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")
	return u
}

// Lookup returns the vendored manifest for repoURL.
func Lookup(repoURL string) (manifest.Manifest, bool) {
	loadOnce.Do(load)
	if loadError != nil {
		return nil, false
	}
	m, ok := loaded[Normalize(repoURL)]
	return m, ok
}

// KnownHookIDs returns the hook ids the repo's vendored manifest declares.
// The signature matches config.WithHookLookup.
func KnownHookIDs(repoURL string) ([]string, bool) {
	m, ok := Lookup(repoURL)
	if !ok {
		return nil, false
	}
	return m.IDs(), true
}

// Repos lists the normalized URLs of all vendored repositories.
func Repos() []string {
	out := make([]string, 0, len(manifestFiles))
	for repo := range manifestFiles {
		out = append(out, repo)
	}
	sort.Strings(out)
	return out
}

// Err surfaces an embedded-manifest load failure, if any. It is checked
// by tests; callers treat a failed load as an absent manifest.
func Err() error {
	loadOnce.Do(load)
	return loadError
}
