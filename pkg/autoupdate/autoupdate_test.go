package autoupdate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookshot-sh/hookshot/pkg/config"
)

const testConfig = `# pinned tools
repos:
  - repo: https://github.com/pre-commit/pre-commit-hooks
    rev: v4.0.1
    hooks:
      - id: check-yaml
  - repo: local
    hooks:
      - id: lint
        name: lint
        entry: make lint
        language: system
  - repo: https://github.com/pycqa/flake8
    rev: 5.0.4
    hooks:
      - id: flake8
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func fakeLister(t *testing.T) Lister {
	t.Helper()
	return func(_ context.Context, url string) (RemoteInfo, error) {
		switch url {
		case "https://github.com/pre-commit/pre-commit-hooks":
			return RemoteInfo{
				Tags: []string{"v4.0.1", "v4.5.0", "v5.0.0-rc1", "list"},
				Head: "1234567890123456789012345678901234567890",
			}, nil
		case "https://github.com/pycqa/flake8":
			return RemoteInfo{
				Tags: []string{"5.0.4"},
				Head: "abcdefabcdefabcdefabcdefabcdefabcdefabcd",
			}, nil
		default:
			t.Fatalf("unexpected url %s", url)
			return RemoteInfo{}, nil
		}
	}
}

func TestRunUpdatesConfig(t *testing.T) {
	path := writeConfig(t)
	var out bytes.Buffer

	changes, err := Run(context.Background(), Options{
		ConfigPath: path,
		Out:        &out,
		List:       fakeLister(t),
	})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "https://github.com/pre-commit/pre-commit-hooks", changes[0].Repo)
	assert.Equal(t, "v4.0.1", changes[0].OldRev)
	assert.Equal(t, "v4.5.0", changes[0].NewRev)

	assert.Contains(t, out.String(), "updating v4.0.1 -> v4.5.0.")
	assert.Contains(t, out.String(), "already up to date.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "rev: v4.5.0")
	assert.Contains(t, s, "# pinned tools")
	assert.Contains(t, s, "5.0.4")
}

func TestRunDryRunLeavesFile(t *testing.T) {
	path := writeConfig(t)

	changes, err := Run(context.Background(), Options{
		ConfigPath: path,
		DryRun:     true,
		List:       fakeLister(t),
	})
	require.NoError(t, err)
	require.Len(t, changes, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testConfig, string(data))
}

func TestRunOnlyRepos(t *testing.T) {
	path := writeConfig(t)

	// Normalized comparison: bare host/path selects the https URL.
	changes, err := Run(context.Background(), Options{
		ConfigPath: path,
		OnlyRepos:  []string{"github.com/pycqa/flake8"},
		List:       fakeLister(t),
	})
	require.NoError(t, err)
	assert.Empty(t, changes)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "v4.0.1", "unselected repos stay pinned")
}

func TestRunBleedingEdge(t *testing.T) {
	path := writeConfig(t)

	changes, err := Run(context.Background(), Options{
		ConfigPath:   path,
		BleedingEdge: true,
		List:         fakeLister(t),
	})
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "1234567890123456789012345678901234567890", changes[0].NewRev)
}

func TestRunReportsFailures(t *testing.T) {
	path := writeConfig(t)
	var out bytes.Buffer

	list := func(_ context.Context, url string) (RemoteInfo, error) {
		if url == "https://github.com/pycqa/flake8" {
			return RemoteInfo{}, errors.New("connection refused")
		}
		return RemoteInfo{Tags: []string{"v4.5.0"}}, nil
	}

	changes, err := Run(context.Background(), Options{
		ConfigPath: path,
		Out:        &out,
		List:       list,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	require.Len(t, changes, 1, "reachable repos still update")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "v4.5.0")
}

func TestLatestTag(t *testing.T) {
	tests := []struct {
		name    string
		tags    []string
		want    string
		wantErr bool
	}{
		{name: "highest release wins", tags: []string{"v1.0.0", "v1.10.0", "v1.2.0"}, want: "v1.10.0"},
		{name: "releases beat newer prereleases", tags: []string{"v1.9.0", "v2.0.0-rc1"}, want: "v1.9.0"},
		{name: "prerelease fallback", tags: []string{"v2.0.0-rc1", "v2.0.0-rc2"}, want: "v2.0.0-rc2"},
		{name: "non-versions ignored", tags: []string{"list", "nightly", "v0.3.0"}, want: "v0.3.0"},
		{name: "no versions", tags: []string{"nightly"}, wantErr: true},
		{name: "empty", tags: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := latestTag(tt.tags)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoteURLs(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	urls := RemoteURLs(cfg)
	assert.Equal(t, []string{
		"https://github.com/pre-commit/pre-commit-hooks",
		"https://github.com/pycqa/flake8",
	}, urls)
}
