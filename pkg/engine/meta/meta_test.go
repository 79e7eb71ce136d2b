package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/engine/filter"
	"github.com/hookshot-sh/hookshot/pkg/engine/hook"
	"github.com/hookshot-sh/hookshot/pkg/identify"
)

func testEnv(t *testing.T, cfg *config.Config, hooks []hook.Hook, files []string) Env {
	t.Helper()
	f, err := filter.New(t.TempDir(), cfg.Files, cfg.Exclude)
	require.NoError(t, err)
	f.WithClassifier(func(path string) []string {
		return append([]string{"file", "text"}, identify.TagsFromFilename(path)...)
	})
	return Env{Config: cfg, Hooks: hooks, AllFiles: files, Filter: f}
}

func TestCheckHooksApply(t *testing.T) {
	cfg := &config.Config{}
	hooks := []hook.Hook{
		{ID: "py-only", Types: []string{"python"}},
		{ID: "go-only", Types: []string{"go"}},
		{ID: "never-matches", Files: `^nothing/`},
		{ID: "bare", AlwaysRun: true, Files: `^nothing/`},
	}
	env := testEnv(t, cfg, hooks, []string{"app.py", "lib.py"})

	out, code, err := Run(env, "check-hooks-apply", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, string(out), "go-only does not apply")
	assert.Contains(t, string(out), "never-matches does not apply")
	assert.NotContains(t, string(out), "py-only")
	assert.NotContains(t, string(out), "bare", "always_run hooks are exempt")
}

func TestCheckHooksApplyAllGood(t *testing.T) {
	env := testEnv(t, &config.Config{},
		[]hook.Hook{{ID: "py", Types: []string{"python"}}},
		[]string{"app.py"})

	out, code, err := Run(env, "check-hooks-apply", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestCheckUselessExcludes(t *testing.T) {
	cfg := &config.Config{
		Exclude: `^third_party/`,
		Repos: []config.Repo{{
			Repo: "local",
			Hooks: []config.Hook{
				{ID: "good", Exclude: `^docs/`},
				{ID: "useless", Exclude: `^generated/`},
				{ID: "scoped", Files: `\.py$`, Exclude: `\.md$`},
			},
		}},
	}
	files := []string{"app.py", "docs/guide.md", "readme.md"}
	env := testEnv(t, cfg, nil, files)

	out, code, err := Run(env, "check-useless-excludes", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	s := string(out)
	assert.Contains(t, s, `The global exclude pattern "^third_party/" does not match any files`)
	assert.Contains(t, s, `The exclude pattern "^generated/" for useless does not match any files`)
	// scoped's exclude never fires within its files pattern.
	assert.Contains(t, s, `The exclude pattern "\\.md$" for scoped does not match any files`)
	assert.NotContains(t, s, "for good")
}

func TestCheckUselessExcludesClean(t *testing.T) {
	cfg := &config.Config{
		Repos: []config.Repo{{
			Repo:  "local",
			Hooks: []config.Hook{{ID: "x", Exclude: `^vendor/`}},
		}},
	}
	env := testEnv(t, cfg, nil, []string{"vendor/dep.go", "main.go"})

	out, code, err := Run(env, "check-useless-excludes", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestIdentity(t *testing.T) {
	env := Env{}
	out, code, err := Run(env, "identity", []string{"a.py", "b.md"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "a.py\nb.md\n", string(out))
}

func TestUnknownMetaHook(t *testing.T) {
	_, _, err := Run(Env{}, "frobnicate", nil)
	require.Error(t, err)
}
