// Package install writes and removes the git hook shims that invoke the
// runner at commit time. A foreign hook already in place is preserved as
// <type>.legacy and chained before the runner.
package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/gitx"
	"github.com/hookshot-sh/hookshot/pkg/version"
)

// marker identifies shims we wrote; anything without it is foreign.
const marker = "File generated by hookshot"

const shimTemplate = `#!/bin/sh
# %s %s. Remove with: hookshot uninstall
HOOK_TYPE='%s'
CONFIG='%s'
ALLOW_MISSING_CONFIG='%s'

HERE="$(cd "$(dirname "$0")" && pwd)"
if [ -x "$HERE/$HOOK_TYPE.legacy" ]; then
    "$HERE/$HOOK_TYPE.legacy" "$@" || exit
fi

if [ ! -f "$CONFIG" ]; then
    if [ "$ALLOW_MISSING_CONFIG" = '1' ] || [ "$HOOKSHOT_ALLOW_NO_CONFIG" = '1' ]; then
        exit 0
    fi
    echo "$CONFIG not found; run 'hookshot uninstall' or set HOOKSHOT_ALLOW_NO_CONFIG=1" 1>&2
    exit 1
fi

if ! command -v hookshot >/dev/null 2>&1; then
    echo 'hookshot: command not found' 1>&2
    exit 1
fi

exec hookshot run --config "$CONFIG" --hook-stage "$HOOK_TYPE"
`

// Options holds install/uninstall settings.
type Options struct {
	Root       string   // any directory inside the repository; "" means cwd
	HookTypes  []string // empty: config default_install_hook_types, else pre-commit
	ConfigPath string   // baked into the shim; "" means .pre-commit-config.yaml

	Overwrite          bool // replace foreign hooks without a .legacy backup
	AllowMissingConfig bool

	Out io.Writer
}

// ValidHookType reports whether t names an installable git hook.
func ValidHookType(t string) bool {
	t, _ = config.NormalizeStage(t)
	return t != "manual" && config.KnownStage(t)
}

// Install writes the shims and returns their paths.
func Install(ctx context.Context, opts Options) ([]string, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	hooksDir, err := gitx.HooksPath(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return nil, err
	}

	types, err := hookTypes(opts, root)
	if err != nil {
		return nil, err
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.FileName
	}
	allowMissing := "0"
	if opts.AllowMissingConfig {
		allowMissing = "1"
	}

	var installed []string
	for _, t := range types {
		path := filepath.Join(hooksDir, t)

		if data, err := os.ReadFile(path); err == nil && !bytes.Contains(data, []byte(marker)) {
			if opts.Overwrite {
				fmt.Fprintf(out, "Overwriting existing hook at %s\n", path)
			} else {
				legacy := path + ".legacy"
				if err := os.Rename(path, legacy); err != nil {
					return installed, fmt.Errorf("preserving existing %s hook: %w", t, err)
				}
				fmt.Fprintf(out, "Existing hook preserved at %s and will run first\n", legacy)
			}
		}

		shim := fmt.Sprintf(shimTemplate, marker, version.Current, t, configPath, allowMissing)
		if err := os.WriteFile(path, []byte(shim), 0o755); err != nil {
			return installed, fmt.Errorf("writing %s hook: %w", t, err)
		}
		installed = append(installed, path)
		fmt.Fprintf(out, "hookshot installed at %s\n", path)
	}
	return installed, nil
}

// Uninstall removes our shims and restores .legacy backups. Without
// explicit hook types every installed shim is removed. Foreign hooks are
// left alone.
func Uninstall(ctx context.Context, opts Options) ([]string, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	hooksDir, err := gitx.HooksPath(ctx, root)
	if err != nil {
		return nil, err
	}

	types := opts.HookTypes
	if len(types) == 0 {
		types = installableTypes()
	} else {
		if types, err = normalizeTypes(types); err != nil {
			return nil, err
		}
	}

	var removed []string
	for _, t := range types {
		path := filepath.Join(hooksDir, t)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !bytes.Contains(data, []byte(marker)) {
			if len(opts.HookTypes) > 0 {
				fmt.Fprintf(out, "%s was not installed by hookshot, leaving it alone\n", path)
			}
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("removing %s hook: %w", t, err)
		}
		removed = append(removed, path)
		fmt.Fprintf(out, "hookshot uninstalled from %s\n", path)

		legacy := path + ".legacy"
		if _, err := os.Stat(legacy); err == nil {
			if err := os.Rename(legacy, path); err != nil {
				return removed, fmt.Errorf("restoring %s hook: %w", t, err)
			}
			fmt.Fprintf(out, "Restored previous hook at %s\n", path)
		}
	}
	return removed, nil
}

// hookTypes decides what to install: explicit flags win, then the
// config's default_install_hook_types, then pre-commit.
func hookTypes(opts Options, root string) ([]string, error) {
	if len(opts.HookTypes) > 0 {
		return normalizeTypes(opts.HookTypes)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.FileName
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(root, configPath)
	}
	cfg, err := config.Load(configPath)
	switch {
	case errors.Is(err, config.ErrNotFound):
		return []string{"pre-commit"}, nil
	case err != nil:
		return nil, err
	}
	if len(cfg.DefaultInstallHookTypes) > 0 {
		return normalizeTypes(cfg.DefaultInstallHookTypes)
	}
	return []string{"pre-commit"}, nil
}

func normalizeTypes(types []string) ([]string, error) {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if !ValidHookType(t) {
			return nil, fmt.Errorf("unknown hook type %q; valid types: %s",
				t, strings.Join(installableTypes(), ", "))
		}
		t, _ = config.NormalizeStage(t)
		out = append(out, t)
	}
	return out, nil
}

func installableTypes() []string {
	var out []string
	for _, s := range config.KnownStages {
		if s != "manual" {
			out = append(out, s)
		}
	}
	return out
}
