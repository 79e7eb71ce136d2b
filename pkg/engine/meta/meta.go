// Package meta implements the built-in hooks configured under `repo:
// meta`. They inspect the configuration itself and run in-process.
package meta

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/engine/filter"
	"github.com/hookshot-sh/hookshot/pkg/engine/hook"
)

// Env is what the meta hooks get to look at: the loaded config, the
// resolved hooks and the tracked files of the repository.
type Env struct {
	Config   *config.Config
	Hooks    []hook.Hook
	AllFiles []string
	Filter   *filter.Filter
}

// Run executes the meta hook with the given id. files is the batch the
// runner selected for the hook (only identity cares). The returned exit
// code follows the usual hook convention.
func Run(env Env, id string, files []string) ([]byte, int, error) {
	switch id {
	case "check-hooks-apply":
		return checkHooksApply(env)
	case "check-useless-excludes":
		return checkUselessExcludes(env)
	case "identity":
		return identity(files)
	default:
		return nil, 1, fmt.Errorf("unknown meta hook %q", id)
	}
}

// checkHooksApply flags configured hooks that match no file in the
// repository. always_run hooks apply by definition.
func checkHooksApply(env Env) ([]byte, int, error) {
	var out bytes.Buffer
	code := 0

	selected := env.Filter.Select(env.AllFiles)
	for _, h := range env.Hooks {
		if h.Kind == hook.KindMeta || h.AlwaysRun {
			continue
		}
		files, err := env.Filter.ForHook(h, selected)
		if err != nil {
			return nil, 1, err
		}
		if len(files) == 0 {
			fmt.Fprintf(&out, "%s does not apply to this repository\n", h.ID)
			code = 1
		}
	}
	return out.Bytes(), code, nil
}

// checkUselessExcludes flags exclude patterns that exclude nothing.
func checkUselessExcludes(env Env) ([]byte, int, error) {
	var out bytes.Buffer
	code := 0

	if env.Config.Exclude != "" {
		matches, err := anyMatch(env.Config.Exclude, env.AllFiles)
		if err != nil {
			return nil, 1, err
		}
		if !matches {
			fmt.Fprintf(&out, "The global exclude pattern %q does not match any files\n", env.Config.Exclude)
			code = 1
		}
	}

	for _, repo := range env.Config.Repos {
		for _, ch := range repo.Hooks {
			if ch.Exclude == "" {
				continue
			}
			include := ch.Files
			candidates, err := matching(include, env.AllFiles)
			if err != nil {
				return nil, 1, err
			}
			matches, err := anyMatch(ch.Exclude, candidates)
			if err != nil {
				return nil, 1, err
			}
			if !matches {
				fmt.Fprintf(&out, "The exclude pattern %q for %s does not match any files\n", ch.Exclude, ch.ID)
				code = 1
			}
		}
	}
	return out.Bytes(), code, nil
}

// identity prints its filenames, a debugging aid for filter rules.
func identity(files []string) ([]byte, int, error) {
	var out bytes.Buffer
	for _, f := range files {
		fmt.Fprintln(&out, f)
	}
	return out.Bytes(), 0, nil
}

func matching(pattern string, files []string) ([]string, error) {
	if pattern == "" {
		return files, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	var out []string
	for _, f := range files {
		if re.MatchString(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func anyMatch(pattern string, files []string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	for _, f := range files {
		if re.MatchString(f) {
			return true, nil
		}
	}
	return false, nil
}
