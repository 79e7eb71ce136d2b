// Package autoupdate brings every remote repo's rev up to the latest
// released tag. Tags are listed over the git transport without cloning;
// the config rewrite touches only the rev scalars.
package autoupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/engine/pool"
	"github.com/hookshot-sh/hookshot/pkg/registry"
)

// RemoteInfo is what listing one repository yields.
type RemoteInfo struct {
	Tags []string
	Head string
}

// Lister fetches remote refs. Tests swap in a fake.
type Lister func(ctx context.Context, url string) (RemoteInfo, error)

// Options holds autoupdate settings.
type Options struct {
	ConfigPath   string
	OnlyRepos    []string // limit to these repository URLs
	BleedingEdge bool     // default-branch head instead of latest tag
	Jobs         int
	DryRun       bool

	Out  io.Writer
	List Lister // nil means ListRemote
}

// Change records one rev update.
type Change struct {
	Repo   string
	OldRev string
	NewRev string
}

// Run updates the revs in the configuration file. The returned changes
// describe what was (or with DryRun, would be) rewritten.
func Run(ctx context.Context, opts Options) ([]Change, error) {
	ctx, span := otel.Tracer("hookshot/autoupdate").Start(ctx, "Autoupdate.Run")
	defer span.End()

	if opts.Out == nil {
		opts.Out = io.Discard
	}
	list := opts.List
	if list == nil {
		list = ListRemote
	}

	data, err := os.ReadFile(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", opts.ConfigPath, err)
	}

	repos := selectRepos(cfg, opts.OnlyRepos)
	if len(repos) == 0 {
		fmt.Fprintln(opts.Out, "no remote repositories to update")
		return nil, nil
	}
	span.SetAttributes(attribute.Int("autoupdate.repos", len(repos)))

	infos, errs := fetchAll(ctx, list, urlsOf(repos), opts.Jobs)

	var (
		changes []Change
		revs    = make(map[string]string)
		failed  []error
	)
	for _, repo := range repos {
		fmt.Fprintf(opts.Out, "Updating %s ... ", repo.Repo)

		if err := errs[repo.Repo]; err != nil {
			fmt.Fprintf(opts.Out, "%s.\n", err)
			failed = append(failed, fmt.Errorf("%s: %w", repo.Repo, err))
			continue
		}
		newRev, err := pickRev(infos[repo.Repo], opts.BleedingEdge)
		if err != nil {
			fmt.Fprintf(opts.Out, "%s.\n", err)
			failed = append(failed, fmt.Errorf("%s: %w", repo.Repo, err))
			continue
		}

		if newRev == repo.Rev {
			fmt.Fprintln(opts.Out, "already up to date.")
			continue
		}
		fmt.Fprintf(opts.Out, "updating %s -> %s.\n", repo.Rev, newRev)
		changes = append(changes, Change{Repo: repo.Repo, OldRev: repo.Rev, NewRev: newRev})
		revs[repo.Repo] = newRev
	}

	if len(revs) > 0 && !opts.DryRun {
		out, changed, err := config.UpdateRevs(data, revs)
		if err != nil {
			return changes, err
		}
		if changed {
			info, err := os.Stat(opts.ConfigPath)
			if err != nil {
				return changes, err
			}
			if err := os.WriteFile(opts.ConfigPath, out, info.Mode().Perm()); err != nil {
				return changes, fmt.Errorf("writing %s: %w", opts.ConfigPath, err)
			}
		}
	}

	if len(failed) > 0 {
		return changes, errors.Join(failed...)
	}
	return changes, nil
}

// RemoteURLs returns the distinct remote repository URLs in config order,
// for interactive selection.
func RemoteURLs(cfg *config.Config) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, r := range cfg.Repos {
		if !r.IsRemote() {
			continue
		}
		if _, ok := seen[r.Repo]; ok {
			continue
		}
		seen[r.Repo] = struct{}{}
		urls = append(urls, r.Repo)
	}
	return urls
}

// ListRemote lists tags and the default-branch head of url over the git
// transport, using an in-memory remote so nothing touches disk.
func ListRemote(ctx context.Context, url string) (RemoteInfo, error) {
	rem := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	refs, err := rem.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return RemoteInfo{}, fmt.Errorf("listing %s: %w", url, err)
	}

	var info RemoteInfo
	tags := make(map[string]struct{})
	branches := make(map[string]string)
	headTarget := ""
	for _, ref := range refs {
		name := ref.Name()
		switch {
		case name == plumbing.HEAD:
			if ref.Type() == plumbing.SymbolicReference {
				headTarget = ref.Target().String()
			} else {
				info.Head = ref.Hash().String()
			}
		case name.IsBranch():
			branches[name.String()] = ref.Hash().String()
		case name.IsTag():
			// Annotated tags advertise a peeled duplicate.
			tags[strings.TrimSuffix(name.Short(), "^{}")] = struct{}{}
		}
	}
	if info.Head == "" && headTarget != "" {
		info.Head = branches[headTarget]
	}
	for tag := range tags {
		info.Tags = append(info.Tags, tag)
	}
	return info, nil
}

// fetchAll lists every repository on a bounded pool.
func fetchAll(ctx context.Context, list Lister, urls []string, jobs int) (map[string]RemoteInfo, map[string]error) {
	infos := make(map[string]RemoteInfo, len(urls))
	errs := make(map[string]error)
	var mu sync.Mutex

	p := pool.New(jobs)
	p.Start(ctx)
	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		p.Submit(func(tctx context.Context) {
			defer wg.Done()
			info, err := list(tctx, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[url] = err
				return
			}
			infos[url] = info
		})
	}
	wg.Wait()
	p.Stop()
	return infos, errs
}

func pickRev(info RemoteInfo, bleedingEdge bool) (string, error) {
	if bleedingEdge {
		if info.Head == "" {
			return "", errors.New("cannot resolve the default branch head")
		}
		return info.Head, nil
	}
	return latestTag(info.Tags)
}

// latestTag picks the highest version-ordered tag, preferring releases
// over prereleases. Tags that do not parse as versions are ignored.
func latestTag(tags []string) (string, error) {
	var (
		best, bestPre       *semver.Version
		bestTag, bestPreTag string
	)
	for _, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if v.Prerelease() != "" {
			if bestPre == nil || v.GreaterThan(bestPre) {
				bestPre, bestPreTag = v, tag
			}
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestTag = v, tag
		}
	}
	switch {
	case bestTag != "":
		return bestTag, nil
	case bestPreTag != "":
		return bestPreTag, nil
	default:
		return "", errors.New("no version tags found")
	}
}

// selectRepos returns the remote repo entries to update, filtered by the
// requested URLs (normalized comparison, so trailing .git and scheme
// differences do not matter).
func selectRepos(cfg *config.Config, only []string) []config.Repo {
	wanted := make(map[string]struct{}, len(only))
	for _, u := range only {
		wanted[registry.Normalize(u)] = struct{}{}
	}

	var repos []config.Repo
	for _, r := range cfg.Repos {
		if !r.IsRemote() {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[registry.Normalize(r.Repo)]; !ok {
				continue
			}
		}
		repos = append(repos, r)
	}
	return repos
}

func urlsOf(repos []config.Repo) []string {
	seen := make(map[string]struct{}, len(repos))
	var urls []string
	for _, r := range repos {
		if _, ok := seen[r.Repo]; ok {
			continue
		}
		seen[r.Repo] = struct{}{}
		urls = append(urls, r.Repo)
	}
	return urls
}
