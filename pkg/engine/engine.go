// Package engine orchestrates a hook run: it selects the candidate
// files, resolves the configured hooks, filters per hook, executes the
// command batches on a bounded worker pool and reports results in
// configuration order.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/engine/filter"
	"github.com/hookshot-sh/hookshot/pkg/engine/hook"
	"github.com/hookshot-sh/hookshot/pkg/engine/meta"
	"github.com/hookshot-sh/hookshot/pkg/engine/pool"
	"github.com/hookshot-sh/hookshot/pkg/engine/report"
	"github.com/hookshot-sh/hookshot/pkg/engine/xargs"
	"github.com/hookshot-sh/hookshot/pkg/gitx"
	"github.com/hookshot-sh/hookshot/pkg/telemetry"
	"github.com/hookshot-sh/hookshot/pkg/version"
)

// ErrHooksFailed indicates the run completed but at least one hook
// failed. The run report still carries every result.
var ErrHooksFailed = errors.New("hooks failed")

// Options holds run settings.
type Options struct {
	ConfigPath string // empty means <root>/.pre-commit-config.yaml
	Root       string // empty means the enclosing git top level
	Stage      string // empty means pre-commit
	HookIDs    []string

	// File selection, mutually exclusive. None set means staged files.
	AllFiles bool
	Files    []string
	FromRef  string
	ToRef    string

	FailFast bool // force fail_fast on every hook
	Verbose  bool
	Jobs     int

	// Telemetry config.
	OtelEndpoint  string
	SkipTelemetry bool

	Logger *slog.Logger
}

// Engine is the runtime core of a hook run.
type Engine struct {
	Pool   *pool.Pool
	Logger *slog.Logger
	Tracer trace.Tracer

	opts     Options
	lookup   hook.Lookup
	render   *report.Renderer
	shutdown func(context.Context) error
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the Engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	// Safe defaults.
	e := &Engine{
		Pool:   pool.New(0),
		Logger: slog.Default(),
		Tracer: otel.Tracer("hookshot/engine"),
	}

	// Apply options.
	for _, opt := range opts {
		opt(e)
	}

	if !e.opts.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, e.opts.OtelEndpoint)
		if err != nil {
			e.Logger.Warn("telemetry init failed", "error", err)
		} else {
			e.shutdown = shutdown
		}
	}

	return e, nil
}

// WithOptions sets raw run options.
func WithOptions(o Options) Option {
	return func(e *Engine) {
		e.opts = o
		if o.Logger != nil {
			e.Logger = o.Logger
		}
		if o.Jobs > 0 {
			e.Pool = pool.New(o.Jobs)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.Logger = l
	}
}

// WithLookup overrides manifest resolution.
func WithLookup(l hook.Lookup) Option {
	return func(e *Engine) {
		e.lookup = l
	}
}

// WithRenderer attaches the status-line renderer. Without one the run is
// silent and the caller exports the returned report.
func WithRenderer(r *report.Renderer) Option {
	return func(e *Engine) {
		e.render = r
	}
}

// Run executes the configured hooks and returns the aggregated report.
// A failing hook yields ErrHooksFailed after all hooks ran (or fail_fast
// stopped the sequence).
func (e *Engine) Run(ctx context.Context) (*report.Run, error) {
	defer e.stopTelemetry(ctx)

	ctx, span := e.Tracer.Start(ctx, "Engine.Run")
	defer span.End()

	// Crash safety.
	defer e.recoverPanic(ctx)

	root := e.opts.Root
	if root == "" {
		var err error
		if root, err = gitx.TopLevel(ctx, "."); err != nil {
			return nil, fmt.Errorf("not inside a git repository: %w", err)
		}
	}

	configPath := e.opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := checkMinimumVersion(cfg.MinimumVersion); err != nil {
		return nil, err
	}

	hooks, err := hook.Resolve(cfg, e.lookup)
	if err != nil {
		return nil, err
	}
	if e.opts.FailFast {
		for i := range hooks {
			hooks[i].FailFast = true
		}
	}

	stage := e.opts.Stage
	if stage == "" {
		stage = "pre-commit"
	}
	if !config.KnownStage(stage) {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	stage, _ = config.NormalizeStage(stage)

	active, err := selectHooks(hooks, stage, e.opts.HookIDs)
	if err != nil {
		return nil, err
	}

	candidates, err := e.selectFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	flt, err := filter.New(root, cfg.Files, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	files := flt.Select(candidates)

	e.Logger.Info("starting run",
		"stage", stage, "hooks", len(active), "files", len(files), "jobs", e.Pool.Workers())

	metaEnv, err := e.metaEnv(ctx, root, cfg, hooks, flt)
	if err != nil {
		return nil, err
	}

	e.Pool.Start(ctx)
	defer e.Pool.Stop()

	extraEnv := e.childEnv()
	skip := skippedIDs()

	run := &report.Run{Stage: stage}

	// Snapshot the working tree so hooks that rewrite files are caught
	// even when they exit zero.
	snapshot, snapErr := gitx.WorktreeDiff(ctx, root)
	if snapErr != nil {
		e.Logger.Warn("cannot snapshot working tree, modification detection disabled", "error", snapErr)
	}

	for _, h := range active {
		var res report.HookResult
		if skip[h.ID] || (h.Alias != "" && skip[h.Alias]) {
			res = report.HookResult{
				ID: h.ID, Name: h.DisplayName(),
				Status: report.StatusSkipped, SkipReason: "skipped via SKIP",
			}
		} else {
			res = e.runHook(ctx, h, flt, files, root, extraEnv, metaEnv)

			if snapErr == nil && res.Status != report.StatusSkipped {
				after, err := gitx.WorktreeDiff(ctx, root)
				if err == nil && !bytes.Equal(snapshot, after) {
					res.Modified = true
					res.Status = report.StatusFailed
					snapshot = after
				}
			}
		}

		run.Add(res)
		if e.render != nil {
			e.render.Line(res)
		}
		if res.Failed() && h.FailFast {
			e.Logger.Info("fail_fast stop", "hook", h.ID)
			break
		}
	}

	if e.render != nil {
		e.render.Summary(run)
	}

	passed, failed, skipped := run.Counts()
	span.SetAttributes(
		attribute.Int("run.passed", passed),
		attribute.Int("run.failed", failed),
		attribute.Int("run.skipped", skipped),
	)
	if run.Failed() {
		span.SetStatus(codes.Error, "hooks failed")
		return run, ErrHooksFailed
	}
	return run, nil
}

// runHook executes one hook over the selected files and never returns an
// error: anything going wrong becomes a failed result so the run report
// stays complete.
func (e *Engine) runHook(ctx context.Context, h hook.Hook, flt *filter.Filter, files []string, root string, extraEnv []string, metaEnv *meta.Env) report.HookResult {
	ctx, span := e.Tracer.Start(ctx, h.ID, trace.WithAttributes(
		attribute.String("hook.id", h.ID),
		attribute.String("hook.repo", h.Repo),
		attribute.String("hook.kind", h.Kind.String()),
	))
	defer span.End()

	res := report.HookResult{ID: h.ID, Name: h.DisplayName()}
	fail := func(err error) report.HookResult {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res.Status = report.StatusFailed
		res.ExitCode = 1
		res.Output = []byte(err.Error() + "\n")
		return res
	}

	hookFiles, err := flt.ForHook(h, files)
	if err != nil {
		return fail(err)
	}
	if len(hookFiles) == 0 && !h.AlwaysRun {
		res.Status = report.StatusSkipped
		res.SkipReason = "no files to check"
		return res
	}
	res.Files = len(hookFiles)
	span.SetAttributes(attribute.Int("hook.files", len(hookFiles)))

	e.Logger.Debug("running hook", "id", h.ID, "files", len(hookFiles))
	start := time.Now()

	var output []byte
	var exitCode int
	if h.Kind == hook.KindMeta {
		output, exitCode, err = meta.Run(*metaEnv, h.ID, hookFiles)
		if err != nil {
			return fail(err)
		}
	} else {
		output, exitCode, err = e.execute(ctx, h, hookFiles, root, extraEnv)
		if err != nil {
			return fail(err)
		}
	}

	res.Duration = time.Since(start)
	res.Output = output
	res.ExitCode = exitCode
	res.Status = report.StatusPassed
	if exitCode != 0 {
		res.Status = report.StatusFailed
		span.SetStatus(codes.Error, fmt.Sprintf("exit code %d", exitCode))
	}
	span.SetAttributes(attribute.Int("hook.exit_code", exitCode))

	if h.LogFile != "" {
		if err := appendLog(h.LogFile, output); err != nil {
			e.Logger.Warn("cannot write hook log file", "hook", h.ID, "path", h.LogFile, "error", err)
		}
	}
	return res
}

// execute runs the hook's entry over the file batches. Batches of one
// hook run concurrently on the pool; require_serial and pass_filenames
// collapse to a single batch.
func (e *Engine) execute(ctx context.Context, h hook.Hook, hookFiles []string, root string, extraEnv []string) ([]byte, int, error) {
	argv, err := xargs.SplitEntry(h.Entry)
	if err != nil {
		return nil, 0, fmt.Errorf("hook %s: %w", h.ID, err)
	}
	argv = append(argv, h.Args...)

	var batches [][]string
	switch {
	case !h.PassFilenames:
		batches = [][]string{nil}
	case h.RequireSerial:
		batches = [][]string{hookFiles}
	default:
		batches = xargs.Partition(xargs.ArgvLen(argv), hookFiles, xargs.DefaultBudget)
	}
	if len(batches) == 0 {
		// always_run with nothing selected still runs once.
		batches = [][]string{nil}
	}

	results := make([]xargs.Result, len(batches))
	runBatch := func(bctx context.Context, i int) {
		full := make([]string, 0, len(argv)+len(batches[i]))
		full = append(full, argv...)
		full = append(full, batches[i]...)

		r, err := xargs.Run(bctx, root, full, extraEnv)
		if err != nil {
			// Spawn failure, e.g. entry not on PATH.
			r.Output = append(r.Output, []byte(err.Error()+"\n")...)
			r.ExitCode = 1
		}
		results[i] = r
	}

	if len(batches) == 1 {
		runBatch(ctx, 0)
	} else {
		var wg sync.WaitGroup
		for i := range batches {
			wg.Add(1)
			e.Pool.Submit(func(bctx context.Context) {
				defer wg.Done()
				runBatch(bctx, i)
			})
		}
		wg.Wait()
	}

	var out bytes.Buffer
	exitCode := 0
	for _, r := range results {
		out.Write(r.Output)
		if r.ExitCode != 0 && exitCode == 0 {
			exitCode = r.ExitCode
		}
	}
	return out.Bytes(), exitCode, nil
}

// selectFiles picks the candidate set for this run. Deleted paths never
// appear: every git query filters them out.
func (e *Engine) selectFiles(ctx context.Context, root string) ([]string, error) {
	switch {
	case len(e.opts.Files) > 0:
		out := make([]string, 0, len(e.opts.Files))
		for _, f := range e.opts.Files {
			rel := f
			if filepath.IsAbs(f) {
				var err error
				if rel, err = filepath.Rel(root, f); err != nil {
					return nil, fmt.Errorf("file %s is outside %s: %w", f, root, err)
				}
			}
			out = append(out, filepath.ToSlash(filepath.Clean(rel)))
		}
		sort.Strings(out)
		return out, nil

	case e.opts.FromRef != "" || e.opts.ToRef != "":
		if e.opts.FromRef == "" || e.opts.ToRef == "" {
			return nil, errors.New("--from-ref and --to-ref must be given together")
		}
		return gitx.ChangedFiles(ctx, root, e.opts.FromRef, e.opts.ToRef)

	case e.opts.AllFiles:
		return gitx.AllFiles(ctx, root)

	default:
		staged, err := gitx.StagedFiles(ctx, root)
		if err != nil {
			return nil, err
		}
		intent, err := gitx.IntentToAddFiles(ctx, root)
		if err != nil {
			return nil, err
		}
		return mergeSorted(staged, intent), nil
	}
}

// metaEnv builds the environment the in-process meta hooks inspect. It
// lists all tracked files only when a meta hook is actually configured.
func (e *Engine) metaEnv(ctx context.Context, root string, cfg *config.Config, hooks []hook.Hook, flt *filter.Filter) (*meta.Env, error) {
	env := &meta.Env{Config: cfg, Hooks: hooks, Filter: flt}
	for _, h := range hooks {
		if h.Kind == hook.KindMeta {
			all, err := gitx.AllFiles(ctx, root)
			if err != nil {
				return nil, err
			}
			env.AllFiles = all
			break
		}
	}
	return env, nil
}

func (e *Engine) childEnv() []string {
	env := []string{"PRE_COMMIT=1"}
	if e.opts.FromRef != "" && e.opts.ToRef != "" {
		env = append(env,
			"PRE_COMMIT_FROM_REF="+e.opts.FromRef,
			"PRE_COMMIT_TO_REF="+e.opts.ToRef,
			// Legacy spellings some hook scripts still read.
			"PRE_COMMIT_ORIGIN="+e.opts.FromRef,
			"PRE_COMMIT_SOURCE="+e.opts.ToRef,
		)
	}
	return env
}

// selectHooks narrows the resolved hooks to the requested stage and ids,
// preserving configuration order.
func selectHooks(hooks []hook.Hook, stage string, ids []string) ([]hook.Hook, error) {
	var staged []hook.Hook
	for _, h := range hooks {
		if h.RunsInStage(stage) {
			staged = append(staged, h)
		}
	}
	if len(ids) == 0 {
		return staged, nil
	}

	var active []hook.Hook
	for _, h := range staged {
		for _, id := range ids {
			if h.MatchesID(id) {
				active = append(active, h)
				break
			}
		}
	}
	for _, id := range ids {
		found := false
		for _, h := range active {
			if h.MatchesID(id) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no hook with id %q in stage %q", id, stage)
		}
	}
	return active, nil
}

// skippedIDs parses the SKIP environment variable.
func skippedIDs() map[string]bool {
	skip := make(map[string]bool)
	for _, id := range strings.Split(os.Getenv("SKIP"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			skip[id] = true
		}
	}
	return skip
}

// checkMinimumVersion honors minimum_pre_commit_version. Development
// builds carry no comparable version and always pass.
func checkMinimumVersion(minimum string) error {
	if minimum == "" {
		return nil
	}
	current, err := semver.NewVersion(version.Current)
	if err != nil {
		return nil
	}
	required, err := semver.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("invalid minimum_pre_commit_version %q: %w", minimum, err)
	}
	if current.LessThan(required) {
		return fmt.Errorf("config requires at least version %s, this is %s", minimum, version.Current)
	}
	return nil
}

func appendLog(path string, output []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(output)
	return err
}

func mergeSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, f := range list {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// stopTelemetry flushes buffered spans once the run is over.
func (e *Engine) stopTelemetry(ctx context.Context) {
	if e.shutdown == nil {
		return
	}
	if err := e.shutdown(context.WithoutCancel(ctx)); err != nil {
		e.Logger.Debug("telemetry shutdown failed", "error", err)
	}
	e.shutdown = nil
}

// recoverPanic converts a crash into telemetry and a log record instead
// of taking the caller down.
func (e *Engine) recoverPanic(ctx context.Context) {
	if r := recover(); r != nil {
		tr := otel.Tracer("hookshot/engine")
		_, span := tr.Start(ctx, "CriticalPanic")

		stack := debug.Stack()
		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "critical failure")
		span.SetAttributes(
			attribute.String("crash.stack", string(stack)),
			attribute.String("crash.reason", fmt.Sprintf("%v", r)),
		)
		span.End()

		e.Logger.Error("critical failure", "error", r, "stack", string(stack))
	}
}
