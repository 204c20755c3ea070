// Package hook coordinates a run: it resolves the configured hooks, selects
// their files, runs them in order and reports each outcome.
package hook

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/hook/execution"
	"github.com/blairham/hookcfg/pkg/hook/matching"
	"github.com/blairham/hookcfg/pkg/logging"
)

var logger = logging.NewLogger("orchestrator")

// DefaultStage is the stage of a plain `run`.
const DefaultStage = "pre-commit"

// SkipNoFiles is the reason shown for hooks with nothing to check.
const SkipNoFiles = "(no files to check)"

// Resolver turns a configured hook into its full definition, fetching the
// hook's repository when needed. It returns the checkout path ("" for local
// and meta hooks).
type Resolver interface {
	ResolveHook(ctx context.Context, repo config.Repo, hook config.Hook) (string, config.Hook, error)
}

// Orchestrator coordinates hook execution
type Orchestrator struct {
	ctx      *execution.Context
	resolver Resolver
	executor *execution.Executor
	matcher  *matching.Matcher

	// OnResult, when set, is called as each hook finishes.
	OnResult func(execution.Result)
}

// NewOrchestrator creates a new hook orchestrator
func NewOrchestrator(ctx *execution.Context, resolver Resolver) *Orchestrator {
	matcher := matching.NewMatcher(ctx.RepoRoot)
	return &Orchestrator{
		ctx:      ctx,
		resolver: resolver,
		executor: execution.NewExecutor(ctx, matcher),
		matcher:  matcher,
	}
}

// Resolve resolves every hook in the configuration, in config order, and
// applies the configuration defaults to each.
func (o *Orchestrator) Resolve(ctx context.Context) ([]execution.RunItem, error) {
	start := time.Now()
	defer logging.Timing(logger, "resolve", start)

	cfg := o.ctx.Config
	var items []execution.RunItem
	for _, repo := range cfg.Repos {
		for _, hook := range repo.Hooks {
			path, resolved, err := o.resolver.ResolveHook(ctx, repo, hook)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve hook %s: %w", hook.ID, err)
			}
			if resolved.MinimumPreCommitVersion != "" {
				if err := config.CheckMinimumVersion(resolved.MinimumPreCommitVersion); err != nil {
					return nil, fmt.Errorf("hook %s: %w", hook.ID, err)
				}
			}
			items = append(items, execution.RunItem{
				RepoPath: path,
				Repo:     repo,
				Hook:     cfg.ApplyDefaults(resolved),
			})
		}
	}
	return items, nil
}

// Selected returns the resolved hooks the stage and hook id filters keep,
// resolving the configuration first if Context.Items is empty.
func (o *Orchestrator) Selected(ctx context.Context) ([]execution.RunItem, error) {
	if o.ctx.Items == nil {
		items, err := o.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		o.ctx.Items = items
	}

	stage := o.stage()
	var selected []execution.RunItem
	for _, item := range o.ctx.Items {
		if o.selected(item.Hook, stage) {
			selected = append(selected, item)
		}
	}
	return selected, nil
}

// Run executes the hooks selected for the stage and returns one result per
// hook considered, in config order. Hooks run one at a time; a hook's own
// file batches may run concurrently.
func (o *Orchestrator) Run(ctx context.Context) ([]execution.Result, error) {
	start := time.Now()
	defer logging.Timing(logger, "run", start)

	items, err := o.Selected(ctx)
	if err != nil {
		return nil, err
	}

	skip := SkippedHookIDs(os.Getenv(constants.EnvSkip))
	files := matching.FilterRoot(o.ctx.Config, o.ctx.Files)
	watched := watchedFiles(o.ctx.RepoFiles, o.ctx.Files)

	var results []execution.Result
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := o.runOne(ctx, item, files, watched, skip)
		results = append(results, result)
		if o.OnResult != nil {
			o.OnResult(result)
		}

		if !result.Success() && (o.ctx.Config.FailFast || item.Hook.FailFast) {
			logger.WithField("hook", item.Hook.ID).Debug("stopping after failure (fail_fast)")
			break
		}
	}
	return results, nil
}

// runOne runs a single hook on its share of files. Any change to a watched
// file, whether or not the hook was given it, fails the hook.
func (o *Orchestrator) runOne(ctx context.Context, item execution.RunItem, files, watched, skip []string) execution.Result {
	hook := item.Hook

	if matchesHookID(hook, skip) {
		return execution.Result{Hook: hook, Status: execution.StatusSkipped}
	}

	hookFiles := o.matcher.FilesForHook(hook, files)
	if len(hookFiles) == 0 && !hook.AlwaysRun {
		return execution.Result{Hook: hook, Status: execution.StatusSkipped, SkipReason: SkipNoFiles}
	}

	before := execution.Snapshot(o.ctx.RepoRoot, watched)
	result := o.executor.Execute(ctx, item, hookFiles)
	after := execution.Snapshot(o.ctx.RepoRoot, watched)

	if modified := execution.ModifiedFiles(watched, before, after); len(modified) > 0 {
		result.Modified = true
		result.Status = execution.StatusFailed
		logger.WithField("hook", hook.ID).Debugf("modified %s", strings.Join(modified, ", "))
	}

	if hook.LogFile != "" && result.Output != "" {
		if err := appendLog(hook.LogFile, result.Output); err != nil {
			logger.WithField("hook", hook.ID).Warnf("failed to write log_file: %v", err)
		}
	}
	return result
}

// watchedFiles is every tracked file plus any extra candidate file, such
// as an untracked path named with --files.
func watchedFiles(tracked, candidates []string) []string {
	watched := slices.Clone(tracked)
	seen := make(map[string]bool, len(tracked))
	for _, file := range tracked {
		seen[file] = true
	}
	for _, file := range candidates {
		if !seen[file] {
			seen[file] = true
			watched = append(watched, file)
		}
	}
	return watched
}

func (o *Orchestrator) stage() string {
	if o.ctx.HookStage == "" {
		return DefaultStage
	}
	return o.ctx.HookStage
}

// selected applies the stage and the positional hook id filters. Hooks
// without stages run in every stage.
func (o *Orchestrator) selected(hook config.Hook, stage string) bool {
	if len(hook.Stages) > 0 && !slices.Contains(hook.Stages, stage) {
		return false
	}
	return len(o.ctx.HookIDs) == 0 || matchesHookID(hook, o.ctx.HookIDs)
}

func matchesHookID(hook config.Hook, ids []string) bool {
	return slices.Contains(ids, hook.ID) || (hook.Alias != "" && slices.Contains(ids, hook.Alias))
}

// SkippedHookIDs parses the SKIP variable: a comma separated list of hook
// ids or aliases.
func SkippedHookIDs(value string) []string {
	var ids []string
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func appendLog(path, output string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 -- log_file is user configured
	if err != nil {
		return err
	}
	if _, err := f.WriteString(output); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
