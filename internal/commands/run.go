package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/git"
	"github.com/blairham/hookcfg/pkg/hook"
	"github.com/blairham/hookcfg/pkg/hook/execution"
	"github.com/blairham/hookcfg/pkg/hook/formatting"
	"github.com/blairham/hookcfg/pkg/repository"
)

var errUnmergedFiles = errors.New("unmerged files; resolve before committing")

// Stages whose hooks do not operate on files.
var fileLessStages = []string{
	hookTypePostCheckout, hookTypePostCommit, hookTypePostMerge, hookTypePostRewrite, hookTypePreRebase,
}

// RunCommand handles the run command functionality
type RunCommand struct {
	Streams
}

// RunOptions holds command-line options for the run command
type RunOptions struct {
	Config                     string        `short:"c" long:"config"                        description:"Path to alternate config file"                               default:".pre-commit-config.yaml"`
	HookStage                  string        `          long:"hook-stage"                    description:"The stage during which the hook is fired"                    default:"pre-commit"`
	FromRef                    string        `short:"s" long:"from-ref"                      description:"With --to-ref, run against the files changed in FROM_REF...TO_REF"`
	ToRef                      string        `short:"o" long:"to-ref"                        description:"With --from-ref, run against the files changed in FROM_REF...TO_REF"`
	RemoteName                 string        `          long:"remote-name"                   description:"Remote name used by git push"`
	RemoteURL                  string        `          long:"remote-url"                    description:"Remote url used by git push"`
	LocalBranch                string        `          long:"local-branch"                  description:"Local branch ref used by git push"`
	RemoteBranch               string        `          long:"remote-branch"                 description:"Remote branch ref used by git push"`
	CommitMsgFilename          string        `          long:"commit-msg-filename"           description:"Filename to check when running during commit-msg"`
	PrepareCommitMessageSource string        `          long:"prepare-commit-message-source" description:"Source of the commit message (prepare-commit-msg)"`
	CommitObjectName           string        `          long:"commit-object-name"            description:"Commit object name (prepare-commit-msg)"`
	CheckoutType               string        `          long:"checkout-type"                 description:"1 for a branch checkout, 0 for a file checkout (post-checkout)"`
	IsSquashMerge              string        `          long:"is-squash-merge"               description:"Whether the merge was a squash merge (post-merge)"`
	RewriteCommand             string        `          long:"rewrite-command"               description:"Command that invoked the rewrite (post-rewrite)"`
	PreRebaseUpstream          string        `          long:"pre-rebase-upstream"           description:"Upstream from which the series was forked (pre-rebase)"`
	PreRebaseBranch            string        `          long:"pre-rebase-branch"             description:"Branch being rebased (pre-rebase)"`
	Color                      string        `          long:"color"                         description:"Whether to use color in output; defaults to $PRE_COMMIT_COLOR or auto" choice:"auto" choice:"always" choice:"never"`
	Files                      []string      `          long:"files"                         description:"Specific filenames to run hooks on"`
	Timeout                    time.Duration `          long:"timeout"                       description:"Kill a hook after this long (e.g. 30s, 5m); 0 disables"`
	Jobs                       int           `short:"j" long:"jobs"                          description:"Concurrent file batches per hook; 0 uses the CPU count"`
	AllFiles                   bool          `short:"a" long:"all-files"                     description:"Run on all the files in the repo"`
	Verbose                    bool          `short:"v" long:"verbose"                       description:"Show hook output and details for passing hooks"`
	ShowDiff                   bool          `          long:"show-diff-on-failure"          description:"When hooks fail, run git diff directly afterward"`
}

var runHelp = BaseCommand{
	Name:        "run",
	Usage:       "[OPTIONS] [HOOK...]",
	Description: "Run hooks.",
	Examples: []Example{
		{Command: "hookcfg run", Description: "Run pre-commit hooks against staged files"},
		{Command: "hookcfg run --all-files", Description: "Run against every tracked file"},
		{Command: "hookcfg run flake8 --files a.py", Description: "Run one hook against one file"},
		{Command: "hookcfg run --hook-stage manual", Description: "Run the manual stage"},
		{Command: "SKIP=mypy hookcfg run", Description: "Skip a hook"},
	},
	Notes: []string{
		"Positional arguments are hook ids or aliases; only those hooks run.",
		"Stages: " + strings.Join(config.Stages, ", "),
		"Unstaged changes are stashed while hooks run unless --all-files or --files is given.",
	},
}

// Help returns the help text for the run command
func (c *RunCommand) Help() string {
	return runHelp.GenerateHelp(&RunOptions{})
}

// Synopsis returns a short description of the run command
func (c *RunCommand) Synopsis() string {
	return "Run hooks"
}

// RunCommandFactory creates a new run command instance
func RunCommandFactory() (cli.Command, error) {
	return &RunCommand{}, nil
}

// Run executes the run command
func (c *RunCommand) Run(args []string) int {
	var opts RunOptions
	hookIDs, err := runHelp.ParseArgs(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	return c.runWithOptions(&opts, hookIDs)
}

// runWithOptions runs hooks for already parsed options. hook-impl calls it
// with options derived from the git hook's arguments.
func (c *RunCommand) runWithOptions(opts *RunOptions, hookIDs []string) int {
	if err := opts.validate(); err != nil {
		return c.fail(err)
	}

	repo, err := requireGitRepository()
	if err != nil {
		return c.fail(err)
	}

	configPath := absPath(opts.Config)
	if err := c.preflight(repo, opts, configPath); err != nil {
		return c.fail(err)
	}

	cfg, err := c.loadConfig(configPath)
	if err != nil {
		return c.fail(err)
	}

	manager, err := repository.NewManager("")
	if err != nil {
		return c.unexpected(err)
	}
	defer closeManager(manager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := manager.Cache().MarkConfigUsed(ctx, configPath); err != nil {
		logger.Warnf("failed to record config use: %v", err)
	}

	return c.execute(ctx, repo, manager, opts, cfg, hookIDs)
}

// validate checks option combinations and normalizes the stage.
func (o *RunOptions) validate() error {
	if (o.FromRef == "") != (o.ToRef == "") {
		return errors.New("specify both --from-ref and --to-ref")
	}
	if o.AllFiles && len(o.Files) > 0 {
		return errors.New("--all-files and --files are mutually exclusive")
	}
	if !config.IsKnownStage(o.HookStage) {
		return errUnknownStage(o.HookStage)
	}
	o.HookStage = config.NormalizeStage(o.HookStage)

	if (o.HookStage == hookTypeCommitMsg || o.HookStage == hookTypePrepareCommit) && o.CommitMsgFilename == "" {
		return fmt.Errorf("`--commit-msg-filename` is required for `--hook-stage %s`", o.HookStage)
	}
	return nil
}

func errUnknownStage(stage string) error {
	return fmt.Errorf("unknown hook stage %q (expected one of %s)", stage, strings.Join(config.Stages, ", "))
}

// noStash reports whether the run leaves unstaged changes in place.
func (o *RunOptions) noStash() bool {
	return o.AllFiles || len(o.Files) > 0
}

func (c *RunCommand) preflight(repo *git.Repository, opts *RunOptions, configPath string) error {
	unmerged, err := repo.UnmergedFiles()
	if err != nil {
		return err
	}
	if len(unmerged) > 0 {
		return errUnmergedFiles
	}

	if !opts.noStash() && repo.HasUnstagedChangesForFile(relativeTo(repo.Root, configPath)) {
		return fmt.Errorf("your configuration is unstaged; `git add %s` to fix this", opts.Config)
	}
	return nil
}

// execute stashes unstaged changes, runs the selected hooks, prints each
// result and restores the stash.
func (c *RunCommand) execute(
	ctx context.Context,
	repo *git.Repository,
	manager *repository.Manager,
	opts *RunOptions,
	cfg *config.Config,
	hookIDs []string,
) (code int) {
	if !opts.noStash() {
		stash, err := repo.StashUnstagedChanges(ctx, manager.Cache().CacheDir(), c.stdout())
		if err != nil && !errors.Is(err, git.ErrNoStashRequired) {
			return c.unexpected(err)
		}
		defer func() {
			// Restore even after an interrupt.
			if err := repo.RestoreFromStash(context.WithoutCancel(ctx), stash, c.stdout()); err != nil {
				code = c.unexpected(err)
			}
		}()
	}

	files, err := opts.candidateFiles(repo)
	if err != nil {
		return c.fail(err)
	}
	repoFiles, err := repo.AllFiles()
	if err != nil {
		return c.unexpected(err)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	mode := colorMode(opts.Color)

	ectx := &execution.Context{
		Config:      cfg,
		Environment: opts.environment(),
		RepoRoot:    repo.Root,
		HookStage:   opts.HookStage,
		Color:       mode,
		FromRef:     opts.FromRef,
		ToRef:       opts.ToRef,
		HookIDs:     hookIDs,
		Files:       files,
		RepoFiles:   repoFiles,
		Timeout:     opts.Timeout,
		Jobs:        jobs,
		AllFiles:    opts.AllFiles,
		Verbose:     opts.Verbose,
		ShowDiff:    opts.ShowDiff,
	}
	orchestrator := hook.NewOrchestrator(ectx, manager)

	selected, err := orchestrator.Selected(ctx)
	if err != nil {
		return c.fail(err)
	}
	if len(hookIDs) > 0 && len(selected) == 0 {
		return c.fail(fmt.Errorf("no hook with id `%s` in stage `%s`", strings.Join(hookIDs, ", "), opts.HookStage))
	}

	formatter := formatting.NewFormatter(c.stdout(), mode, opts.Verbose)
	names := make([]string, 0, len(selected))
	for _, item := range selected {
		names = append(names, item.Hook.DisplayName())
	}
	formatter.FitNames(names)
	orchestrator.OnResult = formatter.PrintResult

	var diffBefore string
	if opts.ShowDiff {
		diffBefore, _ = repo.Diff(ctx, false)
	}

	results, err := orchestrator.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.errorf("interrupted")
			return constants.ExitFailure
		}
		return c.unexpected(err)
	}

	failed := slices.ContainsFunc(results, func(r execution.Result) bool { return !r.Success() })
	if !failed {
		return constants.ExitOK
	}
	if opts.ShowDiff {
		c.showDiff(ctx, repo, diffBefore, formatting.UseColor(mode, c.stdout()))
	}
	return constants.ExitFailure
}

func (c *RunCommand) showDiff(ctx context.Context, repo *git.Repository, before string, color bool) {
	after, err := repo.Diff(ctx, false)
	if err != nil {
		logger.Warnf("failed to diff work tree: %v", err)
		return
	}
	if after == before {
		return
	}
	if color {
		if colored, err := repo.Diff(ctx, true); err == nil {
			after = colored
		}
	}
	c.printf("All changes made by hooks:\n%s", after)
}

// candidateFiles lists the files the run considers, relative to the root.
// Files that no longer exist are dropped.
func (o *RunOptions) candidateFiles(repo *git.Repository) ([]string, error) {
	var (
		files []string
		err   error
	)
	switch {
	case slices.Contains(fileLessStages, o.HookStage):
		return nil, nil
	case o.HookStage == hookTypeCommitMsg || o.HookStage == hookTypePrepareCommit:
		files = []string{relativeTo(repo.Root, o.CommitMsgFilename)}
	case o.FromRef != "" && o.ToRef != "":
		files, err = repo.ChangedFiles(o.FromRef, o.ToRef)
	case len(o.Files) > 0:
		for _, file := range o.Files {
			files = append(files, relativeTo(repo.Root, file))
		}
	case o.AllFiles:
		files, err = repo.AllFiles()
	default:
		files, err = repo.StagedFiles()
	}
	if err != nil {
		return nil, err
	}

	existing := files[:0]
	for _, file := range files {
		if _, err := os.Lstat(joinRoot(repo.Root, file)); err == nil {
			existing = append(existing, file)
		}
	}
	return existing, nil
}

// environment is what hooks see about the git hook that triggered them.
// PRE_COMMIT, the stage and the refs are added by the executor.
func (o *RunOptions) environment() map[string]string {
	env := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			env[key] = value
		}
	}
	set(constants.EnvRemoteName, o.RemoteName)
	set(constants.EnvRemoteURL, o.RemoteURL)
	set(constants.EnvLocalBranch, o.LocalBranch)
	set(constants.EnvRemoteBranch, o.RemoteBranch)
	set(constants.EnvCommitMsgFilename, o.CommitMsgFilename)
	set(constants.EnvCommitMsgSource, o.PrepareCommitMessageSource)
	set(constants.EnvCommitObjectName, o.CommitObjectName)
	set(constants.EnvCheckoutType, o.CheckoutType)
	set(constants.EnvIsSquashMerge, o.IsSquashMerge)
	set(constants.EnvRewriteCommand, o.RewriteCommand)
	set(constants.EnvPreRebaseUpstream, o.PreRebaseUpstream)
	set(constants.EnvPreRebaseBranch, o.PreRebaseBranch)
	return env
}

// colorMode resolves --color, falling back to PRE_COMMIT_COLOR.
func colorMode(flag string) string {
	if flag != "" {
		return flag
	}
	switch env := os.Getenv(constants.EnvColor); env {
	case formatting.ColorAlways, formatting.ColorNever, formatting.ColorAuto:
		return env
	}
	return formatting.ColorAuto
}

func closeManager(manager *repository.Manager) {
	if err := manager.Close(); err != nil {
		logger.Warnf("failed to close cache: %v", err)
	}
}
