package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/git"
	"github.com/blairham/hookcfg/pkg/repository"
)

// TryRepoCommand handles the try-repo command functionality
type TryRepoCommand struct {
	Streams
}

// TryRepoOptions holds command-line options for the try-repo command
type TryRepoOptions struct {
	Ref      string   `          long:"ref"                  description:"Revision to try; defaults to HEAD of REPO"`
	Color    string   `          long:"color"                description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never"`
	Files    []string `          long:"files"                description:"Specific filenames to run hooks on"`
	FromRef  string   `short:"s" long:"from-ref"             description:"With --to-ref, run against the files changed in FROM_REF...TO_REF"`
	ToRef    string   `short:"o" long:"to-ref"               description:"With --from-ref, run against the files changed in FROM_REF...TO_REF"`
	AllFiles bool     `short:"a" long:"all-files"            description:"Run on all the files in the repo"`
	Verbose  bool     `short:"v" long:"verbose"              description:"Show hook output and details for passing hooks"`
	ShowDiff bool     `          long:"show-diff-on-failure" description:"When hooks fail, run git diff directly afterward"`
}

var tryRepoHelp = BaseCommand{
	Name:        "try-repo",
	Usage:       "[OPTIONS] REPO [HOOK]",
	Description: "Try the hooks in a repository, useful for developing new hooks.",
	Examples: []Example{
		{Command: "hookcfg try-repo ../my-hooks --all-files", Description: "Try a local hook repository"},
		{Command: "hookcfg try-repo https://github.com/psf/black --ref 24.1.0"},
		{Command: "hookcfg try-repo ../my-hooks lint --files a.py", Description: "Try one hook"},
	},
	Notes: []string{
		"REPO is a git URL or a local path. Every hook of its manifest runs",
		"unless HOOK names one. Only committed changes of REPO are used.",
	},
}

// Help returns the help text for the try-repo command
func (c *TryRepoCommand) Help() string {
	return tryRepoHelp.GenerateHelp(&TryRepoOptions{})
}

// Synopsis returns a short description of the try-repo command
func (c *TryRepoCommand) Synopsis() string {
	return "Try the hooks in a repository"
}

// TryRepoCommandFactory creates a new try-repo command instance
func TryRepoCommandFactory() (cli.Command, error) {
	return &TryRepoCommand{}, nil
}

// Run executes the try-repo command
func (c *TryRepoCommand) Run(args []string) int {
	var opts TryRepoOptions
	remaining, err := tryRepoHelp.ParseArgs(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if len(remaining) < 1 || len(remaining) > 2 {
		c.errorf("expected REPO and at most one HOOK")
		return constants.ExitFailure
	}
	var hookIDs []string
	if len(remaining) == 2 {
		hookIDs = remaining[1:]
	}

	runOpts := &RunOptions{
		HookStage: hookTypePreCommit,
		Color:     opts.Color,
		Files:     opts.Files,
		FromRef:   opts.FromRef,
		ToRef:     opts.ToRef,
		AllFiles:  opts.AllFiles,
		Verbose:   opts.Verbose,
		ShowDiff:  opts.ShowDiff,
	}
	if err := runOpts.validate(); err != nil {
		return c.fail(err)
	}

	repo, err := requireGitRepository()
	if err != nil {
		return c.fail(err)
	}
	unmerged, err := repo.UnmergedFiles()
	if err != nil {
		return c.unexpected(err)
	}
	if len(unmerged) > 0 {
		return c.fail(errUnmergedFiles)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manager, err := repository.NewManager("")
	if err != nil {
		return c.unexpected(err)
	}
	defer closeManager(manager)

	cfg, err := tryRepoConfig(ctx, manager, repoLocation(remaining[0]), opts.Ref, hookIDs)
	if err != nil {
		return c.fail(err)
	}

	rendered, err := cfg.Marshal()
	if err != nil {
		return c.unexpected(err)
	}
	separator := strings.Repeat("=", 79)
	c.printf("%s\nUsing config:\n%s\n%s%s\n", separator, separator, rendered, separator)

	return (&RunCommand{Streams: c.Streams}).execute(ctx, repo, manager, runOpts, cfg, hookIDs)
}

// repoLocation makes a local repository path absolute so it clones from
// anywhere. URLs are returned unchanged.
func repoLocation(arg string) string {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return absPath(arg)
	}
	return arg
}

// tryRepoConfig checks out location at ref and builds a config using every
// hook of its manifest, or only the hooks in hookIDs.
func tryRepoConfig(ctx context.Context, manager *repository.Manager, location, ref string, hookIDs []string) (*config.Config, error) {
	if ref == "" {
		head, err := headRevision(ctx, location)
		if err != nil {
			return nil, err
		}
		ref = head
	}

	repo := config.Repo{Repo: location, Rev: ref}
	path, err := manager.Ensure(ctx, repo)
	if err != nil {
		return nil, err
	}
	manifest, err := manager.Manifest(path)
	if err != nil {
		return nil, err
	}

	if len(hookIDs) == 0 {
		for _, hook := range manifest {
			repo.Hooks = append(repo.Hooks, config.Hook{ID: hook.ID})
		}
	}
	for _, id := range hookIDs {
		if _, ok := config.FindManifestHook(manifest, id); !ok {
			return nil, fmt.Errorf("`%s` is not present in repository %s", id, location)
		}
		repo.Hooks = append(repo.Hooks, config.Hook{ID: id})
	}
	if len(repo.Hooks) == 0 {
		return nil, errors.New("the repository defines no hooks")
	}
	return &config.Config{Repos: []config.Repo{repo}}, nil
}

// headRevision resolves HEAD of a local repository or a remote URL.
func headRevision(ctx context.Context, location string) (string, error) {
	if local, err := git.NewRepository(location); err == nil {
		out, err := local.RunGit(ctx, "rev-parse", "HEAD")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil
	}
	rev, err := repository.LatestRevision(ctx, location, true)
	if err != nil {
		return "", err
	}
	return rev.Rev(), nil
}
