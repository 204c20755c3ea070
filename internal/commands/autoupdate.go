package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/mitchellh/cli"
	"golang.org/x/sync/errgroup"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/repository"
)

// AutoupdateCommand handles the autoupdate command functionality
type AutoupdateCommand struct {
	Streams

	// latest looks up the update target of a repository.
	latest func(ctx context.Context, url string, bleedingEdge bool) (repository.Revision, error)
}

// AutoupdateOptions holds command-line options for the autoupdate command
type AutoupdateOptions struct {
	Config       string   `short:"c" long:"config"        description:"Path to config file"                                  default:".pre-commit-config.yaml"`
	Repos        []string `          long:"repo"          description:"Only update this repository; may be repeated"`
	Jobs         int      `short:"j" long:"jobs"          description:"Number of repositories to query concurrently"          default:"1"`
	DryRun       bool     `short:"n" long:"dry-run"       description:"Report updates without writing the config"`
	BleedingEdge bool     `          long:"bleeding-edge" description:"Update to the remote HEAD instead of the latest tag"`
	Freeze       bool     `          long:"freeze"        description:"Pin commit hashes, noting the tag in a comment"`
}

var autoupdateHelp = BaseCommand{
	Name:        "autoupdate",
	Description: "Auto-update the config to the latest repos' versions.",
	Examples: []Example{
		{Command: "hookcfg autoupdate", Description: "Update every remote repo"},
		{Command: "hookcfg autoupdate --repo https://github.com/psf/black"},
		{Command: "hookcfg autoupdate --freeze", Description: "Pin hashes"},
		{Command: "hookcfg autoupdate --bleeding-edge", Description: "Track HEAD"},
	},
	Notes: []string{
		"The latest tag is picked by version ordering; pre-releases only when",
		"the repository has nothing else.",
		"A repo is not updated when its new revision lacks a configured hook.",
	},
}

// Help returns the help text for the autoupdate command
func (c *AutoupdateCommand) Help() string {
	return autoupdateHelp.GenerateHelp(&AutoupdateOptions{})
}

// Synopsis returns a short description of the autoupdate command
func (c *AutoupdateCommand) Synopsis() string {
	return "Auto-update the config to the latest repos' versions"
}

// AutoupdateCommandFactory creates a new autoupdate command instance
func AutoupdateCommandFactory() (cli.Command, error) {
	return &AutoupdateCommand{}, nil
}

// Run executes the autoupdate command
func (c *AutoupdateCommand) Run(args []string) int {
	var opts AutoupdateOptions
	if _, err := autoupdateHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	data, err := os.ReadFile(opts.Config) // #nosec G304 -- user-selected config file
	if err != nil {
		return c.fail(err)
	}
	cfg, err := c.loadConfig(opts.Config)
	if err != nil {
		return c.fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manager, err := repository.NewManager("")
	if err != nil {
		return c.unexpected(err)
	}
	defer closeManager(manager)

	targets, err := c.targets(ctx, cfg, &opts)
	if err != nil {
		return c.fail(err)
	}

	code := constants.ExitOK
	updates := make(map[int]config.RevUpdate)
	for i, repo := range cfg.Repos {
		target, ok := targets[i]
		if !ok {
			continue
		}

		update := config.RevUpdate{Rev: target.Rev()}
		if opts.Freeze && target.Tag != "" {
			update = config.RevUpdate{Rev: target.Hash, Frozen: target.Tag}
		}

		c.printf("[%s] ", repo.Repo)
		if update.Rev == repo.Rev {
			c.printf("already up to date!\n")
			continue
		}

		missing, err := c.missingHooks(ctx, manager, repo, update.Rev)
		if err != nil {
			c.printf("\n")
			return c.fail(err)
		}
		if len(missing) > 0 {
			c.printf("-> %s\n", update.Rev)
			c.errorf("cannot update because the update target is missing these hooks: %s", strings.Join(missing, ", "))
			code = constants.ExitFailure
			continue
		}

		label := update.Rev
		if update.Frozen != "" {
			label += " (frozen: " + update.Frozen + ")"
		}
		c.printf("updating %s -> %s\n", repo.Rev, label)
		updates[i] = update
	}

	if opts.DryRun || len(updates) == 0 {
		return code
	}

	updated, err := config.UpdateRevs(data, updates)
	if err != nil {
		return c.unexpected(err)
	}
	if _, err := config.Parse(updated); err != nil {
		return c.unexpected(fmt.Errorf("refusing to write %s: %w", opts.Config, err))
	}
	info, err := os.Stat(opts.Config)
	if err != nil {
		return c.unexpected(err)
	}
	if err := os.WriteFile(opts.Config, updated, info.Mode().Perm()); err != nil {
		return c.unexpected(err)
	}
	return code
}

// targets looks up the update target of every selected remote repo,
// keyed by its index in repos.
func (c *AutoupdateCommand) targets(ctx context.Context, cfg *config.Config, opts *AutoupdateOptions) (map[int]repository.Revision, error) {
	latest := c.latest
	if latest == nil {
		latest = repository.LatestRevision
	}

	revisions := make([]repository.Revision, len(cfg.Repos))
	selected := make([]bool, len(cfg.Repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))
	for i, repo := range cfg.Repos {
		if !repo.IsRemote() || (len(opts.Repos) > 0 && !slices.Contains(opts.Repos, repo.Repo)) {
			continue
		}
		selected[i] = true
		g.Go(func() error {
			rev, err := latest(gctx, repo.Repo, opts.BleedingEdge)
			if err != nil {
				return fmt.Errorf("[%s] %w", repo.Repo, err)
			}
			revisions[i] = rev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	targets := make(map[int]repository.Revision)
	for i, ok := range selected {
		if ok {
			targets[i] = revisions[i]
		}
	}
	return targets, nil
}

// missingHooks checks out rev and lists the configured hook ids its
// manifest no longer defines.
func (c *AutoupdateCommand) missingHooks(ctx context.Context, manager *repository.Manager, repo config.Repo, rev string) ([]string, error) {
	path, err := manager.Ensure(ctx, config.Repo{Repo: repo.Repo, Rev: rev})
	if err != nil {
		return nil, err
	}
	manifest, err := manager.Manifest(path)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, hook := range repo.Hooks {
		if _, ok := config.FindManifestHook(manifest, hook.ID); !ok {
			missing = append(missing, hook.ID)
		}
	}
	return missing, nil
}
