package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/hook"
	"github.com/blairham/hookcfg/pkg/hook/execution"
	"github.com/blairham/hookcfg/pkg/repository"
)

// InstallHooksCommand clones every remote repository of a configuration
// into the cache and checks its hooks resolve, so later runs work offline.
type InstallHooksCommand struct {
	Streams
}

// InstallHooksOptions holds command-line options for the install-hooks command
type InstallHooksOptions struct {
	Config string `short:"c" long:"config" description:"Path to config file" default:".pre-commit-config.yaml"`
}

var installHooksHelp = BaseCommand{
	Name:        "install-hooks",
	Description: "Fetch the repositories of all hooks in the config file.",
	Examples: []Example{
		{Command: "hookcfg install-hooks", Description: "Warm the cache, e.g. in CI"},
	},
	Notes: []string{
		"Hooks in managed languages still run their entry from PATH; no",
		"language environments are created.",
	},
}

// Help returns the help text for the install-hooks command
func (c *InstallHooksCommand) Help() string {
	return installHooksHelp.GenerateHelp(&InstallHooksOptions{})
}

// Synopsis returns a short description of the install-hooks command
func (c *InstallHooksCommand) Synopsis() string {
	return "Fetch the repositories of all hooks in the config file"
}

// InstallHooksCommandFactory creates a new install-hooks command instance
func InstallHooksCommandFactory() (cli.Command, error) {
	return &InstallHooksCommand{}, nil
}

// Run executes the install-hooks command
func (c *InstallHooksCommand) Run(args []string) int {
	var opts InstallHooksOptions
	if _, err := installHooksHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.install(ctx, opts.Config)
}

func (c *InstallHooksCommand) install(ctx context.Context, configPath string) int {
	cfg, err := c.loadConfig(configPath)
	if err != nil {
		return c.fail(err)
	}

	manager, err := repository.NewManager("")
	if err != nil {
		return c.unexpected(err)
	}
	defer closeManager(manager)

	if err := manager.Cache().MarkConfigUsed(ctx, absPath(configPath)); err != nil {
		logger.Warnf("failed to record config use: %v", err)
	}

	for _, repo := range cfg.Repos {
		if !repo.IsRemote() {
			continue
		}
		if _, ok := manager.Cache().Lookup(ctx, repo.Repo, repo.Rev); ok {
			continue
		}
		c.printf("[INFO] Initializing environment for %s.\n", repo.Repo)
		if _, err := manager.Ensure(ctx, repo); err != nil {
			return c.fail(err)
		}
	}

	// Resolving checks every configured hook exists in its manifest.
	orchestrator := hook.NewOrchestrator(&execution.Context{Config: cfg}, manager)
	if _, err := orchestrator.Resolve(ctx); err != nil {
		return c.fail(err)
	}
	return constants.ExitOK
}
