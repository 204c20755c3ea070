package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/git"
)

// InstallCommand handles the install command functionality
type InstallCommand struct {
	Streams
}

// InstallOptions holds command-line options for the install command
type InstallOptions struct {
	Config             string   `short:"c" long:"config"               description:"Path to config file"                                   default:".pre-commit-config.yaml"`
	HookTypes          []string `short:"t" long:"hook-type"            description:"Hook type to install; may be repeated"`
	Overwrite          bool     `short:"f" long:"overwrite"            description:"Replace an existing hook instead of running it first"`
	InstallHooks       bool     `          long:"install-hooks"        description:"Also fetch the repositories of the configured hooks"`
	AllowMissingConfig bool     `          long:"allow-missing-config" description:"Make the hook exit 0 when the config file is missing"`
}

var installHelp = BaseCommand{
	Name:        "install",
	Description: "Install the hookcfg script as git hooks.",
	Examples: []Example{
		{Command: "hookcfg install", Description: "Install the pre-commit hook"},
		{Command: "hookcfg install -t pre-commit -t pre-push", Description: "Install several hook types"},
		{Command: "hookcfg install --overwrite", Description: "Drop a previous hook"},
		{Command: "hookcfg install --install-hooks", Description: "Also clone the hook repositories"},
	},
	Notes: []string{
		"Hook types default to default_install_hook_types from the config, then pre-commit.",
		"An existing foreign hook is kept as <hook>.legacy and runs before hookcfg.",
		"Installation is refused while core.hooksPath is set.",
	},
}

// Help returns the help text for the install command
func (c *InstallCommand) Help() string {
	return installHelp.GenerateHelp(&InstallOptions{})
}

// Synopsis returns a short description of the install command
func (c *InstallCommand) Synopsis() string {
	return "Install the hookcfg script as git hooks"
}

// InstallCommandFactory creates a new install command instance
func InstallCommandFactory() (cli.Command, error) {
	return &InstallCommand{}, nil
}

// Run executes the install command
func (c *InstallCommand) Run(args []string) int {
	var opts InstallOptions
	if _, err := installHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	repo, err := requireGitRepository()
	if err != nil {
		return c.fail(err)
	}

	types, err := resolveHookTypes(opts.HookTypes, defaultInstallHookTypes(opts.Config))
	if err != nil {
		return c.fail(err)
	}

	executable, err := os.Executable()
	if err != nil {
		logger.Debugf("cannot locate own executable: %v", err)
		executable = ""
	}

	for _, hookType := range types {
		script := hookScript(opts.Config, hookType, executable, opts.AllowMissingConfig)
		path, legacy, err := repo.InstallHook(hookType, script, opts.Overwrite)
		if err != nil {
			if errors.Is(err, git.ErrHooksPathSet) {
				c.errorf("Cowardly refusing to install hooks with `core.hooksPath` set.")
				c.printf("hint: `git config --unset-all core.hooksPath`\n")
				return constants.ExitFailure
			}
			return c.unexpected(err)
		}

		c.printf("hookcfg installed at %s\n", displayPath(repo.Root, path))
		if legacy {
			c.printf("Running in migration mode with existing hooks at %s.legacy\n", displayPath(repo.Root, path))
			c.printf("Use -f to use only hookcfg.\n")
		}
	}

	if !opts.InstallHooks {
		return constants.ExitOK
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return (&InstallHooksCommand{Streams: c.Streams}).install(ctx, opts.Config)
}

// defaultInstallHookTypes reads default_install_hook_types, ignoring a
// missing or invalid config.
func defaultInstallHookTypes(configPath string) []string {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil
	}
	return cfg.DefaultInstallHookTypes
}

// displayPath shortens path to be relative to root when it lies inside it.
func displayPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return path
}
