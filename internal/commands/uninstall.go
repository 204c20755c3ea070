package commands

import (
	"errors"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/git"
)

// UninstallCommand handles the uninstall command functionality
type UninstallCommand struct {
	Streams
}

// UninstallOptions holds command-line options for the uninstall command
type UninstallOptions struct {
	Config    string   `short:"c" long:"config"    description:"Path to config file"                   default:".pre-commit-config.yaml"`
	HookTypes []string `short:"t" long:"hook-type" description:"Hook type to uninstall; may be repeated"`
}

var uninstallHelp = BaseCommand{
	Name:        "uninstall",
	Description: "Uninstall the hookcfg script.",
	Examples: []Example{
		{Command: "hookcfg uninstall"},
		{Command: "hookcfg uninstall -t pre-push", Description: "Remove the pre-push hook"},
	},
	Notes: []string{
		"Hooks hookcfg did not write are left alone. A <hook>.legacy is moved back.",
	},
}

// Help returns the help text for the uninstall command
func (c *UninstallCommand) Help() string {
	return uninstallHelp.GenerateHelp(&UninstallOptions{})
}

// Synopsis returns a short description of the uninstall command
func (c *UninstallCommand) Synopsis() string {
	return "Uninstall the hookcfg script"
}

// UninstallCommandFactory creates a new uninstall command instance
func UninstallCommandFactory() (cli.Command, error) {
	return &UninstallCommand{}, nil
}

// Run executes the uninstall command
func (c *UninstallCommand) Run(args []string) int {
	var opts UninstallOptions
	if _, err := uninstallHelp.ParseArgs(&opts, args); err != nil {
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

	for _, hookType := range types {
		removed, restored, err := repo.UninstallHook(hookType)
		if err != nil {
			if errors.Is(err, git.ErrHooksPathSet) {
				return c.fail(err)
			}
			return c.unexpected(err)
		}
		if removed {
			c.printf("%s uninstalled\n", hookType)
		}
		if restored {
			c.printf("Restored previous hooks to %s\n", hookType)
		}
	}
	return constants.ExitOK
}
