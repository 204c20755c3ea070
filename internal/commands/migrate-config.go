package commands

import (
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
)

// MigrateConfigCommand handles the migrate-config command functionality
type MigrateConfigCommand struct {
	Streams
}

// MigrateConfigOptions holds command-line options for the migrate-config command
type MigrateConfigOptions struct {
	Config string `short:"c" long:"config" description:"Path to config file" default:".pre-commit-config.yaml"`
}

var migrateConfigHelp = BaseCommand{
	Name:        "migrate-config",
	Description: "Migrate list configuration to new map configuration.",
	Examples: []Example{
		{Command: "hookcfg migrate-config"},
		{Command: "hookcfg migrate-config -c other.yaml", Description: "Migrate another file"},
	},
	Notes: []string{
		"Rewrites in place, keeping comments:",
		"  a top-level list of repos becomes a repos: mapping",
		"  sha: becomes rev:",
		"  language: python_venv becomes python",
		"  stages commit, push and merge-commit gain their pre- prefix",
	},
}

// Help returns the help text for the migrate-config command
func (c *MigrateConfigCommand) Help() string {
	return migrateConfigHelp.GenerateHelp(&MigrateConfigOptions{})
}

// Synopsis returns a short description of the migrate-config command
func (c *MigrateConfigCommand) Synopsis() string {
	return "Migrate list configuration to new map configuration"
}

// MigrateConfigCommandFactory creates a new migrate-config command instance
func MigrateConfigCommandFactory() (cli.Command, error) {
	return &MigrateConfigCommand{}, nil
}

// Run executes the migrate-config command
func (c *MigrateConfigCommand) Run(args []string) int {
	var opts MigrateConfigOptions
	if _, err := migrateConfigHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	data, err := os.ReadFile(opts.Config) // #nosec G304 -- user-selected config file
	if err != nil {
		return c.fail(err)
	}

	migrated, changed, err := config.Migrate(data)
	if err != nil {
		return c.fail(err)
	}
	if !changed {
		c.printf("Configuration is already migrated.\n")
		return constants.ExitOK
	}

	if _, err := config.Parse(migrated); err != nil {
		return c.fail(err)
	}

	info, err := os.Stat(opts.Config)
	if err != nil {
		return c.unexpected(err)
	}
	if err := os.WriteFile(opts.Config, migrated, info.Mode().Perm()); err != nil {
		return c.unexpected(err)
	}
	c.printf("Configuration has been migrated.\n")
	return constants.ExitOK
}
