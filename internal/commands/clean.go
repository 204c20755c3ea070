package commands

import (
	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/cache"
	"github.com/blairham/hookcfg/pkg/constants"
)

// CleanCommand handles the clean command functionality
type CleanCommand struct {
	Streams
}

// CleanOptions holds command-line options for the clean command
type CleanOptions struct{}

var cleanHelp = BaseCommand{
	Name:        "clean",
	Description: "Clean out cached repositories.",
	Examples: []Example{
		{Command: "hookcfg clean"},
		{Command: "PRE_COMMIT_HOME=/tmp/cache hookcfg clean", Description: "Clean another cache"},
	},
	Notes: []string{
		"Removes the whole cache directory: $PRE_COMMIT_HOME, else",
		"$XDG_CACHE_HOME/pre-commit, else ~/.cache/pre-commit.",
		"Use gc to remove only checkouts no config uses.",
	},
}

// Help returns the help text for the clean command
func (c *CleanCommand) Help() string {
	return cleanHelp.GenerateHelp(&CleanOptions{})
}

// Synopsis returns a short description of the clean command
func (c *CleanCommand) Synopsis() string {
	return "Clean out cached repositories"
}

// CleanCommandFactory creates a new clean command instance
func CleanCommandFactory() (cli.Command, error) {
	return &CleanCommand{}, nil
}

// Run executes the clean command
func (c *CleanCommand) Run(args []string) int {
	var opts CleanOptions
	if _, err := cleanHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	dir, err := cache.Dir()
	if err != nil {
		return c.unexpected(err)
	}
	if err := cache.Clean(dir); err != nil {
		return c.unexpected(err)
	}
	c.printf("Cleaned %s.\n", dir)
	return constants.ExitOK
}
