package commands

import (
	"context"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/repository"
)

// GcCommand handles the gc command functionality
type GcCommand struct {
	Streams
}

// GcOptions holds command-line options for the gc command
type GcOptions struct{}

var gcHelp = BaseCommand{
	Name:        "gc",
	Description: "Clean unused cached repos.",
	Examples: []Example{
		{Command: "hookcfg gc"},
	},
	Notes: []string{
		"Every config hookcfg has run with is recorded. Configs that no longer",
		"exist or parse are forgotten; checkouts none of the rest pin are removed.",
	},
}

// Help returns the help text for the gc command
func (c *GcCommand) Help() string {
	return gcHelp.GenerateHelp(&GcOptions{})
}

// Synopsis returns a short description of the gc command
func (c *GcCommand) Synopsis() string {
	return "Clean unused cached repos"
}

// GcCommandFactory creates a new gc command instance
func GcCommandFactory() (cli.Command, error) {
	return &GcCommand{}, nil
}

// Run executes the gc command
func (c *GcCommand) Run(args []string) int {
	var opts GcOptions
	if _, err := gcHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	manager, err := repository.NewManager("")
	if err != nil {
		return c.unexpected(err)
	}
	defer closeManager(manager)

	removed, err := manager.Cache().GC(context.Background())
	if err != nil {
		return c.unexpected(err)
	}
	c.printf("%d repo(s) removed.\n", removed)
	return constants.ExitOK
}
