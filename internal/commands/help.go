package commands

import (
	"slices"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/constants"
)

// HelpCommand handles the help command functionality
type HelpCommand struct {
	Streams
}

// HelpOptions holds command-line options for the help command
type HelpOptions struct{}

type commandSummary struct {
	name, synopsis string
}

var commandSummaries = []commandSummary{
	{"autoupdate", "Auto-update the config to the latest repos' versions"},
	{"clean", "Clean out cached repositories"},
	{"gc", "Clean unused cached repos"},
	{"hooks", "List the configured hooks"},
	{"init-templatedir", "Install hook scripts in a git template directory"},
	{"install", "Install the hookcfg script as git hooks"},
	{"install-hooks", "Fetch the repositories of all hooks in the config file"},
	{"migrate-config", "Migrate list configuration to new map configuration"},
	{"run", "Run hooks"},
	{"sample-config", "Produce a sample .pre-commit-config.yaml file"},
	{"schema", "Print the JSON Schema of the configuration"},
	{"try-repo", "Try the hooks in a repository"},
	{"uninstall", "Uninstall the hookcfg script"},
	{"validate-config", "Validate .pre-commit-config.yaml files"},
	{"validate-manifest", "Validate .pre-commit-hooks.yaml files"},
}

var helpHelp = BaseCommand{
	Name:        "help",
	Usage:       "[COMMAND]",
	Description: "Show help for a specific command.",
	Examples: []Example{
		{Command: "hookcfg help", Description: "List commands"},
		{Command: "hookcfg help run", Description: "Full help of run"},
	},
}

// Help returns the help text for the help command
func (c *HelpCommand) Help() string {
	return helpHelp.GenerateHelp(&HelpOptions{})
}

// Synopsis returns a short description of the help command
func (c *HelpCommand) Synopsis() string {
	return "Show help for a specific command"
}

// HelpCommandFactory creates a new help command instance
func HelpCommandFactory() (cli.Command, error) {
	return &HelpCommand{}, nil
}

// Run executes the help command
func (c *HelpCommand) Run(args []string) int {
	var opts HelpOptions
	remaining, err := helpHelp.ParseArgs(&opts, args)
	if err != nil {
		return parseExit(err)
	}

	if len(remaining) == 0 {
		c.printf("Usage: hookcfg <command> [OPTIONS]\n\nAvailable commands:\n")
		c.printCommands()
		return constants.ExitOK
	}

	name := remaining[0]
	i := slices.IndexFunc(commandSummaries, func(s commandSummary) bool { return s.name == name })
	if i < 0 {
		c.errorf("unknown command: %s", name)
		c.printf("Available commands:\n")
		c.printCommands()
		return constants.ExitFailure
	}

	c.printf("%s - %s\n\nFor detailed usage information, run:\n  hookcfg %s --help\n",
		name, commandSummaries[i].synopsis, name)
	return constants.ExitOK
}

func (c *HelpCommand) printCommands() {
	for _, s := range commandSummaries {
		c.printf("  %-19s %s\n", s.name, s.synopsis)
	}
}
