package commands

import (
	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
)

// ValidateConfigCommand handles the validate-config command functionality
type ValidateConfigCommand struct {
	Streams
}

// ValidateConfigOptions holds command-line options for the validate-config command
type ValidateConfigOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Report each valid file"`
}

var validateConfigHelp = BaseCommand{
	Name:        "validate-config",
	Usage:       "[OPTIONS] [FILENAMES...]",
	Description: "Validate .pre-commit-config.yaml files.",
	Examples: []Example{
		{Command: "hookcfg validate-config", Description: "Validate " + config.ConfigFileName},
		{Command: "hookcfg validate-config a.yaml b.yaml", Description: "Validate several files"},
	},
	Notes: []string{
		"Checks that each file parses as YAML, conforms to the configuration schema",
		"and passes the semantic checks (regexes, stages, languages, revisions).",
		"Unknown keys are reported as warnings.",
	},
}

// Help returns the help text for the validate-config command
func (c *ValidateConfigCommand) Help() string {
	return validateConfigHelp.GenerateHelp(&ValidateConfigOptions{})
}

// Synopsis returns a short description of the validate-config command
func (c *ValidateConfigCommand) Synopsis() string {
	return "Validate .pre-commit-config.yaml files"
}

// ValidateConfigCommandFactory creates a new validate-config command instance
func ValidateConfigCommandFactory() (cli.Command, error) {
	return &ValidateConfigCommand{}, nil
}

// Run executes the validate-config command
func (c *ValidateConfigCommand) Run(args []string) int {
	var opts ValidateConfigOptions
	files, err := validateConfigHelp.ParseArgs(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if len(files) == 0 {
		files = []string{config.ConfigFileName}
	}

	code := constants.ExitOK
	for _, file := range files {
		if _, err := c.loadConfig(file); err != nil {
			c.errorf("%v", err)
			code = constants.ExitFailure
			continue
		}
		if opts.Verbose {
			c.printf("%s: valid\n", file)
		}
	}
	return code
}
