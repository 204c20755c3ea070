package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
)

// SampleConfigCommand handles the sample-config command functionality
type SampleConfigCommand struct {
	Streams
}

// SampleConfigOptions holds command-line options for the sample-config command
type SampleConfigOptions struct {
	Write bool `short:"w" long:"write" description:"Write the sample to .pre-commit-config.yaml instead of stdout"`
	Force bool `short:"f" long:"force" description:"With --write, overwrite an existing configuration file"`
}

var sampleConfigHelp = BaseCommand{
	Name:        "sample-config",
	Description: "Produce a sample .pre-commit-config.yaml file.",
	Examples: []Example{
		{Command: "hookcfg sample-config", Description: "Print the sample"},
		{Command: "hookcfg sample-config > .pre-commit-config.yaml"},
		{Command: "hookcfg sample-config --write", Description: "Create " + config.ConfigFileName},
	},
}

// Help returns the help text for the sample-config command
func (c *SampleConfigCommand) Help() string {
	return sampleConfigHelp.GenerateHelp(&SampleConfigOptions{})
}

// Synopsis returns a short description of the sample-config command
func (c *SampleConfigCommand) Synopsis() string {
	return "Produce a sample .pre-commit-config.yaml file"
}

// SampleConfigCommandFactory creates a new sample-config command instance
func SampleConfigCommandFactory() (cli.Command, error) {
	return &SampleConfigCommand{}, nil
}

// Run executes the sample-config command
func (c *SampleConfigCommand) Run(args []string) int {
	var opts SampleConfigOptions
	if _, err := sampleConfigHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	if !opts.Write {
		c.printf("%s", config.SampleConfig)
		return constants.ExitOK
	}

	if _, err := os.Stat(config.ConfigFileName); err == nil && !opts.Force {
		return c.fail(fmt.Errorf("%s already exists; use --force to overwrite it", config.ConfigFileName))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c.unexpected(err)
	}

	if err := os.WriteFile(config.ConfigFileName, []byte(config.SampleConfig), 0o644); err != nil { // #nosec G306 -- config is committed
		return c.unexpected(err)
	}
	c.printf("Wrote %s\n", config.ConfigFileName)
	return constants.ExitOK
}
