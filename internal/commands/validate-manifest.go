package commands

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
)

// ValidateManifestCommand handles the validate-manifest command functionality
type ValidateManifestCommand struct {
	Streams
}

// ValidateManifestOptions holds command-line options for the validate-manifest command
type ValidateManifestOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Report each valid file"`
}

var validateManifestHelp = BaseCommand{
	Name:        "validate-manifest",
	Usage:       "[OPTIONS] [FILENAMES...]",
	Description: "Validate .pre-commit-hooks.yaml files.",
	Examples: []Example{
		{Command: "hookcfg validate-manifest", Description: "Validate " + config.ManifestFileName},
		{Command: "hookcfg validate-manifest hooks.yaml"},
	},
	Notes: []string{
		"Every hook in a manifest needs an id, a name, an entry and a language.",
	},
}

// Help returns the help text for the validate-manifest command
func (c *ValidateManifestCommand) Help() string {
	return validateManifestHelp.GenerateHelp(&ValidateManifestOptions{})
}

// Synopsis returns a short description of the validate-manifest command
func (c *ValidateManifestCommand) Synopsis() string {
	return "Validate .pre-commit-hooks.yaml files"
}

// ValidateManifestCommandFactory creates a new validate-manifest command instance
func ValidateManifestCommandFactory() (cli.Command, error) {
	return &ValidateManifestCommand{}, nil
}

// Run executes the validate-manifest command
func (c *ValidateManifestCommand) Run(args []string) int {
	var opts ValidateManifestOptions
	files, err := validateManifestHelp.ParseArgs(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if len(files) == 0 {
		files = []string{config.ManifestFileName}
	}

	code := constants.ExitOK
	for _, file := range files {
		if err := validateManifestFile(file); err != nil {
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

func validateManifestFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected manifest
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s is not a file", path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	hooks, err := config.ParseManifest(data)
	if err != nil {
		return fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	if err := config.ValidateManifestSchema(data); err != nil {
		return fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	if err := config.ValidateManifest(hooks); err != nil {
		return fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return nil
}
