package commands

import (
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
)

// SchemaCommand prints the JSON Schema of the configuration or manifest
// format, for editors and external validators.
type SchemaCommand struct {
	Streams
}

// SchemaOptions holds command-line options for the schema command
type SchemaOptions struct {
	Manifest bool   `short:"m" long:"manifest" description:"Print the .pre-commit-hooks.yaml schema instead"`
	Output   string `short:"o" long:"output"   description:"Write the schema to a file"`
}

var schemaHelp = BaseCommand{
	Name:        "schema",
	Description: "Print the JSON Schema of .pre-commit-config.yaml.",
	Examples: []Example{
		{Command: "hookcfg schema"},
		{Command: "hookcfg schema --manifest", Description: "Schema of .pre-commit-hooks.yaml"},
		{Command: "hookcfg schema -o schema.json"},
	},
}

// Help returns the help text for the schema command
func (c *SchemaCommand) Help() string {
	return schemaHelp.GenerateHelp(&SchemaOptions{})
}

// Synopsis returns a short description of the schema command
func (c *SchemaCommand) Synopsis() string {
	return "Print the JSON Schema of the configuration"
}

// SchemaCommandFactory creates a new schema command instance
func SchemaCommandFactory() (cli.Command, error) {
	return &SchemaCommand{}, nil
}

// Run executes the schema command
func (c *SchemaCommand) Run(args []string) int {
	var opts SchemaOptions
	if _, err := schemaHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}

	generate := config.GenerateSchema
	if opts.Manifest {
		generate = config.GenerateManifestSchema
	}
	schema, err := generate()
	if err != nil {
		return c.unexpected(err)
	}
	schema = append(schema, '\n')

	if opts.Output == "" {
		c.printf("%s", schema)
		return constants.ExitOK
	}
	if err := os.WriteFile(opts.Output, schema, 0o644); err != nil { // #nosec G306 -- schema is public
		return c.fail(err)
	}
	return constants.ExitOK
}
