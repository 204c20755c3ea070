// Package main provides the hookcfg command-line tool, which validates and
// runs the hooks of a .pre-commit-config.yaml.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/internal/commands"
)

// Version information set by GoReleaser
var (
	version = "dev"
	commit  = "none"    //nolint:unused // Set by GoReleaser
	date    = "unknown" //nolint:unused // Set by GoReleaser
	builtBy = "unknown" //nolint:unused // Set by GoReleaser
)

// Commands not listed in the main help.
var hiddenCommands = map[string]bool{"help": true, "hook-impl": true}

func main() {
	c := cli.NewCLI("hookcfg", version)
	c.Args = os.Args[1:]
	c.HelpFunc = customHelpFunc
	c.HiddenCommands = []string{"hook-impl"}
	c.Commands = map[string]cli.CommandFactory{
		"autoupdate":        commands.AutoupdateCommandFactory,
		"clean":             commands.CleanCommandFactory,
		"gc":                commands.GcCommandFactory,
		"hooks":             commands.HooksCommandFactory,
		"install":           commands.InstallCommandFactory,
		"install-hooks":     commands.InstallHooksCommandFactory,
		"migrate-config":    commands.MigrateConfigCommandFactory,
		"run":               commands.RunCommandFactory,
		"sample-config":     commands.SampleConfigCommandFactory,
		"schema":            commands.SchemaCommandFactory,
		"try-repo":          commands.TryRepoCommandFactory,
		"uninstall":         commands.UninstallCommandFactory,
		"validate-config":   commands.ValidateConfigCommandFactory,
		"validate-manifest": commands.ValidateManifestCommandFactory,
		"help":              commands.HelpCommandFactory,
		"hook-impl":         commands.HookImplCommandFactory,
		"init-templatedir":  commands.InitTemplatedirCommandFactory,
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}

// customHelpFunc lists the commands in alphabetical order with their
// synopses.
func customHelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	var names []string
	for name := range cmdFactories {
		if !hiddenCommands[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "usage: hookcfg [-h] [--version]\n")
	fmt.Fprintf(&b, "               {%s}\n               ...\n\n", strings.Join(names, ","))
	b.WriteString("Validate and run the hooks of a .pre-commit-config.yaml.\n\n")
	b.WriteString("commands:\n")
	for _, name := range names {
		cmd, err := cmdFactories[name]()
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "  %-19s %s\n", name, cmd.Synopsis())
	}
	b.WriteString("\noptional arguments:\n")
	b.WriteString("  -h, --help          show this help message and exit\n")
	b.WriteString("  --version           show program's version number and exit\n")
	return b.String()
}
