package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/constants"
)

// InitTemplatedirCommand handles the init-templatedir command functionality
type InitTemplatedirCommand struct {
	Streams
}

// InitTemplatedirOptions holds command-line options for the init-templatedir command
type InitTemplatedirOptions struct {
	Config               string   `short:"c" long:"config"                 description:"Path to config file"                    default:".pre-commit-config.yaml"`
	HookTypes            []string `short:"t" long:"hook-type"              description:"Hook type to install; may be repeated"`
	NoAllowMissingConfig bool     `          long:"no-allow-missing-config" description:"Make the hook fail when the config is missing"`
}

var initTemplatedirHelp = BaseCommand{
	Name:        "init-templatedir",
	Usage:       "[OPTIONS] DIRECTORY",
	Description: "Install hook scripts in a directory intended for use with `git config init.templateDir`.",
	Examples: []Example{
		{Command: "hookcfg init-templatedir ~/.git-template"},
		{Command: "hookcfg init-templatedir ~/.git-template -t pre-push"},
		{Command: "git config --global init.templateDir ~/.git-template"},
	},
	Notes: []string{
		"Scripts are written to DIRECTORY/hooks. Repositories created by",
		"`git init` afterwards get them. A repository without a config is skipped",
		"unless --no-allow-missing-config is given.",
	},
}

// Help returns the help text for the init-templatedir command
func (c *InitTemplatedirCommand) Help() string {
	return initTemplatedirHelp.GenerateHelp(&InitTemplatedirOptions{})
}

// Synopsis returns a short description of the init-templatedir command
func (c *InitTemplatedirCommand) Synopsis() string {
	return "Install hook scripts in a git template directory"
}

// InitTemplatedirCommandFactory creates a new init-templatedir command instance
func InitTemplatedirCommandFactory() (cli.Command, error) {
	return &InitTemplatedirCommand{}, nil
}

// Run executes the init-templatedir command
func (c *InitTemplatedirCommand) Run(args []string) int {
	var opts InitTemplatedirOptions
	remaining, err := initTemplatedirHelp.ParseArgs(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if len(remaining) != 1 {
		c.errorf("expected exactly one DIRECTORY argument")
		return constants.ExitFailure
	}
	dir := remaining[0]

	types, err := resolveHookTypes(opts.HookTypes, defaultInstallHookTypes(opts.Config))
	if err != nil {
		return c.fail(err)
	}

	executable, err := os.Executable()
	if err != nil {
		logger.Debugf("cannot locate own executable: %v", err)
		executable = ""
	}

	hooksDir := filepath.Join(dir, "hooks")
	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return c.unexpected(err)
	}
	for _, hookType := range types {
		script := hookScript(opts.Config, hookType, executable, !opts.NoAllowMissingConfig)
		path := filepath.Join(hooksDir, hookType)
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil { // #nosec G306 -- hook scripts are executable
			return c.unexpected(fmt.Errorf("writing %s: %w", path, err))
		}
		c.printf("hookcfg installed at %s\n", path)
	}

	if !templateDirConfigured(dir) {
		c.warnf("`init.templateDir` not set to the target directory")
		c.warnf("maybe `git config --global init.templateDir %s`?", dir)
	}
	return constants.ExitOK
}

// templateDirConfigured reports whether git's init.templateDir points at dir.
func templateDirConfigured(dir string) bool {
	out, err := exec.Command("git", "config", "--path", "init.templateDir").Output()
	if err != nil {
		return false
	}
	configured := strings.TrimSpace(string(out))
	if strings.HasPrefix(configured, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			configured = filepath.Join(home, configured[2:])
		}
	}
	return filepath.Clean(absPath(configured)) == filepath.Clean(absPath(dir))
}
