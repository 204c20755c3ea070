// Package commands implements the hookcfg subcommands. Each command is a
// mitchellh/cli Command whose options are parsed with go-flags.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/git"
	"github.com/blairham/hookcfg/pkg/logging"
)

var logger = logging.NewLogger("commands")

// errHelpShown is returned by ParseArgs after go-flags printed the help.
var errHelpShown = errors.New("help shown")

// Streams are the writers a command prints to. Nil fields fall back to
// os.Stdout and os.Stderr.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

func (s Streams) stdout() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s Streams) stderr() io.Writer {
	if s.Err != nil {
		return s.Err
	}
	return os.Stderr
}

func (s Streams) printf(format string, args ...any) {
	fmt.Fprintf(s.stdout(), format, args...)
}

func (s Streams) errorf(format string, args ...any) {
	fmt.Fprintf(s.stderr(), "Error: "+format+"\n", args...)
}

func (s Streams) warnf(format string, args ...any) {
	fmt.Fprintf(s.stderr(), "[WARNING] "+format+"\n", args...)
}

// fail reports an error caused by the user's input or repository state.
func (s Streams) fail(err error) int {
	s.errorf("%v", err)
	return constants.ExitFailure
}

// unexpected reports an internal failure.
func (s Streams) unexpected(err error) int {
	fmt.Fprintf(s.stderr(), "An unexpected error has occurred: %v\n", err)
	return constants.ExitUnexpected
}

// BaseCommand describes a command for its help text.
type BaseCommand struct {
	Name        string
	Usage       string
	Description string
	Examples    []Example
	Notes       []string
}

// GenerateHelp renders the help of a command whose options are opts.
func (bc BaseCommand) GenerateHelp(opts any) string {
	formatter := &HelpFormatter{
		Command:     bc.Name,
		Description: bc.Description,
		Examples:    bc.Examples,
		Notes:       bc.Notes,
	}
	return formatter.FormatHelp(bc.parser(opts))
}

func (bc BaseCommand) parser(opts any) *flags.Parser {
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "hookcfg " + bc.Name
	parser.Usage = bc.Usage
	if parser.Usage == "" {
		parser.Usage = OptionsUsage
	}
	return parser
}

// ParseArgs parses args into opts and returns the positional arguments.
// It returns errHelpShown for --help; go-flags has already printed the help
// or the parse error by then.
func (bc BaseCommand) ParseArgs(opts any, args []string) ([]string, error) {
	remaining, err := bc.parser(opts).ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, errHelpShown
		}
		return nil, err
	}
	return remaining, nil
}

// parseExit maps a ParseArgs error to the command's exit code.
func parseExit(err error) int {
	if errors.Is(err, errHelpShown) {
		return constants.ExitOK
	}
	return constants.ExitFailure
}

// requireGitRepository opens the repository around the working directory.
func requireGitRepository() (*git.Repository, error) {
	repo, err := git.NewRepository("")
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return nil, errors.New("git failed. Is it installed, and are you in a Git repository directory?")
		}
		return nil, err
	}
	return repo, nil
}

// loadConfig reads the configuration at path, checks it against the schema
// and the semantic rules and prints its warnings.
func (s Streams) loadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected config file
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s is not a file", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := config.ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	for _, warning := range cfg.Warnings() {
		s.warnf("%s", warning)
	}
	return cfg, nil
}

// absPath makes a user supplied path absolute, leaving it unchanged when
// that fails.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// relativeTo returns path relative to root in slash form, or path itself
// when it lies outside root.
func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, absPath(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// resolveHookTypes returns the requested hook types, falling back to
// fallback (default_install_hook_types) and then to pre-commit.
func resolveHookTypes(requested, fallback []string) ([]string, error) {
	types := requested
	if len(types) == 0 {
		types = fallback
	}
	if len(types) == 0 {
		types = []string{hookTypePreCommit}
	}
	for _, hookType := range types {
		if !isHookType(hookType) {
			return nil, fmt.Errorf("unsupported hook type: %s", hookType)
		}
	}
	return types, nil
}

func joinRoot(root, file string) string {
	return filepath.Join(root, filepath.FromSlash(file))
}
