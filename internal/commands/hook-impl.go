package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/git"
)

const (
	zeroSHA = "0000000000000000000000000000000000000000"

	envRunningLegacy = "PRE_COMMIT_RUNNING_LEGACY"
)

// HookImplCommand is what the installed git hook scripts execute. It runs a
// legacy hook kept next to ours, then translates the git hook's arguments
// into a run.
type HookImplCommand struct {
	Streams
	In io.Reader
}

// HookImplOptions holds command-line options for the hook-impl command
type HookImplOptions struct {
	Config              string `long:"config"                  description:"Path to config file"               default:".pre-commit-config.yaml"`
	HookType            string `long:"hook-type"               description:"Git hook being run"                required:"true"`
	HookDir             string `long:"hook-dir"                description:"Directory of the calling hook script"`
	SkipOnMissingConfig bool   `long:"skip-on-missing-config"  description:"Exit 0 when the config file is missing"`
	Color               string `long:"color"                   description:"Whether to use color in output"    choice:"auto" choice:"always" choice:"never"`
}

var hookImplHelp = BaseCommand{
	Name:        "hook-impl",
	Usage:       "[OPTIONS] -- [HOOK ARGS...]",
	Description: "Internal: run hooks on behalf of an installed git hook script.",
	Notes: []string{
		"Called by the scripts `hookcfg install` writes; not meant to be run by hand.",
	},
}

// Help returns the help text for the hook-impl command
func (c *HookImplCommand) Help() string {
	return hookImplHelp.GenerateHelp(&HookImplOptions{})
}

// Synopsis returns a short description of the hook-impl command
func (c *HookImplCommand) Synopsis() string {
	return "Run hooks from an installed git hook (internal)"
}

// HookImplCommandFactory creates a new hook-impl command instance
func HookImplCommandFactory() (cli.Command, error) {
	return &HookImplCommand{}, nil
}

// Run executes the hook-impl command
func (c *HookImplCommand) Run(args []string) int {
	var opts HookImplOptions
	hookArgs, err := hookImplHelp.ParseArgs(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if !isHookType(opts.HookType) {
		return c.fail(fmt.Errorf("unsupported hook type: %s", opts.HookType))
	}

	if os.Getenv(envRunningLegacy) != "" {
		return c.fail(fmt.Errorf(
			"hookcfg's script is installed in migration mode; run `hookcfg install -f --hook-type %s` to fix this",
			opts.HookType))
	}

	var stdin []byte
	if opts.HookType == hookTypePrePush {
		if stdin, err = io.ReadAll(c.stdin()); err != nil {
			return c.unexpected(err)
		}
	}

	repo, err := requireGitRepository()
	if err != nil {
		return c.fail(err)
	}

	legacyCode := c.runLegacy(repo, &opts, hookArgs, stdin)

	if _, err := os.Stat(opts.Config); err != nil {
		if opts.SkipOnMissingConfig || os.Getenv(constants.EnvAllowNoConfig) != "" {
			c.printf("`%s` config file not found. Skipping `hookcfg`.\n", opts.Config)
			return legacyCode
		}
		c.printf("No %s file was found\n", opts.Config)
		c.printf("- To temporarily silence this, run `%s=1 git ...`\n", constants.EnvAllowNoConfig)
		c.printf("- To permanently silence this, install hookcfg with the --allow-missing-config option\n")
		c.printf("- To uninstall hookcfg run `hookcfg uninstall`\n")
		return constants.ExitFailure
	}

	runOpts, err := hookRunOptions(context.Background(), repo, &opts, hookArgs, stdin)
	if err != nil {
		return c.fail(err)
	}
	if runOpts == nil {
		// Nothing to push.
		return legacyCode
	}

	run := &RunCommand{Streams: c.Streams}
	return max(legacyCode, run.runWithOptions(runOpts, nil))
}

func (c *HookImplCommand) stdin() io.Reader {
	if c.In != nil {
		return c.In
	}
	return os.Stdin
}

// runLegacy runs the hook that was in place before ours, if any, with the
// same arguments and stdin.
func (c *HookImplCommand) runLegacy(repo *git.Repository, opts *HookImplOptions, hookArgs []string, stdin []byte) int {
	var legacy string
	if opts.HookDir != "" {
		legacy = filepath.Join(opts.HookDir, opts.HookType+".legacy")
	} else if path, ok := repo.LegacyHook(opts.HookType); ok {
		legacy = path
	}
	info, err := os.Stat(legacy)
	if legacy == "" || err != nil || info.Mode()&0o111 == 0 {
		return constants.ExitOK
	}

	cmd := exec.Command(legacy, hookArgs...) // #nosec G204 -- hook the user installed
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = c.stdout()
	cmd.Stderr = c.stderr()
	cmd.Env = append(os.Environ(), envRunningLegacy+"=1")
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		logger.Warnf("failed to run legacy hook %s: %v", legacy, err)
		return constants.ExitFailure
	}
	return constants.ExitOK
}

// hookRunOptions maps a git hook's arguments onto run options. It returns
// nil for a pre-push that pushes nothing new.
func hookRunOptions(
	ctx context.Context,
	repo *git.Repository,
	opts *HookImplOptions,
	hookArgs []string,
	stdin []byte,
) (*RunOptions, error) {
	run := &RunOptions{Config: opts.Config, HookStage: opts.HookType, Color: opts.Color}
	arg := func(i int) string {
		if i < len(hookArgs) {
			return hookArgs[i]
		}
		return ""
	}
	need := func(n int) error {
		if len(hookArgs) < n {
			return fmt.Errorf("hook %s expects %d argument(s), got %d", opts.HookType, n, len(hookArgs))
		}
		return nil
	}

	switch opts.HookType {
	case hookTypePreCommit, hookTypePreMergeCommit, hookTypePostCommit:
	case hookTypeCommitMsg:
		if err := need(1); err != nil {
			return nil, err
		}
		run.CommitMsgFilename = arg(0)
	case hookTypePrepareCommit:
		if err := need(1); err != nil {
			return nil, err
		}
		run.CommitMsgFilename = arg(0)
		run.PrepareCommitMessageSource = arg(1)
		run.CommitObjectName = arg(2)
	case hookTypePostCheckout:
		if err := need(3); err != nil {
			return nil, err
		}
		run.FromRef, run.ToRef, run.CheckoutType = arg(0), arg(1), arg(2)
	case hookTypePostMerge:
		if err := need(1); err != nil {
			return nil, err
		}
		run.IsSquashMerge = arg(0)
	case hookTypePostRewrite:
		if err := need(1); err != nil {
			return nil, err
		}
		run.RewriteCommand = arg(0)
	case hookTypePreRebase:
		if err := need(1); err != nil {
			return nil, err
		}
		run.PreRebaseUpstream, run.PreRebaseBranch = arg(0), arg(1)
	case hookTypePrePush:
		if err := need(2); err != nil {
			return nil, err
		}
		run.RemoteName, run.RemoteURL = arg(0), arg(1)
		return prePushOptions(ctx, repo, run, stdin)
	}
	return run, nil
}

// prePushOptions picks the files to check from the first pushed ref that
// carries new commits. Deleted refs are ignored. A push of a whole history
// checks every file.
func prePushOptions(ctx context.Context, repo *git.Repository, run *RunOptions, stdin []byte) (*RunOptions, error) {
	for _, line := range strings.Split(string(stdin), "\n") {
		parts := strings.Fields(line)
		if len(parts) != 4 {
			continue
		}
		localBranch, localSHA, remoteBranch, remoteSHA := parts[0], parts[1], parts[2], parts[3]
		if localSHA == zeroSHA {
			continue
		}
		run.LocalBranch, run.RemoteBranch = localBranch, remoteBranch

		if remoteSHA != zeroSHA && revExists(ctx, repo, remoteSHA) {
			run.FromRef, run.ToRef = remoteSHA, localSHA
			return run, nil
		}

		out, err := repo.RunGit(ctx, "rev-list", localSHA, "--topo-order", "--reverse", "--not", "--remotes="+run.RemoteName)
		if err != nil {
			return nil, err
		}
		ancestors := strings.Fields(out)
		if len(ancestors) == 0 {
			continue
		}
		first := ancestors[0]

		roots, err := repo.RunGit(ctx, "rev-list", "--max-parents=0", localSHA)
		if err != nil {
			return nil, err
		}
		for _, root := range strings.Fields(roots) {
			if root == first {
				run.AllFiles = true
				return run, nil
			}
		}

		parent, err := repo.RunGit(ctx, "rev-parse", first+"^")
		if err != nil {
			return nil, err
		}
		run.FromRef, run.ToRef = strings.TrimSpace(parent), localSHA
		return run, nil
	}
	return nil, nil
}

func revExists(ctx context.Context, repo *git.Repository, rev string) bool {
	_, err := repo.RunGit(ctx, "cat-file", "-e", rev)
	return err == nil
}
