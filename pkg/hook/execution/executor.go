package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/diagnostics"
	"github.com/blairham/hookcfg/pkg/hook/commands"
	"github.com/blairham/hookcfg/pkg/hook/matching"
	"github.com/blairham/hookcfg/pkg/hook/meta"
	"github.com/blairham/hookcfg/pkg/hook/pygrep"
	"github.com/blairham/hookcfg/pkg/logging"
)

var logger = logging.NewLogger("execution")

// errTimeout marks a hook killed because it ran longer than Context.Timeout.
var errTimeout = errors.New("timed out")

// Executor handles the execution of individual hooks
type Executor struct {
	ctx     *Context
	builder *commands.Builder
	matcher *matching.Matcher

	envOnce sync.Once
	env     []string
}

// NewExecutor creates a new hook executor
func NewExecutor(ctx *Context, matcher *matching.Matcher) *Executor {
	if matcher == nil {
		matcher = matching.NewMatcher(ctx.RepoRoot)
	}
	return &Executor{
		ctx:     ctx,
		builder: commands.NewBuilder(ctx.RepoRoot),
		matcher: matcher,
	}
}

// Execute runs one hook against files and reports the outcome. It never
// returns an error: problems starting the hook become a failed result.
func (e *Executor) Execute(ctx context.Context, item RunItem, files []string) Result {
	start := time.Now()
	result := Result{Hook: item.Hook, Files: files}

	var out bytes.Buffer
	code, err := e.dispatch(ctx, item, files, &out)
	e.ProcessExecutionResult(&result, out.Bytes(), code, err, start)

	logging.Timing(logger.WithField("hook", item.Hook.ID), "hook", start)
	return result
}

func (e *Executor) dispatch(ctx context.Context, item RunItem, files []string, out io.Writer) (int, error) {
	hook := item.Hook

	if item.Repo.IsMeta() {
		return e.runMeta(hook, files, out)
	}

	switch commands.Normalize(hook.Language) {
	case commands.LanguageFail:
		fmt.Fprintf(out, "%s\n\n", hook.Entry)
		for _, file := range files {
			fmt.Fprintln(out, file)
		}
		return 1, nil
	case commands.LanguagePygrep:
		opts, err := pygrep.ParseArgs(hook.Args)
		if err != nil {
			return 1, err
		}
		failed, err := pygrep.Grep(out, hook.Entry, opts, e.ctx.RepoRoot, files)
		return exitCode(failed), err
	default:
		return e.runProcess(ctx, item, files, out)
	}
}

func (e *Executor) runMeta(hook config.Hook, files []string, out io.Writer) (int, error) {
	switch hook.ID {
	case config.MetaIdentity:
		meta.Identity(out, files)
		return 0, nil
	case config.MetaCheckHooksApply:
		hooks := make([]config.Hook, 0, len(e.ctx.Items))
		for _, item := range e.ctx.Items {
			hooks = append(hooks, item.Hook)
		}
		return exitCode(meta.CheckHooksApply(out, e.ctx.Config, hooks, e.matcher, e.ctx.RepoFiles)), nil
	case config.MetaCheckUselessExcludes:
		return exitCode(meta.CheckUselessExcludes(out, e.ctx.Config, e.matcher, e.ctx.RepoFiles)), nil
	default:
		return 1, fmt.Errorf("unknown meta hook %q", hook.ID)
	}
}

// runProcess starts the hook's command once per batch of files. Batches
// run concurrently up to Context.Jobs unless the hook requires serial
// execution. Output is concatenated in batch order and the highest exit
// code wins.
func (e *Executor) runProcess(ctx context.Context, item RunItem, files []string, out io.Writer) (int, error) {
	hook := item.Hook

	argv, err := e.builder.Argv(hook, item.RepoPath)
	if err != nil {
		return 1, err
	}

	fileArgs := files
	if !hook.ShouldPassFilenames() {
		fileArgs = nil
	}

	jobs := max(e.ctx.Jobs, 1)
	if hook.RequireSerial {
		jobs = 1
	}

	batches, err := commands.Partition(argv, fileArgs, jobs, commands.MaxCommandLength)
	if err != nil {
		return 1, err
	}

	if e.ctx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ctx.Timeout)
		defer cancel()
	}

	outputs := make([][]byte, len(batches))
	codes := make([]int, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, batch := range batches {
		g.Go(func() error {
			cmd := e.builder.Command(gctx, argv, batch)
			cmd.Env = e.environ()

			output, err := cmd.CombinedOutput()
			outputs[i] = output

			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				codes[i] = exitErr.ExitCode()
				return nil
			}
			return err
		})
	}
	waitErr := g.Wait()

	for _, output := range outputs {
		_, _ = out.Write(output)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 1, errTimeout
	}
	if waitErr != nil {
		return 1, waitErr
	}

	code := 0
	for _, c := range codes {
		code = max(code, c)
	}
	if code == 0 && hasNegative(codes) {
		// killed by a signal
		code = 1
	}
	return code, nil
}

// environ is the process environment plus PRE_COMMIT=1, the stage and ref
// variables and Context.Environment.
func (e *Executor) environ() []string {
	e.envOnce.Do(func() {
		extra := map[string]string{constants.EnvPreCommit: "1"}
		if e.ctx.HookStage != "" {
			extra[constants.EnvHookStage] = e.ctx.HookStage
		}
		if e.ctx.FromRef != "" && e.ctx.ToRef != "" {
			extra[constants.EnvFromRef] = e.ctx.FromRef
			extra[constants.EnvToRef] = e.ctx.ToRef
		}
		for k, v := range e.ctx.Environment {
			extra[k] = v
		}

		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		env := os.Environ()
		for _, k := range keys {
			env = append(env, k+"="+extra[k])
		}
		e.env = env
	})
	return e.env
}

// ProcessExecutionResult fills result from the raw outcome of a hook.
func (e *Executor) ProcessExecutionResult(result *Result, output []byte, code int, execErr error, start time.Time) {
	result.Output = string(output)
	result.Duration = time.Since(start)
	result.ExitCode = code
	result.Diagnostics = diagnostics.Parse(result.Output)

	if execErr != nil {
		if result.ExitCode == 0 {
			result.ExitCode = 1
		}
		result.Status = StatusFailed
		e.handleExecutionError(result, execErr)
		return
	}

	if code != 0 {
		result.Status = StatusFailed
		return
	}
	result.Status = StatusPassed
}

// handleExecutionError describes a hook that could not run to completion.
func (e *Executor) handleExecutionError(result *Result, execErr error) {
	switch {
	case errors.Is(execErr, errTimeout):
		result.Timeout = true
		result.Error = fmt.Sprintf("Hook timed out after %v", e.ctx.Timeout)
	case isExecutableNotFoundError(execErr):
		result.Error = fmt.Sprintf("Executable `%s` not found", executableName(result.Hook))
	default:
		result.Error = fmt.Sprintf("Execution error: %s", execErr.Error())
	}
}

func isExecutableNotFoundError(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

func executableName(hook config.Hook) string {
	name, _, _ := strings.Cut(strings.TrimSpace(hook.Entry), " ")
	return name
}

func exitCode(failed bool) int {
	if failed {
		return 1
	}
	return 0
}

func hasNegative(codes []int) bool {
	for _, c := range codes {
		if c < 0 {
			return true
		}
	}
	return false
}
