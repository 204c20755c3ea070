// Package execution handles the core hook execution logic
package execution

import (
	"time"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/diagnostics"
)

// Context holds context for hook execution
type Context struct {
	Config *config.Config
	// Environment is added to the environment of every hook process.
	Environment map[string]string
	RepoRoot    string
	HookStage   string
	Color       string
	FromRef     string
	ToRef       string
	HookIDs     []string
	// Files are the candidate files for this run (staged, changed or all).
	Files []string
	// RepoFiles are all tracked files; meta hooks inspect them.
	RepoFiles []string
	// Items are every resolved hook of the configuration.
	Items    []RunItem
	Timeout  time.Duration
	Jobs     int
	AllFiles bool
	Verbose  bool
	ShowDiff bool
}

// Status is the outcome of a hook.
type Status int

// Hook outcomes
const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "Passed"
	case StatusFailed:
		return "Failed"
	default:
		return "Skipped"
	}
}

// Result represents the result of hook execution
type Result struct {
	Output string
	Error  string
	// SkipReason is shown next to Skipped, e.g. "(no files to check)".
	SkipReason  string
	Files       []string
	Diagnostics []diagnostics.Diagnostic
	Hook        config.Hook
	Duration    time.Duration
	ExitCode    int
	Status      Status
	Modified    bool
	Timeout     bool
}

// Success reports whether the hook did not fail.
func (r Result) Success() bool {
	return r.Status != StatusFailed
}

// RunItem represents a hook to be executed with its repository context
type RunItem struct {
	// RepoPath is the checkout of a remote hook repository, empty for
	// local and meta hooks.
	RepoPath string
	Repo     config.Repo
	Hook     config.Hook
}
