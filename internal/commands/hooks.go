package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mitchellh/cli"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/hook"
	"github.com/blairham/hookcfg/pkg/hook/execution"
	"github.com/blairham/hookcfg/pkg/repository"
)

// HooksCommand lists the hooks of a configuration after resolution against
// their manifests and the configuration defaults.
type HooksCommand struct {
	Streams
}

// HooksOptions holds command-line options for the hooks command
type HooksOptions struct {
	Config string `short:"c" long:"config"     description:"Path to config file"                   default:".pre-commit-config.yaml"`
	Stage  string `          long:"hook-stage" description:"Only list hooks that run in this stage"`
}

var hooksHelp = BaseCommand{
	Name:        "hooks",
	Description: "List the configured hooks as they will run.",
	Examples: []Example{
		{Command: "hookcfg hooks"},
		{Command: "hookcfg hooks --hook-stage pre-push", Description: "Hooks of one stage"},
	},
	Notes: []string{
		"Remote repositories are cloned into the cache when they are not there yet.",
	},
}

// Help returns the help text for the hooks command
func (c *HooksCommand) Help() string {
	return hooksHelp.GenerateHelp(&HooksOptions{})
}

// Synopsis returns a short description of the hooks command
func (c *HooksCommand) Synopsis() string {
	return "List the configured hooks"
}

// HooksCommandFactory creates a new hooks command instance
func HooksCommandFactory() (cli.Command, error) {
	return &HooksCommand{}, nil
}

// Run executes the hooks command
func (c *HooksCommand) Run(args []string) int {
	var opts HooksOptions
	if _, err := hooksHelp.ParseArgs(&opts, args); err != nil {
		return parseExit(err)
	}
	if opts.Stage != "" && !config.IsKnownStage(opts.Stage) {
		return c.fail(errUnknownStage(opts.Stage))
	}

	cfg, err := c.loadConfig(opts.Config)
	if err != nil {
		return c.fail(err)
	}

	manager, err := repository.NewManager("")
	if err != nil {
		return c.unexpected(err)
	}
	defer closeManager(manager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ectx := &execution.Context{Config: cfg, HookStage: config.NormalizeStage(opts.Stage)}
	orchestrator := hook.NewOrchestrator(ectx, manager)

	var items []execution.RunItem
	if opts.Stage == "" {
		items, err = orchestrator.Resolve(ctx)
	} else {
		items, err = orchestrator.Selected(ctx)
	}
	if err != nil {
		return c.fail(err)
	}

	c.printf("%s\n", hooksTable(items))
	return constants.ExitOK
}

func hooksTable(items []execution.RunItem) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "REPO", "LANGUAGE", "STAGES", "FILES").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, item := range items {
		h := item.Hook
		stages := "(all)"
		if len(h.Stages) > 0 {
			stages = strings.Join(h.Stages, ",")
		}
		files := h.Files
		if files == "" {
			files = "(any)"
		}
		t.Row(h.ID, h.DisplayName(), item.Repo.Repo, h.Language, stages, files)
	}
	return t.String()
}
