// Package formatting renders hook results the way pre-commit prints them:
// one dotted status line per hook, followed by details for failures.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/diagnostics"
	"github.com/blairham/hookcfg/pkg/hook/execution"
)

// Color modes accepted by --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// minColumns is the narrowest status line, counting the trailing newline.
const minColumns = 80

const noFilesMessage = "(no files to check)"

type styles struct {
	passed  lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	detail  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		passed:  r.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")),
		failed:  r.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("7")),
		skipped: r.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("0")),
		detail:  r.NewStyle().Faint(true),
	}
}

// Formatter handles formatting and displaying hook execution results
type Formatter struct {
	out     io.Writer
	styles  styles
	columns int
	verbose bool
	color   bool
}

// NewFormatter creates a formatter writing to out. colorMode is one of
// auto, always or never.
func NewFormatter(out io.Writer, colorMode string, verbose bool) *Formatter {
	useColor := UseColor(colorMode, out)

	renderer := lipgloss.NewRenderer(out)
	if useColor {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Formatter{
		out:     out,
		styles:  newStyles(renderer),
		columns: minColumns,
		verbose: verbose,
		color:   useColor,
	}
}

// UseColor resolves a color mode for out. In auto mode color is used only
// for terminals, and never when NO_COLOR is set or TERM is dumb.
func UseColor(mode string, out io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv(constants.EnvNoColor); ok || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FitNames widens the status lines so the longest hook name still fits
// alongside a "no files" skip message.
func (f *Formatter) FitNames(names []string) {
	cols := minColumns
	for _, name := range names {
		cols = max(cols, lipgloss.Width(name)+3+len(noFilesMessage)+len("Skipped"))
	}
	f.columns = cols
}

// PrintResults prints each result in order.
func (f *Formatter) PrintResults(results []execution.Result) {
	for _, result := range results {
		f.PrintResult(result)
	}
}

// PrintResult prints the status line of one hook and, for failures or
// verbose hooks, its details and output.
func (f *Formatter) PrintResult(result execution.Result) {
	name := result.Hook.DisplayName()

	switch result.Status {
	case execution.StatusSkipped:
		f.statusLine(name, result.SkipReason, "Skipped", f.styles.skipped)
		return
	case execution.StatusPassed:
		f.statusLine(name, "", "Passed", f.styles.passed)
		if f.verbose || result.Hook.Verbose {
			f.printDetails(result)
			f.printOutput(result.Output)
		}
	default:
		f.statusLine(name, "", "Failed", f.styles.failed)
		f.printDetails(result)
		f.printOutput(result.Output)
	}
}

func (f *Formatter) statusLine(name, postfix, status string, style lipgloss.Style) {
	dots := max(f.columns-lipgloss.Width(name)-len(postfix)-len(status)-1, 1)
	fmt.Fprintf(f.out, "%s%s%s%s\n", name, strings.Repeat(".", dots), postfix, f.paint(style, status))
}

func (f *Formatter) printDetails(result execution.Result) {
	f.detail("- hook id: %s", result.Hook.ID)
	if f.verbose || result.Hook.Verbose {
		if result.Timeout {
			f.detail("- duration: %s (timeout)", FormatDuration(result.Duration))
		} else {
			f.detail("- duration: %s", FormatDuration(result.Duration))
		}
	}
	if result.ExitCode != 0 {
		f.detail("- exit code: %d", result.ExitCode)
	}
	if result.Modified {
		f.detail("- files were modified by this hook")
	}
	if result.Error != "" {
		f.detail("- error: %s", result.Error)
	}
	if f.verbose && len(result.Diagnostics) > 0 {
		if summary := diagnostics.Summarize(result.Diagnostics); !summary.Empty() {
			f.detail("- diagnostics: %s", summary)
		}
	}
}

func (f *Formatter) detail(format string, args ...any) {
	fmt.Fprintln(f.out, f.paint(f.styles.detail, fmt.Sprintf(format, args...)))
}

// printOutput prints hook output surrounded by blank lines. The output is
// left as is so the hook's own colors survive.
func (f *Formatter) printOutput(output string) {
	output = strings.TrimRight(output, "\n\r\t ")
	if output == "" {
		return
	}
	fmt.Fprintf(f.out, "\n%s\n\n", output)
}

func (f *Formatter) paint(style lipgloss.Style, s string) string {
	if !f.color {
		return s
	}
	return style.Render(s)
}

// FormatDuration formats durations the way pre-commit reports them.
func FormatDuration(duration time.Duration) string {
	seconds := duration.Seconds()

	switch {
	case seconds < 0.005:
		return "0s"
	case seconds < 1.0:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 60.0:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		minutes := int(seconds) / 60
		remainingSeconds := int(seconds) % 60
		return fmt.Sprintf("%dm%ds", minutes, remainingSeconds)
	}
}
