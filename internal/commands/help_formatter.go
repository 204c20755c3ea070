package commands

import (
	"fmt"
	"strings"

	"github.com/jessevdk/go-flags"
)

// HelpFormatter lays out a command's help: description, examples, notes
// and the options generated by go-flags.
type HelpFormatter struct {
	Command     string
	Description string
	Examples    []Example
	Notes       []string
}

// Example is a sample invocation shown in help.
type Example struct {
	Command     string
	Description string
}

// FormatHelp generates the help text for a command.
func (h *HelpFormatter) FormatHelp(parser *flags.Parser) string {
	var result strings.Builder

	if h.Description != "" {
		fmt.Fprintf(&result, "%s\n\n", h.Description)
	}

	if len(h.Examples) > 0 {
		width := 0
		for _, example := range h.Examples {
			width = max(width, len(example.Command))
		}
		result.WriteString("Examples:\n")
		for _, example := range h.Examples {
			if example.Description == "" {
				fmt.Fprintf(&result, "  %s\n", example.Command)
				continue
			}
			fmt.Fprintf(&result, "  %-*s  # %s\n", width, example.Command, example.Description)
		}
		result.WriteString("\n")
	}

	if len(h.Notes) > 0 {
		result.WriteString("Notes:\n")
		for _, note := range h.Notes {
			if note == "" {
				result.WriteString("\n")
				continue
			}
			fmt.Fprintf(&result, "  %s\n", note)
		}
		result.WriteString("\n")
	}

	parser.WriteHelp(&result)
	return result.String()
}
