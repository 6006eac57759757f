// Package ui provides formatted output utilities for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Color functions for consistent styling.
var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Output is the destination for UI output.
// Defaults to os.Stdout but can be overridden for testing.
var Output io.Writer = os.Stdout

// StatusBadge returns a colored daemon state indicator.
func StatusBadge(running bool) string {
	if running {
		return Green("● Running")
	}
	return Red("○ Not Running")
}

// CoffeeBadge returns a colored idle-inhibit indicator. A nil state means
// the daemon could not report it.
func CoffeeBadge(inhibited *bool) string {
	switch {
	case inhibited == nil:
		return Dim("? Unknown")
	case *inhibited:
		return Yellow("☕ Inhibited")
	default:
		return Blue("○ Relaxed")
	}
}

// Status is the daemon status shown by `glue status`.
type Status struct {
	Running bool
	PID     int
	Socket  string
	Log     string
	Coffee  *bool
}

// PrintStatus prints daemon status in a formatted style.
func PrintStatus(s Status) {
	fmt.Fprintf(Output, "%s %s\n", Bold("Daemon:"), StatusBadge(s.Running))
	if s.Running && s.PID > 0 {
		fmt.Fprintf(Output, "%s %d\n", Bold("PID:"), s.PID)
	}
	if s.Running {
		fmt.Fprintf(Output, "%s %s\n", Bold("Coffee:"), CoffeeBadge(s.Coffee))
	}
	fmt.Fprintf(Output, "%s %s\n", Bold("Socket:"), Blue(s.Socket))
	fmt.Fprintf(Output, "%s %s\n", Bold("Logs:"), s.Log)
}

// PrintSuccess prints a success message with green checkmark.
func PrintSuccess(message string) {
	fmt.Fprintf(Output, "%s %s\n", Green("✓"), message)
}

// PrintError prints an error message with red X.
func PrintError(message string) {
	fmt.Fprintf(Output, "%s %s\n", Red("✗"), message)
}

// PrintWarning prints a warning message with yellow exclamation.
func PrintWarning(message string) {
	fmt.Fprintf(Output, "%s %s\n", Yellow("⚠"), message)
}

// PrintInfo prints an info message with blue dot.
func PrintInfo(message string) {
	fmt.Fprintf(Output, "%s %s\n", Blue("•"), message)
}
