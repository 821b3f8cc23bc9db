// Package printer renders user-facing CLI output. Colors degrade
// automatically when stdout is not a terminal or NO_COLOR is set.
package printer

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Success prints a green checkmark line.
func Success(format string, a ...any) {
	green.Printf("✓ "+format+"\n", a...)
}

// Info prints a plain line.
func Info(format string, a ...any) {
	fmt.Printf(format+"\n", a...)
}

// Warning prints a yellow warning line.
func Warning(format string, a ...any) {
	yellow.Printf("! "+format+"\n", a...)
}

// Step prints a cyan progress line for multi-step operations.
func Step(format string, a ...any) {
	cyan.Printf("→ "+format+"\n", a...)
}

// Muted prints a de-emphasized detail line.
func Muted(format string, a ...any) {
	faint.Printf(format+"\n", a...)
}

// Error prints a formatted error block to stderr and returns a bare error
// carrying only the title, so cobra does not print the details twice.
func Error(title, explanation string, suggestions ...string) error {
	red.Fprintf(os.Stderr, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(os.Stderr)
		for _, s := range suggestions {
			fmt.Fprintf(os.Stderr, "  - %s\n", s)
		}
	}
	return fmt.Errorf("%s", title)
}
