package magetasks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// out receives all task output.
var out io.Writer = os.Stdout

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// PrintH1Header prints a top-level header with decoration.
func PrintH1Header(title string) {
	width := 80
	padding := (width - len(title)) / 2
	if padding < 0 {
		padding = 0
	}
	fmt.Fprintln(out)
	headerColor.Fprintln(out, strings.Repeat("=", width))
	headerColor.Fprintf(out, "%s%s\n", strings.Repeat(" ", padding), title)
	headerColor.Fprintln(out, strings.Repeat("=", width))
	fmt.Fprintln(out)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Fprintln(out)
	headerColor.Fprintf(out, "=== %s ===\n", title)
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	successColor.Fprintf(out, "✅ %s\n", msg)
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	warningColor.Fprintf(out, "⚠️  %s\n", msg)
}

// PrintError prints an error message.
func PrintError(msg string) {
	errorColor.Fprintf(out, "❌ %s\n", msg)
}
