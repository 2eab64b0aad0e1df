package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
)

func severityColor(s Severity) *color.Color {
	switch s {
	case Warning:
		return warningColor
	case Error:
		return errorColor
	case Success:
		return successColor
	}
	return infoColor
}

// Fprint renders diagnostics one per line with the severity tag colored.
// Color degrades to plain text automatically when w is not a terminal.
func Fprint(w io.Writer, items []Diagnostic) {
	for _, d := range items {
		tag := severityColor(d.Severity).Sprint(d.Severity.String())
		if d.File != "" && d.Line > 0 {
			fmt.Fprintf(w, "%s:%d: %s: %s\n", d.File, d.Line, tag, d.Message)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", tag, d.Message)
	}
}
