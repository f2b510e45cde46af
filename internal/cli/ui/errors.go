// Package ui renders compiler diagnostics and progress for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/strct/ruma/internal/compiler/errors"
)

// DiagnosticOptions configures diagnostic rendering
type DiagnosticOptions struct {
	NoColor bool
}

// RenderDiagnostics writes every diagnostic in the list to w, grouped the
// way they were found, with a trailing count summary.
//
// Example output:
//
//	messages.ruma:14:5: [SCH003] GET endpoints can't have body fields (field "filter")
//	messages.ruma:15:5: [SCH003] GET endpoints can't have body fields (field "since")
//
//	2 errors
func RenderDiagnostics(w io.Writer, list *errors.ErrorList, opts DiagnosticOptions) {
	codeColor := color.New(color.FgRed, color.Bold)
	posColor := color.New(color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)

	if opts.NoColor {
		codeColor.DisableColor()
		posColor.DisableColor()
		warnColor.DisableColor()
	}

	var nErrors, nWarnings int
	for _, e := range list.Errors {
		c := codeColor
		if e.Severity == errors.SeverityWarning {
			c = warnColor
			nWarnings++
		} else {
			nErrors++
		}

		if e.File != "" {
			posColor.Fprintf(w, "%s:", e.File)
		}
		posColor.Fprintf(w, "%d:%d:", e.Location.Line, e.Location.Column)
		c.Fprintf(w, " [%s]", e.Code)
		fmt.Fprintf(w, " %s", e.Message)
		if e.Field != "" {
			fmt.Fprintf(w, " (field %q)", e.Field)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	parts := []string{}
	if nErrors > 0 {
		parts = append(parts, plural(nErrors, "error"))
	}
	if nWarnings > 0 {
		parts = append(parts, plural(nWarnings, "warning"))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, strings.Join(parts, ", "))
	}
}

// Success writes a green check line
func Success(w io.Writer, format string, args ...interface{}) {
	ok := color.New(color.FgGreen)
	ok.Fprintf(w, "✓ "+format+"\n", args...)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
