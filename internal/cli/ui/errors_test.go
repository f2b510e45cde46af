package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/strct/ruma/internal/compiler/ast"
	"github.com/strct/ruma/internal/compiler/errors"
)

func TestRenderDiagnostics(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	list := &errors.ErrorList{}
	list.Add(
		errors.CompilerError{
			Code:     errors.CodeGetWithBody,
			Severity: errors.SeverityError,
			Message:  "GET endpoints can't have body fields",
			Endpoint: "sync_events",
			Field:    "filter",
			Location: ast.SourceLocation{Line: 14, Column: 5},
			File:     "messages.ruma",
		},
		errors.CompilerError{
			Code:     errors.CodeGetWithBody,
			Severity: errors.SeverityError,
			Message:  "GET endpoints can't have body fields",
			Endpoint: "sync_events",
			Field:    "since",
			Location: ast.SourceLocation{Line: 15, Column: 5},
			File:     "messages.ruma",
		},
	)

	var buf bytes.Buffer
	RenderDiagnostics(&buf, list, DiagnosticOptions{NoColor: true})
	out := buf.String()

	for _, want := range []string{
		"messages.ruma:14:5: [SCH003] GET endpoints can't have body fields (field \"filter\")",
		"messages.ruma:15:5:",
		"2 errors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDiagnosticsMixedSeverity(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	list := &errors.ErrorList{}
	list.Add(
		errors.CompilerError{Code: errors.CodeParse, Severity: errors.SeverityError, Message: "boom"},
		errors.CompilerError{Code: errors.CodePathMismatch, Severity: errors.SeverityWarning, Message: "shaky"},
	)

	var buf bytes.Buffer
	RenderDiagnostics(&buf, list, DiagnosticOptions{NoColor: true})
	out := buf.String()

	if !strings.Contains(out, "1 error, 1 warning") {
		t.Errorf("expected count summary, got:\n%s", out)
	}
}

func TestRenderDiagnosticsWithoutFile(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	list := &errors.ErrorList{}
	list.Add(errors.CompilerError{
		Code:     errors.CodeLex,
		Severity: errors.SeverityError,
		Message:  "Unexpected character: '$'",
		Location: ast.SourceLocation{Line: 1, Column: 10},
	})

	var buf bytes.Buffer
	RenderDiagnostics(&buf, list, DiagnosticOptions{NoColor: true})
	out := buf.String()

	if !strings.HasPrefix(out, "1:10: [SYN001]") {
		t.Errorf("expected bare position prefix, got:\n%s", out)
	}
}

func TestSuccess(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Success(&buf, "Generated %d endpoints", 3)

	if buf.String() != "✓ Generated 3 endpoints\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
