// Package errors provides structured error handling for the endpoint
// compiler. It defines error codes, categories, and formatting for both
// human-readable terminal output and machine-parseable JSON.
package errors

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/strct/ruma/internal/compiler/ast"
)

// ErrorCode represents a unique error code in the endpoint compiler
type ErrorCode string

// Definition syntax errors (SYN001-099)
const (
	// CodeLex is a lexical error in a definition file.
	CodeLex ErrorCode = "SYN001"
	// CodeParse is a syntax error in a definition file.
	CodeParse ErrorCode = "SYN002"
	// CodeBadMetadata is a missing or malformed metadata declaration.
	CodeBadMetadata ErrorCode = "SYN010"
	// CodeBadMarker is an unrecognized field location marker.
	CodeBadMarker ErrorCode = "SYN011"
)

// Unsupported combination errors (SCH001-099)
const (
	// CodeNewtypeBodyExclusive flags newtype_body/body coexistence.
	CodeNewtypeBodyExclusive ErrorCode = "SCH001"
	// CodeQueryMapExclusive flags query_map/query coexistence.
	CodeQueryMapExclusive ErrorCode = "SCH002"
	// CodeGetWithBody flags body fields on a GET endpoint.
	CodeGetWithBody ErrorCode = "SCH003"
	// CodeDuplicateHeader flags duplicate header names within a schema.
	CodeDuplicateHeader ErrorCode = "SCH004"
	// CodePathMismatch flags path fields out of step with the template.
	CodePathMismatch ErrorCode = "SCH005"
	// CodeWireType flags path, query, or header fields whose declared type
	// has no single-string wire form.
	CodeWireType ErrorCode = "SCH006"
)

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategorySyntax represents definition syntax errors (SYN001-099)
	CategorySyntax ErrorCategory = "syntax"
	// CategorySchema represents unsupported schema combinations (SCH001-099)
	CategorySchema ErrorCategory = "schema"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that blocks artifact generation
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a warning that suggests potential issues
	SeverityWarning ErrorSeverity = "warning"
)

// CompilerError represents a structured compiler error
type CompilerError struct {
	// Code is the unique error code (e.g., "SYN002", "SCH003")
	Code ErrorCode `json:"code"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Endpoint is the endpoint name the error belongs to (optional)
	Endpoint string `json:"endpoint,omitempty"`
	// Field is the offending field name (optional)
	Field string `json:"field,omitempty"`
	// Location is the source location of the error
	Location ast.SourceLocation `json:"location"`
	// File is the source file name (optional)
	File string `json:"file,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Code)
	if e.File != "" {
		fmt.Fprintf(&b, "%s:", e.File)
	}
	fmt.Fprintf(&b, "%d:%d: %s", e.Location.Line, e.Location.Column, e.Message)
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q)", e.Field)
	}
	return b.String()
}

// WithFile sets the source file name for the error
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// ErrorList aggregates every error found across one compilation unit so
// multiple authoring mistakes are reported together.
type ErrorList struct {
	Errors []CompilerError `json:"errors"`
}

// Error implements the error interface
func (l *ErrorList) Error() string {
	msgs := make([]string, len(l.Errors))
	for i := range l.Errors {
		msgs[i] = l.Errors[i].Format()
	}
	return strings.Join(msgs, "\n")
}

// Add appends errors to the list
func (l *ErrorList) Add(errs ...CompilerError) {
	l.Errors = append(l.Errors, errs...)
}

// HasErrors reports whether any error-severity diagnostic was recorded
func (l *ErrorList) HasErrors() bool {
	for i := range l.Errors {
		if l.Errors[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// ToJSON returns the aggregated errors as JSON for machine consumption
func (l *ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
