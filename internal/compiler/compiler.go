// Package compiler drives the endpoint definition pipeline: lexing, parsing,
// validation, and Go code generation. It aggregates diagnostics across all
// phases so every authoring mistake in a file surfaces in one run.
package compiler

import (
	"strings"

	"github.com/strct/ruma/internal/compiler/ast"
	"github.com/strct/ruma/internal/compiler/checker"
	"github.com/strct/ruma/internal/compiler/codegen"
	"github.com/strct/ruma/internal/compiler/errors"
	"github.com/strct/ruma/internal/compiler/lexer"
	"github.com/strct/ruma/internal/compiler/parser"
)

// Result holds the artifacts of one compilation unit.
type Result struct {
	// Files maps generated file names to their Go source.
	Files map[string]string
	// Endpoints lists the names of successfully compiled endpoints, in
	// declaration order.
	Endpoints []string
}

// CompileSource compiles one definition source into Go files for the given
// target package. The returned ErrorList is non-nil and collects every
// diagnostic; callers decide via HasErrors whether to keep the artifacts.
func CompileSource(file, source, pkg string) (*Result, *errors.ErrorList) {
	list := &errors.ErrorList{}

	program := parse(file, source, list)
	if program == nil || list.HasErrors() {
		return nil, list
	}

	result := &Result{Files: make(map[string]string, len(program.Endpoints))}
	gen := codegen.NewGenerator()

	for _, node := range program.Endpoints {
		def, checkErrs := checker.Check(node)
		if len(checkErrs) > 0 {
			for i := range checkErrs {
				checkErrs[i].File = file
			}
			list.Add(checkErrs...)
			continue
		}

		code, err := gen.GenerateEndpoint(pkg, node, def)
		if err != nil {
			list.Add(errors.CompilerError{
				Code:     errors.CodeWireType,
				Category: errors.CategorySchema,
				Severity: errors.SeverityError,
				Message:  err.Error(),
				Endpoint: node.Name,
				Location: node.Loc,
				File:     file,
			})
			continue
		}

		result.Files[codegen.FileName(node)] = code
		result.Endpoints = append(result.Endpoints, node.Name)
	}

	if list.HasErrors() {
		return nil, list
	}
	return result, list
}

// parse runs the lexer and parser, converting their phase-local errors into
// compiler diagnostics. A nil return means the source was unparseable.
func parse(file, source string, list *errors.ErrorList) *ast.Program {
	tokens, lexErrs := lexer.New(source).ScanTokens()
	for _, e := range lexErrs {
		list.Add(errors.CompilerError{
			Code:     errors.CodeLex,
			Category: errors.CategorySyntax,
			Severity: errors.SeverityError,
			Message:  e.Message,
			Location: ast.SourceLocation{Line: e.Line, Column: e.Column},
			File:     file,
		})
	}
	if list.HasErrors() {
		return nil
	}

	program, parseErrs := parser.New(tokens).Parse()
	for _, e := range parseErrs {
		code := errors.CodeParse
		if strings.HasPrefix(e.Message, "Unknown location marker") {
			code = errors.CodeBadMarker
		}
		list.Add(errors.CompilerError{
			Code:     code,
			Category: errors.CategorySyntax,
			Severity: errors.SeverityError,
			Message:  e.Message,
			Location: e.Location,
			File:     file,
		})
	}
	if list.HasErrors() {
		return nil
	}
	return program
}
