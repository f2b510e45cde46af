// Package checker assembles parsed endpoint definitions into the compiled
// intermediate representation and validates them against the wire-protocol
// rules. It is the bridge between the AST and the api runtime model: the
// rules themselves live in api.Validate; the checker maps each violation
// back to its source location for diagnostics.
package checker

import (
	"fmt"
	"strings"

	"github.com/strct/ruma/api"
	"github.com/strct/ruma/internal/compiler/ast"
	"github.com/strct/ruma/internal/compiler/errors"
)

// Check assembles and validates one endpoint definition. On success it
// returns the immutable compiled endpoint; on failure it returns every
// violation found, so multiple authoring mistakes surface together.
func Check(node *ast.EndpointNode) (*api.EndpointDef, []errors.CompilerError) {
	def, errs := assemble(node)
	if len(errs) > 0 {
		return nil, errs
	}

	if vs := api.Validate(def); len(vs) > 0 {
		return nil, mapViolations(node, vs)
	}
	return def, nil
}

// assemble merges the metadata block, both schemas, and the error clause
// into one api.EndpointDef, deriving the per-location field groupings once.
func assemble(node *ast.EndpointNode) (*api.EndpointDef, []errors.CompilerError) {
	var errs []errors.CompilerError

	meta, metaErrs := assembleMetadata(node)
	errs = append(errs, metaErrs...)

	request := assembleFields(node.Request)
	response := assembleFields(node.Response)

	if len(errs) > 0 {
		return nil, errs
	}

	def := api.NewEndpointDef(meta, request, response)
	def.ErrorType = node.ErrorType
	return &def, nil
}

func assembleMetadata(node *ast.EndpointNode) (api.Metadata, []errors.CompilerError) {
	m := node.Metadata
	var errs []errors.CompilerError
	bad := func(msg string) {
		errs = append(errs, errors.CompilerError{
			Code:     errors.CodeBadMetadata,
			Category: errors.CategorySyntax,
			Severity: errors.SeverityError,
			Message:  msg,
			Endpoint: node.Name,
			Location: m.Loc,
		})
	}

	for _, key := range []string{"method", "name", "path"} {
		if !m.Declared[key] {
			bad(fmt.Sprintf("metadata is missing the %q declaration", key))
		}
	}

	method := strings.ToUpper(m.Method)
	if m.Declared["method"] && !api.IsSupportedMethod(method) {
		bad(fmt.Sprintf("unsupported HTTP method %q", m.Method))
	}

	auth := api.AuthNone
	if m.Declared["authentication"] {
		parsed, ok := api.ParseAuthScheme(m.Authentication)
		if !ok {
			bad(fmt.Sprintf("unknown authentication scheme %q", m.Authentication))
		} else {
			auth = parsed
		}
	}

	return api.Metadata{
		Description:    m.Description,
		Method:         method,
		Name:           m.Name,
		Path:           m.Path,
		RateLimited:    m.RateLimited,
		Authentication: auth,
	}, errs
}

func assembleFields(nodes []*ast.FieldNode) []api.Field {
	fields := make([]api.Field, 0, len(nodes))
	for _, n := range nodes {
		f := api.Field{
			Name:     n.Name,
			Type:     n.Type.String(),
			Location: location(n.Location),
			Optional: n.Optional,
		}
		if n.Location == ast.LocationHeader {
			f.Header = n.HeaderName
			if f.Header == "" {
				f.Header = headerName(n.Name)
			}
		}
		fields = append(fields, f)
	}
	return fields
}

func location(loc ast.FieldLocation) api.Location {
	switch loc {
	case ast.LocationPath:
		return api.LocPath
	case ast.LocationQuery:
		return api.LocQuery
	case ast.LocationQueryMap:
		return api.LocQueryMap
	case ast.LocationHeader:
		return api.LocHeader
	case ast.LocationNewtypeBody:
		return api.LocNewtypeBody
	default:
		return api.LocBody
	}
}

// headerName derives the wire header name from a field name when the
// @header marker carries no explicit argument: x_custom -> X-Custom.
func headerName(field string) string {
	parts := strings.Split(field, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}

var ruleCodes = map[api.Rule]errors.ErrorCode{
	api.RuleBadMetadata:          errors.CodeBadMetadata,
	api.RuleNewtypeBodyExclusive: errors.CodeNewtypeBodyExclusive,
	api.RuleQueryMapExclusive:    errors.CodeQueryMapExclusive,
	api.RuleGetWithBody:          errors.CodeGetWithBody,
	api.RuleDuplicateHeader:      errors.CodeDuplicateHeader,
	api.RulePathMismatch:         errors.CodePathMismatch,
}

// mapViolations turns api validation violations into compiler diagnostics,
// recovering each offending field's declaration site from the AST.
func mapViolations(node *ast.EndpointNode, vs []api.Violation) []errors.CompilerError {
	locs := map[string]ast.SourceLocation{}
	for _, f := range node.Request {
		locs["request."+f.Name] = f.Loc
	}
	for _, f := range node.Response {
		locs["response."+f.Name] = f.Loc
	}

	errs := make([]errors.CompilerError, 0, len(vs))
	for _, v := range vs {
		code, ok := ruleCodes[v.Rule]
		if !ok {
			code = errors.CodeParse
		}
		category := errors.CategorySchema
		if v.Rule == api.RuleBadMetadata {
			category = errors.CategorySyntax
		}
		loc := node.Metadata.Loc
		if l, ok := locs[v.Side+"."+v.Field]; ok {
			loc = l
		}
		errs = append(errs, errors.CompilerError{
			Code:     code,
			Category: category,
			Severity: errors.SeverityError,
			Message:  v.Message,
			Endpoint: node.Name,
			Field:    v.Field,
			Location: loc,
		})
	}
	return errs
}
