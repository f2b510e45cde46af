package api

import (
	"fmt"
	"net/http"
	"strings"
)

// Rule identifies which wire-protocol rule a Violation breaks.
type Rule int

const (
	// RuleBadMetadata covers missing or malformed metadata declarations.
	RuleBadMetadata Rule = iota
	// RuleNewtypeBodyExclusive: at most one newtype_body field per schema,
	// and it cannot coexist with per-field body members.
	RuleNewtypeBodyExclusive
	// RuleQueryMapExclusive: at most one query_map field per schema, and it
	// cannot coexist with named query fields.
	RuleQueryMapExclusive
	// RuleGetWithBody: GET endpoints cannot carry request body fields.
	RuleGetWithBody
	// RuleDuplicateHeader: header names must be unique within a schema.
	RuleDuplicateHeader
	// RulePathMismatch: path field declaration order must match the
	// {placeholder} order of the path template.
	RulePathMismatch
)

// Violation is one rule breach found during validation. Field carries the
// offending field name where one exists so callers can map the violation
// back to its declaration.
type Violation struct {
	Rule    Rule
	Side    string // "request", "response", or "metadata"
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError aggregates every violation found across an endpoint
// definition so multiple authoring mistakes are reported together.
type ValidationError struct {
	Endpoint   string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("invalid endpoint definition %q: %s",
		e.Endpoint, strings.Join(msgs, "; "))
}

// Validate checks an assembled endpoint definition against the cross-cutting
// wire-protocol rules. It accumulates every violation rather than stopping
// at the first, and returns nil when the definition is sound.
func Validate(def *EndpointDef) []Violation {
	var vs []Violation
	vs = append(vs, validateMetadata(def.Metadata)...)
	vs = append(vs, validateSchema(&def.Request, "request")...)
	vs = append(vs, validateSchema(&def.Response, "response")...)
	vs = append(vs, validateMethodBody(def)...)
	vs = append(vs, validatePathOrder(def)...)

	for _, f := range def.Response.Fields {
		if f.Location == LocPath {
			vs = append(vs, Violation{
				Rule:    RulePathMismatch,
				Side:    "response",
				Field:   f.Name,
				Message: "response fields cannot use the path location",
			})
		}
	}
	return vs
}

func validateMetadata(meta Metadata) []Violation {
	var vs []Violation
	bad := func(msg string) {
		vs = append(vs, Violation{Rule: RuleBadMetadata, Side: "metadata", Message: msg})
	}
	if meta.Name == "" {
		bad("endpoint name is missing")
	}
	if meta.Method == "" {
		bad("HTTP method is missing")
	} else if !IsSupportedMethod(meta.Method) {
		bad(fmt.Sprintf("unsupported HTTP method %q", meta.Method))
	}
	if meta.Path == "" {
		bad("path template is missing")
	} else if !strings.HasPrefix(meta.Path, "/") {
		bad(fmt.Sprintf("path template %q must start with '/'", meta.Path))
	}
	return vs
}

func validateSchema(s *Schema, side string) []Violation {
	var vs []Violation

	var newtypeBodies, queryMaps []Field
	for _, f := range s.Fields {
		switch f.Location {
		case LocNewtypeBody:
			newtypeBodies = append(newtypeBodies, f)
		case LocQueryMap:
			queryMaps = append(queryMaps, f)
		}
	}

	if len(newtypeBodies) > 1 {
		for _, f := range newtypeBodies[1:] {
			vs = append(vs, Violation{
				Rule:    RuleNewtypeBodyExclusive,
				Side:    side,
				Field:   f.Name,
				Message: "at most one newtype_body field is allowed per schema",
			})
		}
	}
	if len(newtypeBodies) > 0 && s.HasBodyFields() {
		for _, f := range s.BodyFields() {
			vs = append(vs, Violation{
				Rule:    RuleNewtypeBodyExclusive,
				Side:    side,
				Field:   f.Name,
				Message: "body fields cannot coexist with a newtype_body field",
			})
		}
	}

	if len(queryMaps) > 1 {
		for _, f := range queryMaps[1:] {
			vs = append(vs, Violation{
				Rule:    RuleQueryMapExclusive,
				Side:    side,
				Field:   f.Name,
				Message: "at most one query_map field is allowed per schema",
			})
		}
	}
	if len(queryMaps) > 0 && len(s.QueryFields()) > 0 {
		for _, f := range s.QueryFields() {
			vs = append(vs, Violation{
				Rule:    RuleQueryMapExclusive,
				Side:    side,
				Field:   f.Name,
				Message: "named query fields cannot coexist with a query_map field",
			})
		}
	}

	seen := map[string]bool{}
	for _, f := range s.HeaderFields() {
		name := http.CanonicalHeaderKey(f.Header)
		if seen[name] {
			vs = append(vs, Violation{
				Rule:    RuleDuplicateHeader,
				Side:    side,
				Field:   f.Name,
				Message: fmt.Sprintf("duplicate header name %q", name),
			})
		}
		seen[name] = true
	}

	return vs
}

// validateMethodBody reports every body-located request field of a GET
// endpoint, not just the first, matching the combined-diagnostic behavior of
// the definition parser.
func validateMethodBody(def *EndpointDef) []Violation {
	if def.Metadata.Method != http.MethodGet {
		return nil
	}
	var vs []Violation
	for _, f := range def.Request.Fields {
		if f.Location == LocBody || f.Location == LocNewtypeBody {
			vs = append(vs, Violation{
				Rule:    RuleGetWithBody,
				Side:    "request",
				Field:   f.Name,
				Message: "GET endpoints can't have body fields",
			})
		}
	}
	return vs
}

func validatePathOrder(def *EndpointDef) []Violation {
	params := def.Metadata.PathParams()
	fields := def.Request.PathFields()

	var vs []Violation
	for i, f := range fields {
		if i >= len(params) {
			vs = append(vs, Violation{
				Rule:    RulePathMismatch,
				Side:    "request",
				Field:   f.Name,
				Message: fmt.Sprintf("path field %q has no matching placeholder in %q", f.Name, def.Metadata.Path),
			})
			continue
		}
		if params[i] != f.Name {
			vs = append(vs, Violation{
				Rule:  RulePathMismatch,
				Side:  "request",
				Field: f.Name,
				Message: fmt.Sprintf("path field %q is declared in position %d but the template places {%s} there",
					f.Name, i+1, params[i]),
			})
		}
	}
	if len(params) > len(fields) {
		for _, p := range params[len(fields):] {
			vs = append(vs, Violation{
				Rule:    RulePathMismatch,
				Side:    "request",
				Message: fmt.Sprintf("placeholder {%s} has no matching path field", p),
			})
		}
	}
	return vs
}
