// Package codegen generates idiomatic Go code from validated endpoint
// definitions. For each endpoint it emits typed Request/Response structs,
// the queryable Metadata record, and the four codec wrappers delegating to
// the api runtime.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"

	"github.com/strct/ruma/api"
	"github.com/strct/ruma/internal/compiler/ast"
)

// Generator transforms validated endpoint definitions into Go code
type Generator struct {
	buf    *bytes.Buffer
	indent int
}

// NewGenerator creates a new code generator
func NewGenerator() *Generator {
	return &Generator{buf: &bytes.Buffer{}}
}

// GenerateEndpoint generates the Go source file for one validated endpoint.
// Generation is all-or-nothing: any error discards the whole artifact.
func (g *Generator) GenerateEndpoint(pkg string, node *ast.EndpointNode, def *api.EndpointDef) (string, error) {
	g.buf.Reset()
	g.indent = 0

	plan, err := newEndpointPlan(node, def)
	if err != nil {
		return "", err
	}

	g.writeHeader(pkg, plan)
	g.writeMetadata(plan)
	g.writeCompiledEndpoint(plan)
	g.writeRequestType(plan)
	g.writeRequestEncoder(plan)
	g.writeRequestDecoder(plan)
	g.writeResponseType(plan)
	g.writeResponseEncoder(plan)
	g.writeResponseDecoder(plan)
	g.writeNonAuthMarkers(plan)

	src, err := format.Source(g.buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("endpoint %s: formatting generated code: %w", node.Name, err)
	}
	return string(src), nil
}

// FileName returns the output file name for an endpoint.
func FileName(node *ast.EndpointNode) string {
	return node.Name + ".go"
}

func (g *Generator) writeHeader(pkg string, plan *endpointPlan) {
	g.writeLine("// Code generated by rumagen. DO NOT EDIT.")
	g.writeLine("//")
	g.writeLine("// Endpoint: %s (%s %s)", plan.def.Metadata.Name, plan.def.Metadata.Method, plan.def.Metadata.Path)
	g.writeLine("")
	g.writeLine("package %s", pkg)
	g.writeLine("")
	g.writeLine("import (")
	g.indent++
	g.writeLine(`"net/http"`)
	if plan.needsStrconv {
		g.writeLine(`"strconv"`)
	}
	g.writeLine("")
	if plan.needsJSON {
		g.writeLine(`json "github.com/goccy/go-json"`)
		g.writeLine("")
	}
	g.writeLine(`"github.com/strct/ruma/api"`)
	g.indent--
	g.writeLine(")")
	g.writeLine("")
}

func (g *Generator) writeMetadata(plan *endpointPlan) {
	meta := plan.def.Metadata
	g.writeLine("// %sMetadata is the metadata for the %s API endpoint.", plan.typeName, meta.Name)
	g.writeLine("var %sMetadata = api.Metadata{", plan.typeName)
	g.indent++
	g.writeLine("Description:    %q,", meta.Description)
	g.writeLine("Method:         %s,", httpMethodConst(meta.Method))
	g.writeLine("Name:           %q,", meta.Name)
	g.writeLine("Path:           %q,", meta.Path)
	g.writeLine("RateLimited:    %t,", meta.RateLimited)
	g.writeLine("Authentication: %s,", authSchemeConst(meta.Authentication))
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

func (g *Generator) writeCompiledEndpoint(plan *endpointPlan) {
	g.writeLine("var %sEndpoint = func() *api.Endpoint {", plan.varName)
	g.indent++
	g.writeLine("def := api.NewEndpointDef(%sMetadata,", plan.typeName)
	g.indent++
	g.writeFieldSlice(plan.request)
	g.writeFieldSlice(plan.response)
	g.indent--
	g.writeLine(")")
	if plan.errorType != "" {
		g.writeLine("def.ErrorType = %q", plan.errorType)
		// The declared error type supplies its decoder by convention.
		g.writeLine("def.ErrorDecoder = %sDecoder", plan.errorType)
	}
	g.writeLine("return api.MustCompile(def)")
	g.indent--
	g.writeLine("}()")
	g.writeLine("")
}

func (g *Generator) writeFieldSlice(fields []*fieldPlan) {
	if len(fields) == 0 {
		g.writeLine("nil,")
		return
	}
	g.writeLine("[]api.Field{")
	g.indent++
	for _, f := range fields {
		g.writeLine("{%s},", f.literal())
	}
	g.indent--
	g.writeLine("},")
}

func (g *Generator) writeRequestType(plan *endpointPlan) {
	g.writeLine("// %sRequest is the data for a request to the %s API endpoint.",
		plan.typeName, plan.def.Metadata.Name)
	if plan.def.Metadata.Description != "" {
		g.writeLine("//")
		g.writeLine("// %s", plan.def.Metadata.Description)
	}
	g.writeStruct(plan.typeName+"Request", plan.request)
}

func (g *Generator) writeResponseType(plan *endpointPlan) {
	g.writeLine("// %sResponse is the data in the response from the %s API endpoint.",
		plan.typeName, plan.def.Metadata.Name)
	g.writeStruct(plan.typeName+"Response", plan.response)
}

func (g *Generator) writeStruct(name string, fields []*fieldPlan) {
	g.writeLine("type %s struct {", name)
	g.indent++
	for _, f := range fields {
		g.writeLine("%s %s", f.goName, f.goType())
	}
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

func (g *Generator) writeRequestEncoder(plan *endpointPlan) {
	recv := plan.receiver()
	g.writeLine("// HTTPRequest builds the outgoing HTTP request against baseURL. The")
	g.writeLine("// access token may be empty for endpoints that do not require one.")
	g.writeLine("func (%s *%sRequest) HTTPRequest(baseURL, accessToken string) (*http.Request, error) {", recv, plan.typeName)
	g.indent++
	g.writeValueAssembly(recv, plan.request)
	g.writeLine("return %sEndpoint.EncodeRequest(v, baseURL, accessToken)", plan.varName)
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

func (g *Generator) writeResponseEncoder(plan *endpointPlan) {
	recv := plan.receiver()
	g.writeLine("// HTTPResponse builds the outgoing HTTP response.")
	g.writeLine("func (%s *%sResponse) HTTPResponse() (*http.Response, error) {", recv, plan.typeName)
	g.indent++
	g.writeValueAssembly(recv, plan.response)
	g.writeLine("return %sEndpoint.EncodeResponse(v)", plan.varName)
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

// writeValueAssembly emits the struct -> api.Value conversion.
func (g *Generator) writeValueAssembly(recv string, fields []*fieldPlan) {
	g.writeLine("v := api.Value{}")
	for _, f := range fields {
		expr := f.encodeExpr(recv)
		if f.node.Optional {
			g.writeLine("if %s != nil {", recv+"."+f.goName)
			g.indent++
			g.writeLine("v[%q] = %s", f.name, expr)
			g.indent--
			g.writeLine("}")
		} else {
			g.writeLine("v[%q] = %s", f.name, expr)
		}
	}
}

func (g *Generator) writeRequestDecoder(plan *endpointPlan) {
	g.writeLine("// %sRequestFromHTTP decodes an incoming HTTP request.", plan.typeName)
	g.writeLine("func %sRequestFromHTTP(req *http.Request) (*%sRequest, error) {", plan.typeName, plan.typeName)
	g.indent++
	// A field-less schema has nothing to extract, so the decoded value is
	// discarded to keep the emitted file compiling.
	if len(plan.request) == 0 {
		g.writeLine("_, err := %sEndpoint.DecodeRequest(req)", plan.varName)
	} else {
		g.writeLine("v, err := %sEndpoint.DecodeRequest(req)", plan.varName)
	}
	g.writeLine("if err != nil {")
	g.indent++
	g.writeLine("return nil, err")
	g.indent--
	g.writeLine("}")
	g.writeLine("out := &%sRequest{}", plan.typeName)
	g.writeFieldExtraction(plan.request, "api.FromHTTPRequestError")
	g.writeLine("return out, nil")
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

func (g *Generator) writeResponseDecoder(plan *endpointPlan) {
	g.writeLine("// %sResponseFromHTTP decodes an incoming HTTP response.", plan.typeName)
	g.writeLine("func %sResponseFromHTTP(res *http.Response) (*%sResponse, error) {", plan.typeName, plan.typeName)
	g.indent++
	if len(plan.response) == 0 {
		g.writeLine("_, err := %sEndpoint.DecodeResponse(res)", plan.varName)
	} else {
		g.writeLine("v, err := %sEndpoint.DecodeResponse(res)", plan.varName)
	}
	g.writeLine("if err != nil {")
	g.indent++
	g.writeLine("return nil, err")
	g.indent--
	g.writeLine("}")
	g.writeLine("out := &%sResponse{}", plan.typeName)
	g.writeFieldExtraction(plan.response, "api.FromHTTPResponseError")
	g.writeLine("return out, nil")
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

// writeFieldExtraction emits the api.Value -> struct conversion. String-kind
// fields type-assert and convert; primitive path/query/header fields parse
// their wire string; body fields round-trip through JSON so any declared
// type deserializes correctly.
func (g *Generator) writeFieldExtraction(fields []*fieldPlan, errType string) {
	for _, f := range fields {
		f.writeExtraction(g, errType)
	}
}

func (g *Generator) writeNonAuthMarkers(plan *endpointPlan) {
	if plan.def.Metadata.Authentication != api.AuthNone {
		return
	}
	g.writeLine("// The %s endpoint is usable without credentials.", plan.def.Metadata.Name)
	g.writeLine("func (%sRequest) NonAuthRequest() {}", plan.typeName)
	g.writeLine("")
	g.writeLine("func (%sResponse) NonAuthResponse() {}", plan.typeName)
	g.writeLine("")
}

// writeLine writes an indented line to the output buffer
func (g *Generator) writeLine(format string, args ...interface{}) {
	for i := 0; i < g.indent; i++ {
		g.buf.WriteByte('\t')
	}
	fmt.Fprintf(g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func httpMethodConst(method string) string {
	consts := map[string]string{
		"GET":     "http.MethodGet",
		"POST":    "http.MethodPost",
		"PUT":     "http.MethodPut",
		"DELETE":  "http.MethodDelete",
		"PATCH":   "http.MethodPatch",
		"HEAD":    "http.MethodHead",
		"OPTIONS": "http.MethodOptions",
	}
	if c, ok := consts[method]; ok {
		return c
	}
	return fmt.Sprintf("%q", method)
}

func authSchemeConst(scheme api.AuthScheme) string {
	switch scheme {
	case api.AuthAccessToken:
		return "api.AuthAccessToken"
	case api.AuthServerSignature:
		return "api.AuthServerSignature"
	default:
		return "api.AuthNone"
	}
}
