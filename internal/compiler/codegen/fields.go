package codegen

import (
	"fmt"
	"strings"

	"github.com/strct/ruma/api"
	"github.com/strct/ruma/internal/compiler/ast"
)

// endpointPlan carries everything the emitters need for one endpoint:
// the validated definition, the AST (for declared types), and the
// per-field conversion plans.
type endpointPlan struct {
	def      *api.EndpointDef
	node     *ast.EndpointNode
	typeName string // exported CamelCase prefix, e.g. CreateMessageEvent
	varName  string // unexported prefix for the compiled endpoint var
	request  []*fieldPlan
	response []*fieldPlan

	errorType    string
	needsStrconv bool
	needsJSON    bool
}

func newEndpointPlan(node *ast.EndpointNode, def *api.EndpointDef) (*endpointPlan, error) {
	plan := &endpointPlan{
		def:       def,
		node:      node,
		typeName:  exportedName(node.Name),
		varName:   unexportedName(node.Name),
		errorType: node.ErrorType,
	}

	var err error
	if plan.request, err = planFields(node.Name, node.Request, def.Request.Fields); err != nil {
		return nil, err
	}
	if plan.response, err = planFields(node.Name, node.Response, def.Response.Fields); err != nil {
		return nil, err
	}

	for _, f := range append(append([]*fieldPlan{}, plan.request...), plan.response...) {
		if f.parseKind() != "" {
			plan.needsStrconv = true
		}
		if f.bodyRoundTrip() {
			plan.needsJSON = true
		}
	}
	return plan, nil
}

func (p *endpointPlan) receiver() string {
	return strings.ToLower(p.typeName[:1])
}

// fieldPlan pairs the AST field with its placement in the validated schema.
type fieldPlan struct {
	node   *ast.FieldNode
	name   string
	goName string
	loc    api.Location
	header string
}

// planFields pairs the AST fields with the checker-assembled schema fields.
// The two lists are positionally aligned; the schema carries the resolved
// wire header names.
func planFields(endpoint string, nodes []*ast.FieldNode, fields []api.Field) ([]*fieldPlan, error) {
	if len(nodes) != len(fields) {
		return nil, fmt.Errorf("endpoint %s: definition does not match its schema", endpoint)
	}
	plans := make([]*fieldPlan, 0, len(nodes))
	for i, n := range nodes {
		f := &fieldPlan{
			node:   n,
			name:   n.Name,
			goName: exportedName(n.Name),
			loc:    fields[i].Location,
			header: fields[i].Header,
		}
		if f.wireString() && !wireStringable(n.Type) {
			return nil, fmt.Errorf(
				"endpoint %s: field %s: %s fields must have a string, int, float, bool, or named type, got %s",
				endpoint, n.Name, f.loc, n.Type)
		}
		if f.loc == api.LocQueryMap && !stringToStringHash(n.Type) {
			return nil, fmt.Errorf(
				"endpoint %s: field %s: query_map fields must be hash<string, string>, got %s",
				endpoint, n.Name, n.Type)
		}
		plans = append(plans, f)
	}
	return plans, nil
}

// locationConsts renders api.Location values as Go constant expressions.
var locationConsts = map[api.Location]string{
	api.LocPath:        "api.LocPath",
	api.LocQuery:       "api.LocQuery",
	api.LocQueryMap:    "api.LocQueryMap",
	api.LocHeader:      "api.LocHeader",
	api.LocNewtypeBody: "api.LocNewtypeBody",
}

// wireString reports whether the field travels as a single string on the
// wire (path segment, query parameter, or header value).
func (f *fieldPlan) wireString() bool {
	return f.loc == api.LocPath || f.loc == api.LocQuery || f.loc == api.LocHeader
}

// bodyRoundTrip reports whether decoding re-marshals the raw value through
// JSON to reach the declared Go type.
func (f *fieldPlan) bodyRoundTrip() bool {
	return f.loc == api.LocBody || f.loc == api.LocNewtypeBody
}

// wireStringable limits wire-string fields to types with an unambiguous
// string form. Named types are assumed to be string-kinded identifiers.
func wireStringable(t *ast.TypeNode) bool {
	if t.Kind == ast.TypeOpaque {
		return true
	}
	if t.Kind != ast.TypePrimitive {
		return false
	}
	switch t.Name {
	case "string", "int", "float", "bool":
		return true
	}
	return false
}

func stringToStringHash(t *ast.TypeNode) bool {
	return t.Kind == ast.TypeHash &&
		t.KeyType.Kind == ast.TypePrimitive && t.KeyType.Name == "string" &&
		t.ValueType.Kind == ast.TypePrimitive && t.ValueType.Name == "string"
}

// goType renders the struct field type. Optional fields become pointers so
// an unset field is distinguishable from a zero value.
func (f *fieldPlan) goType() string {
	base := goTypeOf(f.node.Type)
	if f.node.Optional {
		return "*" + base
	}
	return base
}

func goTypeOf(t *ast.TypeNode) string {
	switch t.Kind {
	case ast.TypeArray:
		return "[]" + goTypeOf(t.ElementType)
	case ast.TypeHash:
		return "map[" + goTypeOf(t.KeyType) + "]" + goTypeOf(t.ValueType)
	case ast.TypeOpaque:
		return t.Name
	default:
		switch t.Name {
		case "int":
			return "int64"
		case "float":
			return "float64"
		case "json":
			return "any"
		default:
			return t.Name // string, bool
		}
	}
}

// parseKind classifies wire-string fields whose decode needs strconv.
// Empty means no parse step (not a wire string, or already a string).
func (f *fieldPlan) parseKind() string {
	if !f.wireString() || f.node.Type.Kind != ast.TypePrimitive {
		return ""
	}
	switch f.node.Type.Name {
	case "int", "float", "bool":
		return f.node.Type.Name
	}
	return ""
}

// encodeExpr renders the expression stored into the api.Value for this
// field. recv is the method receiver name; optional fields are already
// guarded by a nil check, so the expression dereferences them.
func (f *fieldPlan) encodeExpr(recv string) string {
	access := recv + "." + f.goName
	if f.node.Optional {
		access = "*" + access
	}
	if !f.wireString() {
		return access
	}
	switch {
	case f.node.Type.Kind == ast.TypeOpaque:
		return "string(" + access + ")"
	case f.node.Type.Name == "int":
		return "strconv.FormatInt(" + access + ", 10)"
	case f.node.Type.Name == "float":
		return "strconv.FormatFloat(" + access + ", 'g', -1, 64)"
	case f.node.Type.Name == "bool":
		return "strconv.FormatBool(" + access + ")"
	default:
		return access
	}
}

// writeExtraction emits the statements converting v[name] back into the
// struct field. errType is the wrapper for parse failures.
func (f *fieldPlan) writeExtraction(g *Generator, errType string) {
	target := "out." + f.goName

	switch {
	case f.loc == api.LocQueryMap:
		g.writeLine("if m, ok := v[%q].(map[string]string); ok {", f.name)
		g.indent++
		g.writeLine("%s = m", target)
		g.indent--
		g.writeLine("}")

	case f.wireString():
		g.writeLine("if s, ok := v[%q].(string); ok {", f.name)
		g.indent++
		f.writeWireStringAssign(g, target, errType)
		g.indent--
		g.writeLine("}")

	default:
		// Body fields round-trip through JSON so every declared type,
		// including named and composite ones, deserializes correctly.
		g.writeLine("if raw, ok := v[%q]; ok {", f.name)
		g.indent++
		g.writeLine("b, err := json.Marshal(raw)")
		g.writeLine("if err != nil {")
		g.indent++
		g.writeLine("return nil, &%s{Err: err}", errType)
		g.indent--
		g.writeLine("}")
		if f.node.Optional {
			g.writeLine("%s = new(%s)", target, goTypeOf(f.node.Type))
			g.writeLine("if err := json.Unmarshal(b, %s); err != nil {", target)
		} else {
			g.writeLine("if err := json.Unmarshal(b, &%s); err != nil {", target)
		}
		g.indent++
		g.writeLine("return nil, &%s{Err: err}", errType)
		g.indent--
		g.writeLine("}")
		g.indent--
		g.writeLine("}")
	}
}

func (f *fieldPlan) writeWireStringAssign(g *Generator, target, errType string) {
	assign := func(expr, typ string) {
		if f.node.Optional {
			g.writeLine("p := %s(%s)", typ, expr)
			g.writeLine("%s = &p", target)
		} else {
			g.writeLine("%s = %s(%s)", target, typ, expr)
		}
	}

	switch f.parseKind() {
	case "int":
		g.writeLine("n, err := strconv.ParseInt(s, 10, 64)")
		f.writeParseErrCheck(g, errType)
		assign("n", "int64")
	case "float":
		g.writeLine("n, err := strconv.ParseFloat(s, 64)")
		f.writeParseErrCheck(g, errType)
		assign("n", "float64")
	case "bool":
		g.writeLine("b, err := strconv.ParseBool(s)")
		f.writeParseErrCheck(g, errType)
		assign("b", "bool")
	default:
		if f.node.Type.Kind == ast.TypeOpaque {
			assign("s", f.node.Type.Name)
		} else if f.node.Optional {
			g.writeLine("%s = &s", target)
		} else {
			g.writeLine("%s = s", target)
		}
	}
}

func (f *fieldPlan) writeParseErrCheck(g *Generator, errType string) {
	g.writeLine("if err != nil {")
	g.indent++
	g.writeLine("return nil, &%s{Err: err}", errType)
	g.indent--
	g.writeLine("}")
}

// literal renders the api.Field composite literal body.
func (f *fieldPlan) literal() string {
	parts := []string{
		fmt.Sprintf("Name: %q", f.name),
		fmt.Sprintf("Type: %q", f.node.Type.String()),
	}
	if c, ok := locationConsts[f.loc]; ok {
		parts = append(parts, fmt.Sprintf("Location: %s", c))
	}
	if f.header != "" {
		parts = append(parts, fmt.Sprintf("Header: %q", f.header))
	}
	if f.node.Optional {
		parts = append(parts, "Optional: true")
	}
	return strings.Join(parts, ", ")
}
