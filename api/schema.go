package api

import "fmt"

// Location is the wire placement of a field. Exactly one location applies to
// each field; the mutually-exclusive placements (NewtypeBody vs Body,
// QueryMap vs Query) are enforced by Validate, not by construction.
type Location int

const (
	// LocBody places the field as one member of the JSON body object.
	// Unmarked fields in the definition language default here.
	LocBody Location = iota
	// LocPath substitutes the field into a {param} placeholder of the path
	// template, positionally in declaration order.
	LocPath
	// LocQuery encodes the field as a named key=value query pair.
	LocQuery
	// LocQueryMap captures the full query string as key/value pairs for
	// variable key sets.
	LocQueryMap
	// LocHeader carries the field in a named HTTP header.
	LocHeader
	// LocNewtypeBody serializes the field directly as the whole JSON payload.
	LocNewtypeBody
)

var locationNames = map[Location]string{
	LocBody:        "body",
	LocPath:        "path",
	LocQuery:       "query",
	LocQueryMap:    "query_map",
	LocHeader:      "header",
	LocNewtypeBody: "newtype_body",
}

// String returns the location marker as written in endpoint definitions.
func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Location(%d)", int(l))
}

// Field is one declared field of a request or response schema.
type Field struct {
	// Name is the field name as declared.
	Name string
	// Type is the declared type reference. The codecs treat it as opaque;
	// it only surfaces in generated code and diagnostics.
	Type string
	// Location is the wire placement of the field.
	Location Location
	// Header is the wire header name for LocHeader fields. Empty for all
	// other locations.
	Header string
	// Optional marks the field as omittable. Optional body fields are
	// dropped from the JSON object when unset, which is what lets an
	// all-optional body encode to an empty payload.
	Optional bool
}

// Schema is the ordered field list of one side (request or response) of an
// endpoint, with the per-location groupings derived once at assembly time.
type Schema struct {
	Fields []Field

	pathFields   []Field
	queryFields  []Field
	headerFields []Field
	bodyFields   []Field
	queryMap     *Field
	newtypeBody  *Field
}

// newSchema computes the derived groupings for an ordered field list.
// Duplicated singular fields (query_map, newtype_body) keep the first
// occurrence; Validate reports the duplication.
func newSchema(fields []Field) Schema {
	s := Schema{Fields: fields}
	for i := range fields {
		f := fields[i]
		switch f.Location {
		case LocPath:
			s.pathFields = append(s.pathFields, f)
		case LocQuery:
			s.queryFields = append(s.queryFields, f)
		case LocHeader:
			s.headerFields = append(s.headerFields, f)
		case LocBody:
			s.bodyFields = append(s.bodyFields, f)
		case LocQueryMap:
			if s.queryMap == nil {
				s.queryMap = &fields[i]
			}
		case LocNewtypeBody:
			if s.newtypeBody == nil {
				s.newtypeBody = &fields[i]
			}
		}
	}
	return s
}

// PathFields returns the path-located fields in declaration order.
func (s *Schema) PathFields() []Field { return s.pathFields }

// QueryFields returns the named query fields in declaration order.
func (s *Schema) QueryFields() []Field { return s.queryFields }

// HeaderFields returns the header-located fields in declaration order.
func (s *Schema) HeaderFields() []Field { return s.headerFields }

// BodyFields returns the per-field body members in declaration order.
func (s *Schema) BodyFields() []Field { return s.bodyFields }

// QueryMapField returns the query_map field, or nil.
func (s *Schema) QueryMapField() *Field { return s.queryMap }

// NewtypeBodyField returns the newtype_body field, or nil.
func (s *Schema) NewtypeBodyField() *Field { return s.newtypeBody }

// HasBodyFields reports whether the schema has per-field body members.
func (s *Schema) HasBodyFields() bool { return len(s.bodyFields) > 0 }

// HasBody reports whether the schema carries any JSON payload at all.
func (s *Schema) HasBody() bool { return len(s.bodyFields) > 0 || s.newtypeBody != nil }

// HasHeaderFields reports whether the schema declares headers.
func (s *Schema) HasHeaderFields() bool { return len(s.headerFields) > 0 }

// HasPathFields reports whether the schema declares path fields.
func (s *Schema) HasPathFields() bool { return len(s.pathFields) > 0 }

// HasQueryMapField reports whether the schema has a query_map field.
func (s *Schema) HasQueryMapField() bool { return s.queryMap != nil }

// EndpointDef is the assembled, immutable intermediate representation of one
// endpoint definition: metadata plus both schemas plus the resolved error
// type name. It exists only for the duration of a generation pass (or one
// Compile call); nothing mutates it after assembly.
type EndpointDef struct {
	Metadata Metadata
	Request  Schema
	Response Schema
	// ErrorType is the declared type decoding non-success response bodies.
	// Empty means the canonical no-error-payload marker (Void).
	ErrorType string
	// ErrorDecoder decodes non-success response bodies at runtime. Nil
	// selects VoidDecoder, which recognizes nothing and routes every
	// non-success response to the unknown-error branch.
	ErrorDecoder ErrorDecoder
}

// NewEndpointDef assembles metadata and ordered request/response field lists
// into an EndpointDef, computing the schema groupings once.
func NewEndpointDef(meta Metadata, request, response []Field) EndpointDef {
	return EndpointDef{
		Metadata: meta,
		Request:  newSchema(request),
		Response: newSchema(response),
	}
}
