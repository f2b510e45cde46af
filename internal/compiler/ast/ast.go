// Package ast defines the Abstract Syntax Tree (AST) node types for endpoint
// definition files. It provides structures for representing endpoint
// metadata, request and response schemas, fields, and types.
package ast

import "github.com/strct/ruma/internal/compiler/lexer"

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Line   int `json:"line"`   // Line number (1-indexed)
	Column int `json:"column"` // Column number (1-indexed)
}

// TokenLocation builds a SourceLocation from a token
func TokenLocation(t lexer.Token) SourceLocation {
	return SourceLocation{Line: t.Line, Column: t.Column}
}

// Node is the interface for AST nodes that report their source location
type Node interface {
	Location() SourceLocation
	node()
}

// Program is the root node of the AST
type Program struct {
	Endpoints []*EndpointNode
}

func (p *Program) node() {}

// Location returns the source location of the program node in the AST.
func (p *Program) Location() SourceLocation {
	if len(p.Endpoints) > 0 {
		return p.Endpoints[0].Loc
	}
	return SourceLocation{Line: 1, Column: 1}
}

// EndpointNode represents one endpoint definition
type EndpointNode struct {
	Name     string
	Metadata *MetadataNode
	Request  []*FieldNode
	Response []*FieldNode
	// ErrorType is the declared error payload type, empty when the
	// definition has no error clause.
	ErrorType string
	ErrorLoc  SourceLocation
	Loc       SourceLocation
}

func (e *EndpointNode) node() {}

// Location returns the source location of the endpoint node in the AST.
func (e *EndpointNode) Location() SourceLocation {
	return e.Loc
}

// MetadataNode represents the metadata block of an endpoint definition
type MetadataNode struct {
	Description    string
	Method         string
	Name           string
	Path           string
	RateLimited    bool
	Authentication string
	// Declared tracks which keys appeared in the block, so the checker can
	// tell a missing declaration from an explicit zero value.
	Declared map[string]bool
	Loc      SourceLocation
}

func (m *MetadataNode) node() {}

// Location returns the source location of the metadata node in the AST.
func (m *MetadataNode) Location() SourceLocation {
	return m.Loc
}

// FieldLocation identifies the wire placement marker of a field declaration
type FieldLocation int

const (
	// LocationBody is the default placement for unmarked fields.
	LocationBody FieldLocation = iota
	// LocationPath marks a @path field.
	LocationPath
	// LocationQuery marks a @query field.
	LocationQuery
	// LocationQueryMap marks a @query_map field.
	LocationQueryMap
	// LocationHeader marks a @header field.
	LocationHeader
	// LocationNewtypeBody marks a @newtype_body field.
	LocationNewtypeBody
)

// FieldNode represents a field declaration in a request or response block
type FieldNode struct {
	Name     string
	Type     *TypeNode
	Optional bool // true for ?
	Location FieldLocation
	// HeaderName is the explicit wire name of a @header("...") marker.
	// Empty when the marker carried no argument.
	HeaderName string
	Loc        SourceLocation
}

// FieldNode carries its wire placement in the Location field, so unlike the
// other nodes it exposes its source position only through Loc and does not
// satisfy Node.
func (f *FieldNode) node() {}

// TypeKind represents the kind of type
type TypeKind int

const (
	// TypePrimitive represents primitive types (string, int, bool, float, json)
	TypePrimitive TypeKind = iota
	// TypeArray represents array types (array<T>)
	TypeArray
	// TypeHash represents hash/map types (hash<K,V>)
	TypeHash
	// TypeOpaque represents externally defined value types (RoomId, ...)
	TypeOpaque
)

// TypeNode represents a type reference. The compiler treats declared types
// as opaque beyond this structure; they only surface in generated code.
type TypeNode struct {
	Kind        TypeKind
	Name        string    // Name of the type (e.g., "string", "RoomId")
	ElementType *TypeNode // For array<T>
	KeyType     *TypeNode // For hash<K,V>
	ValueType   *TypeNode // For hash<K,V>
	Loc         SourceLocation
}

func (t *TypeNode) node() {}

// Location returns the source location of the type node in the AST.
func (t *TypeNode) Location() SourceLocation {
	return t.Loc
}

// String renders the type reference as written in the definition language.
func (t *TypeNode) String() string {
	switch t.Kind {
	case TypeArray:
		return "array<" + t.ElementType.String() + ">"
	case TypeHash:
		return "hash<" + t.KeyType.String() + ", " + t.ValueType.String() + ">"
	default:
		return t.Name
	}
}
