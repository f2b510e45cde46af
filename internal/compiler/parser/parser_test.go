package parser

import (
	"strings"
	"testing"

	"github.com/strct/ruma/internal/compiler/ast"
	"github.com/strct/ruma/internal/compiler/lexer"
)

// Helper function to create a parser from source code
func parseSource(t *testing.T, source string) (*ast.Program, []ParseError) {
	t.Helper()

	lex := lexer.New(source)
	tokens, lexErrors := lex.ScanTokens()

	if len(lexErrors) > 0 {
		t.Fatalf("Lexer errors: %v", lexErrors)
	}

	parser := New(tokens)
	return parser.Parse()
}

func hasError(errors []ParseError, substr string) bool {
	for _, e := range errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// TestParseSimpleEndpoint tests parsing a complete endpoint definition
func TestParseSimpleEndpoint(t *testing.T) {
	source := `endpoint create_message_event {
  metadata {
    description: "Send a message event to a room."
    method: PUT
    name: "create_message_event"
    path: "/_matrix/client/r0/rooms/{room_id}/send/{event_type}/{txn_id}"
    rate_limited: true
    authentication: AccessToken
  }

  request {
    room_id: RoomId @path
    event_type: string @path
    txn_id: string @path
    ts: int? @query
    reason: string? @header("X-Reason")
    body: string
  }

  response {
    event_id: EventId
  }

  error: MatrixError
}`

	program, errors := parseSource(t, source)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	if len(program.Endpoints) != 1 {
		t.Fatalf("Expected 1 endpoint, got %d", len(program.Endpoints))
	}

	endpoint := program.Endpoints[0]
	if endpoint.Name != "create_message_event" {
		t.Errorf("Expected endpoint name 'create_message_event', got '%s'", endpoint.Name)
	}

	meta := endpoint.Metadata
	if meta == nil {
		t.Fatal("Expected metadata block")
	}
	if meta.Method != "PUT" {
		t.Errorf("Expected method PUT, got '%s'", meta.Method)
	}
	if meta.Path != "/_matrix/client/r0/rooms/{room_id}/send/{event_type}/{txn_id}" {
		t.Errorf("Unexpected path: %s", meta.Path)
	}
	if !meta.RateLimited {
		t.Error("Expected rate_limited true")
	}
	if meta.Authentication != "AccessToken" {
		t.Errorf("Expected authentication AccessToken, got '%s'", meta.Authentication)
	}
	if !meta.Declared["description"] || !meta.Declared["rate_limited"] {
		t.Error("Declared map should track every declared key")
	}

	if len(endpoint.Request) != 6 {
		t.Fatalf("Expected 6 request fields, got %d", len(endpoint.Request))
	}
	if len(endpoint.Response) != 1 {
		t.Fatalf("Expected 1 response field, got %d", len(endpoint.Response))
	}

	if endpoint.ErrorType != "MatrixError" {
		t.Errorf("Expected error type MatrixError, got '%s'", endpoint.ErrorType)
	}
}

// TestParseFieldLocations checks location markers map to the right AST values
func TestParseFieldLocations(t *testing.T) {
	source := `endpoint locations {
  metadata {
    method: GET
    name: "locations"
    path: "/x/{a}"
  }
  request {
    a: string @path
    b: string @query
    c: hash<string, string> @query_map
    d: string @header
    e: string @body
    f: json @newtype_body
    g: string
  }
  response {
  }
}`

	program, errors := parseSource(t, source)
	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	fields := program.Endpoints[0].Request
	expected := []ast.FieldLocation{
		ast.LocationPath,
		ast.LocationQuery,
		ast.LocationQueryMap,
		ast.LocationHeader,
		ast.LocationBody,
		ast.LocationNewtypeBody,
		ast.LocationBody,
	}

	if len(fields) != len(expected) {
		t.Fatalf("Expected %d fields, got %d", len(expected), len(fields))
	}
	for i, want := range expected {
		if fields[i].Location != want {
			t.Errorf("Field %s: expected location %v, got %v", fields[i].Name, want, fields[i].Location)
		}
	}

	if fields[3].HeaderName != "" {
		t.Errorf("Bare @header should have empty HeaderName, got %q", fields[3].HeaderName)
	}
}

// TestParseHeaderName checks the @header("...") argument
func TestParseHeaderName(t *testing.T) {
	source := `endpoint hdr {
  metadata {
    method: GET
    name: "hdr"
    path: "/x"
  }
  request {
    reason: string? @header("X-Reason")
  }
  response {
  }
}`

	program, errors := parseSource(t, source)
	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	field := program.Endpoints[0].Request[0]
	if field.HeaderName != "X-Reason" {
		t.Errorf("Expected header name X-Reason, got %q", field.HeaderName)
	}
	if !field.Optional {
		t.Error("Expected optional field")
	}
}

// TestParseCompositeTypes checks array and hash type parsing
func TestParseCompositeTypes(t *testing.T) {
	source := `endpoint types {
  metadata {
    method: GET
    name: "types"
    path: "/x"
  }
  request {
  }
  response {
    tags: array<string>
    nested: array<hash<string, json>>
    counts: hash<string, int>
  }
}`

	program, errors := parseSource(t, source)
	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	fields := program.Endpoints[0].Response

	tags := fields[0].Type
	if tags.Kind != ast.TypeArray || tags.ElementType.Name != "string" {
		t.Errorf("Unexpected type for tags: %s", tags)
	}

	nested := fields[1].Type
	if nested.Kind != ast.TypeArray || nested.ElementType.Kind != ast.TypeHash {
		t.Errorf("Unexpected type for nested: %s", nested)
	}
	if nested.String() != "array<hash<string, json>>" {
		t.Errorf("Unexpected rendering: %s", nested.String())
	}

	counts := fields[2].Type
	if counts.Kind != ast.TypeHash || counts.KeyType.Name != "string" || counts.ValueType.Name != "int" {
		t.Errorf("Unexpected type for counts: %s", counts)
	}
}

// TestParseKeywordFieldNames checks fields may be named after keywords
func TestParseKeywordFieldNames(t *testing.T) {
	source := `endpoint kw {
  metadata {
    method: POST
    name: "kw"
    path: "/x"
  }
  request {
    body: string
    error: string?
    request: int
  }
  response {
  }
}`

	program, errors := parseSource(t, source)
	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	fields := program.Endpoints[0].Request
	names := []string{"body", "error", "request"}
	for i, want := range names {
		if fields[i].Name != want {
			t.Errorf("Field %d: expected name %q, got %q", i, want, fields[i].Name)
		}
	}
}

// TestParseMissingMetadata checks an endpoint without metadata is rejected
func TestParseMissingMetadata(t *testing.T) {
	source := `endpoint no_meta {
  request {
  }
  response {
  }
}`

	program, errors := parseSource(t, source)

	if !hasError(errors, "no metadata block") {
		t.Errorf("Expected missing-metadata error, got: %v", errors)
	}
	if len(program.Endpoints) != 0 {
		t.Errorf("Endpoint without metadata should not be returned, got %d", len(program.Endpoints))
	}
}

// TestParseDuplicateMetadataKey checks duplicate keys are reported
func TestParseDuplicateMetadataKey(t *testing.T) {
	source := `endpoint dup {
  metadata {
    method: GET
    method: PUT
    name: "dup"
    path: "/x"
  }
  request {
  }
  response {
  }
}`

	_, errors := parseSource(t, source)

	if !hasError(errors, `Duplicate metadata key "method"`) {
		t.Errorf("Expected duplicate-key error, got: %v", errors)
	}
}

// TestParseUnknownMetadataKey checks unknown keys are reported
func TestParseUnknownMetadataKey(t *testing.T) {
	source := `endpoint unk {
  metadata {
    method: GET
    name: "unk"
    path: "/x"
    timeout: "30s"
  }
  request {
  }
  response {
  }
}`

	_, errors := parseSource(t, source)

	if !hasError(errors, `Unknown metadata key "timeout"`) {
		t.Errorf("Expected unknown-key error, got: %v", errors)
	}
}

// TestParseUnknownLocationMarker checks unrecognized markers are reported
func TestParseUnknownLocationMarker(t *testing.T) {
	source := `endpoint badmark {
  metadata {
    method: GET
    name: "badmark"
    path: "/x"
  }
  request {
    session: string @cookie
  }
  response {
  }
}`

	program, errors := parseSource(t, source)

	if !hasError(errors, "Unknown location marker @cookie") {
		t.Errorf("Expected unknown-marker error, got: %v", errors)
	}

	// The field itself still parses, defaulting to body placement
	if len(program.Endpoints) != 1 || len(program.Endpoints[0].Request) != 1 {
		t.Fatal("Field with unknown marker should still be present")
	}
	if program.Endpoints[0].Request[0].Location != ast.LocationBody {
		t.Error("Field with unknown marker should default to body")
	}
}

// TestParseDuplicateErrorClause checks repeated error clauses are reported
func TestParseDuplicateErrorClause(t *testing.T) {
	source := `endpoint duperr {
  metadata {
    method: GET
    name: "duperr"
    path: "/x"
  }
  request {
  }
  response {
  }
  error: MatrixError
  error: OtherError
}`

	program, errors := parseSource(t, source)

	if !hasError(errors, "Duplicate error clause") {
		t.Errorf("Expected duplicate-error-clause error, got: %v", errors)
	}
	if program.Endpoints[0].ErrorType != "MatrixError" {
		t.Errorf("First error clause should win, got %q", program.Endpoints[0].ErrorType)
	}
}

// TestParseRecovery checks a malformed endpoint does not poison the next one
func TestParseRecovery(t *testing.T) {
	source := `endpoint broken {
  metadata {
    method: GET
    name: "broken"
    path: "/x"
  }
  request {
    bad field without colon
  }
  response {
  }
}

endpoint fine {
  metadata {
    method: GET
    name: "fine"
    path: "/y"
  }
  request {
  }
  response {
    ok: bool
  }
}`

	program, errors := parseSource(t, source)

	if len(errors) == 0 {
		t.Fatal("Expected parse errors for the malformed field")
	}

	if len(program.Endpoints) != 2 {
		t.Fatalf("Expected both endpoints to parse, got %d", len(program.Endpoints))
	}
	if program.Endpoints[1].Name != "fine" {
		t.Errorf("Second endpoint should be 'fine', got '%s'", program.Endpoints[1].Name)
	}
	if len(program.Endpoints[1].Response) != 1 {
		t.Errorf("Second endpoint should have 1 response field")
	}
}

// TestParseMultipleEndpoints checks several definitions in one file
func TestParseMultipleEndpoints(t *testing.T) {
	source := `endpoint first {
  metadata {
    method: GET
    name: "first"
    path: "/a"
  }
  request {
  }
  response {
  }
}

endpoint second {
  metadata {
    method: POST
    name: "second"
    path: "/b"
  }
  request {
    x: int
  }
  response {
  }
}`

	program, errors := parseSource(t, source)
	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	if len(program.Endpoints) != 2 {
		t.Fatalf("Expected 2 endpoints, got %d", len(program.Endpoints))
	}
	if program.Endpoints[0].Name != "first" || program.Endpoints[1].Name != "second" {
		t.Error("Endpoint names out of order")
	}
}

// TestParseErrorPositions checks diagnostics carry source locations
func TestParseErrorPositions(t *testing.T) {
	source := `endpoint pos {
  metadata {
    method: GET
    name: "pos"
    path: "/x"
    bogus: "value"
  }
  request {
  }
  response {
  }
}`

	_, errors := parseSource(t, source)

	if len(errors) == 0 {
		t.Fatal("Expected an error")
	}
	if errors[0].Location.Line != 6 {
		t.Errorf("Expected error on line 6, got %d", errors[0].Location.Line)
	}
}
