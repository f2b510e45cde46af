package compiler

import (
	"strings"
	"testing"

	"github.com/strct/ruma/internal/compiler/errors"
)

const twoEndpointSource = `# Matrix client-server message endpoints

endpoint create_message_event {
  metadata {
    description: "Send a message event to a room."
    method: PUT
    name: "create_message_event"
    path: "/_matrix/client/r0/rooms/{room_id}/send/{txn_id}"
    rate_limited: true
    authentication: AccessToken
  }
  request {
    room_id: RoomId @path
    txn_id: string @path
    body: string
  }
  response {
    event_id: EventId
  }
  error: MatrixError
}

endpoint get_versions {
  metadata {
    description: "List supported protocol versions."
    method: GET
    name: "get_versions"
    path: "/_matrix/client/versions"
    rate_limited: false
    authentication: None
  }
  request {
  }
  response {
    versions: array<string>
  }
}
`

func TestCompileSource(t *testing.T) {
	result, list := CompileSource("messages.ruma", twoEndpointSource, "client")

	if list.HasErrors() {
		t.Fatalf("Unexpected errors: %v", list)
	}
	if result == nil {
		t.Fatal("Expected a result")
	}

	if len(result.Endpoints) != 2 {
		t.Fatalf("Expected 2 endpoints, got %d", len(result.Endpoints))
	}
	if result.Endpoints[0] != "create_message_event" || result.Endpoints[1] != "get_versions" {
		t.Errorf("Unexpected endpoint order: %v", result.Endpoints)
	}

	code, ok := result.Files["create_message_event.go"]
	if !ok {
		t.Fatalf("Missing generated file, got: %v", keys(result.Files))
	}
	if !strings.Contains(code, "package client") {
		t.Error("Generated code should target the requested package")
	}
	if !strings.Contains(code, "type CreateMessageEventRequest struct {") {
		t.Error("Generated code should declare the request struct")
	}

	if _, ok := result.Files["get_versions.go"]; !ok {
		t.Error("Missing second generated file")
	}
}

func TestCompileSourceLexError(t *testing.T) {
	result, list := CompileSource("bad.ruma", "endpoint $ {}", "client")

	if result != nil {
		t.Error("Lex errors should abort compilation")
	}
	if !hasCode(list, errors.CodeLex) {
		t.Errorf("Expected %s, got: %v", errors.CodeLex, list)
	}
	if list.Errors[0].File != "bad.ruma" {
		t.Errorf("Diagnostics should carry the file name, got %q", list.Errors[0].File)
	}
}

func TestCompileSourceParseError(t *testing.T) {
	result, list := CompileSource("bad.ruma", "endpoint missing_brace", "client")

	if result != nil {
		t.Error("Parse errors should abort compilation")
	}
	if !hasCode(list, errors.CodeParse) {
		t.Errorf("Expected %s, got: %v", errors.CodeParse, list)
	}
}

func TestCompileSourceUnknownMarkerCode(t *testing.T) {
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

	_, list := CompileSource("bad.ruma", source, "client")

	if !hasCode(list, errors.CodeBadMarker) {
		t.Errorf("Expected %s for unknown marker, got: %v", errors.CodeBadMarker, list)
	}
}

func TestCompileSourceSchemaError(t *testing.T) {
	source := `endpoint get_body {
  metadata {
    method: GET
    name: "get_body"
    path: "/x"
  }
  request {
    filter: string
  }
  response {
  }
}`

	result, list := CompileSource("bad.ruma", source, "client")

	if result != nil {
		t.Error("Schema violations should abort compilation")
	}
	if !hasCode(list, errors.CodeGetWithBody) {
		t.Errorf("Expected %s, got: %v", errors.CodeGetWithBody, list)
	}
}

func TestCompileSourceWireTypeError(t *testing.T) {
	source := `endpoint bad_query {
  metadata {
    method: GET
    name: "bad_query"
    path: "/x"
  }
  request {
    filter: array<string> @query
  }
  response {
  }
}`

	result, list := CompileSource("bad.ruma", source, "client")

	if result != nil {
		t.Error("Wire type errors should abort compilation")
	}
	if !hasCode(list, errors.CodeWireType) {
		t.Errorf("Expected %s, got: %v", errors.CodeWireType, list)
	}
}

// One broken endpoint does not suppress diagnostics for the others
func TestCompileSourceAggregatesAcrossEndpoints(t *testing.T) {
	source := `endpoint first_bad {
  metadata {
    method: GET
    name: "first_bad"
    path: "/x"
  }
  request {
    filter: string
  }
  response {
  }
}

endpoint second_bad {
  metadata {
    method: FETCH
    name: "second_bad"
    path: "/y"
  }
  request {
  }
  response {
  }
}`

	_, list := CompileSource("bad.ruma", source, "client")

	if !hasCode(list, errors.CodeGetWithBody) || !hasCode(list, errors.CodeBadMetadata) {
		t.Errorf("Expected diagnostics from both endpoints, got: %v", list)
	}
}

func hasCode(list *errors.ErrorList, code errors.ErrorCode) bool {
	for _, e := range list.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
