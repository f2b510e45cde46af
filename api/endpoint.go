package api

// Value carries a request or response across the codecs: field name to
// payload. Path, query, and header fields decode as string (a query_map
// field as map[string]string); body fields hold any JSON-marshalable value.
// Fields absent from the map are unset.
type Value map[string]any

// Endpoint is a compiled endpoint definition. Its four methods are the
// bidirectional codec routines; the struct itself is immutable after Compile
// and safe for concurrent use. No state persists across calls.
type Endpoint struct {
	def        EndpointDef
	errDecoder ErrorDecoder
}

// Compile validates an endpoint definition and builds its codecs. Every
// violation found is reported in one *ValidationError; no artifact is
// produced for an invalid definition.
func Compile(def EndpointDef) (*Endpoint, error) {
	if vs := Validate(&def); len(vs) > 0 {
		return nil, &ValidationError{Endpoint: def.Metadata.Name, Violations: vs}
	}
	dec := def.ErrorDecoder
	if dec == nil {
		dec = VoidDecoder
	}
	return &Endpoint{def: def, errDecoder: dec}, nil
}

// MustCompile is Compile for definitions known to be valid, such as those
// embedded in generated code. It panics on a validation error.
func MustCompile(def EndpointDef) *Endpoint {
	e, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return e
}

// Metadata returns the endpoint's declaration record.
func (e *Endpoint) Metadata() Metadata { return e.def.Metadata }

// RequestSchema returns the compiled request schema.
func (e *Endpoint) RequestSchema() *Schema { return &e.def.Request }

// ResponseSchema returns the compiled response schema.
func (e *Endpoint) ResponseSchema() *Schema { return &e.def.Response }

// RequiresAuthentication reports whether the endpoint needs credential
// material. Generic dispatch code uses the false case to special-case
// endpoints usable without credentials.
func (e *Endpoint) RequiresAuthentication() bool {
	return e.def.Metadata.Authentication != AuthNone
}

// NonAuthRequest marks generated request types of endpoints whose
// authentication scheme is None, so generic client code can accept only
// credential-free requests at compile time.
type NonAuthRequest interface {
	NonAuthRequest()
}

// NonAuthResponse is the response-side counterpart of NonAuthRequest.
type NonAuthResponse interface {
	NonAuthResponse()
}
