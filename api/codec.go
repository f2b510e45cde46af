package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// EncodeRequest turns a request value into a wire-level HTTP request against
// baseURL. At most one trailing '/' is trimmed from baseURL before the path
// template is appended with path fields substituted positionally in
// declaration order. Path segments and query pairs are percent-encoded; the
// decoders undo the escaping, so escaped and raw-unreserved values round-trip
// alike. When the authentication scheme requires a token and accessToken is
// empty, encoding fails with ErrNeedsAuthentication inside IntoHTTPError.
func (e *Endpoint) EncodeRequest(req Value, baseURL, accessToken string) (*http.Request, error) {
	meta := e.def.Metadata

	path, err := e.substitutePath(req)
	if err != nil {
		return nil, &IntoHTTPError{Err: err}
	}
	query, err := e.buildQueryString(req)
	if err != nil {
		return nil, &IntoHTTPError{Err: err}
	}

	body, err := encodeBody(&e.def.Request, req)
	if err != nil {
		return nil, &IntoHTTPError{Err: err}
	}

	uri := strings.TrimSuffix(baseURL, "/") + path + query
	httpReq, err := http.NewRequest(meta.Method, uri, bytes.NewReader(body))
	if err != nil {
		return nil, &IntoHTTPError{Err: err}
	}

	for _, f := range e.def.Request.HeaderFields() {
		v, ok := req[f.Name]
		if !ok {
			continue
		}
		s := fieldString(v)
		if !validHeaderValue(s) {
			return nil, &IntoHTTPError{Err: fmt.Errorf("invalid value for header %q", f.Header)}
		}
		httpReq.Header.Set(f.Header, s)
	}

	if meta.Authentication == AuthAccessToken {
		if accessToken == "" {
			return nil, &IntoHTTPError{Err: ErrNeedsAuthentication}
		}
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return httpReq, nil
}

// DecodeRequest reconstructs a request value from a wire-level HTTP request:
// path segments split on '/', the parsed query string, declared headers, and
// the JSON body with an empty body read as {} so requests whose body fields
// are all optional still decode.
func (e *Endpoint) DecodeRequest(r *http.Request) (Value, error) {
	out := Value{}

	if err := e.extractPath(r.URL.EscapedPath(), out); err != nil {
		return nil, &FromHTTPRequestError{Err: err}
	}

	if err := e.extractQuery(r.URL.RawQuery, out); err != nil {
		return nil, &FromHTTPRequestError{Err: err}
	}

	for _, f := range e.def.Request.HeaderFields() {
		if v := r.Header.Get(f.Header); v != "" {
			out[f.Name] = v
		}
	}

	body, err := readBody(r.Body)
	if err != nil {
		return nil, &FromHTTPRequestError{Err: err}
	}
	if err := decodeBody(&e.def.Request, body, out); err != nil {
		return nil, &FromHTTPRequestError{Err: err}
	}

	return out, nil
}

// EncodeResponse turns a response value into a wire-level HTTP response with
// status 200, a JSON content type, declared headers, and the same body
// conventions as EncodeRequest.
func (e *Endpoint) EncodeResponse(res Value) (*http.Response, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	for _, f := range e.def.Response.HeaderFields() {
		v, ok := res[f.Name]
		if !ok {
			continue
		}
		s := fieldString(v)
		if !validHeaderValue(s) {
			return nil, &IntoHTTPError{Err: fmt.Errorf("invalid value for header %q", f.Header)}
		}
		header.Set(f.Header, s)
	}

	body, err := encodeBody(&e.def.Response, res)
	if err != nil {
		return nil, &IntoHTTPError{Err: err}
	}

	return &http.Response{
		Status:        http.StatusText(http.StatusOK),
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}, nil
}

// DecodeResponse reconstructs a response value from a wire-level HTTP
// response. Status codes below 400 decode headers and body like
// DecodeRequest. For status codes of 400 and above the resolved error
// decoder runs instead: a recognized payload surfaces as a known
// *ServerError, anything else as an unknown one preserving the status code
// and raw body. Both travel inside FromHTTPResponseError.
func (e *Endpoint) DecodeResponse(r *http.Response) (Value, error) {
	body, err := readBody(r.Body)
	if err != nil {
		return nil, &FromHTTPResponseError{Err: err}
	}

	if r.StatusCode >= 400 {
		known, decErr := e.errDecoder(r.StatusCode, r.Header, body)
		if decErr != nil {
			return nil, &FromHTTPResponseError{Err: &ServerError{
				Unknown: &UnknownError{StatusCode: r.StatusCode, Body: body},
			}}
		}
		return nil, &FromHTTPResponseError{Err: &ServerError{Known: known}}
	}

	out := Value{}
	for _, f := range e.def.Response.HeaderFields() {
		if v := r.Header.Get(f.Header); v != "" {
			out[f.Name] = v
		}
	}
	if err := decodeBody(&e.def.Response, body, out); err != nil {
		return nil, &FromHTTPResponseError{Err: err}
	}
	return out, nil
}

// substitutePath renders the path template with percent-encoded path field
// values. Validation has already pinned field order to placeholder order, so
// lookup by name is positional substitution.
func (e *Endpoint) substitutePath(req Value) (string, error) {
	segs := strings.Split(e.def.Metadata.Path, "/")
	for i, seg := range segs {
		if !isPlaceholder(seg) {
			continue
		}
		name := seg[1 : len(seg)-1]
		v, ok := req[name]
		if !ok {
			return "", fmt.Errorf("missing path field %q", name)
		}
		segs[i] = url.PathEscape(fieldString(v))
	}
	return strings.Join(segs, "/"), nil
}

func (e *Endpoint) extractPath(escapedPath string, out Value) error {
	if !e.def.Request.HasPathFields() {
		return nil
	}
	segs := strings.Split(escapedPath, "/")
	tmpl := strings.Split(e.def.Metadata.Path, "/")
	if len(segs) != len(tmpl) {
		return fmt.Errorf("path %q does not match template %q", escapedPath, e.def.Metadata.Path)
	}
	for i, want := range tmpl {
		if isPlaceholder(want) {
			decoded, err := url.PathUnescape(segs[i])
			if err != nil {
				return fmt.Errorf("malformed path segment %q: %w", segs[i], err)
			}
			out[want[1:len(want)-1]] = decoded
			continue
		}
		if segs[i] != want {
			return fmt.Errorf("path segment %q does not match template segment %q", segs[i], want)
		}
	}
	return nil
}

// buildQueryString emits named query fields as key=value pairs in
// declaration order, or flattens a query_map field to its own encoded pairs
// in sorted key order.
func (e *Endpoint) buildQueryString(req Value) (string, error) {
	var pairs []string

	if qm := e.def.Request.QueryMapField(); qm != nil {
		v, ok := req[qm.Name]
		if ok {
			m, isMap := v.(map[string]string)
			if !isMap {
				return "", fmt.Errorf("query map field %q must be a map[string]string, got %T", qm.Name, v)
			}
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(m[k]))
			}
		}
	} else {
		for _, f := range e.def.Request.QueryFields() {
			v, ok := req[f.Name]
			if !ok {
				continue
			}
			pairs = append(pairs, url.QueryEscape(f.Name)+"="+url.QueryEscape(fieldString(v)))
		}
	}

	if len(pairs) == 0 {
		return "", nil
	}
	return "?" + strings.Join(pairs, "&"), nil
}

func (e *Endpoint) extractQuery(rawQuery string, out Value) error {
	s := &e.def.Request
	if !s.HasQueryMapField() && len(s.QueryFields()) == 0 {
		return nil
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("malformed query string: %w", err)
	}
	if qm := s.QueryMapField(); qm != nil {
		m := make(map[string]string, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				m[k] = vs[0]
			}
		}
		out[qm.Name] = m
		return nil
	}
	for _, f := range s.QueryFields() {
		if vs, ok := values[f.Name]; ok && len(vs) > 0 {
			out[f.Name] = vs[0]
		}
	}
	return nil
}

// encodeBody serializes the body portion of a value. A newtype_body field is
// the whole payload; body fields assemble into a JSON object with unset
// fields omitted. An empty object collapses to an empty body, which is the
// encode-side half of the empty-body-means-{} convention.
func encodeBody(s *Schema, v Value) ([]byte, error) {
	if nb := s.NewtypeBodyField(); nb != nil {
		payload, ok := v[nb.Name]
		if !ok {
			if nb.Optional {
				return nil, nil
			}
			return nil, fmt.Errorf("missing newtype body field %q", nb.Name)
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("serializing body field %q: %w", nb.Name, err)
		}
		return b, nil
	}

	if !s.HasBodyFields() {
		return nil, nil
	}
	obj := make(map[string]any)
	for _, f := range s.BodyFields() {
		payload, ok := v[f.Name]
		if !ok {
			if f.Optional {
				continue
			}
			return nil, fmt.Errorf("missing body field %q", f.Name)
		}
		obj[f.Name] = payload
	}
	if len(obj) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("serializing body: %w", err)
	}
	return b, nil
}

// decodeBody is the inverse of encodeBody. A completely empty body is read
// as an empty JSON object so values whose body fields are all optional still
// decode.
func decodeBody(s *Schema, body []byte, out Value) error {
	if !s.HasBody() {
		return nil
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	if nb := s.NewtypeBodyField(); nb != nil {
		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("deserializing body field %q: %w", nb.Name, err)
		}
		out[nb.Name] = payload
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return fmt.Errorf("deserializing body: %w", err)
	}
	for _, f := range s.BodyFields() {
		if payload, ok := obj[f.Name]; ok {
			out[f.Name] = payload
		}
	}
	return nil
}

func readBody(rc io.ReadCloser) ([]byte, error) {
	if rc == nil {
		return nil, nil
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return b, nil
}

func isPlaceholder(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

// fieldString renders a path, query, or header field value. Declared types
// are opaque; anything that is not already a string must print itself.
func fieldString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// validHeaderValue rejects values that cannot appear in an HTTP header
// field: control characters other than horizontal tab.
func validHeaderValue(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}
