// Package api provides the runtime half of the ruma endpoint compiler.
// It models endpoint metadata and schemas, validates them against the
// wire-protocol rules, and compiles them into the four codec routines
// that move values between structured form and HTTP messages.
package api

import (
	"fmt"
	"net/http"
	"strings"
)

// AuthScheme describes the credential material an endpoint requires.
type AuthScheme int

const (
	// AuthNone marks an endpoint callable without credentials.
	AuthNone AuthScheme = iota
	// AuthAccessToken marks an endpoint requiring a bearer access token.
	AuthAccessToken
	// AuthServerSignature marks an endpoint authenticated by server-to-server
	// request signing. Signature construction is the transport's concern; the
	// codecs only record the requirement.
	AuthServerSignature
)

var authSchemeNames = map[AuthScheme]string{
	AuthNone:            "None",
	AuthAccessToken:     "AccessToken",
	AuthServerSignature: "ServerSignature",
}

// String returns the scheme name as it appears in endpoint definitions.
func (a AuthScheme) String() string {
	if name, ok := authSchemeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AuthScheme(%d)", int(a))
}

// ParseAuthScheme maps a definition-language scheme name to its AuthScheme.
func ParseAuthScheme(name string) (AuthScheme, bool) {
	for scheme, n := range authSchemeNames {
		if n == name {
			return scheme, true
		}
	}
	return AuthNone, false
}

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// IsSupportedMethod reports whether method is one of the HTTP methods
// endpoints may declare.
func IsSupportedMethod(method string) bool {
	return supportedMethods[method]
}

// Metadata is the endpoint-level declaration record. It is embedded in
// generated code and queryable at runtime so routing and dispatch logic can
// match requests and apply client-side policy (throttling, credential
// attachment). Immutable once parsed.
type Metadata struct {
	// Description is the human-readable endpoint description.
	Description string
	// Method is the HTTP method (net/http method constant form, e.g. "GET").
	Method string
	// Name is the endpoint name.
	Name string
	// Path is the path template with ordered {param} placeholders.
	Path string
	// RateLimited instructs clients to apply request throttling.
	RateLimited bool
	// Authentication is the credential policy for the endpoint.
	Authentication AuthScheme
}

// PathParams returns the placeholder names of the path template, in order.
func (m Metadata) PathParams() []string {
	var params []string
	for _, seg := range strings.Split(m.Path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params = append(params, seg[1:len(seg)-1])
		}
	}
	return params
}
