package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNeedsAuthentication is returned (wrapped in IntoHTTPError) when an
// endpoint requires a credential and none was supplied to the encoder.
var ErrNeedsAuthentication = errors.New("no access token given, but this endpoint requires one")

// IntoHTTPError is the encode-side failure: a required credential was
// missing, a header value could not be constructed, or the body failed to
// serialize.
type IntoHTTPError struct {
	Err error
}

func (e *IntoHTTPError) Error() string {
	return fmt.Sprintf("converting to HTTP message failed: %v", e.Err)
}

func (e *IntoHTTPError) Unwrap() error { return e.Err }

// FromHTTPRequestError is the decode-side failure for incoming requests: a
// malformed path segment, query string, header, or body.
type FromHTTPRequestError struct {
	Err error
}

func (e *FromHTTPRequestError) Error() string {
	return fmt.Sprintf("converting from HTTP request failed: %v", e.Err)
}

func (e *FromHTTPRequestError) Unwrap() error { return e.Err }

// FromHTTPResponseError is the decode-side failure for incoming responses.
// The wrapped error is either a deserialization failure or a *ServerError
// for responses with a non-success status code; callers separate the two
// with errors.As.
type FromHTTPResponseError struct {
	Err error
}

func (e *FromHTTPResponseError) Error() string {
	return fmt.Sprintf("converting from HTTP response failed: %v", e.Err)
}

func (e *FromHTTPResponseError) Unwrap() error { return e.Err }

// UnknownError preserves a non-success response the endpoint's error type
// could not decode, so nothing is lost for diagnostics.
type UnknownError struct {
	StatusCode int
	Body       []byte
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown server error: HTTP %d: %s", e.StatusCode, e.Body)
}

// ServerError is a non-success (status >= 400) response. Exactly one of
// Known and Unknown is set: Known carries the value decoded by the
// endpoint's error type, Unknown the raw response it failed to decode.
type ServerError struct {
	Known   error
	Unknown *UnknownError
}

func (e *ServerError) Error() string {
	if e.Known != nil {
		return e.Known.Error()
	}
	return e.Unknown.Error()
}

func (e *ServerError) Unwrap() error {
	if e.Known != nil {
		return e.Known
	}
	return e.Unknown
}

// ErrorDecoder decodes the error payload of a non-success response. It
// returns the decoded error value when the payload is recognized, or a
// non-nil second error when it is not, in which case the codec falls back to
// the unknown-error branch.
type ErrorDecoder func(statusCode int, header http.Header, body []byte) (error, error)

// Void is the canonical "no error payload" marker used when an endpoint
// definition has no error clause.
type Void struct{}

func (Void) Error() string { return "void endpoint error" }

// VoidDecoder recognizes nothing, so every non-success response of an
// endpoint without an error type surfaces as an UnknownError.
func VoidDecoder(statusCode int, header http.Header, body []byte) (error, error) {
	return nil, errors.New("endpoint declares no error payload type")
}
