package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// HandlerFunc is the business half of a mounted endpoint: it receives the
// decoded request value and produces the response value.
type HandlerFunc func(ctx context.Context, req Value) (Value, error)

// RoutePattern returns the routing pattern for an endpoint. The definition
// language and chi share the {param} placeholder syntax, so the path
// template is the pattern.
func RoutePattern(m Metadata) string {
	return m.Path
}

// Handler wraps a business handler with the endpoint's request decoder and
// response encoder, producing a net/http handler. Decode failures answer
// 400, handler and encode failures 500; transport concerns beyond that stay
// with the caller.
func (e *Endpoint) Handler(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := e.DecodeRequest(r)
		if err != nil {
			writeErrorStatus(w, http.StatusBadRequest, err)
			return
		}
		res, err := h(r.Context(), req)
		if err != nil {
			writeErrorStatus(w, http.StatusInternalServerError, err)
			return
		}
		httpRes, err := e.EncodeResponse(res)
		if err != nil {
			writeErrorStatus(w, http.StatusInternalServerError, err)
			return
		}
		for k, vs := range httpRes.Header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(httpRes.StatusCode)
		if httpRes.Body != nil {
			defer httpRes.Body.Close()
			_, _ = io.Copy(w, httpRes.Body)
		}
	})
}

// Mount registers the endpoint's handler on a chi router under its declared
// method and path template.
func Mount(r chi.Router, e *Endpoint, h HandlerFunc) {
	r.Method(e.Metadata().Method, RoutePattern(e.Metadata()), e.Handler(h))
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
