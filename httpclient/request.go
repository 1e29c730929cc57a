package httpclient

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP method supported by the client.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
)

// ParseMethod maps a method name, in any case, onto a supported Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions:
		return m, nil
	default:
		return "", NewRequestError(fmt.Sprintf("unsupported HTTP method %q", s), nil)
	}
}

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method.
	Method Method
	// URL is either an absolute http(s) URL, reduced to its path and query,
	// or a path sent verbatim. The request always goes to the configured site.
	URL string
	// Body is the request body. Nil sends no body; an empty slice sends an
	// empty one.
	Body []byte
	// Headers are request-specific headers.
	Headers map[string]string
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the status line text, e.g. "200 OK".
	Status string
	// Header holds every response header, including repeated Set-Cookie.
	Header http.Header
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsOK returns true only for 200, the status that marks a request authenticated.
func (r *Response) IsOK() bool {
	return r.StatusCode == http.StatusOK
}
