package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/kbukum/restauth/httpclient"
)

// StatusError is a non-2xx response. ErrorMessages and Errors hold the
// standard Jira error payload when the body carries one.
type StatusError struct {
	StatusCode    int
	Status        string
	ErrorMessages []string
	Errors        map[string]string
	Body          []byte
}

type errorPayload struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

func newStatusError(resp *httpclient.Response) *StatusError {
	e := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: resp.Body}
	var p errorPayload
	if json.Unmarshal(resp.Body, &p) == nil {
		e.ErrorMessages = p.ErrorMessages
		e.Errors = p.Errors
	}
	return e
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	msgs := append([]string(nil), e.ErrorMessages...)
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		msgs = append(msgs, field+": "+e.Errors[field])
	}
	if len(msgs) == 0 {
		return "rest: " + e.Status
	}
	return "rest: " + e.Status + ": " + strings.Join(msgs, "; ")
}

// StatusCode returns the status of a *StatusError in err's chain, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsTransport re-exports httpclient.IsTransport for callers of this package.
func IsTransport(err error) bool { return httpclient.IsTransport(err) }
