package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/restauth/httpclient"
)

// Client sends JSON requests through an authenticated httpclient.Client
// and decodes the responses. Unlike httpclient.Client, it turns non-2xx
// responses into *StatusError.
type Client struct {
	http *httpclient.Client
}

// New wraps c. Authentication state stays with c.
func New(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// RequestOption configures a single REST request.
type RequestOption func(*httpclient.Request)

// WithQuery appends params to the request URL.
func WithQuery(params url.Values) RequestOption {
	return func(r *httpclient.Request) {
		if len(params) == 0 {
			return
		}
		sep := "?"
		if strings.Contains(r.URL, "?") {
			sep = "&"
		}
		r.URL += sep + params.Encode()
	}
}

// WithHeaders adds headers to the request, replacing the JSON defaults
// when they share a name.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *httpclient.Request) {
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
}

// Response wraps a typed REST response.
type Response[T any] struct {
	StatusCode int
	Header     http.Header
	Data       T
}

// Get performs a GET request and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, httpclient.MethodGet, path, nil, opts...)
}

// Post sends body as JSON and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, httpclient.MethodPost, path, body, opts...)
}

// Put sends body as JSON and decodes the response into T.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, httpclient.MethodPut, path, body, opts...)
}

// Delete performs a DELETE request and decodes the response, if any, into T.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return do[T](ctx, c, httpclient.MethodDelete, path, nil, opts...)
}

func do[T any](ctx context.Context, c *Client, method httpclient.Method, path string, body any, opts ...RequestOption) (*Response[T], error) {
	req := httpclient.Request{
		Method:  method,
		URL:     path,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("rest: encode request: %w", err)
		}
		req.Body = data
		req.Headers["Content-Type"] = "application/json"
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.http.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeResponse[T](resp)
}

// decodeResponse converts non-2xx responses into *StatusError and decodes
// any other non-empty body into T.
func decodeResponse[T any](resp *httpclient.Response) (*Response[T], error) {
	if !resp.IsSuccess() {
		return nil, newStatusError(resp)
	}
	out := &Response[T]{StatusCode: resp.StatusCode, Header: resp.Header}
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := json.Unmarshal(resp.Body, &out.Data); err != nil {
			return nil, fmt.Errorf("rest: decode response: %w", err)
		}
	}
	return out, nil
}
