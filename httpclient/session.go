package httpclient

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/kbukum/restauth/logger"
	"github.com/kbukum/restauth/observability"
)

// SessionPath is the session resource, relative to the context path.
const SessionPath = "/rest/auth/1/session"

type sessionCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EstablishSession logs in with the configured credentials to obtain a
// session cookie. The credentials are dropped before the request is sent,
// whatever its outcome, so later requests rely on the cookie only and a
// second call fails with a config error.
func (c *Client) EstablishSession(ctx context.Context) (*Response, error) {
	c.mu.Lock()
	creds, ok := c.identity.(basicCredentials)
	if !ok {
		c.mu.Unlock()
		return nil, NewConfigError("session login requires username and password", nil)
	}
	body, err := encodeSessionCredentials(creds)
	if err != nil {
		c.mu.Unlock()
		return nil, NewConfigError("encode session credentials", err)
	}
	c.identity = sessionEstablished{}
	c.mu.Unlock()

	ctx, span := observability.StartSpan(ctx, observability.SpanSessionLogin)
	defer span.End()

	c.log.Info("establishing session", logger.Fields(logger.FieldSite, c.config.Site))

	return c.Execute(ctx, Request{
		Method:  MethodPost,
		URL:     c.config.ContextPath + SessionPath,
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}

// DeleteSession logs the current session out on the server. The cookie
// jar keeps its entries and the credentials are not restored.
func (c *Client) DeleteSession(ctx context.Context) (*Response, error) {
	return c.Execute(ctx, Request{
		Method: MethodDelete,
		URL:    c.config.ContextPath + SessionPath,
	})
}

// encodeSessionCredentials renders {"username":..,"password":..} without
// HTML escaping and without a trailing newline.
func encodeSessionCredentials(creds basicCredentials) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sessionCredentials{Username: creds.username, Password: creds.password}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
