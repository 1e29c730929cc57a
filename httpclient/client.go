package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/restauth/logger"
	"github.com/kbukum/restauth/observability"
	"github.com/kbukum/restauth/version"
)

// Client sends authenticated requests to the configured site.
type Client struct {
	config  Config
	site    *url.URL
	conns   *ConnectionFactory
	signer  *TokenSigner
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time

	// mu guards the mutable session state below.
	mu            sync.Mutex
	jar           *CookieJar
	identity      identity
	authenticated bool
}

// New creates a client. Configuration problems are reported as config
// errors before any network activity.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	site, err := cfg.siteURL()
	if err != nil {
		return nil, err
	}
	conns, err := NewConnectionFactory(&cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		site:     site,
		conns:    conns,
		log:      logger.NewNop(),
		now:      time.Now,
		jar:      NewCookieJar(),
		identity: initialIdentity(&cfg),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("httpclient")

	if cfg.UseToken {
		c.signer, err = NewTokenSigner(cfg.Site, cfg.Issuer, cfg.SharedSecret, c.now)
		if err != nil {
			return nil, err
		}
	}

	// Credentials live only in the identity from here on.
	cfg.Username, cfg.Password = "", ""
	c.config = cfg
	return c, nil
}

// Config returns the effective configuration. Username and Password
// reflect the current identity and are empty once a session is established.
func (c *Client) Config() Config {
	cfg := c.config
	c.mu.Lock()
	if creds, ok := c.identity.(basicCredentials); ok {
		cfg.Username, cfg.Password = creds.username, creds.password
	}
	c.mu.Unlock()
	return cfg
}

// IsAuthenticated reports whether the most recent response was 200 OK.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Cookie returns the value of the stored cookie name.
func (c *Client) Cookie(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ck, ok := c.jar.Get(name)
	return ck.Value(), ok
}

// CookieNames returns the names of the stored cookies.
func (c *Client) CookieNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jar.Names()
}

// Execute sends req to the site with the configured authentication.
//
// A response of any status is returned without error; IsAuthenticated
// reflects whether it was 200 OK. Errors are request errors for a bad
// method or URL and connection/timeout errors for transport failures.
// Nothing is retried.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	method, err := ParseMethod(string(req.Method))
	if err != nil {
		return nil, err
	}
	path, err := requestPath(req.URL)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	plan := planAuth(&c.config, c.identity, c.jar)
	c.mu.Unlock()

	if plan.sign {
		if path, err = c.signer.Sign(method, path); err != nil {
			return nil, err
		}
	}

	target, err := c.targetURL(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(observability.AttrAuthStrategy, plan.strategy)),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, string(method), target.String(), body)
	if err != nil {
		return nil, NewRequestError("build request", err)
	}
	httpReq.Header.Set("User-Agent", version.UserAgent())
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	plan.apply(httpReq)

	requestID := uuid.NewString()
	log := c.log.WithFields(logger.Fields(
		logger.FieldRequestID, requestID,
		logger.FieldMethod, string(method),
		logger.FieldPath, target.Path,
	))

	start := time.Now()
	resp, err := c.send(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		observability.SetSpanError(span, err)
		c.metrics.RecordError(ctx, string(method), classifyCode(err))
		log.Warn("request failed", logger.MergeWithDuration(logger.ErrorFields("execute", err), elapsed))
		return nil, err
	}

	authenticated := resp.StatusCode == http.StatusOK
	c.mu.Lock()
	c.authenticated = authenticated
	if c.config.UseCookies {
		c.jar.StoreFrom(resp.Header)
	}
	c.mu.Unlock()

	span.SetAttributes(observability.HTTPAttributes(string(method), resp.StatusCode, authenticated)...)
	c.metrics.RecordRequest(ctx, string(method), resp.StatusCode, authenticated, elapsed)
	log.Debug("request completed", logger.MergeWithDuration(logger.Fields(
		logger.FieldStatus, resp.StatusCode,
		"authenticated", authenticated,
		"strategy", plan.strategy,
	), elapsed))

	return resp, nil
}

// send performs the round trip over a fresh connection and reads the body.
func (c *Client) send(req *http.Request) (*Response, error) {
	conn, err := c.conns.ConnectionFor(req.URL)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Do(req)
	if err != nil {
		return nil, transportError(req.Context(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(req.Context(), err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// targetURL joins the site's scheme and authority with path. UseSSL
// switches to TLS on the site's own port, so an http site without an
// explicit port stays on 80.
func (c *Client) targetURL(path string) (*url.URL, error) {
	scheme, host := c.site.Scheme, c.site.Host
	if c.config.UseSSL && !strings.EqualFold(scheme, "https") {
		if c.site.Port() == "" {
			host = net.JoinHostPort(c.site.Hostname(), defaultPort(scheme))
		}
		scheme = "https"
	}
	u, err := url.Parse(scheme + "://" + host + path)
	if err != nil {
		return nil, NewRequestError("invalid request path", err)
	}
	return u, nil
}

// requestPath reduces an absolute http(s) URL to its path and query and
// returns anything else verbatim, with a leading slash.
func requestPath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", NewRequestError("request URL is empty", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", NewRequestError("invalid request URL", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.RequestURI(), nil
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw, nil
}

func defaultPort(scheme string) string {
	if strings.EqualFold(scheme, "https") {
		return "443"
	}
	return "80"
}

// transportError maps a failed round trip onto a timeout or connection
// error. A cancelled context is a connection error.
func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(err)
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return NewConnectionError(err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewTimeoutError(err)
	default:
		return NewConnectionError(err)
	}
}

func classifyCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.String()
	}
	return "unknown"
}
