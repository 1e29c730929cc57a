package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// ConnectionFactory turns the transport settings into a single-use
// *http.Client for one target authority. Nothing is pooled or reused.
type ConnectionFactory struct {
	tls         *tls.Config
	proxy       *url.URL
	readTimeout time.Duration
}

// NewConnectionFactory resolves the proxy and TLS settings of cfg once.
func NewConnectionFactory(cfg *Config) (*ConnectionFactory, error) {
	tlsCfg, err := cfg.TLS().Build()
	if err != nil {
		return nil, NewConfigError("tls", err)
	}
	proxyURL, err := resolveProxy(cfg.ProxyAddress, cfg.ProxyPort)
	if err != nil {
		return nil, err
	}
	return &ConnectionFactory{tls: tlsCfg, proxy: proxyURL, readTimeout: cfg.ReadTimeout}, nil
}

// Proxy returns the proxy every connection goes through, or nil.
func (f *ConnectionFactory) Proxy() *url.URL {
	return f.proxy
}

// ConnectionFor returns a fresh client for target. It fails with a
// connection error when target has no host.
func (f *ConnectionFactory) ConnectionFor(target *url.URL) (*http.Client, error) {
	if target == nil || target.Hostname() == "" {
		return nil, NewConnectionError(errors.New("target has no resolvable host"))
	}

	transport := &http.Transport{
		TLSClientConfig:       f.tls.Clone(),
		DisableKeepAlives:     true,
		ResponseHeaderTimeout: f.readTimeout,
		TLSHandshakeTimeout:   f.readTimeout,
	}

	direct := &net.Dialer{Timeout: f.readTimeout}
	dial := direct.DialContext

	switch {
	case f.proxy == nil:
		// Environment proxies are ignored: only proxy_address routes traffic.
	case f.proxy.Scheme == "socks5":
		d, err := socksDialer(f.proxy, direct)
		if err != nil {
			return nil, NewConnectionError(err)
		}
		dial = d
	default:
		transport.Proxy = http.ProxyURL(f.proxy)
	}
	transport.DialContext = readDeadlineDialer(dial, f.readTimeout)

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func socksDialer(proxyURL *url.URL, forward *net.Dialer) (dialFunc, error) {
	var auth *proxy.Auth
	if proxyURL.User != nil {
		pass, _ := proxyURL.User.Password()
		auth = &proxy.Auth{User: proxyURL.User.Username(), Password: pass}
	}
	d, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, forward)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy: %w", err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// readDeadlineDialer wraps dialed connections so every Read is bounded by timeout.
func readDeadlineDialer(dial dialFunc, timeout time.Duration) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if err != nil || timeout <= 0 {
			return conn, err
		}
		return &deadlineConn{Conn: conn, timeout: timeout}, nil
	}
}

type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

// resolveProxy builds the proxy URL from proxy_address and proxy_port.
// A missing port defaults to 80 and a missing scheme to http.
func resolveProxy(address string, port int) (*url.URL, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil || u.Hostname() == "" {
		return nil, NewConfigError(fmt.Sprintf("invalid proxy_address %q", address), err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, NewConfigError(fmt.Sprintf("unsupported proxy scheme %q", u.Scheme), nil)
	}

	switch {
	case port > 0:
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	case u.Port() == "":
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(defaultProxyPort))
	}
	return u, nil
}
