package httpclient

import (
	"net/url"
	"strings"
	"time"

	"github.com/kbukum/restauth/security"
	"github.com/kbukum/restauth/validation"
)

const (
	defaultReadTimeout = 60 * time.Second
	// defaultProxyPort is used when proxy_address is set without a port.
	defaultProxyPort = 80
)

// Config configures the HTTP client.
type Config struct {
	// Site is the base URI (scheme, host, port, optional context path).
	Site string `yaml:"site" mapstructure:"site" validate:"required,url"`

	// ContextPath prefixes the session login endpoint.
	ContextPath string `yaml:"context_path" mapstructure:"context_path"`

	// Username and Password are Basic credentials. Both or neither.
	// They are consumed by EstablishSession.
	Username string `yaml:"username" mapstructure:"username" validate:"required_with=Password"`
	Password string `yaml:"password" mapstructure:"password" validate:"required_with=Username"`

	// UseCookies attaches the cookie jar to requests and stores Set-Cookie responses.
	UseCookies bool `yaml:"use_cookies" mapstructure:"use_cookies"`

	// AdditionalCookies are raw "name=value" strings sent after the jar cookies.
	AdditionalCookies []string `yaml:"additional_cookies" mapstructure:"additional_cookies"`

	// UseToken signs every request with a query-string JWT.
	UseToken     bool   `yaml:"use_token" mapstructure:"use_token"`
	Issuer       string `yaml:"issuer" mapstructure:"issuer" validate:"required_if=UseToken true"`
	SharedSecret string `yaml:"shared_secret" mapstructure:"shared_secret" validate:"required_if=UseToken true"`

	// ProxyAddress routes every connection through a proxy. It may carry an
	// http, https or socks5 scheme; plain host names are HTTP proxies.
	ProxyAddress string `yaml:"proxy_address" mapstructure:"proxy_address"`
	ProxyPort    int    `yaml:"proxy_port" mapstructure:"proxy_port" validate:"omitempty,min=1,max=65535"`

	// UseSSL forces TLS even when Site has an http scheme.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`

	// UseClientCert presents Cert/Key (inline PEM) or CertFile/KeyFile.
	UseClientCert bool   `yaml:"use_client_cert" mapstructure:"use_client_cert"`
	Cert          string `yaml:"cert" mapstructure:"cert"`
	Key           string `yaml:"key" mapstructure:"key"`
	CertFile      string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile       string `yaml:"key_file" mapstructure:"key_file"`

	// CAFile replaces the system roots for server verification.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// SSLVerifyMode is verify_peer (default) or verify_none.
	SSLVerifyMode security.VerifyMode `yaml:"ssl_verify_mode" mapstructure:"ssl_verify_mode" validate:"omitempty,oneof=verify_peer verify_none"`

	// ReadTimeout bounds every read from the connection. Defaults to 60s.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.SSLVerifyMode == "" {
		c.SSLVerifyMode = security.VerifyPeer
	}
}

// Validate checks that the configuration is complete. Failures are config errors.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge(validation.Validate(c))

	if c.Site != "" {
		if u, err := url.Parse(c.Site); err == nil {
			if u.Host == "" {
				v.AddError("site", "must include a host")
			}
			if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
				v.AddError("site", "scheme must be http or https")
			}
		}
	}
	if c.UseClientCert {
		v.Custom(c.TLS().HasClientCert(), "cert", "is required when use_client_cert is set")
	}
	v.Merge(c.TLS().Validate())

	if err := v.Err(); err != nil {
		return NewConfigError("invalid configuration", err)
	}
	return nil
}

// HasCredentials reports whether both Basic credentials are present.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// TLS returns the TLS settings derived from the configuration. Client
// certificate material is only included when UseClientCert is set.
func (c *Config) TLS() *security.TLSConfig {
	t := &security.TLSConfig{
		VerifyMode: c.SSLVerifyMode,
		CAFile:     c.CAFile,
	}
	if c.UseClientCert {
		t.CertPEM = c.Cert
		t.KeyPEM = c.Key
		t.CertFile = c.CertFile
		t.KeyFile = c.KeyFile
	}
	return t
}

// siteURL parses Site. Validate guarantees it succeeds.
func (c *Config) siteURL() (*url.URL, error) {
	u, err := url.Parse(c.Site)
	if err != nil {
		return nil, NewConfigError("invalid site", err)
	}
	return u, nil
}
