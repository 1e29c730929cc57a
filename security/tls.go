package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
)

// VerifyMode is the server certificate verification policy.
type VerifyMode string

const (
	// VerifyPeer verifies the server certificate chain and host name.
	VerifyPeer VerifyMode = "verify_peer"
	// VerifyNone accepts any server certificate.
	VerifyNone VerifyMode = "verify_none"
)

// ParseVerifyMode maps a configuration string onto a VerifyMode.
// The empty string yields VerifyPeer.
func ParseVerifyMode(s string) (VerifyMode, error) {
	switch VerifyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", VerifyPeer:
		return VerifyPeer, nil
	case VerifyNone:
		return VerifyNone, nil
	default:
		return "", fmt.Errorf("security/tls: unknown verify mode %q", s)
	}
}

// TLSConfig holds the TLS settings of an outbound connection.
type TLSConfig struct {
	// VerifyMode is the server verification policy. Defaults to VerifyPeer.
	VerifyMode VerifyMode `yaml:"verify_mode" mapstructure:"verify_mode"`

	// CAFile is an optional CA bundle used instead of the system roots.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertPEM and KeyPEM are inline client certificate material.
	CertPEM string `yaml:"cert" mapstructure:"cert"`
	KeyPEM  string `yaml:"key" mapstructure:"key"`

	// CertFile and KeyFile point at client certificate material on disk.
	// Inline PEM wins when both forms are set.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`

	// ServerName overrides the name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is the minimum TLS version. Defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Build creates a *tls.Config from the configuration.
// The verification policy is always applied, with or without a client certificate.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}

	mode, err := ParseVerifyMode(string(c.VerifyMode))
	if err != nil {
		return nil, err
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cfg := &tls.Config{
		InsecureSkipVerify: mode == VerifyNone, //nolint:gosec // explicit opt-in via verify_none
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
	}

	if err := c.loadCA(cfg); err != nil {
		return nil, err
	}
	if err := c.loadClientCert(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if _, err := ParseVerifyMode(string(c.VerifyMode)); err != nil {
		return err
	}
	if (c.CertPEM != "") != (c.KeyPEM != "") {
		return fmt.Errorf("security/tls: both cert and key must be provided together")
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("security/tls: both cert_file and key_file must be provided together")
	}
	return nil
}

// HasClientCert reports whether any client certificate material is configured.
func (c *TLSConfig) HasClientCert() bool {
	if c == nil {
		return false
	}
	return c.CertPEM != "" || c.CertFile != ""
}

// loadCA loads the CA bundle into the TLS config.
func (c *TLSConfig) loadCA(cfg *tls.Config) error {
	if c.CAFile == "" {
		return nil
	}
	ca, err := os.ReadFile(c.CAFile)
	if err != nil {
		return fmt.Errorf("security/tls: failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return fmt.Errorf("security/tls: failed to parse CA certificate")
	}
	cfg.RootCAs = pool
	return nil
}

// loadClientCert loads the client key pair, inline PEM first.
func (c *TLSConfig) loadClientCert(cfg *tls.Config) error {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case c.CertPEM != "" && c.KeyPEM != "":
		cert, err = tls.X509KeyPair([]byte(c.CertPEM), []byte(c.KeyPEM))
	case c.CertFile != "" && c.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("security/tls: failed to load client certificate: %w", err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return nil
}
