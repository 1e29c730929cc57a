package httpclient

import (
	"errors"
	"testing"
	"time"

	"github.com/kbukum/restauth/security"
	"github.com/kbukum/restauth/validation"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Site: "http://jira"}
	cfg.ApplyDefaults()

	if cfg.ReadTimeout != 60*time.Second {
		t.Errorf("expected 60s read timeout, got %v", cfg.ReadTimeout)
	}
	if cfg.SSLVerifyMode != security.VerifyPeer {
		t.Errorf("expected verify_peer, got %q", cfg.SSLVerifyMode)
	}

	cfg = Config{Site: "http://jira", ReadTimeout: time.Second, SSLVerifyMode: security.VerifyNone}
	cfg.ApplyDefaults()
	if cfg.ReadTimeout != time.Second || cfg.SSLVerifyMode != security.VerifyNone {
		t.Error("expected explicit values to be kept")
	}
}

func TestConfig_ValidateFieldErrors(t *testing.T) {
	cfg := Config{Site: "http://jira", Password: "p", UseToken: true}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if !IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}

	var verrs *validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %T", errors.Unwrap(err))
	}
	for _, field := range []string{"username", "issuer", "shared_secret"} {
		if !verrs.Has(field) {
			t.Errorf("expected an error for %s, got %v", field, verrs)
		}
	}
}

func TestConfig_TLS(t *testing.T) {
	cfg := Config{
		Site:   "https://jira",
		Cert:   "cert-pem",
		Key:    "key-pem",
		CAFile: "/etc/ca.pem",
		UseSSL: true,
	}
	if tc := cfg.TLS(); tc.CertPEM != "" || tc.KeyPEM != "" {
		t.Error("expected no client certificate without use_client_cert")
	}

	cfg.UseClientCert = true
	tc := cfg.TLS()
	if tc.CertPEM != "cert-pem" || tc.KeyPEM != "key-pem" || tc.CAFile != "/etc/ca.pem" {
		t.Errorf("unexpected tls config %+v", tc)
	}
}

func TestConfig_Valid(t *testing.T) {
	cfg := Config{
		Site:         "https://jira.example.com/jira",
		Username:     "u",
		Password:     "p",
		UseToken:     true,
		Issuer:       "i",
		SharedSecret: "s",
		ProxyPort:    8080,
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfig_ValidateSiteScheme(t *testing.T) {
	tests := []struct {
		site    string
		wantErr bool
	}{
		{"http://jira.example.com", false},
		{"HTTPS://jira.example.com/jira", false},
		{"ftp://jira.example.com", true},
		{"ws://jira.example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			cfg := Config{Site: tt.site}
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if tt.wantErr {
				var verrs *validation.Errors
				if !IsConfig(err) || !errors.As(err, &verrs) || !verrs.Has("site") {
					t.Errorf("expected a site config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
