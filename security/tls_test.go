package security

import (
	"crypto/tls"
	"strings"
	"testing"

	"github.com/kbukum/restauth/security/tlstest"
)

func TestParseVerifyMode(t *testing.T) {
	tests := []struct {
		in      string
		want    VerifyMode
		wantErr bool
	}{
		{"", VerifyPeer, false},
		{"verify_peer", VerifyPeer, false},
		{"VERIFY_NONE", VerifyNone, false},
		{"sometimes", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseVerifyMode(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected wantErr=%v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTLSConfig_Build_NilConfigVerifies(t *testing.T) {
	var cfg *TLSConfig
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InsecureSkipVerify {
		t.Error("expected verification for nil config")
	}
	if result.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected MinVersion=TLS12, got %d", result.MinVersion)
	}
}

func TestTLSConfig_Build_VerifyNone(t *testing.T) {
	result, err := (&TLSConfig{VerifyMode: VerifyNone}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify=true")
	}
	if len(result.Certificates) != 0 {
		t.Error("expected no client certificates")
	}
}

func TestTLSConfig_Build_InlineClientCert(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	client := certs.IssueClientCert(t, "bot")

	result, err := (&TLSConfig{
		VerifyMode: VerifyNone,
		CertPEM:    client.CertPEM,
		KeyPEM:     client.KeyPEM,
	}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Certificates) != 1 {
		t.Fatalf("expected 1 certificate, got %d", len(result.Certificates))
	}
	if !result.InsecureSkipVerify {
		t.Error("verify mode must apply alongside client certificates")
	}
}

func TestTLSConfig_Build_FileClientCertAndCA(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	client := certs.IssueClientCert(t, "bot")

	result, err := (&TLSConfig{
		CAFile:   certs.CAFile,
		CertFile: client.CertFile,
		KeyFile:  client.KeyFile,
	}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RootCAs == nil {
		t.Error("expected RootCAs to be set")
	}
	if len(result.Certificates) != 1 {
		t.Errorf("expected 1 certificate, got %d", len(result.Certificates))
	}
}

func TestTLSConfig_Build_Errors(t *testing.T) {
	invalid := tlstest.WriteInvalidPEM(t, "bad.pem")
	tests := []struct {
		name string
		cfg  TLSConfig
		msg  string
	}{
		{"missing CA", TLSConfig{CAFile: "/nonexistent/ca.pem"}, "failed to read CA file"},
		{"invalid CA", TLSConfig{CAFile: invalid}, "failed to parse CA certificate"},
		{"invalid inline cert", TLSConfig{CertPEM: "junk", KeyPEM: "junk"}, "failed to load client certificate"},
		{"bad mode", TLSConfig{VerifyMode: "maybe"}, "unknown verify mode"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected error containing %q, got %q", tc.msg, err.Error())
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	if err := (&TLSConfig{CertPEM: "x"}).Validate(); err == nil {
		t.Error("expected error for cert without key")
	}
	if err := (&TLSConfig{KeyFile: "k"}).Validate(); err == nil {
		t.Error("expected error for key_file without cert_file")
	}
	if err := (&TLSConfig{CertFile: "c", KeyFile: "k"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	var nilCfg *TLSConfig
	if err := nilCfg.Validate(); err != nil {
		t.Errorf("unexpected error for nil config: %v", err)
	}
	if nilCfg.HasClientCert() {
		t.Error("nil config has no client cert")
	}
}
