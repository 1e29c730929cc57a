// Package tlstest generates certificates for TLS tests.
// Files are written under t.TempDir() and removed with it.
//
//	certs := tlstest.GenerateTLSCerts(t)
//	client := certs.IssueClientCert(t, "jira-bot")
package tlstest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TLSCerts holds a test CA and a server certificate it signed.
type TLSCerts struct {
	CAFile   string
	CertFile string
	KeyFile  string

	CACert    *x509.Certificate
	CAKey     *ecdsa.PrivateKey
	ServerTLS tls.Certificate
	CertPool  *x509.CertPool

	dir    string
	serial int64
}

// ClientCert is a client certificate signed by the test CA.
type ClientCert struct {
	CertFile string
	KeyFile  string
	CertPEM  string
	KeyPEM   string
}

// GenerateTLSCerts creates a CA and a server certificate valid for
// localhost, 127.0.0.1 and [::1].
func GenerateTLSCerts(t testing.TB) *TLSCerts {
	t.Helper()
	dir := t.TempDir()

	caKey := newKey(t)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"restauth test CA"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("tlstest: create CA cert: %v", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatalf("tlstest: parse CA cert: %v", err)
	}

	certs := &TLSCerts{CACert: caCert, CAKey: caKey, dir: dir, serial: 1}
	certs.CAFile = filepath.Join(dir, "ca.pem")
	writeFile(t, certs.CAFile, encodePEM("CERTIFICATE", caDER))

	serverTemplate := &x509.Certificate{
		Subject:     pkix.Name{CommonName: "localhost"},
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	certPEM, keyPEM := certs.issue(t, serverTemplate)
	certs.CertFile = filepath.Join(dir, "server.pem")
	certs.KeyFile = filepath.Join(dir, "server-key.pem")
	writeFile(t, certs.CertFile, certPEM)
	writeFile(t, certs.KeyFile, keyPEM)

	certs.ServerTLS, err = tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("tlstest: load server key pair: %v", err)
	}
	certs.CertPool = x509.NewCertPool()
	certs.CertPool.AddCert(caCert)
	return certs
}

// IssueClientCert signs a client-auth certificate for commonName.
func (c *TLSCerts) IssueClientCert(t testing.TB, commonName string) *ClientCert {
	t.Helper()
	certPEM, keyPEM := c.issue(t, &x509.Certificate{
		Subject:     pkix.Name{CommonName: commonName},
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	cc := &ClientCert{
		CertFile: filepath.Join(c.dir, commonName+".pem"),
		KeyFile:  filepath.Join(c.dir, commonName+"-key.pem"),
		CertPEM:  string(certPEM),
		KeyPEM:   string(keyPEM),
	}
	writeFile(t, cc.CertFile, certPEM)
	writeFile(t, cc.KeyFile, keyPEM)
	return cc
}

// ServerConfig returns a server tls.Config that requires client certificates
// signed by the test CA.
func (c *TLSCerts) ServerConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{c.ServerTLS},
		ClientCAs:    c.CertPool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}
}

func (c *TLSCerts) issue(t testing.TB, template *x509.Certificate) (certPEM, keyPEM []byte) {
	t.Helper()
	c.serial++
	template.SerialNumber = big.NewInt(c.serial)
	template.NotBefore = time.Now().Add(-time.Hour)
	template.NotAfter = time.Now().Add(24 * time.Hour)
	template.KeyUsage = x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment

	key := newKey(t)
	der, err := x509.CreateCertificate(rand.Reader, template, c.CACert, &key.PublicKey, c.CAKey)
	if err != nil {
		t.Fatalf("tlstest: create cert: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("tlstest: marshal key: %v", err)
	}
	return encodePEM("CERTIFICATE", der), encodePEM("EC PRIVATE KEY", keyDER)
}

// WriteInvalidPEM writes a PEM-looking file that does not decode.
func WriteInvalidPEM(t testing.TB, filename string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	writeFile(t, path, []byte("-----BEGIN CERTIFICATE-----\nnot-valid-base64-data\n-----END CERTIFICATE-----\n"))
	return path
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("tlstest: generate key: %v", err)
	}
	return key
}

func encodePEM(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("tlstest: write %s: %v", path, err)
	}
}
