// Package security builds TLS client configuration for restauth.
//
// A TLSConfig carries the verification policy and optional client
// certificate material, given either inline as PEM text or as file paths.
//
//	cfg := security.TLSConfig{
//	    VerifyMode: security.VerifyPeer,
//	    CertPEM:    certPEM,
//	    KeyPEM:     keyPEM,
//	}
//	tlsConfig, err := cfg.Build()
package security
