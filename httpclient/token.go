package httpclient

import (
	"strings"
	"time"

	"github.com/kbukum/restauth/auth/jwt"
)

// TokenSigner appends a signed, time-bound request token to request paths.
// Tokens are built fresh for every call.
type TokenSigner struct {
	site   string
	issuer string
	svc    *jwt.Service[*jwt.RequestClaims]
	now    func() time.Time
}

// NewTokenSigner creates a signer for requests against site.
// It fails with a config error when issuer or secret is empty.
func NewTokenSigner(site, issuer, secret string, now func() time.Time) (*TokenSigner, error) {
	if issuer == "" || secret == "" {
		return nil, NewConfigError("token auth requires issuer and shared_secret", nil)
	}
	svc, err := jwt.NewService(&jwt.Config{Secret: secret, Method: jwt.HS256}, jwt.NewRequestClaims)
	if err != nil {
		return nil, NewConfigError("token auth", err)
	}
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{site: site, issuer: issuer, svc: svc, now: now}, nil
}

// Sign returns path with a "jwt" query parameter whose token asserts
// issuer, subject site+path, audience site, iat now-60s and exp now+24h.
// The parameter is joined with "&" when path already has a query.
func (s *TokenSigner) Sign(method Method, path string) (string, error) {
	claims := jwt.BuildRequestClaims(s.issuer, s.site, string(method), path, s.now())
	token, err := s.svc.Generate(claims)
	if err != nil {
		return "", NewConfigError("sign request token", err)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "jwt=" + token, nil
}
