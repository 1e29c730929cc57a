package jwt

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const (
	// IssuedAtSkew backdates "iat" so servers with a slightly slow clock accept the token.
	IssuedAtSkew = 60 * time.Second
	// RequestTokenTTL is the lifetime of a request token.
	RequestTokenTTL = 24 * time.Hour
)

// RequestClaims is the claim set of a query-string request token.
type RequestClaims struct {
	gojwt.RegisteredClaims
	// QSH binds the token to one method, path and query.
	QSH string `json:"qsh,omitempty"`
}

// NewRequestClaims returns empty claims for parsing.
func NewRequestClaims() *RequestClaims {
	return &RequestClaims{}
}

// BuildRequestClaims builds the claims for a request of method against
// site+path, issued by issuer at now.
func BuildRequestClaims(issuer, site, method, path string, now time.Time) *RequestClaims {
	target := site + path
	return &RequestClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   target,
			Audience:  gojwt.ClaimStrings{site},
			IssuedAt:  gojwt.NewNumericDate(now.Add(-IssuedAtSkew)),
			ExpiresAt: gojwt.NewNumericDate(now.Add(RequestTokenTTL)),
		},
		QSH: QueryStringHash(method, target, site),
	}
}
