package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(&Config{}, NewRequestClaims); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewService(&Config{Secret: "s", Method: "RS256"}, NewRequestClaims); err == nil {
		t.Fatal("expected error for unsupported method")
	}
}

func TestService_GenerateParse_RoundTrip(t *testing.T) {
	svc, err := NewService(&Config{Secret: "secret", Issuer: "app", Audience: "https://jira.example.com"}, NewRequestClaims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Now()
	claims := BuildRequestClaims("app", "https://jira.example.com", "GET", "/rest/api/2/issue/1", now)
	token, err := svc.Generate(claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Issuer != "app" {
		t.Errorf("expected iss app, got %q", parsed.Issuer)
	}
	if parsed.Subject != "https://jira.example.com/rest/api/2/issue/1" {
		t.Errorf("unexpected sub %q", parsed.Subject)
	}
	if parsed.IssuedAt.Unix() != now.Add(-60*time.Second).Unix() {
		t.Errorf("expected iat now-60s, got %v", parsed.IssuedAt)
	}
	if parsed.ExpiresAt.Unix() != now.Add(24*time.Hour).Unix() {
		t.Errorf("expected exp now+24h, got %v", parsed.ExpiresAt)
	}
	if parsed.QSH != QueryStringHash("GET", "https://jira.example.com/rest/api/2/issue/1", "https://jira.example.com") {
		t.Errorf("unexpected qsh %q", parsed.QSH)
	}
}

func TestService_Parse_Rejects(t *testing.T) {
	svc, _ := NewService(&Config{Secret: "secret", Issuer: "app"}, NewRequestClaims)
	other, _ := NewService(&Config{Secret: "other"}, NewRequestClaims)

	claims := BuildRequestClaims("app", "https://x", "GET", "/", time.Now())
	token, _ := other.Generate(claims)
	if _, err := svc.Parse(token); err == nil {
		t.Error("expected signature error")
	}

	expired := BuildRequestClaims("app", "https://x", "GET", "/", time.Now().Add(-48*time.Hour))
	token, _ = svc.Generate(expired)
	if _, err := svc.Parse(token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Errorf("expected expiry error, got %v", err)
	}

	wrongIss := BuildRequestClaims("someone", "https://x", "GET", "/", time.Now())
	token, _ = svc.Generate(wrongIss)
	if _, err := svc.Parse(token); err == nil {
		t.Error("expected issuer error")
	}

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims)
	unsigned, _ := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if _, err := svc.Parse(unsigned); err == nil {
		t.Error("expected alg none to be rejected")
	}
}

func TestCanonicalRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		url    string
		base   string
		want   string
	}{
		{"root", "get", "https://jira.example.com", "https://jira.example.com", "GET&/&"},
		{"path", "GET", "https://jira.example.com/rest/api/2/issue/10", "https://jira.example.com", "GET&/rest/api/2/issue/10&"},
		{"context path stripped", "POST", "https://x.com/jira/rest/api/2/issue", "https://x.com/jira", "POST&/rest/api/2/issue&"},
		{"trailing slash", "GET", "https://x.com/rest/", "https://x.com", "GET&/rest&"},
		{"ampersand in path", "GET", "https://x.com/a&b", "https://x.com", "GET&/a%26b&"},
		{"sorted query without jwt", "GET", "https://x.com/s?b=2&a=1&jwt=tok&a=0", "https://x.com", "GET&/s&a=0,1&b=2"},
		{"escaped query", "GET", "https://x.com/s?jql=project%20%3D%20X", "https://x.com", "GET&/s&jql=project%20%3D%20X"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanonicalRequest(tc.method, tc.url, tc.base); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
