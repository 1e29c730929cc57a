package httpclient

import "net/http"

// identity is what currently asserts who the client is. Exactly one
// identity is active; token signing is orthogonal to it.
type identity interface {
	isIdentity()
}

// anonymous sends no credentials of its own.
type anonymous struct{}

// basicCredentials are sent as HTTP Basic auth on every request until a
// session is established.
type basicCredentials struct {
	username string
	password string
}

// sessionEstablished means the credentials were traded for a session
// cookie and are gone.
type sessionEstablished struct{}

func (anonymous) isIdentity()          {}
func (basicCredentials) isIdentity()   {}
func (sessionEstablished) isIdentity() {}

// initialIdentity derives the starting identity from the configuration.
func initialIdentity(cfg *Config) identity {
	if cfg.HasCredentials() {
		return basicCredentials{username: cfg.Username, password: cfg.Password}
	}
	return anonymous{}
}

// strategyName labels an identity for logs and spans. Secrets never appear.
func strategyName(id identity, cfg *Config) string {
	var name string
	switch id.(type) {
	case basicCredentials:
		name = "basic"
	case sessionEstablished:
		name = "session"
	default:
		name = "anonymous"
	}
	if cfg.UseToken {
		name += "+token"
	}
	return name
}

// authPlan is the per-request decision of which augmentations apply.
type authPlan struct {
	sign         bool
	cookieHeader string
	sendCookies  bool
	basic        *basicCredentials
	strategy     string
}

// planAuth selects the augmentations for the next request. The caller
// holds the client lock.
func planAuth(cfg *Config, id identity, jar *CookieJar) authPlan {
	plan := authPlan{sign: cfg.UseToken, strategy: strategyName(id, cfg)}
	if cfg.UseCookies {
		plan.cookieHeader, plan.sendCookies = jar.RenderHeader(cfg.AdditionalCookies)
	}
	if creds, ok := id.(basicCredentials); ok {
		plan.basic = &creds
	}
	return plan
}

// apply attaches cookies and Basic credentials to req.
func (p authPlan) apply(req *http.Request) {
	if p.sendCookies {
		req.Header.Add("Cookie", p.cookieHeader)
	}
	if p.basic != nil {
		req.SetBasicAuth(p.basic.username, p.basic.password)
	}
}
