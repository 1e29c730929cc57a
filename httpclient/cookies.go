package httpclient

import (
	"net/http"
	"net/url"
	"strings"
)

// Cookie is a stored session cookie.
type Cookie struct {
	Name string
	// Values holds the "&"-separated parts of the cookie value, unescaped.
	Values []string
	// Attributes are the raw attributes that followed the value, minus Path.
	Attributes []string
}

// Value returns the first value, the only one sent back to the server.
func (c Cookie) Value() string {
	if len(c.Values) == 0 {
		return ""
	}
	return c.Values[0]
}

// CookieJar maps cookie names to the most recently received cookie.
// Expires and Max-Age are not honored: cookies live as long as the jar.
// A CookieJar is not safe for concurrent use; Client guards its jar.
type CookieJar struct {
	cookies map[string]Cookie
	order   []string
}

// NewCookieJar returns an empty jar.
func NewCookieJar() *CookieJar {
	return &CookieJar{cookies: make(map[string]Cookie)}
}

// StoreFrom merges every Set-Cookie header of h into the jar, last write wins.
func (j *CookieJar) StoreFrom(h http.Header) {
	for _, line := range h.Values("Set-Cookie") {
		c, ok := parseSetCookie(line)
		if !ok {
			continue
		}
		if _, exists := j.cookies[c.Name]; !exists {
			j.order = append(j.order, c.Name)
		}
		j.cookies[c.Name] = c
	}
}

// RenderHeader joins the stored cookies, in first-received order, and then
// the additional raw cookies with "; ". It returns false when there is
// nothing to send.
func (j *CookieJar) RenderHeader(additional []string) (string, bool) {
	parts := make([]string, 0, len(j.order)+len(additional))
	for _, name := range j.order {
		parts = append(parts, name+"="+j.cookies[name].Value())
	}
	parts = append(parts, additional...)
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "; "), true
}

// Get returns the cookie stored under name.
func (j *CookieJar) Get(name string) (Cookie, bool) {
	c, ok := j.cookies[name]
	return c, ok
}

// Len returns the number of stored cookies.
func (j *CookieJar) Len() int {
	return len(j.cookies)
}

// Names returns the stored cookie names in first-received order.
func (j *CookieJar) Names() []string {
	return append([]string(nil), j.order...)
}

// parseSetCookie splits "name=v1&v2; Attr=x; Path=/" into a Cookie.
func parseSetCookie(line string) (Cookie, bool) {
	segments := strings.Split(line, ";")
	name, raw, _ := strings.Cut(strings.TrimSpace(segments[0]), "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return Cookie{}, false
	}

	c := Cookie{Name: name}
	if raw != "" {
		for _, v := range strings.Split(raw, "&") {
			if unescaped, err := url.QueryUnescape(v); err == nil {
				v = unescaped
			}
			c.Values = append(c.Values, v)
		}
	}

	for _, attr := range segments[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		key, _, _ := strings.Cut(attr, "=")
		if strings.EqualFold(strings.TrimSpace(key), "Path") {
			continue
		}
		c.Attributes = append(c.Attributes, attr)
	}
	return c, true
}
