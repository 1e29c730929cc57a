package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// QueryStringHash returns the hex SHA-256 of the canonical request.
func QueryStringHash(method, rawURL, baseURL string) string {
	sum := sha256.Sum256([]byte(CanonicalRequest(method, rawURL, baseURL)))
	return hex.EncodeToString(sum[:])
}

// CanonicalRequest renders "METHOD&path&query" where path is relative to
// the path of baseURL and query is sorted, percent-encoded, without "jwt".
func CanonicalRequest(method, rawURL, baseURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToUpper(method) + "&/&"
	}
	basePath := ""
	if b, err := url.Parse(baseURL); err == nil {
		basePath = strings.TrimSuffix(b.Path, "/")
	}
	return strings.ToUpper(method) + "&" + canonicalPath(u.Path, basePath) + "&" + canonicalQuery(u.RawQuery)
}

func canonicalPath(path, basePath string) string {
	if basePath != "" && strings.HasPrefix(path, basePath) {
		path = strings.TrimPrefix(path, basePath)
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return strings.ReplaceAll(path, "&", "%26")
}

func canonicalQuery(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil || len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "jwt" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		vs := append([]string(nil), values[k]...)
		sort.Strings(vs)
		for i, v := range vs {
			vs[i] = escape(v)
		}
		pairs = append(pairs, escape(k)+"="+strings.Join(vs, ","))
	}
	return strings.Join(pairs, "&")
}

// escape percent-encodes per RFC 3986 (space as %20).
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
