package httpclient

import (
	"net/http"
	"reflect"
	"testing"
)

func setCookieHeader(values ...string) http.Header {
	h := http.Header{}
	for _, v := range values {
		h.Add("Set-Cookie", v)
	}
	return h
}

func TestCookieJar_StoreAndRender(t *testing.T) {
	jar := NewCookieJar()
	jar.StoreFrom(setCookieHeader("JSESSIONID=abc123; Path=/; HttpOnly", "atlassian.xsrf.token=tok; Path=/jira"))

	header, ok := jar.RenderHeader(nil)
	if !ok {
		t.Fatal("expected a cookie header")
	}
	if header != "JSESSIONID=abc123; atlassian.xsrf.token=tok" {
		t.Errorf("unexpected header %q", header)
	}

	c, ok := jar.Get("JSESSIONID")
	if !ok {
		t.Fatal("expected JSESSIONID to be stored")
	}
	if !reflect.DeepEqual(c.Attributes, []string{"HttpOnly"}) {
		t.Errorf("expected Path to be dropped, got attributes %v", c.Attributes)
	}
}

func TestCookieJar_LastWriteWins(t *testing.T) {
	jar := NewCookieJar()
	jar.StoreFrom(setCookieHeader("a=1", "b=2"))
	jar.StoreFrom(setCookieHeader("a=3"))

	if jar.Len() != 2 {
		t.Fatalf("expected 2 cookies, got %d", jar.Len())
	}
	header, _ := jar.RenderHeader(nil)
	if header != "a=3; b=2" {
		t.Errorf("expected a to keep its slot with the new value, got %q", header)
	}
	if names := jar.Names(); !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("expected names [a b], got %v", names)
	}
}

func TestCookieJar_PathCaseInsensitive(t *testing.T) {
	jar := NewCookieJar()
	jar.StoreFrom(setCookieHeader("sid=1; path=/x; Secure"))

	c, _ := jar.Get("sid")
	if !reflect.DeepEqual(c.Attributes, []string{"Secure"}) {
		t.Errorf("expected [Secure], got %v", c.Attributes)
	}
}

func TestCookieJar_MultiValueRendersFirst(t *testing.T) {
	jar := NewCookieJar()
	jar.StoreFrom(setCookieHeader("prefs=one&two%20three"))

	c, _ := jar.Get("prefs")
	if !reflect.DeepEqual(c.Values, []string{"one", "two three"}) {
		t.Errorf("unexpected values %v", c.Values)
	}
	header, _ := jar.RenderHeader(nil)
	if header != "prefs=one" {
		t.Errorf("expected prefs=one, got %q", header)
	}
}

func TestCookieJar_Empty(t *testing.T) {
	jar := NewCookieJar()
	jar.StoreFrom(http.Header{})

	if _, ok := jar.RenderHeader(nil); ok {
		t.Error("expected no header for an empty jar")
	}
	if _, ok := jar.RenderHeader([]string{}); ok {
		t.Error("expected no header for an empty jar and no additional cookies")
	}
}

func TestCookieJar_AdditionalCookies(t *testing.T) {
	tests := []struct {
		name       string
		setCookies []string
		additional []string
		want       string
	}{
		{
			name:       "additional only",
			additional: []string{"foo=bar"},
			want:       "foo=bar",
		},
		{
			name:       "stored then additional",
			setCookies: []string{"JSESSIONID=s1"},
			additional: []string{"foo=bar", "baz=qux"},
			want:       "JSESSIONID=s1; foo=bar; baz=qux",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jar := NewCookieJar()
			jar.StoreFrom(setCookieHeader(tt.setCookies...))
			got, ok := jar.RenderHeader(tt.additional)
			if !ok {
				t.Fatal("expected a cookie header")
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseSetCookie_Invalid(t *testing.T) {
	for _, line := range []string{"", "=value", "  ; Path=/"} {
		if _, ok := parseSetCookie(line); ok {
			t.Errorf("expected %q to be rejected", line)
		}
	}
}
