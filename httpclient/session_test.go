package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kbukum/restauth/testutil/jiramock"
)

func TestEstablishSession_EndToEnd(t *testing.T) {
	srv := jiramock.New(t,
		jiramock.WithCredentials("u", "p"),
		jiramock.WithContextPath("/jira"),
		jiramock.WithSessionID("abc123"),
	)
	c := newTestClient(t, Config{
		Site:        srv.URL(),
		ContextPath: "/jira",
		Username:    "u",
		Password:    "p",
		UseCookies:  true,
	})

	resp, err := c.EstablishSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}

	login := srv.LastRequest(t)
	if login.Method != http.MethodPost || login.Path != "/jira/rest/auth/1/session" {
		t.Errorf("unexpected login request %s %s", login.Method, login.Path)
	}
	if string(login.Body) != `{"username":"u","password":"p"}` {
		t.Errorf("unexpected login body %s", login.Body)
	}
	if ct := login.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
	if h := login.Header.Get("Authorization"); h != "" {
		t.Errorf("expected no Authorization header on login, got %q", h)
	}
	if !c.IsAuthenticated() {
		t.Error("expected IsAuthenticated after a successful login")
	}

	resp, err = c.Execute(context.Background(), Request{Method: MethodGet, URL: "/jira/rest/api/2/myself"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}

	next := srv.LastRequest(t)
	if h := next.Header.Get("Cookie"); h != "JSESSIONID=abc123" {
		t.Errorf("expected Cookie JSESSIONID=abc123, got %q", h)
	}
	if h := next.Header.Get("Authorization"); h != "" {
		t.Errorf("expected no Authorization header after login, got %q", h)
	}

	var me struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body, &me); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if me.Name != "u" {
		t.Errorf("expected myself u, got %q", me.Name)
	}

	if cfg := c.Config(); cfg.Username != "" || cfg.Password != "" {
		t.Error("expected credentials to be cleared after login")
	}
}

func TestEstablishSession_OnlyOnce(t *testing.T) {
	srv := jiramock.New(t, jiramock.WithCredentials("u", "p"))
	c := newTestClient(t, Config{Site: srv.URL(), Username: "u", Password: "p", UseCookies: true})

	if _, err := c.EstablishSession(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := len(srv.Requests())

	_, err := c.EstablishSession(context.Background())
	if !IsConfig(err) {
		t.Errorf("expected config error on second login, got %v", err)
	}
	if after := len(srv.Requests()); after != before {
		t.Errorf("expected no request for the second login, got %d", after-before)
	}
}

func TestEstablishSession_NoCredentials(t *testing.T) {
	srv := jiramock.New(t)
	c := newTestClient(t, Config{Site: srv.URL(), UseCookies: true})

	_, err := c.EstablishSession(context.Background())
	if !IsConfig(err) {
		t.Errorf("expected config error, got %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestEstablishSession_Rejected(t *testing.T) {
	srv := jiramock.New(t, jiramock.WithCredentials("u", "right"))
	c := newTestClient(t, Config{Site: srv.URL(), Username: "u", Password: "wrong", UseCookies: true})

	resp, err := c.EstablishSession(context.Background())
	if err != nil {
		t.Fatalf("expected no error for a rejected login, got %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
	if c.IsAuthenticated() {
		t.Error("expected IsAuthenticated=false")
	}

	// Credentials are gone even though the login failed.
	resp, err = c.Execute(context.Background(), Request{Method: MethodGet, URL: "/rest/api/2/myself"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h := srv.LastRequest(t).Header.Get("Authorization"); h != "" {
		t.Errorf("expected no Authorization header, got %q", h)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestEstablishSession_MultipleCookies(t *testing.T) {
	srv := jiramock.New(t,
		jiramock.WithCredentials("u", "p"),
		jiramock.WithSessionID("s1"),
		jiramock.WithLoginCookie(&http.Cookie{Name: "atlassian.xsrf.token", Value: "x1", Path: "/"}),
	)
	c := newTestClient(t, Config{
		Site:              srv.URL(),
		Username:          "u",
		Password:          "p",
		UseCookies:        true,
		AdditionalCookies: []string{"seraph.rememberme.cookie=r1"},
	})

	if _, err := c.EstablishSession(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Execute(context.Background(), Request{Method: MethodGet, URL: "/rest/api/2/issue/TEST-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "JSESSIONID=s1; atlassian.xsrf.token=x1; seraph.rememberme.cookie=r1"
	if h := srv.LastRequest(t).Header.Get("Cookie"); h != want {
		t.Errorf("expected %q, got %q", want, h)
	}
}

func TestDeleteSession(t *testing.T) {
	srv := jiramock.New(t, jiramock.WithCredentials("u", "p"))
	c := newTestClient(t, Config{Site: srv.URL(), Username: "u", Password: "p", UseCookies: true})

	if _, err := c.EstablishSession(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := srv.ActiveSessions(); n != 1 {
		t.Fatalf("expected 1 active session, got %d", n)
	}

	resp, err := c.DeleteSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if n := srv.ActiveSessions(); n != 0 {
		t.Errorf("expected no active sessions, got %d", n)
	}
	if c.IsAuthenticated() {
		t.Error("expected IsAuthenticated=false after a 204")
	}

	resp, err = c.Execute(context.Background(), Request{Method: MethodGet, URL: "/rest/api/2/myself"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestTokenAuth_EndToEnd(t *testing.T) {
	srv := jiramock.New(t, jiramock.WithSharedSecret(testIssuer, testSecret))
	c := newTestClient(t, Config{
		Site:         srv.URL(),
		UseToken:     true,
		Issuer:       testIssuer,
		SharedSecret: testSecret,
	})

	paths := []string{"/rest/api/2/issue/10", "/rest/api/2/myself?expand=groups,applicationRoles"}
	for _, p := range paths {
		resp, err := c.Execute(context.Background(), Request{Method: MethodGet, URL: p})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", p, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", p, resp.StatusCode, resp.Body)
		}
	}

	bad := newTestClient(t, Config{
		Site:         srv.URL(),
		UseToken:     true,
		Issuer:       testIssuer,
		SharedSecret: "other",
	})
	resp, err := bad.Execute(context.Background(), Request{Method: MethodGet, URL: "/rest/api/2/myself"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for a wrong secret, got %d", resp.StatusCode)
	}
}

func TestEncodeSessionCredentials(t *testing.T) {
	body, err := encodeSessionCredentials(basicCredentials{username: "a<b>", password: `p"&`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"username":"a<b>","password":"p\"&"}` {
		t.Errorf("unexpected body %s", body)
	}
}
