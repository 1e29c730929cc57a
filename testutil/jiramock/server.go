// Package jiramock is a fake Jira REST server for end-to-end tests.
//
// It serves the session resource (/rest/auth/1/session), /rest/api/2/myself,
// /rest/api/2/issue and issue attachments under an optional context path. Requests are
// authenticated by session cookie, Basic credentials or a query-string JWT,
// and every request is recorded for assertions.
//
//	srv := jiramock.New(t, jiramock.WithCredentials("admin", "secret"))
//	cfg := httpclient.Config{Site: srv.URL(), Username: "admin", Password: "secret"}
package jiramock

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restauth/auth/jwt"
)

// SessionCookie is the name of the session cookie set on login.
const SessionCookie = "JSESSIONID"

func init() {
	gin.SetMode(gin.TestMode)
}

// Request is a recorded incoming request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Server is a running fake Jira instance.
type Server struct {
	ts          *httptest.Server
	contextPath string
	username    string
	password    string
	issuer      string
	secret      string
	sessionID   string
	tlsConfig   *tls.Config
	extraCookie *http.Cookie

	mu       sync.Mutex
	sessions map[string]string
	logins   int
	requests []Request
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the only username and password accepted.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username, s.password = username, password
	}
}

// WithContextPath mounts every route under path, e.g. "/jira".
func WithContextPath(path string) Option {
	return func(s *Server) {
		s.contextPath = path
	}
}

// WithSharedSecret accepts query-string tokens issued by issuer and signed with secret.
func WithSharedSecret(issuer, secret string) Option {
	return func(s *Server) {
		s.issuer, s.secret = issuer, secret
	}
}

// WithSessionID fixes the value of the session cookie issued on login.
func WithSessionID(id string) Option {
	return func(s *Server) {
		s.sessionID = id
	}
}

// WithLoginCookie adds a second cookie to successful login responses.
func WithLoginCookie(c *http.Cookie) Option {
	return func(s *Server) {
		s.extraCookie = c
	}
}

// WithTLS serves over TLS with cfg.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// New starts a server that is closed when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{sessions: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}

	s.ts = httptest.NewUnstartedServer(s.routes())
	if s.tlsConfig != nil {
		s.ts.TLS = s.tlsConfig
		s.ts.StartTLS()
	} else {
		s.ts.Start()
	}
	t.Cleanup(s.ts.Close)
	return s
}

// URL returns the base URL without the context path.
func (s *Server) URL() string {
	return s.ts.URL
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request. It fails t when none arrived.
func (s *Server) LastRequest(t testing.TB) Request {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("jiramock: no requests received")
	}
	return reqs[len(reqs)-1]
}

// ActiveSessions returns the number of sessions that are logged in.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(s.record)

	api := engine.Group(s.contextPath + "/rest")
	api.POST("/auth/1/session", s.login)
	api.GET("/auth/1/session", s.requireAuth, s.currentSession)
	api.DELETE("/auth/1/session", s.logout)
	api.GET("/api/2/myself", s.requireAuth, s.myself)
	api.GET("/api/2/issue/:key", s.requireAuth, s.getIssue)
	api.POST("/api/2/issue", s.requireAuth, s.createIssue)
	api.POST("/api/2/issue/:key/attachments", s.requireAuth, s.addAttachments)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("Resource not found"))
	})
	return engine
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Header:   c.Request.Header.Clone(),
		Body:     body,
	})
	s.mu.Unlock()
	c.Next()
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if req.Username != s.username || req.Password != s.password {
		c.JSON(http.StatusUnauthorized, errorBody("Login failed"))
		return
	}

	s.mu.Lock()
	s.logins++
	id := s.sessionID
	if id == "" {
		id = fmt.Sprintf("session-%d", s.logins)
	}
	s.sessions[id] = req.Username
	count := s.logins
	s.mu.Unlock()

	http.SetCookie(c.Writer, &http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true})
	if s.extraCookie != nil {
		http.SetCookie(c.Writer, s.extraCookie)
	}
	c.JSON(http.StatusOK, gin.H{
		"session":   gin.H{"name": SessionCookie, "value": id},
		"loginInfo": gin.H{"loginCount": count},
	})
}

func (s *Server) logout(c *gin.Context) {
	id, err := c.Cookie(SessionCookie)
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, errorBody("You are not authenticated"))
		return
	}
	c.Status(http.StatusNoContent)
}

// requireAuth accepts a live session cookie, Basic credentials or a valid
// query-string token, in that order.
func (s *Server) requireAuth(c *gin.Context) {
	if user, ok := s.authenticate(c); ok {
		c.Set("user", user)
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("You are not authenticated"))
}

func (s *Server) authenticate(c *gin.Context) (string, bool) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		user, ok := s.sessions[id]
		s.mu.Unlock()
		if ok {
			return user, true
		}
	}
	if u, p, ok := c.Request.BasicAuth(); ok && s.username != "" && u == s.username && p == s.password {
		return u, true
	}
	if token := c.Query("jwt"); token != "" && s.secret != "" {
		return s.verifyToken(c.Request, token)
	}
	return "", false
}

func (s *Server) verifyToken(r *http.Request, token string) (string, bool) {
	svc, err := jwt.NewService(&jwt.Config{Secret: s.secret, Issuer: s.issuer, Audience: s.ts.URL}, jwt.NewRequestClaims)
	if err != nil {
		return "", false
	}
	claims, err := svc.Parse(token)
	if err != nil {
		return "", false
	}
	if claims.QSH != jwt.QueryStringHash(r.Method, s.ts.URL+r.URL.RequestURI(), s.ts.URL) {
		return "", false
	}
	return claims.Issuer, true
}

func (s *Server) currentSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": c.GetString("user"), "self": s.ts.URL + c.Request.URL.Path})
}

func (s *Server) myself(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": c.GetString("user"), "active": true})
}

func (s *Server) getIssue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "fields": gin.H{"summary": "Fake issue"}})
}

func (s *Server) createIssue(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": "10000", "key": "TEST-1"})
}

func (s *Server) addAttachments(c *gin.Context) {
	if c.GetHeader("X-Atlassian-Token") != "no-check" {
		c.JSON(http.StatusForbidden, errorBody("XSRF check failed"))
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	out := make([]gin.H, 0, len(form.File["file"]))
	for i, fh := range form.File["file"] {
		out = append(out, gin.H{
			"id":       fmt.Sprintf("%d", 10000+i),
			"filename": fh.Filename,
			"size":     fh.Size,
			"mimeType": fh.Header.Get("Content-Type"),
		})
	}
	c.JSON(http.StatusOK, out)
}

func errorBody(msg string) gin.H {
	return gin.H{"errorMessages": []string{msg}, "errors": gin.H{}}
}
