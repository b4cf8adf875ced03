package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"storefront-service/pkg/session"
)

type stubResolver struct {
	sessions map[string]*session.Session
	err      error
}

func (s *stubResolver) Resolve(_ context.Context, token string) (*session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.sessions[token]; ok {
		return v, nil
	}
	return nil, session.ErrInvalidToken
}

func newEngine(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestContextMiddleware(), MetricsMiddleware())
	admin := r.Group("/admin", SessionAuthMiddleware(resolver))
	admin.GET("/me", func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, s.Username)
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]*session.Session{
		"good": {ID: "s1", Username: "admin"},
	}}
	r := newEngine(resolver)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token good", http.StatusUnauthorized},
		{"unknown", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestSessionAuthRevoked(t *testing.T) {
	r := newEngine(&stubResolver{err: session.ErrSessionNotFound})
	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session expired")
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newEngine(&stubResolver{})
	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), "req-42")
}
