package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGinZapRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinZapLogger(), GinZapRecovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestRequestIDAndTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), TraceMiddleware())

	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = TraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if got := w.Header().Get("X-Trace-ID"); got != "trace-123" {
		t.Errorf("X-Trace-ID = %q, want inbound id", got)
	}
	if seen != "trace-123" {
		t.Errorf("request context trace id = %q", seen)
	}
}

func TestCorsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorsMiddleware())
	r.DELETE("/api/features/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/features/1", nil)
	req.Header.Set("Origin", "http://admin.local")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	r.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("preflight not answered, headers: %v", w.Header())
	}
}
