package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func doCORS(t *testing.T, cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Use(CORS(cfg))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORSDefaultsToReadOnlyMethods(t *testing.T) {
	rec := doCORS(t, CORSConfig{AllowOrigins: []string{"*"}}, http.MethodGet, "https://example.com")
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Fatalf("Allow-Methods = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := doCORS(t, CORSConfig{AllowOrigins: []string{"*"}}, http.MethodOptions, "https://example.com")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Max-Age") == "" {
		t.Fatalf("preflight should be cacheable")
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	rec := doCORS(t, CORSConfig{AllowOrigins: []string{"https://allowed.example"}}, http.MethodGet, "https://other.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected Allow-Origin %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("request should still pass through, status = %d", rec.Code)
	}
}
