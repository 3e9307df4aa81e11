package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
}

func TestCORS_PreflightReturnsBodylessOK(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://shop.example.com"}
	handler := CORS(config)(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/validate-pin", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status: got %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("preflight body should be empty, got %q", w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
}

func TestCORS_AllowedOriginGetsHeaders(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://shop.example.com"}
	handler := CORS(config)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/validate-pin", nil)
	req.Header.Set("Origin", "https://shop.example.com")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
	if w.Body.Len() == 0 {
		t.Error("non-preflight request should reach the handler")
	}
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://shop.example.com"}
	handler := CORS(config)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/validate-pin", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin should get no CORS headers, got %q", got)
	}
}

func TestCORS_WildcardOrigin(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"*"}
	handler := CORS(config)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/validate-pin", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.com" {
		t.Errorf("wildcard config should echo the origin, got %q", got)
	}
}
