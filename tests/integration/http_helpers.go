package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sweetcrumb/cakeshop-api/internal/database"
	"github.com/sweetcrumb/cakeshop-api/internal/handlers"
	middlewareCustom "github.com/sweetcrumb/cakeshop-api/internal/middleware"
	"github.com/sweetcrumb/cakeshop-api/internal/repositories"
	"github.com/sweetcrumb/cakeshop-api/internal/routes"
	"github.com/sweetcrumb/cakeshop-api/internal/services"
	pkgauth "github.com/sweetcrumb/cakeshop-api/pkg/auth"
	pkghttp "github.com/sweetcrumb/cakeshop-api/pkg/http"
	pkglogger "github.com/sweetcrumb/cakeshop-api/pkg/logger"
)

// TestServer wraps httptest.Server with a fully wired validation stack
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
}

// NewTestServer builds the production router over a real database with the
// given admin PIN and lockout policy.
func NewTestServer(db *database.DB, adminPin string, lockout services.LockoutConfig) (*TestServer, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	attemptRepo := repositories.NewAttemptRepository(db)

	secret, err := pkgauth.NewSecret(adminPin, "")
	if err != nil {
		return nil, err
	}

	pinService := services.NewPinService(attemptRepo, secret, lockout, logger)
	auditLogger := pkglogger.NewAuditLogger(logger)
	pinHandler := handlers.NewPinHandler(pinService, auditLogger, &pkghttp.IPConfig{})

	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = []string{"http://localhost:5173"}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(middlewareCustom.CORS(corsConfig))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, pinHandler)

	return &TestServer{
		Server: httptest.NewServer(r),
		DB:     db,
	}, nil
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// ValidatePin posts a validation request and returns the raw response
func (ts *TestServer) ValidatePin(pin, clientID string) (*http.Response, error) {
	body, err := json.Marshal(map[string]string{"pin": pin, "clientId": clientID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/validate-pin", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return http.DefaultClient.Do(req)
}

// Preflight issues a CORS preflight against the validation endpoint
func (ts *TestServer) Preflight(origin string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodOptions, ts.Server.URL+"/validate-pin", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	return http.DefaultClient.Do(req)
}

// ParseJSONResponse parses the response body into target and closes it
func ParseJSONResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ReadBody drains and returns the response body
func ReadBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return string(data), err
}
