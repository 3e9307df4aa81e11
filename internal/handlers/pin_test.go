package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetcrumb/cakeshop-api/internal/handlers"
	"github.com/sweetcrumb/cakeshop-api/internal/services"
	pkglogger "github.com/sweetcrumb/cakeshop-api/pkg/logger"
)

func newPinHandler(mock *handlers.MockPinService) *handlers.PinHandler {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	audit := pkglogger.NewAuditLogger(logger)
	return handlers.NewPinHandler(mock, audit, nil)
}

func TestValidatePin_Accepted(t *testing.T) {
	mock := &handlers.MockPinService{
		ValidateFunc: func(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error) {
			assert.Equal(t, "482913", submittedPin)
			assert.Equal(t, "client_1", clientKey)
			return &services.ValidationResult{Outcome: services.OutcomeAccepted}, nil
		},
	}

	handler := newPinHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/validate-pin", handlers.ValidatePinRequest{
		Pin:      "482913",
		ClientID: "client_1",
	})

	w := httptest.NewRecorder()
	handler.ValidatePin(w, req)

	var resp handlers.ValidatePinResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Nil(t, resp.AttemptsRemaining)
	assert.False(t, resp.Locked)
}

func TestValidatePin_Rejected(t *testing.T) {
	mock := &handlers.MockPinService{
		ValidateFunc: func(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error) {
			return &services.ValidationResult{
				Outcome:           services.OutcomeRejected,
				AttemptsRemaining: 3,
			}, nil
		},
	}

	handler := newPinHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/validate-pin", handlers.ValidatePinRequest{
		Pin:      "000000",
		ClientID: "client_1",
	})

	w := httptest.NewRecorder()
	handler.ValidatePin(w, req)

	var resp handlers.ValidatePinResponse
	handlers.AssertJSONResponse(t, w, 401, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid PIN. 3 attempts remaining.", resp.Error)
	require.NotNil(t, resp.AttemptsRemaining)
	assert.Equal(t, 3, *resp.AttemptsRemaining)
	assert.False(t, resp.Locked)
}

func TestValidatePin_LockoutJustTriggered(t *testing.T) {
	mock := &handlers.MockPinService{
		ValidateFunc: func(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error) {
			return &services.ValidationResult{
				Outcome:          services.OutcomeLocked,
				RemainingMinutes: 15,
				JustLocked:       true,
			}, nil
		},
	}

	handler := newPinHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/validate-pin", handlers.ValidatePinRequest{
		Pin:      "000000",
		ClientID: "client_1",
	})

	w := httptest.NewRecorder()
	handler.ValidatePin(w, req)

	var resp handlers.ValidatePinResponse
	handlers.AssertJSONResponse(t, w, 429, &resp)
	assert.False(t, resp.Success)
	assert.True(t, resp.Locked)
	assert.Equal(t, "Too many failed attempts. Locked out for 15 minutes.", resp.Error)
	assert.Nil(t, resp.AttemptsRemaining)
}

func TestValidatePin_LockoutStillActive(t *testing.T) {
	mock := &handlers.MockPinService{
		ValidateFunc: func(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error) {
			return &services.ValidationResult{
				Outcome:          services.OutcomeLocked,
				RemainingMinutes: 7,
			}, nil
		},
	}

	handler := newPinHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/validate-pin", handlers.ValidatePinRequest{
		Pin:      "482913",
		ClientID: "client_1",
	})

	w := httptest.NewRecorder()
	handler.ValidatePin(w, req)

	var resp handlers.ValidatePinResponse
	handlers.AssertJSONResponse(t, w, 429, &resp)
	assert.True(t, resp.Locked)
	assert.Equal(t, "Too many failed attempts. Try again in 7 minutes.", resp.Error)
}

func TestValidatePin_ServerError(t *testing.T) {
	mock := &handlers.MockPinService{
		ValidateFunc: func(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error) {
			return nil, errors.New("pq: connection refused")
		},
	}

	handler := newPinHandler(mock)
	req := handlers.NewTestRequest(t, "POST", "/validate-pin", handlers.ValidatePinRequest{
		Pin:      "482913",
		ClientID: "client_1",
	})

	w := httptest.NewRecorder()
	handler.ValidatePin(w, req)

	var resp handlers.ValidatePinResponse
	handlers.AssertJSONResponse(t, w, 500, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Server error", resp.Error)
	// No internal detail leaks to the client
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestValidatePin_AuditNeverLogsPin(t *testing.T) {
	outcomes := []struct {
		name   string
		result *services.ValidationResult
	}{
		{"accepted", &services.ValidationResult{Outcome: services.OutcomeAccepted}},
		{"rejected", &services.ValidationResult{Outcome: services.OutcomeRejected, AttemptsRemaining: 4}},
		{"locked", &services.ValidationResult{Outcome: services.OutcomeLocked, RemainingMinutes: 15, JustLocked: true}},
	}

	const pin = "482913"
	const clientID = "client_1700000000000_abcdef123456"

	for _, tc := range outcomes {
		t.Run(tc.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			audit := pkglogger.NewAuditLogger(slog.New(slog.NewJSONHandler(&logBuf, nil)))

			mock := &handlers.MockPinService{
				ValidateFunc: func(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error) {
					return tc.result, nil
				},
			}
			handler := handlers.NewPinHandler(mock, audit, nil)

			req := handlers.NewTestRequest(t, "POST", "/validate-pin", handlers.ValidatePinRequest{
				Pin:      pin,
				ClientID: clientID,
			})

			w := httptest.NewRecorder()
			handler.ValidatePin(w, req)

			logged := logBuf.String()
			require.NotEmpty(t, logged, "every outcome produces an audit entry")
			assert.NotContains(t, logged, pin, "submitted pin must never reach the audit log")
			assert.NotContains(t, logged, clientID, "full client key must be masked in the audit log")
			assert.Contains(t, logged, pkglogger.SanitizedClientKey(clientID))
		})
	}
}

func TestValidatePin_InvalidBody(t *testing.T) {
	handler := newPinHandler(&handlers.MockPinService{})
	req := httptest.NewRequest("POST", "/validate-pin", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ValidatePin(w, req)

	var resp handlers.ValidatePinResponse
	handlers.AssertJSONResponse(t, w, 400, &resp)
	assert.False(t, resp.Success)
}

func TestValidatePin_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		body handlers.ValidatePinRequest
	}{
		{"missing pin", handlers.ValidatePinRequest{ClientID: "client_1"}},
		{"missing clientId", handlers.ValidatePinRequest{Pin: "482913"}},
		{"whitespace clientId", handlers.ValidatePinRequest{Pin: "482913", ClientID: "   "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			mock := &handlers.MockPinService{
				ValidateFunc: func(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error) {
					called = true
					return &services.ValidationResult{Outcome: services.OutcomeAccepted}, nil
				},
			}

			handler := newPinHandler(mock)
			req := handlers.NewTestRequest(t, "POST", "/validate-pin", tc.body)

			w := httptest.NewRecorder()
			handler.ValidatePin(w, req)

			assert.Equal(t, 400, w.Code)
			assert.False(t, called, "service should not be reached on invalid input")
		})
	}
}
