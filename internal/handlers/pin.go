package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sweetcrumb/cakeshop-api/internal/services"
	pkghttp "github.com/sweetcrumb/cakeshop-api/pkg/http"
	pkglogger "github.com/sweetcrumb/cakeshop-api/pkg/logger"
)

// PinServiceInterface defines the interface for PIN validation business logic
type PinServiceInterface interface {
	Validate(ctx context.Context, submittedPin, clientKey string) (*services.ValidationResult, error)
}

// PinHandler handles PIN validation HTTP requests
type PinHandler struct {
	service  PinServiceInterface
	audit    *pkglogger.AuditLogger
	ipConfig *pkghttp.IPConfig
}

// NewPinHandler creates a new PinHandler
func NewPinHandler(service PinServiceInterface, audit *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig) *PinHandler {
	return &PinHandler{
		service:  service,
		audit:    audit,
		ipConfig: ipConfig,
	}
}

// ValidatePinRequest represents the request body posted by the storefront
type ValidatePinRequest struct {
	Pin      string `json:"pin" validate:"required"`
	ClientID string `json:"clientId" validate:"required"`
}

// ValidatePinResponse is the wire contract the storefront expects
type ValidatePinResponse struct {
	Success           bool   `json:"success"`
	Error             string `json:"error,omitempty"`
	AttemptsRemaining *int   `json:"attemptsRemaining,omitempty"`
	Locked            bool   `json:"locked,omitempty"`
}

// ValidatePin handles admin PIN validation
// @Summary Validate the admin PIN for a client
// @Accept json
// @Param request body ValidatePinRequest true "Validation request"
// @Produce json
// @Success 200 {object} ValidatePinResponse
// @Failure 401 {object} ValidatePinResponse
// @Failure 429 {object} ValidatePinResponse
// @Failure 500 {object} ValidatePinResponse
// @Router /validate-pin [post]
func (h *PinHandler) ValidatePin(w http.ResponseWriter, r *http.Request) {
	var req ValidatePinRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteJSON(w, http.StatusBadRequest, ValidatePinResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	// Trim before validating so a whitespace-only clientId fails required
	// instead of reaching the ledger as an empty key
	req.ClientID = strings.TrimSpace(req.ClientID)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteJSON(w, http.StatusBadRequest, ValidatePinResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	// Network IP is logged for audit only; lockout is keyed by the
	// client-supplied identifier
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Validate(r.Context(), req.Pin, req.ClientID)
	if err != nil {
		// Infrastructure failure: generic message, no internal detail
		pkghttp.WriteJSON(w, http.StatusInternalServerError, ValidatePinResponse{
			Success: false,
			Error:   "Server error",
		})
		return
	}

	switch result.Outcome {
	case services.OutcomeAccepted:
		h.audit.LogPinAttempt(pkglogger.PinAttemptEvent{
			ClientKey: req.ClientID,
			IPAddress: ipAddress,
			Success:   true,
		})
		pkghttp.WriteJSON(w, http.StatusOK, ValidatePinResponse{Success: true})

	case services.OutcomeLocked:
		h.audit.LogPinAttempt(pkglogger.PinAttemptEvent{
			ClientKey: req.ClientID,
			IPAddress: ipAddress,
			Locked:    true,
		})
		var msg string
		if result.JustLocked {
			msg = fmt.Sprintf("Too many failed attempts. Locked out for %d minutes.", result.RemainingMinutes)
		} else {
			msg = fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", result.RemainingMinutes)
		}
		pkghttp.WriteJSON(w, http.StatusTooManyRequests, ValidatePinResponse{
			Success: false,
			Error:   msg,
			Locked:  true,
		})

	default:
		h.audit.LogPinAttempt(pkglogger.PinAttemptEvent{
			ClientKey:         req.ClientID,
			IPAddress:         ipAddress,
			AttemptsRemaining: result.AttemptsRemaining,
		})
		remaining := result.AttemptsRemaining
		pkghttp.WriteJSON(w, http.StatusUnauthorized, ValidatePinResponse{
			Success:           false,
			Error:             fmt.Sprintf("Invalid PIN. %d attempts remaining.", remaining),
			AttemptsRemaining: &remaining,
		})
	}
}
