package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sweetcrumb/cakeshop-api/internal/handlers"
	"github.com/sweetcrumb/cakeshop-api/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, pinHandler *handlers.PinHandler) {
	// Blanket per-IP limit on top of the per-client lockout
	rateLimitConfig := middleware.DefaultValidationRateLimit()

	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/validate-pin", pinHandler.ValidatePin)
}
