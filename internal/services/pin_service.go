package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/sweetcrumb/cakeshop-api/internal/models"
	"github.com/sweetcrumb/cakeshop-api/pkg/auth"
)

// AttemptLedger defines the interface for attempt ledger database operations
type AttemptLedger interface {
	Get(ctx context.Context, clientKey string) (*models.AttemptRecord, error)
	RecordFailure(ctx context.Context, clientKey string, threshold int, lockout time.Duration) (int, *time.Time, error)
	ResetOnSuccess(ctx context.Context, clientKey string) error
}

// Outcome tags the result of a single PIN validation
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeRejected
	OutcomeLocked
)

// ValidationResult is the outcome of one validation request.
// AttemptsRemaining is meaningful only for OutcomeRejected; RemainingMinutes
// and JustLocked only for OutcomeLocked.
type ValidationResult struct {
	Outcome           Outcome
	AttemptsRemaining int
	RemainingMinutes  int
	JustLocked        bool
}

// LockoutConfig holds the brute-force lockout policy
type LockoutConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// PinService validates submitted PINs against the configured admin secret,
// enforcing a per-client lockout via the attempt ledger.
type PinService struct {
	ledger AttemptLedger
	secret *auth.Secret
	config LockoutConfig
	logger *slog.Logger
}

// NewPinService creates a new PinService
func NewPinService(ledger AttemptLedger, secret *auth.Secret, config LockoutConfig, logger *slog.Logger) *PinService {
	return &PinService{
		ledger: ledger,
		secret: secret,
		config: config,
		logger: logger,
	}
}

// Validate checks a submitted PIN for a client.
// An active lockout is checked first and short-circuits the PIN comparison, so
// a correct PIN cannot end a lockout early. Ledger failures are returned as
// errors; every other path produces a ValidationResult.
func (s *PinService) Validate(ctx context.Context, submittedPin, clientKey string) (*ValidationResult, error) {
	rec, err := s.ledger.Get(ctx, clientKey)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to read attempt ledger",
			slog.String("client_key", clientKey),
			slog.Any("error", err))
		return nil, err
	}

	now := time.Now()

	if rec.IsLocked(now) {
		remaining := remainingWholeMinutes(*rec.LockedUntil, now)
		s.logger.Warn("validation rejected, client locked out",
			slog.String("client_key", clientKey),
			slog.Int("remaining_minutes", remaining))
		return &ValidationResult{Outcome: OutcomeLocked, RemainingMinutes: remaining}, nil
	}

	if s.secret.Matches(submittedPin) {
		if rec != nil {
			if err := s.ledger.ResetOnSuccess(ctx, clientKey); err != nil {
				s.logger.Error("failed to reset attempt record",
					slog.String("client_key", clientKey),
					slog.Any("error", err))
				return nil, err
			}
		}
		s.logger.Info("pin validated", slog.String("client_key", clientKey))
		return &ValidationResult{Outcome: OutcomeAccepted}, nil
	}

	newCount, lockedUntil, err := s.ledger.RecordFailure(ctx, clientKey, s.config.MaxAttempts, s.config.LockoutDuration)
	if err != nil {
		s.logger.Error("failed to record attempt",
			slog.String("client_key", clientKey),
			slog.Any("error", err))
		return nil, err
	}

	if lockedUntil != nil {
		s.logger.Warn("client locked out",
			slog.String("client_key", clientKey),
			slog.Int("attempt_count", newCount),
			slog.Time("locked_until", *lockedUntil))
		// A freshly triggered lockout reports the full window
		return &ValidationResult{
			Outcome:          OutcomeLocked,
			RemainingMinutes: int(s.config.LockoutDuration.Minutes()),
			JustLocked:       true,
		}, nil
	}

	s.logger.Info("invalid pin attempt",
		slog.String("client_key", clientKey),
		slog.Int("attempt_count", newCount))
	return &ValidationResult{
		Outcome:           OutcomeRejected,
		AttemptsRemaining: s.config.MaxAttempts - newCount,
	}, nil
}

// remainingWholeMinutes rounds the time until expiry up to whole minutes
func remainingWholeMinutes(until, now time.Time) int {
	return int(math.Ceil(until.Sub(now).Minutes()))
}
