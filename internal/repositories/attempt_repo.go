package repositories

import (
	"context"
	"time"

	"github.com/sweetcrumb/cakeshop-api/internal/database"
	"github.com/sweetcrumb/cakeshop-api/internal/models"
)

// AttemptRepository handles database operations for the PIN attempt ledger
type AttemptRepository struct {
	db *database.DB
}

// NewAttemptRepository creates a new AttemptRepository
func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Get returns the attempt record for a client key.
// Returns models.ErrNotFound when the client has no recorded failures.
func (r *AttemptRepository) Get(ctx context.Context, clientKey string) (*models.AttemptRecord, error) {
	query := `
		SELECT client_key, attempt_count, last_attempt_at, locked_until
		FROM admin_attempts
		WHERE client_key = $1
	`

	var rec models.AttemptRecord
	err := r.db.Pool.QueryRow(ctx, query, clientKey).Scan(
		&rec.ClientKey,
		&rec.AttemptCount,
		&rec.LastAttemptAt,
		&rec.LockedUntil,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rec, nil
}

// RecordFailure increments the failure count for a client, creating the record
// on first failure. The increment and the lockout decision happen in a single
// statement so two concurrent failures can never leave locked_until set without
// a matching attempt_count. Returns the new count and the lockout expiry, if set.
func (r *AttemptRepository) RecordFailure(ctx context.Context, clientKey string, threshold int, lockout time.Duration) (int, *time.Time, error) {
	query := `
		INSERT INTO admin_attempts (client_key, attempt_count, last_attempt_at, locked_until)
		VALUES ($1, 1, now(), CASE WHEN 1 >= $2 THEN now() + make_interval(secs => $3) END)
		ON CONFLICT (client_key) DO UPDATE
		SET attempt_count   = admin_attempts.attempt_count + 1,
		    last_attempt_at = now(),
		    locked_until    = CASE WHEN admin_attempts.attempt_count + 1 >= $2
		                           THEN now() + make_interval(secs => $3)
		                      END
		RETURNING attempt_count, locked_until
	`

	var count int
	var lockedUntil *time.Time
	err := r.db.Pool.QueryRow(ctx, query, clientKey, threshold, lockout.Seconds()).Scan(&count, &lockedUntil)
	if err != nil {
		return 0, nil, database.MapPostgresError(err)
	}

	return count, lockedUntil, nil
}

// ResetOnSuccess clears the failure count and any lockout for a client.
// A no-op when the client has no record.
func (r *AttemptRepository) ResetOnSuccess(ctx context.Context, clientKey string) error {
	query := `
		UPDATE admin_attempts
		SET attempt_count = 0, locked_until = NULL
		WHERE client_key = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, clientKey)
	return database.MapPostgresError(err)
}

// Stats returns aggregate ledger counts for operational logging
func (r *AttemptRepository) Stats(ctx context.Context) (*models.LedgerStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE locked_until IS NOT NULL AND locked_until > now())
		FROM admin_attempts
	`

	var stats models.LedgerStats
	err := r.db.Pool.QueryRow(ctx, query).Scan(&stats.TotalClients, &stats.LockedClients)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &stats, nil
}
