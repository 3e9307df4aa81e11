package models

import "time"

// AttemptRecord tracks consecutive failed PIN validations for one client.
// A missing record means the client has no prior failures.
type AttemptRecord struct {
	ClientKey     string     `db:"client_key"`
	AttemptCount  int        `db:"attempt_count"`
	LastAttemptAt time.Time  `db:"last_attempt_at"`
	LockedUntil   *time.Time `db:"locked_until"`
}

// IsLocked reports whether the record carries an active lockout at the given time.
func (r *AttemptRecord) IsLocked(now time.Time) bool {
	return r != nil && r.LockedUntil != nil && r.LockedUntil.After(now)
}

// LedgerStats aggregates attempt ledger counts for operational logging
type LedgerStats struct {
	TotalClients  int64
	LockedClients int64
}
