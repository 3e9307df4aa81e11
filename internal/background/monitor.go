package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/sweetcrumb/cakeshop-api/internal/models"
)

// LedgerStatsSource provides aggregate attempt ledger counts
type LedgerStatsSource interface {
	Stats(ctx context.Context) (*models.LedgerStats, error)
}

// LockoutMonitor periodically logs attempt ledger statistics so operators can
// see lockout pressure without querying the database. It never mutates the
// ledger; stale records simply age out of relevance.
type LockoutMonitor struct {
	source   LedgerStatsSource
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewLockoutMonitor creates a new lockout monitor
func NewLockoutMonitor(source LedgerStatsSource, logger *slog.Logger, interval time.Duration) *LockoutMonitor {
	return &LockoutMonitor{
		source:   source,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reporting task
func (lm *LockoutMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(lm.interval)
	defer ticker.Stop()

	// Report once on startup
	lm.report(ctx)

	for {
		select {
		case <-ticker.C:
			lm.report(ctx)
		case <-lm.stopCh:
			lm.logger.Info("lockout monitor stopped")
			return
		case <-ctx.Done():
			lm.logger.Info("lockout monitor context cancelled")
			return
		}
	}
}

func (lm *LockoutMonitor) report(ctx context.Context) {
	reportCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats, err := lm.source.Stats(reportCtx)
	if err != nil {
		lm.logger.Error("failed to read ledger stats", slog.Any("error", err))
		return
	}

	lm.logger.Info("attempt ledger stats",
		slog.Int64("total_clients", stats.TotalClients),
		slog.Int64("locked_clients", stats.LockedClients))
}

// Stop signals the monitor to stop
func (lm *LockoutMonitor) Stop() {
	close(lm.stopCh)
}
