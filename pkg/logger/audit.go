package logger

import (
	"context"
	"log/slog"
	"time"
)

// PinAttemptEvent describes one PIN validation attempt for audit purposes.
// The submitted PIN itself is never part of the event.
type PinAttemptEvent struct {
	ClientKey         string
	IPAddress         string
	Success           bool
	Locked            bool
	AttemptsRemaining int
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogPinAttempt logs the outcome of a PIN validation attempt
func (al *AuditLogger) LogPinAttempt(event PinAttemptEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "pin_validation"),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.ClientKey != "" {
		attrs = append(attrs, slog.String("client_key", SanitizedClientKey(event.ClientKey)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Locked {
		attrs = append(attrs, slog.Bool("locked", true))
	}
	if !event.Success && !event.Locked {
		attrs = append(attrs, slog.Int("attempts_remaining", event.AttemptsRemaining))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}
