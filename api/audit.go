package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditLoginSuccess AuditEvent = "login_success"
	AuditLoginFailure AuditEvent = "login_failure"
	AuditRateLimited  AuditEvent = "rate_limited"
	AuditLogout       AuditEvent = "logout"
	AuditCSRFRejected AuditEvent = "csrf_rejected"
)

// auditLogger wraps slog.Logger for structured security audit logging,
// optionally mirroring each event into the persistent audit trail.
type auditLogger struct {
	logger *slog.Logger
	store  *AuditStore
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, reason string, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if reason != "" {
		baseAttrs = append(baseAttrs, slog.String("reason", reason))
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)

	if al.store != nil {
		// Persistence is best effort: an audit write failure must never
		// turn into a request failure.
		if err := al.store.Append(event, r.RemoteAddr, reason); err != nil {
			al.logger.LogAttrs(r.Context(), slog.LevelWarn, "audit store append failed",
				slog.String("error", err.Error()))
		}
	}
}

// logEvent records a successful security action.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	al.log(event, r, "", attrs...)
}

// logFailure records a rejected request with the internal reason. The
// reason stays in the audit trail; responses never carry it.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, attrs ...slog.Attr) {
	al.log(event, r, reason, attrs...)
}
