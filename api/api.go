// Package api implements the request-security layer of the control-panel
// server: session lifecycle, password verification, CSRF double-submit
// protection and sliding-window rate limiting, composed into the gate
// every mutating endpoint sits behind.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/mleone/gatehouse/internal/config"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	verifier     *passwordVerifier
	sessions     *SessionStore
	limiter      *RateLimiter
	audit        *auditLogger
	trustedProxy string
	production   bool
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events. If not set, a
// default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithAuditStore mirrors audit events into a persistent store.
func WithAuditStore(store *AuditStore) Option {
	return func(a *API) {
		a.audit.store = store
	}
}

// WithSessionCapacity overrides the bound on live sessions.
func WithSessionCapacity(capacity int) Option {
	return func(a *API) {
		a.sessions = NewSessionStore(capacity, sessionTTL)
	}
}

// New creates a new API instance from the environment configuration.
func New(cfg config.Config, opts ...Option) *API {
	a := &API{
		verifier:     newPasswordVerifier(cfg),
		sessions:     NewSessionStore(defaultSessionCapacity, sessionTTL),
		limiter:      NewRateLimiter(),
		trustedProxy: cfg.TrustedProxy,
		production:   cfg.IsProduction(),
	}
	a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StartMaintenance launches the periodic sweepers for the session store
// and the rate limiter. The returned stop function cancels both; call it
// at shutdown.
func (a *API) StartMaintenance() (stop func()) {
	stopSessions := a.sessions.StartSweeper(sessionSweepInterval)
	stopLimiter := a.limiter.StartSweeper(rateLimitSweepInterval)
	return func() {
		stopSessions()
		stopLimiter()
	}
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.With(a.RateLimitMiddleware(loginMaxAttempts, loginWindow)).
		Post("/auth/login", a.Login)
	r.Get("/auth/session", a.SessionStatus)

	r.Group(func(r chi.Router) {
		r.Use(a.Protect)
		r.Post("/auth/logout", a.Logout)
		r.Get("/audit", a.ListAudit)
	})

	return r
}
