package api

import (
	"net/http"

	"github.com/mleone/gatehouse/internal/util"
)

// maxAuthBodySize bounds the login request body.
const maxAuthBodySize = 4 << 10

// Login handles POST /auth/login. On success it stores a fresh session
// token and issues the session cookie and the CSRF double-submit cookie
// together.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	if !a.verifier.enabled() {
		// Nothing to authenticate against; the panel runs open.
		writeJSON(w, http.StatusOK, OKResponse{OK: true})
		return
	}

	req, ok := decodeJSON[LoginRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if !a.verifier.verify(req.Password) {
		// The response does not say whether the password was wrong,
		// malformed configuration failed, or anything else.
		a.audit.logFailure(AuditLoginFailure, r, "password verification failed")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := a.sessions.NewToken()
	if err != nil {
		a.writeInternalError(w, err)
		return
	}
	csrfToken, err := util.RandomToken()
	if err != nil {
		a.writeInternalError(w, err)
		return
	}

	a.sessions.Put(token)
	a.writeSessionCookie(w, r, token)
	a.writeCSRFCookie(w, r, csrfToken)

	a.audit.logEvent(AuditLoginSuccess, r)
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// Logout handles POST /auth/logout. It revokes the presented session
// and clears both cookies. Mounted behind Protect.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		a.sessions.Revoke(cookie.Value)
	}
	a.clearSessionCookie(w, r)
	a.clearCSRFCookie(w, r)

	a.audit.logEvent(AuditLogout, r)
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// SessionStatus handles GET /auth/session. It lets the panel decide
// whether to render the login screen without probing a protected route.
func (a *API) SessionStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{
		Authenticated: a.IsAuthenticated(r),
		Protected:     a.verifier.enabled(),
	})
}

// maxAuditEntries caps a single audit listing.
const maxAuditEntries = 200

// ListAudit handles GET /audit. Mounted behind AuthMiddleware.
func (a *API) ListAudit(w http.ResponseWriter, r *http.Request) {
	if a.audit.store == nil {
		writeJSON(w, http.StatusOK, AuditListResponse{Entries: []AuditEntry{}})
		return
	}
	entries, err := a.audit.store.List(maxAuditEntries)
	if err != nil {
		a.writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuditListResponse{Entries: entries})
}
