package api

import (
	"crypto/subtle"
	"net/http"
	"time"
)

const (
	csrfCookieName = "gatehouse_csrf"
	csrfHeaderName = "X-CSRF-Token"
)

// CSRFMiddleware enforces double-submit cookie CSRF protection for
// mutating requests. Safe methods (GET, HEAD, OPTIONS) pass without
// inspecting tokens. When password protection is disabled the check is
// skipped entirely: no session cookie exists for a cross-site request
// to ride.
func (a *API) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !a.verifier.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			a.audit.logFailure(AuditCSRFRejected, r, "missing CSRF cookie")
			writeError(w, http.StatusForbidden, "CSRF validation failed")
			return
		}
		header := r.Header.Get(csrfHeaderName)
		if header == "" {
			a.audit.logFailure(AuditCSRFRejected, r, "missing CSRF header")
			writeError(w, http.StatusForbidden, "CSRF validation failed")
			return
		}
		// ConstantTimeCompare covers the length check: differing lengths
		// report unequal without an early exit on content.
		if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			a.audit.logFailure(AuditCSRFRejected, r, "token mismatch")
			writeError(w, http.StatusForbidden, "CSRF validation failed")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeCSRFCookie sets the CSRF double-submit cookie. It is deliberately
// NOT HttpOnly: the client-side panel must read it and echo it back in
// the X-CSRF-Token header, which is the defining property of the
// double-submit pattern.
func (a *API) writeCSRFCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   a.cookiesSecure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

// clearCSRFCookie removes the CSRF cookie on logout.
func (a *API) clearCSRFCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: false,
		Secure:   a.cookiesSecure(r),
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
