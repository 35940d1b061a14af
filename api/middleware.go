package api

import (
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "gatehouse_session"

// IsAuthenticated reports whether the request carries a valid session.
// With password protection disabled every request is authenticated.
func (a *API) IsAuthenticated(r *http.Request) bool {
	if !a.verifier.enabled() {
		return true
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return a.sessions.Valid(cookie.Value)
}

// AuthMiddleware rejects requests without a valid session. The 401 body
// does not distinguish an expired session from one that was never
// issued.
func (a *API) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.IsAuthenticated(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Protect is the single gate every mutating endpoint sits behind:
// session check first (401), then CSRF double-submit check for mutating
// methods (403). A request that passes both reaches business logic.
func (a *API) Protect(next http.Handler) http.Handler {
	return a.AuthMiddleware(a.CSRFMiddleware(next))
}

// writeSessionCookie sets the HttpOnly session cookie.
func (a *API) writeSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cookiesSecure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

// clearSessionCookie removes the session cookie on logout.
func (a *API) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cookiesSecure(r),
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// cookiesSecure reports whether cookies should carry the Secure flag:
// always in a production-like environment, otherwise when the request
// itself arrived over TLS.
func (a *API) cookiesSecure(r *http.Request) bool {
	return a.production || requestIsSecure(r)
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
