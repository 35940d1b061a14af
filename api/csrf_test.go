package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mleone/gatehouse/internal/config"
)

func csrfProtectedHandler(a *API) http.Handler {
	return a.CSRFMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func newCSRFRequest(method, cookie, header string) *http.Request {
	r := httptest.NewRequest(method, "/", nil)
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: cookie})
	}
	if header != "" {
		r.Header.Set(csrfHeaderName, header)
	}
	return r
}

func TestCSRFMiddleware(t *testing.T) {
	a := New(config.Config{Password: "operator-password"})
	handler := csrfProtectedHandler(a)

	token := strings.Repeat("ab", 32)
	altered := strings.Repeat("ab", 31) + "ba" // same length, differing content

	t.Run("GetWithNoTokensPasses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newCSRFRequest(http.MethodGet, "", ""))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("HeadAndOptionsPass", func(t *testing.T) {
		for _, method := range []string{http.MethodHead, http.MethodOptions} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newCSRFRequest(method, "", ""))
			assert.Equal(t, http.StatusOK, rec.Code, method)
		}
	})

	t.Run("PostHeaderWithoutCookieFails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newCSRFRequest(http.MethodPost, "", token))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"ok":false,"error":"CSRF validation failed"}`, rec.Body.String())
	})

	t.Run("PostCookieWithoutHeaderFails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newCSRFRequest(http.MethodPost, token, ""))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("PostEqualLengthMismatchFails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newCSRFRequest(http.MethodPost, token, altered))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("PostDifferentLengthFails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newCSRFRequest(http.MethodPost, token, token[:32]))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("PostMatchingPairPasses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newCSRFRequest(http.MethodPost, token, token))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCSRFMiddleware_SkippedWhenProtectionDisabled(t *testing.T) {
	a := New(config.Config{})
	handler := csrfProtectedHandler(a)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newCSRFRequest(http.MethodPost, "", ""))
	assert.Equal(t, http.StatusOK, rec.Code,
		"mutating requests pass without tokens when no password is configured")
}

func TestCSRFCookieIsScriptReadable(t *testing.T) {
	a := New(config.Config{Password: "operator-password"})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	a.writeCSRFCookie(rec, r, "token-value")

	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, csrfCookieName, cookie.Name)
	assert.False(t, cookie.HttpOnly, "the client must be able to read the CSRF cookie to echo it")
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
}
