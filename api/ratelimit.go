package api

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// rateLimitRetention is the longest window any caller may pass to
	// Allow. The sweeper prunes hits older than this.
	rateLimitRetention = time.Hour
	// rateLimitSweepInterval is how often the background sweeper prunes
	// idle keys.
	rateLimitSweepInterval = 10 * time.Minute

	// loginMaxAttempts / loginWindow throttle the login endpoint per
	// client IP.
	loginMaxAttempts = 5
	loginWindow      = time.Minute
)

// untrustedClientIP is the rate-limit key used for all direct traffic
// when no trusted proxy is configured. Forwarded headers are attacker
// controlled in that case, so every caller shares one bucket rather than
// letting a client pick its own key.
const untrustedClientIP = "untrusted"

// RateLimiter bounds request rate per key using a continuously sliding
// window: retained timestamps are re-evaluated against now on every
// check, never bucketed into fixed intervals.
type RateLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Allow records a request for key and reports whether it is within
// maxRequests per window. A denied request is not recorded.
func (rl *RateLimiter) Allow(key string, maxRequests int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-window)

	hits := rl.hits[key]
	start := 0
	for start < len(hits) && hits[start].Before(cutoff) {
		start++
	}
	hits = hits[start:]

	if len(hits) >= maxRequests {
		rl.hits[key] = hits
		return false
	}
	rl.hits[key] = append(hits, now)
	return true
}

// Sweep prunes hits older than the retention horizon and deletes keys
// whose list becomes empty, bounding memory for keys that are never
// re-checked.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rateLimitRetention)
	for key, hits := range rl.hits {
		start := 0
		for start < len(hits) && hits[start].Before(cutoff) {
			start++
		}
		if start == len(hits) {
			delete(rl.hits, key)
			continue
		}
		rl.hits[key] = hits[start:]
	}
}

// StartSweeper runs Sweep every interval on a background goroutine. The
// returned stop function cancels it and is safe to call more than once.
func (rl *RateLimiter) StartSweeper(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Sweep()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// RateLimitMiddleware throttles requests per client IP, responding
// 429 with a Retry-After hint when the window is exhausted.
func (a *API) RateLimitMiddleware(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.limiter.Allow(a.ClientIP(r), maxRequests, window) {
				a.audit.logFailure(AuditRateLimited, r, "window exhausted",
					slog.String("path", r.URL.Path))
				writeRateLimited(w, window)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the rate-limit key for a request.
//
// X-Forwarded-For is only consulted when the operator has configured a
// trusted proxy address; without one, an untrusted caller could spoof
// its key via forwarding headers, so the fixed placeholder is returned
// instead.
func (a *API) ClientIP(r *http.Request) string {
	if a.trustedProxy == "" {
		return untrustedClientIP
	}
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip, ok := parseIPCandidate(part); ok {
				return ip
			}
		}
	}
	if ip, ok := parseIPCandidate(r.RemoteAddr); ok {
		return ip
	}
	return untrustedClientIP
}

func parseIPCandidate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if i := strings.IndexByte(s, '%'); i >= 0 {
		s = s[:i]
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.String(), true
	}
	return "", false
}

// writeRateLimited sends a 429 Too Many Requests response.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", retryAfterString(retryAfter))
	writeJSON(w, http.StatusTooManyRequests, RateLimitedResponse{
		Error: "Too many requests, please try again later",
	})
}

func retryAfterString(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
