package api

// ErrorResponse is the body of every 4xx/5xx response except 429.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// RateLimitedResponse is the body of a 429 response.
type RateLimitedResponse struct {
	Error string `json:"error"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// OKResponse acknowledges a successful mutating request.
type OKResponse struct {
	OK bool `json:"ok"`
}

// SessionResponse is returned from GET /auth/session.
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
	// Protected is false when no password is configured and the panel
	// runs open.
	Protected bool `json:"protected"`
}

// AuditListResponse is returned from GET /audit.
type AuditListResponse struct {
	Entries []AuditEntry `json:"entries"`
}
