package authsdk

import "time"

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	// Error is the machine-readable code (e.g., "invalid_request")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// MessageResponse is returned by endpoints with nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// User Types
// ============================================================================

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	// Username is at least 5 ASCII letters, digits or underscores
	Username string `json:"username" validate:"required,account_name"`

	// Password must be at least 8 characters with upper, lower and digit
	Password string `json:"password" validate:"required,strong_password"`

	// Role is "regular" (default) or "admin". Creating an admin requires an
	// admin bearer token.
	Role string `json:"role,omitempty" validate:"omitempty,account_role"`
}

// UserResponse describes an account. The password digest is never exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest is the body of POST /v1/users/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	// AccessToken is the HS256 JWT to send as "Authorization: Bearer <token>"
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// UpdatePasswordRequest is the body of PUT /v1/users.
type UpdatePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

// ============================================================================
// Link Types
// ============================================================================

// ShortenRequest is the body of POST / and PUT /{id}.
type ShortenRequest struct {
	URL string `json:"url" validate:"required,link_url"`
}

// ShortenResponse is returned when a link is created.
type ShortenResponse struct {
	// ShortURL is the full public short URL, e.g. "http://localhost:8080/aZ3k9QxP"
	ShortURL string `json:"short_url"`

	// GeneratedURI is the short code alone
	GeneratedURI string `json:"generated_uri"`
}

// LinkInfo is one entry of GET /.
type LinkInfo struct {
	GeneratedURI string    `json:"generated_uri"`
	URL          string    `json:"url"`
	OriginalURL  string    `json:"original_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// SearchResponse is returned by GET /search/{uri}.
type SearchResponse struct {
	OriginalURL  string    `json:"original_url"`
	ShortenedURL string    `json:"shortened_url"`
	Timestamp    time.Time `json:"timestamp"`
}

// ============================================================================
// Health Check Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Store indicates the link and user store status
	Store string `json:"store"`
}
