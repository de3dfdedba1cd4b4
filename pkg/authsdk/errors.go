package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/tinylink/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
	ErrorCodeUnavailable        = "temporarily_unavailable"
	ErrorCodeServerError        = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body every endpoint returns. It is written by the
// server and parsed back by Client.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is a stable machine-readable code, e.g. "invalid_request"
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// Is matches another *APIError with the same status and code, so callers
// can write errors.Is(err, authsdk.ErrNotFound).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// NewAPIError returns an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidJSON is returned when the body is not a JSON object.
	ErrInvalidJSON = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid JSON",
	}

	// ErrInvalidURL is returned when a URL fails validation.
	ErrInvalidURL = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid URL",
	}

	// ErrInvalidCredentials covers both an unknown user and a wrong password.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	// ErrInvalidToken is returned when the bearer token is missing, invalid
	// or expired.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid or expired",
	}

	// ErrAdminRequired is returned when a regular user calls an admin route.
	ErrAdminRequired = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "admin privileges required",
	}

	// ErrNotFound is returned when a short code or user does not exist.
	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	// ErrMethodNotSupported is returned for DELETE on the collection root.
	ErrMethodNotSupported = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "method not supported",
	}

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "username already exists",
	}

	// ErrCodeSpaceExhausted is returned when no free short code is left.
	ErrCodeSpaceExhausted = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeUnavailable,
		Description: "no free short code available",
	}

	// ErrServerError is returned on unexpected failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// ============================================================================
// Link Conflict
// ============================================================================

// LinkExistsError is returned with 409 when the URL is already shortened.
// It carries the existing short link.
type LinkExistsError struct {
	ShortURL     string `json:"short_url"`
	GeneratedURI string `json:"generated_uri"`
}

func (e *LinkExistsError) Error() string {
	return "url already shortened as " + e.GeneratedURI
}

// WriteError writes the conflict as a 409 with the existing link.
func (e *LinkExistsError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusConflict, map[string]string{
		"error":             ErrorCodeConflict,
		"error_description": "URL already exists",
		"short_url":         e.ShortURL,
		"generated_uri":     e.GeneratedURI,
	})
}

// ============================================================================
// Error Parsing
// ============================================================================

// parseErrorResponse turns a non-2xx response into *LinkExistsError or
// *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ShortURL         string `json:"short_url"`
		GeneratedURI     string `json:"generated_uri"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		if resp.StatusCode == http.StatusConflict && errResp.GeneratedURI != "" {
			return &LinkExistsError{ShortURL: errResp.ShortURL, GeneratedURI: errResp.GeneratedURI}
		}
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
