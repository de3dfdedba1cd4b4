package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tinylink/internal/auth/service"
	"github.com/aussiebroadwan/tinylink/pkg/authsdk"
	"github.com/aussiebroadwan/tinylink/pkg/policy"
	"github.com/aussiebroadwan/tinylink/pkg/slogx"
)

// writeServiceError maps service errors onto API errors. Anything
// unexpected is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var linkExists *service.LinkExistsError

	switch {
	case errors.As(err, &linkExists):
		// LinksHandler renders the full short URL via writeLinkExists.
		authsdk.NewAPIError(http.StatusConflict, authsdk.ErrorCodeConflict, err.Error()).WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		desc := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, desc).WriteError(w)
	case errors.Is(err, service.ErrConflict):
		authsdk.ErrUsernameTaken.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		authsdk.ErrAdminRequired.WriteError(w)
	case errors.Is(err, service.ErrCodeSpaceExhausted):
		authsdk.ErrCodeSpaceExhausted.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// writeValidationError reports a failed validator/v10 check as 400.
func writeValidationError(w http.ResponseWriter, err error) {
	authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, policy.Describe(err)).WriteError(w)
}
