package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/tinylink/internal/auth/domain"
	"github.com/aussiebroadwan/tinylink/internal/auth/service"
	"github.com/aussiebroadwan/tinylink/pkg/authsdk"
	"github.com/aussiebroadwan/tinylink/pkg/httpx"
	"github.com/aussiebroadwan/tinylink/pkg/jwtx"
	"github.com/aussiebroadwan/tinylink/pkg/slogx"
)

// UsersHandler serves account registration, login and password rotation.
type UsersHandler struct {
	UserService *service.UserService
	Verifier    jwtx.Verifier
	Validate    *validator.Validate
	TokenTTL    time.Duration
}

// HandleCreate handles POST /v1/users
//
//	@Summary		Create Account
//	@Description	Registers a new account. role defaults to "regular"; creating an "admin" requires an admin bearer token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			Authorization	header		string						false	"Bearer token, required only when role is admin"
//	@Param			request			body		authsdk.CreateUserRequest	true	"Account details"
//	@Success		201				{object}	authsdk.UserResponse		"Created account"
//	@Failure		400				{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		403				{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		409				{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		429				{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.CreateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidJSON.WriteError(w)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if req.Role == domain.RoleAdmin {
		raw, ok := httpx.BearerToken(r)
		if !ok {
			authsdk.ErrAdminRequired.WriteError(w)
			return
		}
		claims, err := h.Verifier.Validate(raw)
		if err != nil {
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		if claims.RequireRole(domain.RoleAdmin) != nil {
			authsdk.ErrAdminRequired.WriteError(w)
			return
		}
		ctx = slogx.With(ctx, "user", claims.Subject)
	}

	u, err := h.UserService.CreateAccount(ctx, req.Username, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("account created", "username", u.Username, "role", u.Role)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	})
}

// HandleLogin handles POST /v1/users/login
//
//	@Summary		Login
//	@Description	Exchanges a username and password for an access token. Unknown users and wrong passwords are indistinguishable.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/users/login [post].
func (h *UsersHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidJSON.WriteError(w)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	token, _, err := h.UserService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.TokenTTL.Seconds()),
	})
}

// HandleUpdatePassword handles PUT /v1/users
//
//	@Summary		Rotate Password
//	@Description	Replaces a password after checking the old one. The token must belong to username unless the caller is an admin.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string							true	"Bearer token"
//	@Param			request			body		authsdk.UpdatePasswordRequest	true	"Old and new password"
//	@Success		200				{object}	authsdk.MessageResponse			"message"
//	@Failure		400				{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		403				{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/users [put].
func (h *UsersHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.UpdatePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidJSON.WriteError(w)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if claims.Subject != req.Username && claims.Role != domain.RoleAdmin {
		authsdk.NewAPIError(http.StatusForbidden, authsdk.ErrorCodeForbidden,
			"token does not belong to this user").WriteError(w)
		return
	}

	err := h.UserService.RotatePassword(ctx, req.Username, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			slogx.FromContext(ctx).Info("password rotation rejected", "username", req.Username)
		}
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("password rotated", "username", req.Username)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "password updated"})
}
