package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tinylink/pkg/jwtx"
	"github.com/aussiebroadwan/tinylink/pkg/slogx"
)

// bearerErrorDescription is sent for every rejected token. The cause is
// only logged.
const bearerErrorDescription = "the access token is missing, invalid or expired"

// AuthnMiddleware rejects requests without a valid bearer token. On success
// the token's claims are available through ClaimsFromContext.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w)
				return
			}

			claims, err := v.Validate(raw)
			if err != nil {
				log.Warn("jwt validate failed", "err", err)
				writeBearerError(w)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.With(ctx, "user", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+bearerErrorDescription+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": bearerErrorDescription,
	})
}
