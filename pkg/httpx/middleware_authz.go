package httpx

import (
	"net/http"
	"strings"
)

// RequireRole lets the request through only when the authenticated caller
// holds one of roles. It must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := roleFromCtx(r.Context())
			for _, role := range roles {
				if have != "" && have == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeForbidden(w, roles...)
		})
	}
}

func writeForbidden(w http.ResponseWriter, roles ...string) {
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "forbidden",
		"error_description": strings.Join(roles, " or ") + " privileges required",
	})
}
