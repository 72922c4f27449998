package middleware

import (
	"net/http"
	"strings"

	"slugtree/internal/auth"
	"slugtree/internal/httputil"
)

// Auth validates the Authorization bearer token against the host's JWKS and
// stores the authenticated user ID in the request context. When verifier is
// nil, authentication is disabled and requests pass through untouched; the
// host application is then expected to gate access upstream.
func Auth(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.Subject))
		})
	}
}
