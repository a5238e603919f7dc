package middleware

import (
	"net/http"

	"github.com/ayush/auth-service/internal/auth"
	"github.com/ayush/auth-service/internal/httpx"
)

// TokenParser validates a session token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RequireAuth is middleware that validates the access_token cookie and
// injects the account id into the request context.
func RequireAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.TokenCookie)
			if err != nil || cookie.Value == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := tokens.Parse(cookie.Value)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			ctx := auth.WithAccountID(r.Context(), claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
