package auth

import (
	"log/slog"
	"net/http"

	"github.com/solstice-id/solstice/internal/platform/httpx"
	"github.com/solstice-id/solstice/internal/shared"
	"github.com/solstice-id/solstice/internal/token"
)

// Middleware guards routes with bearer-token verification and role checks.
type Middleware struct {
	logger *slog.Logger
	tokens *token.Manager
}

// NewMiddleware constructs a Middleware.
func NewMiddleware(logger *slog.Logger, tokens *token.Manager) *Middleware {
	return &Middleware{logger: logger, tokens: tokens}
}

// RequireAuth verifies the Authorization bearer token and stores the claims
// in the request context. Verification failures end the request with their
// specific token failure kind.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token", "missing_token")
			return
		}

		claims, err := m.tokens.Verify(header)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		sub, _ := claims["sub"].(string)
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		if sub == "" {
			m.logger.Warn("verified token without subject claim")
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token missing subject", "token_invalid")
			return
		}

		ctx := shared.ContextWithClaims(r.Context(), &shared.Claims{
			Subject:  sub,
			Username: username,
			Role:     role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the role claim. Must run after RequireAuth.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := shared.ClaimsFromContext(r.Context())
			if claims == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token", "missing_token")
				return
			}
			if claims.Role != role {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
