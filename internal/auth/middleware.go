package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xenai/xenai-server/pkg/handlers"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// InternalTokenHeader carries the shared token for service-to-service
// calls. A deliberately weaker trust boundary than bearer auth: equality
// against a static process-wide value.
const InternalTokenHeader = "X-Internal-Token"

// Middleware validates bearer tokens and internal-call tokens.
type Middleware struct {
	jwtSecret     string
	internalToken string
	logger        *slog.Logger
}

// NewMiddleware creates authentication middleware with the given secrets.
func NewMiddleware(jwtSecret, internalToken string, logger *slog.Logger) *Middleware {
	return &Middleware{
		jwtSecret:     jwtSecret,
		internalToken: internalToken,
		logger:        logger.With("system", "auth"),
	}
}

// RequireAuth rejects requests without a valid bearer token and stores
// the claims in the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			handlers.RespondError(w, m.logger, http.StatusUnauthorized,
				"Authentication required", nil)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			handlers.RespondError(w, m.logger, http.StatusUnauthorized,
				"Invalid authorization header format", nil)
			return
		}

		claims, err := ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			handlers.RespondError(w, m.logger, http.StatusUnauthorized,
				"Invalid or expired token", err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireInternalToken guards same-infrastructure endpoints with the
// shared static token. 403 on mismatch.
func (m *Middleware) RequireInternalToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplied := r.Header.Get(InternalTokenHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(m.internalToken)) != 1 {
			handlers.RespondError(w, m.logger, http.StatusForbidden,
				"Forbidden: Internal access only", nil)
			return
		}
		next(w, r)
	}
}

// ClaimsFromContext returns the authenticated claims stored by
// RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}
