package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptvault/promptvault-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// sessionKey is the context key for the authenticated caller session.
const sessionKey ctxKey = "session"

// GetSession returns the authenticated caller session from context.
// Returns a 401 error if the request was not authenticated.
func GetSession(ctx context.Context) (*service.Session, error) {
	sess, ok := ctx.Value(sessionKey).(*service.Session)
	if !ok || sess == nil {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return sess, nil
}

// setSession stores the caller session in context.
func setSession(ctx context.Context, sess *service.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// authMiddleware validates Bearer tokens and stores the caller session
// in context. Requests without a valid token continue without a
// session; handlers use GetSession to reject where auth is required.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			token := authHeader[7:]
			sess, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				// Invalid token: continue without a session; the
				// handler rejects if auth is required.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setSession(r.Context(), sess)))
		})
	}
}
