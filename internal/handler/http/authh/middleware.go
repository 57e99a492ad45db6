package authh

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/service/auth"
)

type ctxKey string

const ctxUserID ctxKey = "user_id"

// RequireAuth validates the Bearer token on every request and stores
// the authenticated user ID in the request context. A missing or
// invalid token ends the request with 401.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, prefix) {
				respond.Error(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			userID, err := svc.VerifyToken(strings.TrimPrefix(authz, prefix))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, errors.New("invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserID extracts the authenticated user ID from the context.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxUserID).(int64)
	return id, ok
}
