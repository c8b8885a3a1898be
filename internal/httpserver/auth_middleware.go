package httpserver

import (
	"context"
	"net/http"
	"strings"

	"hyperlens/internal/domain"
	"hyperlens/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthMiddleware validates the Bearer token and attaches the user to the
// request context.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeErrorMessage(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				writeErrorMessage(w, http.StatusUnauthorized, "not authorized, token failed")
				return
			}

			sub, ok := security.Subject(claims)
			if !ok {
				writeErrorMessage(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			user, err := users.GetByID(r.Context(), sub)
			if err != nil || user == nil {
				writeErrorMessage(w, http.StatusUnauthorized, "user not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireBusinessRole rejects callers whose account is not a business account.
func RequireBusinessRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeErrorMessage(w, http.StatusUnauthorized, "not authorized")
			return
		}
		if user.Role != domain.RoleBusiness {
			writeErrorMessage(w, http.StatusForbidden, "access denied, only business accounts allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
