package middleware

import (
	"context"
	"net/http"

	"github.com/openmeet/server/internal/api/problem"
	"github.com/openmeet/server/internal/auth"
	"github.com/openmeet/server/internal/domain/users"
)

type userContextKey string

const currentUserKey userContextKey = "currentUser"

// CurrentUser returns the authenticated user placed in the context by
// RequireAuth, or nil.
func CurrentUser(ctx context.Context) *users.User {
	user, _ := ctx.Value(currentUserKey).(*users.User)
	return user
}

// WithCurrentUser is exported for handler tests.
func WithCurrentUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// RequireAuth verifies the bearer access token and resolves its subject
// to a user, rejecting the request with 401 otherwise.
func RequireAuth(tokens *auth.TokenManager, userSvc *users.Service, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", err, env)
				return
			}

			userID, err := tokens.VerifyAccess(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Invalid access token", err, env)
				return
			}

			user, err := userSvc.GetByID(r.Context(), userID)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Unknown token subject", err, env)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCurrentUser(r.Context(), user)))
		})
	}
}
