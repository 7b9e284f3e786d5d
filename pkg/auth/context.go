package auth

import (
	"context"

	"github.com/usecasehq/usecase-engine/pkg/models"
)

type contextKey string

const userContextKey contextKey = "acting_user"

// WithUser returns a context carrying the acting user. Callers must set the
// acting user explicitly for every turn; nothing is implicitly carried over
// between turns, so one user's actions can never be attributed to another's
// session.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the acting user from the context. Returns nil if
// no user is set, which the permission checker treats as unauthenticated.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
