package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/auth"
	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
	"github.com/usecasehq/usecase-engine/pkg/repositories"
)

// UserLookup resolves an email to a user account.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

var _ UserLookup = (repositories.UserRepository)(nil)

// ResolveUser returns middleware that places the acting user into the
// request context, resolved from the X-User-Email header. Requests
// without the header pass through with no user set; the permission
// checker then denies every action. Real authentication sits in front of
// this service, so the header is trusted here.
func ResolveUser(users UserLookup, tx database.TxManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.Header.Get("X-User-Email")
			if email == "" {
				next.ServeHTTP(w, r)
				return
			}

			var user *models.User
			err := tx.ReadOnly(r.Context(), func(ctx context.Context) error {
				var err error
				user, err = users.GetByEmail(ctx, email)
				return err
			})
			if err != nil {
				logger.Error("Failed to resolve user",
					zap.String("email", email),
					zap.Error(err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if user != nil {
				r = r.WithContext(auth.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}
