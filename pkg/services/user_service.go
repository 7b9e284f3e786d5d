package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/usecasehq/usecase-engine/pkg/apperrors"
	"github.com/usecasehq/usecase-engine/pkg/auth"
	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
	"github.com/usecasehq/usecase-engine/pkg/repositories"
)

// UserService manages user accounts and credential checks.
type UserService interface {
	// Authenticate verifies email and password and returns the user.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	// CreateUser registers a new account. Requires create_user permission.
	CreateUser(ctx context.Context, email, password, name, role string) (*models.UserRecord, error)

	// DeleteUser removes an account. Requires delete_user permission.
	DeleteUser(ctx context.Context, id int64) error

	// GetUserByID returns one account. Requires manage_users permission.
	GetUserByID(ctx context.Context, id int64) (*models.UserRecord, error)

	// ListUsers returns all accounts. Requires manage_users permission.
	ListUsers(ctx context.Context) ([]*models.UserRecord, error)
}

type userService struct {
	users  repositories.UserRepository
	tx     database.TxManager
	logger *zap.Logger
}

// NewUserService creates a new user service with dependencies.
func NewUserService(users repositories.UserRepository, tx database.TxManager, logger *zap.Logger) UserService {
	return &userService{users: users, tx: tx, logger: logger}
}

var _ UserService = (*userService)(nil)

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user *models.User
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByEmail(ctx, strings.ToLower(email))
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Invalidf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Failed login attempt", zap.String("email", email))
		return nil, apperrors.Invalidf("invalid email or password")
	}

	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, email, password, name, role string) (*models.UserRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionCreateUser); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Invalidf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperrors.Invalidf("password must be at least 8 characters")
	}
	if !models.IsValidRole(role) {
		return nil, apperrors.Invalidf("invalid role '%s'", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("user with email %s already exists: %w", email, apperrors.ErrConflict)
		}
		user = &models.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
			Name:         name,
		}
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created user",
		zap.Int64("id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return user.Record(), nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	acting := auth.UserFromContext(ctx)
	if err := auth.RequirePermission(acting, auth.ActionDeleteUser); err != nil {
		return err
	}
	if acting.ID == id {
		return apperrors.Invalidf("cannot delete your own account")
	}

	err := s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return &apperrors.NotFoundError{Resource: "user", ID: id}
		}
		return s.users.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Deleted user", zap.Int64("id", id))
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.UserRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionManageUsers); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &apperrors.NotFoundError{Resource: "user", ID: id}
	}
	return user.Record(), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.UserRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionManageUsers); err != nil {
		return nil, err
	}

	var users []*models.User
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.users.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	records := make([]*models.UserRecord, len(users))
	for i, u := range users {
		records[i] = u.Record()
	}
	return records, nil
}
