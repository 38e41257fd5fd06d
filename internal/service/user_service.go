package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"health-metrics/internal/domain"
	"health-metrics/internal/repository"
	"health-metrics/internal/session"
)

// UserService is the technician-gated user administration surface. Every
// method checks the caller's role before touching the credential store.
type UserService interface {
	List(ctx context.Context, sess *session.Session) ([]domain.User, error)
	// Create adds an account with the first-login flag set, forcing a
	// password change on the owner's first patient login.
	Create(ctx context.Context, sess *session.Session, role, name, account, pass string) (*domain.User, error)
	// Update rewrites role, name and account. Passwords are only ever
	// changed by the account owner.
	Update(ctx context.Context, sess *session.Session, id int64, role, name, account string) error
	// Delete removes an account. A session can never delete its own user.
	Delete(ctx context.Context, sess *session.Session, id int64) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, sess *session.Session) ([]domain.User, error) {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.WrapStore("list users", err)
	}
	return users, nil
}

func (s *userService) Create(ctx context.Context, sess *session.Session, role, name, account, pass string) (*domain.User, error) {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	account = strings.TrimSpace(account)
	if name == "" {
		return nil, domain.NewValidationError("name")
	}
	if account == "" {
		return nil, domain.NewValidationError("account")
	}
	if pass == "" {
		return nil, domain.NewValidationError("password")
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, domain.NewValidationError("role")
	}

	count, err := s.users.CountByAccountExcluding(ctx, account, 0)
	if err != nil {
		return nil, domain.WrapStore("check account", err)
	}
	if count > 0 {
		return nil, domain.ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Role:         parsedRole,
		Name:         name,
		Account:      account,
		PasswordHash: string(hash),
		FirstLogin:   true,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, domain.WrapStore("create user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) Update(ctx context.Context, sess *session.Session, id int64, role, name, account string) error {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	account = strings.TrimSpace(account)
	if id <= 0 {
		return domain.NewValidationError("user_id")
	}
	if name == "" {
		return domain.NewValidationError("name")
	}
	if account == "" {
		return domain.NewValidationError("account")
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.NewValidationError("role")
	}

	count, err := s.users.CountByAccountExcluding(ctx, account, id)
	if err != nil {
		return domain.WrapStore("check account", err)
	}
	if count > 0 {
		return domain.ErrDuplicateAccount
	}

	if err := s.users.Update(ctx, id, parsedRole, name, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.ErrNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return domain.ErrDuplicateAccount
		default:
			return domain.WrapStore("update user", err)
		}
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, sess *session.Session, id int64) error {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return err
	}

	if id <= 0 {
		return domain.NewValidationError("user_id")
	}
	if id == sess.UserID {
		return domain.ErrSelfDeleteForbidden
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.WrapStore("delete user", err)
	}
	return nil
}
