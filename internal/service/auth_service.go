package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"health-metrics/internal/domain"
	"health-metrics/internal/password"
	"health-metrics/internal/repository"
	"health-metrics/internal/session"
)

// AuthService handles login, logout and the password-change workflow.
type AuthService interface {
	// Login verifies credentials and establishes a session. An unknown
	// account and a wrong password produce the identical error.
	Login(ctx context.Context, account, pass string) (*session.Session, string, error)
	// ChangePassword rotates the session user's password. Guards are
	// checked in order: fields present, new matches confirmation, policy
	// compliance, current password correct. On success the stored
	// first-login flag and the session's cached copy are cleared.
	ChangePassword(ctx context.Context, sess *session.Session, current, newPass, confirm string) error
	// Logout invalidates the token's session unconditionally.
	Logout(token string)
}

type authService struct {
	users    repository.UserRepository
	sessions *session.Manager
}

func NewAuthService(users repository.UserRepository, sessions *session.Manager) AuthService {
	return &authService{users: users, sessions: sessions}
}

func (s *authService) Login(ctx context.Context, account, pass string) (*session.Session, string, error) {
	account = strings.TrimSpace(account)
	if account == "" || pass == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", domain.WrapStore("find account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(pass)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	sess, token, err := s.sessions.Create(user)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

func (s *authService) ChangePassword(ctx context.Context, sess *session.Session, current, newPass, confirm string) error {
	if sess == nil {
		return domain.ErrNotAuthenticated
	}

	switch {
	case current == "":
		return domain.NewValidationError("current_password")
	case newPass == "":
		return domain.NewValidationError("new_password")
	case confirm == "":
		return domain.NewValidationError("confirm_password")
	}

	if newPass != confirm {
		return domain.ErrPasswordMismatch
	}
	if !password.Valid(newPass) {
		return domain.ErrPasswordFormat
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotAuthenticated
		}
		return domain.WrapStore("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return domain.WrapStore("update password", err)
	}

	sess.ClearFirstLogin()
	return nil
}

func (s *authService) Logout(token string) {
	s.sessions.Logout(token)
}
