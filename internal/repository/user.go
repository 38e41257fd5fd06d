package repository

import (
	"context"

	"health-metrics/internal/domain"
)

// UserRepository defines persistence operations for the credential store.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByAccount(ctx context.Context, account string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// List returns all users ordered by role then name, without password
	// material populated.
	List(ctx context.Context) ([]domain.User, error)
	// Update rewrites role, name and account for the given user.
	Update(ctx context.Context, id int64, role domain.Role, name, account string) error
	// UpdatePassword stores a new password hash and clears the first-login
	// flag in one statement.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	// CountByAccountExcluding counts users holding the account handle,
	// ignoring the user with excludeID. Exact, case-sensitive match.
	CountByAccountExcluding(ctx context.Context, account string, excludeID int64) (int, error)
}
