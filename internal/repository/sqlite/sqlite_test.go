package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"health-metrics/internal/domain"
	"health-metrics/internal/repository"
)

// newTestDB opens an in-memory database with all tables created.
func newTestDB(t *testing.T) (*sql.DB, repository.UserRepository, repository.ItemRepository, repository.ResultRepository) {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := NewUserRepository(db)
	items := NewItemRepository(db)
	results := NewResultRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, items.Init(ctx))
	require.NoError(t, results.Init(ctx))

	return db, users, items, results
}

func mustCreateUser(t *testing.T, users repository.UserRepository, role domain.Role, name, account string, firstLogin bool) int64 {
	t.Helper()
	id, err := users.Create(context.Background(), &domain.User{
		Role:         role,
		Name:         name,
		Account:      account,
		PasswordHash: "hash-" + account,
		FirstLogin:   firstLogin,
	})
	require.NoError(t, err)
	return id
}

func mustCreateItem(t *testing.T, items repository.ItemRepository, name, description string) int64 {
	t.Helper()
	id, err := items.Create(context.Background(), &domain.TestItem{Name: name, Description: description})
	require.NoError(t, err)
	return id
}
