package sqlite

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-metrics/internal/domain"
)

func TestSeedDemoData(t *testing.T) {
	db, users, items, results := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedDemoData(ctx, db, users, items, results))

	listed, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 8)

	itemList, err := items.List(ctx)
	require.NoError(t, err)
	assert.Len(t, itemList, 5)

	views, err := results.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 5)

	// seeded accounts share the demo credential, stored hashed
	tech, err := users.GetByAccount(ctx, "tech001")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, tech.Role)
	assert.False(t, tech.FirstLogin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(tech.PasswordHash), []byte(demoPassword)))

	patient, err := users.GetByAccount(ctx, "patient001")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, patient.Role)
	assert.True(t, patient.FirstLogin)
}

func TestSeedDemoDataSkipsNonEmptyStore(t *testing.T) {
	db, users, items, results := newTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, users, domain.RoleTechnician, "Existing", "tech999", false)

	require.NoError(t, SeedDemoData(ctx, db, users, items, results))

	listed, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	itemList, err := items.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, itemList)
}

func TestSeedDemoDataIdempotent(t *testing.T) {
	db, users, items, results := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedDemoData(ctx, db, users, items, results))
	require.NoError(t, SeedDemoData(ctx, db, users, items, results))

	listed, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 8)

	views, err := results.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 5)
}
