package testutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	rulermigrations "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability"
)

// NewSQLiteStore opens a private in-memory database with the ruler schema
// applied. It is closed when the test ends.
func NewSQLiteStore(t testing.TB) *tablestore.Store {
	t.Helper()
	ctx := context.Background()

	store, err := tablestore.Open(ctx, tablestore.Config{
		Driver: tablestore.DriverSQLite,
		DSN:    ":memory:",
	}, observability.NoOpLogger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = rulermigrations.Apply(ctx, store.DB())
	require.NoError(t, err)
	return store
}
