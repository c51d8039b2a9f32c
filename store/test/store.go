package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ifmtech/event-planning/internal/profile"
	"github.com/ifmtech/event-planning/store"
	"github.com/ifmtech/event-planning/store/db/sqlite"
)

// NewTestingStore creates a migrated sqlite-backed store rooted in a
// temporary directory.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   t.TempDir(),
	}
	require.NoError(t, p.Validate())

	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)

	ts := store.New(driver, p)
	require.NoError(t, ts.Migrate(ctx))
	t.Cleanup(func() { _ = ts.Close() })

	return ts
}
