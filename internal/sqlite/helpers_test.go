package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/menus/pkg/types"
)

// newTestBackend opens a backend on a fresh temporary directory and closes
// it when the test ends.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Close() })
	return b
}

func createTestMenu(t *testing.T, b *Backend, name string) string {
	t.Helper()
	id, err := b.CreateMenu(context.Background(), &types.Menu{Name: name})
	require.NoError(t, err)
	return id
}

// insertItem creates one item inside its own transaction.
func insertItem(t *testing.T, b *Backend, menuID string, parentID *string, title string, order int) string {
	t.Helper()
	var id string
	err := b.InTx(context.Background(), func(ctx context.Context, tx types.ItemTx) error {
		var err error
		id, err = tx.CreateItem(ctx, &types.MenuItem{
			MenuID:      menuID,
			ParentID:    parentID,
			Type:        types.ItemTypeCustom,
			Title:       title,
			Target:      types.DefaultTarget,
			DisplayMode: types.DefaultDisplayMode,
			IconSize:    types.DefaultIconSize,
			Order:       order,
		})
		return err
	})
	require.NoError(t, err)
	return id
}

func ptr(s string) *string { return &s }
