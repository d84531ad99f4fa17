package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/menus/pkg/types"
)

func TestCreateItemAssignsFreshIdentity(t *testing.T) {
	b := newTestBackend(t)
	menuID := createTestMenu(t, b, "Main")

	err := b.InTx(context.Background(), func(ctx context.Context, tx types.ItemTx) error {
		item := &types.MenuItem{
			ItemID: "caller-chosen", MenuID: menuID, Type: types.ItemTypeComic,
			ReferenceID: ptr("comic-42"), Title: "One Piece", URL: ptr("/comics/42"),
			Target: types.TargetBlank, Icon: ptr("book"), DisplayMode: types.DisplayModeIconText,
			IconSize: types.IconSizeLarge, Order: 0,
		}
		id, err := tx.CreateItem(ctx, item)
		require.NoError(t, err)
		assert.NotEqual(t, "caller-chosen", id)
		assert.Equal(t, id, item.ItemID)
		return nil
	})
	require.NoError(t, err)

	items, err := b.ListItems(context.Background(), menuID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, types.ItemTypeComic, got.Type)
	require.NotNil(t, got.ReferenceID)
	assert.Equal(t, "comic-42", *got.ReferenceID)
	require.NotNil(t, got.URL)
	assert.Equal(t, "/comics/42", *got.URL)
	require.NotNil(t, got.Icon)
	assert.Equal(t, "book", *got.Icon)
	assert.Equal(t, types.TargetBlank, got.Target)
	assert.Equal(t, types.DisplayModeIconText, got.DisplayMode)
	assert.Equal(t, types.IconSizeLarge, got.IconSize)
	assert.Nil(t, got.ParentID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateItemRejectsMissingMenu(t *testing.T) {
	b := newTestBackend(t)

	err := b.InTx(context.Background(), func(ctx context.Context, tx types.ItemTx) error {
		_, err := tx.CreateItem(ctx, &types.MenuItem{MenuID: "ghost", Title: "x",
			Type: types.ItemTypeCustom, Target: "_self", DisplayMode: "TEXT", IconSize: "MEDIUM"})
		return err
	})
	assert.Error(t, err, "menu foreign key must be enforced")

	err = b.InTx(context.Background(), func(ctx context.Context, tx types.ItemTx) error {
		_, err := tx.CreateItem(ctx, &types.MenuItem{})
		return err
	})
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestParentMustBelongToSameMenu(t *testing.T) {
	b := newTestBackend(t)
	main := createTestMenu(t, b, "Main")
	footer := createTestMenu(t, b, "Footer")
	parent := insertItem(t, b, main, nil, "Genres", 0)

	err := b.InTx(context.Background(), func(ctx context.Context, tx types.ItemTx) error {
		_, err := tx.CreateItem(ctx, &types.MenuItem{MenuID: footer, ParentID: ptr(parent),
			Title: "Action", Type: types.ItemTypeCustom, Target: "_self", DisplayMode: "TEXT", IconSize: "MEDIUM"})
		return err
	})
	assert.Error(t, err, "cross-menu parent reference must be rejected")

	items, err := b.ListItems(context.Background(), footer)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeletingAttachedParentViolatesConstraint(t *testing.T) {
	b := newTestBackend(t)
	menuID := createTestMenu(t, b, "Main")
	parent := insertItem(t, b, menuID, nil, "Genres", 0)
	insertItem(t, b, menuID, ptr(parent), "Action", 0)

	_, err := b.db.Exec("DELETE FROM menu_items WHERE item_id = ?", parent)
	assert.Error(t, err, "deleting a parent with attached children must fail")
}

func TestDetachAllThenDeleteAll(t *testing.T) {
	b := newTestBackend(t)
	menuID := createTestMenu(t, b, "Main")
	other := createTestMenu(t, b, "Footer")
	root := insertItem(t, b, menuID, nil, "Genres", 0)
	insertItem(t, b, menuID, ptr(root), "Action", 0)
	insertItem(t, b, menuID, ptr(root), "Fantasy", 1)
	otherRoot := insertItem(t, b, other, nil, "About", 0)
	insertItem(t, b, other, ptr(otherRoot), "Team", 0)

	err := b.InTx(context.Background(), func(ctx context.Context, tx types.ItemTx) error {
		detached, err := tx.DetachAll(ctx, menuID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), detached, "only items with a parent are touched")

		deleted, err := tx.DeleteAll(ctx, menuID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
		return nil
	})
	require.NoError(t, err)

	items, err := b.ListItems(context.Background(), menuID)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = b.ListItems(context.Background(), other)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotNil(t, items[1].ParentID, "other menu keeps its links")
}

func TestInTxRollsBackOnError(t *testing.T) {
	b := newTestBackend(t)
	menuID := createTestMenu(t, b, "Main")
	insertItem(t, b, menuID, nil, "Home", 0)

	boom := errors.New("boom")
	err := b.InTx(context.Background(), func(ctx context.Context, tx types.ItemTx) error {
		_, err := tx.DetachAll(ctx, menuID)
		require.NoError(t, err)
		_, err = tx.DeleteAll(ctx, menuID)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := b.ListItems(context.Background(), menuID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Home", items[0].Title)
}

func TestInTxRollsBackOnCancel(t *testing.T) {
	b := newTestBackend(t)
	menuID := createTestMenu(t, b, "Main")
	insertItem(t, b, menuID, nil, "Home", 0)

	ctx, cancel := context.WithCancel(context.Background())
	err := b.InTx(ctx, func(ctx context.Context, tx types.ItemTx) error {
		if _, err := tx.DeleteAll(ctx, menuID); err != nil {
			return err
		}
		cancel()
		_, err := tx.CreateItem(ctx, &types.MenuItem{MenuID: menuID, Title: "New",
			Type: types.ItemTypeCustom, Target: "_self", DisplayMode: "TEXT", IconSize: "MEDIUM"})
		return err
	})
	assert.Error(t, err)

	items, err := b.ListItems(context.Background(), menuID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Home", items[0].Title)
}

func TestListItemsDepthFirstOrder(t *testing.T) {
	b := newTestBackend(t)
	menuID := createTestMenu(t, b, "Main")

	// Insert out of display order to prove ordering comes from the tree.
	genres := insertItem(t, b, menuID, nil, "Genres", 1)
	home := insertItem(t, b, menuID, nil, "Home", 0)
	insertItem(t, b, menuID, ptr(genres), "Fantasy", 1)
	action := insertItem(t, b, menuID, ptr(genres), "Action", 0)
	insertItem(t, b, menuID, ptr(action), "Shonen", 0)
	insertItem(t, b, menuID, nil, "About", 10)
	_ = home

	items, err := b.ListItems(context.Background(), menuID)
	require.NoError(t, err)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"Home", "Genres", "Action", "Shonen", "Fantasy", "About"}, titles)
}

func TestListItemsErrors(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.ListItems(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = b.ListItems(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
