package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/menus/internal/purge"
	"github.com/mesh-intelligence/menus/pkg/types"
)

var (
	_ types.ItemTx             = (*itemTx)(nil)
	_ purge.SelfReferencingSet = (*itemTx)(nil)
)

// itemTx implements types.ItemTx on one open *sql.Tx.
type itemTx struct {
	tx  *sql.Tx
	now func() time.Time
}

// DetachAll clears parent_id on every item of the menu.
func (t *itemTx) DetachAll(ctx context.Context, menuID string) (int64, error) {
	if menuID == "" {
		return 0, types.ErrInvalidID
	}
	res, err := t.tx.ExecContext(ctx,
		"UPDATE menu_items SET parent_id = NULL WHERE menu_id = ? AND parent_id IS NOT NULL", menuID)
	if err != nil {
		return 0, fmt.Errorf("detaching menu items: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAll removes every item of the menu.
func (t *itemTx) DeleteAll(ctx context.Context, menuID string) (int64, error) {
	if menuID == "" {
		return 0, types.ErrInvalidID
	}
	res, err := t.tx.ExecContext(ctx, "DELETE FROM menu_items WHERE menu_id = ?", menuID)
	if err != nil {
		return 0, fmt.Errorf("deleting menu items: %w", err)
	}
	return res.RowsAffected()
}

// CreateItem inserts item with a freshly generated UUID v7. Any ItemID already
// set on item is replaced; identities are never reused.
func (t *itemTx) CreateItem(ctx context.Context, item *types.MenuItem) (string, error) {
	if item == nil {
		return "", fmt.Errorf("%w: nil item", types.ErrInvalidItems)
	}
	if item.MenuID == "" {
		return "", types.ErrInvalidID
	}

	item.ItemID = generateUUID()
	item.CreatedAt = t.now().UTC()

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO menu_items (item_id, menu_id, parent_id, item_type, reference_id, title,
			url, target, icon, display_mode, icon_size, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ItemID, item.MenuID, nullString(item.ParentID), string(item.Type),
		nullString(item.ReferenceID), item.Title, nullString(item.URL), item.Target,
		nullString(item.Icon), item.DisplayMode, item.IconSize, item.Order,
		item.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting menu item %q: %w", item.Title, err)
	}
	return item.ItemID, nil
}

// selectItemsTree returns the items of one menu in depth-first order: each
// parent precedes its children, and siblings follow sort_order. The menu ID
// is bound twice.
const selectItemsTree = `
	WITH RECURSIVE tree(item_id, path) AS (
		SELECT item_id, printf('%010d', sort_order)
		FROM menu_items WHERE menu_id = ? AND parent_id IS NULL
		UNION ALL
		SELECT c.item_id, tree.path || '.' || printf('%010d', c.sort_order)
		FROM menu_items c JOIN tree ON c.parent_id = tree.item_id
		WHERE c.menu_id = ?
	)
	SELECT m.item_id, m.menu_id, m.parent_id, m.item_type, m.reference_id, m.title,
		m.url, m.target, m.icon, m.display_mode, m.icon_size, m.sort_order, m.created_at
	FROM menu_items m JOIN tree ON m.item_id = tree.item_id
	ORDER BY tree.path`

// ListItems returns the items of a menu in depth-first tree order. A menu
// with no items yields an empty slice; an unknown menu yields ErrNotFound.
func (b *Backend) ListItems(ctx context.Context, menuID string) ([]*types.MenuItem, error) {
	if menuID == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return nil, types.ErrStoreClosed
	}

	ok, err := menuExists(ctx, b.db, menuID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNotFound
	}
	return queryItems(ctx, b.db, menuID)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryItems(ctx context.Context, q queryer, menuID string) ([]*types.MenuItem, error) {
	rows, err := q.QueryContext(ctx, selectItemsTree, menuID, menuID)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	items := []*types.MenuItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu items: %w", err)
	}
	return items, nil
}

func scanItem(rows *sql.Rows) (*types.MenuItem, error) {
	var (
		item                       types.MenuItem
		itemType, createdAt        string
		parentID, refID, url, icon sql.NullString
	)
	err := rows.Scan(&item.ItemID, &item.MenuID, &parentID, &itemType, &refID, &item.Title,
		&url, &item.Target, &icon, &item.DisplayMode, &item.IconSize, &item.Order, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scanning menu item: %w", err)
	}
	item.Type = types.ItemType(itemType)
	item.ParentID = stringPtr(parentID)
	item.ReferenceID = stringPtr(refID)
	item.URL = stringPtr(url)
	item.Icon = stringPtr(icon)
	item.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing menu item created_at: %w", err)
	}
	return &item, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
