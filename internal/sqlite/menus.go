package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/menus/internal/purge"
	"github.com/mesh-intelligence/menus/pkg/types"
)

// CreateMenu validates m and inserts it. If m.MenuID is empty a UUID v7 is
// generated. Returns ErrInvalidID if a menu with the given ID already exists.
func (b *Backend) CreateMenu(ctx context.Context, m *types.Menu) (string, error) {
	if m == nil {
		return "", types.ErrInvalidName
	}
	if err := m.Validate(); err != nil {
		return "", err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return "", types.ErrStoreClosed
	}

	if m.MenuID == "" {
		m.MenuID = generateUUID()
	}
	now := b.now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	err := b.inTxLocked(ctx, func(tx *sql.Tx) error {
		ok, err := menuExists(ctx, tx, m.MenuID)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: menu %s already exists", types.ErrInvalidID, m.MenuID)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO menus (menu_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
			m.MenuID, m.Name, m.CreatedAt.Format(time.RFC3339), m.UpdatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("inserting menu: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return m.MenuID, nil
}

// GetMenu retrieves a menu by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (b *Backend) GetMenu(ctx context.Context, id string) (*types.Menu, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return nil, types.ErrStoreClosed
	}

	row := b.db.QueryRowContext(ctx,
		"SELECT menu_id, name, created_at, updated_at FROM menus WHERE menu_id = ?", id)
	return scanMenu(row)
}

// ListMenus returns all menus ordered by name, then ID.
func (b *Backend) ListMenus(ctx context.Context) ([]*types.Menu, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT menu_id, name, created_at, updated_at FROM menus ORDER BY name, menu_id")
	if err != nil {
		return nil, fmt.Errorf("querying menus: %w", err)
	}
	defer rows.Close()

	menus := []*types.Menu{}
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menus: %w", err)
	}
	return menus, nil
}

// RenameMenu updates the display name of a menu.
func (b *Backend) RenameMenu(ctx context.Context, id, name string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	m := &types.Menu{MenuID: id, Name: name}
	if err := m.Validate(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return types.ErrStoreClosed
	}

	res, err := b.db.ExecContext(ctx,
		"UPDATE menus SET name = ?, updated_at = ? WHERE menu_id = ?",
		m.Name, b.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("renaming menu: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("renaming menu: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteMenu removes a menu and all of its items in one transaction. Items
// are purged with detach-then-delete before the menu row goes.
func (b *Backend) DeleteMenu(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return types.ErrStoreClosed
	}

	return b.inTxLocked(ctx, func(tx *sql.Tx) error {
		ok, err := menuExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrNotFound
		}
		if _, err := purge.DetachThenDelete(ctx, &itemTx{tx: tx, now: b.now}, id); err != nil {
			return fmt.Errorf("purging menu items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM menus WHERE menu_id = ?", id); err != nil {
			return fmt.Errorf("deleting menu: %w", err)
		}
		return nil
	})
}

// MenuExists reports whether a menu with the given ID exists.
func (b *Backend) MenuExists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return false, types.ErrStoreClosed
	}
	return menuExists(ctx, b.db, id)
}

func menuExists(ctx context.Context, q queryer, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM menus WHERE menu_id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking menu: %w", err)
	}
	return true, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenu(row rowScanner) (*types.Menu, error) {
	var m types.Menu
	var createdAt, updatedAt string
	err := row.Scan(&m.MenuID, &m.Name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning menu: %w", err)
	}
	m.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing menu created_at: %w", err)
	}
	m.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing menu updated_at: %w", err)
	}
	return &m, nil
}
