package sqlite

import (
	"bufio"
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mesh-intelligence/menus/pkg/types"
)

// JSONL snapshot file names written by Export and read by Import.
const (
	MenusFile     = "menus.jsonl"
	MenuItemsFile = "menu_items.jsonl"
)

// ImportStats counts the records Import inserted and skipped.
type ImportStats struct {
	Menus        int
	Items        int
	SkippedMenus int
	SkippedItems int
}

// Export writes every menu and menu item to dir as JSONL. Items are written
// in depth-first order per menu, so parents always precede their children.
// The snapshot is read inside one transaction.
func (b *Backend) Export(ctx context.Context, dir string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return types.ErrStoreClosed
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	var menuRecs, itemRecs []json.RawMessage
	err := b.inTxLocked(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			"SELECT menu_id, name, created_at, updated_at FROM menus ORDER BY name, menu_id")
		if err != nil {
			return fmt.Errorf("querying menus: %w", err)
		}
		var menus []*types.Menu
		for rows.Next() {
			m, err := scanMenu(rows)
			if err != nil {
				rows.Close()
				return err
			}
			menus = append(menus, m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating menus: %w", err)
		}

		for _, m := range menus {
			rec, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshaling menu %s: %w", m.MenuID, err)
			}
			menuRecs = append(menuRecs, rec)

			items, err := queryItems(ctx, tx, m.MenuID)
			if err != nil {
				return err
			}
			for _, item := range items {
				rec, err := json.Marshal(item)
				if err != nil {
					return fmt.Errorf("marshaling menu item %s: %w", item.ItemID, err)
				}
				itemRecs = append(itemRecs, rec)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := writeJSONL(filepath.Join(dir, MenusFile), menuRecs); err != nil {
		return fmt.Errorf("writing %s: %w", MenusFile, err)
	}
	if err := writeJSONL(filepath.Join(dir, MenuItemsFile), itemRecs); err != nil {
		return fmt.Errorf("writing %s: %w", MenuItemsFile, err)
	}
	return nil
}

// Import loads a snapshot written by Export in one transaction, keeping the
// recorded IDs. A menu that already exists keeps its current tree: none of
// the snapshot's items for it are inserted. Items of newly imported menus go
// in file order, so a parent must precede its children; items whose parent
// was not imported are skipped, and each sibling group is renumbered to
// 0..k-1 afterwards. Malformed lines are skipped. A missing file counts as
// empty.
func (b *Backend) Import(ctx context.Context, dir string) (ImportStats, error) {
	var st ImportStats

	menuRecs, err := readJSONLIfExists(filepath.Join(dir, MenusFile))
	if err != nil {
		return st, err
	}
	itemRecs, err := readJSONLIfExists(filepath.Join(dir, MenuItemsFile))
	if err != nil {
		return st, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return st, types.ErrStoreClosed
	}

	err = b.inTxLocked(ctx, func(tx *sql.Tx) error {
		fresh := make(map[string]bool)
		for _, rec := range menuRecs {
			var m types.Menu
			if err := json.Unmarshal(rec, &m); err != nil || m.MenuID == "" || m.Validate() != nil {
				st.SkippedMenus++
				continue
			}
			res, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO menus (menu_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
				m.MenuID, m.Name, m.CreatedAt.UTC().Format(time.RFC3339), m.UpdatedAt.UTC().Format(time.RFC3339))
			if err != nil {
				return fmt.Errorf("importing menu %s: %w", m.MenuID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				st.SkippedMenus++
				continue
			}
			fresh[m.MenuID] = true
			st.Menus++
		}

		inserted := make(map[string]bool)
		groups := make(map[siblingKey][]*types.MenuItem)
		for _, rec := range itemRecs {
			var item types.MenuItem
			if err := json.Unmarshal(rec, &item); err != nil || item.ItemID == "" || !fresh[item.MenuID] {
				st.SkippedItems++
				continue
			}
			if item.ParentID != nil && !inserted[*item.ParentID] {
				st.SkippedItems++
				continue
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO menu_items (item_id, menu_id, parent_id, item_type, reference_id, title,
					url, target, icon, display_mode, icon_size, sort_order, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ItemID, item.MenuID, nullString(item.ParentID), string(item.Type),
				nullString(item.ReferenceID), item.Title, nullString(item.URL), item.Target,
				nullString(item.Icon), item.DisplayMode, item.IconSize, item.Order,
				item.CreatedAt.UTC().Format(time.RFC3339))
			if err != nil {
				// Constraint violations (duplicate ID, parent in another
				// menu) skip the record; the transaction stays usable.
				st.SkippedItems++
				continue
			}
			inserted[item.ItemID] = true
			k := siblingKey{menuID: item.MenuID}
			if item.ParentID != nil {
				k.parentID = *item.ParentID
			}
			groups[k] = append(groups[k], &item)
			st.Items++
		}
		return renumberSiblings(ctx, tx, groups)
	})
	if err != nil {
		return ImportStats{}, err
	}
	return st, nil
}

// siblingKey identifies one sibling group. parentID is empty for roots.
type siblingKey struct {
	menuID   string
	parentID string
}

// renumberSiblings rewrites sort_order so every group holds 0..k-1, keeping
// the recorded order and breaking ties by file position.
func renumberSiblings(ctx context.Context, tx *sql.Tx, groups map[siblingKey][]*types.MenuItem) error {
	for _, items := range groups {
		slices.SortStableFunc(items, func(a, b *types.MenuItem) int { return cmp.Compare(a.Order, b.Order) })
		for i, item := range items {
			if item.Order == i {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE menu_items SET sort_order = ? WHERE item_id = ?", i, item.ItemID); err != nil {
				return fmt.Errorf("renumbering menu item %s: %w", item.ItemID, err)
			}
			item.Order = i
		}
	}
	return nil
}

func readJSONLIfExists(path string) ([]json.RawMessage, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return readJSONL(path)
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
