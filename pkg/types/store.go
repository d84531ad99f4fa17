package types

import "context"

// MenuStore provides administrative access to menus.
type MenuStore interface {
	// CreateMenu validates and inserts m, generating a UUID v7 when
	// m.MenuID is empty. Returns the menu ID.
	CreateMenu(ctx context.Context, m *Menu) (string, error)

	// GetMenu returns ErrNotFound if no menu has the given ID.
	GetMenu(ctx context.Context, id string) (*Menu, error)

	// ListMenus returns all menus ordered by name.
	ListMenus(ctx context.Context) ([]*Menu, error)

	// RenameMenu changes the display name of a menu.
	RenameMenu(ctx context.Context, id, name string) error

	// DeleteMenu removes a menu together with all of its items.
	DeleteMenu(ctx context.Context, id string) error

	// MenuExists reports whether a menu with the given ID exists.
	MenuExists(ctx context.Context, id string) (bool, error)
}

// ItemWriter creates menu items inside an open transaction.
type ItemWriter interface {
	// CreateItem inserts item, assigning a freshly generated ItemID and
	// CreatedAt. Returns the new ID.
	CreateItem(ctx context.Context, item *MenuItem) (string, error)
}

// ItemTx is the unit of work the synchronization engine runs in. All calls
// on one ItemTx commit or roll back together.
type ItemTx interface {
	ItemWriter

	// DetachAll clears the parent reference of every item in the menu and
	// returns the number of items touched.
	DetachAll(ctx context.Context, menuID string) (int64, error)

	// DeleteAll removes every item in the menu and returns the count.
	DeleteAll(ctx context.Context, menuID string) (int64, error)
}

// ItemStore opens transactions over menu items and reads them back.
type ItemStore interface {
	// InTx runs fn inside one transaction. If fn returns an error, or ctx is
	// cancelled before commit, every change made through tx is rolled back.
	InTx(ctx context.Context, fn func(ctx context.Context, tx ItemTx) error) error

	// ListItems returns the items of a menu in depth-first tree order.
	ListItems(ctx context.Context, menuID string) ([]*MenuItem, error)
}

// Store is a complete storage backend.
type Store interface {
	MenuStore
	ItemStore

	// Open connects the store to the backend described by config. Returns
	// ErrAlreadyOpen if called twice.
	Open(config Config) error

	// Close releases backend resources. Idempotent. After Close, operations
	// return ErrStoreClosed.
	Close() error
}
