// Package sqlite exposes the SQLite menu store while keeping its
// implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/menus/internal/sqlite"
	"github.com/mesh-intelligence/menus/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not open; call Open with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/menus",
//	})
//	defer backend.Close()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
