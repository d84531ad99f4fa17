package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreClosed = errors.New("store is closed")
	ErrAlreadyOpen = errors.New("store is already open")
)

// Entity errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidName = errors.New("invalid name")
)

// Synchronization errors. ErrInvalidItems marks input rejected before any
// storage access; ErrTransactionFailed marks a replace that was rolled back.
var (
	ErrInvalidItems      = errors.New("invalid menu items")
	ErrTransactionFailed = errors.New("menu item transaction failed")
)
