// Package menusync replaces the whole item tree of a menu in one atomic step.
//
// A replace runs through a fixed sequence of phases:
//
//	Idle -> Purging -> Materializing -> Committed
//
// Any failure after the transaction opens moves to RolledBack and leaves the
// previous tree untouched. Replaces of the same menu are serialized; replaces
// of different menus only contend inside the storage backend.
package menusync
