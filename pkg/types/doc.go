// Package types defines the menu entities, the storage interfaces consumed by
// the synchronization engine, and the standard errors shared across packages.
package types
