// Package purge removes self-referential trees from storage that enforces
// parent references as foreign keys.
//
// Deleting a parent while a child still points at it violates the
// constraint, and a single bulk delete gives no ordering guarantee. The
// topological detachment pattern sidesteps both: first clear every parent
// reference in the scope, then delete the now parent-less rows in any order.
package purge

import (
	"context"
	"fmt"
)

// SelfReferencingSet is a scoped collection of rows that reference each
// other through a nullable parent column.
type SelfReferencingSet interface {
	// DetachAll sets the parent reference of every row in scope to null.
	DetachAll(ctx context.Context, scope string) (int64, error)

	// DeleteAll removes every row in scope.
	DeleteAll(ctx context.Context, scope string) (int64, error)
}

// Stats reports what a purge touched.
type Stats struct {
	Detached int64
	Deleted  int64
}

// DetachThenDelete empties scope in two phases: detach, then delete. Both
// phases are no-ops on an empty scope, so calling it repeatedly is safe.
// It must run inside the caller's transaction for the purge to be atomic.
func DetachThenDelete(ctx context.Context, set SelfReferencingSet, scope string) (Stats, error) {
	var st Stats

	detached, err := set.DetachAll(ctx, scope)
	if err != nil {
		return st, fmt.Errorf("detaching %s: %w", scope, err)
	}
	st.Detached = detached

	deleted, err := set.DeleteAll(ctx, scope)
	if err != nil {
		return st, fmt.Errorf("deleting %s: %w", scope, err)
	}
	st.Deleted = deleted

	return st, nil
}
