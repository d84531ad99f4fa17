package menusync

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/menus/internal/menutree"
	"github.com/mesh-intelligence/menus/pkg/types"
)

// Materialize creates nodes as items of menuID, parents before children.
// nodes must be a preorder arena as produced by menutree.Normalize, so the
// parent of node i already has an identifier when i is created. It returns
// the number of items created before returning, which on error is the
// position of the failing node.
func Materialize(ctx context.Context, w types.ItemWriter, menuID string, nodes []menutree.Node) (int, error) {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		var parentID *string
		if n.Parent != menutree.NoParent {
			if n.Parent < 0 || n.Parent >= i {
				return i, fmt.Errorf("node %d: parent %d not yet created", i, n.Parent)
			}
			pid := ids[n.Parent]
			parentID = &pid
		}

		id, err := w.CreateItem(ctx, n.Item(menuID, parentID))
		if err != nil {
			return i, fmt.Errorf("creating node %d: %w", i, err)
		}
		ids[i] = id
	}
	return len(nodes), nil
}
