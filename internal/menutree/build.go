package menutree

import (
	"sort"

	"github.com/mesh-intelligence/menus/pkg/types"
)

// TreeNode is a persisted item with its children attached. It marshals to the
// same keys a NodeDescriptor reads, plus the stored identity fields, so a
// tree read back can be submitted again as-is.
type TreeNode struct {
	types.MenuItem
	Children []*TreeNode `json:"children"`
}

// Build reassembles flat items into nested trees ordered by Order. Items
// whose parent is not in the slice are treated as roots.
func Build(items []*types.MenuItem) []*TreeNode {
	byID := make(map[string]*TreeNode, len(items))
	nodes := make([]*TreeNode, 0, len(items))
	for _, it := range items {
		tn := &TreeNode{MenuItem: *it, Children: []*TreeNode{}}
		byID[it.ItemID] = tn
		nodes = append(nodes, tn)
	}

	roots := []*TreeNode{}
	for _, tn := range nodes {
		if tn.ParentID != nil {
			if parent, ok := byID[*tn.ParentID]; ok {
				parent.Children = append(parent.Children, tn)
				continue
			}
		}
		roots = append(roots, tn)
	}

	sortByOrder(roots)
	for _, tn := range nodes {
		sortByOrder(tn.Children)
	}
	return roots
}

func sortByOrder(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Order < nodes[j].Order })
}

// Count returns the number of nodes in the given trees.
func Count(roots []*TreeNode) int {
	n := 0
	stack := append([]*TreeNode(nil), roots...)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, top.Children...)
	}
	return n
}

// Descriptors converts persisted trees back into the submission shape,
// dropping stored identities. Feeding the result to a replace recreates an
// equivalent tree.
func Descriptors(roots []*TreeNode) []types.NodeDescriptor {
	type pending struct {
		node *TreeNode
		out  *types.NodeDescriptor
	}

	out := make([]types.NodeDescriptor, len(roots))
	var stack []pending
	for i, r := range roots {
		stack = append(stack, pending{r, &out[i]})
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		*p.out = descriptor(&p.node.MenuItem)
		if len(p.node.Children) == 0 {
			continue
		}
		p.out.Children = make([]types.NodeDescriptor, len(p.node.Children))
		for i, c := range p.node.Children {
			stack = append(stack, pending{c, &p.out.Children[i]})
		}
	}
	return out
}

// Canonical returns nodes with every default applied, in the same nested
// shape. Two submissions that would persist the same tree have equal
// canonical forms.
func Canonical(nodes []types.NodeDescriptor) []types.NodeDescriptor {
	arena := Normalize(nodes)
	flat := make([]types.NodeDescriptor, len(arena))
	kids := make([][]int, len(arena))
	var roots []int
	for i, n := range arena {
		flat[i] = descriptor(n.Item("", nil))
		if n.Parent == NoParent {
			roots = append(roots, i)
		} else {
			kids[n.Parent] = append(kids[n.Parent], i)
		}
	}

	// Children sit after their parent in preorder, so walking backwards
	// completes every subtree before its parent copies it.
	for i := len(arena) - 1; i >= 0; i-- {
		if len(kids[i]) == 0 {
			continue
		}
		flat[i].Children = make([]types.NodeDescriptor, len(kids[i]))
		for j, k := range kids[i] {
			flat[i].Children[j] = flat[k]
		}
	}

	out := make([]types.NodeDescriptor, len(roots))
	for i, r := range roots {
		out[i] = flat[r]
	}
	return out
}

func descriptor(it *types.MenuItem) types.NodeDescriptor {
	return types.NodeDescriptor{
		Type:        string(it.Type),
		ReferenceID: deref(it.ReferenceID),
		Title:       it.Title,
		URL:         deref(it.URL),
		Target:      it.Target,
		Icon:        deref(it.Icon),
		DisplayMode: it.DisplayMode,
		IconSize:    it.IconSize,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
