package menutree

import (
	"strings"

	"github.com/mesh-intelligence/menus/pkg/types"
)

// NoParent is the Parent value of root nodes.
const NoParent = -1

// Node is one flattened, fully defaulted navigation node. Nodes live in an
// arena produced by Normalize; Parent is the arena position of the parent
// node, which is always smaller than the node's own position.
type Node struct {
	Parent int // arena position of the parent, NoParent for roots.
	Index  int // position among siblings, as submitted.
	Depth  int // 0 for roots.

	Type        types.ItemType
	ReferenceID *string
	Title       string
	URL         *string
	Target      string
	Icon        *string
	DisplayMode string
	IconSize    string
}

// Item builds the persisted form of n for menuID under parentID.
func (n Node) Item(menuID string, parentID *string) *types.MenuItem {
	return &types.MenuItem{
		MenuID:      menuID,
		ParentID:    parentID,
		Type:        n.Type,
		ReferenceID: n.ReferenceID,
		Title:       n.Title,
		URL:         n.URL,
		Target:      n.Target,
		Icon:        n.Icon,
		DisplayMode: n.DisplayMode,
		IconSize:    n.IconSize,
		Order:       n.Index,
	}
}

// Normalize flattens nodes into depth-first preorder. Sibling order is the
// submitted order and is never changed. Nodes with empty children produce no
// extra entries.
func Normalize(nodes []types.NodeDescriptor) []Node {
	type frame struct {
		siblings []types.NodeDescriptor
		parent   int
		depth    int
		next     int
	}

	out := make([]Node, 0, len(nodes))
	stack := []frame{{siblings: nodes, parent: NoParent}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if f.next >= len(f.siblings) {
			stack = stack[:top]
			continue
		}
		stack[top].next++

		d := f.siblings[f.next]
		pos := len(out)
		out = append(out, normalizeNode(d, f.parent, f.next, f.depth))
		if len(d.Children) > 0 {
			stack = append(stack, frame{siblings: d.Children, parent: pos, depth: f.depth + 1})
		}
	}
	return out
}

// normalizeNode applies the attribute defaults. Blank strings count as
// missing, unknown types fall back to CUSTOM, and CUSTOM nodes drop any
// reference ID.
func normalizeNode(d types.NodeDescriptor, parent, index, depth int) Node {
	n := Node{
		Parent:      parent,
		Index:       index,
		Depth:       depth,
		Type:        types.ItemType(strings.TrimSpace(d.Type)),
		ReferenceID: optional(d.ReferenceID),
		Title:       orDefault(d.Title, types.DefaultTitle),
		URL:         optional(d.URL),
		Target:      orDefault(d.Target, types.DefaultTarget),
		Icon:        optional(d.Icon),
		DisplayMode: orDefault(d.DisplayMode, types.DefaultDisplayMode),
		IconSize:    orDefault(d.IconSize, types.DefaultIconSize),
	}
	if !n.Type.Known() {
		n.Type = types.DefaultItemType
	}
	if !n.Type.HasReference() {
		n.ReferenceID = nil
	}
	return n
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
