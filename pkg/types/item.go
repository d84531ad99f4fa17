package types

import "time"

// ItemType tags what a menu item points at. CUSTOM items carry their own URL;
// the other kinds carry a ReferenceID into the catalog.
type ItemType string

// Item types.
const (
	ItemTypeCustom   ItemType = "CUSTOM"
	ItemTypeComic    ItemType = "COMIC"
	ItemTypeCategory ItemType = "CATEGORY"
	ItemTypeTag      ItemType = "TAG"
	ItemTypePage     ItemType = "PAGE"
)

var knownItemTypes = map[ItemType]bool{
	ItemTypeCustom:   true,
	ItemTypeComic:    true,
	ItemTypeCategory: true,
	ItemTypeTag:      true,
	ItemTypePage:     true,
}

// Known reports whether t is one of the recognized item types.
func (t ItemType) Known() bool {
	return knownItemTypes[t]
}

// HasReference reports whether items of this type carry a ReferenceID.
func (t ItemType) HasReference() bool {
	return t != ItemTypeCustom && t.Known()
}

// Link targets.
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// Display modes.
const (
	DisplayModeText     = "TEXT"
	DisplayModeIcon     = "ICON"
	DisplayModeIconText = "ICON_TEXT"
)

// Icon sizes.
const (
	IconSizeSmall  = "SMALL"
	IconSizeMedium = "MEDIUM"
	IconSizeLarge  = "LARGE"
)

// Defaults applied to attributes a caller leaves out.
const (
	DefaultTitle       = "Untitled"
	DefaultItemType    = ItemTypeCustom
	DefaultTarget      = TargetSelf
	DefaultDisplayMode = DisplayModeText
	DefaultIconSize    = IconSizeMedium
)

// MenuItem is one persisted navigation node.
type MenuItem struct {
	ItemID      string    `json:"id"`
	MenuID      string    `json:"menuId"`
	ParentID    *string   `json:"parentId"`    // nil for root items; always an item of the same menu.
	Type        ItemType  `json:"type"`
	ReferenceID *string   `json:"referenceId"` // only meaningful when Type.HasReference().
	Title       string    `json:"title"`
	URL         *string   `json:"url"`
	Target      string    `json:"target"`
	Icon        *string   `json:"icon"`
	DisplayMode string    `json:"displayMode"`
	IconSize    string    `json:"iconSize"`
	Order       int       `json:"order"` // position among siblings, 0-based.
	CreatedAt   time.Time `json:"createdAt"`
}

// IsRoot reports whether the item sits at the top level of its menu.
func (i *MenuItem) IsRoot() bool {
	return i.ParentID == nil
}
