package types

// NodeDescriptor is the client-submitted shape of one navigation node. Every
// field is optional; an empty string counts as absent and is defaulted during
// normalization.
type NodeDescriptor struct {
	Type        string           `json:"type,omitempty"`
	ReferenceID string           `json:"referenceId,omitempty"`
	Title       string           `json:"title,omitempty"`
	URL         string           `json:"url,omitempty"`
	Target      string           `json:"target,omitempty"`
	Icon        string           `json:"icon,omitempty"`
	DisplayMode string           `json:"displayMode,omitempty"`
	IconSize    string           `json:"iconSize,omitempty"`
	Children    []NodeDescriptor `json:"children,omitempty"`
}

// ReplaceResult is the single outcome of a menu item replacement.
type ReplaceResult struct {
	Success bool   `json:"success"`
	MenuID  string `json:"menuId"`
	Created int    `json:"created"`
	Purged  int64  `json:"purged"`
}
