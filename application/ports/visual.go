package ports

// VisualHandle is an opaque reference to a rendered element, owned by
// whatever presentation layer hosts the board. The gesture engine
// pushes ghost positions through it during continuous interactions
// instead of looking items up in the render tree.
type VisualHandle interface {
	// SetGhostPosition moves the rendered element to a transient
	// position that is not yet committed to the board.
	SetGhostPosition(x, y float64)

	// ClearGhost drops any transient position so the element renders
	// from committed data again.
	ClearGhost()
}

// VisualRegistry resolves item ids to render handles. Implementations
// live in the rendering layer; a nil registry means headless operation.
type VisualRegistry interface {
	// Handle returns the render handle for an item, if one is mounted
	Handle(itemID string) (VisualHandle, bool)
}
