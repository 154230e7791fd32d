package entities

import (
	"time"

	"boardcore/domain/core/valueobjects"
	pkgerrors "boardcore/pkg/errors"
)

// Bookmark is a saved view. With a TargetID it follows that item's
// current center; without one it is a fixed coordinate view state.
type Bookmark struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	TargetID string  `json:"targetId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewBookmark creates a fixed-coordinate bookmark
func NewBookmark(name string, x, y, scale float64) (*Bookmark, error) {
	if scale <= 0 {
		return nil, pkgerrors.NewValidationError("bookmark scale must be positive")
	}
	return &Bookmark{
		ID:        valueobjects.NewEntityID(),
		Name:      name,
		X:         x,
		Y:         y,
		Scale:     scale,
		CreatedAt: time.Now(),
	}, nil
}

// NewItemBookmark creates a bookmark that tracks an item
func NewItemBookmark(name, targetID string, scale float64) (*Bookmark, error) {
	if !valueobjects.ValidID(targetID) {
		return nil, pkgerrors.NewValidationError("bookmark target must be a valid item id")
	}
	if scale <= 0 {
		scale = 1
	}
	return &Bookmark{
		ID:        valueobjects.NewEntityID(),
		Name:      name,
		TargetID:  targetID,
		Scale:     scale,
		CreatedAt: time.Now(),
	}, nil
}

// Resolve returns the view center for this bookmark. lookup resolves an
// item id to its current state; a bookmark whose target no longer
// exists falls back to its stored coordinates.
func (b *Bookmark) Resolve(lookup func(id string) (*Item, bool)) valueobjects.Point {
	if b.TargetID != "" {
		if item, ok := lookup(b.TargetID); ok {
			return item.Center()
		}
	}
	return valueobjects.Point{X: b.X, Y: b.Y}
}

// Clone returns a copy of the bookmark
func (b *Bookmark) Clone() *Bookmark {
	dup := *b
	return &dup
}
