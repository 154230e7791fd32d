package entities

import (
	"time"

	"boardcore/domain/core/valueobjects"
	pkgerrors "boardcore/pkg/errors"
)

// Group is a named container of items. Bounds are computed from the
// children's rotated corners when the group is formed or resized, not
// continuously.
type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ChildIDs []string `json:"childIds"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Color    string   `json:"color,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewGroup forms a group around the given items. At least two children
// are required; the bounds cover every child's rotated corners plus the
// given padding.
func NewGroup(name string, children []*Item, padding float64) (*Group, error) {
	if len(children) < 2 {
		return nil, pkgerrors.NewValidationError("a group requires at least two items")
	}

	now := time.Now()
	g := &Group{
		ID:        valueobjects.NewEntityID(),
		Name:      name,
		ChildIDs:  make([]string, 0, len(children)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, child := range children {
		g.ChildIDs = append(g.ChildIDs, child.ID)
	}
	g.FitTo(children, padding)
	return g, nil
}

// Normalize repairs shape drift from remote reads. ChildIDs is always a
// non-nil slice.
func (g *Group) Normalize() {
	if g.ChildIDs == nil {
		g.ChildIDs = []string{}
	}
}

// Bounds returns the group's rectangle
func (g *Group) Bounds() valueobjects.Rect {
	return valueobjects.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// FitTo recomputes the group's bounds from the given children's rotated
// corners plus padding on every side.
func (g *Group) FitTo(children []*Item, padding float64) {
	if len(children) == 0 {
		return
	}
	points := make([]valueobjects.Point, 0, len(children)*4)
	for _, child := range children {
		corners := child.Bounds().RotatedCorners(child.Rotation)
		points = append(points, corners[:]...)
	}
	bounds := valueobjects.BoundsOf(points).Expand(padding)
	g.X = bounds.X
	g.Y = bounds.Y
	g.Width = bounds.Width
	g.Height = bounds.Height
	g.UpdatedAt = time.Now()
}

// HasChild reports whether the item id is a member of this group
func (g *Group) HasChild(itemID string) bool {
	for _, id := range g.ChildIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// AddChild appends an item id to the group's membership. No-op if the
// id is already a member.
func (g *Group) AddChild(itemID string) {
	if g.HasChild(itemID) {
		return
	}
	g.ChildIDs = append(g.ChildIDs, itemID)
	g.UpdatedAt = time.Now()
}

// RemoveChild drops an item id from the group's membership. Reports
// whether the id was a member.
func (g *Group) RemoveChild(itemID string) bool {
	for i, id := range g.ChildIDs {
		if id == itemID {
			g.ChildIDs = append(g.ChildIDs[:i], g.ChildIDs[i+1:]...)
			g.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// MoveBy translates the group's bounds
func (g *Group) MoveBy(dx, dy float64) {
	g.X += dx
	g.Y += dy
	g.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the group
func (g *Group) Clone() *Group {
	dup := *g
	dup.ChildIDs = make([]string, len(g.ChildIDs))
	copy(dup.ChildIDs, g.ChildIDs)
	return &dup
}
