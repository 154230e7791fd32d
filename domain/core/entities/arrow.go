package entities

import (
	"math"
	"time"

	"boardcore/domain/core/valueobjects"
	pkgerrors "boardcore/pkg/errors"
)

// Arrow is a directed edge between two items, rendered as a cubic
// Bezier from the source's right-edge midpoint to the target's
// left-edge midpoint. An arrow is deleted when either endpoint item is.
type Arrow struct {
	ID          string  `json:"id"`
	SourceID    string  `json:"sourceId"`
	TargetID    string  `json:"targetId"`
	Color       string  `json:"color,omitempty"`
	StrokeWidth float64 `json:"strokeWidth"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewArrow creates an arrow between two distinct items
func NewArrow(sourceID, targetID, color string, strokeWidth float64) (*Arrow, error) {
	if !valueobjects.ValidID(sourceID) || !valueobjects.ValidID(targetID) {
		return nil, pkgerrors.NewValidationError("arrow endpoints must be valid item ids")
	}
	if sourceID == targetID {
		return nil, pkgerrors.NewValidationError("arrow cannot connect an item to itself")
	}
	if strokeWidth <= 0 {
		strokeWidth = 2
	}
	return &Arrow{
		ID:          valueobjects.NewEntityID(),
		SourceID:    sourceID,
		TargetID:    targetID,
		Color:       color,
		StrokeWidth: strokeWidth,
		CreatedAt:   time.Now(),
	}, nil
}

// References reports whether the arrow touches the given item id
func (a *Arrow) References(itemID string) bool {
	return a.SourceID == itemID || a.TargetID == itemID
}

// Clone returns a copy of the arrow
func (a *Arrow) Clone() *Arrow {
	dup := *a
	return &dup
}

// ArrowCurve computes the arrow's cubic Bezier control polygon between
// two endpoint anchors: source right-edge midpoint to target left-edge
// midpoint, with horizontal control handles proportional to the span.
func ArrowCurve(start, end valueobjects.Point) (p0, c1, c2, p3 valueobjects.Point) {
	span := math.Abs(end.X-start.X) / 2
	if span < 24 {
		span = 24
	}
	p0 = start
	p3 = end
	c1 = valueobjects.Point{X: start.X + span, Y: start.Y}
	c2 = valueobjects.Point{X: end.X - span, Y: end.Y}
	return p0, c1, c2, p3
}

// ArrowAnchors returns the curve endpoints for the given source and
// target geometry.
func ArrowAnchors(source, target *Item) (valueobjects.Point, valueobjects.Point) {
	start := valueobjects.Point{X: source.X + source.Width, Y: source.Y + source.Height/2}
	end := valueobjects.Point{X: target.X, Y: target.Y + target.Height/2}
	return start, end
}
