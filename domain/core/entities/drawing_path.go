package entities

import (
	"time"

	"boardcore/domain/core/valueobjects"
	pkgerrors "boardcore/pkg/errors"
)

// DrawingPath is a freehand stroke. Points are append-only while the
// stroke is active and immutable once committed. Eraser strokes are
// never committed themselves; they remove intersecting committed
// strokes instead.
type DrawingPath struct {
	ID       string                   `json:"id"`
	Points   []valueobjects.PathPoint `json:"points"`
	Color    string                   `json:"color,omitempty"`
	Size     float64                  `json:"size"`
	IsEraser bool                     `json:"isEraser,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewDrawingPath starts a stroke with the given brush settings
func NewDrawingPath(color string, size float64, isEraser bool) (*DrawingPath, error) {
	if size <= 0 {
		return nil, pkgerrors.NewValidationError("brush size must be positive")
	}
	return &DrawingPath{
		ID:        valueobjects.NewEntityID(),
		Points:    []valueobjects.PathPoint{},
		Color:     color,
		Size:      size,
		IsEraser:  isEraser,
		CreatedAt: time.Now(),
	}, nil
}

// AppendPoint adds a sample to the active stroke. Non-finite samples
// are dropped silently.
func (p *DrawingPath) AppendPoint(x, y, pressure float64) {
	if !(valueobjects.Point{X: x, Y: y}).IsFinite() {
		return
	}
	p.Points = append(p.Points, valueobjects.PathPoint{X: x, Y: y, Pressure: pressure})
}

// IntersectsStroke reports whether the eraser stroke passes within
// reach of this path. Both strokes are treated as polylines, so an
// eraser crossing the middle of a long segment still counts even when
// the stored samples sit far apart. Reach is the eraser radius plus
// half this path's brush size.
func (p *DrawingPath) IntersectsStroke(eraser []valueobjects.PathPoint, eraserRadius float64) bool {
	if len(eraser) == 0 || len(p.Points) == 0 {
		return false
	}
	reach := eraserRadius + p.Size/2
	for i := 0; i < segmentCount(eraser); i++ {
		ea, eb := segmentAt(eraser, i)
		for j := 0; j < segmentCount(p.Points); j++ {
			pa, pb := segmentAt(p.Points, j)
			if valueobjects.SegmentDistance(ea, eb, pa, pb) <= reach {
				return true
			}
		}
	}
	return false
}

// segmentCount treats a single-sample stroke as one zero-length segment
func segmentCount(points []valueobjects.PathPoint) int {
	if len(points) < 2 {
		return len(points)
	}
	return len(points) - 1
}

func segmentAt(points []valueobjects.PathPoint, i int) (valueobjects.Point, valueobjects.Point) {
	a := valueobjects.Point{X: points[i].X, Y: points[i].Y}
	if i+1 >= len(points) {
		return a, a
	}
	return a, valueobjects.Point{X: points[i+1].X, Y: points[i+1].Y}
}

// Bounds returns the stroke's axis-aligned box
func (p *DrawingPath) Bounds() valueobjects.Rect {
	points := make([]valueobjects.Point, len(p.Points))
	for i, pp := range p.Points {
		points[i] = valueobjects.Point{X: pp.X, Y: pp.Y}
	}
	return valueobjects.BoundsOf(points)
}

// Clone returns a deep copy of the path
func (p *DrawingPath) Clone() *DrawingPath {
	dup := *p
	dup.Points = make([]valueobjects.PathPoint, len(p.Points))
	copy(dup.Points, p.Points)
	return &dup
}
