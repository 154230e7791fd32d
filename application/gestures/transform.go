package gestures

import (
	"context"
	"math"

	"boardcore/application/scene"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/valueobjects"
)

// itemGeometry is the state a transform gesture must be able to put
// back on cancel.
type itemGeometry struct {
	x, y, w, h float64
	rotation   float64
}

// captureSelection snapshots geometry for every selected item and the
// selection center the transform pivots on. Returns ok=false when the
// selection is empty.
func captureSelection(store *scene.Store) (map[string]itemGeometry, valueobjects.Point, bool) {
	bounds, ok := store.SelectionBounds()
	if !ok {
		return nil, valueobjects.Point{}, false
	}
	selection := store.Selection()
	initial := map[string]itemGeometry{}
	store.WithLock(func(board *aggregates.Board) {
		for _, id := range selection {
			if item, err := board.GetItem(id); err == nil {
				initial[id] = itemGeometry{x: item.X, y: item.Y, w: item.Width, h: item.Height, rotation: item.Rotation}
			}
		}
	})
	return initial, bounds.Center(), true
}

func restoreGeometry(store *scene.Store, initial map[string]itemGeometry) {
	store.WithLock(func(board *aggregates.Board) {
		for id, geo := range initial {
			if item, err := board.GetItem(id); err == nil {
				item.X, item.Y = geo.x, geo.y
				item.Width, item.Height = geo.w, geo.h
				item.Rotation = geo.rotation
			}
		}
	})
}

func commitTransform(ctx context.Context, store *scene.Store, trackers *TrackerSet, initial map[string]itemGeometry, label string) {
	ids := make([]string, 0, len(initial))
	for id := range initial {
		ids = append(ids, id)
	}
	trackers.Clear(ids...)
	store.TransformItems(ids)
	store.Commit(ctx, label)
}

func clearTransformTrackers(trackers *TrackerSet, initial map[string]itemGeometry) {
	ids := make([]string, 0, len(initial))
	for id := range initial {
		ids = append(ids, id)
	}
	trackers.Clear(ids...)
}

// rotateGesture spins the selection about its center. Horizontal
// pointer travel maps to degrees; leftward drag rotates clockwise.
type rotateGesture struct {
	store    *scene.Store
	trackers *TrackerSet
	origin   valueobjects.Point
	center   valueobjects.Point
	initial  map[string]itemGeometry
	applied  bool
}

func newRotateGesture(store *scene.Store, trackers *TrackerSet, ev PointerEvent) *rotateGesture {
	initial, center, ok := captureSelection(store)
	if !ok {
		return nil
	}
	return &rotateGesture{
		store:    store,
		trackers: trackers,
		origin:   ev.Position,
		center:   center,
		initial:  initial,
	}
}

func (g *rotateGesture) name() string { return "rotate" }

func (g *rotateGesture) move(ev PointerEvent) {
	cfg := g.store.Config()
	delta := (ev.Position.X - g.origin.X) * cfg.RotationPerPixel

	g.applied = true
	moved := make(map[string]valueobjects.Point, len(g.initial))
	g.store.WithLock(func(board *aggregates.Board) {
		for id, geo := range g.initial {
			item, err := board.GetItem(id)
			if err != nil {
				continue
			}

			rotation := geo.rotation + delta
			if ev.Modifiers.Shift {
				rotation = math.Round(rotation/cfg.RotationSnapStep) * cfg.RotationSnapStep
			}
			item.Rotation = rotation

			// Multi-item selections also orbit about the shared
			// center; effective delta for the orbit matches whatever
			// landed on the item's own rotation.
			if len(g.initial) > 1 {
				orbit := rotation - geo.rotation
				cx := geo.x + geo.w/2
				cy := geo.y + geo.h/2
				rad := orbit * math.Pi / 180
				sin, cos := math.Sin(rad), math.Cos(rad)
				ox := cx - g.center.X
				oy := cy - g.center.Y
				nx := g.center.X + ox*cos - oy*sin
				ny := g.center.Y + ox*sin + oy*cos
				item.X = nx - geo.w/2
				item.Y = ny - geo.h/2
			}
			moved[id] = valueobjects.Point{X: item.X, Y: item.Y}
		}
	})
	for id, pos := range moved {
		g.trackers.Set(id, pos)
	}
}

func (g *rotateGesture) finish(ctx context.Context, ev PointerEvent) {
	if !g.applied {
		return
	}
	commitTransform(ctx, g.store, g.trackers, g.initial, "rotate items")
}

func (g *rotateGesture) cancel() {
	if g.applied {
		restoreGeometry(g.store, g.initial)
	}
	clearTransformTrackers(g.trackers, g.initial)
}

// scaleGesture resizes the selection about its center. Rightward
// travel grows, leftward shrinks, and the factor never drops below
// the configured floor so items cannot collapse or invert.
type scaleGesture struct {
	store    *scene.Store
	trackers *TrackerSet
	origin   valueobjects.Point
	center   valueobjects.Point
	initial  map[string]itemGeometry
	applied  bool
}

func newScaleGesture(store *scene.Store, trackers *TrackerSet, ev PointerEvent) *scaleGesture {
	initial, center, ok := captureSelection(store)
	if !ok {
		return nil
	}
	return &scaleGesture{
		store:    store,
		trackers: trackers,
		origin:   ev.Position,
		center:   center,
		initial:  initial,
	}
}

func (g *scaleGesture) name() string { return "scale" }

func (g *scaleGesture) move(ev PointerEvent) {
	cfg := g.store.Config()
	factor := 1 + (ev.Position.X-g.origin.X)*cfg.ScalePerPixel
	if factor < cfg.MinScaleFactor {
		factor = cfg.MinScaleFactor
	}

	g.applied = true
	moved := make(map[string]valueobjects.Point, len(g.initial))
	g.store.WithLock(func(board *aggregates.Board) {
		for id, geo := range g.initial {
			item, err := board.GetItem(id)
			if err != nil {
				continue
			}

			cx := geo.x + geo.w/2
			cy := geo.y + geo.h/2
			nx := g.center.X + (cx-g.center.X)*factor
			ny := g.center.Y + (cy-g.center.Y)*factor

			item.Width = geo.w * factor
			item.Height = geo.h * factor
			item.X = nx - item.Width/2
			item.Y = ny - item.Height/2
			moved[id] = valueobjects.Point{X: item.X, Y: item.Y}
		}
	})
	for id, pos := range moved {
		g.trackers.Set(id, pos)
	}
}

func (g *scaleGesture) finish(ctx context.Context, ev PointerEvent) {
	if !g.applied {
		return
	}
	commitTransform(ctx, g.store, g.trackers, g.initial, "scale items")
}

func (g *scaleGesture) cancel() {
	if g.applied {
		restoreGeometry(g.store, g.initial)
	}
	clearTransformTrackers(g.trackers, g.initial)
}
