package gestures

import (
	"context"

	"boardcore/application/scene"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
)

// groupResizeGesture scales every member of a group about the group's
// center, then shrink-wraps the group rectangle on finish. Same travel
// mapping and scale floor as the selection scale gesture.
type groupResizeGesture struct {
	store    *scene.Store
	trackers *TrackerSet
	groupID  string
	origin   valueobjects.Point
	center   valueobjects.Point
	initial  map[string]itemGeometry
	applied  bool
}

func newGroupResizeGesture(store *scene.Store, trackers *TrackerSet, group *entities.Group, ev PointerEvent) *groupResizeGesture {
	initial := map[string]itemGeometry{}
	store.WithLock(func(board *aggregates.Board) {
		for _, id := range group.ChildIDs {
			if item, err := board.GetItem(id); err == nil {
				initial[id] = itemGeometry{x: item.X, y: item.Y, w: item.Width, h: item.Height, rotation: item.Rotation}
			}
		}
	})
	if len(initial) == 0 {
		return nil
	}
	return &groupResizeGesture{
		store:    store,
		trackers: trackers,
		groupID:  group.ID,
		origin:   ev.Position,
		center:   group.Bounds().Center(),
		initial:  initial,
	}
}

func (g *groupResizeGesture) name() string { return "group-resize" }

func (g *groupResizeGesture) move(ev PointerEvent) {
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

func (g *groupResizeGesture) finish(ctx context.Context, ev PointerEvent) {
	if !g.applied {
		return
	}
	ids := make([]string, 0, len(g.initial))
	for id := range g.initial {
		ids = append(ids, id)
	}
	g.trackers.Clear(ids...)
	g.store.TransformItems(ids)
	if err := g.store.RefitGroup(g.groupID); err == nil {
		g.store.Commit(ctx, "resize group")
		return
	}
	// The group can vanish mid-gesture to a remote merge; the item
	// transform still stands.
	g.store.Commit(ctx, "scale items")
}

func (g *groupResizeGesture) cancel() {
	if g.applied {
		restoreGeometry(g.store, g.initial)
	}
	clearTransformTrackers(g.trackers, g.initial)
}
