package gestures

import (
	"context"

	"boardcore/application/scene"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/valueobjects"
)

// dragGesture moves the selected items. Geometry is written through
// the item pointers on every move; the board-level mutation and the
// history commit happen once, on finish. A drag that never exceeds
// the threshold is a click and commits nothing.
type dragGesture struct {
	store    *scene.Store
	trackers *TrackerSet
	origin   valueobjects.Point
	initial  map[string]valueobjects.Point
	groupIDs []string
	moved    bool
}

func newDragGesture(store *scene.Store, trackers *TrackerSet, ev PointerEvent) *dragGesture {
	g := &dragGesture{
		store:    store,
		trackers: trackers,
		origin:   ev.Position,
		initial:  map[string]valueobjects.Point{},
	}

	// Dragging any member of a group drags the whole group, rectangle
	// included.
	ids := map[string]struct{}{}
	seenGroups := map[string]struct{}{}
	for _, id := range store.Selection() {
		ids[id] = struct{}{}
		if group, ok := store.Board().GroupOf(id); ok {
			for _, childID := range group.ChildIDs {
				ids[childID] = struct{}{}
			}
			if _, seen := seenGroups[group.ID]; !seen {
				seenGroups[group.ID] = struct{}{}
				g.groupIDs = append(g.groupIDs, group.ID)
			}
		}
	}

	store.WithLock(func(board *aggregates.Board) {
		for id := range ids {
			if item, err := board.GetItem(id); err == nil {
				g.initial[id] = valueobjects.Point{X: item.X, Y: item.Y}
			}
		}
	})
	return g
}

func (g *dragGesture) name() string { return "drag" }

func (g *dragGesture) move(ev PointerEvent) {
	dx := ev.Position.X - g.origin.X
	dy := ev.Position.Y - g.origin.Y

	if !g.moved {
		threshold := g.store.Config().DragThreshold
		if dx*dx+dy*dy < threshold*threshold {
			return
		}
		g.moved = true
		ids := make([]string, 0, len(g.initial))
		for id := range g.initial {
			ids = append(ids, id)
		}
		g.store.BeginDrag(ids...)
	}

	g.store.WithLock(func(board *aggregates.Board) {
		for id, start := range g.initial {
			if item, err := board.GetItem(id); err == nil {
				item.MoveTo(start.X+dx, start.Y+dy)
			}
		}
	})
	for id, start := range g.initial {
		g.trackers.Set(id, valueobjects.Point{X: start.X + dx, Y: start.Y + dy})
	}
}

func (g *dragGesture) finish(ctx context.Context, ev PointerEvent) {
	if !g.moved {
		return
	}

	dx := ev.Position.X - g.origin.X
	dy := ev.Position.Y - g.origin.Y
	final := make(map[string]valueobjects.Point, len(g.initial))
	for id, start := range g.initial {
		final[id] = valueobjects.Point{X: start.X + dx, Y: start.Y + dy}
	}

	g.store.EndDrag()
	g.clearTrackers()
	if err := g.store.MoveItems(final); err != nil {
		return
	}
	ids := make([]string, 0, len(g.initial))
	for id := range g.initial {
		ids = append(ids, id)
	}
	g.store.SettleDrag(g.groupIDs, dx, dy, ids)
	g.store.Commit(ctx, "move items")
}

func (g *dragGesture) cancel() {
	if g.moved {
		g.store.WithLock(func(board *aggregates.Board) {
			for id, start := range g.initial {
				if item, err := board.GetItem(id); err == nil {
					item.MoveTo(start.X, start.Y)
				}
			}
		})
	}
	g.store.EndDrag()
	g.clearTrackers()
}

func (g *dragGesture) clearTrackers() {
	ids := make([]string, 0, len(g.initial))
	for id := range g.initial {
		ids = append(ids, id)
	}
	g.trackers.Clear(ids...)
}
