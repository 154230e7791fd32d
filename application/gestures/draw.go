package gestures

import (
	"context"

	"boardcore/application/scene"
	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
)

// drawGesture accumulates a freehand stroke. A pen stroke commits as a
// new path; an eraser stroke commits nothing itself and instead
// removes every committed stroke it reached.
type drawGesture struct {
	store  *scene.Store
	path   *entities.DrawingPath
	eraser bool
}

func newDrawGesture(store *scene.Store, ev PointerEvent, eraser bool) *drawGesture {
	cfg := store.Config()
	size := cfg.DefaultBrushSize
	color := cfg.DefaultBrushColor
	if eraser {
		size = cfg.EraserRadius
		color = ""
	}

	path, err := entities.NewDrawingPath(color, size, eraser)
	if err != nil {
		return nil
	}
	path.AppendPoint(ev.Position.X, ev.Position.Y, ev.Pressure)

	return &drawGesture{store: store, path: path, eraser: eraser}
}

func (g *drawGesture) name() string {
	if g.eraser {
		return "erase"
	}
	return "draw"
}

// ActivePoints exposes the in-flight stroke for rendering
func (g *drawGesture) ActivePoints() []valueobjects.PathPoint {
	return g.path.Points
}

func (g *drawGesture) move(ev PointerEvent) {
	g.path.AppendPoint(ev.Position.X, ev.Position.Y, ev.Pressure)
}

func (g *drawGesture) finish(ctx context.Context, ev PointerEvent) {
	g.path.AppendPoint(ev.Position.X, ev.Position.Y, ev.Pressure)

	if g.eraser {
		if removed := g.store.ErasePaths(g.path.Points); len(removed) > 0 {
			g.store.Commit(ctx, "erase strokes")
		}
		return
	}

	if len(g.path.Points) == 0 {
		return
	}
	if err := g.store.CommitPath(g.path); err != nil {
		return
	}
	g.store.Commit(ctx, "draw stroke")
}

func (g *drawGesture) cancel() {
	// Nothing reached the board yet; the stroke just evaporates.
}
