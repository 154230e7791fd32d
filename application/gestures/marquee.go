package gestures

import (
	"context"

	"boardcore/application/scene"
	"boardcore/application/spatial"
	"boardcore/domain/core/valueobjects"
)

// marqueeGesture rubber-bands a selection rectangle. Selection updates
// live on every move so the render layer can highlight candidates, and
// nothing is committed: selection is session-local state.
type marqueeGesture struct {
	store    *scene.Store
	hit      *spatial.HitTester
	origin   valueobjects.Point
	current  valueobjects.Point
	additive bool
	base     []string
}

func newMarqueeGesture(store *scene.Store, hit *spatial.HitTester, ev PointerEvent) *marqueeGesture {
	g := &marqueeGesture{
		store:    store,
		hit:      hit,
		origin:   ev.Position,
		current:  ev.Position,
		additive: ev.Modifiers.Shift || ev.Modifiers.Ctrl,
	}
	if g.additive {
		g.base = store.Selection()
	}
	return g
}

func (g *marqueeGesture) name() string { return "marquee" }

func (g *marqueeGesture) rect() valueobjects.Rect {
	return valueobjects.Rect{
		X:      g.origin.X,
		Y:      g.origin.Y,
		Width:  g.current.X - g.origin.X,
		Height: g.current.Y - g.origin.Y,
	}.Normalized()
}

func (g *marqueeGesture) apply() {
	inside := g.hit.ItemsInRect(g.rect())
	if g.additive {
		g.store.SelectOnly(g.base...)
		g.store.Select(inside...)
		return
	}
	g.store.SelectOnly(inside...)
}

func (g *marqueeGesture) move(ev PointerEvent) {
	g.current = ev.Position
	g.apply()
}

func (g *marqueeGesture) finish(ctx context.Context, ev PointerEvent) {
	g.current = ev.Position
	g.apply()
}

func (g *marqueeGesture) cancel() {
	if g.additive {
		g.store.SelectOnly(g.base...)
		return
	}
	g.store.ClearSelection()
}
