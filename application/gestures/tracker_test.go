package gestures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardcore/application/ports"
	"boardcore/domain/core/valueobjects"
)

type fakeHandle struct {
	ghostX, ghostY float64
	ghostSet       bool
	cleared        int
}

func (h *fakeHandle) SetGhostPosition(x, y float64) {
	h.ghostX, h.ghostY = x, y
	h.ghostSet = true
}

func (h *fakeHandle) ClearGhost() {
	h.ghostSet = false
	h.cleared++
}

type fakeRegistry struct {
	handles map[string]*fakeHandle
}

func (r *fakeRegistry) Handle(itemID string) (ports.VisualHandle, bool) {
	h, ok := r.handles[itemID]
	return h, ok
}

func registryFor(ids ...string) *fakeRegistry {
	reg := &fakeRegistry{handles: map[string]*fakeHandle{}}
	for _, id := range ids {
		reg.handles[id] = &fakeHandle{}
	}
	return reg
}

func TestTrackersFollowDrag(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	reg := registryFor(item.ID)
	ctl.SetVisualRegistry(reg)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(150, 90))

	pos, ok := ctl.Trackers().Get(item.ID)
	require.True(t, ok, "a dragged item is tracked")
	assert.Equal(t, 100.0, pos.X)
	assert.Equal(t, 40.0, pos.Y)

	handle := reg.handles[item.ID]
	assert.True(t, handle.ghostSet, "the render handle carries the ghost position")
	assert.Equal(t, 100.0, handle.ghostX)
	assert.Equal(t, 40.0, handle.ghostY)

	ctl.PointerUp(ctx, at(150, 90))
	_, ok = ctl.Trackers().Get(item.ID)
	assert.False(t, ok, "finishing the drag clears the tracker")
	assert.False(t, handle.ghostSet, "no transform residue after commit")
	assert.Equal(t, 1, handle.cleared)
}

func TestTrackersClearedOnCancel(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	reg := registryFor(item.ID)
	ctl.SetVisualRegistry(reg)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(200, 200))
	ctl.PointerCancel()

	_, ok := ctl.Trackers().Get(item.ID)
	assert.False(t, ok)
	assert.False(t, reg.handles[item.ID].ghostSet)
}

func TestTrackersCoverWholeGroupDrag(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)
	_, err := store.FormGroup("g", []string{a.ID, b.ID})
	require.NoError(t, err)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(150, 50))

	assert.ElementsMatch(t, []string{a.ID, b.ID}, ctl.Trackers().Active())
	posB, ok := ctl.Trackers().Get(b.ID)
	require.True(t, ok)
	assert.Equal(t, 300.0, posB.X, "the other group member tracks the same delta")

	ctl.PointerUp(ctx, at(150, 50))
	assert.Empty(t, ctl.Trackers().Active())
}

func TestTrackerObserversSeeEveryUpdate(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)

	var seen []valueobjects.Point
	ctl.Trackers().Observe(func(id string, pos valueobjects.Point) {
		if id == item.ID {
			seen = append(seen, pos)
		}
	})

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(100, 50))
	ctl.PointerMove(at(150, 50))
	ctl.PointerUp(ctx, at(150, 50))

	require.Len(t, seen, 2)
	assert.Equal(t, 50.0, seen[0].X)
	assert.Equal(t, 100.0, seen[1].X)
}

func TestTrackersFollowScale(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	store.Select(item.ID)

	ctx := context.Background()
	ctl.BeginScale(at(300, 300))
	ctl.PointerMove(at(500, 300))

	pos, ok := ctl.Trackers().Get(item.ID)
	require.True(t, ok)
	assert.InDelta(t, -50.0, pos.X, 1e-9, "tracked position matches the scaled top-left")

	ctl.PointerUp(ctx, at(500, 300))
	_, ok = ctl.Trackers().Get(item.ID)
	assert.False(t, ok)
}

func TestToolSwitchClearsTrackers(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	reg := registryFor(item.ID)
	ctl.SetVisualRegistry(reg)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(200, 200))
	ctl.SetTool(ToolPen)

	assert.Empty(t, ctl.Trackers().Active())
	assert.False(t, reg.handles[item.ID].ghostSet)
}
