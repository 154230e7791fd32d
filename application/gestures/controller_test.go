package gestures

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boardcore/application/scene"
	"boardcore/domain/config"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
)

func newTestController(t *testing.T) (*Controller, *scene.Store) {
	t.Helper()
	board, err := aggregates.NewBoard("user-1", "Test")
	require.NoError(t, err)
	board.MarkEventsAsCommitted()

	store := scene.NewStore(board, config.DefaultDomainConfig(), zap.NewNop())
	return NewController(store, zap.NewNop()), store
}

func placeItem(t *testing.T, store *scene.Store, x, y, w, h float64) *entities.Item {
	t.Helper()
	item, err := entities.NewTextItem("t", x, y, w, h)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(item))
	return item
}

func placeNode(t *testing.T, store *scene.Store, x, y float64) *entities.Item {
	t.Helper()
	item, err := entities.NewNodeItem("img2img", "p", x, y, 100, 100)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(item))
	return item
}

func at(x, y float64) PointerEvent {
	return PointerEvent{Position: valueobjects.Point{X: x, Y: y}}
}

func shiftAt(x, y float64) PointerEvent {
	return PointerEvent{Position: valueobjects.Point{X: x, Y: y}, Modifiers: Modifiers{Shift: true}}
}

func ctrlAt(x, y float64) PointerEvent {
	return PointerEvent{Position: valueobjects.Point{X: x, Y: y}, Modifiers: Modifiers{Ctrl: true}}
}

func ctrlAltAt(x, y float64) PointerEvent {
	return PointerEvent{Position: valueobjects.Point{X: x, Y: y}, Modifiers: Modifiers{Ctrl: true, Alt: true}}
}

func TestClickSelectsWithoutCommitting(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	store.Commit(context.Background(), "setup")
	depthBefore := store.History().Len()

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerUp(ctx, at(51, 50))

	assert.True(t, store.IsSelected(item.ID))
	assert.Equal(t, depthBefore, store.History().Len(), "a click is not an undoable operation")

	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.X, "sub-threshold motion does not move the item")
}

func TestDragCommitEquivalence(t *testing.T) {
	ctx := context.Background()

	finalFor := func(t *testing.T, steps int) (float64, float64) {
		ctl, store := newTestController(t)
		item := placeItem(t, store, 0, 0, 100, 100)
		store.Commit(ctx, "setup")

		ctl.PointerDown(ctx, at(50, 50))
		for i := 1; i <= steps; i++ {
			frac := float64(i) / float64(steps)
			ctl.PointerMove(at(50+200*frac, 50+80*frac))
		}
		ctl.PointerUp(ctx, at(250, 130))

		got, err := store.Board().GetItem(item.ID)
		require.NoError(t, err)
		return got.X, got.Y
	}

	x1, y1 := finalFor(t, 1)
	x2, y2 := finalFor(t, 37)
	assert.Equal(t, x1, x2, "final position is independent of move granularity")
	assert.Equal(t, y1, y2)
	assert.Equal(t, 200.0, x1)
	assert.Equal(t, 80.0, y1)
}

func TestDragCommitsExactlyOnce(t *testing.T) {
	ctl, store := newTestController(t)
	placeItem(t, store, 0, 0, 100, 100)
	store.Commit(context.Background(), "setup")
	depthBefore := store.History().Len()

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	for i := 0; i < 20; i++ {
		ctl.PointerMove(at(60+float64(i*5), 50))
	}
	ctl.PointerUp(ctx, at(155, 50))

	assert.Equal(t, depthBefore+1, store.History().Len(), "one drag, one history entry")
}

func TestDragCancelRestoresPositions(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(200, 200))
	ctl.PointerCancel()

	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 0.0, got.Y)
	assert.False(t, store.IsDragging(item.ID))
}

func TestDragMovesWholeGroup(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)
	group, err := store.FormGroup("g", []string{a.ID, b.ID})
	require.NoError(t, err)
	rectBefore := group.Bounds()

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(150, 50))
	ctl.PointerUp(ctx, at(150, 50))

	gotA, err := store.Board().GetItem(a.ID)
	require.NoError(t, err)
	gotB, err := store.Board().GetItem(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, gotA.X)
	assert.Equal(t, 300.0, gotB.X, "the other group member moved the same delta")

	gotGroup := store.Board().Groups()[group.ID]
	require.NotNil(t, gotGroup)
	assert.Equal(t, rectBefore.X+100, gotGroup.X, "the group rectangle follows its children")
	assert.Equal(t, rectBefore.Y, gotGroup.Y)
}

func TestDragIntoGroupTransfersMembership(t *testing.T) {
	ctl, store := newTestController(t)
	loose := placeItem(t, store, 0, 0, 100, 100)
	c := placeItem(t, store, 400, 0, 100, 100)
	d := placeItem(t, store, 600, 0, 100, 100)
	group, err := store.FormGroup("g", []string{c.ID, d.ID})
	require.NoError(t, err)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(500, 50))
	ctl.PointerUp(ctx, at(500, 50))

	owner, ok := store.Board().GroupOf(loose.ID)
	require.True(t, ok, "dropping inside the bounds joins the group")
	assert.Equal(t, group.ID, owner.ID)
	assert.Len(t, owner.ChildIDs, 3)

	got, err := store.Board().GetItem(loose.ID)
	require.NoError(t, err)
	assert.True(t, owner.Bounds().Contains(valueobjects.Point{X: got.X, Y: got.Y}), "the group was refit around the newcomer")
}

func TestDragOutsideGroupKeepsMembership(t *testing.T) {
	ctl, store := newTestController(t)
	loose := placeItem(t, store, 0, 0, 100, 100)
	c := placeItem(t, store, 400, 0, 100, 100)
	d := placeItem(t, store, 600, 0, 100, 100)
	_, err := store.FormGroup("g", []string{c.ID, d.ID})
	require.NoError(t, err)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(50, 500))
	ctl.PointerUp(ctx, at(50, 500))

	_, ok := store.Board().GroupOf(loose.ID)
	assert.False(t, ok, "a drop in empty space joins nothing")
}

func TestGroupResizeGesture(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)
	group, err := store.FormGroup("g", []string{a.ID, b.ID})
	require.NoError(t, err)

	ctx := context.Background()
	ctl.BeginGroupResize(at(150, 105))
	require.Equal(t, "group-resize", ctl.ActiveGesture())

	// +200px travel doubles every member about the group center.
	ctl.PointerMove(at(350, 105))
	ctl.PointerUp(ctx, at(350, 105))

	gotA, err := store.Board().GetItem(a.ID)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, gotA.Width, 1e-9)

	gotGroup := store.Board().Groups()[group.ID]
	require.NotNil(t, gotGroup)
	assert.InDelta(t, 620.0, gotGroup.Width, 1e-9, "the rectangle shrink-wraps the scaled children")
	assert.InDelta(t, -160.0, gotGroup.X, 1e-9)
}

func TestGroupResizeCancelRestores(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)
	_, err := store.FormGroup("g", []string{a.ID, b.ID})
	require.NoError(t, err)

	ctl.BeginGroupResize(at(150, 105))
	ctl.PointerMove(at(350, 105))
	ctl.PointerCancel()

	gotA, err := store.Board().GetItem(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, gotA.Width)
	assert.Equal(t, 0.0, gotA.X)
}

func TestGroupResizeOnEmptySpaceStartsNothing(t *testing.T) {
	ctl, store := newTestController(t)
	placeItem(t, store, 0, 0, 100, 100)

	ctl.BeginGroupResize(at(500, 500))
	assert.Equal(t, "", ctl.ActiveGesture())
	_ = store
}

func TestMarqueeSelection(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 10, 10, 50, 50)
	b := placeItem(t, store, 200, 10, 50, 50)
	far := placeItem(t, store, 900, 900, 50, 50)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(500, 500))
	require.Equal(t, "marquee", ctl.ActiveGesture())
	ctl.PointerMove(at(0, 0))
	ctl.PointerUp(ctx, at(0, 0))

	assert.True(t, store.IsSelected(a.ID))
	assert.True(t, store.IsSelected(b.ID))
	assert.False(t, store.IsSelected(far.ID))

	t.Run("shift marquee adds to the selection", func(t *testing.T) {
		ctl.PointerDown(ctx, shiftAt(850, 850))
		ctl.PointerMove(shiftAt(1000, 1000))
		ctl.PointerUp(ctx, shiftAt(1000, 1000))

		assert.True(t, store.IsSelected(a.ID), "previous selection kept")
		assert.True(t, store.IsSelected(far.ID))
	})
}

func TestShiftClickTogglesSelection(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerUp(ctx, at(50, 50))
	ctl.PointerDown(ctx, shiftAt(250, 50))
	ctl.PointerUp(ctx, shiftAt(250, 50))
	assert.ElementsMatch(t, []string{a.ID, b.ID}, store.Selection())

	ctl.PointerDown(ctx, shiftAt(50, 50))
	ctl.PointerUp(ctx, shiftAt(50, 50))
	assert.ElementsMatch(t, []string{b.ID}, store.Selection())
}

func TestRotateGesture(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	store.Select(item.ID)

	ctx := context.Background()
	ctl.BeginRotate(at(300, 300))
	require.Equal(t, "rotate", ctl.ActiveGesture())

	// 100px leftward travel at -0.5 deg/px rotates +50 degrees.
	ctl.PointerMove(at(200, 300))
	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got.Rotation, 1e-9)

	ctl.PointerUp(ctx, at(200, 300))
	assert.InDelta(t, 50.0, got.Rotation, 1e-9)
}

func TestRotateGestureShiftSnaps(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	store.Select(item.ID)

	ctl.BeginRotate(at(300, 300))
	ctl.PointerMove(shiftAt(216, 300)) // raw +42 degrees

	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got.Rotation, 1e-9, "snapped to the nearest 25 degree step")
	ctl.PointerCancel()
	assert.InDelta(t, 0.0, got.Rotation, 1e-9, "cancel restores rotation")
}

func TestScaleGesture(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	store.Select(item.ID)

	ctx := context.Background()
	ctl.BeginScale(at(300, 300))

	// +200px travel doubles the size about the selection center.
	ctl.PointerMove(at(500, 300))
	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, got.Width, 1e-9)
	assert.InDelta(t, -50.0, got.X, 1e-9, "grows about the center")

	ctl.PointerUp(ctx, at(500, 300))
}

func TestScaleGestureFloor(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)
	store.Select(item.ID)

	ctl.BeginScale(at(300, 300))
	ctl.PointerMove(at(-5000, 300))

	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got.Width, 1e-9, "factor is clamped at the floor")
	assert.Greater(t, got.Width, 0.0)
	assert.Greater(t, got.Height, 0.0)
}

func TestCtrlDragRotatesHitItem(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)

	ctx := context.Background()
	ctl.PointerDown(ctx, ctrlAt(50, 50))
	require.Equal(t, "rotate", ctl.ActiveGesture())
	assert.True(t, store.IsSelected(item.ID), "the hit item joins the selection")

	// 100px leftward travel at -0.5 deg/px rotates +50 degrees.
	ctl.PointerMove(ctrlAt(-50, 50))
	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got.Rotation, 1e-9)

	ctl.PointerUp(ctx, ctrlAt(-50, 50))
	assert.InDelta(t, 50.0, got.Rotation, 1e-9)
}

func TestCtrlAltDragScalesHitItem(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)

	ctx := context.Background()
	ctl.PointerDown(ctx, ctrlAltAt(50, 50))
	require.Equal(t, "scale", ctl.ActiveGesture())

	// +200px travel doubles the size.
	ctl.PointerMove(ctrlAltAt(250, 50))
	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, got.Width, 1e-9)

	ctl.PointerUp(ctx, ctrlAltAt(250, 50))
}

func TestCtrlClickAppendsToSelection(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)
	store.Select(a.ID)

	ctx := context.Background()
	ctl.PointerDown(ctx, ctrlAt(250, 50))
	require.Equal(t, "rotate", ctl.ActiveGesture())
	assert.ElementsMatch(t, []string{a.ID, b.ID}, store.Selection())
	ctl.PointerUp(ctx, ctrlAt(250, 50))
}

func TestCtrlPressOnEmptySpaceKeepsSelection(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	store.Select(a.ID)

	ctx := context.Background()
	ctl.PointerDown(ctx, ctrlAt(500, 500))
	ctl.PointerUp(ctx, ctrlAt(500, 500))

	assert.True(t, store.IsSelected(a.ID))
}

func TestTransformIgnoredWithEmptySelection(t *testing.T) {
	ctl, store := newTestController(t)
	placeItem(t, store, 0, 0, 100, 100)

	ctl.BeginRotate(at(0, 0))
	assert.Equal(t, "", ctl.ActiveGesture())
	ctl.BeginScale(at(0, 0))
	assert.Equal(t, "", ctl.ActiveGesture())
	_ = store
}

func TestPenDrawCommitsPath(t *testing.T) {
	ctl, store := newTestController(t)
	ctl.SetTool(ToolPen)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(0, 0))
	ctl.PointerMove(at(10, 10))
	ctl.PointerMove(at(20, 5))
	ctl.PointerUp(ctx, at(30, 0))

	paths := store.Board().Paths()
	require.Len(t, paths, 1)
	for _, p := range paths {
		assert.Len(t, p.Points, 4)
		assert.False(t, p.IsEraser)
	}
}

func TestEraserRemovesStrokes(t *testing.T) {
	ctl, store := newTestController(t)
	ctl.SetTool(ToolPen)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(0, 0))
	ctl.PointerMove(at(100, 0))
	ctl.PointerUp(ctx, at(100, 0))
	require.Len(t, store.Board().Paths(), 1)

	ctl.SetTool(ToolEraser)
	ctl.PointerDown(ctx, at(50, 5))
	ctl.PointerUp(ctx, at(50, 5))

	assert.Empty(t, store.Board().Paths())
}

func TestEraserLeavesDistantStrokes(t *testing.T) {
	ctl, store := newTestController(t)
	ctl.SetTool(ToolPen)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(0, 0))
	ctl.PointerUp(ctx, at(50, 0))

	ctl.SetTool(ToolEraser)
	ctl.PointerDown(ctx, at(500, 500))
	ctl.PointerUp(ctx, at(510, 510))

	assert.Len(t, store.Board().Paths(), 1)
}

func TestConnectSocketDragSnaps(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeNode(t, store, 0, 0)
	b := placeNode(t, store, 400, 0)
	ctl.SetTool(ToolConnect)

	outPos, ok := a.SocketPosition(valueobjects.SocketImageOutput)
	require.True(t, ok)
	inPos, ok := b.SocketPosition(valueobjects.SocketImageInput)
	require.True(t, ok)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(outPos.X, outPos.Y))
	require.Equal(t, "connect", ctl.ActiveGesture())

	// Release within the snap radius but not exactly on the socket.
	ctl.PointerMove(at(inPos.X-60, inPos.Y+10))
	ctl.PointerUp(ctx, at(inPos.X-60, inPos.Y+10))

	require.Len(t, store.Board().Connections(), 1)
	for _, conn := range store.Board().Connections() {
		assert.Equal(t, a.ID, conn.FromNodeID)
		assert.Equal(t, b.ID, conn.ToNodeID)
	}
}

func TestConnectSocketDragMissEvaporates(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeNode(t, store, 0, 0)
	placeNode(t, store, 1000, 1000)
	ctl.SetTool(ToolConnect)

	outPos, ok := a.SocketPosition(valueobjects.SocketImageOutput)
	require.True(t, ok)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(outPos.X, outPos.Y))
	ctl.PointerMove(at(500, 500))
	ctl.PointerUp(ctx, at(500, 500))

	assert.Empty(t, store.Board().Connections())
}

func TestConnectDuplicateIsSilent(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeNode(t, store, 0, 0)
	b := placeNode(t, store, 400, 0)
	ctl.SetTool(ToolConnect)

	outPos, _ := a.SocketPosition(valueobjects.SocketImageOutput)
	inPos, _ := b.SocketPosition(valueobjects.SocketImageInput)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ctl.PointerDown(ctx, at(outPos.X, outPos.Y))
		ctl.PointerMove(at(inPos.X, inPos.Y))
		ctl.PointerUp(ctx, at(inPos.X, inPos.Y))
	}

	assert.Len(t, store.Board().Connections(), 1, "the duplicate attempt is swallowed")
}

func TestTwoClickArrow(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 400, 0, 100, 100)
	ctl.SetTool(ToolConnect)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerUp(ctx, at(50, 50))
	assert.Empty(t, store.Board().Arrows(), "first click only arms the arrow")

	ctl.PointerDown(ctx, at(450, 50))
	ctl.PointerUp(ctx, at(450, 50))

	require.Len(t, store.Board().Arrows(), 1)
	for _, arrow := range store.Board().Arrows() {
		assert.Equal(t, a.ID, arrow.SourceID)
		assert.Equal(t, b.ID, arrow.TargetID)
	}
}

func TestTwoClickArrowSelfIsSilent(t *testing.T) {
	ctl, store := newTestController(t)
	placeItem(t, store, 0, 0, 100, 100)
	ctl.SetTool(ToolConnect)

	ctx := context.Background()
	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerUp(ctx, at(50, 50))
	ctl.PointerDown(ctx, at(60, 60))
	ctl.PointerUp(ctx, at(60, 60))

	assert.Empty(t, store.Board().Arrows())
}

func TestNonFiniteEventsAreDropped(t *testing.T) {
	ctl, store := newTestController(t)
	item := placeItem(t, store, 0, 0, 100, 100)

	ctx := context.Background()
	ctl.PointerDown(ctx, PointerEvent{Position: valueobjects.Point{X: math.NaN(), Y: 0}})
	assert.Equal(t, "", ctl.ActiveGesture())

	ctl.PointerDown(ctx, at(50, 50))
	ctl.PointerMove(at(150, 50))
	ctl.PointerMove(PointerEvent{Position: valueobjects.Point{X: math.Inf(1), Y: 0}})

	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.X, "the poisoned move was ignored")

	// A non-finite up cancels rather than committing garbage.
	ctl.PointerUp(ctx, PointerEvent{Position: valueobjects.Point{X: math.NaN(), Y: math.NaN()}})
	assert.Equal(t, 0.0, got.X)
}

func TestGroupAndUngroupSelection(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)
	store.Select(a.ID, b.ID)

	ctx := context.Background()
	require.NoError(t, ctl.GroupSelection(ctx, "pair"))
	require.Len(t, store.Board().Groups(), 1)

	require.NoError(t, ctl.UngroupSelection(ctx))
	assert.Empty(t, store.Board().Groups())
	assert.True(t, store.Board().HasItem(a.ID))
}

func TestGroupSelectionBelowMinimumIsSilent(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	store.Commit(context.Background(), "setup")
	depthBefore := store.History().Len()

	ctx := context.Background()
	require.NoError(t, ctl.GroupSelection(ctx, "empty"))
	store.Select(a.ID)
	require.NoError(t, ctl.GroupSelection(ctx, "solo"))

	assert.Empty(t, store.Board().Groups())
	assert.Equal(t, depthBefore, store.History().Len(), "nothing was committed")
}

func TestDeleteSelection(t *testing.T) {
	ctl, store := newTestController(t)
	a := placeItem(t, store, 0, 0, 100, 100)
	b := placeItem(t, store, 200, 0, 100, 100)
	store.Select(a.ID)

	ctx := context.Background()
	require.NoError(t, ctl.DeleteSelection(ctx))
	assert.False(t, store.Board().HasItem(a.ID))
	assert.True(t, store.Board().HasItem(b.ID))
	assert.Empty(t, store.Selection())
}
