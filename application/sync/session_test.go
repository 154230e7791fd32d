package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boardcore/application/gestures"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
	"boardcore/infrastructure/persistence/memory"
)

// These tests drive a whole editing session through the gesture
// controller on one client and watch the result land on a second
// client through the shared tree.

func pointer(x, y float64) gestures.PointerEvent {
	return gestures.PointerEvent{Position: valueobjects.Point{X: x, Y: y}}
}

func TestSessionDragReachesPeer(t *testing.T) {
	ctx := context.Background()
	tree := memory.NewTreeStore(zap.NewNop())

	seed, err := aggregates.NewBoard("user-1", "Session")
	require.NoError(t, err)

	storeA, bridgeA := twin(t, tree, seed)
	storeB, bridgeB := twin(t, tree, seed)
	require.NoError(t, bridgeA.Start(ctx))
	defer bridgeA.Stop()
	require.NoError(t, bridgeB.Start(ctx))
	defer bridgeB.Stop()

	ctl := gestures.NewController(storeA, zap.NewNop())

	item, err := entities.NewTextItem("note", 0, 0, 100, 100)
	require.NoError(t, err)
	require.NoError(t, storeA.AddItem(item))
	storeA.Commit(ctx, "add")
	eventually(t, func() bool { return storeB.Board().HasItem(item.ID) }, "item arrived")

	ctl.PointerDown(ctx, pointer(50, 50))
	ctl.PointerMove(pointer(150, 90))
	ctl.PointerUp(ctx, pointer(150, 90))

	eventually(t, func() bool {
		got, err := storeB.Board().GetItem(item.ID)
		return err == nil && got.X == 100 && got.Y == 40
	}, "peer sees the dragged position")
}

func TestSessionDrawAndEraseReachPeer(t *testing.T) {
	ctx := context.Background()
	tree := memory.NewTreeStore(zap.NewNop())

	seed, err := aggregates.NewBoard("user-1", "Session")
	require.NoError(t, err)

	storeA, bridgeA := twin(t, tree, seed)
	storeB, bridgeB := twin(t, tree, seed)
	require.NoError(t, bridgeA.Start(ctx))
	defer bridgeA.Stop()
	require.NoError(t, bridgeB.Start(ctx))
	defer bridgeB.Stop()

	ctl := gestures.NewController(storeA, zap.NewNop())
	ctl.SetTool(gestures.ToolPen)

	ctl.PointerDown(ctx, pointer(0, 0))
	ctl.PointerMove(pointer(50, 10))
	ctl.PointerUp(ctx, pointer(100, 0))

	eventually(t, func() bool {
		return len(storeB.Board().Paths()) == 1
	}, "stroke arrived on the peer")

	ctl.SetTool(gestures.ToolEraser)
	ctl.PointerDown(ctx, pointer(50, 8))
	ctl.PointerUp(ctx, pointer(50, 8))
	require.Empty(t, storeA.Board().Paths())

	eventually(t, func() bool {
		return len(storeB.Board().Paths()) == 0
	}, "erase arrived on the peer")
}

func TestSessionUndoReachesPeer(t *testing.T) {
	ctx := context.Background()
	tree := memory.NewTreeStore(zap.NewNop())

	seed, err := aggregates.NewBoard("user-1", "Session")
	require.NoError(t, err)

	storeA, bridgeA := twin(t, tree, seed)
	storeB, bridgeB := twin(t, tree, seed)
	require.NoError(t, bridgeA.Start(ctx))
	defer bridgeA.Stop()
	require.NoError(t, bridgeB.Start(ctx))
	defer bridgeB.Stop()

	item, err := entities.NewTextItem("note", 0, 0, 100, 100)
	require.NoError(t, err)
	require.NoError(t, storeA.AddItem(item))
	storeA.Commit(ctx, "add")
	eventually(t, func() bool { return storeB.Board().HasItem(item.ID) }, "item arrived")

	require.NoError(t, storeA.MoveItems(map[string]valueobjects.Point{item.ID: {X: 400, Y: 0}}))
	storeA.Commit(ctx, "move")
	eventually(t, func() bool {
		got, err := storeB.Board().GetItem(item.ID)
		return err == nil && got.X == 400
	}, "move arrived")

	require.NoError(t, storeA.Undo(ctx))
	eventually(t, func() bool {
		got, err := storeB.Board().GetItem(item.ID)
		return err == nil && got.X == 0
	}, "undo arrived")

	require.NoError(t, storeA.Redo(ctx))
	eventually(t, func() bool {
		got, err := storeB.Board().GetItem(item.ID)
		return err == nil && got.X == 400
	}, "redo arrived")
}

func TestSessionConnectionsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	tree := memory.NewTreeStore(zap.NewNop())

	seed, err := aggregates.NewBoard("user-1", "Session")
	require.NoError(t, err)

	storeA, bridgeA := twin(t, tree, seed)
	storeB, bridgeB := twin(t, tree, seed)
	require.NoError(t, bridgeA.Start(ctx))
	defer bridgeA.Stop()
	require.NoError(t, bridgeB.Start(ctx))
	defer bridgeB.Stop()

	ctl := gestures.NewController(storeA, zap.NewNop())

	a, err := entities.NewNodeItem("img2img", "p", 0, 0, 100, 100)
	require.NoError(t, err)
	b, err := entities.NewNodeItem("img2img", "p", 400, 0, 100, 100)
	require.NoError(t, err)
	require.NoError(t, storeA.AddItem(a))
	require.NoError(t, storeA.AddItem(b))
	storeA.Commit(ctx, "add nodes")

	ctl.SetTool(gestures.ToolConnect)
	outPos, ok := a.SocketPosition(valueobjects.SocketImageOutput)
	require.True(t, ok)
	inPos, ok := b.SocketPosition(valueobjects.SocketImageInput)
	require.True(t, ok)

	ctl.PointerDown(ctx, pointer(outPos.X, outPos.Y))
	ctl.PointerMove(pointer(inPos.X, inPos.Y))
	ctl.PointerUp(ctx, pointer(inPos.X, inPos.Y))
	require.Len(t, storeA.Board().Connections(), 1)

	eventually(t, func() bool {
		return len(storeB.Board().Connections()) == 1
	}, "connection arrived on the peer")

	for _, conn := range storeB.Board().Connections() {
		assert.Equal(t, a.ID, conn.FromNodeID)
		assert.Equal(t, b.ID, conn.ToNodeID)
	}
}
