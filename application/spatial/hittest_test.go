package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
)

func newBoard(t *testing.T) *aggregates.Board {
	t.Helper()
	board, err := aggregates.NewBoard("user-1", "Test")
	require.NoError(t, err)
	return board
}

func place(t *testing.T, board *aggregates.Board, x, y, w, h float64) *entities.Item {
	t.Helper()
	item, err := entities.NewTextItem("t", x, y, w, h)
	require.NoError(t, err)
	require.NoError(t, board.AddItem(item))
	return item
}

func TestItemAtTopmostWins(t *testing.T) {
	board := newBoard(t)
	bottom := place(t, board, 0, 0, 100, 100)
	top := place(t, board, 50, 50, 100, 100)

	h := NewHitTester(board)

	hit := h.ItemAt(valueobjects.Point{X: 75, Y: 75})
	require.NotNil(t, hit)
	assert.Equal(t, top.ID, hit.ID, "overlap resolves to the higher z index")

	hit = h.ItemAt(valueobjects.Point{X: 10, Y: 10})
	require.NotNil(t, hit)
	assert.Equal(t, bottom.ID, hit.ID)

	assert.Nil(t, h.ItemAt(valueobjects.Point{X: 500, Y: 500}))
}

func TestItemAtRespectsRotation(t *testing.T) {
	board := newBoard(t)
	item := place(t, board, 100, 100, 200, 50)
	item.Rotation = 90

	h := NewHitTester(board)

	// The corner of the unrotated box is empty space once the item
	// has spun about its center (200, 125).
	assert.Nil(t, h.ItemAt(valueobjects.Point{X: 110, Y: 105}))
	assert.NotNil(t, h.ItemAt(valueobjects.Point{X: 200, Y: 215}))
}

func TestSocketAtSnapsWithinRadius(t *testing.T) {
	board := newBoard(t)
	node, err := entities.NewNodeItem("img2img", "p", 100, 100, 100, 100)
	require.NoError(t, err)
	require.NoError(t, board.AddItem(node))

	h := NewHitTester(board)

	outPos, ok := node.SocketPosition(valueobjects.SocketImageOutput)
	require.True(t, ok)

	near := valueobjects.Point{X: outPos.X + 60, Y: outPos.Y}
	item, socket, found := h.SocketAt(near, 100)
	require.True(t, found)
	assert.Equal(t, node.ID, item.ID)
	assert.Equal(t, valueobjects.SocketImageOutput, socket)

	far := valueobjects.Point{X: outPos.X + 150, Y: outPos.Y}
	_, _, found = h.SocketAt(far, 100)
	assert.False(t, found)
}

func TestArrowAtSamplesCurve(t *testing.T) {
	board := newBoard(t)
	a := place(t, board, 0, 0, 100, 100)
	b := place(t, board, 300, 0, 100, 100)
	arrow, err := board.ConnectItems(a.ID, b.ID, "", 2)
	require.NoError(t, err)

	h := NewHitTester(board)

	// The curve runs from (100, 50) to (300, 50) with horizontal
	// handles, so its midpoint stays on y=50.
	hit := h.ArrowAt(valueobjects.Point{X: 200, Y: 50})
	require.NotNil(t, hit)
	assert.Equal(t, arrow.ID, hit.ID)

	assert.Nil(t, h.ArrowAt(valueobjects.Point{X: 200, Y: 120}))
}

func TestConnectionAtSamplesWire(t *testing.T) {
	board := newBoard(t)
	a, err := entities.NewNodeItem("img2img", "p", 0, 0, 100, 100)
	require.NoError(t, err)
	require.NoError(t, board.AddItem(a))
	b, err := entities.NewNodeItem("img2img", "p", 300, 0, 100, 100)
	require.NoError(t, err)
	require.NoError(t, board.AddItem(b))

	conn, err := board.ConnectSockets(a.ID, valueobjects.SocketImageOutput, b.ID, valueobjects.SocketImageInput)
	require.NoError(t, err)

	h := NewHitTester(board)

	start, ok := a.SocketPosition(valueobjects.SocketImageOutput)
	require.True(t, ok)
	end, ok := b.SocketPosition(valueobjects.SocketImageInput)
	require.True(t, ok)

	// With horizontal control handles the curve midpoint is the average
	// of the two anchors.
	mid := valueobjects.Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	hit := h.ConnectionAt(mid)
	require.NotNil(t, hit)
	assert.Equal(t, conn.ID, hit.ID)

	assert.Nil(t, h.ConnectionAt(valueobjects.Point{X: mid.X, Y: start.Y + 80}))
	assert.Nil(t, h.ConnectionAt(valueobjects.Point{X: math.Inf(1), Y: 0}))
}

func TestItemsInRect(t *testing.T) {
	board := newBoard(t)
	inside := place(t, board, 10, 10, 50, 50)
	touching := place(t, board, 100, 0, 50, 50)
	outside := place(t, board, 500, 500, 50, 50)

	h := NewHitTester(board)

	ids := h.ItemsInRect(valueobjects.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	assert.Contains(t, ids, inside.ID)
	assert.Contains(t, ids, touching.ID, "edge contact counts")
	assert.NotContains(t, ids, outside.ID)

	t.Run("inverted rect is normalized", func(t *testing.T) {
		ids := h.ItemsInRect(valueobjects.Rect{X: 100, Y: 100, Width: -100, Height: -100})
		assert.Contains(t, ids, inside.ID)
	})
}

func TestQueriesIgnoreNonFinitePoints(t *testing.T) {
	board := newBoard(t)
	place(t, board, 0, 0, 100, 100)
	h := NewHitTester(board)

	nan := valueobjects.Point{X: math.NaN(), Y: 0}
	assert.Nil(t, h.ItemAt(nan))
	_, _, found := h.SocketAt(nan, 100)
	assert.False(t, found)
}
