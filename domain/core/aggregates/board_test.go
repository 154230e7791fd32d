package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
	pkgerrors "boardcore/pkg/errors"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	board, err := NewBoard("user-1", "Test Board")
	require.NoError(t, err)
	board.MarkEventsAsCommitted()
	return board
}

func addTestItem(t *testing.T, board *Board, x, y float64) *entities.Item {
	t.Helper()
	item, err := entities.NewTextItem("t", x, y, 100, 100)
	require.NoError(t, err)
	require.NoError(t, board.AddItem(item))
	return item
}

func addTestNode(t *testing.T, board *Board, x, y float64) *entities.Item {
	t.Helper()
	item, err := entities.NewNodeItem("img2img", "p", x, y, 100, 100)
	require.NoError(t, err)
	require.NoError(t, board.AddItem(item))
	return item
}

func TestBoardAddItem(t *testing.T) {
	board := newTestBoard(t)

	t.Run("assigns ascending z indices", func(t *testing.T) {
		a := addTestItem(t, board, 0, 0)
		b := addTestItem(t, board, 10, 10)
		assert.Equal(t, 1, a.ZIndex)
		assert.Equal(t, 2, b.ZIndex)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		item, err := entities.NewTextItem("t", 0, 0, 10, 10)
		require.NoError(t, err)
		require.NoError(t, board.AddItem(item))
		err = board.AddItem(item)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeConflict))
	})

	t.Run("raises item.added", func(t *testing.T) {
		board.MarkEventsAsCommitted()
		addTestItem(t, board, 50, 50)
		evts := board.GetUncommittedEvents()
		require.Len(t, evts, 1)
		assert.Equal(t, "item.added", evts[0].GetEventType())
	})
}

func TestBoardMoveItems(t *testing.T) {
	board := newTestBoard(t)
	a := addTestItem(t, board, 0, 0)
	b := addTestItem(t, board, 100, 0)

	err := board.MoveItems(map[string]valueobjects.Point{
		a.ID:      {X: 5, Y: 7},
		b.ID:      {X: 200, Y: 0},
		"missing": {X: 1, Y: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 5.0, a.X)
	assert.Equal(t, 200.0, b.X)
	assert.False(t, board.HasItem("missing"))
}

func TestBoardDeleteItemsCascade(t *testing.T) {
	board := newTestBoard(t)
	a := addTestNode(t, board, 0, 0)
	b := addTestNode(t, board, 200, 0)
	c := addTestItem(t, board, 400, 0)

	_, err := board.ConnectItems(a.ID, c.ID, "", 2)
	require.NoError(t, err)
	_, err = board.ConnectSockets(a.ID, valueobjects.SocketImageOutput, b.ID, valueobjects.SocketImageInput)
	require.NoError(t, err)
	_, err = board.FormGroup("g", []string{a.ID, b.ID, c.ID}, 10)
	require.NoError(t, err)

	require.NoError(t, board.DeleteItems([]string{a.ID}))

	assert.False(t, board.HasItem(a.ID))
	assert.Empty(t, board.Arrows(), "arrows touching the item are removed")
	assert.Empty(t, board.Connections(), "connections touching the item are removed")

	groups := board.Groups()
	require.Len(t, groups, 1)
	for _, g := range groups {
		assert.ElementsMatch(t, []string{b.ID, c.ID}, g.ChildIDs)
	}
}

func TestBoardDeleteItemsDissolvesThinGroups(t *testing.T) {
	board := newTestBoard(t)
	a := addTestItem(t, board, 0, 0)
	b := addTestItem(t, board, 200, 0)
	_, err := board.FormGroup("g", []string{a.ID, b.ID}, 10)
	require.NoError(t, err)

	require.NoError(t, board.DeleteItems([]string{a.ID}))
	assert.Empty(t, board.Groups(), "a one-child group dissolves")
	assert.True(t, board.HasItem(b.ID))
}

func TestBoardConnectSockets(t *testing.T) {
	board := newTestBoard(t)
	a := addTestNode(t, board, 0, 0)
	b := addTestNode(t, board, 200, 0)

	t.Run("rejects duplicates by endpoint tuple", func(t *testing.T) {
		_, err := board.ConnectSockets(a.ID, valueobjects.SocketImageOutput, b.ID, valueobjects.SocketImageInput)
		require.NoError(t, err)
		_, err = board.ConnectSockets(a.ID, valueobjects.SocketImageOutput, b.ID, valueobjects.SocketImageInput)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeConflict))
	})

	t.Run("allows a second connection on different sockets", func(t *testing.T) {
		_, err := board.ConnectSockets(a.ID, valueobjects.SocketTextOutput, b.ID, valueobjects.SocketTextInput)
		require.NoError(t, err)
		assert.Len(t, board.Connections(), 2)
	})

	t.Run("rejects self connection", func(t *testing.T) {
		_, err := board.ConnectSockets(a.ID, valueobjects.SocketImageOutput, a.ID, valueobjects.SocketImageInput)
		require.Error(t, err)
	})
}

func TestBoardGroupMembershipExclusive(t *testing.T) {
	board := newTestBoard(t)
	a := addTestItem(t, board, 0, 0)
	b := addTestItem(t, board, 200, 0)
	c := addTestItem(t, board, 400, 0)
	d := addTestItem(t, board, 600, 0)

	g1, err := board.FormGroup("g1", []string{a.ID, b.ID, c.ID}, 10)
	require.NoError(t, err)
	_, err = board.FormGroup("g2", []string{c.ID, d.ID}, 10)
	require.NoError(t, err)

	got, ok := board.GroupOf(c.ID)
	require.True(t, ok)
	assert.NotEqual(t, g1.ID, got.ID, "item moved to the new group")

	first, ok := board.GroupOf(a.ID)
	require.True(t, ok)
	assert.Equal(t, g1.ID, first.ID)
	assert.False(t, first.HasChild(c.ID))
}

func TestBoardErasePaths(t *testing.T) {
	board := newTestBoard(t)

	stroke, err := entities.NewDrawingPath("#000", 8, false)
	require.NoError(t, err)
	stroke.AppendPoint(0, 0, 1)
	stroke.AppendPoint(50, 0, 1)
	require.NoError(t, board.CommitPath(stroke))

	far, err := entities.NewDrawingPath("#000", 8, false)
	require.NoError(t, err)
	far.AppendPoint(0, 500, 1)
	require.NoError(t, board.CommitPath(far))

	removed := board.ErasePaths([]valueobjects.PathPoint{{X: 25, Y: 10}}, 20)
	assert.Equal(t, []string{stroke.ID}, removed)
	assert.Len(t, board.Paths(), 1)
}

func TestBoardCommitPathRejectsEraser(t *testing.T) {
	board := newTestBoard(t)
	eraser, err := entities.NewDrawingPath("", 8, true)
	require.NoError(t, err)
	eraser.AppendPoint(0, 0, 1)
	assert.Error(t, board.CommitPath(eraser))
}

func TestBoardSnapshotRestore(t *testing.T) {
	board := newTestBoard(t)
	a := addTestNode(t, board, 0, 0)
	b := addTestNode(t, board, 200, 0)
	_, err := board.ConnectSockets(a.ID, valueobjects.SocketImageOutput, b.ID, valueobjects.SocketImageInput)
	require.NoError(t, err)

	snap := board.Snapshot()

	require.NoError(t, board.DeleteItems([]string{b.ID}))
	require.False(t, board.HasItem(b.ID))

	t.Run("restore brings items back", func(t *testing.T) {
		board.Restore(snap, "undo")
		assert.True(t, board.HasItem(b.ID))
	})

	t.Run("snapshot is isolated from later mutation", func(t *testing.T) {
		item, err := board.GetItem(a.ID)
		require.NoError(t, err)
		item.MoveTo(999, 999)

		board.Restore(snap, "undo")
		restored, err := board.GetItem(a.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, restored.X)
	})

	t.Run("restore prunes orphaned connections", func(t *testing.T) {
		thin := board.Snapshot()
		delete(thin.Items, b.ID)
		board.Restore(thin, "redo")
		assert.Empty(t, board.Connections())
		assert.NoError(t, board.Validate())
	})
}

func TestBoardEnforceSingleton(t *testing.T) {
	board := newTestBoard(t)

	first, err := entities.NewTextItem("one", 0, 0, 10, 10)
	require.NoError(t, err)
	first.SingletonKey = "prompt-bar"
	require.NoError(t, board.AddItem(first))

	second, err := entities.NewTextItem("two", 20, 0, 10, 10)
	require.NoError(t, err)
	second.SingletonKey = "prompt-bar"
	second.CreatedAt = first.CreatedAt.Add(1)
	require.NoError(t, board.AddItem(second))

	removed := board.EnforceSingleton("prompt-bar")
	assert.Equal(t, []string{second.ID}, removed)
	assert.True(t, board.HasItem(first.ID))
}

func TestBoardDocumentRoundTrip(t *testing.T) {
	board := newTestBoard(t)
	a := addTestNode(t, board, 0, 0)
	b := addTestNode(t, board, 200, 0)
	_, err := board.ConnectItems(a.ID, b.ID, "#f00", 2)
	require.NoError(t, err)

	doc := board.ToDocument()
	rebuilt, err := FromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, board.ID(), rebuilt.ID())
	assert.Len(t, rebuilt.Items(), 2)
	assert.Len(t, rebuilt.Arrows(), 1)
}

func TestFromDocumentPrunesCorruptEntries(t *testing.T) {
	board := newTestBoard(t)
	a := addTestNode(t, board, 0, 0)
	b := addTestNode(t, board, 200, 0)
	_, err := board.ConnectItems(a.ID, b.ID, "", 2)
	require.NoError(t, err)

	doc := board.ToDocument()
	delete(doc.Items, b.ID)
	doc.Groups["bad"] = nil

	rebuilt, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Empty(t, rebuilt.Arrows(), "arrow to the missing item is pruned")
	assert.Empty(t, rebuilt.Groups())
	assert.NoError(t, rebuilt.Validate())
}
