package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boardcore/application/scene"
	"boardcore/domain/config"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
)

func newMergeFixture(t *testing.T) (*scene.Store, *aggregates.Board) {
	t.Helper()
	board, err := aggregates.NewBoard("user-1", "Test")
	require.NoError(t, err)
	board.MarkEventsAsCommitted()
	store := scene.NewStore(board, config.DefaultDomainConfig(), zap.NewNop())
	return store, board
}

func docWith(items ...*entities.Item) *aggregates.BoardDocument {
	doc := &aggregates.BoardDocument{
		Items:     map[string]*entities.Item{},
		Groups:    map[string]*entities.Group{},
		Arrows:    map[string]*entities.Arrow{},
		Paths:     map[string]*entities.DrawingPath{},
		Conns:     map[string]*entities.Connection{},
		Bookmarks: map[string]*entities.Bookmark{},
	}
	for _, item := range items {
		doc.Items[item.ID] = item
	}
	return doc
}

func TestMergeAddsAndRemovesItems(t *testing.T) {
	store, board := newMergeFixture(t)

	local, err := entities.NewTextItem("local", 0, 0, 10, 10)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(local))
	store.Commit(context.Background(), "setup")

	remote, err := entities.NewTextItem("remote", 100, 0, 10, 10)
	require.NoError(t, err)

	// Remote knows about its own item only: ours was pushed (not
	// dirty anymore) but this stale snapshot predates it arriving.
	result := board.MergeDocument(docWith(remote), aggregates.MergeOptions{})

	assert.True(t, board.HasItem(remote.ID))
	assert.False(t, board.HasItem(local.ID), "absent from remote and not locally dirty")
	assert.Equal(t, 1, result.ItemsChanged)
	assert.Equal(t, 1, result.ItemsRemoved)
}

func TestMergePreservesDirtyLocalWork(t *testing.T) {
	store, board := newMergeFixture(t)

	local, err := entities.NewTextItem("local", 0, 0, 10, 10)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(local))
	// No commit: the item is still dirty.

	result := board.MergeDocument(docWith(), aggregates.MergeOptions{
		PreservePaths: store.DirtyPaths(),
	})

	assert.True(t, board.HasItem(local.ID), "unpushed local item survives a stale snapshot")
	assert.Equal(t, 0, result.ItemsRemoved)
}

func TestMergeKeepsDraggedPosition(t *testing.T) {
	store, board := newMergeFixture(t)

	item, err := entities.NewTextItem("t", 0, 0, 10, 10)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(item))
	store.Commit(context.Background(), "setup")

	store.BeginDrag(item.ID)
	store.WithLock(func(b *aggregates.Board) {
		got, err := b.GetItem(item.ID)
		require.NoError(t, err)
		got.MoveTo(500, 500)
	})

	remote := item.Clone()
	remote.X, remote.Y = 50, 50
	remote.Text.Color = "#00f"

	board.MergeDocument(docWith(remote), aggregates.MergeOptions{
		Dragging: store.DraggingSnapshot(),
	})

	merged, err := board.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, merged.X, "drag position wins")
	assert.Equal(t, "#00f", merged.Text.Color, "non-positional remote fields still apply")
}

func TestMergePreservesHydratedURL(t *testing.T) {
	_, board := newMergeFixture(t)

	item, err := entities.NewImageItem("file-1", "", 0, 0, 100, 100)
	require.NoError(t, err)
	require.NoError(t, board.AddItem(item))
	item.Media.URL = "https://cdn.example.com/resolved.png"

	remote := item.Clone()
	remote.Media.URL = ""

	board.MergeDocument(docWith(remote), aggregates.MergeOptions{})

	merged, err := board.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/resolved.png", merged.Media.URL)
}

func TestMergeRemovesSingletonDuplicates(t *testing.T) {
	_, board := newMergeFixture(t)

	older, err := entities.NewTextItem("a", 0, 0, 10, 10)
	require.NoError(t, err)
	older.SingletonKey = "prompt-bar"

	newer, err := entities.NewTextItem("b", 20, 0, 10, 10)
	require.NoError(t, err)
	newer.SingletonKey = "prompt-bar"
	newer.CreatedAt = older.CreatedAt.Add(1)

	result := board.MergeDocument(docWith(older, newer), aggregates.MergeOptions{
		SingletonKeys: []string{"prompt-bar"},
	})

	assert.Equal(t, []string{newer.ID}, result.SingletonsRemoved)
	assert.True(t, board.HasItem(older.ID))
	assert.False(t, board.HasItem(newer.ID))
}

func TestMergePrunesDanglingReferences(t *testing.T) {
	_, board := newMergeFixture(t)

	a, err := entities.NewTextItem("a", 0, 0, 10, 10)
	require.NoError(t, err)
	b, err := entities.NewTextItem("b", 100, 0, 10, 10)
	require.NoError(t, err)

	arrow, err := entities.NewArrow(a.ID, b.ID, "", 2)
	require.NoError(t, err)

	doc := docWith(a) // b is missing
	doc.Arrows[arrow.ID] = arrow

	board.MergeDocument(doc, aggregates.MergeOptions{})

	assert.Empty(t, board.Arrows())
	assert.NoError(t, board.Validate())
}

func TestMergeDropsCorruptEntries(t *testing.T) {
	_, board := newMergeFixture(t)

	good, err := entities.NewTextItem("g", 0, 0, 10, 10)
	require.NoError(t, err)

	doc := docWith(good)
	doc.Items["nil-entry"] = nil
	bad := good.Clone()
	bad.ID = "bad"
	bad.Width = -5
	doc.Items["bad"] = bad

	board.MergeDocument(doc, aggregates.MergeOptions{})

	assert.True(t, board.HasItem(good.ID))
	assert.False(t, board.HasItem("bad"))
	assert.False(t, board.HasItem("nil-entry"))
}
