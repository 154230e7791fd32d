package sync

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boardcore/application/scene"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	pkgerrors "boardcore/pkg/errors"
)

// flakyStorage fails the first failures lookups per file id, then
// resolves to a deterministic URL.
type flakyStorage struct {
	mu       sync.Mutex
	failures int
	calls    map[string]int
}

func newFlakyStorage(failures int) *flakyStorage {
	return &flakyStorage{failures: failures, calls: make(map[string]int)}
}

func (s *flakyStorage) ResolveURL(_ context.Context, fileID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[fileID]++
	if s.calls[fileID] <= s.failures {
		return "", pkgerrors.NewInternalError("storage unavailable")
	}
	return fmt.Sprintf("https://cdn.example.com/%s", fileID), nil
}

func (s *flakyStorage) Delete(_ context.Context, _ string) error { return nil }

func (s *flakyStorage) callCount(fileID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[fileID]
}

func newResolverFixture(t *testing.T, storage *flakyStorage) (*scene.Store, *MediaResolver) {
	t.Helper()
	board, err := aggregates.NewBoard("user-1", "Media board")
	require.NoError(t, err)
	store := scene.NewStore(board, fastConfig(), zap.NewNop())
	resolver := NewMediaResolver(storage, store, zap.NewNop())
	return store, resolver
}

func addImage(t *testing.T, store *scene.Store, fileID string) *entities.Item {
	t.Helper()
	item, err := entities.NewImageItem(fileID, "", 0, 0, 100, 100)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(item))
	return item
}

func TestResolverHydratesImage(t *testing.T) {
	storage := newFlakyStorage(0)
	store, resolver := newResolverFixture(t, storage)
	resolver.Start(context.Background())
	defer resolver.Stop()

	item := addImage(t, store, "file-1")
	resolver.Request(item)

	eventually(t, func() bool {
		got, err := store.Board().GetItem(item.ID)
		return err == nil && got.Media.URL == "https://cdn.example.com/file-1"
	}, "URL resolved and written back")
}

func TestResolverRetriesThenSucceeds(t *testing.T) {
	storage := newFlakyStorage(2)
	store, resolver := newResolverFixture(t, storage)
	resolver.Start(context.Background())
	defer resolver.Stop()

	item := addImage(t, store, "file-1")
	resolver.Request(item)

	eventually(t, func() bool {
		got, err := store.Board().GetItem(item.ID)
		return err == nil && got.Media.URL != ""
	}, "resolved after transient failures")
	assert.Equal(t, 3, storage.callCount("file-1"))
}

func TestResolverMarksBrokenAfterRetriesExhausted(t *testing.T) {
	storage := newFlakyStorage(1000)
	store, resolver := newResolverFixture(t, storage)
	resolver.Start(context.Background())
	defer resolver.Stop()

	item := addImage(t, store, "file-1")
	resolver.Request(item)

	eventually(t, func() bool {
		got, err := store.Board().GetItem(item.ID)
		return err == nil && got.Media.Broken
	}, "item marked broken")
	// Initial attempt plus the configured retries.
	assert.Equal(t, store.Config().ResolverMaxRetries+1, storage.callCount("file-1"))

	// Broken items are not re-requested.
	resolver.Request(item)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, store.Config().ResolverMaxRetries+1, storage.callCount("file-1"))
}

func TestResolverSkipsHydratedItems(t *testing.T) {
	storage := newFlakyStorage(0)
	store, resolver := newResolverFixture(t, storage)
	resolver.Start(context.Background())
	defer resolver.Stop()

	item := addImage(t, store, "file-1")
	resolver.Request(item)
	eventually(t, func() bool {
		got, err := store.Board().GetItem(item.ID)
		return err == nil && got.Media.URL != ""
	}, "first resolve lands")

	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	resolver.Request(got)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, storage.callCount("file-1"), "hydrated item not re-resolved")
}

func TestResolverDefersVideoUntilHydrateCalled(t *testing.T) {
	storage := newFlakyStorage(0)
	store, resolver := newResolverFixture(t, storage)
	resolver.Start(context.Background())
	defer resolver.Stop()

	video, err := entities.NewVideoItem("vid-1", "", 0, 0, 320, 240)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(video))

	resolver.Request(video)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, storage.callCount("vid-1"), "deferred kind waits for explicit hydration")

	resolver.Hydrate(video.ID)
	eventually(t, func() bool {
		got, err := store.Board().GetItem(video.ID)
		return err == nil && got.Media.URL != ""
	}, "explicit hydrate resolves the video")
}

func TestResolverInvalidateForcesReresolve(t *testing.T) {
	storage := newFlakyStorage(0)
	store, resolver := newResolverFixture(t, storage)
	resolver.Start(context.Background())
	defer resolver.Stop()

	item := addImage(t, store, "file-1")
	resolver.Request(item)
	eventually(t, func() bool {
		got, err := store.Board().GetItem(item.ID)
		return err == nil && got.Media.URL != ""
	}, "first resolve lands")

	// The stored URL expired; clear it and invalidate the file.
	store.WithLock(func(board *aggregates.Board) {
		got, err := board.GetItem(item.ID)
		require.NoError(t, err)
		got.Media.URL = ""
	})
	resolver.Invalidate("file-1")

	got, err := store.Board().GetItem(item.ID)
	require.NoError(t, err)
	resolver.Request(got)

	eventually(t, func() bool {
		return storage.callCount("file-1") == 2
	}, "invalidated file resolved again")
}

func TestResolverIgnoresNonMediaItems(t *testing.T) {
	storage := newFlakyStorage(0)
	store, resolver := newResolverFixture(t, storage)
	resolver.Start(context.Background())
	defer resolver.Stop()

	text, err := entities.NewTextItem("hello", 0, 0, 10, 10)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(text))

	resolver.Request(text)
	resolver.Request(nil)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, storage.calls)
}
