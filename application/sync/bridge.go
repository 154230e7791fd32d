// Package sync keeps a local scene in step with the shared remote
// tree: local commits flow out as entity-scoped writes, remote
// snapshots flow in through a conservative merge that never clobbers
// unpushed local work.
package sync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"boardcore/application/ports"
	"boardcore/application/scene"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	pkgerrors "boardcore/pkg/errors"
)

// Bridge connects one scene store to the remote tree. Outbound pushes
// are coalesced per path and flushed on an interval so a burst of
// commits becomes one batched write.
type Bridge struct {
	store     *scene.Store
	tree      ports.RemoteTreeStore
	resolver  *MediaResolver
	boardPath string
	logger    *zap.Logger

	flushInterval time.Duration

	mu      sync.Mutex
	pending ports.TreeUpdate

	stopChan    chan struct{}
	stoppedChan chan struct{}
	unsubscribe func()
}

// NewBridge creates a bridge for the store's board. The resolver is
// optional; without one media items stay unhydrated.
func NewBridge(store *scene.Store, tree ports.RemoteTreeStore, resolver *MediaResolver, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		store:         store,
		tree:          tree,
		resolver:      resolver,
		boardPath:     "boards/" + store.Board().ID().String(),
		logger:        logger,
		flushInterval: store.Config().PushDebounce,
		pending:       make(ports.TreeUpdate),
		stopChan:      make(chan struct{}),
		stoppedChan:   make(chan struct{}),
	}
}

// Start loads the remote state, subscribes to further changes, and
// begins the outbound flush loop. With real-time sync disabled the
// session stays local: nothing is read, pushed, or subscribed.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.store.Config().EnableRealTimeSync {
		b.logger.Info("Real-time sync disabled, running local-only")
		close(b.stoppedChan)
		return nil
	}

	value, err := b.tree.Read(ctx, b.boardPath)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return pkgerrors.Wrap(err, "initial board read failed")
	}
	if value != nil {
		b.applyRemote(ctx, value)
	}

	unsubscribe, err := b.tree.Subscribe(ctx, b.boardPath, b.applyRemote)
	if err != nil {
		return pkgerrors.Wrap(err, "board subscription failed")
	}
	b.unsubscribe = unsubscribe

	b.store.SetPusher(b)
	b.logger.Info("Starting sync bridge",
		zap.String("path", b.boardPath),
		zap.Duration("flushInterval", b.flushInterval),
	)

	go b.flushLoop(ctx)
	return nil
}

// Stop detaches from the store, flushes what is queued, and tears the
// subscription down.
func (b *Bridge) Stop() {
	b.logger.Info("Stopping sync bridge")
	b.store.SetPusher(nil)
	close(b.stopChan)
	<-b.stoppedChan
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.logger.Info("Sync bridge stopped")
}

// PushUpdate queues entity-scoped writes for the next flush. Later
// writes to the same path win. Implements scene.Pusher.
func (b *Bridge) PushUpdate(_ context.Context, update ports.TreeUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for path, value := range update {
		b.pending[b.boardPath+"/"+path] = value
	}
}

// flushLoop drains the pending batch on an interval
func (b *Bridge) flushLoop(ctx context.Context) {
	defer close(b.stoppedChan)

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping sync bridge")
			return
		case <-b.stopChan:
			b.flush(context.Background())
			return
		case <-ticker.C:
			b.flush(ctx)
		}
	}
}

// flush pushes the queued batch. On failure the batch is re-queued
// under any writes that arrived in the meantime, so newer values
// still win.
func (b *Bridge) flush(ctx context.Context) {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = make(ports.TreeUpdate)
	b.mu.Unlock()

	if err := b.tree.Update(ctx, batch); err != nil {
		b.logger.Error("Failed to push update batch",
			zap.Int("paths", len(batch)),
			zap.Error(err),
		)
		b.mu.Lock()
		for path, value := range batch {
			if _, newer := b.pending[path]; !newer {
				b.pending[path] = value
			}
		}
		b.mu.Unlock()
		return
	}
	b.logger.Debug("Pushed update batch", zap.Int("paths", len(batch)))
}

// applyRemote merges a remote snapshot into local state
func (b *Bridge) applyRemote(ctx context.Context, value ports.TreeValue) {
	doc, err := decodeDocument(value)
	if err != nil {
		b.logger.Warn("Dropping undecodable remote snapshot", zap.Error(err))
		return
	}

	preserve := b.store.DirtyPaths()
	dragging := b.store.DraggingSnapshot()

	var result aggregates.MergeResult
	b.store.WithLock(func(board *aggregates.Board) {
		result = board.MergeDocument(doc, aggregates.MergeOptions{
			PreservePaths: preserve,
			Dragging:      dragging,
			SingletonKeys: b.store.Config().SingletonKeys,
		})
	})

	b.logger.Debug("Merged remote snapshot",
		zap.Int("itemsChanged", result.ItemsChanged),
		zap.Int("itemsRemoved", result.ItemsRemoved),
		zap.Int("singletonsRemoved", len(result.SingletonsRemoved)),
	)

	// A duplicate singleton seen in remote state is deleted for
	// everyone, not just locally.
	if len(result.SingletonsRemoved) > 0 {
		tombstones := make(ports.TreeUpdate, len(result.SingletonsRemoved))
		for _, id := range result.SingletonsRemoved {
			tombstones["items/"+id] = nil
		}
		b.PushUpdate(ctx, tombstones)
	}

	if b.resolver != nil {
		b.store.Board().ForEachItem(func(item *entities.Item) bool {
			b.resolver.Request(item)
			return true
		})
	}
}

// decodeDocument converts a raw tree value into a board document
func decodeDocument(value ports.TreeValue) (*aggregates.BoardDocument, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "snapshot marshal failed")
	}
	doc := &aggregates.BoardDocument{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, pkgerrors.Wrap(err, "snapshot unmarshal failed")
	}
	return doc, nil
}
