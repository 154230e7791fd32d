package sync

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"boardcore/application/ports"
	"boardcore/application/scene"
	"boardcore/domain/config"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
)

// MediaResolver turns stored file ids into display URLs. Resolution
// runs in small batches with a pause in between so a board full of
// media does not stampede the storage backend, and each lookup
// retries with exponential backoff before the item is marked broken.
type MediaResolver struct {
	storage ports.BlobStorage
	store   *scene.Store
	cfg     *config.DomainConfig
	logger  *zap.Logger
	sem     *semaphore.Weighted

	mu       sync.Mutex
	hydrated map[string]struct{}
	inflight map[string]struct{}

	requests    chan string
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewMediaResolver creates a resolver over the given blob storage
func NewMediaResolver(storage ports.BlobStorage, store *scene.Store, logger *zap.Logger) *MediaResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := store.Config()
	return &MediaResolver{
		storage:     storage,
		store:       store,
		cfg:         cfg,
		logger:      logger,
		sem:         semaphore.NewWeighted(int64(cfg.ResolverBatchSize)),
		hydrated:    make(map[string]struct{}),
		inflight:    make(map[string]struct{}),
		requests:    make(chan string, 256),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start begins the batch dispatch loop
func (r *MediaResolver) Start(ctx context.Context) {
	r.logger.Info("Starting media resolver",
		zap.Int("batchSize", r.cfg.ResolverBatchSize),
		zap.Duration("batchDelay", r.cfg.ResolverBatchDelay),
	)
	go r.dispatchLoop(ctx)
}

// Stop drains nothing further and waits for the loop to exit
func (r *MediaResolver) Stop() {
	close(r.stopChan)
	<-r.stoppedChan
}

// Request queues hydration for a media item according to the
// hydration policy for its kind. Deferred kinds wait for an explicit
// Hydrate call. Already-hydrated and in-flight items are skipped.
func (r *MediaResolver) Request(item *entities.Item) {
	if item == nil || !item.IsMedia() || item.Media == nil {
		return
	}
	if item.Media.URL != "" || item.Media.Broken {
		return
	}
	if r.cfg.HydrationFor(string(item.Kind)) == config.HydrateDeferred {
		return
	}
	r.enqueue(item.ID)
}

// Hydrate queues hydration regardless of policy. Used when a deferred
// item, typically video, is explicitly opened.
func (r *MediaResolver) Hydrate(itemID string) {
	r.enqueue(itemID)
}

// Invalidate forgets a file id so the next request re-resolves it.
// Called when a URL expires or the file is replaced.
func (r *MediaResolver) Invalidate(fileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hydrated, fileID)
}

func (r *MediaResolver) enqueue(itemID string) {
	r.mu.Lock()
	if _, busy := r.inflight[itemID]; busy {
		r.mu.Unlock()
		return
	}
	r.inflight[itemID] = struct{}{}
	r.mu.Unlock()

	select {
	case r.requests <- itemID:
	default:
		// Queue full; drop and let a later snapshot re-request.
		r.mu.Lock()
		delete(r.inflight, itemID)
		r.mu.Unlock()
		r.logger.Warn("Media resolve queue full, dropping request", zap.String("item_id", itemID))
	}
}

// dispatchLoop gathers queued requests into batches
func (r *MediaResolver) dispatchLoop(ctx context.Context) {
	defer close(r.stoppedChan)

	for {
		batch := r.nextBatch(ctx)
		if batch == nil {
			return
		}

		var wg sync.WaitGroup
		for _, itemID := range batch {
			if err := r.sem.Acquire(ctx, 1); err != nil {
				return
			}
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				defer r.sem.Release(1)
				r.resolveOne(ctx, id)
			}(itemID)
		}
		wg.Wait()

		if r.cfg.ResolverBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			case <-time.After(r.cfg.ResolverBatchDelay):
			}
		}
	}
}

// nextBatch blocks for the first request, then drains up to the batch
// size without blocking. Returns nil on shutdown.
func (r *MediaResolver) nextBatch(ctx context.Context) []string {
	var first string
	select {
	case <-ctx.Done():
		return nil
	case <-r.stopChan:
		return nil
	case first = <-r.requests:
	}

	batch := []string{first}
	for len(batch) < r.cfg.ResolverBatchSize {
		select {
		case id := <-r.requests:
			batch = append(batch, id)
		default:
			return batch
		}
	}
	return batch
}

// resolveOne looks up the URL for a single item with retries and
// writes the result back if the item still exists.
func (r *MediaResolver) resolveOne(ctx context.Context, itemID string) {
	defer func() {
		r.mu.Lock()
		delete(r.inflight, itemID)
		r.mu.Unlock()
	}()

	item, err := r.store.Board().GetItem(itemID)
	if err != nil || item.Media == nil {
		return
	}
	fileID := item.Media.FileID

	r.mu.Lock()
	if _, done := r.hydrated[fileID]; done && item.Media.URL != "" {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	var url string
	policy := backoff.WithMaxRetries(r.newBackoff(), uint64(r.cfg.ResolverMaxRetries))
	err = backoff.Retry(func() error {
		var lookupErr error
		url, lookupErr = r.storage.ResolveURL(ctx, fileID)
		return lookupErr
	}, backoff.WithContext(policy, ctx))

	// The item can disappear while the lookup is in flight.
	r.store.WithLock(func(board *aggregates.Board) {
		current, getErr := board.GetItem(itemID)
		if getErr != nil || current.Media == nil {
			return
		}
		if err != nil {
			current.Media.Broken = true
			return
		}
		current.Media.URL = url
		current.Media.Broken = false
	})

	if err != nil {
		r.logger.Warn("Media resolve failed",
			zap.String("item_id", itemID),
			zap.String("file_id", fileID),
			zap.Error(err),
		)
		return
	}

	r.mu.Lock()
	r.hydrated[fileID] = struct{}{}
	r.mu.Unlock()
}

// newBackoff builds the retry schedule: base delay doubling per
// attempt, no jitter so tests can reason about timing.
func (r *MediaResolver) newBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.ResolverBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = 8 * r.cfg.ResolverBaseDelay
	bo.MaxElapsedTime = 0
	return bo
}
