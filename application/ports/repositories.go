package ports

import (
	"context"

	"boardcore/domain/core/aggregates"
	"boardcore/domain/events"
)

// TreeValue is the JSON-shaped payload stored under a tree path
type TreeValue map[string]interface{}

// TreeUpdate is a batch of path-to-value writes applied atomically.
// A nil value deletes the path.
type TreeUpdate map[string]interface{}

// SnapshotHandler receives the full value under a subscribed path each
// time it changes remotely.
type SnapshotHandler func(ctx context.Context, value TreeValue)

// RemoteTreeStore defines the interface for the shared JSON tree that
// backs real-time board sync. Paths are slash-separated, rooted at the
// board document.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type RemoteTreeStore interface {
	// Write replaces the value at a path
	Write(ctx context.Context, path string, value interface{}) error

	// Update applies a multi-path batch atomically
	Update(ctx context.Context, update TreeUpdate) error

	// Read fetches the current value at a path
	Read(ctx context.Context, path string) (TreeValue, error)

	// Remove deletes the subtree at a path
	Remove(ctx context.Context, path string) error

	// Subscribe registers a handler for remote changes under a path.
	// The returned func cancels the subscription.
	Subscribe(ctx context.Context, path string, handler SnapshotHandler) (func(), error)
}

// BoardRepository defines the interface for board document persistence
type BoardRepository interface {
	// Save persists a board (create or update)
	Save(ctx context.Context, board *aggregates.Board) error

	// GetByID retrieves a board by its ID
	GetByID(ctx context.Context, id aggregates.BoardID) (*aggregates.Board, error)

	// GetByUserID retrieves all boards for a user
	GetByUserID(ctx context.Context, userID string) ([]*aggregates.Board, error)

	// Delete removes a board and its entities
	Delete(ctx context.Context, id aggregates.BoardID) error
}

// EventStore defines the interface for durable domain event storage.
// Saved events sit in an outbox until a processor publishes them.
type EventStore interface {
	// SaveEvents appends a batch of raised events
	SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error
}

// BlobStorage defines the interface for media file storage
type BlobStorage interface {
	// ResolveURL exchanges a stored file id for a display URL
	ResolveURL(ctx context.Context, fileID string) (string, error)

	// Delete removes a stored file
	Delete(ctx context.Context, fileID string) error
}

// AuthProvider verifies session tokens and yields the caller identity
type AuthProvider interface {
	// Verify validates a token and returns the user id
	Verify(ctx context.Context, token string) (string, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
