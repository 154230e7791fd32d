// Package memory provides an in-process RemoteTreeStore. It backs
// tests and single-process deployments, and mimics the remote tree's
// behavior closely: values are JSON-normalized on write and
// subscribers see full-subtree snapshots after every change.
package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"boardcore/application/ports"
	pkgerrors "boardcore/pkg/errors"
)

type subscriber struct {
	id      int
	path    string
	handler ports.SnapshotHandler
}

// TreeStore is an in-memory JSON tree with path subscriptions
type TreeStore struct {
	mu     sync.RWMutex
	root   map[string]interface{}
	subs   []subscriber
	nextID int
	logger *zap.Logger
}

// NewTreeStore creates an empty tree
func NewTreeStore(logger *zap.Logger) *TreeStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeStore{
		root:   make(map[string]interface{}),
		logger: logger,
	}
}

// Write replaces the value at a path
func (s *TreeStore) Write(ctx context.Context, path string, value interface{}) error {
	return s.Update(ctx, ports.TreeUpdate{path: value})
}

// Update applies a multi-path batch atomically. A nil value deletes
// the path.
func (s *TreeStore) Update(ctx context.Context, update ports.TreeUpdate) error {
	s.mu.Lock()
	for path, value := range update {
		segments := splitPath(path)
		if len(segments) == 0 {
			s.mu.Unlock()
			return pkgerrors.NewValidationError("empty tree path")
		}
		if value == nil {
			removeAt(s.root, segments)
			continue
		}
		normalized, err := normalize(value)
		if err != nil {
			s.mu.Unlock()
			return pkgerrors.Wrap(err, "value not representable as JSON")
		}
		setAt(s.root, segments, normalized)
	}
	notify := s.matchingSubscribers(update)
	s.mu.Unlock()

	for _, sub := range notify {
		snapshot, err := s.Read(ctx, sub.path)
		if err != nil {
			continue
		}
		sub.handler(ctx, snapshot)
	}
	return nil
}

// Read fetches a deep copy of the subtree at a path
func (s *TreeStore) Read(_ context.Context, path string) (ports.TreeValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := lookupAt(s.root, splitPath(path))
	if node == nil {
		return nil, pkgerrors.NewNotFoundError("no value at path")
	}
	asMap, ok := node.(map[string]interface{})
	if !ok {
		return nil, pkgerrors.NewValidationError("path does not hold an object")
	}
	copied, err := normalize(asMap)
	if err != nil {
		return nil, err
	}
	return ports.TreeValue(copied.(map[string]interface{})), nil
}

// Remove deletes the subtree at a path
func (s *TreeStore) Remove(ctx context.Context, path string) error {
	return s.Update(ctx, ports.TreeUpdate{path: nil})
}

// Subscribe registers a handler for changes under a path. The handler
// fires after every batch that touches the subtree.
func (s *TreeStore) Subscribe(_ context.Context, path string, handler ports.SnapshotHandler) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, path: path, handler: handler})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}, nil
}

func (s *TreeStore) matchingSubscribers(update ports.TreeUpdate) []subscriber {
	matched := []subscriber{}
	for _, sub := range s.subs {
		for path := range update {
			if path == sub.path || strings.HasPrefix(path, sub.path+"/") || strings.HasPrefix(sub.path, path+"/") {
				matched = append(matched, sub)
				break
			}
		}
	}
	return matched
}

// normalize round-trips a value through JSON so stored state matches
// what a real remote would hold.
func normalize(value interface{}) (interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func setAt(node map[string]interface{}, segments []string, value interface{}) {
	for len(segments) > 1 {
		child, ok := node[segments[0]].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			node[segments[0]] = child
		}
		node = child
		segments = segments[1:]
	}
	node[segments[0]] = value
}

func removeAt(node map[string]interface{}, segments []string) {
	for len(segments) > 1 {
		child, ok := node[segments[0]].(map[string]interface{})
		if !ok {
			return
		}
		node = child
		segments = segments[1:]
	}
	delete(node, segments[0])
}

func lookupAt(node map[string]interface{}, segments []string) interface{} {
	var current interface{} = node
	for _, segment := range segments {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = asMap[segment]
		if !ok {
			return nil
		}
	}
	return current
}
