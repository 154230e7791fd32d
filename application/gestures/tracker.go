package gestures

import (
	"sync"

	"boardcore/application/ports"
	"boardcore/domain/core/valueobjects"
)

// TrackerObserver is notified on every tracker update so dependent
// overlays (arrow endpoints, connection wires, spatial indexes) can
// follow an item through a gesture without a scene re-render.
type TrackerObserver func(itemID string, pos valueobjects.Point)

// TrackerSet caches the visual position of each item in an active
// gesture. While a drag, rotate or scale is in flight the tracked
// position is the one on screen; the committed board position catches
// up only when the gesture ends. Every update is pushed to the render
// handle for the item, if a registry is attached, and to any observers.
type TrackerSet struct {
	mu        sync.RWMutex
	ghosts    map[string]valueobjects.Point
	registry  ports.VisualRegistry
	observers []TrackerObserver
}

// NewTrackerSet creates an empty tracker set with no registry attached
func NewTrackerSet() *TrackerSet {
	return &TrackerSet{ghosts: map[string]valueobjects.Point{}}
}

// SetRegistry attaches the render-layer handle registry. Passing nil
// detaches it; tracked positions are still kept for observers.
func (t *TrackerSet) SetRegistry(registry ports.VisualRegistry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.registry = registry
}

// Observe registers an observer for tracker updates. Observers cannot
// be removed; they are expected to live as long as the controller.
func (t *TrackerSet) Observe(fn TrackerObserver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Set records the current visual position of an item and fans it out
// to the item's render handle and to observers.
func (t *TrackerSet) Set(itemID string, pos valueobjects.Point) {
	t.mu.Lock()
	t.ghosts[itemID] = pos
	registry := t.registry
	observers := t.observers
	t.mu.Unlock()

	if registry != nil {
		if handle, ok := registry.Handle(itemID); ok {
			handle.SetGhostPosition(pos.X, pos.Y)
		}
	}
	for _, fn := range observers {
		fn(itemID, pos)
	}
}

// Get returns the tracked position of an item, if it is in a gesture
func (t *TrackerSet) Get(itemID string) (valueobjects.Point, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.ghosts[itemID]
	return pos, ok
}

// Active returns the ids currently tracked
func (t *TrackerSet) Active() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.ghosts))
	for id := range t.ghosts {
		ids = append(ids, id)
	}
	return ids
}

// Clear drops the given trackers and resets their render handles. The
// gesture that tracked an id must clear exactly that id when it ends,
// whether it committed or cancelled.
func (t *TrackerSet) Clear(ids ...string) {
	t.mu.Lock()
	registry := t.registry
	cleared := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := t.ghosts[id]; ok {
			delete(t.ghosts, id)
			cleared = append(cleared, id)
		}
	}
	t.mu.Unlock()

	if registry == nil {
		return
	}
	for _, id := range cleared {
		if handle, ok := registry.Handle(id); ok {
			handle.ClearGhost()
		}
	}
}

// ClearAll drops every tracker. Used when a tool switch or board
// switch tears down whatever gesture was in flight.
func (t *TrackerSet) ClearAll() {
	t.Clear(t.Active()...)
}
