// Package scene owns the live board state for one session. All
// mutation flows through the Store, which tracks dirty entities
// between commits, feeds the history stack, and hands changed paths
// to the sync layer.
package scene

import (
	"context"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"boardcore/application/history"
	"boardcore/application/ports"
	"boardcore/domain/config"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
	"boardcore/domain/events"
	pkgerrors "boardcore/pkg/errors"
)

// Pusher receives entity-scoped updates after each commit. The scene
// lock is not held during the call.
type Pusher interface {
	PushUpdate(ctx context.Context, update ports.TreeUpdate)
}

// Store wraps the board aggregate with the session-local concerns the
// aggregate itself must not know about: selection, in-flight drags,
// dirty tracking and the undo stack.
type Store struct {
	mu         sync.RWMutex
	board      *aggregates.Board
	history    *history.Stack
	cfg        *config.DomainConfig
	logger     *zap.Logger
	pusher     Pusher
	eventStore ports.EventStore
	selection  map[string]struct{}
	activeDrag map[string]struct{}
	dirty      map[string]interface{}
}

// NewStore creates a scene store over an existing board
func NewStore(board *aggregates.Board, cfg *config.DomainConfig, logger *zap.Logger) *Store {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		board:      board,
		history:    history.NewStack(cfg.HistoryCap, board.Snapshot(), logger),
		cfg:        cfg,
		logger:     logger,
		selection:  make(map[string]struct{}),
		activeDrag: make(map[string]struct{}),
		dirty:      make(map[string]interface{}),
	}
}

// SetPusher wires the sync layer in after construction. Passing nil
// detaches it.
func (s *Store) SetPusher(p Pusher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pusher = p
}

// SetEventStore wires durable event persistence in after construction.
// Each commit drains the aggregate's raised events into it; without one
// the events are still drained, just not stored.
func (s *Store) SetEventStore(es ports.EventStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventStore = es
}

// Board returns the underlying aggregate. Callers that mutate through
// it bypass dirty tracking; use WithLock for remote merges.
func (s *Store) Board() *aggregates.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

// Config returns the domain configuration in effect
func (s *Store) Config() *config.DomainConfig {
	return s.cfg
}

// History returns the undo stack
func (s *Store) History() *history.Stack {
	return s.history
}

// WithLock runs fn with exclusive access to the aggregate. The sync
// merge uses this to rewrite state without racing gestures.
func (s *Store) WithLock(fn func(board *aggregates.Board)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.board)
}

// Item operations

// AddItem places an item and records it dirty
func (s *Store) AddItem(item *entities.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.AddItem(item); err != nil {
		return err
	}
	s.markDirty("items/"+item.ID, item)
	if item.SingletonKey != "" {
		for _, removed := range s.board.EnforceSingleton(item.SingletonKey) {
			s.markDirty("items/"+removed, nil)
		}
	}
	return nil
}

// MoveItems applies batch positions and records each moved item dirty
func (s *Store) MoveItems(positions map[string]valueobjects.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.MoveItems(positions); err != nil {
		return err
	}
	for id := range positions {
		if item, err := s.board.GetItem(id); err == nil {
			s.markDirty("items/"+id, item)
		}
	}
	return nil
}

// TransformItems records a committed rotate or scale
func (s *Store) TransformItems(itemIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.TransformItems(itemIDs)
	for _, id := range itemIDs {
		if item, err := s.board.GetItem(id); err == nil {
			s.markDirty("items/"+id, item)
		}
	}
}

// DeleteItems removes items, clears them from the selection, and
// records the cascade as deletions.
func (s *Store) DeleteItems(itemIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	arrowsBefore := s.board.Arrows()
	connsBefore := s.board.Connections()
	groupsBefore := s.board.Groups()

	if err := s.board.DeleteItems(itemIDs); err != nil {
		return err
	}

	arrowsAfter := s.board.Arrows()
	connsAfter := s.board.Connections()
	groupsAfter := s.board.Groups()

	for _, id := range itemIDs {
		delete(s.selection, id)
		delete(s.activeDrag, id)
		s.markDirty("items/"+id, nil)
	}
	for id := range arrowsBefore {
		if _, still := arrowsAfter[id]; !still {
			s.markDirty("arrows/"+id, nil)
		}
	}
	for key := range connsBefore {
		if _, still := connsAfter[key]; !still {
			s.markDirty("connections/"+key, nil)
		}
	}
	for id, before := range groupsBefore {
		after, still := groupsAfter[id]
		if !still {
			s.markDirty("groups/"+id, nil)
		} else if len(after.ChildIDs) != len(before.ChildIDs) {
			s.markDirty("groups/"+id, after)
		}
	}
	return nil
}

// Arrow, connection and drawing operations

// ConnectItems creates an arrow and records it dirty
func (s *Store) ConnectItems(sourceID, targetID, color string, strokeWidth float64) (*entities.Arrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arrow, err := s.board.ConnectItems(sourceID, targetID, color, strokeWidth)
	if err != nil {
		return nil, err
	}
	s.markDirty("arrows/"+arrow.ID, arrow)
	return arrow, nil
}

// ConnectSockets creates a socket connection and records it dirty
func (s *Store) ConnectSockets(fromNodeID string, fromSocketID valueobjects.SocketID, toNodeID string, toSocketID valueobjects.SocketID) (*entities.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, err := s.board.ConnectSockets(fromNodeID, fromSocketID, toNodeID, toSocketID)
	if err != nil {
		return nil, err
	}
	s.markDirty("connections/"+conn.Key(), conn)
	return conn, nil
}

// CommitPath stores a finished stroke and records it dirty
func (s *Store) CommitPath(path *entities.DrawingPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.CommitPath(path); err != nil {
		return err
	}
	s.markDirty("drawingPaths/"+path.ID, path)
	return nil
}

// ErasePaths removes reached strokes and records the deletions
func (s *Store) ErasePaths(eraser []valueobjects.PathPoint) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.board.ErasePaths(eraser, s.cfg.EraserRadius)
	for _, id := range removed {
		s.markDirty("drawingPaths/"+id, nil)
	}
	return removed
}

// Group operations

// FormGroup gathers items into a group and records every touched
// group dirty.
func (s *Store) FormGroup(name string, itemIDs []string) (*entities.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groupsBefore := s.board.Groups()
	group, err := s.board.FormGroup(name, itemIDs, s.cfg.GroupPadding)
	if err != nil {
		return nil, err
	}
	s.markDirty("groups/"+group.ID, group)
	groupsAfter := s.board.Groups()
	for id := range groupsBefore {
		if after, still := groupsAfter[id]; still {
			s.markDirty("groups/"+id, after)
		} else {
			s.markDirty("groups/"+id, nil)
		}
	}
	return group, nil
}

// SettleDrag reconciles group state after a finished drag: dragged
// group rectangles follow their children by the drag delta, and items
// dropped inside another group's bounds change membership. Touched
// groups are recorded dirty, dissolved ones as deletions.
func (s *Store) SettleDrag(groupIDs []string, dx, dy float64, itemIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := s.board.MoveGroups(groupIDs, dx, dy)
	changed, dissolved := s.board.TransferMembership(itemIDs, s.cfg.GroupPadding)

	groups := s.board.Groups()
	for _, id := range append(moved, changed...) {
		if group, ok := groups[id]; ok {
			s.markDirty("groups/"+id, group)
		}
	}
	for _, id := range dissolved {
		s.markDirty("groups/"+id, nil)
	}
}

// RefitGroup shrink-wraps a group's rectangle around its children and
// records it dirty.
func (s *Store) RefitGroup(groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, err := s.board.RefitGroup(groupID, s.cfg.GroupPadding)
	if err != nil {
		return err
	}
	s.markDirty("groups/"+groupID, group)
	return nil
}

// DissolveGroup removes a group and records the deletion
func (s *Store) DissolveGroup(groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.DissolveGroup(groupID); err != nil {
		return err
	}
	s.markDirty("groups/"+groupID, nil)
	return nil
}

// Bookmark operations

// AddBookmark saves a view and records it dirty. Rejected when the
// bookmark feature is switched off.
func (s *Store) AddBookmark(bookmark *entities.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.EnableBookmarks {
		return pkgerrors.NewValidationError("bookmarks are disabled")
	}
	if err := s.board.AddBookmark(bookmark); err != nil {
		return err
	}
	s.markDirty("bookmarks/"+bookmark.ID, bookmark)
	return nil
}

// RemoveBookmark deletes a view and records the deletion
func (s *Store) RemoveBookmark(bookmarkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.RemoveBookmark(bookmarkID); err != nil {
		return err
	}
	s.markDirty("bookmarks/"+bookmarkID, nil)
	return nil
}

// Selection

// Select adds items to the selection
func (s *Store) Select(itemIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range itemIDs {
		if s.board.HasItem(id) {
			s.selection[id] = struct{}{}
		}
	}
}

// SelectOnly replaces the selection
func (s *Store) SelectOnly(itemIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		if s.board.HasItem(id) {
			s.selection[id] = struct{}{}
		}
	}
}

// ClearSelection empties the selection
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

// IsSelected reports whether an item is selected
func (s *Store) IsSelected(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selection[itemID]
	return ok
}

// Selection returns the selected item ids
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	return ids
}

// SelectionBounds returns the axis-aligned box around the selected
// items' rotated corners.
func (s *Store) SelectionBounds() (valueobjects.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	points := []valueobjects.Point{}
	for id := range s.selection {
		item, err := s.board.GetItem(id)
		if err != nil {
			continue
		}
		corners := item.Bounds().RotatedCorners(item.Rotation)
		points = append(points, corners[:]...)
	}
	if len(points) == 0 {
		return valueobjects.Rect{}, false
	}
	return valueobjects.BoundsOf(points), true
}

// Drag tracking

// BeginDrag marks items as actively dragged so remote merges leave
// their positions alone.
func (s *Store) BeginDrag(itemIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range itemIDs {
		s.activeDrag[id] = struct{}{}
	}
}

// EndDrag clears the active drag set
func (s *Store) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeDrag = make(map[string]struct{})
}

// IsDragging reports whether the item is in an active drag
func (s *Store) IsDragging(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.activeDrag[itemID]
	return ok
}

// DraggingSnapshot returns a copy of the active drag set. The sync
// merge takes it before locking so dragged positions survive remote
// rewrites.
func (s *Store) DraggingSnapshot() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]struct{}, len(s.activeDrag))
	for id := range s.activeDrag {
		snap[id] = struct{}{}
	}
	return snap
}

// DirtyPaths returns the entity paths with unpushed local changes.
// Remote merges must not clobber these.
func (s *Store) DirtyPaths() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make(map[string]struct{}, len(s.dirty))
	for path := range s.dirty {
		paths[path] = struct{}{}
	}
	return paths
}

// Commit protocol

// Commit captures the current state into history and pushes the
// entities touched since the last commit. Nothing dirty means nothing
// pushed, but the snapshot is still taken.
func (s *Store) Commit(ctx context.Context, label string) {
	s.mu.Lock()
	snap := s.board.Snapshot()
	s.history.Commit(label, snap)

	update := s.drainDirtyLocked()
	raised := s.drainEventsLocked()
	pusher := s.pusher
	sink := s.eventStore
	s.mu.Unlock()

	if pusher != nil && len(update) > 0 {
		pusher.PushUpdate(ctx, update)
	}
	s.persistEvents(ctx, sink, raised)
	s.logger.Debug("scene commit", zap.String("label", label), zap.Int("changed", len(update)))
}

// Undo restores the previous history entry and pushes only the
// entities the restore actually changed.
func (s *Store) Undo(ctx context.Context) error {
	return s.restore(ctx, "undo")
}

// Redo restores the next history entry
func (s *Store) Redo(ctx context.Context) error {
	return s.restore(ctx, "redo")
}

func (s *Store) restore(ctx context.Context, direction string) error {
	var snap aggregates.Snapshot
	var done func()
	var err error
	if direction == "undo" {
		snap, done, err = s.history.Undo()
	} else {
		snap, done, err = s.history.Redo()
	}
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	itemsBefore := s.board.Items()
	groupsBefore := s.board.Groups()
	arrowsBefore := s.board.Arrows()
	pathsBefore := s.board.Paths()
	connsBefore := s.board.Connections()

	s.board.Restore(snap, direction)
	for id := range s.selection {
		if !s.board.HasItem(id) {
			delete(s.selection, id)
		}
	}
	s.dirty = make(map[string]interface{})

	update := make(ports.TreeUpdate)
	diffCollection(update, "items/", itemsBefore, s.board.Items())
	diffCollection(update, "groups/", groupsBefore, s.board.Groups())
	diffCollection(update, "arrows/", arrowsBefore, s.board.Arrows())
	diffCollection(update, "drawingPaths/", pathsBefore, s.board.Paths())
	diffCollection(update, "connections/", connsBefore, s.board.Connections())
	raised := s.drainEventsLocked()
	pusher := s.pusher
	sink := s.eventStore
	s.mu.Unlock()

	if pusher != nil && len(update) > 0 {
		pusher.PushUpdate(ctx, update)
	}
	s.persistEvents(ctx, sink, raised)
	return nil
}

// MarkDirty flags an external mutation for the next commit. Used by
// the transform layer, which writes geometry through item pointers.
func (s *Store) MarkDirty(path string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markDirty(path, value)
}

func (s *Store) markDirty(path string, value interface{}) {
	s.dirty[path] = value
}

// drainEventsLocked takes the aggregate's raised events so they cannot
// pile up across commits.
func (s *Store) drainEventsLocked() []events.DomainEvent {
	raised := s.board.GetUncommittedEvents()
	s.board.MarkEventsAsCommitted()
	return raised
}

// persistEvents stores a drained batch. Runs outside the scene lock
// since the sink may do I/O.
func (s *Store) persistEvents(ctx context.Context, sink ports.EventStore, raised []events.DomainEvent) {
	if sink == nil || len(raised) == 0 {
		return
	}
	if err := sink.SaveEvents(ctx, raised); err != nil {
		s.logger.Error("Failed to persist domain events",
			zap.Int("events", len(raised)),
			zap.Error(err),
		)
	}
}

func (s *Store) drainDirtyLocked() ports.TreeUpdate {
	update := make(ports.TreeUpdate, len(s.dirty))
	for path, value := range s.dirty {
		update[path] = value
	}
	s.dirty = make(map[string]interface{})
	return update
}

// diffCollection records what a restore changed in one collection:
// entities that appeared or differ from their pre-restore value are
// written, vanished ids become tombstones. Restored entities are fresh
// clones, so an untouched entity still compares equal by value.
func diffCollection[T any](update ports.TreeUpdate, prefix string, before, after map[string]*T) {
	for id, entity := range after {
		prev, existed := before[id]
		if !existed || !reflect.DeepEqual(prev, entity) {
			update[prefix+id] = entity
		}
	}
	for id := range before {
		if _, still := after[id]; !still {
			update[prefix+id] = nil
		}
	}
}
