package aggregates

import (
	"time"

	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
	"boardcore/domain/events"
	pkgerrors "boardcore/pkg/errors"
)

// BoardID represents a unique board identifier
type BoardID string

// NewBoardID creates a new random BoardID
func NewBoardID() BoardID {
	return BoardID(valueobjects.NewBoardID())
}

// String returns the string representation
func (id BoardID) String() string {
	return string(id)
}

// ParseBoardID validates a raw board id string
func ParseBoardID(raw string) (BoardID, error) {
	if !valueobjects.ValidID(raw) {
		return "", pkgerrors.NewValidationError("invalid board id")
	}
	return BoardID(raw), nil
}

// Board is the aggregate root for a whiteboard scene
// It ensures consistency boundaries for every entity on the canvas
type Board struct {
	id          BoardID
	userID      string
	name        string
	items       map[string]*entities.Item
	groups      map[string]*entities.Group
	arrows      map[string]*entities.Arrow
	paths       map[string]*entities.DrawingPath
	connections map[string]*entities.Connection
	bookmarks   map[string]*entities.Bookmark
	createdAt   time.Time
	updatedAt   time.Time
	version     int
	events      []events.DomainEvent
}

// Snapshot is an immutable copy of the undoable board state. Arrows,
// connections and bookmarks that reference missing items are pruned on
// restore, so the snapshot carries only the four undoable collections.
type Snapshot struct {
	Items  map[string]*entities.Item
	Groups map[string]*entities.Group
	Arrows map[string]*entities.Arrow
	Paths  map[string]*entities.DrawingPath
}

// NewBoard creates a new board aggregate
func NewBoard(userID, name string) (*Board, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID required")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("board name required")
	}

	now := time.Now()
	board := &Board{
		id:          NewBoardID(),
		userID:      userID,
		name:        name,
		items:       make(map[string]*entities.Item),
		groups:      make(map[string]*entities.Group),
		arrows:      make(map[string]*entities.Arrow),
		paths:       make(map[string]*entities.DrawingPath),
		connections: make(map[string]*entities.Connection),
		bookmarks:   make(map[string]*entities.Bookmark),
		createdAt:   now,
		updatedAt:   now,
		version:     1,
		events:      []events.DomainEvent{},
	}

	board.addEvent(events.NewBoardCreated(board.id.String(), userID, name, now))

	return board, nil
}

// ReconstructBoard recreates a board from stored data without raising
// creation events.
func ReconstructBoard(id, userID, name string, createdAt, updatedAt time.Time) (*Board, error) {
	if id == "" || userID == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for board reconstruction")
	}
	if name == "" {
		name = "Untitled Board"
	}

	return &Board{
		id:          BoardID(id),
		userID:      userID,
		name:        name,
		items:       make(map[string]*entities.Item),
		groups:      make(map[string]*entities.Group),
		arrows:      make(map[string]*entities.Arrow),
		paths:       make(map[string]*entities.DrawingPath),
		connections: make(map[string]*entities.Connection),
		bookmarks:   make(map[string]*entities.Bookmark),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     1,
		events:      []events.DomainEvent{},
	}, nil
}

// ID returns the board's unique identifier
func (b *Board) ID() BoardID {
	return b.id
}

// UserID returns the owner's ID
func (b *Board) UserID() string {
	return b.userID
}

// Name returns the board's name
func (b *Board) Name() string {
	return b.name
}

// CreatedAt returns when the board was created
func (b *Board) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns when the board was last updated
func (b *Board) UpdatedAt() time.Time {
	return b.updatedAt
}

// Version returns the aggregate version, bumped on every mutation
func (b *Board) Version() int {
	return b.version
}

// Item operations

// AddItem places an item on the board. The item receives the next z
// index so it renders above everything already present.
func (b *Board) AddItem(item *entities.Item) error {
	if item == nil {
		return pkgerrors.NewValidationError("item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if _, exists := b.items[item.ID]; exists {
		return pkgerrors.NewConflictError("item already exists on board")
	}

	item.ZIndex = b.maxZIndex() + 1
	b.items[item.ID] = item
	b.touch()

	b.addEvent(events.NewItemAdded(b.id.String(), item.ID, string(item.Kind), b.updatedAt))

	return nil
}

// GetItem retrieves an item by ID
func (b *Board) GetItem(itemID string) (*entities.Item, error) {
	item, exists := b.items[itemID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("item not found")
	}
	return item, nil
}

// HasItem checks if an item exists on the board without error
func (b *Board) HasItem(itemID string) bool {
	_, exists := b.items[itemID]
	return exists
}

// Items returns a copy of the item map
func (b *Board) Items() map[string]*entities.Item {
	items := make(map[string]*entities.Item, len(b.items))
	for k, v := range b.items {
		items[k] = v
	}
	return items
}

// ForEachItem visits every item without copying the map. The callback
// must not mutate the board.
func (b *Board) ForEachItem(fn func(item *entities.Item) bool) {
	for _, item := range b.items {
		if !fn(item) {
			return
		}
	}
}

// ForEachArrow visits every arrow without copying the map
func (b *Board) ForEachArrow(fn func(arrow *entities.Arrow) bool) {
	for _, arrow := range b.arrows {
		if !fn(arrow) {
			return
		}
	}
}

// ForEachPath visits every committed stroke without copying the map
func (b *Board) ForEachPath(fn func(path *entities.DrawingPath) bool) {
	for _, path := range b.paths {
		if !fn(path) {
			return
		}
	}
}

// ForEachConnection visits every socket connection without copying the map
func (b *Board) ForEachConnection(fn func(conn *entities.Connection) bool) {
	for _, conn := range b.connections {
		if !fn(conn) {
			return
		}
	}
}

// ForEachGroup visits every group without copying the map
func (b *Board) ForEachGroup(fn func(group *entities.Group) bool) {
	for _, group := range b.groups {
		if !fn(group) {
			return
		}
	}
}

// ItemList returns all items as a slice
func (b *Board) ItemList() []*entities.Item {
	items := make([]*entities.Item, 0, len(b.items))
	for _, item := range b.items {
		items = append(items, item)
	}
	return items
}

// MoveItems applies a batch of absolute positions in one mutation.
// Unknown ids and non-finite positions are skipped.
func (b *Board) MoveItems(positions map[string]valueobjects.Point) error {
	if len(positions) == 0 {
		return nil
	}

	applied := make(map[string]valueobjects.Point, len(positions))
	for id, pos := range positions {
		item, exists := b.items[id]
		if !exists || !pos.IsFinite() {
			continue
		}
		item.MoveTo(pos.X, pos.Y)
		applied[id] = pos
	}
	if len(applied) == 0 {
		return nil
	}
	b.touch()

	b.addEvent(events.NewItemsMoved(b.id.String(), applied, b.updatedAt))

	return nil
}

// TransformItems records a committed rotate or scale over the given
// items. The geometry itself was already written through the item
// pointers during the gesture; this bumps the version and raises the
// event.
func (b *Board) TransformItems(itemIDs []string) {
	present := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, exists := b.items[id]; exists {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return
	}
	b.touch()
	b.addEvent(events.NewItemsTransformed(b.id.String(), present, b.updatedAt))
}

// DeleteItems removes items and cascades to everything that references
// them: arrows, connections and group memberships. Groups left with
// fewer than two children are dissolved.
func (b *Board) DeleteItems(itemIDs []string) error {
	deleted := []string{}
	for _, id := range itemIDs {
		if _, exists := b.items[id]; !exists {
			continue
		}
		delete(b.items, id)
		deleted = append(deleted, id)
	}
	if len(deleted) == 0 {
		return pkgerrors.NewNotFoundError("no items found to delete")
	}

	removedArrows := []string{}
	for key, arrow := range b.arrows {
		for _, id := range deleted {
			if arrow.References(id) {
				delete(b.arrows, key)
				removedArrows = append(removedArrows, arrow.ID)
				break
			}
		}
	}

	removedConnections := []string{}
	for key, conn := range b.connections {
		for _, id := range deleted {
			if conn.References(id) {
				delete(b.connections, key)
				removedConnections = append(removedConnections, conn.ID)
				break
			}
		}
	}

	for _, id := range deleted {
		for _, group := range b.groups {
			group.RemoveChild(id)
		}
	}
	for groupID, group := range b.groups {
		if len(group.ChildIDs) < 2 {
			delete(b.groups, groupID)
			b.addEvent(events.NewGroupDissolved(b.id.String(), groupID, time.Now()))
		}
	}

	b.touch()
	b.addEvent(events.NewItemsDeleted(b.id.String(), deleted, removedArrows, removedConnections, b.updatedAt))

	return nil
}

// MaxZIndex returns the highest z index currently on the board
func (b *Board) MaxZIndex() int {
	return b.maxZIndex()
}

// BringToFront raises an item above everything else
func (b *Board) BringToFront(itemID string) error {
	item, exists := b.items[itemID]
	if !exists {
		return pkgerrors.NewNotFoundError("item not found")
	}
	item.ZIndex = b.maxZIndex() + 1
	b.touch()
	return nil
}

// EnforceSingleton keeps at most one item per singleton key. When
// duplicates exist the oldest survives and the rest are deleted.
// Returns the ids that were removed.
func (b *Board) EnforceSingleton(key string) []string {
	var keeper *entities.Item
	extras := []string{}
	for _, item := range b.items {
		if item.SingletonKey != key {
			continue
		}
		if keeper == nil || item.CreatedAt.Before(keeper.CreatedAt) {
			if keeper != nil {
				extras = append(extras, keeper.ID)
			}
			keeper = item
			continue
		}
		extras = append(extras, item.ID)
	}
	if len(extras) > 0 {
		b.DeleteItems(extras)
	}
	return extras
}

// Arrow operations

// ConnectItems creates an arrow between two existing items
func (b *Board) ConnectItems(sourceID, targetID, color string, strokeWidth float64) (*entities.Arrow, error) {
	if _, exists := b.items[sourceID]; !exists {
		return nil, pkgerrors.NewNotFoundError("source item not found")
	}
	if _, exists := b.items[targetID]; !exists {
		return nil, pkgerrors.NewNotFoundError("target item not found")
	}

	for _, arrow := range b.arrows {
		if arrow.SourceID == sourceID && arrow.TargetID == targetID {
			return nil, pkgerrors.NewConflictError("arrow already exists")
		}
	}

	arrow, err := entities.NewArrow(sourceID, targetID, color, strokeWidth)
	if err != nil {
		return nil, err
	}

	b.arrows[arrow.ID] = arrow
	b.touch()

	b.addEvent(events.NewArrowCreated(b.id.String(), arrow.ID, sourceID, targetID, b.updatedAt))

	return arrow, nil
}

// Arrows returns a copy of the arrow map
func (b *Board) Arrows() map[string]*entities.Arrow {
	arrows := make(map[string]*entities.Arrow, len(b.arrows))
	for k, v := range b.arrows {
		arrows[k] = v
	}
	return arrows
}

// DeleteArrow removes an arrow by ID
func (b *Board) DeleteArrow(arrowID string) error {
	if _, exists := b.arrows[arrowID]; !exists {
		return pkgerrors.NewNotFoundError("arrow not found")
	}
	delete(b.arrows, arrowID)
	b.touch()
	return nil
}

// Connection operations

// ConnectSockets creates a socket connection between two node items.
// Self connections and exact duplicates are rejected.
func (b *Board) ConnectSockets(fromNodeID string, fromSocketID valueobjects.SocketID, toNodeID string, toSocketID valueobjects.SocketID) (*entities.Connection, error) {
	if _, exists := b.items[fromNodeID]; !exists {
		return nil, pkgerrors.NewNotFoundError("source item not found")
	}
	if _, exists := b.items[toNodeID]; !exists {
		return nil, pkgerrors.NewNotFoundError("target item not found")
	}

	conn, err := entities.NewConnection(fromNodeID, fromSocketID, toNodeID, toSocketID)
	if err != nil {
		return nil, err
	}
	if _, exists := b.connections[conn.Key()]; exists {
		return nil, pkgerrors.NewConflictError("connection already exists")
	}

	b.connections[conn.Key()] = conn
	b.touch()

	b.addEvent(events.NewConnectionCreated(b.id.String(), conn.ID, fromNodeID, toNodeID, b.updatedAt))

	return conn, nil
}

// Connections returns a copy of the connection map keyed by endpoint
// 4-tuple.
func (b *Board) Connections() map[string]*entities.Connection {
	conns := make(map[string]*entities.Connection, len(b.connections))
	for k, v := range b.connections {
		conns[k] = v
	}
	return conns
}

// Drawing operations

// CommitPath stores a finished pen stroke. Empty and eraser strokes
// are rejected.
func (b *Board) CommitPath(path *entities.DrawingPath) error {
	if path == nil {
		return pkgerrors.NewValidationError("path cannot be nil")
	}
	if path.IsEraser {
		return pkgerrors.NewValidationError("eraser strokes are not committed")
	}
	if len(path.Points) == 0 {
		return pkgerrors.NewValidationError("path has no points")
	}
	if _, exists := b.paths[path.ID]; exists {
		return pkgerrors.NewConflictError("path already exists on board")
	}

	b.paths[path.ID] = path
	b.touch()

	b.addEvent(events.NewPathCommitted(b.id.String(), path.ID, len(path.Points), b.updatedAt))

	return nil
}

// Paths returns a copy of the path map
func (b *Board) Paths() map[string]*entities.DrawingPath {
	paths := make(map[string]*entities.DrawingPath, len(b.paths))
	for k, v := range b.paths {
		paths[k] = v
	}
	return paths
}

// ErasePaths removes every committed stroke the eraser stroke reaches.
// Returns the ids of removed paths.
func (b *Board) ErasePaths(eraser []valueobjects.PathPoint, eraserRadius float64) []string {
	removed := []string{}
	for id, path := range b.paths {
		if path.IntersectsStroke(eraser, eraserRadius) {
			delete(b.paths, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		b.touch()
		b.addEvent(events.NewPathsErased(b.id.String(), removed, b.updatedAt))
	}
	return removed
}

// Group operations

// FormGroup gathers items into a new group. An item already in another
// group is moved out of it first, so membership stays exclusive.
func (b *Board) FormGroup(name string, itemIDs []string, padding float64) (*entities.Group, error) {
	children := make([]*entities.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, exists := b.items[id]
		if !exists {
			return nil, pkgerrors.NewNotFoundError("group member not found")
		}
		children = append(children, item)
	}

	group, err := entities.NewGroup(name, children, padding)
	if err != nil {
		return nil, err
	}

	for _, id := range itemIDs {
		for _, other := range b.groups {
			other.RemoveChild(id)
		}
	}
	for groupID, other := range b.groups {
		if len(other.ChildIDs) < 2 {
			delete(b.groups, groupID)
			b.addEvent(events.NewGroupDissolved(b.id.String(), groupID, time.Now()))
		}
	}

	b.groups[group.ID] = group
	b.touch()

	b.addEvent(events.NewGroupFormed(b.id.String(), group.ID, group.ChildIDs, b.updatedAt))

	return group, nil
}

// DissolveGroup removes a group, leaving its children in place
func (b *Board) DissolveGroup(groupID string) error {
	if _, exists := b.groups[groupID]; !exists {
		return pkgerrors.NewNotFoundError("group not found")
	}
	delete(b.groups, groupID)
	b.touch()

	b.addEvent(events.NewGroupDissolved(b.id.String(), groupID, b.updatedAt))

	return nil
}

// Groups returns a copy of the group map
func (b *Board) Groups() map[string]*entities.Group {
	groups := make(map[string]*entities.Group, len(b.groups))
	for k, v := range b.groups {
		groups[k] = v
	}
	return groups
}

// GroupOf returns the group containing the given item, if any
func (b *Board) GroupOf(itemID string) (*entities.Group, bool) {
	for _, group := range b.groups {
		if group.HasChild(itemID) {
			return group, true
		}
	}
	return nil, false
}

// MoveGroups translates group rectangles by the given delta. Used when
// a drag moved a whole group's children so the rectangle follows them.
// Unknown ids are skipped; returns the ids that moved.
func (b *Board) MoveGroups(groupIDs []string, dx, dy float64) []string {
	moved := []string{}
	for _, id := range groupIDs {
		group, exists := b.groups[id]
		if !exists {
			continue
		}
		group.MoveBy(dx, dy)
		moved = append(moved, id)
	}
	if len(moved) > 0 {
		b.touch()
	}
	return moved
}

// TransferMembership re-homes items whose center landed inside another
// group's bounds. An item stays put while its center remains inside its
// current group; membership is exclusive, so joining a group leaves the
// old one. Receiving and losing groups are refit around their children,
// and groups starved below two children dissolve. Returns the ids of
// groups whose membership changed and of groups that dissolved.
func (b *Board) TransferMembership(itemIDs []string, padding float64) (changed, dissolved []string) {
	touched := map[string]struct{}{}
	for _, id := range itemIDs {
		item, exists := b.items[id]
		if !exists {
			continue
		}
		center := item.Bounds().Center()

		current, hasCurrent := b.GroupOf(id)
		if hasCurrent && current.Bounds().Contains(center) {
			continue
		}

		var target *entities.Group
		for _, group := range b.groups {
			if group.HasChild(id) {
				continue
			}
			if group.Bounds().Contains(center) && (target == nil || group.CreatedAt.After(target.CreatedAt)) {
				target = group
			}
		}
		if target == nil {
			continue
		}

		if hasCurrent {
			current.RemoveChild(id)
			touched[current.ID] = struct{}{}
		}
		target.AddChild(id)
		touched[target.ID] = struct{}{}
	}
	if len(touched) == 0 {
		return nil, nil
	}

	for id := range touched {
		group, exists := b.groups[id]
		if !exists {
			continue
		}
		if len(group.ChildIDs) < 2 {
			delete(b.groups, id)
			dissolved = append(dissolved, id)
			b.addEvent(events.NewGroupDissolved(b.id.String(), id, time.Now()))
			continue
		}
		group.FitTo(b.childItems(group), padding)
		changed = append(changed, id)
	}
	b.touch()
	return changed, dissolved
}

// RefitGroup recomputes a group's rectangle around its children's
// rotated corners plus padding.
func (b *Board) RefitGroup(groupID string, padding float64) (*entities.Group, error) {
	group, exists := b.groups[groupID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("group not found")
	}
	group.FitTo(b.childItems(group), padding)
	b.touch()
	return group, nil
}

func (b *Board) childItems(group *entities.Group) []*entities.Item {
	children := make([]*entities.Item, 0, len(group.ChildIDs))
	for _, id := range group.ChildIDs {
		if item, ok := b.items[id]; ok {
			children = append(children, item)
		}
	}
	return children
}

// Bookmark operations

// AddBookmark saves a view
func (b *Board) AddBookmark(bookmark *entities.Bookmark) error {
	if bookmark == nil {
		return pkgerrors.NewValidationError("bookmark cannot be nil")
	}
	if _, exists := b.bookmarks[bookmark.ID]; exists {
		return pkgerrors.NewConflictError("bookmark already exists")
	}
	b.bookmarks[bookmark.ID] = bookmark
	b.touch()
	return nil
}

// RemoveBookmark deletes a saved view
func (b *Board) RemoveBookmark(bookmarkID string) error {
	if _, exists := b.bookmarks[bookmarkID]; !exists {
		return pkgerrors.NewNotFoundError("bookmark not found")
	}
	delete(b.bookmarks, bookmarkID)
	b.touch()
	return nil
}

// Bookmarks returns a copy of the bookmark map
func (b *Board) Bookmarks() map[string]*entities.Bookmark {
	bookmarks := make(map[string]*entities.Bookmark, len(b.bookmarks))
	for k, v := range b.bookmarks {
		bookmarks[k] = v
	}
	return bookmarks
}

// ResolveBookmark returns the view center for a saved view
func (b *Board) ResolveBookmark(bookmarkID string) (valueobjects.Point, error) {
	bookmark, exists := b.bookmarks[bookmarkID]
	if !exists {
		return valueobjects.Point{}, pkgerrors.NewNotFoundError("bookmark not found")
	}
	return bookmark.Resolve(func(id string) (*entities.Item, bool) {
		item, ok := b.items[id]
		return item, ok
	}), nil
}

// History support

// Snapshot captures a deep copy of the undoable state
func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{
		Items:  make(map[string]*entities.Item, len(b.items)),
		Groups: make(map[string]*entities.Group, len(b.groups)),
		Arrows: make(map[string]*entities.Arrow, len(b.arrows)),
		Paths:  make(map[string]*entities.DrawingPath, len(b.paths)),
	}
	for k, v := range b.items {
		snap.Items[k] = v.Clone()
	}
	for k, v := range b.groups {
		snap.Groups[k] = v.Clone()
	}
	for k, v := range b.arrows {
		snap.Arrows[k] = v.Clone()
	}
	for k, v := range b.paths {
		snap.Paths[k] = v.Clone()
	}
	return snap
}

// Restore replaces the undoable state with a snapshot. Connections
// referencing items absent from the snapshot are pruned. Direction is
// "undo" or "redo" and flows through to the raised event.
func (b *Board) Restore(snap Snapshot, direction string) {
	b.items = make(map[string]*entities.Item, len(snap.Items))
	for k, v := range snap.Items {
		b.items[k] = v.Clone()
	}
	b.groups = make(map[string]*entities.Group, len(snap.Groups))
	for k, v := range snap.Groups {
		b.groups[k] = v.Clone()
	}
	b.arrows = make(map[string]*entities.Arrow, len(snap.Arrows))
	for k, v := range snap.Arrows {
		b.arrows[k] = v.Clone()
	}
	b.paths = make(map[string]*entities.DrawingPath, len(snap.Paths))
	for k, v := range snap.Paths {
		b.paths[k] = v.Clone()
	}

	for key, conn := range b.connections {
		if !b.HasItem(conn.FromNodeID) || !b.HasItem(conn.ToNodeID) {
			delete(b.connections, key)
		}
	}

	b.touch()
	b.addEvent(events.NewHistoryRestored(b.id.String(), direction, b.updatedAt))
}

// Validate ensures board invariants
func (b *Board) Validate() error {
	for _, arrow := range b.arrows {
		if !b.HasItem(arrow.SourceID) || !b.HasItem(arrow.TargetID) {
			return pkgerrors.NewInternalError("arrow references a missing item")
		}
	}
	for _, conn := range b.connections {
		if !b.HasItem(conn.FromNodeID) || !b.HasItem(conn.ToNodeID) {
			return pkgerrors.NewInternalError("connection references a missing item")
		}
	}
	for _, group := range b.groups {
		for _, childID := range group.ChildIDs {
			if !b.HasItem(childID) {
				return pkgerrors.NewInternalError("group references a missing item")
			}
		}
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (b *Board) GetUncommittedEvents() []events.DomainEvent {
	allEvents := make([]events.DomainEvent, len(b.events))
	copy(allEvents, b.events)
	return allEvents
}

// MarkEventsAsCommitted clears all uncommitted events
func (b *Board) MarkEventsAsCommitted() {
	b.events = []events.DomainEvent{}
}

// Private helper methods

func (b *Board) addEvent(event events.DomainEvent) {
	b.events = append(b.events, event)
}

func (b *Board) touch() {
	b.updatedAt = time.Now()
	b.version++
}

func (b *Board) maxZIndex() int {
	max := 0
	for _, item := range b.items {
		if item.ZIndex > max {
			max = item.ZIndex
		}
	}
	return max
}
