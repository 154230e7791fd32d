package events

import (
	"time"

	"boardcore/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Item Events

// ItemAdded is raised when a new item lands on the board
type ItemAdded struct {
	BaseEvent
	BoardID string `json:"board_id"`
	ItemID  string `json:"item_id"`
	Kind    string `json:"kind"`
}

// NewItemAdded creates an ItemAdded event
func NewItemAdded(boardID, itemID, kind string, timestamp time.Time) ItemAdded {
	return ItemAdded{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "item.added",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
		ItemID:  itemID,
		Kind:    kind,
	}
}

// ItemsMoved is raised when a drag commits new positions for a batch
// of items.
type ItemsMoved struct {
	BaseEvent
	BoardID   string                        `json:"board_id"`
	Positions map[string]valueobjects.Point `json:"positions"`
}

// NewItemsMoved creates an ItemsMoved event
func NewItemsMoved(boardID string, positions map[string]valueobjects.Point, timestamp time.Time) ItemsMoved {
	return ItemsMoved{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "items.moved",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:   boardID,
		Positions: positions,
	}
}

// ItemsTransformed is raised when a rotate or scale gesture commits
type ItemsTransformed struct {
	BaseEvent
	BoardID string   `json:"board_id"`
	ItemIDs []string `json:"item_ids"`
}

// NewItemsTransformed creates an ItemsTransformed event
func NewItemsTransformed(boardID string, itemIDs []string, timestamp time.Time) ItemsTransformed {
	return ItemsTransformed{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "items.transformed",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
		ItemIDs: itemIDs,
	}
}

// ItemsDeleted is raised when items and their dependent arrows and
// connections are removed.
type ItemsDeleted struct {
	BaseEvent
	BoardID       string   `json:"board_id"`
	ItemIDs       []string `json:"item_ids"`
	ArrowIDs      []string `json:"arrow_ids"`
	ConnectionIDs []string `json:"connection_ids"`
}

// NewItemsDeleted creates an ItemsDeleted event
func NewItemsDeleted(boardID string, itemIDs, arrowIDs, connectionIDs []string, timestamp time.Time) ItemsDeleted {
	return ItemsDeleted{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "items.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:       boardID,
		ItemIDs:       itemIDs,
		ArrowIDs:      arrowIDs,
		ConnectionIDs: connectionIDs,
	}
}

// Arrow and Connection Events

// ArrowCreated is raised when an arrow links two items
type ArrowCreated struct {
	BaseEvent
	BoardID  string `json:"board_id"`
	ArrowID  string `json:"arrow_id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// NewArrowCreated creates an ArrowCreated event
func NewArrowCreated(boardID, arrowID, sourceID, targetID string, timestamp time.Time) ArrowCreated {
	return ArrowCreated{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "arrow.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:  boardID,
		ArrowID:  arrowID,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// ConnectionCreated is raised when a socket connection is made
type ConnectionCreated struct {
	BaseEvent
	BoardID      string `json:"board_id"`
	ConnectionID string `json:"connection_id"`
	FromNodeID   string `json:"from_node_id"`
	ToNodeID     string `json:"to_node_id"`
}

// NewConnectionCreated creates a ConnectionCreated event
func NewConnectionCreated(boardID, connectionID, fromNodeID, toNodeID string, timestamp time.Time) ConnectionCreated {
	return ConnectionCreated{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "connection.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:      boardID,
		ConnectionID: connectionID,
		FromNodeID:   fromNodeID,
		ToNodeID:     toNodeID,
	}
}

// Drawing Events

// PathCommitted is raised when a pen stroke finishes
type PathCommitted struct {
	BaseEvent
	BoardID    string `json:"board_id"`
	PathID     string `json:"path_id"`
	PointCount int    `json:"point_count"`
}

// NewPathCommitted creates a PathCommitted event
func NewPathCommitted(boardID, pathID string, pointCount int, timestamp time.Time) PathCommitted {
	return PathCommitted{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "path.committed",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:    boardID,
		PathID:     pathID,
		PointCount: pointCount,
	}
}

// PathsErased is raised when an eraser stroke removes strokes
type PathsErased struct {
	BaseEvent
	BoardID string   `json:"board_id"`
	PathIDs []string `json:"path_ids"`
}

// NewPathsErased creates a PathsErased event
func NewPathsErased(boardID string, pathIDs []string, timestamp time.Time) PathsErased {
	return PathsErased{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "paths.erased",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
		PathIDs: pathIDs,
	}
}

// Group Events

// GroupFormed is raised when items are gathered into a group
type GroupFormed struct {
	BaseEvent
	BoardID  string   `json:"board_id"`
	GroupID  string   `json:"group_id"`
	ChildIDs []string `json:"child_ids"`
}

// NewGroupFormed creates a GroupFormed event
func NewGroupFormed(boardID, groupID string, childIDs []string, timestamp time.Time) GroupFormed {
	return GroupFormed{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "group.formed",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:  boardID,
		GroupID:  groupID,
		ChildIDs: childIDs,
	}
}

// GroupDissolved is raised when a group is removed, leaving its
// children in place.
type GroupDissolved struct {
	BaseEvent
	BoardID string `json:"board_id"`
	GroupID string `json:"group_id"`
}

// NewGroupDissolved creates a GroupDissolved event
func NewGroupDissolved(boardID, groupID string, timestamp time.Time) GroupDissolved {
	return GroupDissolved{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "group.dissolved",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
		GroupID: groupID,
	}
}

// Board Events

// BoardCreated is raised when a new board document is created
type BoardCreated struct {
	BaseEvent
	BoardID string `json:"board_id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
}

// NewBoardCreated creates a BoardCreated event
func NewBoardCreated(boardID, userID, name string, timestamp time.Time) BoardCreated {
	return BoardCreated{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "board.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
		UserID:  userID,
		Name:    name,
	}
}

// HistoryRestored is raised when undo or redo replaces the board state
type HistoryRestored struct {
	BaseEvent
	BoardID   string `json:"board_id"`
	Direction string `json:"direction"`
}

// NewHistoryRestored creates a HistoryRestored event. Direction is
// "undo" or "redo".
func NewHistoryRestored(boardID, direction string, timestamp time.Time) HistoryRestored {
	return HistoryRestored{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   "history.restored",
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:   boardID,
		Direction: direction,
	}
}
