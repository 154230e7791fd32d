package entities

import (
	"time"

	"boardcore/domain/core/valueobjects"
	pkgerrors "boardcore/pkg/errors"
)

// Connection links a named socket on one node item to a named socket on
// another. Unlike Arrow, the endpoints are (item, socket) pairs with
// type-specific anchor geometry.
type Connection struct {
	ID           string                `json:"id"`
	FromNodeID   string                `json:"fromNodeId"`
	FromSocketID valueobjects.SocketID `json:"fromSocketId"`
	ToNodeID     string                `json:"toNodeId"`
	ToSocketID   valueobjects.SocketID `json:"toSocketId"`
	CreatedAt    time.Time             `json:"createdAt"`
}

// NewConnection creates a connection between two sockets. Self
// connections are rejected; duplicate detection happens at the board
// level where the existing set is known.
func NewConnection(fromNodeID string, fromSocketID valueobjects.SocketID, toNodeID string, toSocketID valueobjects.SocketID) (*Connection, error) {
	if !valueobjects.ValidID(fromNodeID) || !valueobjects.ValidID(toNodeID) {
		return nil, pkgerrors.NewValidationError("connection endpoints must be valid item ids")
	}
	if fromNodeID == toNodeID {
		return nil, pkgerrors.NewValidationError("cannot connect an item to itself")
	}
	if !fromSocketID.CompatibleWith(toSocketID) {
		return nil, pkgerrors.NewValidationError("sockets are not compatible")
	}
	return &Connection{
		ID:           valueobjects.NewEntityID(),
		FromNodeID:   fromNodeID,
		FromSocketID: fromSocketID,
		ToNodeID:     toNodeID,
		ToSocketID:   toSocketID,
		CreatedAt:    time.Now(),
	}, nil
}

// Key identifies the connection by its full endpoint 4-tuple.
// Two connections with equal keys are duplicates.
func (c *Connection) Key() string {
	return c.FromNodeID + "#" + string(c.FromSocketID) + "#" + c.ToNodeID + "#" + string(c.ToSocketID)
}

// References reports whether the connection touches the given item id
func (c *Connection) References(itemID string) bool {
	return c.FromNodeID == itemID || c.ToNodeID == itemID
}

// Clone returns a copy of the connection
func (c *Connection) Clone() *Connection {
	dup := *c
	return &dup
}
