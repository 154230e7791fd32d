package aggregates

import (
	"time"

	"boardcore/domain/core/entities"
)

// BoardDocument is the wire and storage shape of a board. Collections
// are keyed by entity id to match the remote tree layout, which lets a
// single entity write target one key instead of rewriting an array.
type BoardDocument struct {
	ID        string                           `json:"id"`
	UserID    string                           `json:"userId"`
	Name      string                           `json:"name"`
	Items     map[string]*entities.Item        `json:"items"`
	Groups    map[string]*entities.Group       `json:"groups"`
	Arrows    map[string]*entities.Arrow       `json:"arrows"`
	Paths     map[string]*entities.DrawingPath `json:"drawingPaths"`
	Conns     map[string]*entities.Connection  `json:"connections"`
	Bookmarks map[string]*entities.Bookmark    `json:"bookmarks"`
	CreatedAt time.Time                        `json:"createdAt"`
	UpdatedAt time.Time                        `json:"updatedAt"`
}

// ToDocument converts the aggregate into its storage shape. The
// document shares entity pointers with the board, so callers that hold
// it across mutations must clone.
func (b *Board) ToDocument() *BoardDocument {
	return &BoardDocument{
		ID:        b.id.String(),
		UserID:    b.userID,
		Name:      b.name,
		Items:     b.Items(),
		Groups:    b.Groups(),
		Arrows:    b.Arrows(),
		Paths:     b.Paths(),
		Conns:     b.Connections(),
		Bookmarks: b.Bookmarks(),
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}
}

// FromDocument rebuilds a board aggregate from its storage shape.
// Remote documents can arrive with nil collections and entities with
// shape drift, so everything is normalized on the way in.
func FromDocument(doc *BoardDocument) (*Board, error) {
	board, err := ReconstructBoard(doc.ID, doc.UserID, doc.Name, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for id, item := range doc.Items {
		if item == nil || item.Validate() != nil {
			continue
		}
		board.items[id] = item
	}
	for id, group := range doc.Groups {
		if group == nil {
			continue
		}
		group.Normalize()
		board.groups[id] = group
	}
	for id, arrow := range doc.Arrows {
		if arrow == nil || !board.HasItem(arrow.SourceID) || !board.HasItem(arrow.TargetID) {
			continue
		}
		board.arrows[id] = arrow
	}
	for id, path := range doc.Paths {
		if path == nil || len(path.Points) == 0 {
			continue
		}
		board.paths[id] = path
	}
	for _, conn := range doc.Conns {
		if conn == nil || !board.HasItem(conn.FromNodeID) || !board.HasItem(conn.ToNodeID) {
			continue
		}
		board.connections[conn.Key()] = conn
	}
	for id, bookmark := range doc.Bookmarks {
		if bookmark == nil {
			continue
		}
		board.bookmarks[id] = bookmark
	}

	return board, nil
}
