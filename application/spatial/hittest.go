// Package spatial answers point and region queries against a board.
// Queries run on every pointer move, so they are single-pass scans
// that avoid allocating.
package spatial

import (
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	"boardcore/domain/core/valueobjects"
)

// Arrow hit tolerance and curve sampling density. 16 samples keeps the
// worst-case chord error well under the tolerance at typical spans.
const (
	arrowHitTolerance = 8.0
	arrowCurveSamples = 16
)

// HitTester runs geometric queries against a board aggregate
type HitTester struct {
	board *aggregates.Board
}

// NewHitTester creates a hit tester bound to a board
func NewHitTester(board *aggregates.Board) *HitTester {
	return &HitTester{board: board}
}

// ItemAt returns the topmost item whose rotated rectangle contains the
// point, or nil.
func (h *HitTester) ItemAt(p valueobjects.Point) *entities.Item {
	if !p.IsFinite() {
		return nil
	}
	var best *entities.Item
	h.board.ForEachItem(func(item *entities.Item) bool {
		if item.ContainsPoint(p) && (best == nil || item.ZIndex >= best.ZIndex) {
			best = item
		}
		return true
	})
	return best
}

// SocketAt returns the nearest socket within radius of the point,
// along with its owning item. Used for connection snapping.
func (h *HitTester) SocketAt(p valueobjects.Point, radius float64) (*entities.Item, valueobjects.SocketID, bool) {
	if !p.IsFinite() {
		return nil, "", false
	}
	bestDist := radius
	var bestItem *entities.Item
	var bestSocket valueobjects.SocketID
	found := false

	h.board.ForEachItem(func(item *entities.Item) bool {
		for _, socket := range item.Sockets() {
			pos, ok := item.SocketPosition(socket)
			if !ok {
				continue
			}
			if d := p.DistanceTo(pos); d <= bestDist {
				bestDist = d
				bestItem = item
				bestSocket = socket
				found = true
			}
		}
		return true
	})
	return bestItem, bestSocket, found
}

// ArrowAt returns an arrow whose curve passes within the hit tolerance
// of the point. The cubic is tested by sampling.
func (h *HitTester) ArrowAt(p valueobjects.Point) *entities.Arrow {
	if !p.IsFinite() {
		return nil
	}
	var hit *entities.Arrow
	h.board.ForEachArrow(func(arrow *entities.Arrow) bool {
		source, serr := h.board.GetItem(arrow.SourceID)
		target, terr := h.board.GetItem(arrow.TargetID)
		if serr != nil || terr != nil {
			return true
		}
		start, end := entities.ArrowAnchors(source, target)
		p0, c1, c2, p3 := entities.ArrowCurve(start, end)

		tolerance := arrowHitTolerance + arrow.StrokeWidth/2
		for i := 0; i <= arrowCurveSamples; i++ {
			t := float64(i) / arrowCurveSamples
			sample := valueobjects.CubicBezierPoint(p0, c1, c2, p3, t)
			if p.DistanceTo(sample) <= tolerance {
				hit = arrow
				return false
			}
		}
		return true
	})
	return hit
}

// ConnectionAt returns a socket wire whose curve passes within the hit
// tolerance of the point. Wires use the same cubic shape as arrows but
// anchor on socket positions.
func (h *HitTester) ConnectionAt(p valueobjects.Point) *entities.Connection {
	if !p.IsFinite() {
		return nil
	}
	var hit *entities.Connection
	h.board.ForEachConnection(func(conn *entities.Connection) bool {
		from, ferr := h.board.GetItem(conn.FromNodeID)
		to, terr := h.board.GetItem(conn.ToNodeID)
		if ferr != nil || terr != nil {
			return true
		}
		start, sok := from.SocketPosition(conn.FromSocketID)
		end, eok := to.SocketPosition(conn.ToSocketID)
		if !sok || !eok {
			return true
		}
		p0, c1, c2, p3 := entities.ArrowCurve(start, end)

		for i := 0; i <= arrowCurveSamples; i++ {
			t := float64(i) / arrowCurveSamples
			sample := valueobjects.CubicBezierPoint(p0, c1, c2, p3, t)
			if p.DistanceTo(sample) <= arrowHitTolerance {
				hit = conn
				return false
			}
		}
		return true
	})
	return hit
}

// PathAt returns a committed stroke within reach of the point. Reach
// is half the stroke's brush size plus the given slack.
func (h *HitTester) PathAt(p valueobjects.Point, slack float64) *entities.DrawingPath {
	if !p.IsFinite() {
		return nil
	}
	var hit *entities.DrawingPath
	h.board.ForEachPath(func(path *entities.DrawingPath) bool {
		reach := path.Size/2 + slack
		for _, pp := range path.Points {
			if p.DistanceTo(valueobjects.Point{X: pp.X, Y: pp.Y}) <= reach {
				hit = path
				return false
			}
		}
		return true
	})
	return hit
}

// ItemsInRect returns the ids of items whose rotated bounds intersect
// the rectangle. Touching edges count as intersecting.
func (h *HitTester) ItemsInRect(r valueobjects.Rect) []string {
	r = r.Normalized()
	ids := []string{}
	h.board.ForEachItem(func(item *entities.Item) bool {
		if item.RotatedBounds().Intersects(r) {
			ids = append(ids, item.ID)
		}
		return true
	})
	return ids
}

// GroupAt returns a group whose bounds contain the point. Groups render
// under their members, so this is only consulted when no item was hit.
func (h *HitTester) GroupAt(p valueobjects.Point) *entities.Group {
	if !p.IsFinite() {
		return nil
	}
	var best *entities.Group
	h.board.ForEachGroup(func(group *entities.Group) bool {
		if group.Bounds().Contains(p) && (best == nil || group.CreatedAt.After(best.CreatedAt)) {
			best = group
		}
		return true
	})
	return best
}
