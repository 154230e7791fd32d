package gestures

import (
	"context"

	"boardcore/application/scene"
	"boardcore/application/spatial"
	"boardcore/domain/core/valueobjects"
)

// connectGesture drags a wire from an output socket. On release the
// wire snaps to the nearest compatible input within the snap radius;
// anywhere else it evaporates. Rejections from the aggregate (self
// connection, duplicate) are swallowed: a failed wire is not an error
// the user needs reported.
type connectGesture struct {
	store      *scene.Store
	hit        *spatial.HitTester
	sourceID   string
	sourceSock valueobjects.SocketID
	current    valueobjects.Point
}

func newConnectGesture(store *scene.Store, hit *spatial.HitTester, sourceID string, sourceSock valueobjects.SocketID) *connectGesture {
	return &connectGesture{
		store:      store,
		hit:        hit,
		sourceID:   sourceID,
		sourceSock: sourceSock,
	}
}

func (g *connectGesture) name() string { return "connect" }

// WireEnd exposes the loose end of the wire for rendering
func (g *connectGesture) WireEnd() valueobjects.Point {
	return g.current
}

// Target returns the socket the wire would snap to if released now
func (g *connectGesture) Target() (string, valueobjects.SocketID, bool) {
	item, socket, ok := g.hit.SocketAt(g.current, g.store.Config().SocketSnapRadius)
	if !ok || !g.sourceSock.CompatibleWith(socket) || item.ID == g.sourceID {
		return "", "", false
	}
	return item.ID, socket, true
}

func (g *connectGesture) move(ev PointerEvent) {
	g.current = ev.Position
}

func (g *connectGesture) finish(ctx context.Context, ev PointerEvent) {
	g.current = ev.Position

	targetID, targetSock, ok := g.Target()
	if !ok {
		return
	}
	if _, err := g.store.ConnectSockets(g.sourceID, g.sourceSock, targetID, targetSock); err != nil {
		return
	}
	g.store.Commit(ctx, "connect sockets")
}

func (g *connectGesture) cancel() {
	// The wire was never materialized on the board.
}
