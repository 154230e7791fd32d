// Package gestures turns raw pointer input into board mutations. A
// Controller owns at most one gesture at a time; geometry is written
// imperatively through entity pointers while the gesture runs, and a
// single history commit lands when it finishes.
package gestures

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"boardcore/application/ports"
	"boardcore/application/scene"
	"boardcore/application/spatial"
	"boardcore/domain/config"
	"boardcore/domain/core/valueobjects"
)

// Controller routes pointer events to the active gesture and starts
// new gestures based on the current tool and what the press hit.
type Controller struct {
	mu       sync.Mutex
	store    *scene.Store
	hit      *spatial.HitTester
	cfg      *config.DomainConfig
	trackers *TrackerSet
	logger   *zap.Logger

	tool   Tool
	active gesture

	// pendingArrowSource holds the first click of a two-click arrow
	pendingArrowSource string
}

// NewController creates a gesture controller over a scene store
func NewController(store *scene.Store, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:    store,
		hit:      spatial.NewHitTester(store.Board()),
		cfg:      store.Config(),
		trackers: NewTrackerSet(),
		logger:   logger,
	}
}

// Trackers exposes the ghost-position trackers so overlay renderers
// can read or observe in-gesture positions.
func (c *Controller) Trackers() *TrackerSet {
	return c.trackers
}

// SetVisualRegistry attaches the render-layer handle registry that
// tracked positions are pushed through.
func (c *Controller) SetVisualRegistry(registry ports.VisualRegistry) {
	c.trackers.SetRegistry(registry)
}

// Tool returns the current tool
func (c *Controller) Tool() Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tool
}

// SetTool switches tools. An in-flight gesture is cancelled and any
// pending arrow source is forgotten.
func (c *Controller) SetTool(tool Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.cancel()
		c.active = nil
	}
	c.trackers.ClearAll()
	c.pendingArrowSource = ""
	c.tool = tool
}

// ActiveGesture returns the name of the gesture in progress, or ""
func (c *Controller) ActiveGesture() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ""
	}
	return c.active.name()
}

// PointerDown begins a gesture. Events with non-finite coordinates are
// dropped, as are presses while another gesture is in flight.
func (c *Controller) PointerDown(ctx context.Context, ev PointerEvent) {
	if !ev.Position.IsFinite() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return
	}

	switch c.tool {
	case ToolPen:
		c.active = newDrawGesture(c.store, ev, false)
	case ToolEraser:
		c.active = newDrawGesture(c.store, ev, true)
	case ToolConnect:
		c.beginConnect(ctx, ev)
	default:
		c.beginSelect(ev)
	}

	if c.active != nil {
		c.logger.Debug("gesture started", zap.String("gesture", c.active.name()))
	}
}

// PointerMove advances the active gesture. Non-finite samples are
// dropped so a single bad event cannot poison in-flight geometry.
func (c *Controller) PointerMove(ev PointerEvent) {
	if !ev.Position.IsFinite() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.move(ev)
	}
}

// PointerUp finishes the active gesture
func (c *Controller) PointerUp(ctx context.Context, ev PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return
	}
	if !ev.Position.IsFinite() {
		// Finish at the last known-good position instead of feeding
		// garbage into the commit.
		c.active.cancel()
		c.active = nil
		return
	}
	c.active.finish(ctx, ev)
	c.logger.Debug("gesture finished", zap.String("gesture", c.active.name()))
	c.active = nil
}

// PointerCancel aborts the active gesture and rolls its geometry back
func (c *Controller) PointerCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return
	}
	c.active.cancel()
	c.logger.Debug("gesture cancelled", zap.String("gesture", c.active.name()))
	c.active = nil
}

// BeginRotate starts a rotation gesture over the current selection.
// Called when the press lands on the selection's rotate handle, which
// the render layer hit-tests.
func (c *Controller) BeginRotate(ev PointerEvent) {
	if !ev.Position.IsFinite() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return
	}
	if g := newRotateGesture(c.store, c.trackers, ev); g != nil {
		c.active = g
	}
}

// BeginScale starts a scale gesture over the current selection
func (c *Controller) BeginScale(ev PointerEvent) {
	if !ev.Position.IsFinite() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return
	}
	if g := newScaleGesture(c.store, c.trackers, ev); g != nil {
		c.active = g
	}
}

// BeginGroupResize starts a resize over the group under the press.
// Called when the press lands on a group's resize handle, which the
// render layer hit-tests; the group frame itself sits under its
// members, so the point is resolved with the group query.
func (c *Controller) BeginGroupResize(ev PointerEvent) {
	if !ev.Position.IsFinite() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return
	}
	group := c.hit.GroupAt(ev.Position)
	if group == nil {
		return
	}
	if g := newGroupResizeGesture(c.store, c.trackers, group, ev); g != nil {
		c.active = g
	}
}

// MarqueeRect returns the live marquee rectangle for rendering, if a
// marquee is in progress.
func (c *Controller) MarqueeRect() (valueobjects.Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.active.(*marqueeGesture); ok {
		return m.rect(), true
	}
	return valueobjects.Rect{}, false
}

// GroupSelection gathers the selected items into a group. Selecting
// fewer items than a group needs is a silent no-op.
func (c *Controller) GroupSelection(ctx context.Context, name string) error {
	selection := c.store.Selection()
	if len(selection) < c.cfg.MinGroupChildren {
		return nil
	}
	group, err := c.store.FormGroup(name, selection)
	if err != nil {
		return err
	}
	c.store.Commit(ctx, "group items")
	c.logger.Debug("group formed", zap.String("group_id", group.ID), zap.Int("children", len(group.ChildIDs)))
	return nil
}

// UngroupSelection dissolves every group touching the selection
func (c *Controller) UngroupSelection(ctx context.Context) error {
	dissolved := 0
	for _, id := range c.store.Selection() {
		if group, ok := c.store.Board().GroupOf(id); ok {
			if err := c.store.DissolveGroup(group.ID); err == nil {
				dissolved++
			}
		}
	}
	if dissolved == 0 {
		return nil
	}
	c.store.Commit(ctx, "ungroup items")
	return nil
}

// DeleteSelection removes the selected items and their dependents
func (c *Controller) DeleteSelection(ctx context.Context) error {
	selection := c.store.Selection()
	if len(selection) == 0 {
		return nil
	}
	if err := c.store.DeleteItems(selection); err != nil {
		return err
	}
	c.store.Commit(ctx, "delete items")
	return nil
}

// beginSelect handles a press with the select tool: items drag,
// empty space starts a marquee. Ctrl turns the press into a rotate
// gesture over the selection, Ctrl+Alt into a scale.
func (c *Controller) beginSelect(ev PointerEvent) {
	hit := c.hit.ItemAt(ev.Position)
	if hit == nil {
		if !ev.Modifiers.Shift && !ev.Modifiers.Ctrl {
			c.store.ClearSelection()
		}
		c.active = newMarqueeGesture(c.store, c.hit, ev)
		return
	}

	if ev.Modifiers.Ctrl {
		// A Ctrl press on an unselected item appends it first, so the
		// transform covers it along with the rest of the selection.
		if !c.store.IsSelected(hit.ID) {
			c.store.Select(hit.ID)
		}
		if ev.Modifiers.Alt {
			if g := newScaleGesture(c.store, c.trackers, ev); g != nil {
				c.active = g
			}
			return
		}
		if g := newRotateGesture(c.store, c.trackers, ev); g != nil {
			c.active = g
		}
		return
	}

	if ev.Modifiers.Shift {
		if c.store.IsSelected(hit.ID) {
			// Shift-click on a selected item deselects it and starts
			// no gesture.
			remaining := []string{}
			for _, id := range c.store.Selection() {
				if id != hit.ID {
					remaining = append(remaining, id)
				}
			}
			c.store.SelectOnly(remaining...)
			return
		}
		c.store.Select(hit.ID)
	} else if !c.store.IsSelected(hit.ID) {
		c.store.SelectOnly(hit.ID)
	}

	c.active = newDragGesture(c.store, c.trackers, ev)
}

// beginConnect handles a press with the connect tool. A press close to
// a socket starts a wire drag; the generous snap radius applies only
// to the release target, so a press on an item body still runs the
// two-click arrow flow.
func (c *Controller) beginConnect(ctx context.Context, ev PointerEvent) {
	if item, socket, ok := c.hit.SocketAt(ev.Position, c.cfg.SocketGrabRadius); ok && socket.IsOutput() {
		c.pendingArrowSource = ""
		c.active = newConnectGesture(c.store, c.hit, item.ID, socket)
		return
	}

	hit := c.hit.ItemAt(ev.Position)
	if hit == nil {
		c.pendingArrowSource = ""
		return
	}

	if c.pendingArrowSource == "" {
		c.pendingArrowSource = hit.ID
		return
	}

	source := c.pendingArrowSource
	c.pendingArrowSource = ""
	// Self and duplicate arrows are rejected by the aggregate; the
	// click is simply swallowed.
	if _, err := c.store.ConnectItems(source, hit.ID, "", 0); err != nil {
		c.logger.Debug("arrow rejected", zap.Error(err))
		return
	}
	c.store.Commit(ctx, "connect items")
}
