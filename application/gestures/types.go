package gestures

import (
	"context"

	"boardcore/domain/core/valueobjects"
)

// Tool selects which gesture a pointer press begins
type Tool int

const (
	// ToolSelect picks, drags and marquee-selects items
	ToolSelect Tool = iota
	// ToolPen draws freehand strokes
	ToolPen
	// ToolEraser removes strokes it passes over
	ToolEraser
	// ToolConnect wires sockets and creates arrows
	ToolConnect
)

func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolEraser:
		return "eraser"
	case ToolConnect:
		return "connect"
	default:
		return "select"
	}
}

// Modifiers carries the keyboard state at the time of a pointer event
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

// PointerEvent is a normalized pointer sample in board coordinates
type PointerEvent struct {
	Position  valueobjects.Point
	Pressure  float64
	Modifiers Modifiers
}

// gesture is a pointer interaction in progress. move may be called any
// number of times between the press that created the gesture and the
// finish or cancel that ends it.
type gesture interface {
	name() string
	move(ev PointerEvent)
	finish(ctx context.Context, ev PointerEvent)
	cancel()
}
