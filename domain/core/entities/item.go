package entities

import (
	"math"
	"time"

	"boardcore/domain/core/valueobjects"
	pkgerrors "boardcore/pkg/errors"
)

// ItemKind discriminates the item union. Every switch over ItemKind must
// handle all four kinds.
type ItemKind string

const (
	ItemKindImage ItemKind = "image"
	ItemKindVideo ItemKind = "video"
	ItemKindText  ItemKind = "text"
	ItemKindNode  ItemKind = "node"
)

// MediaContent carries the payload of image and video items. FileID
// references externally stored media; URL is the resolved (possibly
// transient) fetch location and may be empty until hydration completes.
type MediaContent struct {
	FileID string `json:"fileId"`
	URL    string `json:"url,omitempty"`
	Broken bool   `json:"broken,omitempty"`
}

// TextContent carries the payload of text items
type TextContent struct {
	Content  string  `json:"content"`
	FontSize float64 `json:"fontSize"`
	Color    string  `json:"color,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
}

// NodeContent carries the payload of generation-node items
type NodeContent struct {
	NodeType string `json:"nodeType"`
	Prompt   string `json:"prompt,omitempty"`
}

// Item is a placed element on the board. Exactly one of Media, Text,
// Node is set, matching Kind.
type Item struct {
	ID             string   `json:"id"`
	Kind           ItemKind `json:"type"`
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
	Width          float64  `json:"width"`
	Height         float64  `json:"height"`
	Rotation       float64  `json:"rotation"`
	FlipHorizontal bool     `json:"flipHorizontal,omitempty"`
	FlipVertical   bool     `json:"flipVertical,omitempty"`
	ZIndex         int      `json:"zIndex"`

	// SingletonKey marks items of which a board holds at most one
	// (e.g. the board's promo card). Empty for ordinary items.
	SingletonKey string `json:"singletonKey,omitempty"`

	Media *MediaContent `json:"media,omitempty"`
	Text  *TextContent  `json:"text,omitempty"`
	Node  *NodeContent  `json:"node,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewImageItem creates an image item at the given position. The URL may
// be empty when the media has not been hydrated yet.
func NewImageItem(fileID, url string, x, y, width, height float64) (*Item, error) {
	return newItem(ItemKindImage, x, y, width, height, &MediaContent{FileID: fileID, URL: url}, nil, nil)
}

// NewVideoItem creates a video item at the given position
func NewVideoItem(fileID, url string, x, y, width, height float64) (*Item, error) {
	return newItem(ItemKindVideo, x, y, width, height, &MediaContent{FileID: fileID, URL: url}, nil, nil)
}

// NewTextItem creates a text item at the given position
func NewTextItem(content string, x, y, width, height float64) (*Item, error) {
	return newItem(ItemKindText, x, y, width, height, nil, &TextContent{Content: content, FontSize: 16}, nil)
}

// NewNodeItem creates a generation-node item at the given position
func NewNodeItem(nodeType, prompt string, x, y, width, height float64) (*Item, error) {
	if nodeType == "" {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}
	return newItem(ItemKindNode, x, y, width, height, nil, nil, &NodeContent{NodeType: nodeType, Prompt: prompt})
}

func newItem(kind ItemKind, x, y, width, height float64, media *MediaContent, text *TextContent, node *NodeContent) (*Item, error) {
	if !(valueobjects.Point{X: x, Y: y}).IsFinite() {
		return nil, pkgerrors.NewValidationError("item position must be finite")
	}
	if width <= 0 || height <= 0 {
		return nil, pkgerrors.NewValidationError("item dimensions must be positive")
	}

	now := time.Now()
	return &Item{
		ID:        valueobjects.NewItemID(),
		Kind:      kind,
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		Media:     media,
		Text:      text,
		Node:      node,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks structural invariants: a known kind with the matching
// payload present, and geometry a remote write cannot have corrupted.
func (it *Item) Validate() error {
	if !valueobjects.ValidID(it.ID) {
		return pkgerrors.NewValidationError("item id is invalid")
	}
	if !(valueobjects.Point{X: it.X, Y: it.Y}).IsFinite() {
		return pkgerrors.NewValidationError("item position must be finite")
	}
	if math.IsNaN(it.Width) || math.IsInf(it.Width, 0) || math.IsNaN(it.Height) || math.IsInf(it.Height, 0) {
		return pkgerrors.NewValidationError("item dimensions must be finite")
	}
	if it.Width <= 0 || it.Height <= 0 {
		return pkgerrors.NewValidationError("item dimensions must be positive")
	}
	switch it.Kind {
	case ItemKindImage, ItemKindVideo:
		if it.Media == nil {
			return pkgerrors.NewValidationError("media item missing media payload")
		}
	case ItemKindText:
		if it.Text == nil {
			return pkgerrors.NewValidationError("text item missing text payload")
		}
	case ItemKindNode:
		if it.Node == nil {
			return pkgerrors.NewValidationError("node item missing node payload")
		}
	default:
		return pkgerrors.NewValidationError("unknown item kind: " + string(it.Kind))
	}
	return nil
}

// Bounds returns the item's unrotated axis-aligned rectangle
func (it *Item) Bounds() valueobjects.Rect {
	return valueobjects.Rect{X: it.X, Y: it.Y, Width: it.Width, Height: it.Height}
}

// Center returns the item's center point
func (it *Item) Center() valueobjects.Point {
	return it.Bounds().Center()
}

// RotatedBounds returns the axis-aligned box covering the item's
// rotated corners.
func (it *Item) RotatedBounds() valueobjects.Rect {
	corners := it.Bounds().RotatedCorners(it.Rotation)
	return valueobjects.BoundsOf(corners[:])
}

// ContainsPoint reports whether the canvas point lies within the item's
// rotated shape. The point is rotated into the item's local frame so the
// test reduces to an axis-aligned check.
func (it *Item) ContainsPoint(p valueobjects.Point) bool {
	if it.Rotation == 0 {
		return it.Bounds().Contains(p)
	}
	local := rotateAbout(p, it.Center(), -it.Rotation)
	return it.Bounds().Contains(local)
}

func rotateAbout(p, about valueobjects.Point, degrees float64) valueobjects.Point {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	dx := p.X - about.X
	dy := p.Y - about.Y
	return valueobjects.Point{
		X: about.X + dx*cos - dy*sin,
		Y: about.Y + dx*sin + dy*cos,
	}
}

// MoveTo places the item at an absolute position
func (it *Item) MoveTo(x, y float64) error {
	if !(valueobjects.Point{X: x, Y: y}).IsFinite() {
		return pkgerrors.NewValidationError("item position must be finite")
	}
	it.X = x
	it.Y = y
	it.UpdatedAt = time.Now()
	return nil
}

// Resize sets the item's dimensions
func (it *Item) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return pkgerrors.NewValidationError("item dimensions must be positive")
	}
	it.Width = width
	it.Height = height
	it.UpdatedAt = time.Now()
	return nil
}

// Sockets returns the connection anchors this item exposes.
// Exhaustive over ItemKind.
func (it *Item) Sockets() []valueobjects.SocketID {
	switch it.Kind {
	case ItemKindImage:
		return []valueobjects.SocketID{valueobjects.SocketImageOutput}
	case ItemKindVideo:
		return nil
	case ItemKindText:
		return []valueobjects.SocketID{valueobjects.SocketTextOutput}
	case ItemKindNode:
		return []valueobjects.SocketID{
			valueobjects.SocketImageInput,
			valueobjects.SocketTextInput,
			valueobjects.SocketImageOutput,
		}
	default:
		return nil
	}
}

// SocketPosition computes the anchor point for a named socket from the
// item's current geometry. Pure function of item state; inputs sit on
// the left edge, outputs on the right, spaced evenly per side.
func (it *Item) SocketPosition(socket valueobjects.SocketID) (valueobjects.Point, bool) {
	sockets := it.Sockets()

	var side []valueobjects.SocketID
	for _, s := range sockets {
		if s.IsInput() == socket.IsInput() {
			side = append(side, s)
		}
	}

	slot := -1
	for i, s := range side {
		if s == socket {
			slot = i
			break
		}
	}
	if slot < 0 {
		return valueobjects.Point{}, false
	}

	x := it.X
	if socket.IsOutput() {
		x = it.X + it.Width
	}
	step := it.Height / float64(len(side)+1)
	return valueobjects.Point{X: x, Y: it.Y + step*float64(slot+1)}, true
}

// Clone returns a deep copy of the item
func (it *Item) Clone() *Item {
	dup := *it
	if it.Media != nil {
		media := *it.Media
		dup.Media = &media
	}
	if it.Text != nil {
		text := *it.Text
		dup.Text = &text
	}
	if it.Node != nil {
		node := *it.Node
		dup.Node = &node
	}
	return &dup
}

// IsMedia reports whether the item carries externally stored media
func (it *Item) IsMedia() bool {
	switch it.Kind {
	case ItemKindImage, ItemKindVideo:
		return true
	case ItemKindText, ItemKindNode:
		return false
	default:
		return false
	}
}
