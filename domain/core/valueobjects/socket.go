package valueobjects

import "strings"

// SocketID names a connection anchor on a node-type item.
// The prefix carries the payload type, the suffix the direction.
type SocketID string

const (
	SocketImageInput  SocketID = "image-input"
	SocketImageOutput SocketID = "image-output"
	SocketTextInput   SocketID = "text-input"
	SocketTextOutput  SocketID = "text-output"
)

// IsInput reports whether the socket accepts incoming connections
func (s SocketID) IsInput() bool {
	return strings.HasSuffix(string(s), "-input")
}

// IsOutput reports whether the socket emits outgoing connections
func (s SocketID) IsOutput() bool {
	return strings.HasSuffix(string(s), "-output")
}

// Payload returns the socket's payload type ("image", "text")
func (s SocketID) Payload() string {
	raw := string(s)
	if i := strings.LastIndex(raw, "-"); i > 0 {
		return raw[:i]
	}
	return raw
}

// CompatibleWith reports whether a connection may be dragged from this
// socket to the other: output to input, matching payload types.
func (s SocketID) CompatibleWith(other SocketID) bool {
	if s.Payload() != other.Payload() {
		return false
	}
	return (s.IsOutput() && other.IsInput()) || (s.IsInput() && other.IsOutput())
}
