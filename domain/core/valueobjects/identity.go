package valueobjects

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// idCounter disambiguates ids generated within the same millisecond.
var idCounter atomic.Uint32

// NewItemID generates a board item identifier. Item ids are created
// client-side at placement time as a millisecond timestamp plus a random
// suffix, and are never reused — the timestamp keeps ids roughly ordered
// by creation, the suffix keeps concurrent clients from colliding.
func NewItemID() string {
	suffix := rand.Intn(1_000_000)
	return fmt.Sprintf("%d-%06d-%d", time.Now().UnixMilli(), suffix, idCounter.Add(1))
}

// NewEntityID generates an identifier for groups, arrows, connections,
// paths and bookmarks.
func NewEntityID() string {
	return uuid.New().String()
}

// NewBoardID generates a board identifier.
func NewBoardID() string {
	return uuid.New().String()
}

// ValidID reports whether a string is usable as an entity id. Remote data
// may carry ids minted by either scheme, so only emptiness and path
// separators are rejected.
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, "/#[]")
}
