// Package history implements the bounded undo/redo stack for a board
// session. Entries are full snapshots of the undoable state, which
// keeps restore trivially correct at the cost of memory; the cap bounds
// that cost.
package history

import (
	"sync"

	"go.uber.org/zap"

	"boardcore/domain/core/aggregates"
	pkgerrors "boardcore/pkg/errors"
)

// Mode describes what the stack is currently doing. Commits that
// arrive while a restore is applying are side effects of the restore
// itself and must not create new entries.
type Mode int

const (
	// ModeIdle means no history operation is in flight
	ModeIdle Mode = iota
	// ModeApplying means an undo or redo restore is being applied
	ModeApplying
	// ModeCommitting means a commit is capturing a snapshot
	ModeCommitting
)

func (m Mode) String() string {
	switch m {
	case ModeApplying:
		return "applying"
	case ModeCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// Entry is one undoable state with the label of the operation that
// produced it.
type Entry struct {
	Label    string
	Snapshot aggregates.Snapshot
}

// Stack is a bounded snapshot stack with a redo branch. The cursor
// points at the entry matching the current board state; undo moves it
// back, redo forward, and a fresh commit truncates everything ahead
// of it.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
	cursor  int
	cap     int
	mode    Mode
	logger  *zap.Logger
}

// NewStack creates a history stack seeded with the initial state.
// The seed occupies the first slot so the first undo has somewhere
// to land.
func NewStack(capacity int, initial aggregates.Snapshot, logger *zap.Logger) *Stack {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stack{
		entries: []Entry{{Label: "initial", Snapshot: initial}},
		cursor:  0,
		cap:     capacity,
		logger:  logger,
	}
}

// Mode returns what the stack is currently doing
func (s *Stack) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// CanUndo reports whether an undo target exists
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// CanRedo reports whether a redo target exists
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.entries)-1
}

// Len returns the number of entries currently held
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Commit records a new state after a completed operation. Commits
// issued while a restore is applying are dropped: they describe the
// restore, not a user action. A commit truncates any redo branch.
func (s *Stack) Commit(label string, snap aggregates.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeApplying {
		s.logger.Debug("history commit dropped during restore", zap.String("label", label))
		return
	}
	s.mode = ModeCommitting
	defer func() { s.mode = ModeIdle }()

	s.entries = s.entries[:s.cursor+1]
	s.entries = append(s.entries, Entry{Label: label, Snapshot: snap})
	s.cursor++

	if len(s.entries) > s.cap {
		overflow := len(s.entries) - s.cap
		s.entries = s.entries[overflow:]
		s.cursor -= overflow
	}

	s.logger.Debug("history commit",
		zap.String("label", label),
		zap.Int("depth", len(s.entries)),
		zap.Int("cursor", s.cursor))
}

// Undo steps the cursor back and returns the snapshot to restore.
// The caller must invoke done() after the restore is fully applied;
// commits arriving in between are discarded.
func (s *Stack) Undo() (aggregates.Snapshot, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeIdle {
		return aggregates.Snapshot{}, nil, pkgerrors.NewConflictError("history operation already in flight")
	}
	if s.cursor == 0 {
		return aggregates.Snapshot{}, nil, pkgerrors.NewNotFoundError("nothing to undo")
	}

	s.cursor--
	s.mode = ModeApplying
	s.logger.Debug("history undo", zap.Int("cursor", s.cursor))
	return s.entries[s.cursor].Snapshot, s.finishRestore, nil
}

// Redo steps the cursor forward and returns the snapshot to restore.
// Same done() contract as Undo.
func (s *Stack) Redo() (aggregates.Snapshot, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeIdle {
		return aggregates.Snapshot{}, nil, pkgerrors.NewConflictError("history operation already in flight")
	}
	if s.cursor >= len(s.entries)-1 {
		return aggregates.Snapshot{}, nil, pkgerrors.NewNotFoundError("nothing to redo")
	}

	s.cursor++
	s.mode = ModeApplying
	s.logger.Debug("history redo", zap.Int("cursor", s.cursor))
	return s.entries[s.cursor].Snapshot, s.finishRestore, nil
}

func (s *Stack) finishRestore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeIdle
}

// Reset clears all history and reseeds with the given state
func (s *Stack) Reset(initial aggregates.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []Entry{{Label: "initial", Snapshot: initial}}
	s.cursor = 0
	s.mode = ModeIdle
}
