package transfer

import "fmt"

// State tracks which table rows have been used by a transfer. The Matcher
// owns the only State for a table; nothing else mutates it.
type State struct {
	consumed []bool
}

// NewState creates a State for n rows, all available.
func NewState(n int) *State {
	return &State{consumed: make([]bool, n)}
}

// IsAvailable reports whether row i has not been used yet.
func (s *State) IsAvailable(i int) bool {
	return !s.consumed[i]
}

// MarkConsumed flags row i as used. A row is consumed exactly once; marking
// it twice is a matcher bug.
func (s *State) MarkConsumed(i int) {
	if s.consumed[i] {
		panic(fmt.Sprintf("transfer: row %d consumed twice", i))
	}
	s.consumed[i] = true
}

// Snapshot returns a copy of the consumed flags.
func (s *State) Snapshot() []bool {
	out := make([]bool, len(s.consumed))
	copy(out, s.consumed)
	return out
}
