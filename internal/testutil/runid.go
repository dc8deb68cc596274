package testutil

import "fmt"

// FixedRunID generates the same run ID every time.
//
// The same sweep with the same FixedRunID produces byte-identical reports
// and database rows.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator for id. If id is empty, Generate()
// returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunID) Generate() string {
	return g.id
}

// RunIDSequence yields test-run-0001, test-run-0002, and so on.
//
// Thread-safety: RunIDSequence is NOT safe for concurrent use.
type RunIDSequence struct {
	n int
}

// Generate returns the next run ID in the sequence.
func (s *RunIDSequence) Generate() string {
	s.n++
	return fmt.Sprintf("test-run-%04d", s.n)
}
