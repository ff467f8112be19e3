package testutil

import (
	"fmt"
	"sync"
	"time"
)

// SequentialIDs mints predictable IDs for tests: "CASH-000001",
// "REF-000002", and so on, with one shared counter across prefixes so the
// sequence reads as a global event order. Audit IDs use the same counter
// with an "audit" prefix.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu sync.Mutex
	n  int
}

// NewSequentialIDs creates an ID source whose first ID ends in 000001.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID returns the next ID for the prefix. The timestamp argument is
// ignored; determinism comes from the counter. Implements engine.IDSource.
func (s *SequentialIDs) NewID(prefix string, _ time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%06d", prefix, s.n)
}

// AuditID returns the next audit row ID.
func (s *SequentialIDs) AuditID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("audit-%06d", s.n)
}
