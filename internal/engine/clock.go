package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/shoplog/internal/ledger"
)

// Clock supplies the current time for order stamping and window checks.
// Implemented by SystemClock (production) and testutil.Clock (tests).
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// IDSource mints order/entry IDs and audit row IDs.
// Implemented by TimestampIDs (production) and testutil.SequentialIDs
// (tests, for golden comparison).
type IDSource interface {
	// NewID returns a fresh event ID for the given prefix, stamped at now.
	NewID(prefix string, now time.Time) string

	// AuditID returns a fresh audit row ID. Production IDs are UUIDv7 so
	// audit rows sort by creation time.
	AuditID() string
}

// TimestampIDs is the production ID source: timestamp-plus-random event
// IDs and UUIDv7 audit IDs.
//
// Not safe for concurrent use; the engine serializes calls.
type TimestampIDs struct {
	rng *rand.Rand
}

// NewTimestampIDs seeds a production ID source.
func NewTimestampIDs() *TimestampIDs {
	return &TimestampIDs{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (t *TimestampIDs) NewID(prefix string, now time.Time) string {
	return ledger.NewID(prefix, now, t.rng)
}

func (t *TimestampIDs) AuditID() string {
	return uuid.Must(uuid.NewV7()).String()
}
