package ledger

import (
	"fmt"
	"math/rand"
	"time"
)

// ID prefixes by record kind. The prefix makes a receipt's origin legible
// at a glance and keeps the verification code domain-separated per order.
const (
	PrefixCashOrder   = "CASH"
	PrefixPointsOrder = "PTS"
	PrefixRefund      = "REF"
	PrefixManual      = "MAN"
)

// NewID builds a record identifier from a prefix, a wall-clock instant, and
// a two-digit random suffix: PREFIX + yyyymmddhhmmss + milliseconds + NN.
//
// IDs are monotonic-ish (timestamp-ordered to the millisecond) but not
// guaranteed unique under adversarial clocks; the store's primary key
// constraint is the real uniqueness backstop.
func NewID(prefix string, now time.Time, rng *rand.Rand) string {
	return fmt.Sprintf("%s%s%03d%02d",
		prefix,
		now.Format("20060102150405"),
		now.Nanosecond()/int(time.Millisecond),
		rng.Intn(100),
	)
}
