// Package verify produces and checks receipt verification codes.
//
// A code is the first six uppercase hex digits of
// SHA1(salt + orderID + paidCash + paidPoints + rewardPoints), where the
// numeric fields are rendered with the shortest decimal representation
// that round-trips, so "10" stays "10" and "12.5" stays "12.5".
package verify

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/roach88/shoplog/internal/ledger"
)

// CodeLen is the receipt code length in hex digits.
const CodeLen = 6

// Code computes the verification code for one receipt.
func Code(salt, orderID string, paidCash, paidPoints, rewardPoints float64) string {
	var b strings.Builder
	b.WriteString(salt)
	b.WriteString(orderID)
	b.WriteString(canon(paidCash))
	b.WriteString(canon(paidPoints))
	b.WriteString(canon(rewardPoints))
	sum := sha1.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:CodeLen]
}

// ForOrder computes the code for a stored order.
func ForOrder(salt string, o ledger.Order) string {
	return Code(salt, o.ID, o.PaidCash, o.PaidPoints, o.RewardPoints)
}

// Lookup finds the order whose receipt code matches, scanning newest first
// so a colliding code resolves to the most recent order. The input is
// trimmed and case-folded before comparison.
func Lookup(snap *ledger.Snapshot, salt, code string) (ledger.Order, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLen {
		return ledger.Order{}, false
	}
	for i := len(snap.Orders) - 1; i >= 0; i-- {
		o := snap.Orders[i]
		if ForOrder(salt, o) == code {
			return o, true
		}
	}
	return ledger.Order{}, false
}

// canon renders a float the shortest way that round-trips, matching how
// the receipt fields are concatenated at code-generation time.
func canon(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
