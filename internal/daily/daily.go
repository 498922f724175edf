// internal/daily/daily.go
//
// Daily Euclid challenge: everyone gets the same seed pair on the same UTC
// date. Seeds come from HMAC(salt, YYYY-MM-DD) so they cannot be predicted
// without the salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/mathgames/internal/euclid"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seeds returns the day's seed pair: one value from euclid.DefaultLow and one
// from euclid.DefaultHigh. The ranges are disjoint, so the seeds differ, and
// the pair always leaves an opening move.
func Seeds(date time.Time, salt string) (low, high int) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes pick the low seed, next 8 the high seed
	low = pick(binary.BigEndian.Uint64(sum[:8]), euclid.DefaultLow)
	high = pick(binary.BigEndian.Uint64(sum[8:16]), euclid.DefaultHigh)
	if !euclid.Playable(low, high) {
		// high == 2*low leaves no opening move; step to a neighbour
		if high < euclid.DefaultHigh.Max {
			high++
		} else {
			high--
		}
	}
	return low, high
}

// Board starts a Euclid board seeded with the day's pair.
func Board(date time.Time, salt string) (*euclid.Board, error) {
	low, high := Seeds(date, salt)
	return euclid.NewBoardFromSeeds(low, high)
}

func pick(n uint64, r euclid.Range) int {
	return r.Min + int(n%uint64(r.Max-r.Min+1))
}
