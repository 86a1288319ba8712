package wmma

import (
	"sync/atomic"

	"github.com/gomlx/exceptions"
)

// Transactions are not bounds checked by default: an offset past the end of
// the caller's buffer faults the kernel like an out-of-range device access.
// With bounds checks enabled, every transaction is validated first and a
// violation panics with the lane, iteration and offset involved.
var boundsChecks atomic.Bool

// SetBoundsChecks turns per-transaction bounds checking on or off.
func SetBoundsChecks(enabled bool) {
	boundsChecks.Store(enabled)
}

// BoundsChecks reports whether per-transaction bounds checking is on.
func BoundsChecks() bool {
	return boundsChecks.Load()
}

func checkTransaction(op string, lane, iteration uint32, c Coord, offset int, width uint32, length int) {
	if offset < 0 || offset+int(width) > length {
		exceptions.Panicf("%s: lane %d iteration %d at %v moves elements [%d, %d) of a %d element buffer",
			op, lane, iteration, c, offset, offset+int(width), length)
	}
}
