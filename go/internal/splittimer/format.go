package splittimer

import (
	"fmt"
	"math"
)

// msEpsilon absorbs binary representation error (65.234 * 1000 is 65233.99999999999)
// without ever rounding a real sub-millisecond remainder up.
const msEpsilon = 1e-6

// FormatTime renders seconds as MM:SS:mmm. Every component is truncated.
// Minutes are not capped, so an hour renders as 60:00:000. Negative and NaN
// input renders as zero; +Inf and values past the int64 millisecond range
// saturate at the largest representable time.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	var totalMs int64
	if ms := math.Floor(seconds*1000 + msEpsilon); ms >= math.MaxInt64 {
		totalMs = math.MaxInt64
	} else {
		totalMs = int64(ms)
	}
	minutes := totalMs / 60000
	secs := (totalMs / 1000) % 60
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%03d", minutes, secs, ms)
}
