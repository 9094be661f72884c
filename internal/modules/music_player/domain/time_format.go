package domain

import (
	"math"
	"strconv"
	"time"
)

// FormatTime renders a position in seconds as m:ss.
// Non-finite, negative and out of range values render as 0:00.
func FormatTime(seconds float64) string {
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit an int64
	if math.IsNaN(seconds) || seconds < 0 || seconds >= math.MaxInt64 {
		return "0:00"
	}

	total := int64(math.Floor(seconds))
	return strconv.FormatInt(total/60, 10) + ":" + pad(int(total%60))
}

// FormatDuration is FormatTime for a time.Duration.
func FormatDuration(d time.Duration) string {
	return FormatTime(d.Seconds())
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
