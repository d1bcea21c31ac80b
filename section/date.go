package section

import (
	"math"
	"time"
)

// referenceUnix is ReferenceDate as a Unix timestamp.
const referenceUnix = 978307200

// ReferenceDate is the epoch of binary plist dates, 2001-01-01T00:00:00Z.
var ReferenceDate = time.Unix(referenceUnix, 0).UTC()

// TimeToSeconds converts t to seconds since ReferenceDate.
func TimeToSeconds(t time.Time) float64 {
	return float64(t.Unix()-referenceUnix) + float64(t.Nanosecond())/1e9
}

// SecondsToTime converts seconds since ReferenceDate to a UTC time rounded to
// the nearest microsecond. It returns false for NaN, infinities and values
// outside the int64 second range.
func SecondsToTime(secs float64) (time.Time, bool) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, false
	}

	whole := math.Floor(secs)
	if whole < math.MinInt64/2 || whole > math.MaxInt64/2 {
		return time.Time{}, false
	}

	micros := math.Round((secs - whole) * 1e6)
	if micros >= 1e6 {
		whole++
		micros -= 1e6
	}

	return time.Unix(referenceUnix+int64(whole), int64(micros)*int64(time.Microsecond)).UTC(), true
}
