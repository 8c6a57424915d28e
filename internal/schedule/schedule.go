package schedule

import (
	"time"
)

// IsQuiet reports whether now falls within one of the quiet hours (UTC).
func IsQuiet(now time.Time, quietHours []int) bool {
	h := now.UTC().Hour()
	for _, q := range quietHours {
		if q == h {
			return true
		}
	}
	return false
}

// NextWindow returns the next time periodic activity may run, avoiding quiet hours.
func NextWindow(now time.Time, quietHours []int) time.Time {
	for i := 0; i < 48; i++ { // search up to 2 days ahead
		cand := now.Add(time.Duration(i) * time.Hour)
		if i > 0 {
			cand = cand.Truncate(time.Hour)
		}
		if !IsQuiet(cand, quietHours) {
			return cand
		}
	}
	return now.Add(15 * time.Minute)
}
