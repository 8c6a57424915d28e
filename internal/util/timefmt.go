package util

import (
	"fmt"
	"time"
)

// RelativeTime renders how long ago ts was, the way the feed shows it.
func RelativeTime(ts, now time.Time) string {
	secs := int(now.Sub(ts).Seconds())
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh", secs/3600)
	case secs < 604800:
		return fmt.Sprintf("%dd", secs/86400)
	default:
		return ts.Format("Jan 2, 2006")
	}
}
