package oracle

import (
	"bytes"
	"io"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"solofeed/internal/logging"
)

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 5
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// newBreaker opens after failures consecutive errors and probes again after cooldown.
func newBreaker(failures int, cooldown time.Duration) *gobreaker.CircuitBreaker {
	if failures <= 0 {
		failures = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("oracle_breaker", map[string]any{"from": from.String(), "to": to.String()})
		},
	})
}

func readCloser(b []byte) io.ReadCloser { return io.NopCloser(bytes.NewReader(b)) }
