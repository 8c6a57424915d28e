// Package random isolates every random draw of the simulation behind a
// seedable source so tests can script exact outcomes.
package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the only randomness the simulation consumes.
type Source interface {
	// Intn returns a value in [0, n). n must be positive.
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a goroutine-safe source. A zero seed draws one from the clock.
func New(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Between draws an integer in the inclusive range [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}
