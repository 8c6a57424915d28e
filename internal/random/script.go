package random

import "sync"

// Script replays fixed draws and falls back to a seeded source once exhausted.
// It is meant for tests that assert exact outcomes.
type Script struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
	rest   Source
}

// NewScript returns a source answering Intn from ints and Float64 from floats, in order.
func NewScript(ints []int, floats []float64) *Script {
	return &Script{ints: ints, floats: floats, rest: New(1)}
}

func (s *Script) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return s.rest.Intn(n)
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *Script) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return s.rest.Float64()
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}
