package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetweenStaysInRange(t *testing.T) {
	src := New(42)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := Between(src, 2, 5)
		assert.GreaterOrEqual(t, v, 2)
		assert.LessOrEqual(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 4)
}

func TestSeededSourcesRepeat(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
	}
}

func TestScriptReplaysDraws(t *testing.T) {
	s := NewScript([]int{3, 9}, []float64{0.1, 0.9})
	assert.Equal(t, 3, s.Intn(8))
	assert.Equal(t, 1, s.Intn(8))
	assert.True(t, Chance(s, 0.5))
	assert.False(t, Chance(s, 0.5))
	assert.Less(t, s.Intn(4), 4)
}
