package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockLoop() (*Loop, *clock.Mock) {
	mock := clock.NewMock()
	mock.Set(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	return New(mock), mock
}

func TestAfterRunsInDueOrder(t *testing.T) {
	l, mock := newMockLoop()
	start := mock.Now()
	var order []string
	var at []time.Duration
	l.After(3*time.Second, func() { order = append(order, "c"); at = append(at, mock.Now().Sub(start)) })
	l.After(time.Second, func() { order = append(order, "a"); at = append(at, mock.Now().Sub(start)) })
	l.After(time.Second, func() { order = append(order, "b"); at = append(at, mock.Now().Sub(start)) })

	l.Advance(500 * time.Millisecond)
	assert.Empty(t, order)

	l.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, []time.Duration{time.Second, time.Second, 3 * time.Second}, at)
	assert.Equal(t, 5500*time.Millisecond, mock.Now().Sub(start))
	assert.Equal(t, 0, l.Pending())
}

func TestNestedSchedulingWithinAdvance(t *testing.T) {
	l, _ := newMockLoop()
	var got []int
	l.After(time.Second, func() {
		for i := 0; i < 3; i++ {
			i := i
			l.After(time.Duration(i)*time.Second, func() { got = append(got, i) })
		}
	})
	l.Advance(2 * time.Second)
	assert.Equal(t, []int{0, 1}, got)
	l.Advance(time.Second)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestEveryUntilCancelled(t *testing.T) {
	l, _ := newMockLoop()
	n := 0
	h := l.Every(10*time.Second, func() { n++ })
	l.Advance(35 * time.Second)
	assert.Equal(t, 3, n)
	h.Cancel()
	l.Advance(time.Minute)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, l.Pending())
}

func TestCancelledOneShotNeverRuns(t *testing.T) {
	l, _ := newMockLoop()
	ran := false
	h := l.After(time.Second, func() { ran = true })
	h.Cancel()
	l.Advance(2 * time.Second)
	assert.False(t, ran)
	var nilHandle *Handle
	nilHandle.Cancel()
}

func TestAwaitResumesOnLoop(t *testing.T) {
	l, _ := newMockLoop()
	var got []string
	l.After(time.Second, func() {
		Await(l, func() string { return "oracle" }, func(s string) { got = append(got, s) })
	})
	l.After(2*time.Second, func() { got = append(got, "later") })
	l.Advance(3 * time.Second)
	assert.Equal(t, []string{"oracle", "later"}, got)
}

func TestPanickingTaskDoesNotStopSiblings(t *testing.T) {
	l, _ := newMockLoop()
	ran := 0
	l.After(time.Second, func() { panic("boom") })
	l.After(time.Second, func() { ran++ })
	Await(l, func() int { panic("work boom") }, func(int) { ran += 10 })
	l.Advance(2 * time.Second)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 0, l.Pending())
}

func TestRunExecutesOnRealClock(t *testing.T) {
	l := New(clock.New())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { _ = l.Run(ctx) }()
	l.After(10*time.Millisecond, func() {
		Await(l, func() int { return 1 }, func(int) { close(done) })
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "loop did not run the task")
	}
}

func TestAdvanceRequiresMock(t *testing.T) {
	l := New(clock.New())
	assert.Panics(t, func() { l.Advance(time.Second) })
}
