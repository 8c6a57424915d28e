package schedule

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"solofeed/internal/logging"
	"solofeed/internal/metrics"
)

// Handle cancels a scheduled task or a recurring job.
type Handle struct{ cancelled atomic.Bool }

// Cancel stops the task from running again. Safe on a nil handle.
func (h *Handle) Cancel() {
	if h != nil {
		h.cancelled.Store(true)
	}
}

func (h *Handle) Cancelled() bool { return h != nil && h.cancelled.Load() }

type entry struct {
	due    time.Time
	seq    uint64
	fn     func()
	handle *Handle
	every  time.Duration
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Loop is a single logical timeline. Every task and every Await continuation runs on
// the goroutine driving the loop, one at a time, so store mutations never interleave
// except at delay and Await boundaries.
type Loop struct {
	clock clock.Clock

	mu       sync.Mutex
	cond     *sync.Cond
	queue    entryHeap
	seq      uint64
	posted   []func()
	inflight int

	wake chan struct{}
}

// New returns a loop reading time from c. Pass clock.New() in production and
// clock.NewMock() in tests.
func New(c clock.Clock) *Loop {
	l := &Loop{clock: c, wake: make(chan struct{}, 1)}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Now is the loop's current time.
func (l *Loop) Now() time.Time { return l.clock.Now() }

// After runs fn once, d from now.
func (l *Loop) After(d time.Duration, fn func()) *Handle {
	return l.schedule(d, fn, 0)
}

// Every runs fn every d, first after d, until the handle is cancelled.
func (l *Loop) Every(d time.Duration, fn func()) *Handle {
	if d <= 0 {
		panic("schedule: non-positive interval")
	}
	return l.schedule(d, fn, d)
}

func (l *Loop) schedule(d time.Duration, fn func(), every time.Duration) *Handle {
	if d < 0 {
		d = 0
	}
	h := &Handle{}
	l.mu.Lock()
	l.push(&entry{due: l.clock.Now().Add(d), fn: fn, handle: h, every: every})
	l.mu.Unlock()
	l.signal()
	return h
}

// push requires l.mu.
func (l *Loop) push(e *entry) {
	l.seq++
	e.seq = l.seq
	heap.Push(&l.queue, e)
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Await runs work off the loop and resumes then on the loop with its result.
// Other tasks may run while work is in flight.
func Await[T any](l *Loop, work func() T, then func(T)) {
	l.mu.Lock()
	l.inflight++
	l.mu.Unlock()
	go func() {
		var v T
		if !guard(func() { v = work() }) {
			l.post(nil)
			return
		}
		l.post(func() { then(v) })
	}()
}

// post hands a continuation back to the loop and releases its in-flight slot.
func (l *Loop) post(fn func()) {
	l.mu.Lock()
	l.inflight--
	if fn != nil {
		l.posted = append(l.posted, fn)
	}
	l.cond.Broadcast()
	l.mu.Unlock()
	l.signal()
}

// Pending counts queued tasks, recurring jobs included, and in-flight awaits.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.inflight + len(l.posted)
	for _, e := range l.queue {
		if !e.handle.Cancelled() {
			n++
		}
	}
	return n
}

// popDue removes the earliest entry due at or before t.
func (l *Loop) popDue(t time.Time) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.queue.Len() > 0 {
		e := l.queue[0]
		if e.handle.Cancelled() {
			heap.Pop(&l.queue)
			continue
		}
		if e.due.After(t) {
			return nil
		}
		return heap.Pop(&l.queue).(*entry)
	}
	return nil
}

func (l *Loop) fire(e *entry) {
	if e.handle.Cancelled() {
		return
	}
	if e.every > 0 {
		l.mu.Lock()
		l.push(&entry{due: e.due.Add(e.every), fn: e.fn, handle: e.handle, every: e.every})
		l.mu.Unlock()
	}
	guard(e.fn)
}

func (l *Loop) takePosted() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.posted
	l.posted = nil
	return batch
}

// drain runs continuations, waiting for every in-flight Await to come back.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		for l.inflight > 0 && len(l.posted) == 0 {
			l.cond.Wait()
		}
		batch := l.posted
		l.posted = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			guard(fn)
		}
	}
}

// Advance moves a mock clock forward by d, running every task that comes due in
// order. Before each task it waits for in-flight awaits, so a test driving the loop
// sees the same interleaving on every run.
func (l *Loop) Advance(d time.Duration) {
	mock, ok := l.clock.(*clock.Mock)
	if !ok {
		panic("schedule: Advance needs a mock clock")
	}
	target := mock.Now().Add(d)
	for {
		l.drain()
		e := l.popDue(target)
		if e == nil {
			break
		}
		if e.due.After(mock.Now()) {
			mock.Set(e.due)
		}
		l.fire(e)
	}
	if target.After(mock.Now()) {
		mock.Set(target)
	}
}

// Run drives the loop on its clock until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for _, fn := range l.takePosted() {
			guard(fn)
		}
		now := l.clock.Now()
		for e := l.popDue(now); e != nil; e = l.popDue(now) {
			l.fire(e)
		}

		var timerC <-chan time.Time
		var timer *clock.Timer
		if wait, ok := l.nextWait(); ok {
			timer = l.clock.Timer(wait)
			timerC = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logging.Info("loop_stop", nil)
			return ctx.Err()
		case <-timerC:
		case <-l.wake:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (l *Loop) nextWait() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.queue.Len() == 0 {
		return 0, false
	}
	wait := l.queue[0].due.Sub(l.clock.Now())
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// guard runs fn, turning a panic into a log line so sibling tasks keep running.
func guard(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			metrics.TaskPanics.Inc()
			logging.Error("task_panic", map[string]any{"panic": fmt.Sprint(r)})
		}
	}()
	fn()
	return true
}
