package relay

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
)

// Relay schedules fn on the UI goroutine
type Relay interface {
	Post(fn func())
}

// Fyne relays onto the fyne event loop. fyne.Do queues calls in order and
// returns without waiting.
type Fyne struct{}

// NewFyne creates a relay backed by the running fyne app
func NewFyne() Relay {
	return Fyne{}
}

// Post implements Relay
func (Fyne) Post(fn func()) {
	fyne.Do(fn)
}

// Queue is an unbounded FIFO of mutations owned by a single goroutine, which
// executes them through Run or Drain.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	signal  chan struct{}
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Post implements Relay
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Len returns the number of mutations waiting to run
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs every queued mutation, including ones posted by mutations
// while draining, and returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Run drains the queue on the calling goroutine until ctx is done
func (q *Queue) Run(ctx context.Context) {
	for {
		q.Drain()
		select {
		case <-ctx.Done():
			return
		case <-q.signal:
		}
	}
}
