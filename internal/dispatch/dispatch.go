// Package dispatch runs user-initiated blocking work off the UI goroutine.
// Every dispatched task runs exactly once on its own goroutine; there is no
// pool, no queueing and no cancellation.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/relay"
)

// Kind names the user action a task serves
type Kind string

const (
	KindSearch        Kind = "search"
	KindDetails       Kind = "details"
	KindDownload      Kind = "download"
	KindBatchDownload Kind = "batch-download"
)

// Task is an explicit record of one unit of work. Run receives everything
// it needs through the closure built by the caller from the task inputs; it
// reports its outcome through the relay itself. A non-nil error returned by
// Run means the task could not relay its own outcome.
type Task struct {
	ID    string
	Kind  Kind
	Token uint64
	Label string
	Run   func(ctx context.Context) error
}

// EscapeHandler receives errors and panics that escaped a task. It is
// always invoked on the UI goroutine through the relay.
type EscapeHandler func(task Task, err error)

// PanicError wraps a recovered panic value
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Dispatcher spawns one goroutine per task
type Dispatcher struct {
	relay    relay.Relay
	onEscape EscapeHandler
	logger   zerolog.Logger

	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// New creates a dispatcher relaying escaped failures to onEscape
func New(r relay.Relay, onEscape EscapeHandler, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		relay:    r,
		onEscape: onEscape,
		logger:   logger.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch starts the task and returns immediately
func (d *Dispatcher) Dispatch(task Task) string {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Run == nil {
		task.Run = func(context.Context) error { return fmt.Errorf("task %s has no work", task.Kind) }
	}

	d.wg.Add(1)
	n := d.inFlight.Add(1)
	d.logger.Debug().
		Str("task", task.ID).
		Str("kind", string(task.Kind)).
		Uint64("token", task.Token).
		Int64("in_flight", n).
		Msg("task dispatched")

	go d.run(task)
	return task.ID
}

// InFlight returns the number of tasks that have not finished
func (d *Dispatcher) InFlight() int {
	return int(d.inFlight.Load())
}

// Wait blocks until every dispatched task has returned
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(task Task) {
	started := time.Now()
	defer func() {
		d.inFlight.Add(-1)
		d.wg.Done()
	}()

	err := d.safeRun(task)

	log := d.logger.With().
		Str("task", task.ID).
		Str("kind", string(task.Kind)).
		Dur("elapsed", time.Since(started)).
		Logger()
	if err == nil {
		log.Debug().Msg("task finished")
		return
	}

	log.Error().Err(err).Msg("task escaped with error")
	if d.onEscape != nil {
		d.relay.Post(func() { d.onEscape(task, err) })
	}
}

func (d *Dispatcher) safeRun(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return task.Run(context.Background())
}
