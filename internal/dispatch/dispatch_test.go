package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/relay"
)

func TestDispatch_RunsExactlyOnce(t *testing.T) {
	q := relay.NewQueue()
	d := New(q, nil, zerolog.Nop())

	var mu sync.Mutex
	calls := 0
	d.Dispatch(Task{Kind: KindSearch, Run: func(context.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}})
	d.Wait()

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if d.InFlight() != 0 {
		t.Errorf("Expected no tasks in flight, got %d", d.InFlight())
	}
}

func TestDispatch_DoesNotBlockCaller(t *testing.T) {
	q := relay.NewQueue()
	d := New(q, nil, zerolog.Nop())

	release := make(chan struct{})
	d.Dispatch(Task{Kind: KindDetails, Run: func(context.Context) error {
		<-release
		return nil
	}})
	d.Dispatch(Task{Kind: KindDetails, Run: func(context.Context) error {
		<-release
		return nil
	}})

	// both in flight at once
	if d.InFlight() != 2 {
		t.Errorf("Expected 2 tasks in flight, got %d", d.InFlight())
	}
	close(release)
	d.Wait()
}

func TestDispatch_ForwardsEscapedError(t *testing.T) {
	q := relay.NewQueue()
	var got error
	var gotTask Task
	d := New(q, func(task Task, err error) {
		gotTask = task
		got = err
	}, zerolog.Nop())

	boom := errors.New("boom")
	d.Dispatch(Task{Kind: KindDownload, Token: 7, Run: func(context.Context) error { return boom }})
	d.Wait()

	if got != nil {
		t.Fatal("Escape handler must run on the relay, not the worker")
	}
	q.Drain()
	if !errors.Is(got, boom) {
		t.Errorf("Expected boom, got %v", got)
	}
	if gotTask.Token != 7 || gotTask.ID == "" {
		t.Errorf("Unexpected task record: %+v", gotTask)
	}
}

func TestDispatch_RecoversPanic(t *testing.T) {
	q := relay.NewQueue()
	var got error
	d := New(q, func(_ Task, err error) { got = err }, zerolog.Nop())

	d.Dispatch(Task{Kind: KindBatchDownload, Run: func(context.Context) error {
		panic("kaboom")
	}})
	d.Wait()
	q.Drain()

	var pe *PanicError
	if !errors.As(got, &pe) {
		t.Fatalf("Expected PanicError, got %v", got)
	}
	if pe.Value != "kaboom" || len(pe.Stack) == 0 {
		t.Errorf("Unexpected panic error: %+v", pe)
	}
}

func TestDispatch_NilRunIsReported(t *testing.T) {
	q := relay.NewQueue()
	var got error
	d := New(q, func(_ Task, err error) { got = err }, zerolog.Nop())

	d.Dispatch(Task{Kind: KindSearch})
	d.Wait()
	q.Drain()

	if got == nil {
		t.Error("Expected an error for a task without work")
	}
}
