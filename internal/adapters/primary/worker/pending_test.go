package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingService struct {
	passes atomic.Int32
	n      int
	err    error
}

func (c *countingService) ProcessPending(context.Context) (int, error) {
	c.passes.Add(1)
	return c.n, c.err
}

func TestRunOnce(t *testing.T) {
	svc := &countingService{n: 3}
	loop := NewPendingLoop(svc, time.Second)

	if n := loop.RunOnce(context.Background()); n != 3 {
		t.Fatalf("n=%d want 3", n)
	}

	svc.err = errors.New("redis down")
	svc.n = 1
	if n := loop.RunOnce(context.Background()); n != 1 {
		t.Fatalf("n=%d want 1 on partial failure", n)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc := &countingService{}
	loop := NewPendingLoop(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for svc.passes.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d passes before deadline", svc.passes.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err=%v want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop")
	}
}

func TestNewPendingLoop_DefaultInterval(t *testing.T) {
	if l := NewPendingLoop(&countingService{}, 0); l.interval != DefaultInterval {
		t.Fatalf("interval=%v want %v", l.interval, DefaultInterval)
	}
}
