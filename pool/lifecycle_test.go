package pool

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_Close(t *testing.T) {
	t.Run("close without result", func(t *testing.T) {
		wp, err := NewWorkerPool[string](3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i := range 10 {
			_ = wp.Execute(i, func() string { return "x" })
		}

		closeWithin(t, wp, time.Second)

		if wp.Running() != 0 {
			t.Errorf("expected all workers stopped, %d running", wp.Running())
		}
	})

	t.Run("close with no jobs", func(t *testing.T) {
		wp, err := NewWorkerPool[int](DefaultMaxWorkers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		closeWithin(t, wp, time.Second)

		if wp.Running() != 0 {
			t.Errorf("expected all workers stopped, %d running", wp.Running())
		}
	})

	t.Run("double close is a no-op", func(t *testing.T) {
		wp, err := NewWorkerPool[int](2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := wp.Close(); err != nil {
			t.Fatalf("first close: %v", err)
		}
		if err := wp.Close(); err != nil {
			t.Fatalf("second close: %v", err)
		}
	})

	t.Run("close joins every handle once", func(t *testing.T) {
		wp, err := NewWorkerPool[int](4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_ = wp.Close()

		for _, w := range wp.workers {
			if w.handle != nil {
				t.Errorf("worker %d: handle not taken", w.id)
			}
			if w.currentState() != stateStopped {
				t.Errorf("worker %d: expected %v, got %v", w.id, stateStopped, w.currentState())
			}
			if err := w.join(); err != nil {
				t.Errorf("worker %d: second join returned %v", w.id, err)
			}
		}
	})

	t.Run("close waits for in-flight jobs", func(t *testing.T) {
		wp, err := NewWorkerPool[int](2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var finished atomic.Int32
		for i := range 4 {
			_ = wp.Execute(i, func() int {
				time.Sleep(20 * time.Millisecond)
				finished.Add(1)
				return i
			})
		}

		_ = wp.Close()

		if finished.Load() != 4 {
			t.Errorf("expected 4 finished jobs after close, got %d", finished.Load())
		}
	})
}

func TestWorkerPool_Result(t *testing.T) {
	t.Run("result joins workers", func(t *testing.T) {
		wp, err := NewWorkerPool[int](3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i := range 6 {
			_ = wp.Execute(i, func() int { return i })
		}

		out := make([]Slot[int], 6)
		if err := wp.Result(out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if wp.Running() != 0 {
			t.Errorf("expected all workers stopped, %d running", wp.Running())
		}
		for _, w := range wp.workers {
			if w.handle != nil {
				t.Errorf("worker %d: handle not taken after result", w.id)
			}
		}
	})

	t.Run("result then close", func(t *testing.T) {
		wp, err := NewWorkerPool[int](2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = wp.Execute(0, func() int { return 1 })

		out := make([]Slot[int], 1)
		if err := wp.Result(out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := wp.Close(); err != nil {
			t.Errorf("close after result: %v", err)
		}
		if wp.inbound.Len() != 0 {
			t.Errorf("expected no leftover terminate messages, got %d", wp.inbound.Len())
		}
	})

	t.Run("second result fails", func(t *testing.T) {
		wp, err := NewWorkerPool[int](2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = wp.Execute(0, func() int { return 1 })

		out := make([]Slot[int], 1)
		_ = wp.Result(out)

		again := make([]Slot[int], 1)
		if err := wp.Result(again); !errors.Is(err, ErrResultsCollected) {
			t.Errorf("expected ErrResultsCollected, got %v", err)
		}
		if again[0].IsSome() {
			t.Error("second result should not write into its slice")
		}
	})

	t.Run("result after close still collects", func(t *testing.T) {
		wp, err := NewWorkerPool[string](2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		inputs := []string{"a", "b", "c"}
		for i, s := range inputs {
			_ = wp.Execute(i, func() string { return strings.ToUpper(s) })
		}
		_ = wp.Close()

		out := make([]Slot[string], len(inputs))
		if err := wp.Result(out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, s := range inputs {
			if want := Some(strings.ToUpper(s)); out[i] != want {
				t.Errorf("slot %d: expected %v, got %v", i, want, out[i])
			}
		}
	})

	t.Run("result with no jobs", func(t *testing.T) {
		wp, err := NewWorkerPool[int](3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := make([]Slot[int], 2)
		if err := wp.Result(out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, slot := range out {
			if slot.IsSome() {
				t.Errorf("slot %d: expected None, got %v", i, slot)
			}
		}
	})
}

func TestWorkerPool_TerminateSentOncePerWorker(t *testing.T) {
	wp, err := NewWorkerPool[int](4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wp.terminate()
	wp.terminate()

	_ = wp.Close()

	// Each worker consumed exactly one terminate; none are left behind and
	// the pool's producer handle is gone.
	if wp.inbound.Len() != 0 {
		t.Errorf("expected empty inbound queue, got %d messages", wp.inbound.Len())
	}
	if !wp.inbound.Closed() {
		t.Error("expected inbound queue to be closed")
	}
	if !wp.outbound.Closed() {
		t.Error("expected outbound queue to be closed by the last worker")
	}
}

func closeWithin[R any](t *testing.T, wp *WorkerPool[R], timeout time.Duration) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- wp.Close() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("close: %v", err)
		}
	case <-time.After(timeout):
		t.Fatal("close did not return in time")
	}
}
