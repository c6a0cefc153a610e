package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_Done(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func TestHandler_Trigger_ReverseOrder(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	var mu sync.Mutex
	var callOrder []int
	for i := 1; i <= 3; i++ {
		h.OnShutdown("hook", func(ctx context.Context) error {
			mu.Lock()
			callOrder = append(callOrder, i)
			mu.Unlock()
			return nil
		})
	}

	h.Trigger("test")
	h.Trigger("ignored")

	if err := h.Wait(context.Background()); err != nil {
		t.Errorf("Wait() returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(callOrder) != 3 || callOrder[0] != 3 || callOrder[1] != 2 || callOrder[2] != 1 {
		t.Errorf("hooks called in wrong order: %v, want [3 2 1]", callOrder)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Wait_Signal(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	called := make(chan struct{}, 1)
	h.OnShutdown("marker", func(ctx context.Context) error {
		called <- struct{}{}
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait(context.Background())
	}()

	// Give Wait time to set up signal handler
	time.Sleep(50 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	select {
	case <-called:
	default:
		t.Error("hook was not called")
	}
}

func TestHandler_Wait_ContextCancel(t *testing.T) {
	h := NewHandler(time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Wait(ctx); err != nil {
		t.Errorf("Wait() returned error: %v", err)
	}
}

func TestHandler_Wait_HookErrors(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	errA := errors.New("hook a failed")
	errB := errors.New("hook b failed")
	ran := 0

	h.OnShutdown("a", func(ctx context.Context) error { ran++; return errA })
	h.OnShutdown("ok", func(ctx context.Context) error { ran++; return nil })
	h.OnShutdown("b", func(ctx context.Context) error { ran++; return errB })

	h.Trigger("test")
	err := h.Wait(context.Background())

	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Wait() = %v, want both hook errors", err)
	}
	if ran != 3 {
		t.Errorf("ran %d hooks, want 3 (a failure must not stop later hooks)", ran)
	}
}

func TestHandler_HookDeadline(t *testing.T) {
	h := NewHandler(50*time.Millisecond, nil)

	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger("test")
	if err := h.Wait(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("noop", func(ctx context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hooks) != 10 {
		t.Errorf("hooks = %d, want 10", len(h.hooks))
	}
}
