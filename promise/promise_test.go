package promise

import (
	"context"
	stderrors "errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/wippyai/hostbridge/errors"
)

func TestResolve(t *testing.T) {
	p := New[int]()
	if p.State() != Pending {
		t.Fatalf("State = %v", p.State())
	}
	if _, err := p.Result(); !stderrors.Is(err, ErrPending) {
		t.Errorf("Result on pending = %v", err)
	}
	if err := p.Resolve(7); err != nil {
		t.Fatal(err)
	}
	v, err := p.Wait(context.Background())
	if err != nil || v != 7 {
		t.Errorf("Wait = %v, %v", v, err)
	}
}

func TestDoubleComplete(t *testing.T) {
	tests := []struct {
		name   string
		first  func(*Promise[int]) error
		second func(*Promise[int]) error
	}{
		{"resolve twice", func(p *Promise[int]) error { return p.Resolve(1) }, func(p *Promise[int]) error { return p.Resolve(2) }},
		{"reject after resolve", func(p *Promise[int]) error { return p.Resolve(1) }, func(p *Promise[int]) error { return p.Reject(stderrors.New("x")) }},
		{"resolve after reject", func(p *Promise[int]) error { return p.Reject(stderrors.New("x")) }, func(p *Promise[int]) error { return p.Resolve(2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New[int]()
			if err := tt.first(p); err != nil {
				t.Fatal(err)
			}
			state := p.State()
			if err := tt.second(p); !stderrors.Is(err, errors.ErrAlreadyCompleted) {
				t.Errorf("second completion = %v, want already completed", err)
			}
			if p.State() != state {
				t.Errorf("state changed to %v", p.State())
			}
		})
	}
}

func TestRejectRequiresError(t *testing.T) {
	if err := New[int]().Reject(nil); err == nil {
		t.Error("Reject(nil) should fail")
	}
}

func TestCancel(t *testing.T) {
	p := New[string]()
	hooked := false
	p.OnCancel(func() { hooked = true })

	if !p.Cancel() {
		t.Fatal("Cancel of pending promise should succeed")
	}
	if !hooked {
		t.Error("cancel hook not run")
	}
	if p.Cancel() {
		t.Error("second Cancel should report false")
	}
	if err := p.Resolve("late"); err != nil {
		t.Errorf("Resolve after Cancel = %v, want ignored", err)
	}
	if _, err := p.Result(); !stderrors.Is(err, errors.ErrCancelled) {
		t.Errorf("Result = %v, want cancelled", err)
	}

	done := ResolvedWith("x")
	if done.Cancel() {
		t.Error("Cancel of resolved promise should report false")
	}
}

func TestThen(t *testing.T) {
	p := New[int]()
	next, err := Then(p, func(v int) (string, error) {
		return strconv.Itoa(v * 2), nil
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if next.State() != Pending {
		t.Error("chained promise should be pending")
	}
	_ = p.Resolve(21)
	s, err := next.Wait(context.Background())
	if err != nil || s != "42" {
		t.Errorf("chained = %q, %v", s, err)
	}
}

func TestThenOnCompleted(t *testing.T) {
	p := ResolvedWith(3)
	next, err := Then(p, func(v int) (int, error) { return v + 1, nil }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v, err := next.Result(); err != nil || v != 4 {
		t.Errorf("Result = %v, %v", v, err)
	}
}

func TestSingleContinuation(t *testing.T) {
	p := New[int]()
	if _, err := Then[int, int](p, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := Then[int, int](p, nil, nil); !stderrors.Is(err, errors.ErrAlreadyChained) {
		t.Errorf("second Then = %v, want already chained", err)
	}
	if err := p.OnComplete(func(int, error) {}); !stderrors.Is(err, errors.ErrAlreadyChained) {
		t.Errorf("OnComplete after Then = %v, want already chained", err)
	}
}

func TestThenErrors(t *testing.T) {
	boom := stderrors.New("boom")

	t.Run("rejection reaches handler", func(t *testing.T) {
		p := New[int]()
		var handled error
		next, _ := Then(p, func(int) (int, error) {
			t.Error("result handler called on rejection")
			return 0, nil
		}, func(err error) { handled = err })
		_ = p.Reject(boom)
		if handled != boom {
			t.Errorf("handled = %v", handled)
		}
		if _, err := next.Result(); err != boom {
			t.Errorf("chained = %v", err)
		}
	})

	t.Run("rejection without handler", func(t *testing.T) {
		p := New[int]()
		next, _ := Then[int, int](p, nil, nil)
		_ = p.Reject(boom)
		if next.State() != Rejected {
			t.Errorf("chained state = %v", next.State())
		}
	})

	t.Run("result handler error", func(t *testing.T) {
		p := New[int]()
		next, _ := Then(p, func(int) (int, error) { return 0, boom }, nil)
		_ = p.Resolve(1)
		if _, err := next.Result(); err != boom {
			t.Errorf("chained = %v", err)
		}
	})

	t.Run("cancel reaches handler", func(t *testing.T) {
		p := New[int]()
		var handled error
		next, _ := p.Catch(func(err error) { handled = err })
		p.Cancel()
		if !stderrors.Is(handled, errors.ErrCancelled) {
			t.Errorf("handled = %v", handled)
		}
		if next.State() != Cancelled {
			t.Errorf("chained state = %v", next.State())
		}
	})
}

func TestOnCompleteAny(t *testing.T) {
	p := New[string]()
	got := make(chan any, 1)
	_ = p.OnCompleteAny(func(v any, err error) {
		if err != nil {
			t.Error(err)
		}
		got <- v
	})
	_ = p.Resolve("ok")
	if v := <-got; v != "ok" {
		t.Errorf("OnCompleteAny value = %v", v)
	}

	var _ AnyPromise = p
}

func TestWaitContext(t *testing.T) {
	p := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want deadline exceeded", err)
	}
}

func TestConcurrentCompletion(t *testing.T) {
	p := New[int]()
	calls := 0
	var mu sync.Mutex
	_ = p.OnComplete(func(int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	var wins int32
	var winMu sync.Mutex
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if p.Resolve(i) == nil {
				winMu.Lock()
				wins++
				winMu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d resolutions succeeded, want 1", wins)
	}
	if calls != 1 {
		t.Errorf("continuation ran %d times, want 1", calls)
	}
}
