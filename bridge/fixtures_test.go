package bridge

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/event"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

const testPkg = "github.com/wippyai/hostbridge/bridge"

type ChangeEvent struct {
	Count int
}

type ChangeListener interface {
	OnChange(*ChangeEvent)
}

type changeAdapter struct{ *event.Emitter }

func (a *changeAdapter) OnChange(e *ChangeEvent) { a.Emit(e) }

type Counter struct {
	pending   *promise.Promise[int]
	gate      chan struct{}
	listeners []ChangeListener
	n         int
}

func NewCounter() *Counter          { return &Counter{} }
func NewCounterFrom(n int) *Counter { return &Counter{n: n} }

func (c *Counter) GetCount() int { return c.n }
func (c *Counter) IsEmpty() bool { return c.n == 0 }

func (c *Counter) SetCount(n int) {
	c.n = n
	for _, l := range c.listeners {
		l.OnChange(&ChangeEvent{Count: n})
	}
}

func (c *Counter) Add(a, b int) int { c.SetCount(c.n + a + b); return c.n }
func (c *Counter) Fail() error      { return stderrors.New("counter failed") }
func (c *Counter) Self() *Counter   { return c }

func (c *Counter) Later() *promise.Promise[int] {
	c.pending = promise.New[int]()
	return c.pending
}

func (c *Counter) Eventually(gate chan struct{}) promise.Future {
	return futureFunc(func(ctx context.Context) (any, error) {
		select {
		case <-gate:
			return c.n, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

// Gated resolves with the count once c.gate is closed.
func (c *Counter) Gated() promise.Future {
	return c.Eventually(c.gate)
}

// Stuck waits for c.gate and never looks at its context.
func (c *Counter) Stuck() promise.Future {
	return futureFunc(func(context.Context) (any, error) {
		<-c.gate
		return c.n, nil
	})
}

func (c *Counter) Stream() <-chan int {
	ch := make(chan int, 1)
	ch <- c.n
	return ch
}

func (c *Counter) AddChangeListener(l ChangeListener) {
	c.listeners = append(c.listeners, l)
}

func (c *Counter) RemoveChangeListener(l ChangeListener) {
	for i, x := range c.listeners {
		if x == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

type futureFunc func(context.Context) (any, error)

func (f futureFunc) Await(ctx context.Context) (any, error) { return f(ctx) }

type Picker struct {
	results []int
}

func (p *Picker) OnResult(requestCode, resultCode int, _ any) {
	p.results = append(p.results, requestCode, resultCode)
}

func (p *Picker) Pick(w any) string { return "picking" }

type window struct{ title string }

// statics shared by the Counter type
type counterStatics struct {
	mu        sync.Mutex
	limit     int
	listeners []ChangeListener
}

func (s *counterStatics) fire(n int) {
	s.mu.Lock()
	ls := append([]ChangeListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		l.OnChange(&ChangeEvent{Count: n})
	}
}

type fixture struct {
	eng       *Engine
	statics   *counterStatics
	app       *hostbridge.StaticContext
	intercept int
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{statics: &counterStatics{limit: 10}}
	f.app = &hostbridge.StaticContext{
		App:         "app",
		Window:      &window{title: "main"},
		OnIntercept: func() { f.intercept++ },
	}
	f.eng = New(f.app, opts...)
	t.Cleanup(func() { _ = f.eng.Close() })

	if err := f.eng.Mapper().Register("Test", testPkg); err != nil {
		t.Fatalf("Register namespace: %v", err)
	}
	s := f.statics
	_, err := native.Register[Counter](f.eng.Types(),
		native.Constructor(NewCounter),
		native.Constructor(NewCounterFrom),
		native.Static("GetLimit", func() int { s.mu.Lock(); defer s.mu.Unlock(); return s.limit }),
		native.Static("SetLimit", func(n int) { s.mu.Lock(); defer s.mu.Unlock(); s.limit = n }),
		native.Static("Double", func(n int) int { return n * 2 }),
		native.Static("AddResetListener", func(l ChangeListener) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = append(s.listeners, l)
		}),
		native.Static("RemoveResetListener", func(l ChangeListener) {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, x := range s.listeners {
				if x == l {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		}),
	)
	if err != nil {
		t.Fatalf("Register Counter: %v", err)
	}
	if _, err := native.Register[Picker](f.eng.Types()); err != nil {
		t.Fatalf("Register Picker: %v", err)
	}
	err = event.RegisterShape(f.eng.Shapes(), func(e *event.Emitter) ChangeListener {
		return &changeAdapter{e}
	})
	if err != nil {
		t.Fatalf("RegisterShape: %v", err)
	}
	f.eng.RegisterMarshalByValue("ChangeEvent")
	return f
}

func wait(t *testing.T, p *promise.Promise[value.Value]) (value.Value, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Wait(ctx)
}

func mustWait(t *testing.T, p *promise.Promise[value.Value]) value.Value {
	t.Helper()
	v, err := wait(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func args(vs ...value.Value) value.Value {
	return value.ArrayOf(vs...)
}

func (f *fixture) counter(t *testing.T, n int) value.Value {
	t.Helper()
	return mustWait(t, f.eng.CreateInstance(context.Background(), "Test.Counter", args(value.FromInt(n))))
}
