package testbed

import (
	"errors"
	"sync"

	"github.com/wippyai/hostbridge/promise"
)

// RequestCode is the result code TestWindowResultAsync waits for.
const RequestCode = 111

// App stands in for the host application object.
type App struct {
	Name string
}

// Window stands in for the current top-level window. Requests records the
// result requests started on it.
type Window struct {
	Title    string
	Requests []int
	mu       sync.Mutex
}

// StartForResult records a request. The host delivers the result later.
func (w *Window) StartForResult(requestCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Requests = append(w.Requests, requestCode)
}

// TestContext receives the application and window objects and handles
// window results.
type TestContext struct {
	app     *App
	pending *promise.Promise[any]
	mu      sync.Mutex
}

func NewTestContext(app *App, failing bool) (*TestContext, error) {
	if failing {
		return nil, errors.New("requested failure")
	}
	return &TestContext{app: app}, nil
}

func (c *TestContext) TestConstructorAppContext() error {
	if c.app == nil {
		return errors.New("constructor app context is nil")
	}
	return nil
}

func TestStaticMethodAppContext(app *App) error {
	if app == nil {
		return errors.New("static method app context is nil")
	}
	return nil
}

func TestStaticMethodAppContext2(app *App, _ int) error {
	return TestStaticMethodAppContext(app)
}

func TestStaticMethodWindowContext(w *Window) error {
	if w == nil {
		return errors.New("static method window context is nil")
	}
	return nil
}

func TestStaticMethodWindowContext2(w *Window, _ int) error {
	return TestStaticMethodWindowContext(w)
}

func (c *TestContext) TestMethodAppContext(app *App) error {
	return TestStaticMethodAppContext(app)
}

func (c *TestContext) TestMethodAppContext2(app *App, n int) error {
	return TestStaticMethodAppContext2(app, n)
}

func (c *TestContext) TestMethodWindowContext(w *Window) error {
	return TestStaticMethodWindowContext(w)
}

func (c *TestContext) TestMethodWindowContext2(w *Window, n int) error {
	return TestStaticMethodWindowContext2(w, n)
}

func (c *TestContext) TestMethodAppContext3Async(app *App) promise.Future {
	return run(func() (any, error) { return nil, c.TestMethodAppContext(app) })
}

func (c *TestContext) TestMethodWindowContext3Async(w *Window) promise.Future {
	return run(func() (any, error) { return nil, c.TestMethodWindowContext(w) })
}

// TestWindowResultAsync starts a result request on w and completes when
// the matching result is delivered through OnResult.
func (c *TestContext) TestWindowResultAsync(w *Window) (*promise.Promise[any], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return nil, errors.New("a window result test is already in progress")
	}
	c.pending = promise.New[any]()
	w.StartForResult(RequestCode)
	return c.pending, nil
}

func (c *TestContext) OnResult(requestCode, resultCode int, data any) {
	if requestCode != RequestCode {
		return
	}
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.mu.Unlock()
	if p != nil {
		_ = p.Resolve(resultCode)
	}
}
