package testbed

import (
	"context"

	"github.com/google/uuid"

	"github.com/wippyai/hostbridge/promise"
)

// task runs fn on its own goroutine and is awaited by the bridge.
type task struct {
	done chan struct{}
	v    any
	err  error
}

func run(fn func() (any, error)) *task {
	t := &task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.v, t.err = fn()
	}()
	return t
}

func (t *task) Await(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.v, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// goPromise resolves a promise from a goroutine.
func goPromise[T any](fn func() (T, error)) *promise.Promise[T] {
	p := promise.New[T]()
	go func() {
		v, err := fn()
		if err != nil {
			_ = p.Reject(err)
			return
		}
		_ = p.Resolve(v)
	}()
	return p
}

func StaticLogAsync(value string, failing bool) promise.Future {
	return run(func() (any, error) { return nil, StaticLog(value, failing) })
}

func StaticEchoAsync(value string, failing bool) promise.Future {
	return run(func() (any, error) { return StaticEcho(value, failing) })
}

func StaticEchoDataAsync(data *TestStruct, failing bool) *promise.Promise[*TestStruct] {
	return goPromise(func() (*TestStruct, error) { return StaticEchoData(data, failing) })
}

// TestAsync returns futures, promises and channels for each echo.
type TestAsync struct {
	methods TestMethods
}

func NewTestAsync() *TestAsync { return &TestAsync{} }

func (a *TestAsync) LogAsync(value string, failing bool) promise.Future {
	return run(func() (any, error) { return nil, a.methods.Log(value, failing) })
}

func (a *TestAsync) EchoAsync(value string, failing bool) promise.Future {
	return run(func() (any, error) { return a.methods.Echo(value, failing) })
}

func (a *TestAsync) EchoDataAsync(data *TestStruct, failing bool) *promise.Promise[*TestStruct] {
	return goPromise(func() (*TestStruct, error) { return a.methods.EchoData(data, failing) })
}

func (a *TestAsync) EchoDataListAsync(list []*TestStruct, failing bool) *promise.Promise[[]*TestStruct] {
	return goPromise(func() ([]*TestStruct, error) { return a.methods.EchoDataList(list, failing) })
}

func (a *TestAsync) EchoNullableIntAsync(v *int) <-chan *int {
	ch := make(chan *int, 1)
	go func() { ch <- v }()
	return ch
}

func (a *TestAsync) EchoNullableBoolAsync(v *bool) <-chan *bool {
	ch := make(chan *bool, 1)
	go func() { ch <- v }()
	return ch
}

func (a *TestAsync) EchoUUIDAsync(v uuid.UUID) promise.Future {
	return run(func() (any, error) { return v, nil })
}
