package bridge

import (
	"context"
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/event"
	"github.com/wippyai/hostbridge/handle"
	"github.com/wippyai/hostbridge/marshal"
	"github.com/wippyai/hostbridge/namespace"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

// DefaultWorkers bounds concurrent future draining.
const DefaultWorkers = 16

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of futures drained concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = int64(n)
		}
	}
}

// WithRegistry uses types instead of a fresh native registry.
func WithRegistry(types *native.Registry) Option {
	return func(e *Engine) {
		if types != nil {
			e.types = types
		}
	}
}

// WithShapes uses shapes instead of a fresh listener shape registry.
func WithShapes(shapes *event.Shapes) Option {
	return func(e *Engine) {
		if shapes != nil {
			e.shapes = shapes
		}
	}
}

// Engine dispatches calls from the value side onto native objects.
type Engine struct {
	ctx     context.Context
	app     hostbridge.ApplicationContext
	mapper  *namespace.Mapper
	types   *native.Registry
	handles *handle.Registry
	marshal *marshal.Marshaller
	shapes  *event.Shapes
	events  *event.Set
	sem     *semaphore.Weighted
	cancel  context.CancelFunc
	handler any
	wg      sync.WaitGroup
	workers int64
	mu      sync.Mutex
	closed  bool
}

// New creates an engine. app may be nil when no application context is
// available.
func New(app hostbridge.ApplicationContext, opts ...Option) *Engine {
	e := &Engine{
		app:     app,
		mapper:  namespace.NewMapper(),
		types:   native.NewRegistry(),
		handles: handle.NewRegistry(),
		shapes:  event.NewShapes(),
		events:  event.NewSet(),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.sem = semaphore.NewWeighted(e.workers)
	e.handles.Subscribe(handleLogger{})
	e.marshal = marshal.New(e.mapper, e.types, e.handles, app)
	return e
}

// Mapper returns the namespace mapper.
func (e *Engine) Mapper() *namespace.Mapper { return e.mapper }

// Types returns the native type registry.
func (e *Engine) Types() *native.Registry { return e.types }

// Shapes returns the listener shape registry.
func (e *Engine) Shapes() *event.Shapes { return e.shapes }

// Marshaller returns the engine's marshaller.
func (e *Engine) Marshaller() *marshal.Marshaller { return e.marshal }

// Handles returns the handle tables.
func (e *Engine) Handles() *handle.Registry { return e.handles }

// RegisterMarshalByValue marks a native type, by simple or fully qualified
// name, as copied rather than referenced.
func (e *Engine) RegisterMarshalByValue(name string) {
	e.marshal.RegisterByValue(name)
}

// Listeners returns the number of active event registrations.
func (e *Engine) Listeners() int {
	return e.events.Len()
}

// Close cancels outstanding drains, waits for the workers, detaches every
// event listener and clears the handle tables.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.handler = nil
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()

	err := e.events.Detach(context.Background())
	e.handles.Clear()
	return err
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// staticType resolves a virtual type name to its registered native type.
func (e *Engine) staticType(typ string) (*native.Type, error) {
	if e.isClosed() {
		return nil, closedError()
	}
	if typ == "" {
		return nil, errors.InvalidInput(errors.PhaseResolve, "a type is required")
	}
	name, err := e.mapper.ResolveType(typ)
	if err != nil {
		return nil, err
	}
	return e.types.Lookup(name)
}

// instance resolves an instance descriptor to the native object and its type.
func (e *Engine) instance(v value.Value) (any, *native.Type, error) {
	if e.isClosed() {
		return nil, nil, closedError()
	}
	obj, err := e.marshal.Instance(v)
	if err != nil {
		return nil, nil, err
	}
	return obj, e.types.Ensure(reflect.TypeOf(obj)), nil
}

// invoke calls m and logs failures raised by the native target.
func (e *Engine) invoke(ctx context.Context, m *native.Member, recv reflect.Value, args []reflect.Value) (any, error) {
	out, err := m.Call(ctx, recv, args)
	if err != nil && errors.IsInvocation(err) {
		Logger().Error("native invocation failed",
			zap.String("type", m.Owner),
			zap.String("member", m.Name),
			zap.Error(err))
	}
	return out, err
}

// resolved marshals obj into an already completed promise.
func (e *Engine) resolved(obj any) *promise.Promise[value.Value] {
	v, err := e.marshal.ToValue(obj)
	if err != nil {
		return rejected(err)
	}
	return promise.ResolvedWith(v)
}

func rejected(err error) *promise.Promise[value.Value] {
	return promise.RejectedWith[value.Value](err)
}

func done() *promise.Promise[value.Value] {
	return promise.ResolvedWith(value.Undefined)
}

// argCount reports how many positional arguments args carries.
func argCount(args value.Value) (int, error) {
	if args == nil {
		return 0, nil
	}
	switch args.Kind() {
	case value.KindUndefined, value.KindNull:
		return 0, nil
	case value.KindArray:
		return args.Len(), nil
	}
	return 0, errors.TypeMismatch([]string{"args"}, args.Kind().String(), "array")
}

type handleLogger struct{}

func (handleLogger) OnHandleEvent(ev handle.Event) {
	Logger().Debug("handle "+ev.Type.String(),
		zap.String("type", ev.TypeName),
		zap.Uint64("handle", uint64(ev.Handle)))
}
