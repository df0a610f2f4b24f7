package envelope

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/event"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

// Action tags
const (
	GetStaticProperty         = "getStaticProperty"
	SetStaticProperty         = "setStaticProperty"
	InvokeStaticMethod        = "invokeStaticMethod"
	AddStaticEventListener    = "addStaticEventListener"
	RemoveStaticEventListener = "removeStaticEventListener"
	CreateInstance            = "createInstance"
	ReleaseInstance           = "releaseInstance"
	GetProperty               = "getProperty"
	SetProperty               = "setProperty"
	InvokeMethod              = "invokeMethod"
	AddEventListener          = "addEventListener"
	RemoveEventListener       = "removeEventListener"
)

// Actions lists every action tag in dispatch order.
var Actions = []string{
	GetStaticProperty, SetStaticProperty, InvokeStaticMethod,
	AddStaticEventListener, RemoveStaticEventListener,
	CreateInstance, ReleaseInstance,
	GetProperty, SetProperty, InvokeMethod,
	AddEventListener, RemoveEventListener,
}

// Sink receives events for a registration token.
type Sink func(token string, v value.Value)

// Dispatcher routes calls to an engine and tracks listener tokens.
type Dispatcher struct {
	eng    *bridge.Engine
	sink   Sink
	tokens map[string]*event.Callback
	mu     sync.Mutex
}

// New creates a dispatcher. sink may be nil, in which case events are
// dropped.
func New(eng *bridge.Engine, sink Sink) *Dispatcher {
	return &Dispatcher{
		eng:    eng,
		sink:   sink,
		tokens: make(map[string]*event.Callback),
	}
}

// Engine returns the engine calls are routed to.
func (d *Dispatcher) Engine() *bridge.Engine {
	return d.eng
}

// Tokens returns the number of live listener registrations.
func (d *Dispatcher) Tokens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tokens)
}

// Dispatch performs action with args.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, args []value.Value) *promise.Promise[value.Value] {
	Logger().Debug("dispatch", zap.String("action", action), zap.Int("args", len(args)))

	p, err := d.dispatch(ctx, action, arguments(args))
	if err != nil {
		return promise.RejectedWith[value.Value](err)
	}
	return p
}

func (d *Dispatcher) dispatch(ctx context.Context, action string, a arguments) (*promise.Promise[value.Value], error) {
	switch action {
	case GetStaticProperty:
		typ, prop, err := a.pair("type", "property")
		if err != nil {
			return nil, err
		}
		return d.eng.GetStaticProperty(ctx, typ, prop), nil

	case SetStaticProperty:
		typ, prop, err := a.pair("type", "property")
		if err != nil {
			return nil, err
		}
		return d.eng.SetStaticProperty(ctx, typ, prop, a.at(2)), nil

	case InvokeStaticMethod:
		typ, method, err := a.pair("type", "method")
		if err != nil {
			return nil, err
		}
		return d.eng.InvokeStaticMethod(ctx, typ, method, a.at(2)), nil

	case AddStaticEventListener:
		typ, name, err := a.pair("type", "event")
		if err != nil {
			return nil, err
		}
		token, cb := d.newToken()
		return d.register(token, d.eng.AddStaticEventListener(ctx, typ, name, cb)), nil

	case RemoveStaticEventListener:
		typ, name, err := a.pair("type", "event")
		if err != nil {
			return nil, err
		}
		token, err := a.str(2, "token")
		if err != nil {
			return nil, err
		}
		cb := d.lookupToken(token)
		if cb == nil {
			return d.missingToken(token), nil
		}
		return d.unregister(token, cb, d.eng.RemoveStaticEventListener(ctx, typ, name, cb)), nil

	case CreateInstance:
		typ, err := a.str(0, "type")
		if err != nil {
			return nil, err
		}
		return d.eng.CreateInstance(ctx, typ, a.at(1)), nil

	case ReleaseInstance:
		return d.eng.ReleaseInstance(ctx, a.at(0)), nil

	case GetProperty:
		prop, err := a.str(1, "property")
		if err != nil {
			return nil, err
		}
		return d.eng.GetProperty(ctx, a.at(0), prop), nil

	case SetProperty:
		prop, err := a.str(1, "property")
		if err != nil {
			return nil, err
		}
		return d.eng.SetProperty(ctx, a.at(0), prop, a.at(2)), nil

	case InvokeMethod:
		method, err := a.str(1, "method")
		if err != nil {
			return nil, err
		}
		return d.eng.InvokeMethod(ctx, a.at(0), method, a.at(2)), nil

	case AddEventListener:
		name, err := a.str(1, "event")
		if err != nil {
			return nil, err
		}
		token, cb := d.newToken()
		return d.register(token, d.eng.AddEventListener(ctx, a.at(0), name, cb)), nil

	case RemoveEventListener:
		name, err := a.str(1, "event")
		if err != nil {
			return nil, err
		}
		token, err := a.str(2, "token")
		if err != nil {
			return nil, err
		}
		cb := d.lookupToken(token)
		if cb == nil {
			return d.missingToken(token), nil
		}
		return d.unregister(token, cb, d.eng.RemoveEventListener(ctx, a.at(0), name, cb)), nil
	}
	return nil, errors.InvalidAction(action)
}

func (d *Dispatcher) newToken() (string, *event.Callback) {
	token := uuid.NewString()
	cb := event.NewCallback(func(v value.Value) {
		if d.sink != nil {
			d.sink(token, v)
		}
	})
	d.mu.Lock()
	d.tokens[token] = cb
	d.mu.Unlock()
	return token, cb
}

// register resolves to token once the add succeeds and forgets the token
// if it fails.
func (d *Dispatcher) register(token string, added *promise.Promise[value.Value]) *promise.Promise[value.Value] {
	out, err := promise.Then(added,
		func(value.Value) (value.Value, error) { return value.FromString(token), nil },
		func(error) { d.takeToken(token) },
	)
	if err != nil {
		d.takeToken(token)
		return promise.RejectedWith[value.Value](err)
	}
	return out
}

// unregister forgets token once cb is no longer attached anywhere. A
// removal aimed at the wrong source leaves the token usable.
func (d *Dispatcher) unregister(token string, cb *event.Callback, removed *promise.Promise[value.Value]) *promise.Promise[value.Value] {
	settle := func() {
		if !d.eng.Listening(cb) {
			d.takeToken(token)
		}
	}
	out, err := promise.Then(removed,
		func(v value.Value) (value.Value, error) {
			settle()
			return v, nil
		},
		func(error) { settle() },
	)
	if err != nil {
		settle()
		return promise.RejectedWith[value.Value](err)
	}
	return out
}

func (d *Dispatcher) lookupToken(token string) *event.Callback {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tokens[token]
}

func (d *Dispatcher) takeToken(token string) *event.Callback {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb := d.tokens[token]
	delete(d.tokens, token)
	return cb
}

func (d *Dispatcher) missingToken(token string) *promise.Promise[value.Value] {
	Logger().Warn("event registration not found", zap.String("token", token))
	return promise.ResolvedWith(value.Undefined)
}

// arguments gives positional access to call arguments.
type arguments []value.Value

func (a arguments) at(i int) value.Value {
	if i < 0 || i >= len(a) || a[i] == nil {
		return value.Undefined
	}
	return a[i]
}

func (a arguments) str(i int, what string) (string, error) {
	s, err := a.at(i).Str()
	if err != nil || s == "" {
		return "", errors.New(errors.PhaseEnvelope, errors.KindInvalidInput).
			Path(fmt.Sprintf("args[%d]", i)).
			Detail("a %s is required", what).
			Build()
	}
	return s, nil
}

func (a arguments) pair(first, second string) (string, string, error) {
	x, err := a.str(0, first)
	if err != nil {
		return "", "", err
	}
	y, err := a.str(1, second)
	if err != nil {
		return "", "", err
	}
	return x, y, nil
}
