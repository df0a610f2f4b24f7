package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/event"
	"github.com/wippyai/hostbridge/namespace"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

// AddStaticEventListener subscribes cb to a static event of typ.
func (e *Engine) AddStaticEventListener(ctx context.Context, typ, name string, cb *event.Callback) *promise.Promise[value.Value] {
	if err := requireName("event", name); err != nil {
		return rejected(err)
	}
	t, err := e.staticType(typ)
	if err != nil {
		return rejected(err)
	}
	return e.addListener(ctx, t, nil, name, cb)
}

// RemoveStaticEventListener unsubscribes cb from a static event of typ.
func (e *Engine) RemoveStaticEventListener(ctx context.Context, typ, name string, cb *event.Callback) *promise.Promise[value.Value] {
	if err := requireName("event", name); err != nil {
		return rejected(err)
	}
	t, err := e.staticType(typ)
	if err != nil {
		return rejected(err)
	}
	return e.removeListener(ctx, t, t, name, cb)
}

// AddEventListener subscribes cb to an event of the instance.
func (e *Engine) AddEventListener(ctx context.Context, instance value.Value, name string, cb *event.Callback) *promise.Promise[value.Value] {
	if err := requireName("event", name); err != nil {
		return rejected(err)
	}
	obj, t, err := e.instance(instance)
	if err != nil {
		return rejected(err)
	}
	return e.addListener(ctx, t, obj, name, cb)
}

// RemoveEventListener unsubscribes cb from an event of the instance.
func (e *Engine) RemoveEventListener(ctx context.Context, instance value.Value, name string, cb *event.Callback) *promise.Promise[value.Value] {
	if err := requireName("event", name); err != nil {
		return rejected(err)
	}
	obj, t, err := e.instance(instance)
	if err != nil {
		return rejected(err)
	}
	return e.removeListener(ctx, t, obj, name, cb)
}

// Listening reports whether cb is still attached to any event source.
func (e *Engine) Listening(cb *event.Callback) bool {
	return cb != nil && e.events.Holds(cb)
}

func (e *Engine) addListener(ctx context.Context, t *native.Type, source any, name string, cb *event.Callback) *promise.Promise[value.Value] {
	if cb == nil {
		return rejected(errors.InvalidInput(errors.PhaseResolve, "an event listener is required"))
	}
	name = namespace.ResolveMember(name)
	key := source
	if key == nil {
		key = t
	}
	if e.events.Find(key, name, cb) != nil {
		return done()
	}

	reg, err := event.Bind(e.shapes, e.marshal, t, source, name, cb)
	if err != nil {
		return rejected(err)
	}
	if err := reg.Add(ctx); err != nil {
		e.logInvocation(t, "Add"+name+"Listener", err)
		return rejected(err)
	}
	if _, added := e.events.Insert(reg); !added {
		// lost a race with an identical registration
		_ = reg.Remove(ctx)
	}
	return done()
}

func (e *Engine) removeListener(ctx context.Context, t *native.Type, source any, name string, cb *event.Callback) *promise.Promise[value.Value] {
	if cb == nil {
		return rejected(errors.InvalidInput(errors.PhaseResolve, "an event listener is required"))
	}
	name = namespace.ResolveMember(name)
	reg := e.events.Take(source, name, cb)
	if reg == nil {
		Logger().Warn("event listener not found to remove",
			zap.String("type", t.Name),
			zap.String("event", name))
		return done()
	}
	if err := reg.Remove(ctx); err != nil {
		e.logInvocation(t, "Remove"+name+"Listener", err)
		return rejected(err)
	}
	return done()
}

func (e *Engine) logInvocation(t *native.Type, member string, err error) {
	if errors.IsInvocation(err) {
		Logger().Error("native invocation failed",
			zap.String("type", t.Name),
			zap.String("member", member),
			zap.Error(err))
	}
}
