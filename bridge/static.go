package bridge

import (
	"context"
	"reflect"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/namespace"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

func getterNames(property string) []string {
	p := namespace.ResolveMember(property)
	return []string{"Get" + p, "Is" + p}
}

func setterName(property string) string {
	return "Set" + namespace.ResolveMember(property)
}

func requireName(what, name string) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseResolve, "a "+what+" is required")
	}
	return nil
}

// GetStaticProperty reads a property through the type's static getter.
func (e *Engine) GetStaticProperty(ctx context.Context, typ, property string) *promise.Promise[value.Value] {
	if err := requireName("property", property); err != nil {
		return rejected(err)
	}
	t, err := e.staticType(typ)
	if err != nil {
		return rejected(err)
	}
	m, err := t.FirstStatic(getterNames(property), 0)
	if err != nil {
		return rejected(err)
	}
	out, err := e.invoke(ctx, m, reflect.Value{}, nil)
	if err != nil {
		return rejected(err)
	}
	return e.resolved(out)
}

// SetStaticProperty writes a property through the type's static setter.
func (e *Engine) SetStaticProperty(ctx context.Context, typ, property string, v value.Value) *promise.Promise[value.Value] {
	if err := requireName("property", property); err != nil {
		return rejected(err)
	}
	t, err := e.staticType(typ)
	if err != nil {
		return rejected(err)
	}
	m, err := t.Static(setterName(property), 1)
	if err != nil {
		return rejected(err)
	}
	return e.set(ctx, m, reflect.Value{}, v)
}

func (e *Engine) set(ctx context.Context, m *native.Member, recv reflect.Value, v value.Value) *promise.Promise[value.Value] {
	arg, err := e.marshal.FromValue(v, m.Params()[0])
	if err != nil {
		return rejected(err)
	}
	if _, err := e.invoke(ctx, m, recv, []reflect.Value{arg}); err != nil {
		return rejected(err)
	}
	return done()
}

// InvokeStaticMethod calls a static function with positional arguments.
func (e *Engine) InvokeStaticMethod(ctx context.Context, typ, method string, args value.Value) *promise.Promise[value.Value] {
	if err := requireName("method", method); err != nil {
		return rejected(err)
	}
	t, err := e.staticType(typ)
	if err != nil {
		return rejected(err)
	}
	n, err := argCount(args)
	if err != nil {
		return rejected(err)
	}
	m, err := t.Static(namespace.ResolveMember(method), n)
	if err != nil {
		return rejected(err)
	}
	return e.call(ctx, m, reflect.Value{}, args)
}

func (e *Engine) call(ctx context.Context, m *native.Member, recv reflect.Value, args value.Value) *promise.Promise[value.Value] {
	in, err := e.marshal.FromValues(args, m.Params())
	if err != nil {
		return rejected(err)
	}
	out, err := e.invoke(ctx, m, recv, in)
	if err != nil {
		return rejected(err)
	}
	return e.settle(m, out)
}

// CreateInstance calls the constructor whose arity matches args and returns
// the new object's descriptor.
func (e *Engine) CreateInstance(ctx context.Context, typ string, args value.Value) *promise.Promise[value.Value] {
	t, err := e.staticType(typ)
	if err != nil {
		return rejected(err)
	}
	n, err := argCount(args)
	if err != nil {
		return rejected(err)
	}
	ctor, err := t.Constructor(n)
	if err != nil {
		return rejected(err)
	}
	in, err := e.marshal.FromValues(args, ctor.Params())
	if err != nil {
		return rejected(err)
	}
	obj, err := e.invoke(ctx, ctor, reflect.Value{}, in)
	if err != nil {
		return rejected(err)
	}
	e.trackResultHandler(obj)
	return e.resolved(obj)
}

// ReleaseInstance drops the handle an instance descriptor refers to.
// Releasing an unknown handle succeeds.
func (e *Engine) ReleaseInstance(_ context.Context, instance value.Value) *promise.Promise[value.Value] {
	obj, ok, err := e.marshal.Release(instance)
	if err != nil {
		return rejected(err)
	}
	if ok {
		e.clearResultHandler(obj)
	}
	return done()
}
