package bridge

import (
	"context"
	"reflect"

	"github.com/wippyai/hostbridge/namespace"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

// GetProperty reads a property through the instance's getter.
func (e *Engine) GetProperty(ctx context.Context, instance value.Value, property string) *promise.Promise[value.Value] {
	if err := requireName("property", property); err != nil {
		return rejected(err)
	}
	obj, t, err := e.instance(instance)
	if err != nil {
		return rejected(err)
	}
	recv := reflect.ValueOf(obj)
	m, err := t.FirstMethod(recv.Type(), getterNames(property), 0)
	if err != nil {
		return rejected(err)
	}
	out, err := e.invoke(ctx, m, recv, nil)
	if err != nil {
		return rejected(err)
	}
	return e.resolved(out)
}

// SetProperty writes a property through the instance's setter.
func (e *Engine) SetProperty(ctx context.Context, instance value.Value, property string, v value.Value) *promise.Promise[value.Value] {
	if err := requireName("property", property); err != nil {
		return rejected(err)
	}
	obj, t, err := e.instance(instance)
	if err != nil {
		return rejected(err)
	}
	recv := reflect.ValueOf(obj)
	m, err := t.Method(recv.Type(), setterName(property), 1)
	if err != nil {
		return rejected(err)
	}
	return e.set(ctx, m, recv, v)
}

// InvokeMethod calls an instance method with positional arguments.
func (e *Engine) InvokeMethod(ctx context.Context, instance value.Value, method string, args value.Value) *promise.Promise[value.Value] {
	if err := requireName("method", method); err != nil {
		return rejected(err)
	}
	obj, t, err := e.instance(instance)
	if err != nil {
		return rejected(err)
	}
	n, err := argCount(args)
	if err != nil {
		return rejected(err)
	}
	recv := reflect.ValueOf(obj)
	m, err := t.Method(recv.Type(), namespace.ResolveMember(method), n)
	if err != nil {
		return rejected(err)
	}
	in, err := e.marshal.FromValues(args, m.Params())
	if err != nil {
		return rejected(err)
	}
	if len(in) > 0 && e.isWindow(in[0]) {
		e.trackResultHandler(obj)
	}
	out, err := e.invoke(ctx, m, recv, in)
	if err != nil {
		return rejected(err)
	}
	return e.settle(m, out)
}
