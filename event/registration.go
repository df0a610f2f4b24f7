package event

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/value"
)

// Callback receives marshalled events. Registrations match callbacks by
// pointer identity.
type Callback struct {
	fn func(value.Value)
}

// NewCallback wraps fn.
func NewCallback(fn func(value.Value)) *Callback {
	return &Callback{fn: fn}
}

// Deliver passes v to the callback function.
func (c *Callback) Deliver(v value.Value) {
	if c.fn != nil {
		c.fn(v)
	}
}

// ToValuer converts an event object for delivery.
type ToValuer interface {
	ToValue(obj any) (value.Value, error)
}

// Emitter forwards event objects raised through a listener adapter.
type Emitter struct {
	reg *Registration
}

// Emit marshals event and delivers it to the registration's callback.
// Marshalling failures are logged and the event is dropped.
func (e *Emitter) Emit(event any) {
	r := e.reg
	v, err := r.marshal.ToValue(event)
	if err != nil {
		Logger().Warn("failed to marshal event",
			zap.String("type", r.typeName),
			zap.String("event", r.Event),
			zap.Error(err))
		return
	}
	r.Callback.Deliver(v)
}

// Registration binds one (source, event, callback) triple to a listener.
type Registration struct {
	Source   any
	Callback *Callback
	Event    string
	typeName string
	marshal  ToValuer
	listener reflect.Value
	recv     reflect.Value
	add      *native.Member
	remove   *native.Member
}

// Bind resolves AddXListener/RemoveXListener for event on source and builds
// the listener. For static events source is nil and the members are looked
// up among typ's statics.
func Bind(shapes *Shapes, m ToValuer, typ *native.Type, source any, event string, cb *Callback) (*Registration, error) {
	if cb == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "an event callback is required")
	}
	addName := "Add" + event + "Listener"
	removeName := "Remove" + event + "Listener"

	r := &Registration{
		Callback: cb,
		Event:    event,
		typeName: typ.Name,
		marshal:  m,
	}

	var err error
	if source == nil {
		r.Source = typ
		if r.add, err = typ.Static(addName, 1); err != nil {
			return nil, err
		}
		if r.remove, err = typ.Static(removeName, 1); err != nil {
			return nil, err
		}
	} else {
		r.Source = source
		r.recv = reflect.ValueOf(source)
		if r.add, err = typ.Method(r.recv.Type(), addName, 1); err != nil {
			return nil, err
		}
		if r.remove, err = typ.Method(r.recv.Type(), removeName, 1); err != nil {
			return nil, err
		}
	}

	lt := r.add.Params()[0]
	if r.remove.Params()[0] != lt {
		return nil, errors.UnsupportedShape(typ.Name,
			addName+" and "+removeName+" take different listener types")
	}
	if r.listener, err = shapes.listener(lt, &Emitter{reg: r}); err != nil {
		return nil, err
	}
	return r, nil
}

// Listener returns the synthesized listener.
func (r *Registration) Listener() any {
	return r.listener.Interface()
}

// Add passes the listener to the source's add method.
func (r *Registration) Add(ctx context.Context) error {
	_, err := r.add.Call(ctx, r.recv, []reflect.Value{r.listener})
	return err
}

// Remove passes the listener to the source's remove method.
func (r *Registration) Remove(ctx context.Context) error {
	_, err := r.remove.Call(ctx, r.recv, []reflect.Value{r.listener})
	return err
}

// Matches compares by source equality, event name and callback identity.
func (r *Registration) Matches(source any, event string, cb *Callback) bool {
	return r.Event == event && r.Callback == cb && sameSource(r.Source, source)
}

func sameSource(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	}
	return false
}
