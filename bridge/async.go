package bridge

import (
	"context"
	stderrors "errors"
	"reflect"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

// settle converts a native result into the promise handed to the caller.
func (e *Engine) settle(m *native.Member, out any) *promise.Promise[value.Value] {
	switch r := out.(type) {
	case promise.AnyPromise:
		return e.chain(m, r)
	case promise.Future:
		return e.drain(m, r.Await)
	}
	if rv := reflect.ValueOf(out); rv.Kind() == reflect.Chan && rv.Type().ChanDir()&reflect.RecvDir != 0 {
		if rv.IsNil() {
			return rejected(errors.InvalidInput(errors.PhaseAsync, "nil channel result"))
		}
		return e.drain(m, func(ctx context.Context) (any, error) {
			return receive(ctx, rv)
		})
	}
	return e.resolved(out)
}

// chain forwards the outcome of a native promise.
func (e *Engine) chain(m *native.Member, src promise.AnyPromise) *promise.Promise[value.Value] {
	p := promise.New[value.Value]()
	p.OnCancel(func() { src.Cancel() })
	err := src.OnCompleteAny(func(v any, err error) {
		switch {
		case err == nil:
			e.complete(p, v)
		case stderrors.Is(err, errors.ErrCancelled):
			p.Cancel()
		default:
			_ = p.Reject(errors.Invocation(m.Owner, m.Name, err))
		}
	})
	if err != nil {
		return rejected(err)
	}
	return p
}

// drain waits for wait on a worker goroutine. Cancelling the returned
// promise or closing the engine cancels the context passed to wait and
// rejects the promise at once; a wait that ignores its context keeps
// running detached from the engine.
func (e *Engine) drain(m *native.Member, wait func(context.Context) (any, error)) *promise.Promise[value.Value] {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return rejected(closedError())
	}
	e.wg.Add(1)
	e.mu.Unlock()

	p := promise.New[value.Value]()
	ctx, cancel := context.WithCancel(e.ctx)
	p.OnCancel(cancel)

	go func() {
		defer e.wg.Done()
		defer cancel()

		if err := e.sem.Acquire(ctx, 1); err != nil {
			_ = p.Reject(e.asyncError(m, err))
			return
		}
		defer e.sem.Release(1)

		done := make(chan outcome, 1)
		go func() {
			v, err := wait(ctx)
			done <- outcome{v, err}
		}()

		select {
		case r := <-done:
			if r.err != nil {
				_ = p.Reject(e.asyncError(m, r.err))
				return
			}
			e.complete(p, r.v)
		case <-ctx.Done():
			_ = p.Reject(e.asyncError(m, ctx.Err()))
		}
	}()
	return p
}

type outcome struct {
	v   any
	err error
}

func (e *Engine) complete(p *promise.Promise[value.Value], v any) {
	out, err := e.marshal.ToValue(v)
	if err != nil {
		_ = p.Reject(err)
		return
	}
	_ = p.Resolve(out)
}

func (e *Engine) asyncError(m *native.Member, err error) error {
	if e.ctx.Err() != nil {
		return closedError()
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.Wrap(errors.PhaseAsync, errors.KindCancelled, err, "result cancelled")
	}
	return errors.Invocation(m.Owner, m.Name, err)
}

func closedError() error {
	return errors.New(errors.PhaseAsync, errors.KindCancelled).
		Detail("engine closed").
		Build()
}

// receive takes one value from a channel. A closed channel yields nil and
// an error value is reported as failure.
func receive(ctx context.Context, ch reflect.Value) (any, error) {
	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		{Dir: reflect.SelectRecv, Chan: ch},
	}
	chosen, v, ok := reflect.Select(cases)
	if chosen == 0 {
		return nil, ctx.Err()
	}
	if !ok {
		return nil, nil
	}
	out := v.Interface()
	if err, isErr := out.(error); isErr && err != nil {
		return nil, err
	}
	return out, nil
}
