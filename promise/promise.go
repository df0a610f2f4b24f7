package promise

import (
	"context"
	"sync"

	"github.com/wippyai/hostbridge/errors"
)

// ErrPending is returned by Result while the promise is pending.
var ErrPending = &errors.Error{Phase: errors.PhaseAsync, Kind: errors.KindPending, Detail: "promise is still pending"}

// State is the completion state of a promise.
type State uint8

const (
	Pending State = iota
	Resolved
	Rejected
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Future is a blocking result source, drained by waiting on Await.
type Future interface {
	Await(ctx context.Context) (any, error)
}

// AnyPromise is the type-erased view of a Promise, used where results of
// arbitrary element types are normalized.
type AnyPromise interface {
	State() State
	Done() <-chan struct{}
	Cancel() bool
	// OnCompleteAny attaches the single continuation.
	OnCompleteAny(fn func(any, error)) error
}

// Promise is a one-shot result with a single optional continuation.
type Promise[T any] struct {
	value    T
	err      error
	done     chan struct{}
	next     func()
	onCancel []func()
	state    State
	chained  bool
	mu       sync.Mutex
}

// New creates a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// ResolvedWith creates a promise already resolved with v.
func ResolvedWith[T any](v T) *Promise[T] {
	p := New[T]()
	p.value = v
	p.state = Resolved
	close(p.done)
	return p
}

// RejectedWith creates a promise already rejected with err.
func RejectedWith[T any](err error) *Promise[T] {
	p := New[T]()
	p.err = err
	p.state = Rejected
	close(p.done)
	return p
}

// Resolve completes the promise with v.
func (p *Promise[T]) Resolve(v T) error {
	return p.complete(Resolved, v, nil)
}

// Reject completes the promise with err, which must be non-nil.
func (p *Promise[T]) Reject(err error) error {
	if err == nil {
		return errors.InvalidInput(errors.PhaseAsync, "an error is required when rejecting a promise")
	}
	var zero T
	return p.complete(Rejected, zero, err)
}

func (p *Promise[T]) complete(state State, v T, err error) error {
	p.mu.Lock()
	switch p.state {
	case Cancelled:
		p.mu.Unlock()
		return nil
	case Resolved, Rejected:
		p.mu.Unlock()
		return errors.New(errors.PhaseState, errors.KindAlreadyCompleted).
			Detail("cannot %s a promise that is already %s", verb(state), p.state).
			Build()
	}
	p.value, p.err, p.state = v, err, state
	close(p.done)
	next := p.takeNext()
	p.mu.Unlock()

	if next != nil {
		next()
	}
	return nil
}

func verb(s State) string {
	if s == Rejected {
		return "reject"
	}
	return "resolve"
}

// Cancel moves a pending promise to Cancelled. It reports false when the
// promise had already completed. The work producing the result is not
// interrupted; its eventual completion is ignored.
func (p *Promise[T]) Cancel() bool {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return false
	}
	p.state = Cancelled
	close(p.done)
	hooks := p.onCancel
	p.onCancel = nil
	next := p.takeNext()
	p.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	if next != nil {
		next()
	}
	return true
}

// OnCancel registers fn to run when the promise is cancelled. It does not
// count as a continuation. fn runs immediately if the promise is already
// cancelled and never runs if it completed otherwise.
func (p *Promise[T]) OnCancel(fn func()) {
	p.mu.Lock()
	switch p.state {
	case Pending:
		p.onCancel = append(p.onCancel, fn)
		p.mu.Unlock()
	case Cancelled:
		p.mu.Unlock()
		fn()
	default:
		p.mu.Unlock()
	}
}

// takeNext detaches the continuation if it is ready to run. Caller holds mu.
func (p *Promise[T]) takeNext() func() {
	if p.state == Pending || p.next == nil {
		return nil
	}
	next := p.next
	p.next = nil
	return next
}

// State returns the current state.
func (p *Promise[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once the promise leaves Pending.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome without blocking. A pending promise reports
// an error matching ErrPending.
func (p *Promise[T]) Result() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var zero T
	switch p.state {
	case Pending:
		return zero, ErrPending
	case Cancelled:
		return zero, errors.ErrCancelled
	}
	return p.value, p.err
}

// Wait blocks until the promise completes or ctx is done.
func (p *Promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// attach installs the single continuation and runs it if already complete.
func (p *Promise[T]) attach(fn func()) error {
	p.mu.Lock()
	if p.chained {
		p.mu.Unlock()
		return errors.New(errors.PhaseState, errors.KindAlreadyChained).
			Detail("another promise is already chained to this one").
			Build()
	}
	p.chained = true
	p.next = fn
	next := p.takeNext()
	p.mu.Unlock()

	if next != nil {
		next()
	}
	return nil
}

// OnComplete attaches fn as the continuation. A cancelled promise reports
// errors.ErrCancelled.
func (p *Promise[T]) OnComplete(fn func(T, error)) error {
	return p.attach(func() {
		fn(p.Result())
	})
}

// OnCompleteAny implements AnyPromise.
func (p *Promise[T]) OnCompleteAny(fn func(any, error)) error {
	return p.OnComplete(func(v T, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(v, nil)
	})
}

// Catch attaches an error handler as the continuation. The returned promise
// resolves with the original value on success and is rejected with the
// handled error otherwise.
func (p *Promise[T]) Catch(onError func(error)) (*Promise[T], error) {
	return Then(p, func(v T) (T, error) { return v, nil }, onError)
}

// Then chains onResult and onError to p and returns the promise of the
// handler's result. Either handler may be nil.
//
// On success the chained promise takes onResult's outcome (the zero value
// when onResult is nil). On rejection or cancellation onError is called if
// present and the chained promise is rejected or cancelled in turn.
func Then[T, U any](p *Promise[T], onResult func(T) (U, error), onError func(error)) (*Promise[U], error) {
	next := New[U]()
	err := p.attach(func() {
		p.mu.Lock()
		state, value, cause := p.state, p.value, p.err
		p.mu.Unlock()

		switch state {
		case Cancelled:
			if onError != nil {
				onError(errors.ErrCancelled)
			}
			next.Cancel()
		case Rejected:
			if onError != nil {
				onError(cause)
			}
			_ = next.Reject(cause)
		case Resolved:
			if onResult == nil {
				var zero U
				_ = next.Resolve(zero)
				return
			}
			out, err := onResult(value)
			if err != nil {
				_ = next.Reject(err)
				return
			}
			_ = next.Resolve(out)
		}
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}
