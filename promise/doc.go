// Package promise provides a one-shot, chainable pending result.
//
// A Promise starts Pending and moves exactly once to Resolved, Rejected or
// Cancelled. Resolving or rejecting a completed promise returns
// errors.ErrAlreadyCompleted; after Cancel, later completions are ignored.
//
// At most one continuation may be attached, via Then, OnComplete or Catch.
// A second attachment returns errors.ErrAlreadyChained. The continuation runs
// once, on the goroutine that completes the promise, or immediately when
// attached to a completed promise:
//
//	next, err := promise.Then(p, func(v int) (string, error) {
//		return strconv.Itoa(v), nil
//	}, nil)
//
// Errors reach the error handler when one is given, and otherwise reject the
// chained promise. Cancellation reaches the error handler as
// errors.ErrCancelled, and otherwise cancels the chained promise.
package promise
