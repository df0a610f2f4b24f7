package bridge

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/native"
)

// trackResultHandler makes obj the current result handler when it
// implements hostbridge.ResultHandler, and asks the application context to
// intercept results.
func (e *Engine) trackResultHandler(obj any) {
	if _, ok := obj.(hostbridge.ResultHandler); !ok {
		return
	}
	e.mu.Lock()
	e.handler = obj
	e.mu.Unlock()

	Logger().Debug("result handler registered", zap.String("type", native.NameOf(obj)))
	if e.app != nil {
		e.app.InterceptResults()
	}
}

func (e *Engine) clearResultHandler(obj any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if same(e.handler, obj) {
		e.handler = nil
	}
}

// ResultHandler returns the current result handler, or nil.
func (e *Engine) ResultHandler() hostbridge.ResultHandler {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, _ := e.handler.(hostbridge.ResultHandler)
	return h
}

// DeliverResult forwards an intercepted window result to the current
// handler. It reports false when no handler is registered.
func (e *Engine) DeliverResult(requestCode, resultCode int, data any) bool {
	h := e.ResultHandler()
	if h == nil {
		Logger().Debug("no result handler registered",
			zap.Int("request_code", requestCode),
			zap.Int("result_code", resultCode))
		return false
	}
	h.OnResult(requestCode, resultCode, data)
	return true
}

func (e *Engine) isWindow(arg reflect.Value) bool {
	if e.app == nil || !arg.IsValid() {
		return false
	}
	w := e.app.CurrentWindow()
	return w != nil && same(arg.Interface(), w)
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
