// Package event connects native listener interfaces to callbacks on the
// calling side.
//
// A source (an object, or a type for static events) exposes an event X as
// the method pair AddXListener(L) and RemoveXListener(L), where L is an
// interface with exactly one method taking one event object (a struct or a
// pointer to one). Go cannot implement L at run time, so each listener
// interface is registered once with an adapter that wraps an Emitter:
//
//	type ClickListener interface{ OnClick(*ClickEvent) }
//
//	type clickAdapter struct{ *event.Emitter }
//
//	func (a clickAdapter) OnClick(e *ClickEvent) { a.Emit(e) }
//
//	event.RegisterShape(shapes, func(e *event.Emitter) ClickListener {
//		return &clickAdapter{e}
//	})
//
// Bind validates the shape and builds one listener per (source, event,
// callback) Registration. Adapters should return pointers so the listener
// compares by identity; the same listener instance is passed to both the add
// and the remove method, so native listener sets keyed by equality work.
package event
