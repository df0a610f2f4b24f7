package testbed

import (
	"sync"

	"github.com/wippyai/hostbridge/event"
)

// TestEvent carries a running counter. Source is not copied across.
type TestEvent struct {
	source  any
	counter int
}

func (e *TestEvent) GetSource() any  { return e.source }
func (e *TestEvent) GetCounter() int { return e.counter }

type TestEventListener interface {
	TestEventOccurred(*TestEvent)
}

type testEventAdapter struct{ *event.Emitter }

func (a *testEventAdapter) TestEventOccurred(e *TestEvent) { a.Emit(e) }

type listenerSet struct {
	listeners map[TestEventListener]struct{}
	counter   int
	mu        sync.Mutex
}

func (s *listenerSet) add(l TestEventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[TestEventListener]struct{})
	}
	s.listeners[l] = struct{}{}
}

func (s *listenerSet) remove(l TestEventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, l)
}

func (s *listenerSet) raise(source any) {
	s.mu.Lock()
	s.counter++
	e := &TestEvent{source: source, counter: s.counter}
	ls := make([]TestEventListener, 0, len(s.listeners))
	for l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l.TestEventOccurred(e)
	}
}

var staticEvents listenerSet

func AddStaticEventListener(l TestEventListener)    { staticEvents.add(l) }
func RemoveStaticEventListener(l TestEventListener) { staticEvents.remove(l) }
func RaiseStaticEvent()                             { staticEvents.raise("TestEvents") }

// TestEvents raises InstanceEvent on demand.
type TestEvents struct {
	events listenerSet
}

func NewTestEvents() *TestEvents { return &TestEvents{} }

func (e *TestEvents) AddInstanceEventListener(l TestEventListener)    { e.events.add(l) }
func (e *TestEvents) RemoveInstanceEventListener(l TestEventListener) { e.events.remove(l) }
func (e *TestEvents) RaiseInstanceEvent()                             { e.events.raise(e) }
