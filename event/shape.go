package event

import (
	"reflect"
	"sync"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/native"
)

// Shapes holds the listener interfaces the bridge can synthesize.
type Shapes struct {
	adapters map[reflect.Type]func(*Emitter) reflect.Value
	mu       sync.RWMutex
}

// NewShapes creates an empty shape registry.
func NewShapes() *Shapes {
	return &Shapes{adapters: make(map[reflect.Type]func(*Emitter) reflect.Value)}
}

// RegisterShape validates the listener interface L and records adapter as
// the way to implement it.
func RegisterShape[L any](s *Shapes, adapter func(*Emitter) L) error {
	lt := reflect.TypeOf((*L)(nil)).Elem()
	if err := ValidateShape(lt); err != nil {
		return err
	}
	if adapter == nil {
		return errors.InvalidInput(errors.PhaseConfig, "listener adapter is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapters[lt] = func(e *Emitter) reflect.Value {
		out := reflect.New(lt).Elem()
		out.Set(reflect.ValueOf(adapter(e)))
		return out
	}
	return nil
}

// ValidateShape checks that lt is an interface with a single method taking
// one event object and returning nothing.
func ValidateShape(lt reflect.Type) error {
	name := native.TypeName(lt)
	if lt.Kind() != reflect.Interface {
		return errors.UnsupportedShape(name, "event listener type must be an interface")
	}
	if lt.NumMethod() != 1 {
		return errors.UnsupportedShape(name, "event listener interfaces with multiple methods are not supported")
	}
	mt := lt.Method(0).Type
	if mt.NumIn() != 1 || !isEventObject(mt.In(0)) || mt.NumOut() != 0 {
		return errors.UnsupportedShape(name,
			"event listener method "+lt.Method(0).Name+" must take a single event object and return nothing")
	}
	return nil
}

func isEventObject(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// Has reports whether lt has a registered adapter.
func (s *Shapes) Has(lt reflect.Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.adapters[lt]
	return ok
}

// Names returns the registered listener interface names.
func (s *Shapes) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.adapters))
	for lt := range s.adapters {
		names = append(names, native.TypeName(lt))
	}
	return names
}

func (s *Shapes) listener(lt reflect.Type, e *Emitter) (reflect.Value, error) {
	if err := ValidateShape(lt); err != nil {
		return reflect.Value{}, err
	}
	s.mu.RLock()
	adapter, ok := s.adapters[lt]
	s.mu.RUnlock()
	if !ok {
		return reflect.Value{}, errors.UnsupportedShape(native.TypeName(lt), "no listener adapter registered")
	}
	return adapter(e), nil
}
