package native

import (
	"reflect"
	"sync"

	"github.com/wippyai/hostbridge/errors"
)

type methodKey struct {
	recv reflect.Type
	name string
}

// Type is a registered native type.
type Type struct {
	Elem         reflect.Type
	methods      map[methodKey]*Member
	Name         string
	constructors []*Member
	statics      []*Member
	mu           sync.RWMutex
	registered   bool
}

func newType(name string, elem reflect.Type) *Type {
	return &Type{
		Name:    name,
		Elem:    elem,
		methods: make(map[methodKey]*Member),
	}
}

// Registered reports whether the type was added by Register rather than
// discovered through Ensure.
func (t *Type) Registered() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.registered
}

// Constructor returns the first constructor accepting arity arguments.
// A type with no registered constructors has an implicit zero-argument one
// returning a pointer to a new zero value.
func (t *Type) Constructor(arity int) (*Member, error) {
	t.mu.RLock()
	ctors := t.constructors
	t.mu.RUnlock()

	for _, m := range ctors {
		if m.Arity() == arity {
			return m, nil
		}
	}
	if len(ctors) == 0 && arity == 0 {
		return t.implicitConstructor()
	}
	return nil, errors.MemberNotFound(t.Name, "New", arity)
}

func (t *Type) implicitConstructor() (*Member, error) {
	elem := t.Elem
	fn := reflect.MakeFunc(
		reflect.FuncOf(nil, []reflect.Type{reflect.PointerTo(elem)}, false),
		func([]reflect.Value) []reflect.Value {
			return []reflect.Value{reflect.New(elem)}
		},
	)
	return newMember(t.Name, "New", KindConstructor, fn)
}

// Static returns the first static member called name with the given arity.
func (t *Type) Static(name string, arity int) (*Member, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.statics {
		if m.Name == name && m.Arity() == arity {
			return m, nil
		}
	}
	return nil, errors.MemberNotFound(t.Name, name, arity)
}

// HasStatic reports whether any static member is called name.
func (t *Type) HasStatic(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.statics {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Method returns the exported method called name on recv's method set,
// provided it accepts arity arguments.
func (t *Type) Method(recv reflect.Type, name string, arity int) (*Member, error) {
	key := methodKey{recv: recv, name: name}

	t.mu.RLock()
	m, ok := t.methods[key]
	t.mu.RUnlock()

	if !ok {
		method, found := recv.MethodByName(name)
		if !found || !method.IsExported() {
			return nil, errors.MemberNotFound(t.Name, name, arity)
		}
		var err error
		m, err = newMember(t.Name, name, KindMethod, method.Func)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.methods[key] = m
		t.mu.Unlock()
	}

	if m.Arity() != arity {
		return nil, errors.MemberNotFound(t.Name, name, arity)
	}
	return m, nil
}

// FirstMethod returns the first of names that resolves with arity, in order.
func (t *Type) FirstMethod(recv reflect.Type, names []string, arity int) (*Member, error) {
	for _, name := range names {
		if m, err := t.Method(recv, name, arity); err == nil {
			return m, nil
		}
	}
	return nil, errors.MemberNotFound(t.Name, names[0], arity)
}

// FirstStatic returns the first of names that resolves with arity, in order.
func (t *Type) FirstStatic(names []string, arity int) (*Member, error) {
	for _, name := range names {
		if m, err := t.Static(name, arity); err == nil {
			return m, nil
		}
	}
	return nil, errors.MemberNotFound(t.Name, names[0], arity)
}
