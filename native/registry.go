package native

import (
	"reflect"
	"sort"
	"sync"

	"github.com/wippyai/hostbridge/errors"
)

// TypeName returns the fully qualified name "<import path>.<Name>" of t.
// Unnamed pointer types are named after their element; other unnamed types
// use their Go syntax.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// NameOf returns the fully qualified type name of v's dynamic type.
func NameOf(v any) string {
	if v == nil {
		return ""
	}
	return TypeName(reflect.TypeOf(v))
}

// Option configures a registered type.
type Option func(*Type) error

// Constructor adds fn as a constructor. fn must return the type (or a
// pointer to it), optionally followed by an error.
func Constructor(fn any) Option {
	return func(t *Type) error {
		m, err := newMember(t.Name, "New", KindConstructor, reflect.ValueOf(fn))
		if err != nil {
			return err
		}
		if len(m.results) != 1 {
			return errors.New(errors.PhaseConfig, errors.KindTypeMismatch).
				GoType(t.Name).
				Detail("constructor must return exactly one value and an optional error").
				Build()
		}
		if r := m.results[0]; r != t.Elem && r != reflect.PointerTo(t.Elem) {
			return errors.New(errors.PhaseConfig, errors.KindTypeMismatch).
				GoType(t.Name).
				Detail("constructor returns %s", r).
				Build()
		}
		t.constructors = append(t.constructors, m)
		return nil
	}
}

// Static adds fn as a static member called name. Static properties follow
// the same naming as methods: GetX/IsX and SetX.
func Static(name string, fn any) Option {
	return func(t *Type) error {
		m, err := newMember(t.Name, name, KindStatic, reflect.ValueOf(fn))
		if err != nil {
			return err
		}
		t.statics = append(t.statics, m)
		return nil
	}
}

// Registry maps fully qualified type names to registered types.
type Registry struct {
	types map[string]*Type
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds T to r and applies opts. Registering T again appends the
// new constructors and statics to the existing entry.
func Register[T any](r *Registry, opts ...Option) (*Type, error) {
	elem := reflect.TypeOf((*T)(nil)).Elem()
	return r.RegisterType(elem, opts...)
}

// RegisterType is the non-generic form of Register.
func (r *Registry) RegisterType(elem reflect.Type, opts ...Option) (*Type, error) {
	t := r.Ensure(elem)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	t.registered = true
	return t, nil
}

// Ensure returns the entry for elem, adding a bare one if needed.
// Pointer types resolve to their element type.
func (r *Registry) Ensure(elem reflect.Type) *Type {
	for elem.Kind() == reflect.Pointer && elem.Name() == "" {
		elem = elem.Elem()
	}
	name := TypeName(elem)

	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.types[name]; ok {
		return t
	}
	t = newType(name, elem)
	r.types[name] = t
	return t
}

// Lookup returns the type registered under the fully qualified name.
func (r *Registry) Lookup(name string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, errors.TypeNotFound(name)
	}
	return t, nil
}

// Names returns the names of explicitly registered types, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name, t := range r.types {
		if t.Registered() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
