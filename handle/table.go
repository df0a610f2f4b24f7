package handle

import (
	"reflect"
	"sync"
)

type entry struct {
	value any
	key   any
	gen   uint32
	valid bool
}

type pointerKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// Table maps objects of one native type to handles and back.
type Table struct {
	typeName  string
	entries   []entry
	freeList  []uint32
	index     map[any]Handle
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
}

// NewTable creates an empty table for the named type.
func NewTable(typeName string) *Table {
	return &Table{
		typeName: typeName,
		entries:  make([]entry, 0, 16),
		index:    make(map[any]Handle),
	}
}

// TypeName returns the native type name the table holds.
func (t *Table) TypeName() string {
	return t.typeName
}

// Acquire returns the handle of obj, allocating one if obj has none.
// created reports whether a new handle was allocated.
func (t *Table) Acquire(obj any) (h Handle, created bool) {
	key := identity(obj)

	t.mu.Lock()
	if key != nil {
		if h, ok := t.index[key]; ok {
			t.mu.Unlock()
			return h, false
		}
	}

	e := entry{value: obj, key: key, valid: true}
	var slot uint32
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		e.gen = t.entries[slot].gen
		t.entries[slot] = e
	} else {
		slot = uint32(len(t.entries))
		t.entries = append(t.entries, e)
	}
	h = makeHandle(slot, e.gen)
	if key != nil {
		t.index[key] = h
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, TypeName: t.typeName, Handle: h, Value: obj})
	return h, true
}

// HandleOf returns the live handle of obj without allocating.
func (t *Table) HandleOf(obj any) (Handle, bool) {
	key := identity(obj)
	if key == nil {
		return 0, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.index[key]
	return h, ok
}

// Lookup returns the object for h.
func (t *Table) Lookup(h Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.get(h)
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (t *Table) get(h Handle) (*entry, bool) {
	slot, ok := h.slot()
	if !ok || int(slot) >= len(t.entries) {
		return nil, false
	}
	e := &t.entries[slot]
	if !e.valid || e.gen != h.generation() {
		return nil, false
	}
	return e, true
}

// Release removes h and returns the object it referenced.
func (t *Table) Release(h Handle) (any, bool) {
	t.mu.Lock()
	e, ok := t.get(h)
	if !ok {
		t.mu.Unlock()
		return nil, false
	}
	value := e.value
	if e.key != nil {
		delete(t.index, e.key)
	}
	slot, _ := h.slot()
	t.entries[slot] = entry{gen: (e.gen + 1) & genMask}
	t.freeList = append(t.freeList, slot)
	t.mu.Unlock()

	t.notify(Event{Type: EventReleased, TypeName: t.typeName, Handle: h, Value: value})
	return value, true
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) - len(t.freeList)
}

// Each calls fn for every live handle until fn returns false.
// fn must not modify the table.
func (t *Table) Each(fn func(Handle, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.entries {
		e := &t.entries[i]
		if !e.valid {
			continue
		}
		if !fn(makeHandle(uint32(i), e.gen), e.value) {
			return
		}
	}
}

// Clear releases every live handle.
func (t *Table) Clear() {
	var handles []Handle
	t.Each(func(h Handle, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Release(h)
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}

// identity returns the reverse-index key for obj, or nil when obj has no
// usable identity.
func identity(obj any) any {
	if obj == nil {
		return nil
	}
	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return nil
		}
		return pointerKey{typ: rv.Type(), ptr: rv.Pointer()}
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		return pointerKey{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}
	}
	if rv.Comparable() {
		return obj
	}
	return nil
}
