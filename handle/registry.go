package handle

import "sync"

// Registry holds one Table per native type name.
type Registry struct {
	tables    map[string]*Table
	observers []Observer
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Table returns the table for typeName, creating it on first use.
func (r *Registry) Table(typeName string) *Table {
	r.mu.RLock()
	t, ok := r.tables[typeName]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[typeName]; ok {
		return t
	}
	t = NewTable(typeName)
	for _, o := range r.observers {
		t.Subscribe(o)
	}
	r.tables[typeName] = t
	return t
}

// Lookup returns the table for typeName if one exists.
func (r *Registry) Lookup(typeName string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[typeName]
	return t, ok
}

// Subscribe adds o to every current and future table.
func (r *Registry) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
	for _, t := range r.tables {
		t.Subscribe(o)
	}
}

// Len returns the number of live handles across all tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.tables {
		n += t.Len()
	}
	return n
}

// Clear releases every handle in every table.
func (r *Registry) Clear() {
	r.mu.RLock()
	tables := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.RUnlock()
	for _, t := range tables {
		t.Clear()
	}
}
