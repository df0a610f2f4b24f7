package value

// Object is an ordered string-keyed map of values.
type Object struct {
	fields map[string]Value
	keys   []string
	frozen bool
}

// NewObject returns an empty mutable object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// ObjectOf builds a mutable object from alternating key/value pairs.
func ObjectOf(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		v, ok := kv[i+1].(Value)
		if !ok {
			v = Wrap(kv[i+1])
		}
		_ = o.Put(k, v)
	}
	return o
}

func (o *Object) Kind() Kind          { return KindObject }
func (o *Object) IsImmutable() bool   { return o.frozen }
func (o *Object) Len() int            { return len(o.keys) }
func (o *Object) Index(int) Value     { return Undefined }
func (o *Object) Bool() (bool, error) { return false, wrongKind(KindObject, "boolean") }

func (o *Object) Number() (float64, error) { return 0, wrongKind(KindObject, "number") }
func (o *Object) Int() (int, error)        { return 0, wrongKind(KindObject, "number") }
func (o *Object) Int64() (int64, error)    { return 0, wrongKind(KindObject, "number") }
func (o *Object) Str() (string, error)     { return "", wrongKind(KindObject, "string") }

// Freeze makes the object immutable and returns it.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

func (o *Object) Keys() ([]string, error) {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys, nil
}

func (o *Object) Field(key string) Value {
	if v, ok := o.fields[key]; ok {
		return v
	}
	return Undefined
}

func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

func (o *Object) Put(key string, v Value) error {
	if o.frozen {
		return immutable(KindObject)
	}
	if v == nil {
		v = Null
	}
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
	return nil
}

func (o *Object) Remove(key string) error {
	if o.frozen {
		return immutable(KindObject)
	}
	if _, ok := o.fields[key]; !ok {
		return nil
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return nil
}

func (o *Object) Append(Value) error   { return wrongKind(KindObject, "array") }
func (o *Object) Set(int, Value) error { return wrongKind(KindObject, "array") }

// Array is an ordered list of values.
type Array struct {
	items  []Value
	frozen bool
}

// NewArray returns an empty mutable array.
func NewArray() *Array {
	return &Array{}
}

// ArrayOf builds a mutable array holding vs.
func ArrayOf(vs ...Value) *Array {
	a := &Array{items: make([]Value, 0, len(vs))}
	for _, v := range vs {
		_ = a.Append(v)
	}
	return a
}

func (a *Array) Kind() Kind          { return KindArray }
func (a *Array) IsImmutable() bool   { return a.frozen }
func (a *Array) Len() int            { return len(a.items) }
func (a *Array) Bool() (bool, error) { return false, wrongKind(KindArray, "boolean") }

func (a *Array) Number() (float64, error) { return 0, wrongKind(KindArray, "number") }
func (a *Array) Int() (int, error)        { return 0, wrongKind(KindArray, "number") }
func (a *Array) Int64() (int64, error)    { return 0, wrongKind(KindArray, "number") }
func (a *Array) Str() (string, error)     { return "", wrongKind(KindArray, "string") }
func (a *Array) Keys() ([]string, error)  { return nil, wrongKind(KindArray, "object") }
func (a *Array) Field(string) Value       { return Undefined }
func (a *Array) Has(string) bool          { return false }

func (a *Array) Put(string, Value) error { return wrongKind(KindArray, "object") }
func (a *Array) Remove(string) error     { return wrongKind(KindArray, "object") }

// Freeze makes the array immutable and returns it.
func (a *Array) Freeze() *Array {
	a.frozen = true
	return a
}

func (a *Array) Index(i int) Value {
	if i < 0 || i >= len(a.items) {
		return Undefined
	}
	return a.items[i]
}

func (a *Array) Append(v Value) error {
	if a.frozen {
		return immutable(KindArray)
	}
	if v == nil {
		v = Null
	}
	a.items = append(a.items, v)
	return nil
}

// Set replaces the element at i. Setting i == Len appends; indexes beyond
// that pad the array with Undefined.
func (a *Array) Set(i int, v Value) error {
	if a.frozen {
		return immutable(KindArray)
	}
	if i < 0 {
		return negativeIndex(i)
	}
	if v == nil {
		v = Null
	}
	for len(a.items) <= i {
		a.items = append(a.items, Undefined)
	}
	a.items[i] = v
	return nil
}
