package value

import "sort"

// mapObject exposes a decoded JSON object as a mutable Object value.
// Reads and writes go straight to the underlying map.
type mapObject struct {
	m map[string]any
}

func (o *mapObject) Kind() Kind          { return KindObject }
func (o *mapObject) IsImmutable() bool   { return false }
func (o *mapObject) Len() int            { return len(o.m) }
func (o *mapObject) Index(int) Value     { return Undefined }
func (o *mapObject) Bool() (bool, error) { return false, wrongKind(KindObject, "boolean") }

func (o *mapObject) Number() (float64, error) { return 0, wrongKind(KindObject, "number") }
func (o *mapObject) Int() (int, error)        { return 0, wrongKind(KindObject, "number") }
func (o *mapObject) Int64() (int64, error)    { return 0, wrongKind(KindObject, "number") }
func (o *mapObject) Str() (string, error)     { return "", wrongKind(KindObject, "string") }
func (o *mapObject) Append(Value) error       { return wrongKind(KindObject, "array") }
func (o *mapObject) Set(int, Value) error     { return wrongKind(KindObject, "array") }

// Keys are sorted since Go maps carry no order.
func (o *mapObject) Keys() ([]string, error) {
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (o *mapObject) Field(key string) Value {
	v, ok := o.m[key]
	if !ok {
		return Undefined
	}
	return Wrap(v)
}

func (o *mapObject) Has(key string) bool {
	_, ok := o.m[key]
	return ok
}

func (o *mapObject) Put(key string, v Value) error {
	o.m[key] = ToAny(v)
	return nil
}

func (o *mapObject) Remove(key string) error {
	delete(o.m, key)
	return nil
}

// sliceArray exposes a decoded JSON array as an Array value. Appends
// cannot grow the caller's slice header, so the adapter keeps its own.
type sliceArray struct {
	s *[]any
}

func (a *sliceArray) Kind() Kind          { return KindArray }
func (a *sliceArray) IsImmutable() bool   { return false }
func (a *sliceArray) Len() int            { return len(*a.s) }
func (a *sliceArray) Bool() (bool, error) { return false, wrongKind(KindArray, "boolean") }

func (a *sliceArray) Number() (float64, error) { return 0, wrongKind(KindArray, "number") }
func (a *sliceArray) Int() (int, error)        { return 0, wrongKind(KindArray, "number") }
func (a *sliceArray) Int64() (int64, error)    { return 0, wrongKind(KindArray, "number") }
func (a *sliceArray) Str() (string, error)     { return "", wrongKind(KindArray, "string") }
func (a *sliceArray) Keys() ([]string, error)  { return nil, wrongKind(KindArray, "object") }
func (a *sliceArray) Field(string) Value       { return Undefined }
func (a *sliceArray) Has(string) bool          { return false }
func (a *sliceArray) Put(string, Value) error  { return wrongKind(KindArray, "object") }
func (a *sliceArray) Remove(string) error      { return wrongKind(KindArray, "object") }

func (a *sliceArray) Index(i int) Value {
	if i < 0 || i >= len(*a.s) {
		return Undefined
	}
	return Wrap((*a.s)[i])
}

func (a *sliceArray) Append(v Value) error {
	*a.s = append(*a.s, ToAny(v))
	return nil
}

func (a *sliceArray) Set(i int, v Value) error {
	if i < 0 {
		return negativeIndex(i)
	}
	for len(*a.s) <= i {
		*a.s = append(*a.s, nil)
	}
	(*a.s)[i] = ToAny(v)
	return nil
}
