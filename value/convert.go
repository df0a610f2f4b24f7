package value

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/wippyai/hostbridge/errors"
)

// FromAny converts a JSON-like Go value into a Value. Maps and slices are
// wrapped, not copied.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case bool:
		return FromBool(x), nil
	case string:
		return FromString(x), nil
	case float64:
		return FromFloat(x), nil
	case float32:
		return FromFloat(float64(x)), nil
	case int:
		return FromInt(x), nil
	case int8:
		return FromInt(int(x)), nil
	case int16:
		return FromInt(int(x)), nil
	case int32:
		return FromInt(int(x)), nil
	case int64:
		return FromInt64(x), nil
	case uint:
		return FromFloat(float64(x)), nil
	case uint8:
		return FromInt(int(x)), nil
	case uint16:
		return FromInt(int(x)), nil
	case uint32:
		return FromInt64(int64(x)), nil
	case uint64:
		return FromFloat(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
				Detail("invalid number %q", x.String()).
				Cause(err).
				Build()
		}
		return FromFloat(f), nil
	case map[string]any:
		return &mapObject{m: x}, nil
	case []any:
		return &sliceArray{s: &x}, nil
	case *[]any:
		return &sliceArray{s: x}, nil
	case []Value:
		return ArrayOf(x...), nil
	case map[string]Value:
		o := NewObject()
		for k, e := range x {
			_ = o.Put(k, e)
		}
		return o, nil
	}
	return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
		GoType(fmt.Sprintf("%T", v)).
		Detail("not a JSON-shaped value").
		Build()
}

// Wrap is FromAny that maps unsupported inputs to Undefined.
func Wrap(v any) Value {
	out, err := FromAny(v)
	if err != nil {
		return Undefined
	}
	return out
}

// ToAny converts v into plain Go values: nil, bool, float64, string,
// map[string]any and []any. Undefined becomes nil.
func ToAny(v Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind() {
	case KindBoolean:
		b, _ := v.Bool()
		return b
	case KindNumber:
		f, _ := v.Number()
		return f
	case KindString:
		s, _ := v.Str()
		return s
	case KindObject:
		if m, ok := v.(*mapObject); ok {
			return m.m
		}
		keys, _ := v.Keys()
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			out[k] = ToAny(v.Field(k))
		}
		return out
	case KindArray:
		if a, ok := v.(*sliceArray); ok {
			return *a.s
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = ToAny(v.Index(i))
		}
		return out
	}
	return nil
}

// Clone returns a mutable deep copy of v. Scalars are returned unchanged.
func Clone(v Value) Value {
	switch v.Kind() {
	case KindObject:
		keys, _ := v.Keys()
		o := NewObject()
		for _, k := range keys {
			_ = o.Put(k, Clone(v.Field(k)))
		}
		return o
	case KindArray:
		a := &Array{items: make([]Value, 0, v.Len())}
		for i := 0; i < v.Len(); i++ {
			_ = a.Append(Clone(v.Index(i)))
		}
		return a
	}
	return v
}

// Equal reports deep equality. Object key order is ignored.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		x, _ := a.Bool()
		y, _ := b.Bool()
		return x == y
	case KindNumber:
		x, _ := a.Number()
		y, _ := b.Number()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case KindString:
		x, _ := a.Str()
		y, _ := b.Str()
		return x == y
	case KindObject:
		if a.Len() != b.Len() {
			return false
		}
		keys, _ := a.Keys()
		for _, k := range keys {
			if !b.Has(k) || !Equal(a.Field(k), b.Field(k)) {
				return false
			}
		}
		return true
	case KindArray:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !Equal(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return false
}
