package value

import (
	"math"

	"github.com/wippyai/hostbridge/errors"
)

// Kind identifies the variant of a Value
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindObject:    "object",
	KindArray:     "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Value is a JSON-shaped value.
type Value interface {
	Kind() Kind
	IsImmutable() bool

	Bool() (bool, error)
	Number() (float64, error)
	Int() (int, error)
	Int64() (int64, error)
	Str() (string, error)

	// Keys returns object keys in insertion order.
	Keys() ([]string, error)
	// Field returns the value stored under key, or Undefined.
	Field(key string) Value
	Has(key string) bool
	// Len returns the number of elements or keys, 0 for scalars.
	Len() int
	// Index returns the element at i, or Undefined.
	Index(i int) Value

	Put(key string, v Value) error
	Remove(key string) error
	Append(v Value) error
	Set(i int, v Value) error
}

// Singletons
var (
	Undefined   Value = undefinedValue{scalar{KindUndefined}}
	Null        Value = nullValue{scalar{KindNull}}
	True        Value = boolValue{scalar{KindBoolean}, true}
	False       Value = boolValue{scalar{KindBoolean}, false}
	Zero        Value = numberValue{scalar{KindNumber}, 0}
	EmptyString Value = stringValue{scalar{KindString}, ""}
	EmptyObject Value = &Object{frozen: true}
	EmptyArray  Value = &Array{frozen: true}
)

func wrongKind(have Kind, want string) error {
	return errors.New(errors.PhaseState, errors.KindWrongKind).
		Detail("invalid value type: %s is not %s", have, want).
		Build()
}

func immutable(k Kind) error {
	return errors.New(errors.PhaseState, errors.KindImmutable).
		Detail("the %s value is immutable", k).
		Build()
}

func negativeIndex(i int) error {
	return errors.New(errors.PhaseState, errors.KindInvalidInput).
		Detail("negative array index %d", i).
		Build()
}

// scalar supplies the container and accessor defaults shared by all scalars
type scalar struct{ kind Kind }

func (s scalar) IsImmutable() bool        { return true }
func (s scalar) Bool() (bool, error)      { return false, wrongKind(s.kind, "boolean") }
func (s scalar) Number() (float64, error) { return 0, wrongKind(s.kind, "number") }
func (s scalar) Int() (int, error)        { return 0, wrongKind(s.kind, "number") }
func (s scalar) Int64() (int64, error)    { return 0, wrongKind(s.kind, "number") }
func (s scalar) Str() (string, error)     { return "", wrongKind(s.kind, "string") }
func (s scalar) Keys() ([]string, error)  { return nil, wrongKind(s.kind, "object") }
func (s scalar) Field(string) Value       { return Undefined }
func (s scalar) Has(string) bool          { return false }
func (s scalar) Len() int                 { return 0 }
func (s scalar) Index(int) Value          { return Undefined }
func (s scalar) Put(string, Value) error  { return immutable(s.kind) }
func (s scalar) Remove(string) error      { return immutable(s.kind) }
func (s scalar) Append(Value) error       { return immutable(s.kind) }
func (s scalar) Set(int, Value) error     { return immutable(s.kind) }

type undefinedValue struct{ scalar }

func (undefinedValue) Kind() Kind { return KindUndefined }

type nullValue struct{ scalar }

func (nullValue) Kind() Kind { return KindNull }

type boolValue struct {
	scalar
	v bool
}

func (b boolValue) Kind() Kind          { return KindBoolean }
func (b boolValue) Bool() (bool, error) { return b.v, nil }

type numberValue struct {
	scalar
	v float64
}

func (n numberValue) Kind() Kind               { return KindNumber }
func (n numberValue) Number() (float64, error) { return n.v, nil }

func (n numberValue) Int() (int, error) {
	i, err := n.Int64()
	return int(i), err
}

func (n numberValue) Int64() (int64, error) {
	if math.IsNaN(n.v) || math.IsInf(n.v, 0) {
		return 0, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			Detail("number %v has no integer value", n.v).
			Build()
	}
	return int64(n.v), nil
}

type stringValue struct {
	scalar
	v string
}

func (s stringValue) Kind() Kind           { return KindString }
func (s stringValue) Str() (string, error) { return s.v, nil }

// FromBool returns the shared True or False.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// FromFloat returns a Number.
func FromFloat(f float64) Value {
	if f == 0 && !math.Signbit(f) {
		return Zero
	}
	return numberValue{scalar{KindNumber}, f}
}

// FromInt returns a Number.
func FromInt(i int) Value { return FromFloat(float64(i)) }

// FromInt64 returns a Number. Values beyond 2^53 lose precision.
func FromInt64(i int64) Value { return FromFloat(float64(i)) }

// FromString returns a String.
func FromString(s string) Value {
	if s == "" {
		return EmptyString
	}
	return stringValue{scalar{KindString}, s}
}
