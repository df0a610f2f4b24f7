package marshal

import (
	"math"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/handle"
	"github.com/wippyai/hostbridge/namespace"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/value"
)

// FromValue converts v to a native value of type t.
func (m *Marshaller) FromValue(v value.Value, t reflect.Type) (reflect.Value, error) {
	return m.fromValue(v, t, nil)
}

// FromValues converts an argument array to the given parameter types.
// The array length must match exactly.
func (m *Marshaller) FromValues(args value.Value, types []reflect.Type) ([]reflect.Value, error) {
	if args == nil || args.Kind() == value.KindUndefined || args.Kind() == value.KindNull {
		args = value.EmptyArray
	}
	if args.Kind() != value.KindArray {
		return nil, errors.TypeMismatch([]string{"args"}, args.Kind().String(), "argument array")
	}
	if args.Len() != len(types) {
		return nil, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
			Path("args").
			Detail("expected %d argument(s), got %d", len(types), args.Len()).
			Build()
	}
	out := make([]reflect.Value, len(types))
	for i, t := range types {
		rv, err := m.fromValue(args.Index(i), t, []string{"args", strconv.Itoa(i)})
		if err != nil {
			return nil, err
		}
		out[i] = rv
	}
	return out, nil
}

// Instance resolves an instance descriptor to the native object it names.
func (m *Marshaller) Instance(v value.Value) (any, error) {
	if v == nil || v.Kind() != value.KindObject || !v.Has(KeyType) {
		kind := "undefined"
		if v != nil {
			kind = v.Kind().String()
		}
		return nil, errors.TypeMismatch([]string{"instance"}, kind, "instance descriptor")
	}
	rv, err := m.fromValue(v, anyType, []string{"instance"})
	if err != nil {
		return nil, err
	}
	if rv.IsNil() {
		return nil, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
			Path("instance").
			Detail("instance resolved to nil").
			Build()
	}
	return rv.Interface(), nil
}

// Release removes the object an instance descriptor refers to from its
// handle table. An unknown handle reports false without error.
func (m *Marshaller) Release(instance value.Value) (any, bool, error) {
	if instance == nil || instance.Kind() != value.KindObject {
		return nil, false, errors.InvalidInput(errors.PhaseConvert, "an instance descriptor is required")
	}
	virtual, err := instance.Field(KeyType).Str()
	if err != nil {
		return nil, false, errors.InvalidInput(errors.PhaseConvert, "missing type field on instance descriptor")
	}
	h, err := instance.Field(KeyHandle).Int64()
	if err != nil {
		return nil, false, nil
	}
	name, err := m.mapper.ResolveType(virtual)
	if err != nil {
		return nil, false, err
	}
	table, ok := m.handles.Lookup(name)
	if !ok {
		return nil, false, nil
	}
	obj, ok := table.Release(handle.Handle(h))
	return obj, ok, nil
}

func (m *Marshaller) fromValue(v value.Value, t reflect.Type, path []string) (reflect.Value, error) {
	if v == nil || v.Kind() == value.KindUndefined {
		return reflect.Value{}, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
			Path(path...).
			GoType(t.String()).
			Detail("a value is required").
			Build()
	}
	if t == valueType {
		return assignTo(reflect.ValueOf(v), t), nil
	}
	if v.Kind() == value.KindNull {
		return reflect.Zero(t), nil
	}

	switch v.Kind() {
	case value.KindObject:
		return m.fromObject(v, t, path)
	case value.KindArray:
		return m.fromArray(v, t, path)
	}

	if t.Kind() == reflect.Pointer {
		inner, err := m.fromValue(v, t.Elem(), path)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	return fromScalar(v, t, path)
}

func mismatch(path []string, v value.Value, t reflect.Type) error {
	return errors.TypeMismatch(path, v.Kind().String(), t.String())
}

func isEmptyInterface(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// assignTo returns rv typed as t, which rv must be assignable to.
func assignTo(rv reflect.Value, t reflect.Type) reflect.Value {
	if rv.Type() == t {
		return rv
	}
	out := reflect.New(t).Elem()
	out.Set(rv)
	return out
}

// assign fits a resolved native object into t, dereferencing a pointer when
// t wants the value.
func assign(obj any, t reflect.Type, path []string) (reflect.Value, error) {
	if obj == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Type().AssignableTo(t) {
		return assignTo(rv, t), nil
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(t) {
		return assignTo(rv.Elem(), t), nil
	}
	if t.Kind() == reflect.Pointer && rv.Type().AssignableTo(t.Elem()) {
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	}
	return reflect.Value{}, errors.TypeMismatch(path, rv.Type().String(), t.String())
}

func fromScalar(v value.Value, t reflect.Type, path []string) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.Interface:
		if !isEmptyInterface(t) {
			break
		}
		return assignTo(reflect.ValueOf(value.ToAny(v)), t), nil
	case reflect.Bool:
		b, err := v.Bool()
		if err != nil {
			break
		}
		out.SetBool(b)
		return out, nil
	case reflect.String:
		s, err := v.Str()
		if err != nil {
			break
		}
		out.SetString(s)
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, err := v.Number()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			break
		}
		i := int64(f)
		if out.OverflowInt(i) || f >= math.MaxInt64 || f < math.MinInt64 {
			return reflect.Value{}, overflow(path, f, t)
		}
		out.SetInt(i)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f, err := v.Number()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			break
		}
		if f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
			return reflect.Value{}, overflow(path, f, t)
		}
		out.SetUint(uint64(f))
		return out, nil
	case reflect.Float32, reflect.Float64:
		f, err := v.Number()
		if err != nil {
			break
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, overflow(path, f, t)
		}
		out.SetFloat(f)
		return out, nil
	}
	return reflect.Value{}, mismatch(path, v, t)
}

func overflow(path []string, f float64, t reflect.Type) error {
	return errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
		Path(path...).
		GoType(t.String()).
		Value(f).
		Detail("number %v does not fit %s", f, t).
		Build()
}

func (m *Marshaller) fromArray(v value.Value, t reflect.Type, path []string) (reflect.Value, error) {
	n := v.Len()
	var out reflect.Value
	switch {
	case t.Kind() == reflect.Slice:
		out = reflect.MakeSlice(t, n, n)
	case t.Kind() == reflect.Array:
		if t.Len() != n {
			return reflect.Value{}, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
				Path(path...).
				GoType(t.String()).
				Detail("array of length %d does not fit %s", n, t).
				Build()
		}
		out = reflect.New(t).Elem()
	case isEmptyInterface(t):
		items := make([]any, n)
		for i := range items {
			item, err := m.fromValue(v.Index(i), anyType, append(path, strconv.Itoa(i)))
			if err != nil {
				return reflect.Value{}, err
			}
			items[i] = item.Interface()
		}
		return assignTo(reflect.ValueOf(items), t), nil
	case t.Kind() == reflect.Pointer:
		inner, err := m.fromArray(v, t.Elem(), path)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	default:
		return reflect.Value{}, mismatch(path, v, t)
	}

	for i := 0; i < n; i++ {
		item, err := m.fromValue(v.Index(i), t.Elem(), append(path, strconv.Itoa(i)))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(item)
	}
	return out, nil
}

func (m *Marshaller) fromObject(v value.Value, t reflect.Type, path []string) (reflect.Value, error) {
	virtual, err := v.Field(KeyType).Str()
	if err != nil || virtual == "" {
		return m.fromPlainObject(v, t, path)
	}
	name, err := m.mapper.ResolveType(virtual)
	if err != nil {
		return reflect.Value{}, err
	}

	if hv := v.Field(KeyHandle); hv.Kind() == value.KindNumber {
		h, _ := hv.Int64()
		obj, err := m.lookup(name, handle.Handle(h))
		if err != nil {
			return reflect.Value{}, err
		}
		return assign(obj, t, path)
	}

	switch name {
	case namespace.NativeDate, namespace.NativeUUID, namespace.NativeURI:
		obj, err := parsePlaceholder(name, v.Field(KeyValue), path)
		if err != nil {
			return reflect.Value{}, err
		}
		return assign(obj, t, path)
	case namespace.Application, namespace.Window:
		obj, err := m.contextObject(name)
		if err != nil {
			return reflect.Value{}, err
		}
		return assign(obj, t, path)
	}

	target := t
	if t.Kind() == reflect.Interface {
		nt, err := m.types.Lookup(name)
		if err != nil {
			return reflect.Value{}, err
		}
		target = reflect.PointerTo(nt.Elem)
	}
	built, err := m.buildByValue(v, target, path)
	if err != nil {
		return reflect.Value{}, err
	}
	return assign(built.Interface(), t, path)
}

func (m *Marshaller) fromPlainObject(v value.Value, t reflect.Type, path []string) (reflect.Value, error) {
	switch {
	case isEmptyInterface(t):
		return assignTo(reflect.ValueOf(value.ToAny(v)), t), nil
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		keys, _ := v.Keys()
		out := reflect.MakeMapWithSize(t, len(keys))
		for _, k := range keys {
			item, err := m.fromValue(v.Field(k), t.Elem(), append(path, k))
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), item)
		}
		return out, nil
	}
	return m.buildByValue(v, t, path)
}

func (m *Marshaller) lookup(name string, h handle.Handle) (any, error) {
	if table, ok := m.handles.Lookup(name); ok {
		if obj, ok := table.Lookup(h); ok {
			return obj, nil
		}
	}
	if name == namespace.Application || name == namespace.Window {
		return m.contextObject(name)
	}
	return nil, errors.UnknownHandle(name, uint64(h))
}

func (m *Marshaller) contextObject(name string) (any, error) {
	if m.app == nil {
		return nil, errors.New(errors.PhaseConvert, errors.KindNotFound).
			GoType(name).
			Detail("no application context").
			Build()
	}
	if name == namespace.Window {
		return m.app.CurrentWindow(), nil
	}
	return m.app.Application(), nil
}

func parsePlaceholder(name string, v value.Value, path []string) (any, error) {
	path = append(path, KeyValue)
	switch name {
	case namespace.NativeDate:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms), nil
		}
		if s, err := v.Str(); err == nil {
			t, perr := time.Parse(time.RFC3339Nano, s)
			if perr != nil {
				return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
					Path(path...).GoType(name).Cause(perr).Build()
			}
			return t, nil
		}
	case namespace.NativeUUID:
		if s, err := v.Str(); err == nil {
			u, perr := uuid.Parse(s)
			if perr != nil {
				return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
					Path(path...).GoType(name).Cause(perr).Build()
			}
			return u, nil
		}
	case namespace.NativeURI:
		if s, err := v.Str(); err == nil {
			u, perr := url.Parse(s)
			if perr != nil {
				return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
					Path(path...).GoType(name).Cause(perr).Build()
			}
			return u, nil
		}
	}
	return nil, errors.TypeMismatch(path, v.Kind().String(), name)
}

// buildByValue creates a new instance of t (a struct or pointer to struct)
// and copies the object's properties into it.
func (m *Marshaller) buildByValue(v value.Value, t reflect.Type, path []string) (reflect.Value, error) {
	elem := t
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return reflect.Value{}, mismatch(path, v, t)
	}

	ptr := reflect.New(elem)
	keys, _ := v.Keys()
	for _, key := range keys {
		if objectKeys[key] {
			continue
		}
		if err := m.setProperty(ptr, key, v.Field(key), append(path, key)); err != nil {
			return reflect.Value{}, err
		}
	}

	if t.Kind() == reflect.Pointer {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

// setProperty applies SetX when present, else the exported field X.
// Unknown properties are ignored.
func (m *Marshaller) setProperty(ptr reflect.Value, key string, v value.Value, path []string) error {
	prop := namespace.ResolveMember(key)

	if setter := ptr.MethodByName("Set" + prop); setter.IsValid() {
		st := setter.Type()
		if st.NumIn() == 1 && (st.NumOut() == 0 || (st.NumOut() == 1 && st.Out(0) == errorType)) {
			arg, err := m.fromValue(v, st.In(0), path)
			if err != nil {
				return err
			}
			out := setter.Call([]reflect.Value{arg})
			if len(out) == 1 && !out[0].IsNil() {
				return errors.New(errors.PhaseConvert, errors.KindInvalidInput).
					Path(path...).
					GoType(native.TypeName(ptr.Type())).
					Member("Set" + prop).
					Cause(out[0].Interface().(error)).
					Build()
			}
			return nil
		}
	}

	field := ptr.Elem().FieldByName(prop)
	if !field.IsValid() || !field.CanSet() {
		return nil
	}
	fv, err := m.fromValue(v, field.Type(), path)
	if err != nil {
		return err
	}
	field.Set(fv)
	return nil
}
