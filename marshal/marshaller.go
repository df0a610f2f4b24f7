package marshal

import (
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/handle"
	"github.com/wippyai/hostbridge/namespace"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/value"
)

// Descriptor keys
const (
	KeyType   = "type"
	KeyHandle = "handle"
	KeyValue  = "value"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	uuidType   = reflect.TypeOf(uuid.UUID{})
	urlType    = reflect.TypeOf(url.URL{})
	valueType  = reflect.TypeOf((*value.Value)(nil)).Elem()
	anyType    = reflect.TypeOf((*any)(nil)).Elem()
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	objectKeys = map[string]bool{KeyType: true, KeyHandle: true}
)

// Marshaller converts values in both directions.
type Marshaller struct {
	mapper  *namespace.Mapper
	types   *native.Registry
	handles *handle.Registry
	app     hostbridge.ApplicationContext
	byValue map[string]struct{}
	mu      sync.RWMutex
}

// New creates a Marshaller. app may be nil when no application context is
// available; placeholder objects then fail to resolve.
func New(mapper *namespace.Mapper, types *native.Registry, handles *handle.Registry, app hostbridge.ApplicationContext) *Marshaller {
	return &Marshaller{
		mapper:  mapper,
		types:   types,
		handles: handles,
		app:     app,
		byValue: make(map[string]struct{}),
	}
}

// RegisterByValue marks the type named name (simple or fully qualified) as
// copied across the boundary instead of referenced by handle.
func (m *Marshaller) RegisterByValue(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byValue[name] = struct{}{}
}

// ByValueNames returns the registered by-value names, sorted.
func (m *Marshaller) ByValueNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.byValue))
	for n := range m.byValue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsByValue reports whether values of t are marshalled by value.
func (m *Marshaller) IsByValue(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return false
	}
	full := native.TypeName(t)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.byValue[full]; ok {
		return true
	}
	_, ok := m.byValue[t.Name()]
	return ok
}

// Handles returns the handle registry.
func (m *Marshaller) Handles() *handle.Registry {
	return m.handles
}

// ToValue converts a native object to a Value.
func (m *Marshaller) ToValue(obj any) (value.Value, error) {
	switch x := obj.(type) {
	case nil:
		return value.Null, nil
	case value.Value:
		return x, nil
	case reflect.Type:
		name, err := m.mapper.VirtualType(native.TypeName(x))
		if err != nil {
			return nil, err
		}
		return value.FromString(name), nil
	case time.Time:
		return placeholder(namespace.Date, value.FromInt64(x.UnixMilli())), nil
	case uuid.UUID:
		return placeholder(namespace.UUID, value.FromString(strings.ToUpper(x.String()))), nil
	case url.URL:
		return placeholder(namespace.URI, value.FromString(x.String())), nil
	case *url.URL:
		if x == nil {
			return value.Null, nil
		}
		return placeholder(namespace.URI, value.FromString(x.String())), nil
	case *time.Time:
		if x == nil {
			return value.Null, nil
		}
		return m.ToValue(*x)
	}
	return m.toValue(reflect.ValueOf(obj))
}

func placeholder(name string, v value.Value) value.Value {
	o := value.NewObject()
	_ = o.Put(KeyType, value.FromString(name))
	_ = o.Put(KeyValue, v)
	return o
}

func (m *Marshaller) toValue(rv reflect.Value) (value.Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return value.FromBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.FromInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return value.FromFloat(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.FromFloat(rv.Float()), nil
	case reflect.String:
		return value.FromString(rv.String()), nil
	case reflect.Interface:
		if rv.IsNil() {
			return value.Null, nil
		}
		return m.ToValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		arr := value.NewArray()
		for i := 0; i < rv.Len(); i++ {
			item, err := m.ToValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			_ = arr.Append(item)
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return m.mapToValue(rv)
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return value.Null, nil
		}
		if rv.Elem().Kind() != reflect.Struct {
			return m.ToValue(rv.Elem().Interface())
		}
	}

	if m.IsByValue(rv.Type()) {
		return m.byValueToValue(rv)
	}
	return m.handleToValue(rv)
}

func (m *Marshaller) mapToValue(rv reflect.Value) (value.Value, error) {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	obj := value.NewObject()
	for _, k := range keys {
		item, err := m.ToValue(rv.MapIndex(k).Interface())
		if err != nil {
			return nil, err
		}
		_ = obj.Put(k.String(), item)
	}
	return obj, nil
}

func (m *Marshaller) handleToValue(rv reflect.Value) (value.Value, error) {
	name := native.TypeName(rv.Type())
	virtual, err := m.mapper.VirtualType(name)
	if err != nil {
		return nil, err
	}
	m.types.Ensure(rv.Type())

	h, _ := m.handles.Table(name).Acquire(rv.Interface())
	obj := value.NewObject()
	_ = obj.Put(KeyType, value.FromString(virtual))
	_ = obj.Put(KeyHandle, value.FromInt64(int64(h)))
	return obj, nil
}

func (m *Marshaller) byValueToValue(rv reflect.Value) (value.Value, error) {
	name := native.TypeName(rv.Type())
	virtual, err := m.mapper.VirtualType(name)
	if err != nil {
		return nil, err
	}

	obj := value.NewObject()
	_ = obj.Put(KeyType, value.FromString(virtual))

	elem := rv
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() == reflect.Struct {
		st := elem.Type()
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if !f.IsExported() || f.Anonymous {
				continue
			}
			item, err := m.ToValue(elem.Field(i).Interface())
			if err != nil {
				return nil, err
			}
			_ = obj.Put(namespace.VirtualMember(f.Name), item)
		}
	}

	skipSource := strings.HasSuffix(elem.Type().Name(), "Event")
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		prop, ok := getterProperty(method.Name)
		if !ok || !isGetter(method.Type) || (skipSource && prop == "Source") {
			continue
		}
		item, err := m.ToValue(m.callGetter(rv.Method(i), name, method.Name))
		if err != nil {
			return nil, err
		}
		_ = obj.Put(namespace.VirtualMember(prop), item)
	}
	return obj, nil
}

func getterProperty(name string) (string, bool) {
	for _, prefix := range []string{"Get", "Is"} {
		if len(name) > len(prefix) && strings.HasPrefix(name, prefix) {
			return name[len(prefix):], true
		}
	}
	return "", false
}

// isGetter accepts method types func(recv) T and func(recv) (T, error).
func isGetter(ft reflect.Type) bool {
	if ft.NumIn() != 1 {
		return false
	}
	switch ft.NumOut() {
	case 1:
		return ft.Out(0) != errorType
	case 2:
		return ft.Out(1) == errorType
	}
	return false
}

// callGetter reads a by-value property. A failing getter reads as nil.
func (m *Marshaller) callGetter(fn reflect.Value, typeName, method string) (result any) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("property getter panicked",
				zap.String("type", typeName),
				zap.String("method", method),
				zap.Any("panic", r))
			result = nil
		}
	}()
	out := fn.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		Logger().Warn("property getter failed",
			zap.String("type", typeName),
			zap.String("method", method),
			zap.Error(out[1].Interface().(error)))
		return nil
	}
	return out[0].Interface()
}
