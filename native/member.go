package native

import (
	"context"
	"fmt"
	"reflect"

	"github.com/wippyai/hostbridge/errors"
)

// MemberKind distinguishes how a member is invoked.
type MemberKind uint8

const (
	KindMethod MemberKind = iota
	KindStatic
	KindConstructor
)

func (k MemberKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindStatic:
		return "static"
	case KindConstructor:
		return "constructor"
	}
	return "unknown"
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Member is a resolved callable: a method, a static function or a constructor.
type Member struct {
	fn          reflect.Value
	params      []reflect.Type
	results     []reflect.Type
	Owner       string
	Name        string
	Kind        MemberKind
	withContext bool
	withError   bool
	variadic    bool
}

// newMember describes fn. For methods fn is the method expression, whose
// first parameter is the receiver.
func newMember(owner, name string, kind MemberKind, fn reflect.Value) (*Member, error) {
	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseConfig, errors.KindTypeMismatch).
			GoType(ft.String()).
			Member(name).
			Detail("member must be a function").
			Build()
	}

	m := &Member{
		fn:       fn,
		Owner:    owner,
		Name:     name,
		Kind:     kind,
		variadic: ft.IsVariadic(),
	}

	first := 0
	if kind == KindMethod {
		first = 1
	}
	if ft.NumIn() > first && ft.In(first) == contextType {
		m.withContext = true
		first++
	}
	for i := first; i < ft.NumIn(); i++ {
		m.params = append(m.params, ft.In(i))
	}

	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		m.withError = true
		n--
	}
	for i := 0; i < n; i++ {
		m.results = append(m.results, ft.Out(i))
	}
	return m, nil
}

// Arity is the number of arguments the caller supplies.
func (m *Member) Arity() int {
	return len(m.params)
}

// Params returns the argument types, excluding receiver and context.
func (m *Member) Params() []reflect.Type {
	return m.params
}

// Results returns the result types, excluding a trailing error.
func (m *Member) Results() []reflect.Type {
	return m.results
}

// Variadic reports whether the last parameter is variadic; it is passed as
// a slice.
func (m *Member) Variadic() bool {
	return m.variadic
}

// Call invokes the member. recv is ignored for statics and constructors.
// Zero results yield nil, one result yields its value, several yield []any.
func (m *Member) Call(ctx context.Context, recv reflect.Value, args []reflect.Value) (result any, err error) {
	if len(args) != len(m.params) {
		return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			GoType(m.Owner).
			Member(m.Name).
			Detail("expected %d argument(s), got %d", len(m.params), len(args)).
			Build()
	}

	in := make([]reflect.Value, 0, len(args)+2)
	if m.Kind == KindMethod {
		if !recv.IsValid() {
			return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
				GoType(m.Owner).
				Member(m.Name).
				Detail("missing receiver").
				Build()
		}
		in = append(in, recv)
	}
	if m.withContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	in = append(in, args...)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.Invocation(m.Owner, m.Name, fmt.Errorf("panic: %v", r))
		}
	}()

	var out []reflect.Value
	if m.variadic {
		out = m.fn.CallSlice(in)
	} else {
		out = m.fn.Call(in)
	}

	if m.withError {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, errors.Invocation(m.Owner, m.Name, e.Interface().(error))
		}
		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}
	return values, nil
}

func (m *Member) String() string {
	return fmt.Sprintf("%s %s.%s/%d", m.Kind, m.Owner, m.Name, len(m.params))
}
