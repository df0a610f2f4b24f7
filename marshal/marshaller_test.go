package marshal

import (
	"bytes"
	stderrors "errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/handle"
	"github.com/wippyai/hostbridge/namespace"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/value"
)

const pkgPath = "github.com/wippyai/hostbridge/marshal"

type widget struct {
	id int
}

type Point struct {
	X, Y int
	note string
}

type Stamp struct {
	value time.Time
}

func (s *Stamp) GetValue() time.Time  { return s.value }
func (s *Stamp) SetValue(t time.Time) { s.value = t }

type ClickEvent struct {
	source any
	count  int
}

func (e *ClickEvent) GetSource() any { return e.source }
func (e *ClickEvent) GetCount() int  { return e.count }
func (e *ClickEvent) IsDouble() bool { return e.count > 1 }

type failing struct{}

func (f *failing) GetBroken() (int, error) { return 0, stderrors.New("broken") }
func (f *failing) GetFine() (int, error)   { return 3, nil }

type app struct{ name string }

func newTestMarshaller(t *testing.T) *Marshaller {
	t.Helper()
	mapper := namespace.NewMapper()
	if err := mapper.Register("Test", pkgPath); err != nil {
		t.Fatal(err)
	}
	m := New(mapper, native.NewRegistry(), handle.NewRegistry(), &hostbridge.StaticContext{
		App:    &app{name: "app"},
		Window: &app{name: "window"},
	})
	m.RegisterByValue("Point")
	m.RegisterByValue(pkgPath + ".Stamp")
	m.RegisterByValue("ClickEvent")
	m.RegisterByValue("failing")
	return m
}

func mustJSON(t *testing.T, v value.Value) string {
	t.Helper()
	b, err := value.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestToValue_Scalars(t *testing.T) {
	m := newTestMarshaller(t)
	type color int
	n, ok := 7, true

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, `null`},
		{"nil pointer", (*widget)(nil), `null`},
		{"bool", true, `true`},
		{"int", 42, `42`},
		{"named int", color(3), `3`},
		{"uint8", uint8(255), `255`},
		{"float", 1.25, `1.25`},
		{"string", "hi", `"hi"`},
		{"int pointer", &n, `7`},
		{"bool pointer", &ok, `true`},
		{"slice", []int{1, 2}, `[1,2]`},
		{"any slice", []any{"a", nil, false}, `["a",null,false]`},
		{"map", map[string]int{"b": 2, "a": 1}, `{"a":1,"b":2}`},
		{"value passthrough", value.FromString("v"), `"v"`},
		{"type", reflect.TypeOf(Point{}), `"Test.Point"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := m.ToValue(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := mustJSON(t, v); got != tt.want {
				t.Errorf("ToValue(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestToValue_Placeholders(t *testing.T) {
	m := newTestMarshaller(t)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	u, _ := url.Parse("https://example.com/a?b=c")

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"date", time.UnixMilli(1500000000123), `{"type":"<date>","value":1500000000123}`},
		{"uuid", id, `{"type":"<uuid>","value":"6BA7B810-9DAD-11D1-80B4-00C04FD430C8"}`},
		{"uri", u, `{"type":"<uri>","value":"https://example.com/a?b=c"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := m.ToValue(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := mustJSON(t, v); got != tt.want {
				t.Errorf("ToValue = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHandleIdentityRoundTrip(t *testing.T) {
	m := newTestMarshaller(t)
	w := &widget{id: 1}

	v1, err := m.ToValue(w)
	if err != nil {
		t.Fatal(err)
	}
	v2, _ := m.ToValue(w)
	if !value.Equal(v1, v2) {
		t.Errorf("same object marshalled twice: %s vs %s", mustJSON(t, v1), mustJSON(t, v2))
	}
	if got := mustJSON(t, v1); got != `{"type":"Test.widget","handle":1}` {
		t.Errorf("descriptor = %s", got)
	}

	back, err := m.FromValue(v1, reflect.TypeOf(w))
	if err != nil {
		t.Fatal(err)
	}
	if back.Interface() != w {
		t.Error("FromValue did not return the identical object")
	}

	other, _ := m.ToValue(&widget{id: 2})
	if value.Equal(v1, other) {
		t.Error("distinct objects share a handle")
	}
}

func TestRelease(t *testing.T) {
	m := newTestMarshaller(t)
	w := &widget{}
	v, _ := m.ToValue(w)

	obj, ok, err := m.Release(v)
	if err != nil || !ok || obj != w {
		t.Fatalf("Release = %v, %v, %v", obj, ok, err)
	}

	unknown := &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindUnknownHandle}
	if _, err := m.FromValue(v, reflect.TypeOf(w)); !stderrors.Is(err, unknown) {
		t.Errorf("FromValue after release = %v, want unknown handle", err)
	}

	if _, ok, err := m.Release(v); ok || err != nil {
		t.Errorf("second Release = %v, %v; want not found without error", ok, err)
	}

	// a fresh marshal of the same object gets a new handle
	again, _ := m.ToValue(w)
	if value.Equal(again, v) {
		t.Error("released handle reused")
	}
}

func TestByValueRoundTrip(t *testing.T) {
	m := newTestMarshaller(t)

	p := Point{X: 1, Y: 2, note: "hidden"}
	v, err := m.ToValue(p)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, v); got != `{"type":"Test.Point","x":1,"y":2}` {
		t.Errorf("ToValue = %s", got)
	}
	back, err := m.FromValue(v, reflect.TypeOf(Point{}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Point{X: 1, Y: 2}, back.Interface(), cmp.AllowUnexported(Point{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	when := time.UnixMilli(1234567).UTC()
	sv, err := m.ToValue(&Stamp{value: when})
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, sv); got != `{"type":"Test.Stamp","value":{"type":"<date>","value":1234567}}` {
		t.Errorf("Stamp = %s", got)
	}
	sback, err := m.FromValue(sv, reflect.TypeOf(&Stamp{}))
	if err != nil {
		t.Fatal(err)
	}
	if got := sback.Interface().(*Stamp).value; !got.Equal(when) {
		t.Errorf("Stamp value = %v, want %v", got, when)
	}
}

func TestByValueEventOmitsSource(t *testing.T) {
	m := newTestMarshaller(t)
	v, err := m.ToValue(&ClickEvent{source: &widget{}, count: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, v); got != `{"type":"Test.ClickEvent","count":2,"double":true}` {
		t.Errorf("event = %s", got)
	}
}

func TestByValueFailingGetter(t *testing.T) {
	m := newTestMarshaller(t)
	v, err := m.ToValue(&failing{})
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, v); got != `{"type":"Test.failing","broken":null,"fine":3}` {
		t.Errorf("failing = %s", got)
	}
}

func TestFromValue_Scalars(t *testing.T) {
	m := newTestMarshaller(t)
	mismatch := &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindTypeMismatch}

	tests := []struct {
		name    string
		in      value.Value
		target  any
		want    any
		wantErr bool
	}{
		{"bool", value.True, false, true, false},
		{"int", value.FromFloat(7.9), 0, 7, false},
		{"int8 overflow", value.FromInt(300), int8(0), nil, true},
		{"uint negative", value.FromInt(-1), uint(0), nil, true},
		{"float32", value.FromFloat(1.5), float32(0), float32(1.5), false},
		{"string", value.FromString("s"), "", "s", false},
		{"null to int", value.Null, 0, 0, false},
		{"null to pointer", value.Null, (*widget)(nil), (*widget)(nil), false},
		{"string to int", value.FromString("1"), 0, nil, true},
		{"number to string", value.FromInt(1), "", nil, true},
		{"number to any", value.FromInt(1), any(nil), float64(1), false},
		{"slice", value.ArrayOf(value.FromInt(1), value.FromInt(2)), []int(nil), []int{1, 2}, false},
		{"array size mismatch", value.ArrayOf(value.FromInt(1)), [2]int{}, nil, true},
		{"map", value.ObjectOf("a", 1), map[string]int(nil), map[string]int{"a": 1}, false},
		{"pointer scalar", value.FromInt(4), (*int)(nil), 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := reflect.TypeOf(&tt.target).Elem()
			if tt.target != nil {
				typ = reflect.TypeOf(tt.target)
			}
			got, err := m.FromValue(tt.in, typ)
			if tt.wantErr {
				if !stderrors.Is(err, mismatch) {
					t.Errorf("err = %v, want type mismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			out := got.Interface()
			if p, ok := out.(*int); ok {
				out = *p
			}
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromValue_MismatchMessage(t *testing.T) {
	m := newTestMarshaller(t)
	_, err := m.FromValue(value.FromString("x"), reflect.TypeOf(0))
	if err == nil || !bytes.Contains([]byte(err.Error()), []byte("could not convert string to expected type int")) {
		t.Errorf("err = %v", err)
	}
	if _, err := m.FromValue(value.Undefined, reflect.TypeOf(0)); err == nil {
		t.Error("undefined argument should fail")
	}
}

func TestFromValue_Placeholders(t *testing.T) {
	m := newTestMarshaller(t)

	d, err := m.FromValue(value.ObjectOf("type", "<date>", "value", 1000), reflect.TypeOf(time.Time{}))
	if err != nil || !d.Interface().(time.Time).Equal(time.UnixMilli(1000)) {
		t.Errorf("date = %v, %v", d, err)
	}

	u, err := m.FromValue(value.ObjectOf("type", "<uuid>", "value", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8"), reflect.TypeOf(uuid.UUID{}))
	if err != nil || u.Interface().(uuid.UUID).String() != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("uuid = %v, %v", u, err)
	}

	link, err := m.FromValue(value.ObjectOf("type", "<uri>", "value", "https://example.com"), reflect.TypeOf(&url.URL{}))
	if err != nil || link.Interface().(*url.URL).Host != "example.com" {
		t.Errorf("uri = %v, %v", link, err)
	}

	if _, err := m.FromValue(value.ObjectOf("type", "<uuid>", "value", "nope"), reflect.TypeOf(uuid.UUID{})); err == nil {
		t.Error("invalid uuid should fail")
	}
}

func TestFromValue_ApplicationContext(t *testing.T) {
	m := newTestMarshaller(t)
	anyT := reflect.TypeOf((*any)(nil)).Elem()

	a, err := m.FromValue(value.ObjectOf("type", "<application>"), anyT)
	if err != nil || a.Interface().(*app).name != "app" {
		t.Errorf("application = %v, %v", a, err)
	}
	w, err := m.FromValue(value.ObjectOf("type", "<window>", "handle", 99), anyT)
	if err != nil || w.Interface().(*app).name != "window" {
		t.Errorf("window = %v, %v", w, err)
	}
}

func TestFromValues(t *testing.T) {
	m := newTestMarshaller(t)
	types := []reflect.Type{reflect.TypeOf(""), reflect.TypeOf(0)}

	out, err := m.FromValues(value.ArrayOf(value.FromString("a"), value.FromInt(2)), types)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].String() != "a" || out[1].Int() != 2 {
		t.Errorf("FromValues = %v", out)
	}
	if _, err := m.FromValues(value.ArrayOf(value.FromString("a")), types); err == nil {
		t.Error("arity mismatch should fail")
	}
	if _, err := m.FromValues(value.FromString("a"), types); err == nil {
		t.Error("non-array arguments should fail")
	}
	if out, err := m.FromValues(value.Null, nil); err != nil || len(out) != 0 {
		t.Errorf("null arguments = %v, %v", out, err)
	}
}

func TestInstance(t *testing.T) {
	m := newTestMarshaller(t)
	w := &widget{}
	v, _ := m.ToValue(w)

	obj, err := m.Instance(v)
	if err != nil || obj != w {
		t.Errorf("Instance = %v, %v", obj, err)
	}
	if _, err := m.Instance(value.FromInt(1)); err == nil {
		t.Error("non-object instance should fail")
	}
}

func TestUnregisteredNamespace(t *testing.T) {
	m := newTestMarshaller(t)
	unregistered := &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindUnregistered}
	if _, err := m.ToValue(&bytes.Buffer{}); !stderrors.Is(err, unregistered) {
		t.Errorf("ToValue of unmapped type = %v, want unregistered", err)
	}
}
