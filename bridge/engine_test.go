package bridge

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/event"
	"github.com/wippyai/hostbridge/marshal"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/promise"
	"github.com/wippyai/hostbridge/value"
)

func kindOf(err error) errors.Kind {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestCreateInstanceAndProperties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inst := f.counter(t, 5)
	if typ, _ := inst.Field(marshal.KeyType).Str(); typ != "Test.Counter" {
		t.Fatalf("type = %q, want Test.Counter", typ)
	}

	if got, _ := mustWait(t, f.eng.GetProperty(ctx, inst, "count")).Int(); got != 5 {
		t.Errorf("count = %d, want 5", got)
	}
	mustWait(t, f.eng.SetProperty(ctx, inst, "count", value.FromInt(0)))
	if got, _ := mustWait(t, f.eng.GetProperty(ctx, inst, "empty")).Bool(); !got {
		t.Error("empty = false after setting count to 0")
	}

	sum := mustWait(t, f.eng.InvokeMethod(ctx, inst, "add", args(value.FromInt(2), value.FromInt(3))))
	if got, _ := sum.Int(); got != 5 {
		t.Errorf("add = %d, want 5", got)
	}
}

func TestCreateInstanceByArity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inst := mustWait(t, f.eng.CreateInstance(ctx, "Test.Counter", value.EmptyArray))
	if got, _ := mustWait(t, f.eng.GetProperty(ctx, inst, "count")).Int(); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}

	_, err := wait(t, f.eng.CreateInstance(ctx, "Test.Counter", args(value.FromInt(1), value.FromInt(2))))
	if kindOf(err) != errors.KindMemberNotFound {
		t.Fatalf("expected member not found, got %v", err)
	}
}

func TestInstanceIdentityRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inst := f.counter(t, 1)
	self := mustWait(t, f.eng.InvokeMethod(ctx, inst, "self", value.EmptyArray))
	if !value.Equal(inst, self) {
		t.Fatalf("self = %s, want %s", value.String(self), value.String(inst))
	}
}

func TestStaticMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if got, _ := mustWait(t, f.eng.GetStaticProperty(ctx, "Test.Counter", "limit")).Int(); got != 10 {
		t.Errorf("limit = %d, want 10", got)
	}
	mustWait(t, f.eng.SetStaticProperty(ctx, "Test.Counter", "limit", value.FromInt(20)))
	if got, _ := mustWait(t, f.eng.GetStaticProperty(ctx, "Test.Counter", "Limit")).Int(); got != 20 {
		t.Errorf("limit = %d, want 20", got)
	}
	if got, _ := mustWait(t, f.eng.InvokeStaticMethod(ctx, "Test.Counter", "double", args(value.FromInt(4)))).Int(); got != 8 {
		t.Errorf("double = %d, want 8", got)
	}
}

func TestResolutionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inst := f.counter(t, 1)

	tests := []struct {
		name string
		p    *promise.Promise[value.Value]
		want errors.Kind
	}{
		{"missing static getter", f.eng.GetStaticProperty(ctx, "Test.Counter", "Count"), errors.KindMemberNotFound},
		{"unknown type", f.eng.GetStaticProperty(ctx, "Test.Foo", "Count"), errors.KindTypeNotFound},
		{"unregistered namespace", f.eng.GetStaticProperty(ctx, "Other.Foo", "Count"), errors.KindUnregistered},
		{"empty type", f.eng.GetStaticProperty(ctx, "", "Count"), errors.KindInvalidInput},
		{"empty property", f.eng.GetProperty(ctx, inst, ""), errors.KindInvalidInput},
		{"missing setter", f.eng.SetProperty(ctx, inst, "empty", value.True), errors.KindMemberNotFound},
		{"wrong arity", f.eng.InvokeMethod(ctx, inst, "add", args(value.FromInt(1))), errors.KindMemberNotFound},
		{"args not array", f.eng.InvokeMethod(ctx, inst, "add", value.FromInt(1)), errors.KindTypeMismatch},
		{"bad argument", f.eng.InvokeMethod(ctx, inst, "add", args(value.FromString("x"), value.FromInt(1))), errors.KindTypeMismatch},
		{"missing argument", f.eng.SetProperty(ctx, inst, "count", value.Undefined), errors.KindInvalidInput},
		{"not an instance", f.eng.GetProperty(ctx, value.FromInt(1), "count"), errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wait(t, tt.p)
			if got := kindOf(err); got != tt.want {
				t.Fatalf("kind = %q, want %q (err: %v)", got, tt.want, err)
			}
			if errors.IsInvocation(err) {
				t.Fatal("resolution error reported as invocation failure")
			}
		})
	}
}

func TestInvocationFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	f := newFixture(t)
	inst := f.counter(t, 1)

	_, err := wait(t, f.eng.InvokeMethod(context.Background(), inst, "fail", value.EmptyArray))
	if !errors.IsInvocation(err) {
		t.Fatalf("expected invocation error, got %v", err)
	}
	entries := logs.FilterMessage("native invocation failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one error log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["member"]; got != "Fail" {
		t.Errorf("member field = %v, want Fail", got)
	}
}

func TestReleaseInvalidatesHandle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inst := f.counter(t, 1)

	mustWait(t, f.eng.ReleaseInstance(ctx, inst))

	_, err := wait(t, f.eng.GetProperty(ctx, inst, "count"))
	if kindOf(err) != errors.KindUnknownHandle {
		t.Fatalf("expected unknown handle, got %v", err)
	}
	// releasing again is not an error
	mustWait(t, f.eng.ReleaseInstance(ctx, inst))

	other := f.counter(t, 2)
	if value.Equal(inst, other) {
		t.Fatal("released handle was reissued")
	}
}

func TestReleaseKeepsOtherHandles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.counter(t, 1)
	second := f.counter(t, 2)

	mustWait(t, f.eng.ReleaseInstance(ctx, first))

	if _, err := wait(t, f.eng.GetProperty(ctx, first, "count")); kindOf(err) != errors.KindUnknownHandle {
		t.Fatalf("released: expected unknown handle, got %v", err)
	}
	if got, _ := mustWait(t, f.eng.GetProperty(ctx, second, "count")).Int(); got != 2 {
		t.Errorf("live handle count = %d, want 2", got)
	}
}

func TestChainedPromiseResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inst := f.counter(t, 1)

	p := f.eng.InvokeMethod(ctx, inst, "later", value.EmptyArray)
	if p.State() != promise.Pending {
		t.Fatalf("state = %s, want pending", p.State())
	}

	obj, err := f.eng.Marshaller().Instance(inst)
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if err := obj.(*Counter).pending.Resolve(42); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got, _ := mustWait(t, p).Int(); got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
}

func TestChainedPromiseRejection(t *testing.T) {
	f := newFixture(t)
	inst := f.counter(t, 1)

	p := f.eng.InvokeMethod(context.Background(), inst, "later", value.EmptyArray)
	obj, _ := f.eng.Marshaller().Instance(inst)
	_ = obj.(*Counter).pending.Reject(stderrors.New("nope"))

	_, err := wait(t, p)
	if !errors.IsInvocation(err) {
		t.Fatalf("expected invocation error, got %v", err)
	}
}

func TestFutureDrainedOnWorker(t *testing.T) {
	f := newFixture(t, WithWorkers(1))
	inst := f.counter(t, 7)

	gate := make(chan struct{})
	obj, _ := f.eng.Marshaller().Instance(inst)
	obj.(*Counter).gate = gate

	p := f.eng.InvokeMethod(context.Background(), inst, "gated", value.EmptyArray)
	if p.State() != promise.Pending {
		t.Fatalf("state = %v before the gate opened", p.State())
	}
	select {
	case <-p.Done():
		t.Fatal("future completed before the gate opened")
	case <-time.After(10 * time.Millisecond):
	}
	close(gate)
	if got, _ := mustWait(t, p).Int(); got != 7 {
		t.Errorf("result = %d, want 7", got)
	}
}

func TestCloseDoesNotWaitForStuckFuture(t *testing.T) {
	f := newFixture(t)
	inst := f.counter(t, 1)

	gate := make(chan struct{})
	defer close(gate)
	obj, _ := f.eng.Marshaller().Instance(inst)
	obj.(*Counter).gate = gate

	p := f.eng.InvokeMethod(context.Background(), inst, "stuck", value.EmptyArray)

	closed := make(chan error, 1)
	go func() { closed <- f.eng.Close() }()
	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("Close: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on a future that ignores its context")
	}

	_, err := wait(t, p)
	if kindOf(err) != errors.KindCancelled {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if _, err := wait(t, f.eng.GetProperty(context.Background(), inst, "count")); kindOf(err) != errors.KindCancelled {
		t.Errorf("call after close: expected cancelled, got %v", err)
	}
}

func TestChannelResult(t *testing.T) {
	f := newFixture(t)
	inst := f.counter(t, 3)

	v := mustWait(t, f.eng.InvokeMethod(context.Background(), inst, "stream", value.EmptyArray))
	if got, _ := v.Int(); got != 3 {
		t.Errorf("result = %d, want 3", got)
	}
}

func TestCancelStopsDrain(t *testing.T) {
	f := newFixture(t)
	inst := f.counter(t, 1)

	gate := make(chan struct{})
	obj, _ := f.eng.Marshaller().Instance(inst)
	p := f.eng.settle(mustMember(t, f, "Eventually"), obj.(*Counter).Eventually(gate))

	if !p.Cancel() {
		t.Fatal("Cancel returned false")
	}
	_, err := p.Result()
	if !stderrors.Is(err, errors.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
}

func TestCloseRejectsPendingDrains(t *testing.T) {
	f := newFixture(t)
	inst := f.counter(t, 1)
	obj, _ := f.eng.Marshaller().Instance(inst)
	m := mustMember(t, f, "Eventually")

	p := f.eng.settle(m, obj.(*Counter).Eventually(make(chan struct{})))
	if err := f.eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_, err := p.Result()
	if kindOf(err) != errors.KindCancelled {
		t.Fatalf("expected cancelled, got %v", err)
	}

	_, err = wait(t, f.eng.settle(m, obj.(*Counter).Eventually(make(chan struct{}))))
	if kindOf(err) != errors.KindCancelled {
		t.Fatalf("expected cancelled after close, got %v", err)
	}
}

func TestEventListeners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inst := f.counter(t, 0)

	var first, second []value.Value
	cb1 := event.NewCallback(func(v value.Value) { first = append(first, v) })
	cb2 := event.NewCallback(func(v value.Value) { second = append(second, v) })

	mustWait(t, f.eng.AddEventListener(ctx, inst, "change", cb1))
	mustWait(t, f.eng.AddEventListener(ctx, inst, "change", cb2))
	// same triple again is a no-op
	mustWait(t, f.eng.AddEventListener(ctx, inst, "change", cb1))
	if f.eng.Listeners() != 2 {
		t.Fatalf("listeners = %d, want 2", f.eng.Listeners())
	}

	mustWait(t, f.eng.SetProperty(ctx, inst, "count", value.FromInt(1)))
	mustWait(t, f.eng.RemoveEventListener(ctx, inst, "change", cb1))
	mustWait(t, f.eng.SetProperty(ctx, inst, "count", value.FromInt(2)))

	if len(first) != 1 || len(second) != 2 {
		t.Fatalf("deliveries = %d/%d, want 1/2", len(first), len(second))
	}
	want := map[string]any{"type": "Test.ChangeEvent", "count": float64(2)}
	if diff := cmp.Diff(want, value.ToAny(second[1])); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveUnknownListenerWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	f := newFixture(t)
	inst := f.counter(t, 0)

	mustWait(t, f.eng.RemoveEventListener(context.Background(), inst, "change", event.NewCallback(nil)))
	if logs.FilterMessage("event listener not found to remove").Len() != 1 {
		t.Fatalf("expected warning, got %v", logs.All())
	}
}

func TestUnsupportedEvent(t *testing.T) {
	f := newFixture(t)
	inst := f.counter(t, 0)

	_, err := wait(t, f.eng.AddEventListener(context.Background(), inst, "reset", event.NewCallback(nil)))
	if kindOf(err) != errors.KindMemberNotFound {
		t.Fatalf("expected member not found, got %v", err)
	}
}

func TestStaticEventListeners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var got []value.Value
	cb := event.NewCallback(func(v value.Value) { got = append(got, v) })

	mustWait(t, f.eng.AddStaticEventListener(ctx, "Test.Counter", "reset", cb))
	f.statics.fire(9)
	mustWait(t, f.eng.RemoveStaticEventListener(ctx, "Test.Counter", "reset", cb))
	f.statics.fire(10)

	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}
	if n, _ := got[0].Field("count").Int(); n != 9 {
		t.Errorf("count = %d, want 9", n)
	}
}

func TestCloseDetachesListeners(t *testing.T) {
	f := newFixture(t)
	inst := f.counter(t, 0)
	obj, _ := f.eng.Marshaller().Instance(inst)

	mustWait(t, f.eng.AddEventListener(context.Background(), inst, "change", event.NewCallback(nil)))
	if err := f.eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(obj.(*Counter).listeners); n != 0 {
		t.Fatalf("listeners after close = %d", n)
	}
}

func TestResultHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if f.eng.DeliverResult(1, 2, nil) {
		t.Fatal("delivered without a handler")
	}

	inst := mustWait(t, f.eng.CreateInstance(ctx, "Test.Picker", value.EmptyArray))
	if f.intercept != 1 {
		t.Fatalf("intercept calls = %d, want 1", f.intercept)
	}
	if !f.eng.DeliverResult(1, 2, nil) {
		t.Fatal("result not delivered")
	}
	obj, _ := f.eng.Marshaller().Instance(inst)
	if diff := cmp.Diff([]int{1, 2}, obj.(*Picker).results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	// a second handler replaces the first
	second := mustWait(t, f.eng.CreateInstance(ctx, "Test.Picker", value.EmptyArray))
	mustWait(t, f.eng.ReleaseInstance(ctx, inst))
	if f.eng.ResultHandler() == nil {
		t.Fatal("releasing a replaced handler cleared the current one")
	}
	mustWait(t, f.eng.ReleaseInstance(ctx, second))
	if f.eng.ResultHandler() != nil {
		t.Fatal("handler still registered after release")
	}
}

func TestInvokeWithWindowRegistersHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inst := mustWait(t, f.eng.CreateInstance(ctx, "Test.Picker", value.EmptyArray))

	mustWait(t, f.eng.InvokeMethod(ctx, inst, "pick", args(value.FromString("nothing"))))
	if f.intercept != 1 {
		t.Fatalf("intercept calls = %d, want 1", f.intercept)
	}

	win := value.ObjectOf("type", value.FromString("<window>"))
	mustWait(t, f.eng.InvokeMethod(ctx, inst, "pick", args(win)))
	if f.intercept != 2 {
		t.Fatalf("intercept calls = %d, want 2", f.intercept)
	}
}

func mustMember(t *testing.T, f *fixture, name string) *native.Member {
	t.Helper()
	typ, err := f.eng.Types().Lookup(testPkg + ".Counter")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	m, err := typ.Method(reflect.TypeOf(&Counter{}), name, 1)
	if err != nil {
		t.Fatalf("Method: %v", err)
	}
	return m
}
