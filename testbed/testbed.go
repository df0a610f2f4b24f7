// Package testbed holds native fixture types for exercising a bridge end
// to end. Register makes them reachable under the virtual namespace "Test".
package testbed

import (
	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/event"
	"github.com/wippyai/hostbridge/native"
)

// Namespace is the virtual namespace the fixtures are registered under.
const Namespace = "Test"

// Package is the Go import path the namespace maps to.
const Package = "github.com/wippyai/hostbridge/testbed"

// Register adds every fixture type, listener shape and by-value type to eng.
func Register(eng *bridge.Engine) error {
	if err := eng.Mapper().Register(Namespace, Package); err != nil {
		return err
	}
	types := eng.Types()

	regs := []func() error{
		func() error {
			_, err := native.Register[TestMethods](types,
				native.Static("StaticLog", StaticLog),
				native.Static("StaticEcho", StaticEcho),
				native.Static("StaticEchoData", StaticEchoData),
			)
			return err
		},
		func() error {
			_, err := native.Register[TestAsync](types,
				native.Constructor(NewTestAsync),
				native.Static("StaticLogAsync", StaticLogAsync),
				native.Static("StaticEchoAsync", StaticEchoAsync),
				native.Static("StaticEchoDataAsync", StaticEchoDataAsync),
			)
			return err
		},
		func() error {
			_, err := native.Register[TestProperties](types,
				native.Constructor(NewTestProperties),
				native.Static("GetStaticStructProperty", GetStaticStructProperty),
				native.Static("SetStaticStructProperty", SetStaticStructProperty),
				native.Static("GetStaticListProperty", GetStaticListProperty),
				native.Static("SetStaticListProperty", SetStaticListProperty),
				native.Static("GetStaticDoubleProperty", GetStaticDoubleProperty),
				native.Static("SetStaticDoubleProperty", SetStaticDoubleProperty),
				native.Static("GetStaticReadonlyIntProperty", GetStaticReadonlyIntProperty),
				native.Static("GetStaticEnumProperty", GetStaticEnumProperty),
				native.Static("SetStaticEnumProperty", SetStaticEnumProperty),
				native.Static("GetStaticBoolProperty", GetStaticBoolProperty),
				native.Static("SetStaticBoolProperty", SetStaticBoolProperty),
			)
			return err
		},
		func() error {
			_, err := native.Register[TestStruct](types,
				native.Constructor(NewTestStruct),
				native.Constructor(NewTestStructWith),
			)
			return err
		},
		func() error {
			_, err := native.Register[TestEvents](types,
				native.Constructor(NewTestEvents),
				native.Static("AddStaticEventListener", AddStaticEventListener),
				native.Static("RemoveStaticEventListener", RemoveStaticEventListener),
				native.Static("RaiseStaticEvent", RaiseStaticEvent),
			)
			return err
		},
		func() error {
			_, err := native.Register[TestContext](types,
				native.Constructor(NewTestContext),
				native.Static("TestStaticMethodAppContext", TestStaticMethodAppContext),
				native.Static("TestStaticMethodAppContext2", TestStaticMethodAppContext2),
				native.Static("TestStaticMethodWindowContext", TestStaticMethodWindowContext),
				native.Static("TestStaticMethodWindowContext2", TestStaticMethodWindowContext2),
			)
			return err
		},
		func() error {
			_, err := native.Register[TestOuter](types)
			return err
		},
		func() error {
			_, err := native.Register[InnerClass](types)
			return err
		},
		func() error {
			return event.RegisterShape(eng.Shapes(), func(e *event.Emitter) TestEventListener {
				return &testEventAdapter{e}
			})
		},
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}

	for _, name := range []string{"TestStruct", "TestOneWayStruct", "TestEvent", "InnerStruct"} {
		eng.RegisterMarshalByValue(name)
	}
	return nil
}
