package testbed

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TestMethods echoes its arguments, or fails on request.
type TestMethods struct{}

func fail(what, value string) error {
	Logger().Info("failed to " + what + ": " + value)
	return fmt.Errorf("failed to %s: %s", what, value)
}

func StaticLog(value string, failing bool) error {
	if failing {
		return fail("log", value)
	}
	Logger().Info(value)
	return nil
}

func StaticEcho(value string, failing bool) (string, error) {
	if failing {
		return "", fail("echo", value)
	}
	Logger().Info(value)
	return value, nil
}

func StaticEchoData(data *TestStruct, failing bool) (*TestStruct, error) {
	if failing {
		return nil, fail("echo", "data")
	}
	Logger().Info("(data)")
	return data, nil
}

func (m *TestMethods) Log(value string, failing bool) error {
	return StaticLog(value, failing)
}

func (m *TestMethods) Echo(value string, failing bool) (string, error) {
	return StaticEcho(value, failing)
}

func (m *TestMethods) EchoData(data *TestStruct, failing bool) (*TestStruct, error) {
	return StaticEchoData(data, failing)
}

func (m *TestMethods) EchoDataList(list []*TestStruct, failing bool) ([]*TestStruct, error) {
	if failing {
		return nil, fail("echo", "data list")
	}
	Logger().Info("(data list)", zap.Int("len", len(list)))
	return list, nil
}

func (m *TestMethods) EchoNullableInt(v *int) *int    { return v }
func (m *TestMethods) EchoNullableBool(v *bool) *bool { return v }
func (m *TestMethods) EchoUUID(v uuid.UUID) uuid.UUID { return v }
