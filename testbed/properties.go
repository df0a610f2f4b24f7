package testbed

import (
	"net/url"
	"sync"

	"github.com/google/uuid"
)

var statics struct {
	structValue *TestStruct
	list        []string
	double      float64
	enum        TestEnum
	boolean     bool
	mu          sync.Mutex
}

func GetStaticStructProperty() *TestStruct {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	return statics.structValue
}

func SetStaticStructProperty(v *TestStruct) {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	statics.structValue = v
}

func GetStaticListProperty() []string {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	return statics.list
}

func SetStaticListProperty(v []string) {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	statics.list = v
}

func GetStaticDoubleProperty() float64 {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	return statics.double
}

func SetStaticDoubleProperty(v float64) {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	statics.double = v
}

func GetStaticReadonlyIntProperty() int { return 10 }

func GetStaticEnumProperty() TestEnum {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	return statics.enum
}

func SetStaticEnumProperty(v TestEnum) {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	statics.enum = v
}

func GetStaticBoolProperty() bool {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	return statics.boolean
}

func SetStaticBoolProperty(v bool) {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	statics.boolean = v
}

// TestProperties exposes one property per supported value shape.
type TestProperties struct {
	structValue    *TestStruct
	uri            *url.URL
	nullableInt    *int
	nullableDouble *float64
	list           []string
	readonlyList   []string
	double         float64
	enum           TestEnum
	uuid           uuid.UUID
	boolean        bool
}

func NewTestProperties() *TestProperties {
	return &TestProperties{readonlyList: []string{"One", "Two", "Three"}}
}

func (p *TestProperties) GetStructProperty() *TestStruct  { return p.structValue }
func (p *TestProperties) SetStructProperty(v *TestStruct) { p.structValue = v }
func (p *TestProperties) GetListProperty() []string       { return p.list }
func (p *TestProperties) SetListProperty(v []string)      { p.list = v }
func (p *TestProperties) GetReadonlyListProperty() []string {
	return p.readonlyList
}
func (p *TestProperties) GetDoubleProperty() float64           { return p.double }
func (p *TestProperties) SetDoubleProperty(v float64)          { p.double = v }
func (p *TestProperties) GetReadonlyIntProperty() int          { return 20 }
func (p *TestProperties) GetEnumProperty() TestEnum            { return p.enum }
func (p *TestProperties) SetEnumProperty(v TestEnum)           { p.enum = v }
func (p *TestProperties) GetBoolProperty() bool                { return p.boolean }
func (p *TestProperties) SetBoolProperty(v bool)               { p.boolean = v }
func (p *TestProperties) GetNullableIntProperty() *int         { return p.nullableInt }
func (p *TestProperties) SetNullableIntProperty(v *int)        { p.nullableInt = v }
func (p *TestProperties) GetNullableDoubleProperty() *float64  { return p.nullableDouble }
func (p *TestProperties) SetNullableDoubleProperty(v *float64) { p.nullableDouble = v }
func (p *TestProperties) GetUuidProperty() uuid.UUID           { return p.uuid }
func (p *TestProperties) SetUuidProperty(v uuid.UUID)          { p.uuid = v }
func (p *TestProperties) GetUriProperty() *url.URL             { return p.uri }
func (p *TestProperties) SetUriProperty(v *url.URL)            { p.uri = v }

func (p *TestProperties) GetOneWayStructProperty() TestOneWayStruct {
	return TestOneWayStruct{value: "test"}
}
