package testbed

import (
	"fmt"
	"time"
)

// TestStruct is marshalled by value.
type TestStruct struct {
	value *time.Time
}

func NewTestStruct() *TestStruct { return &TestStruct{} }

func NewTestStructWith(value *time.Time) *TestStruct {
	return &TestStruct{value: value}
}

func (s *TestStruct) GetValue() *time.Time  { return s.value }
func (s *TestStruct) SetValue(v *time.Time) { s.value = v }

func (s *TestStruct) UpdateValue(v *time.Time) { s.value = v }

func (s *TestStruct) ToXML() string {
	if s.value == nil {
		return "<value></value>"
	}
	return fmt.Sprintf("<value>%s</value>", s.value.UTC().Format(time.RFC3339))
}

// TestOneWayStruct is marshalled by value but has no setters, so it only
// travels out of the bridge intact.
type TestOneWayStruct struct {
	value string
}

func (s TestOneWayStruct) GetValue() string { return s.value }

// TestEnum values.
type TestEnum int

const (
	TestEnumZero TestEnum = iota
	TestEnumOne
	TestEnumTwo
	TestEnumThree
)

// TestOuter holds a referenced and a copied inner type.
type TestOuter struct {
	innerClass  *InnerClass
	innerStruct *InnerStruct
	innerEnum   InnerEnum
}

// InnerClass is marshalled by handle.
type InnerClass struct{ value int }

func (c *InnerClass) GetValue() int  { return c.value }
func (c *InnerClass) SetValue(v int) { c.value = v }

// InnerStruct is marshalled by value.
type InnerStruct struct{ value int }

func (s *InnerStruct) GetValue() int  { return s.value }
func (s *InnerStruct) SetValue(v int) { s.value = v }

type InnerEnum int

const (
	InnerEnumZero InnerEnum = iota
	InnerEnumOne
	InnerEnumTwo
	InnerEnumThree
)

func (o *TestOuter) GetInnerClassProperty() *InnerClass    { return o.innerClass }
func (o *TestOuter) SetInnerClassProperty(v *InnerClass)   { o.innerClass = v }
func (o *TestOuter) GetInnerStructProperty() *InnerStruct  { return o.innerStruct }
func (o *TestOuter) SetInnerStructProperty(v *InnerStruct) { o.innerStruct = v }
func (o *TestOuter) GetInnerEnumProperty() InnerEnum       { return o.innerEnum }
func (o *TestOuter) SetInnerEnumProperty(v InnerEnum)      { o.innerEnum = v }
