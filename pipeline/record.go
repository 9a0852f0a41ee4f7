package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/openbus-tools/stride/geo"
)

// FieldType is the semantic type of a schema field.
type FieldType int

const (
	TypeInt FieldType = iota
	TypeFloat
	TypeString
	TypeTime
)

// Field is one (name, type) pair of a Schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered list of fields a collection exposes.
type Schema []Field

// Index returns the position of the named field, or -1 if absent.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the named field exists in the schema.
func (s Schema) Has(name string) bool { return s.Index(name) >= 0 }

type valueKind int

const (
	kindNull valueKind = iota
	kindInt
	kindFloat
	kindString
	kindTime
)

// Value is a typed scalar or the explicit null. The zero Value is null.
type Value struct {
	kind valueKind
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Null returns the explicit "no value".
func Null() Value { return Value{} }

// Int wraps an integer value.
func Int(v int64) Value { return Value{kind: kindInt, i: v} }

// Float wraps a floating-point value.
func Float(v float64) Value { return Value{kind: kindFloat, f: v} }

// Str wraps a string value.
func Str(v string) Value { return Value{kind: kindString, s: v} }

// Time wraps a timestamp value.
func Time(v time.Time) Value { return Value{kind: kindTime, t: v} }

// IsNull reports whether the value is the explicit null.
func (v Value) IsNull() bool { return v.kind == kindNull }

// AsInt returns the integer payload if the value holds one.
func (v Value) AsInt() (int64, bool) {
	if v.kind != kindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the numeric payload of an int or float value.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case kindFloat:
		return v.f, true
	case kindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsString returns the string payload if the value holds one.
func (v Value) AsString() (string, bool) {
	if v.kind != kindString {
		return "", false
	}
	return v.s, true
}

// AsTime returns the timestamp payload if the value holds one.
func (v Value) AsTime() (time.Time, bool) {
	if v.kind != kindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case kindNull:
		return "NULL"
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case kindString:
		return v.s
	case kindTime:
		return v.t.Format(time.RFC3339)
	}
	return ""
}

// CoerceInt attempts integer coercion: ints pass through, floats truncate,
// numeric strings parse. Everything else (including null) fails.
func (v Value) CoerceInt() (int64, bool) {
	switch v.kind {
	case kindInt:
		return v.i, true
	case kindFloat:
		return int64(v.f), true
	case kindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// CoerceTime returns the value as a timestamp, parsing ISO-8601 strings.
func (v Value) CoerceTime() (time.Time, bool) {
	switch v.kind {
	case kindTime:
		return v.t, true
	case kindString:
		t, err := time.Parse(time.RFC3339, v.s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// Feature is one record of a collection: values aligned with the schema plus
// an optional point geometry.
type Feature struct {
	Values []Value
	Point  *geo.Point
}

// FeatureCollection is an ordered sequence of features sharing one schema.
type FeatureCollection struct {
	Schema   Schema
	CRS      string
	Features []Feature
}

// NewFeatureCollection creates an empty collection with the given schema.
func NewFeatureCollection(schema Schema, crs string) *FeatureCollection {
	return &FeatureCollection{Schema: schema, CRS: crs}
}

// Value returns the named field of feature i, or null if the field is absent.
func (fc *FeatureCollection) Value(i int, name string) Value {
	idx := fc.Schema.Index(name)
	if idx < 0 || idx >= len(fc.Features[i].Values) {
		return Null()
	}
	return fc.Features[i].Values[idx]
}
