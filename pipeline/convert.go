package pipeline

import (
	"encoding/json"
	"strconv"
	"time"
)

// Converters for flexible JSON values. API responses are decoded with
// json.Number, but embedders may hand us plain float64/string maps too.

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			// API serves some integer columns as "17.0"
			f, ferr := t.Float64()
			return int64(f), ferr == nil
		}
		return n, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// coerceValue converts a raw JSON value into a typed Value per the declared
// field type. nil and failed coercions both map to the explicit null; the
// second return reports a genuine coercion failure (non-nil input that did
// not fit the type).
func coerceValue(raw any, ft FieldType) (Value, bool) {
	if raw == nil {
		return Null(), true
	}
	switch ft {
	case TypeInt:
		if n, ok := toInt(raw); ok {
			return Int(n), true
		}
	case TypeFloat:
		if f, ok := toFloat(raw); ok {
			return Float(f), true
		}
	case TypeString:
		if s, ok := toString(raw); ok {
			return Str(s), true
		}
	case TypeTime:
		if s, ok := toString(raw); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return Time(t), true
			}
		}
	}
	return Null(), false
}

// stringOrEmpty reads a reference-row value as a string, with "" for a
// missing, null or non-string value.
func stringOrEmpty(row map[string]any, key string) string {
	raw, ok := row[key]
	if !ok || raw == nil {
		return ""
	}
	s, _ := toString(raw)
	return s
}
