package codec

import (
	"reflect"
)

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func toInt64(v any) (int64, error) {
	if n, ok := v.(int64); ok {
		return n, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, &UnsupportedTypeError{Reason: "cannot encode a nil value as an integer schema"}
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	default:
		return 0, &UnsupportedTypeError{Type: rv.Type(), Reason: "not an integer type"}
	}
}

func toFloat64(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, &UnsupportedTypeError{Reason: "cannot encode a nil value as a floating-point schema"}
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	default:
		return 0, &UnsupportedTypeError{Type: rv.Type(), Reason: "not a floating-point type"}
	}
}

// intoReflectInt converts n into a value of Go integer type t (signed or
// unsigned, any width), for decode call sites that were built against a
// concrete integer-typed field or slice element.
func intoReflectInt(n int64, t reflect.Type) any {
	if t == nil {
		return n
	}
	rv := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		rv.SetUint(uint64(n))
	default:
		rv.SetInt(n)
	}
	return rv.Interface()
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

func indexOfString(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
