package codec

import (
	"encoding/json"
	"reflect"
	"strconv"
)

// As converts a decoded scalar to T by T's underlying kind. Values already of
// type T are returned as they are; strings, json.Number and bools are parsed,
// so a number that went through Decode comes back as an int, and named types
// such as `type UserID string` work too. Anything else reports false.
func As[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var out T
	raw, ok := scalarText(v)
	if !ok {
		return out, false
	}
	rv := reflect.ValueOf(&out).Elem()
	if !setScalar(rv, raw) {
		var zero T
		return zero, false
	}
	return out, true
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func setScalar(rv reflect.Value, raw string) bool {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, rv.Type().Bits())
		if err != nil {
			return false
		}
		rv.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(raw, 10, rv.Type().Bits())
		if err != nil {
			return false
		}
		rv.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, rv.Type().Bits())
		if err != nil {
			return false
		}
		rv.SetFloat(v)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		rv.SetBool(v)
	default:
		return false
	}
	return true
}
