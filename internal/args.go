package internal

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/servant/pkg/codec"
)

// Args holds the named handler arguments: URL variables as strings and form
// variables as parsed from the query string or body (string, json.Number,
// bool, nil, []any or map[string]any).
type Args map[string]any

// Has reports whether the argument is present.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns the argument formatted as a string.
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the argument as an int, or 0 if it is not a whole number.
func (a Args) Int(name string) int {
	v, _ := Arg[int](a, name)
	return v
}

// Arg converts the named argument to T. The second result is false if the
// argument is missing or cannot be converted.
func Arg[T ~string | ~int | ~int64 | ~float64 | ~bool](a Args, name string) (T, bool) {
	raw, ok := a[name]
	if !ok {
		var zero T
		return zero, false
	}
	return codec.As[T](raw)
}

// ArgOr is Arg with a fallback for missing or malformed values.
func ArgOr[T ~string | ~int | ~int64 | ~float64 | ~bool](a Args, name string, def T) T {
	if v, ok := Arg[T](a, name); ok {
		return v
	}
	return def
}
