package internal

import "github.com/dmitrymomot/servant/pkg/codec"

// ContextValue returns the value stored with Context.Set under key as T.
func ContextValue[T any](c *Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param returns a URL variable converted to T, or the zero value.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c *Context, name string) T {
	v, _ := codec.As[T](c.Param(name))
	return v
}

// Query returns a query string value converted to T, or the zero value.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c *Context, name string) T {
	v, _ := codec.As[T](c.Request().Query(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c *Context, name string, defaultValue T) T {
	raw := c.Request().Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := codec.As[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}
