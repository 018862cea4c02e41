package internal

import (
	"fmt"
	"strings"
)

// ExtractorSource extracts a value from the request.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(*Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract iterates sources in order and returns the first non-empty value.
func (e Extractor) Extract(c *Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func present(v string) (string, bool) { return v, v != "" }

// FromHeader returns a source that reads from a request header.
func FromHeader(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		return present(c.Header(name))
	}
}

// FromQuery returns a source that reads from a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		return present(c.Request().Query(name))
	}
}

// FromCookie returns a source that reads from a request cookie.
func FromCookie(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		v, _ := c.Cookie(name)
		return present(v)
	}
}

// FromParam returns a source that reads from a URL variable.
func FromParam(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		return present(c.Param(name))
	}
}

// FromForm returns a source that reads from the parsed query or body.
func FromForm(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		v, ok := c.Request().Form[name]
		if !ok || v == nil {
			return "", false
		}
		return present(fmt.Sprint(v))
	}
}

// FromSession returns a source that reads from session data.
// Non-string values are formatted with fmt.Sprint.
func FromSession(key string) ExtractorSource {
	return func(c *Context) (string, bool) {
		val, ok := c.Session().Get(key)
		if !ok || val == nil {
			return "", false
		}
		if s, ok := val.(string); ok {
			return present(s)
		}
		return present(fmt.Sprint(val))
	}
}

// FromBearerToken returns a source that reads a Bearer token from the
// Authorization header. The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(c *Context) (string, bool) {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return present(auth[7:])
	}
}
