package cookie

import (
	"errors"
	"net/http"
	"strings"
)

// ErrNotFound is returned when a request carries no cookie with the given name.
var ErrNotFound = errors.New("cookie: not found")

// Expired is the directive that makes a browser drop a cookie.
const Expired = "deleted; Expires=Thu, 01-Jan-1970 00:00:01 GMT; HttpOnly"

// Manager renders Set-Cookie header lines with site-wide attributes.
type Manager struct {
	domain   string
	path     string
	secure   bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
// Cookies are scoped to path "/" by default.
func New(opts ...Option) *Manager {
	m := &Manager{path: "/"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		m.path = path
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Directive returns the directive for value, optionally hidden from scripts.
func Directive(value string, httpOnly bool) string {
	if httpOnly {
		return value + "; HttpOnly"
	}
	return value
}

// Line renders the Set-Cookie header value for name and directive.
func (m *Manager) Line(name, directive string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(directive)
	if m.path != "" {
		b.WriteString("; Path=")
		b.WriteString(m.path)
	}
	if m.domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(m.domain)
	}
	if m.secure {
		b.WriteString("; Secure")
	}
	switch m.sameSite {
	case http.SameSiteLaxMode:
		b.WriteString("; SameSite=Lax")
	case http.SameSiteStrictMode:
		b.WriteString("; SameSite=Strict")
	case http.SameSiteNoneMode:
		b.WriteString("; SameSite=None")
	}
	return b.String()
}

// Parse extracts request cookies from the Cookie headers.
// Malformed pairs are skipped; the first occurrence of a name wins.
func Parse(h http.Header) map[string]string {
	cookies := make(map[string]string)
	for _, c := range (&http.Request{Header: h}).Cookies() {
		if _, ok := cookies[c.Name]; !ok {
			cookies[c.Name] = c.Value
		}
	}
	return cookies
}

// Get returns the value of the named cookie from h.
func Get(h http.Header, name string) (string, error) {
	for _, c := range (&http.Request{Header: h}).Cookies() {
		if c.Name == name {
			return c.Value, nil
		}
	}
	return "", ErrNotFound
}
