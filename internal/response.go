package internal

import (
	"bytes"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/dmitrymomot/servant/pkg/cookie"
)

// Cache-Control values applied by the formatter.
const (
	CacheControlNever   = "max-age=0, no-cache, no-store"
	CacheControlHour    = "private, max-age=3600"
	CacheControlForever = "private, max-age=31536000"
)

// Response is the response under construction for one request.
type Response struct {
	Body    any         // nil, structured value, *static.CachedFile or []byte
	Header  http.Header // last write wins
	cookies *cookieSet
	jar     *cookie.Manager
	bytes   []byte
	Status  int // 0 until decided
}

func newResponse(jar *cookie.Manager) *Response {
	if jar == nil {
		jar = cookie.New()
	}
	return &Response{Header: make(http.Header), cookies: &cookieSet{}, jar: jar}
}

// StatusOrDefault returns Status, or the status the formatter would pick for
// the current body.
func (r *Response) StatusOrDefault() int {
	switch {
	case r.Status != 0:
		return r.Status
	case r.Body == nil && r.bytes == nil:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}

// SetCookie sets a response cookie; httpOnly hides it from scripts.
func (r *Response) SetCookie(name, value string, httpOnly bool) {
	r.cookies.set(name, cookie.Directive(value, httpOnly))
}

// DeleteCookie instructs the client to drop the cookie.
func (r *Response) DeleteCookie(name string) {
	r.cookies.set(name, cookie.Expired)
}

// Cookie returns the directive set for name.
func (r *Response) Cookie(name string) (string, bool) {
	return r.cookies.get(name)
}

// Bytes returns the formatted body. It is nil before formatting and for
// responses without a body.
func (r *Response) Bytes() []byte {
	return r.bytes
}

// cookieSet keeps cookie directives in first-set order.
type cookieSet struct {
	names      []string
	directives map[string]string
}

func (s *cookieSet) set(name, directive string) {
	if s.directives == nil {
		s.directives = make(map[string]string)
	}
	if _, ok := s.directives[name]; !ok {
		s.names = append(s.names, name)
	}
	s.directives[name] = directive
}

func (s *cookieSet) get(name string) (string, bool) {
	d, ok := s.directives[name]
	return d, ok
}

// CookieLines returns the rendered Set-Cookie values in order.
func (r *Response) CookieLines() []string {
	return r.cookies.lines(r.jar)
}

func (s *cookieSet) lines(m *cookie.Manager) []string {
	out := make([]string, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, m.Line(name, s.directives[name]))
	}
	return out
}

// Send writes a formatted response through net/http.
func (r *Response) Send(w http.ResponseWriter) error {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = slices.Clone(v)
	}
	for _, line := range r.CookieLines() {
		h.Add("Set-Cookie", line)
	}
	w.WriteHeader(r.StatusOrDefault())
	if len(r.bytes) == 0 {
		return nil
	}
	_, err := w.Write(r.bytes)
	return err
}

// WriteTo serializes a formatted response in HTTP/1.1 wire format: status
// line, headers, Set-Cookie lines, blank line and body.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer

	status := r.StatusOrDefault()
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(status))
	b.WriteByte(' ')
	b.WriteString(http.StatusText(status))
	b.WriteString("\r\n")

	for _, k := range slices.Sorted(maps.Keys(r.Header)) {
		for _, v := range r.Header[k] {
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	for _, line := range r.CookieLines() {
		b.WriteString("Set-Cookie: ")
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.Write(r.bytes)

	n, err := w.Write(b.Bytes())
	return int64(n), err
}
