package internal

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/servant/pkg/session"
	"github.com/dmitrymomot/servant/pkg/static"
)

// requestNumberKey is the context key of the per-request log number.
type requestNumberKey struct{}

// Context is the per-request state shared by middleware and the handler.
// It implements context.Context by delegating to the inbound request
// context, so it can be passed to store and client calls directly.
//
// A Context is owned by a single request and must not be retained after
// Dispatch returns.
type Context struct {
	parent   context.Context
	request  *Request
	ip       string
	response *Response
	route    *Route
	args     Args
	logger   *slog.Logger
	values   map[any]any
	static   *static.Registry
	sessions *SessionManager
	session  *session.Session
	failure  error

	// token is the session token the request arrived with.
	token string
	// dropToken marks token for deletion at completion (logout or rotation).
	dropToken bool

	stage Stage
	id    int
}

// Deadline delegates to the request context.
func (c *Context) Deadline() (time.Time, bool) { return c.parent.Deadline() }

// Done delegates to the request context.
func (c *Context) Done() <-chan struct{} { return c.parent.Done() }

// Err delegates to the request context. For the pipeline outcome see Failure.
func (c *Context) Err() error { return c.parent.Err() }

// Value returns values stored with Set before consulting the request context.
func (c *Context) Value(key any) any {
	if key == (requestNumberKey{}) {
		return c.id
	}
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.parent.Value(key)
}

// ID returns the request number used to correlate log lines.
func (c *Context) ID() int { return c.id }

// Request returns the parsed request.
func (c *Context) Request() *Request { return c.request }

// Response returns the response under construction.
func (c *Context) Response() *Response { return c.response }

// Route returns the matched route, or nil when the request will be a 404.
func (c *Context) Route() *Route { return c.route }

// Stage returns the current pipeline stage.
func (c *Context) Stage() Stage { return c.stage }

// Failure returns the error that aborted the pipeline, if any.
func (c *Context) Failure() error { return c.failure }

// Args returns the handler arguments assembled for the route.
func (c *Context) Args() Args { return c.args }

// Param returns a URL variable of the matched route.
func (c *Context) Param(name string) string {
	if c.route == nil || !slices.Contains(c.route.URLVars, name) {
		return ""
	}
	return c.args.String(name)
}

// Logger returns the route logger if the route has one, else the server logger.
func (c *Context) Logger() *slog.Logger {
	if c.route != nil && c.route.Attrs.Logger != nil {
		return c.route.Attrs.Logger
	}
	return c.logger
}

// IP returns the client address.
func (c *Context) IP() string { return c.ip }

// Header returns a request header.
func (c *Context) Header(name string) string { return c.request.Header.Get(name) }

// SetHeader sets a response header.
func (c *Context) SetHeader(name, value string) { c.response.Header.Set(name, value) }

// Cookie returns a request cookie.
func (c *Context) Cookie(name string) (string, bool) {
	v, ok := c.request.Cookies[name]
	return v, ok
}

// SetCookie sets a response cookie.
func (c *Context) SetCookie(name, value string, httpOnly bool) {
	c.response.SetCookie(name, value, httpOnly)
}

// DeleteCookie instructs the client to drop a cookie.
func (c *Context) DeleteCookie(name string) {
	c.response.DeleteCookie(name)
}

// Set stores a request-scoped value, visible through Value and Get.
func (c *Context) Set(key, value any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = value
}

// Get returns a request-scoped value stored with Set.
func (c *Context) Get(key any) any {
	return c.values[key]
}

// Session returns the session, or nil when the request has none.
func (c *Context) Session() *session.Session { return c.session }

// SetSession replaces the session. Loading is done by the session manager;
// handlers normally use NewSession.
func (c *Context) SetSession(s *session.Session) { c.session = s }

// SessionToken returns the token the request carried.
func (c *Context) SessionToken() string { return c.token }

// NewSession starts a fresh session for a user, typically after login. It
// always issues a new random token; a session the request arrived with is
// deleted when the request completes.
func (c *Context) NewSession(userID, login, name string, status session.AuthStatus) *session.Session {
	s := session.New(uuid.NewString(), userID, login, name, status)
	s.IP = c.IP()
	if c.token != "" {
		c.dropToken = true
	}
	c.session = s
	return s
}

// DeleteSession logs the request out: the stored session is removed when the
// request completes and the client is told to drop its cookie.
func (c *Context) DeleteSession() {
	c.session = nil
	if c.token != "" {
		c.dropToken = true
	}
	if c.sessions != nil {
		c.response.DeleteCookie(c.sessions.CookieName())
	}
}

// Static returns a file from the static registry.
func (c *Context) Static(key, rel string) (*static.CachedFile, error) {
	if c.static == nil {
		return nil, configError("static key %q: no static registry", key)
	}
	f, err := c.static.Get(c, key, rel)
	if err == nil {
		return f, nil
	}
	switch {
	case errors.Is(err, static.ErrNotFound):
		return nil, &NotFoundError{Path: rel, Err: err}
	case errors.Is(err, static.ErrUnknownKey), errors.Is(err, static.ErrUnknownMimeType):
		return nil, &ConfigurationError{Reason: "static file " + rel, Err: err}
	}
	return nil, err
}
