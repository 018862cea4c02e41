package internal

import (
	"log/slog"
	"net/url"
	"slices"
	"strings"
)

// HandlerFunc handles a request. args holds the URL variables and declared
// form variables of the route. The returned value becomes the response body:
// nil, a structured value (map, slice, struct), *static.CachedFile or []byte.
type HandlerFunc func(c *Context, args Args) (any, error)

// Attributes is the typed metadata attached to a route.
type Attributes struct {
	Logger      *slog.Logger // optional per-route logger
	Extra       map[string]any
	Permissions []string
}

// HasPermission reports whether perm is among the route's permissions.
func (a Attributes) HasPermission(perm string) bool {
	return slices.Contains(a.Permissions, perm)
}

// RouteOption configures a route at registration.
type RouteOption func(*routeConfig)

type routeConfig struct {
	attrs  Attributes
	params []string
}

// Params declares the handler's named parameters. Names matching a
// {placeholder} are URL variables; the rest are required form variables.
func Params(names ...string) RouteOption {
	return func(s *routeConfig) {
		s.params = append(s.params, names...)
	}
}

// Permissions sets the permission tokens required by the route.
func Permissions(perms ...string) RouteOption {
	return func(s *routeConfig) {
		s.attrs.Permissions = append(s.attrs.Permissions, perms...)
	}
}

// RouteLogger sets a logger used for the route instead of the server logger.
func RouteLogger(l *slog.Logger) RouteOption {
	return func(s *routeConfig) {
		s.attrs.Logger = l
	}
}

// Extra attaches an arbitrary attribute for custom middleware.
func Extra(key string, value any) RouteOption {
	return func(s *routeConfig) {
		if s.attrs.Extra == nil {
			s.attrs.Extra = make(map[string]any)
		}
		s.attrs.Extra[key] = value
	}
}

type segment struct {
	value   string // literal text or capture name
	capture bool
}

// Route binds a URL pattern to a handler. It is immutable once registered.
type Route struct {
	Handler  HandlerFunc
	Attrs    Attributes
	Pattern  string
	URLVars  []string // in pattern order
	FormVars []string // in declaration order
	segments []segment
}

func compileRoute(pattern string, h HandlerFunc, opts ...RouteOption) (*Route, error) {
	if h == nil {
		return nil, configError("route %q: nil handler", pattern)
	}
	if !strings.HasPrefix(pattern, "/") {
		return nil, configError("route %q: pattern must start with /", pattern)
	}

	var rc routeConfig
	for _, opt := range opts {
		opt(&rc)
	}

	r := &Route{Pattern: pattern, Handler: h, Attrs: rc.attrs}
	for _, part := range strings.Split(normalizePath(pattern)[1:], "/") {
		name, isVar := strings.CutPrefix(part, "{")
		if isVar {
			var closed bool
			name, closed = strings.CutSuffix(name, "}")
			if !closed || name == "" || strings.ContainsAny(name, "{}") {
				return nil, configError("route %q: malformed placeholder %q", pattern, part)
			}
			if slices.Contains(r.URLVars, name) {
				return nil, configError("route %q: duplicate placeholder %q", pattern, name)
			}
			r.URLVars = append(r.URLVars, name)
			r.segments = append(r.segments, segment{value: name, capture: true})
			continue
		}
		if strings.ContainsAny(part, "{}") {
			return nil, configError("route %q: placeholder must span a whole segment: %q", pattern, part)
		}
		r.segments = append(r.segments, segment{value: part})
	}

	for _, p := range rc.params {
		if p == "" || slices.Contains(r.URLVars, p) || slices.Contains(r.FormVars, p) {
			continue
		}
		r.FormVars = append(r.FormVars, p)
	}
	return r, nil
}

// match returns the captured URL variables, in pattern order, if the
// escaped path matches.
func (r *Route) match(parts []string) ([]string, bool) {
	if len(parts) != len(r.segments) {
		return nil, false
	}
	var values []string
	for i, seg := range r.segments {
		part := parts[i]
		if seg.capture {
			if part == "" {
				return nil, false
			}
			if v, err := url.PathUnescape(part); err == nil {
				part = v
			}
			values = append(values, part)
			continue
		}
		if part != seg.value {
			if v, err := url.PathUnescape(part); err != nil || v != seg.value {
				return nil, false
			}
		}
	}
	return values, true
}

// normalizePath strips one trailing slash except from the root.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return p[:len(p)-1]
	}
	return p
}

// RouteTable resolves paths to routes in registration order.
type RouteTable struct {
	routes []*Route
}

// Add registers a compiled route. Patterns equal after normalization, such
// as /x and /x/, are rejected.
func (t *RouteTable) Add(r *Route) error {
	pattern := normalizePath(r.Pattern)
	for _, existing := range t.routes {
		if normalizePath(existing.Pattern) == pattern {
			return configError("route %q registered twice", r.Pattern)
		}
	}
	t.routes = append(t.routes, r)
	return nil
}

// Resolve returns the first registered route matching the escaped path and
// its URL variable values. ok is false when nothing matches.
func (t *RouteTable) Resolve(path string) (*Route, []string, bool) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	parts := strings.Split(normalizePath(path)[1:], "/")
	for _, r := range t.routes {
		if values, ok := r.match(parts); ok {
			return r, values, true
		}
	}
	return nil, nil, false
}

// Routes returns the registered routes in registration order.
func (t *RouteTable) Routes() []*Route {
	return slices.Clone(t.routes)
}

// Len returns the number of registered routes.
func (t *RouteTable) Len() int {
	return len(t.routes)
}
