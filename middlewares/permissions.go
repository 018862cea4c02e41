package middlewares

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/pkg/logger"
)

// Built-in permission tokens. They are not stored with users.
const (
	// PermissionPublic marks a route anyone can access, with or without a session.
	PermissionPublic = "PUBLIC"
	// PermissionUser marks a route any fully logged-in user can access.
	PermissionUser = "USER"
)

// PermissionsMiddleware checks the session against the permissions of the
// matched route before the handler runs.
type PermissionsMiddleware struct {
	known  map[string]struct{}
	logger *slog.Logger
}

// PermissionsOption configures PermissionsMiddleware.
type PermissionsOption func(*PermissionsMiddleware)

// WithKnownPermissions restricts the tokens routes may require. PUBLIC and
// USER are always known. Without this option any token is accepted.
func WithKnownPermissions(perms ...string) PermissionsOption {
	return func(m *PermissionsMiddleware) {
		if m.known == nil {
			m.known = map[string]struct{}{PermissionPublic: {}, PermissionUser: {}}
		}
		for _, p := range perms {
			m.known[p] = struct{}{}
		}
	}
}

// WithPermissionsLogger sets the logger for authorization failures.
func WithPermissionsLogger(l *slog.Logger) PermissionsOption {
	return func(m *PermissionsMiddleware) {
		if l != nil {
			m.logger = l
		}
	}
}

// Permissions returns the permission-checking middleware.
//
// A request passes when the route requires PUBLIC, or when the session is
// fully authenticated and the route requires USER or one of the session's
// permissions. Everything else fails with a 403 PermissionError.
//
// Every route must declare at least one permission; registration fails
// otherwise, so an unprotected route cannot ship by accident.
func Permissions(opts ...PermissionsOption) *PermissionsMiddleware {
	m := &PermissionsMiddleware{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *PermissionsMiddleware) Name() string { return "permissions" }

// RegisterRoute rejects routes without permissions or with unknown ones.
func (m *PermissionsMiddleware) RegisterRoute(r *internal.Route) error {
	perms := r.Attrs.Permissions
	if len(perms) == 0 {
		return ErrNoPermissions
	}
	if m.known == nil {
		return nil
	}
	for _, p := range perms {
		if _, ok := m.known[p]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPermission, p)
		}
	}
	return nil
}

// Start authorizes the request.
func (m *PermissionsMiddleware) Start(c *internal.Context) error {
	route := c.Route()
	if route == nil {
		// Unmatched requests become 404s.
		return nil
	}

	required := route.Attrs.Permissions
	if slices.Contains(required, PermissionPublic) {
		return nil
	}

	s := c.Session()
	if s.Authenticated() {
		if slices.Contains(required, PermissionUser) || s.HasAnyPermission(required) {
			return nil
		}
	}

	var held []string
	if s != nil {
		held = s.Permissions
	}
	m.logger.WarnContext(c, "AUTH-FAILURE",
		slog.String("route", route.Pattern),
		slog.Any("required", required),
		slog.Any("permissions", held),
		slog.Bool("authenticated", s.Authenticated()),
		slog.String("ip", c.IP()),
	)
	return &internal.PermissionError{Required: required}
}
