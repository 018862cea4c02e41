package middlewares

import "errors"

// Route registration errors returned by Permissions.
var (
	// ErrNoPermissions is returned for routes registered without a
	// permission requirement. Public routes must say so with PUBLIC.
	ErrNoPermissions = errors.New("middlewares: route declares no permissions")

	// ErrUnknownPermission is returned for permission tokens outside the
	// configured allow-list.
	ErrUnknownPermission = errors.New("middlewares: unknown permission")
)
