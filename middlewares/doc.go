// Package middlewares provides pipeline middleware for servant servers.
//
// Each middleware implements some of internal.Starter, internal.Completer
// and internal.RouteRegistrar and is registered with ServerConfig.Use.
// Registration order is execution order for both phases.
//
// # Permissions
//
// Permissions checks the session against the route's permission list before
// the handler runs, and refuses at registration time any route that declares
// no permissions:
//
//	cfg.Use(middlewares.Permissions(middlewares.WithKnownPermissions("admin")))
//	cfg.AddRoute("/", index, servant.Permissions(middlewares.PermissionPublic))
//
// # Request ID
//
// RequestID reuses an upstream X-Request-ID or generates a ULID. Add
// RequestIDExtractor to the logger to tag every record with it:
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//
// # Logging, Security Headers, Metrics
//
// Logging writes one access log record per request. SecurityHeaders sets
// the usual browser hardening headers on every response, error pages
// included. Metrics counts requests and observes latency per route pattern
// for Prometheus.
package middlewares
