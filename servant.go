package servant

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/pkg/cookie"
	"github.com/dmitrymomot/servant/pkg/health"
	"github.com/dmitrymomot/servant/pkg/logger"
	"github.com/dmitrymomot/servant/pkg/session"
)

// Type aliases - public API
type (
	// ServerConfig collects routes, middleware and static directories.
	ServerConfig = internal.ServerConfig

	// ServerOption configures a ServerConfig.
	ServerOption = internal.ServerOption

	// Settings is the environment-driven server configuration.
	Settings = internal.Settings

	// Dispatcher runs requests through the middleware pipeline.
	Dispatcher = internal.Dispatcher

	// App is the HTTP shell around a Dispatcher.
	App = internal.App

	// Option configures an App.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Context is the per-request context handed to handlers and middleware.
	Context = internal.Context

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Args holds the declared URL and form variables of a request.
	Args = internal.Args

	// Route is a compiled route.
	Route = internal.Route

	// RouteOption configures a route.
	RouteOption = internal.RouteOption

	// Request is the parsed request.
	Request = internal.Request

	// Response is the response under construction.
	Response = internal.Response

	// Stage names the step of the request lifecycle.
	Stage = internal.Stage

	// Middleware is any value implementing Starter, Completer or RouteRegistrar.
	Middleware = internal.Middleware

	// Starter runs before the handler.
	Starter = internal.Starter

	// Completer runs after the handler, for every request.
	Completer = internal.Completer

	// RouteRegistrar inspects routes as they are registered.
	RouteRegistrar = internal.RouteRegistrar

	// StartFunc adapts a function to Starter.
	StartFunc = internal.StartFunc

	// CompleteFunc adapts a function to Completer.
	CompleteFunc = internal.CompleteFunc

	// SessionManager loads and persists sessions.
	SessionManager = internal.SessionManager

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// IPPolicy decides what happens on a session IP mismatch.
	IPPolicy = internal.IPPolicy

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// HTTPError is an explicit status chosen by a handler.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// Extractor pulls a value from the first source that has one.
	Extractor = internal.Extractor

	// ExtractorSource reads one candidate value from the request.
	ExtractorSource = internal.ExtractorSource
)

// Lifecycle stages.
const (
	StageRouting    = internal.StageRouting
	StageStarting   = internal.StageStarting
	StageHandling   = internal.StageHandling
	StageCompleting = internal.StageCompleting
	StageFormatting = internal.StageFormatting
	StageDone       = internal.StageDone
	StageError      = internal.StageError
)

// IP mismatch policies.
const (
	IPMismatchAllow  = internal.IPMismatchAllow
	IPMismatchReject = internal.IPMismatchReject
)

// Errors for checking return values.
var (
	ErrConfiguration = internal.ErrConfiguration
	ErrBodyTooLarge  = internal.ErrBodyTooLarge

	ErrSessionNotFound        = session.ErrNotFound
	ErrSessionIdentityChanged = session.ErrIdentityChanged
)

// Constructors

// NewServerConfig creates an empty server configuration.
//
// Example:
//
//	cfg := servant.NewServerConfig(servant.WithSettings(settings), servant.WithLogger(log))
//	cfg.Use(servant.NewSessionManagerFrom(settings, store))
//	cfg.AddRoute("/click", click, servant.Params("x", "y"))
//	d, err := cfg.Build()
func NewServerConfig(opts ...ServerOption) *ServerConfig {
	return internal.NewServerConfig(opts...)
}

// New wraps a built dispatcher in an HTTP application.
//
// Example:
//
//	app := servant.New(d, servant.WithHealthChecks())
//	err := app.Run(":8080", servant.Logger(log))
func New(d *Dispatcher, opts ...Option) *App {
	return internal.New(d, opts...)
}

// NewSessionManager creates the session middleware for store.
func NewSessionManager(store SessionStore, opts ...SessionOption) *SessionManager {
	return internal.NewSessionManager(store, opts...)
}

// NewSessionManagerFrom creates the session middleware configured from settings.
func NewSessionManagerFrom(s Settings, store SessionStore, opts ...SessionOption) *SessionManager {
	return internal.NewSessionManagerFrom(s, store, opts...)
}

// NewRequest builds a request without a network connection.
// Useful for tests and for driving a Dispatcher directly.
func NewRequest(method, rawURL string, header map[string][]string, body []byte, remoteAddr string) (*Request, error) {
	return internal.NewRequest(method, rawURL, header, body, remoteAddr)
}

// Server options

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) ServerOption {
	return internal.WithLogger(l)
}

// WithVersion sets the application version. Release versions enable
// long-lived caching of static files.
func WithVersion(v string) ServerOption {
	return internal.WithVersion(v)
}

// WithCookies sets the cookie manager used for Set-Cookie lines.
func WithCookies(m *cookie.Manager) ServerOption {
	return internal.WithCookies(m)
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return internal.WithMaxBodyBytes(n)
}

// WithTrustForwarded takes the client address from X-Forwarded-For. Use it
// only behind a proxy that overwrites the header.
func WithTrustForwarded(trust bool) ServerOption {
	return internal.WithTrustForwarded(trust)
}

// WithSettings applies environment settings.
func WithSettings(s Settings) ServerOption {
	return internal.WithSettings(s)
}

// Route options

// Params declares the variables a route accepts. Names that appear in the
// pattern are URL variables; the rest are read from the query string or
// form body.
func Params(names ...string) RouteOption {
	return internal.Params(names...)
}

// Permissions sets the permissions a route requires.
func Permissions(perms ...string) RouteOption {
	return internal.Permissions(perms...)
}

// RouteLogger sets a logger for requests matching the route.
func RouteLogger(l *slog.Logger) RouteOption {
	return internal.RouteLogger(l)
}

// Extra attaches an arbitrary attribute to the route.
func Extra(key string, value any) RouteOption {
	return internal.Extra(key, value)
}

// Session options

// WithSessionCookieName sets the session cookie name. Defaults to "sid".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionCheckIP toggles comparing the request IP with the session IP.
func WithSessionCheckIP(enabled bool) SessionOption {
	return internal.WithSessionCheckIP(enabled)
}

// WithIPPolicy sets what happens on an IP mismatch.
func WithIPPolicy(p IPPolicy) SessionOption {
	return internal.WithIPPolicy(p)
}

// App options

// WithAppLogger sets the logger of the HTTP shell.
func WithAppLogger(l *slog.Logger) Option {
	return internal.WithAppLogger(l)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	servant.WithHealthChecks(
//	    servant.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics exposes g on path in the Prometheus text format.
func WithMetrics(path string, g prometheus.Gatherer) Option {
	return internal.WithMetrics(path, g)
}

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	servant.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an error that renders with the given status.
func NewHTTPError(code int, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, opts...)
}

// WithDetail sets the JSON detail body of an HTTPError.
func WithDetail(detail any) HTTPErrorOption {
	return internal.WithDetail(detail)
}

// WithMessage sets the message of an HTTPError.
func WithMessage(msg string) HTTPErrorOption {
	return internal.WithMessage(msg)
}

// WithError wraps an underlying error.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// ErrBadRequest returns a 400 error.
func ErrBadRequest(opts ...HTTPErrorOption) *HTTPError { return internal.ErrBadRequest(opts...) }

// ErrUnauthorized returns a 401 error.
func ErrUnauthorized(opts ...HTTPErrorOption) *HTTPError { return internal.ErrUnauthorized(opts...) }

// ErrForbidden returns a 403 error.
func ErrForbidden(opts ...HTTPErrorOption) *HTTPError { return internal.ErrForbidden(opts...) }

// ErrNotFound returns a 404 error.
func ErrNotFound(opts ...HTTPErrorOption) *HTTPError { return internal.ErrNotFound(opts...) }

// ErrConflict returns a 409 error.
func ErrConflict(opts ...HTTPErrorOption) *HTTPError { return internal.ErrConflict(opts...) }

// ErrInternal returns a 500 error.
func ErrInternal(opts ...HTTPErrorOption) *HTTPError { return internal.ErrInternal(opts...) }

// StatusOf returns the HTTP status an error renders with.
func StatusOf(err error) int {
	return internal.StatusOf(err)
}

// Context helpers

// ContextValue retrieves a typed value stored with Context.Set.
// Returns the zero value of T if the key is not found or type assertion fails.
//
// Example:
//
//	type tenantKey struct{}
//
//	tenant := servant.ContextValue[string](c, tenantKey{})
func ContextValue[T any](c *Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Arg returns a declared variable converted to T.
//
// Example:
//
//	x, ok := servant.Arg[int](args, "x")
func Arg[T ~string | ~int | ~int64 | ~float64 | ~bool](a Args, name string) (T, bool) {
	return internal.Arg[T](a, name)
}

// ArgOr returns a declared variable converted to T, or def.
func ArgOr[T ~string | ~int | ~int64 | ~float64 | ~bool](a Args, name string, def T) T {
	return internal.ArgOr(a, name, def)
}

// RequestNumberExtractor adds the per-request number to log records as "req".
func RequestNumberExtractor() ContextExtractor {
	return internal.RequestNumberExtractor()
}

// SessionValue is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
//
// Example:
//
//	theme, err := servant.SessionValue[string](sess, "theme")
func SessionValue[T any](sess *Session, key string) (T, error) {
	return session.Value[T](sess, key)
}

// SessionValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
//
// Example:
//
//	theme := servant.SessionValueOr(sess, "theme", "light")
func SessionValueOr[T any](sess *Session, key string, defaultVal T) T {
	return session.ValueOr(sess, key, defaultVal)
}
