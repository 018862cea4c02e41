package internal

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/servant/pkg/cookie"
	"github.com/dmitrymomot/servant/pkg/logger"
	"github.com/dmitrymomot/servant/pkg/session"
	"github.com/dmitrymomot/servant/pkg/static"
)

// Settings is the environment configuration of a server.
type Settings struct {
	AppVersion    string `env:"APP_VERSION" envDefault:"dev" yaml:"app_version"`
	SessionCookie string `env:"SESSION_COOKIE" envDefault:"sid" yaml:"session_cookie"`
	CookieDomain  string `env:"COOKIE_DOMAIN" yaml:"cookie_domain"`
	MaxBodyBytes  int64  `env:"MAX_BODY_BYTES" envDefault:"1048576" yaml:"max_body_bytes"`
	CheckIP       bool   `env:"CHECK_IP" envDefault:"true" yaml:"check_ip"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false" yaml:"cookie_secure"`
	// TrustForwarded takes the client address from X-Forwarded-For. Enable
	// only behind a proxy that overwrites the header.
	TrustForwarded bool `env:"TRUST_FORWARDED" envDefault:"false" yaml:"trust_forwarded"`
}

// ServerConfig collects routes, middleware and static directories, then
// builds the Dispatcher. Registration is not safe for concurrent use and
// ends with Build; later registrations fail with ErrConfiguration.
type ServerConfig struct {
	routes   RouteTable
	pipeline pipeline
	static   *static.Registry
	sessions *SessionManager
	jar      *cookie.Manager
	logger   *slog.Logger
	version  string
	maxBody  int64
	trustFwd bool
	built    bool
}

// ServerOption configures a ServerConfig.
type ServerOption func(*ServerConfig)

// NewServerConfig creates an empty server configuration.
func NewServerConfig(opts ...ServerOption) *ServerConfig {
	cfg := &ServerConfig{
		static:  static.NewRegistry(),
		jar:     cookie.New(),
		logger:  logger.NewNope(),
		version: "dev",
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(cfg *ServerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithVersion sets the application version. Any value other than "" or
// "dev" enables release caching of static files.
func WithVersion(v string) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.version = v
	}
}

// WithCookies sets the manager that renders Set-Cookie lines.
func WithCookies(m *cookie.Manager) ServerOption {
	return func(cfg *ServerConfig) {
		if m != nil {
			cfg.jar = m
		}
	}
}

// WithMaxBodyBytes bounds request bodies read by ServeHTTP.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(cfg *ServerConfig) {
		if n > 0 {
			cfg.maxBody = n
		}
	}
}

// WithTrustForwarded makes Context.IP report the first X-Forwarded-For hop
// instead of the connection peer.
func WithTrustForwarded(trust bool) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.trustFwd = trust
	}
}

// WithSettings applies environment settings: version, body limit, proxy
// trust and cookie attributes. Session settings are applied by NewSessionManagerFrom.
func WithSettings(s Settings) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.version = s.AppVersion
		cfg.trustFwd = s.TrustForwarded
		if s.MaxBodyBytes > 0 {
			cfg.maxBody = s.MaxBodyBytes
		}
		cfg.jar = cookie.New(
			cookie.WithDomain(s.CookieDomain),
			cookie.WithSecure(s.CookieSecure),
			cookie.WithSameSite(http.SameSiteLaxMode),
		)
	}
}

// NewSessionManagerFrom creates a session manager configured from settings.
func NewSessionManagerFrom(s Settings, store session.Store, opts ...SessionOption) *SessionManager {
	base := []SessionOption{
		WithSessionCookieName(s.SessionCookie),
		WithSessionCheckIP(s.CheckIP),
	}
	return NewSessionManager(store, append(base, opts...)...)
}

// Use appends a middleware. Routes registered earlier are replayed through
// its RegisterRoute hook.
func (cfg *ServerConfig) Use(mw Middleware) error {
	if cfg.built {
		return configError("middleware %s added after the server was built", middlewareName(mw))
	}
	if r, ok := mw.(RouteRegistrar); ok {
		for _, route := range cfg.routes.Routes() {
			if err := r.RegisterRoute(route); err != nil {
				return &ConfigurationError{Reason: "route " + route.Pattern, Err: err}
			}
		}
	}
	if err := cfg.pipeline.add(mw); err != nil {
		return err
	}
	if sm, ok := mw.(*SessionManager); ok {
		sm.SetLogger(cfg.logger)
		cfg.sessions = sm
	}
	return nil
}

// AddRoute registers a handler for pattern. Every RouteRegistrar middleware
// sees the route first; an error from any of them rejects it.
func (cfg *ServerConfig) AddRoute(pattern string, h HandlerFunc, opts ...RouteOption) error {
	if cfg.built {
		return configError("route %q added after the server was built", pattern)
	}
	route, err := compileRoute(pattern, h, opts...)
	if err != nil {
		return err
	}
	for _, r := range cfg.pipeline.registrars {
		if err := r.RegisterRoute(route); err != nil {
			return &ConfigurationError{Reason: "route " + pattern, Err: err}
		}
	}
	return cfg.routes.Add(route)
}

// RegisterStaticKey binds a static key to an absolute directory.
func (cfg *ServerConfig) RegisterStaticKey(key, dir string) error {
	if cfg.built {
		return configError("static key %q added after the server was built", key)
	}
	if err := cfg.static.RegisterKey(key, dir); err != nil {
		return &ConfigurationError{Reason: "static key " + key, Err: err}
	}
	return nil
}

// Static serves the files of dir under prefix: a request for prefix/name
// returns name from the static cache.
func (cfg *ServerConfig) Static(prefix, key, dir string, opts ...RouteOption) error {
	if err := cfg.RegisterStaticKey(key, dir); err != nil {
		return err
	}
	pattern := strings.TrimSuffix(prefix, "/") + "/{file}"
	return cfg.AddRoute(pattern, func(c *Context, args Args) (any, error) {
		return c.Static(key, args.String("file"))
	}, opts...)
}

// Routes returns the registered routes in registration order.
func (cfg *ServerConfig) Routes() []*Route {
	return cfg.routes.Routes()
}

// Build freezes the configuration and returns the dispatcher.
func (cfg *ServerConfig) Build() (*Dispatcher, error) {
	if cfg.built {
		return nil, configError("server already built")
	}
	cfg.built = true
	cfg.static.Seal()

	return &Dispatcher{
		routes:    &cfg.routes,
		pipeline:  &cfg.pipeline,
		formatter: NewFormatter(cfg.version),
		static:    cfg.static,
		sessions:  cfg.sessions,
		jar:       cfg.jar,
		logger:    cfg.logger,
		maxBody:   cfg.maxBody,
		forwarded: cfg.trustFwd,
	}, nil
}
