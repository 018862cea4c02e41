package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/servant"
	"github.com/dmitrymomot/servant/middlewares"
	"github.com/dmitrymomot/servant/pkg/config"
	"github.com/dmitrymomot/servant/pkg/db"
	"github.com/dmitrymomot/servant/pkg/logger"
	"github.com/dmitrymomot/servant/pkg/redis"
	"github.com/dmitrymomot/servant/pkg/session"
)

type appConfig struct {
	Server    servant.Settings
	Log       logger.Config
	Address   string `env:"ADDRESS" envDefault:":8080"`
	Store     string `env:"SESSION_STORE" envDefault:"memory"` // memory | postgres | redis
	StaticDir string `env:"STATIC_DIR" envDefault:"example/static"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	cfg.Log.Sentry.Release = cfg.Server.AppVersion

	log := logger.New(cfg.Log, servant.RequestNumberExtractor(), middlewares.RequestIDExtractor())

	store, readiness, hooks, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	hooks = append(hooks, servant.ShutdownHook(logger.SentryFlush(2*time.Second)))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middlewares.Metrics(reg)
	if err != nil {
		return err
	}

	server := servant.NewServerConfig(
		servant.WithSettings(cfg.Server),
		servant.WithLogger(log),
	)
	for _, mw := range []servant.Middleware{
		middlewares.Logging(log),
		middlewares.RequestID(),
		servant.NewSessionManagerFrom(cfg.Server, store),
		middlewares.Permissions(middlewares.WithKnownPermissions("reports"), middlewares.WithPermissionsLogger(log)),
		middlewares.SecurityHeaders(),
		metrics,
	} {
		if err := server.Use(mw); err != nil {
			return err
		}
	}

	dir, err := filepath.Abs(cfg.StaticDir)
	if err != nil {
		return err
	}
	if err := registerRoutes(server, store, dir); err != nil {
		return err
	}

	d, err := server.Build()
	if err != nil {
		return err
	}

	app := servant.New(d,
		servant.WithAppLogger(log),
		servant.WithHealthChecks(readiness...),
		servant.WithMetrics("/metrics", reg),
	)
	return app.Run(cfg.Address, append(hooks, servant.Logger(log))...)
}

// openStore connects the configured session store.
func openStore(ctx context.Context, kind string, log *slog.Logger) (sessionStore, []servant.HealthOption, []servant.RunOption, error) {
	switch kind {
	case "memory":
		store := session.NewMemoryStore()
		if err := seedUsers(ctx, store); err != nil {
			return nil, nil, nil, err
		}
		return store, nil, nil, nil

	case "postgres":
		var dbCfg db.Config
		if err := config.Load(&dbCfg); err != nil {
			return nil, nil, nil, err
		}
		pool, err := db.Connect(ctx, dbCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx, pool, session.Migrations, session.MigrationsDir, dbCfg.MigrationsTable, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		store := session.NewPostgresStore(pool)
		if err := seedUsers(ctx, store); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return store,
			[]servant.HealthOption{servant.WithReadinessCheck("postgres", db.Healthcheck(pool))},
			[]servant.RunOption{servant.ShutdownHook(db.Shutdown(pool))},
			nil

	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, nil, nil, err
		}
		client, err := redis.Open(ctx, redisCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		store := session.NewRedisStore(client, session.WithTTL(redisCfg.SessionTTL))
		if err := seedUsers(ctx, store); err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		return store,
			[]servant.HealthOption{servant.WithReadinessCheck("redis", redis.Healthcheck(client))},
			[]servant.RunOption{servant.ShutdownHook(redis.Shutdown(client))},
			nil
	}
	return nil, nil, nil, fmt.Errorf("unknown session store %q", kind)
}

// seedUsers creates the demo accounts.
func seedUsers(ctx context.Context, store session.UserStore) error {
	for _, u := range []session.User{
		{ID: "1", Login: "alice", Name: "Alice", Permissions: []string{"reports"}},
		{ID: "2", Login: "bob", Name: "Bob"},
	} {
		if err := store.PutUser(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
