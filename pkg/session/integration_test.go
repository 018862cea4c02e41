package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dmitrymomot/servant/pkg/db"
	"github.com/dmitrymomot/servant/pkg/logger"
	"github.com/dmitrymomot/servant/pkg/redis"
	"github.com/dmitrymomot/servant/pkg/session"
)

func skipIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func TestPostgresStore(t *testing.T) {
	skipIntegration(t)

	ctx := context.Background()
	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("servant_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := db.Connect(ctx, db.Config{
		ConnectionString:  connStr,
		MaxOpenConns:      4,
		MinConns:          1,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   time.Minute,
		MaxConnLifetime:   time.Hour,
		RetryAttempts:     3,
		RetryInterval:     time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Healthcheck(pool)(ctx))
	require.NoError(t, db.Migrate(ctx, pool, session.Migrations, session.MigrationsDir, "schema_migrations", logger.NewNope()))

	runStoreSuite(t, session.NewPostgresStore(pool))
}

func TestRedisStore(t *testing.T) {
	skipIntegration(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("could not start Redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	cfg := redis.DefaultConfig("redis://" + endpoint + "/0")
	cfg.RetryInterval = time.Second
	client, err := redis.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, redis.Healthcheck(client)(ctx))

	runStoreSuite(t, session.NewRedisStore(client, session.WithKeyPrefix("test:"), session.WithTTL(time.Hour)))
}
