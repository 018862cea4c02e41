// Package db connects to PostgreSQL and applies schema migrations for the
// session store.
//
// [Connect] wraps [github.com/jackc/pgx/v5/pgxpool] with startup retries,
// [Migrate] runs goose migrations from any [io/fs.FS], [Healthcheck] feeds the
// readiness check and [WithTx] scopes a function to a transaction.
//
// Settings are read from the environment through [Config]:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_APPLICATION_NAME   - application_name of pool connections (default: servant-sessions)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 5)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection retry attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - Migrations table name (default: schema_migrations)
//
// Typical startup for the session store:
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, session.Migrations, session.MigrationsDir, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//	store := session.NewPostgresStore(pool)
//
// Errors wrap the package sentinels ([ErrFailedToOpenDBConnection],
// [ErrApplyMigrations], ...) with [errors.Join] so the driver error is kept.
package db
