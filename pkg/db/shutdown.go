package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a hook that closes the pool.
// Register it with servant.WithShutdownHook.
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
