// Package redis opens the go-redis client used by the Redis session store.
//
// [Open] parses a redis:// or rediss:// URL from [Config], applies pool and
// timeout settings and pings the server, retrying with a linear backoff.
// [Healthcheck] and [Shutdown] plug the client into the readiness check and
// the server shutdown hooks.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := session.NewRedisStore(client, session.WithTTL(cfg.SessionTTL))
package redis
