package redis

import "time"

// Config holds Redis connection parameters for the session store.
type Config struct {
	// redis:// or rediss:// (TLS) URL, e.g. redis://localhost:6379/0
	URL string `env:"REDIS_URL,required"`

	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	MaxLifetime  time.Duration `env:"REDIS_MAX_LIFETIME" envDefault:"30m"`

	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`

	// Attempt n waits n*RetryInterval before the next one.
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`

	// Idle sessions expire after this long; zero keeps them until logout.
	SessionTTL time.Duration `env:"REDIS_SESSION_TTL" envDefault:"0s"`
}

// DefaultConfig returns the env defaults for url, for callers that do not
// load configuration from the environment.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		PoolSize:      10,
		MinIdleConns:  5,
		MaxIdleTime:   10 * time.Minute,
		MaxLifetime:   30 * time.Minute,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		DialTimeout:   5 * time.Second,
		RetryAttempts: 3,
		RetryInterval: 5 * time.Second,
	}
}
