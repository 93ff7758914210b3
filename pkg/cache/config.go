package cache

import "time"

// RedisOption configures Redis cache.
type RedisOption func(*RedisConfig)

// RedisConfig holds the shared price cache connection. Keys are stored as
// Prefix + ":" + key.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

// WithRedisHost sets Redis host.
func WithRedisHost(host string) RedisOption {
	return func(c *RedisConfig) {
		c.Host = host
	}
}

// WithRedisPort sets Redis port.
func WithRedisPort(port int) RedisOption {
	return func(c *RedisConfig) {
		c.Port = port
	}
}

// WithRedisPassword sets Redis password.
func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
	}
}

// WithRedisDB sets Redis database number.
func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) {
		c.DB = db
	}
}

// WithRedisPrefix namespaces keys so Clear only touches this cache.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// MemoryOption configures Memory cache.
type MemoryOption func(*MemoryConfig)

// MemoryConfig holds memory cache configuration.
type MemoryConfig struct {
	Now func() time.Time
}

// WithMemoryClock overrides the time source used for expiry checks.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryConfig) {
		c.Now = now
	}
}

// LevelOption configures the LevelDB cache.
type LevelOption func(*LevelConfig)

// LevelConfig holds LevelDB cache configuration.
type LevelConfig struct {
	Prefix string
	Now    func() time.Time
}

// WithLevelPrefix sets the key prefix inside the database.
func WithLevelPrefix(prefix string) LevelOption {
	return func(c *LevelConfig) {
		c.Prefix = prefix
	}
}

// WithLevelClock overrides the time source used for expiry checks.
func WithLevelClock(now func() time.Time) LevelOption {
	return func(c *LevelConfig) {
		c.Now = now
	}
}
