package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory     = "memory"
	StoragePostgres   = "postgres"
	StorageClickHouse = "clickhouse"

	BackendDirect = "direct"
	BackendKafka  = "kafka"

	CacheMemory  = "memory"
	CacheRedis   = "redis"
	CacheLevelDB = "leveldb"
	CacheLayered = "layered"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host              string        `yaml:"host"`
		Port              int           `yaml:"port"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
		SlowRequest       time.Duration `yaml:"slow_request"`
		CORS              bool          `yaml:"cors"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Catalog struct {
		DevicesCSV string `yaml:"devices_csv"`
		PricesCSV  string `yaml:"prices_csv"`
		Required   bool   `yaml:"required"`
	} `yaml:"catalog"`
	Storage struct {
		Type  string `yaml:"type"`
		Table string `yaml:"table"`
	} `yaml:"storage"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
	Backend struct {
		Type string `yaml:"type"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Pricing struct {
		SearchURL    string        `yaml:"search_url"`
		Timeout      time.Duration `yaml:"timeout"`
		RequestDelay time.Duration `yaml:"request_delay"`
		PriceMin     int64         `yaml:"price_min"`
		PriceMax     int64         `yaml:"price_max"`
		PageSize     int           `yaml:"page_size"`
		UserAgent    string        `yaml:"user_agent"`
		Cache        struct {
			Type  string        `yaml:"type"`
			TTL   time.Duration `yaml:"ttl"`
			L1TTL time.Duration `yaml:"l1_ttl"`
			Path  string        `yaml:"path"`
			Redis struct {
				Host     string `yaml:"host"`
				Port     int    `yaml:"port"`
				Password string `yaml:"password"`
				DB       int    `yaml:"db"`
				Prefix   string `yaml:"prefix"`
			} `yaml:"redis"`
		} `yaml:"cache"`
	} `yaml:"pricing"`
	RateLimit struct {
		Burst     float64       `yaml:"burst"`
		PerSecond float64       `yaml:"per_second"`
		IdleTTL   time.Duration `yaml:"idle_ttl"`
	} `yaml:"rate_limit"`
	Reports struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"reports"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present) and the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DEVSIGHT_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Pricing.Cache.Redis.Host = v
	}
	if v := os.Getenv("PRICE_CACHE"); v != "" {
		c.Pricing.Cache.Type = v
	}
	if v := os.Getenv("DEVICES_CSV"); v != "" {
		c.Catalog.DevicesCSV = v
	}
	if v := os.Getenv("PRICES_CSV"); v != "" {
		c.Catalog.PricesCSV = v
	}
	if v := os.Getenv("REPORTS_DIR"); v != "" {
		c.Reports.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	setString(&c.Environment, "development")
	setString(&c.Server.Host, "0.0.0.0")
	setInt(&c.Server.Port, 8000)
	setDuration(&c.Server.ReadHeaderTimeout, 10*time.Second)
	setDuration(&c.Server.ShutdownTimeout, 10*time.Second)
	setDuration(&c.Server.SlowRequest, 2*time.Second)

	setString(&c.Log.Level, "info")
	setString(&c.Log.Format, "console")
	setString(&c.Log.Output, "stdout")

	setString(&c.Catalog.DevicesCSV, "data/devices.csv")
	setString(&c.Catalog.PricesCSV, "data/prices.csv")

	setString(&c.Storage.Type, StorageMemory)
	setString(&c.Storage.Table, "login_logs")

	setString(&c.ClickHouse.Host, "localhost")
	setInt(&c.ClickHouse.Port, 9000)
	setString(&c.ClickHouse.Database, "default")
	setString(&c.ClickHouse.User, "default")

	setString(&c.Backend.Type, BackendDirect)
	setString(&c.Kafka.Topic, "devsight.logins")
	setInt(&c.Kafka.RequiredAcks, 1)
	setString(&c.Kafka.Compression, "snappy")
	setInt(&c.Kafka.Producer.MaxAttempts, 3)
	setDuration(&c.Kafka.Producer.WriteTimeout, 5*time.Second)
	setDuration(&c.Kafka.Producer.BatchTimeout, 10*time.Millisecond)
	setString(&c.Kafka.Consumer.GroupID, "devsight")
	setInt(&c.Kafka.Consumer.Workers, 2)
	setInt(&c.Kafka.Consumer.RetryMax, 3)
	setDuration(&c.Kafka.Consumer.BackoffMin, 100*time.Millisecond)
	setDuration(&c.Kafka.Consumer.BackoffMax, 2*time.Second)

	setString(&c.Pricing.SearchURL, "https://www.tokopedia.com/search")
	setDuration(&c.Pricing.Timeout, 10*time.Second)
	setDuration(&c.Pricing.RequestDelay, time.Second)
	setInt64(&c.Pricing.PriceMin, 500_000)
	setInt64(&c.Pricing.PriceMax, 100_000_000)
	setInt(&c.Pricing.PageSize, 60)
	setString(&c.Pricing.Cache.Type, CacheMemory)
	setDuration(&c.Pricing.Cache.TTL, time.Hour)
	setDuration(&c.Pricing.Cache.L1TTL, 5*time.Minute)
	setString(&c.Pricing.Cache.Path, "data/price-cache")
	setString(&c.Pricing.Cache.Redis.Host, "localhost")
	setInt(&c.Pricing.Cache.Redis.Port, 6379)
	setString(&c.Pricing.Cache.Redis.Prefix, "devsight:price")

	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 1
	}
	setDuration(&c.RateLimit.IdleTTL, 10*time.Minute)

	setString(&c.Reports.OutputDir, "reports")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Type {
	case StorageMemory, StorageClickHouse:
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for storage.type postgres")
		}
	default:
		return fmt.Errorf("storage.type must be one of memory, postgres, clickhouse, got '%s'", c.Storage.Type)
	}
	switch c.Backend.Type {
	case BackendDirect:
	case BackendKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required for backend.type kafka")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required for backend.type kafka")
		}
	default:
		return fmt.Errorf("backend.type must be 'direct' or 'kafka', got '%s'", c.Backend.Type)
	}
	switch c.Pricing.Cache.Type {
	case CacheMemory, CacheRedis, CacheLevelDB, CacheLayered:
	default:
		return fmt.Errorf("pricing.cache.type must be one of memory, redis, leveldb, layered, got '%s'", c.Pricing.Cache.Type)
	}
	if c.Pricing.PriceMin >= c.Pricing.PriceMax {
		return fmt.Errorf("pricing.price_min must be below pricing.price_max")
	}
	return nil
}

func setString(p *string, v string) {
	if *p == "" {
		*p = v
	}
}

func setInt(p *int, v int) {
	if *p == 0 {
		*p = v
	}
}

func setInt64(p *int64, v int64) {
	if *p == 0 {
		*p = v
	}
}

func setDuration(p *time.Duration, v time.Duration) {
	if *p == 0 {
		*p = v
	}
}
