package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseFillsDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8000 || c.Storage.Type != StorageMemory || c.Backend.Type != BackendDirect {
		t.Fatalf("defaults not applied: port=%d storage=%s backend=%s", c.Server.Port, c.Storage.Type, c.Backend.Type)
	}
	if c.Pricing.Cache.Type != CacheMemory || c.Pricing.Cache.TTL != time.Hour {
		t.Fatalf("cache defaults = %s/%s", c.Pricing.Cache.Type, c.Pricing.Cache.TTL)
	}
	if c.Pricing.PriceMin != 500_000 || c.Pricing.PriceMax != 100_000_000 {
		t.Fatalf("price band = %d..%d", c.Pricing.PriceMin, c.Pricing.PriceMax)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"storage":       "storage:\n  type: mongo\n",
		"backend":       "backend:\n  type: nats\n",
		"cache":         "pricing:\n  cache:\n    type: memcached\n",
		"kafka brokers": "backend:\n  type: kafka\n",
		"postgres dsn":  "storage:\n  type: postgres\n",
		"price band":    "pricing:\n  price_min: 9000000\n  price_max: 1000\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "environment: development\nserver:\n  port: 8000\nstorage:\n  type: memory\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("DEVSIGHT_ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PRICE_CACHE", "leveldb")
	t.Setenv("DEVICES_CSV", "/srv/devices.csv")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "production" || c.Server.Port != 9090 {
		t.Fatalf("env/port = %s/%d", c.Environment, c.Server.Port)
	}
	if c.Backend.Type != BackendKafka || strings.Join(c.Kafka.Brokers, ",") != "k1:9092,k2:9092" {
		t.Fatalf("kafka = %s %v", c.Backend.Type, c.Kafka.Brokers)
	}
	if c.Kafka.Topic != "devsight.logins" {
		t.Fatalf("topic default = %q", c.Kafka.Topic)
	}
	if c.Pricing.Cache.Type != CacheLevelDB || c.Catalog.DevicesCSV != "/srv/devices.csv" || c.Log.Level != "debug" {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestLoadWithEnvBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("environment: test\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("HTTP_PORT", "eighty")
	if _, err := LoadWithEnv(path); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
}
