package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort           string
	StorageBackend     string
	TasksKey           string
	TasksFile          string
	DatabaseURL        string
	DBPoolSize         int
	RedisURL           string
	RedisPoolSize      int
	CacheTTL           int // seconds
	KafkaBrokers       []string
	KafkaTopic         string
	KafkaPartitions    int
	JWTSecret          string
	CountriesBaseURL   string
	CountryLookupMS    int
	SuggestSessionsMax int
	TimestampLayout    string
	LogLevel           string
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = Load()
	})
	return cfg
}

// Load reads a fresh Config from the environment without touching the
// process-wide singleton.
func Load() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", BackendRedis)),
		TasksKey:           getEnv("TASKS_KEY", "tasks"),
		TasksFile:          getEnv("TASKS_FILE", "tasks.json"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBPoolSize:         getIntEnv("DB_POOL_SIZE", 10),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPoolSize:      getIntEnv("REDIS_POOL_SIZE", 20),
		CacheTTL:           getIntEnv("CACHE_TTL_SEC", 86400),
		KafkaBrokers:       getSliceEnv("KAFKA_BROKERS"),
		KafkaTopic:         getEnv("KAFKA_TASK_TOPIC", "task-events"),
		KafkaPartitions:    getIntEnv("KAFKA_PARTITIONS", 1),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CountriesBaseURL:   strings.TrimRight(getEnv("COUNTRIES_BASE_URL", "https://restcountries.com/v3.1"), "/"),
		CountryLookupMS:    getIntEnv("COUNTRY_LOOKUP_TIMEOUT_MS", 5000),
		SuggestSessionsMax: getIntEnv("SUGGEST_SESSIONS_MAX", 1024),
		TimestampLayout:    getEnv("TIMESTAMP_LAYOUT", "1/2/2006, 3:04:05 PM"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// CountryLookupTimeout is the per-request deadline for directory lookups.
func (c *Config) CountryLookupTimeout() time.Duration {
	return time.Duration(c.CountryLookupMS) * time.Millisecond
}

// CacheTTLDuration is CacheTTL as a time.Duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// GetJWTSecret returns JWT secret from config (for middleware that only has context).
func GetJWTSecret(ctx context.Context) string {
	return Get().JWTSecret
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// getSliceEnv splits a comma-separated variable. Unset means an empty
// slice, which disables the component that reads it.
func getSliceEnv(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
