// Package config holds run settings shared by the CLI and the API server.
//
// Settings come from the [settings] table of a task file; environment
// variables override them, and [Config.WithDefaults] fills whatever is
// still unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// appName is used for default directories and the Redis key prefix.
const appName = "stackpip"

// Defaults.
const (
	DefaultLockfile = "poetry.lock"
	DefaultWorkers  = 8
	DefaultCacheTTL = 7 * 24 * time.Hour
	DefaultAddr     = ":8080"
	DefaultMongoDB  = "stackpip"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvIndexURL  = "STACKPIP_INDEX_URL"
	EnvRedisAddr = "STACKPIP_REDIS_ADDR"
	EnvMongoURI  = "STACKPIP_MONGO_URI"
	EnvWorkers   = "STACKPIP_WORKERS"
)

// Config is the [settings] table of a task file.
type Config struct {
	IndexURL         string   `toml:"index-url"`           // Package index JSON API root
	Lockfile         string   `toml:"lockfile"`            // Relative to the task file
	Workers          int      `toml:"workers"`             // Concurrent metadata fetches
	StopOnFirstError bool     `toml:"stop-on-first-error"` // Abort the queue on the first failure
	CacheDir         string   `toml:"cache-dir"`           // File cache location
	CacheTTL         Duration `toml:"cache-ttl"`           // Lifetime of cached index responses
	RedisAddr        string   `toml:"redis-addr"`          // Shared cache; replaces the file cache
	HistoryDir       string   `toml:"history-dir"`         // Run reports location
	MongoURI         string   `toml:"mongo-uri"`           // Run reports in MongoDB instead of files
	MongoDatabase    string   `toml:"mongo-database"`      // Database for run reports
}

// Duration is a time.Duration decoded from strings such as "12h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ApplyEnv returns a copy with values from the environment taking
// precedence. getenv is usually os.Getenv.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if v := getenv(EnvIndexURL); v != "" {
		c.IndexURL = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.RedisAddr = v
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.MongoURI = v
	}
	if v := getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
	return c
}

// WithDefaults returns a copy with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.Lockfile == "" {
		c.Lockfile = DefaultLockfile
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.CacheTTL.Duration <= 0 {
		c.CacheTTL.Duration = DefaultCacheTTL
	}
	if c.CacheDir == "" {
		c.CacheDir, _ = CacheDir()
	}
	if c.HistoryDir == "" {
		if dir, err := DataDir(); err == nil {
			c.HistoryDir = filepath.Join(dir, "runs")
		}
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = DefaultMongoDB
	}
	return c
}

// CacheDir returns the cache directory using XDG standard (~/.cache/stackpip/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// DataDir returns the data directory using XDG standard (~/.local/share/stackpip/).
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
