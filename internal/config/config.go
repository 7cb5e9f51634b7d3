package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/intake/internal/store"
	"github.com/kode4food/intake/pkg/util/call"
)

// Config holds configuration settings for the intake engine
type Config struct {
	// API Server
	APIHost  string
	APIPort  int
	LogLevel string

	// Drafts & Archiving
	DraftStore       store.RedisConfig
	ArchiveBucketURL string
	ArchivePrefix    string

	// Remote step service
	RemoteBaseURL string
	RemoteTimeout time.Duration

	// Engine
	ShutdownTimeout time.Duration
}

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535
	DefaultRedisDB = 0

	DefaultRedisEndpoint   = "localhost:6379"
	DefaultArchivePrefix   = "intake/"
	DefaultRemoteTimeout   = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	MaxRemoteTimeout   = 10 * time.Minute
	MaxShutdownTimeout = 10 * time.Minute
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrInvalidRemoteTimeout = errors.New("remote timeout must be positive")
	ErrRemoteBaseURLEmpty   = errors.New("remote base URL not configured")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// API server, draft store, archive, and remote step service
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:  DefaultAPIPort,
		APIHost:  DefaultAPIHost,
		LogLevel: "info",
		DraftStore: store.RedisConfig{
			Addr:     DefaultRedisEndpoint,
			Password: "",
			DB:       DefaultRedisDB,
			Prefix:   store.DefaultRedisPrefix,
		},
		ArchivePrefix:   DefaultArchivePrefix,
		RemoteTimeout:   DefaultRemoteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	LoadStoreConfigFromEnv(&c.DraftStore, "DRAFT")

	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if bucketURL := os.Getenv("ARCHIVE_BUCKET_URL"); bucketURL != "" {
		c.ArchiveBucketURL = bucketURL
	}
	if prefix := os.Getenv("ARCHIVE_PREFIX"); prefix != "" {
		c.ArchivePrefix = prefix
	}
	if baseURL := os.Getenv("REMOTE_BASE_URL"); baseURL != "" {
		c.RemoteBaseURL = baseURL
	}

	return call.Perform(
		func() error {
			return loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort)
		},
		func() error {
			return loadEnvDuration(
				"REMOTE_TIMEOUT", &c.RemoteTimeout, MaxRemoteTimeout,
			)
		},
		func() error {
			return loadEnvDuration(
				"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, MaxShutdownTimeout,
			)
		},
	)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.RemoteTimeout <= 0 {
		return ErrInvalidRemoteTimeout
	}

	if c.RemoteBaseURL == "" {
		return ErrRemoteBaseURLEmpty
	}

	return nil
}

// LoadStoreConfigFromEnv loads Redis store configuration from environment
// variables with the given prefix (e.g., "DRAFT")
func LoadStoreConfigFromEnv(s *store.RedisConfig, prefix string) {
	if addr := os.Getenv(prefix + "_REDIS_ADDR"); addr != "" {
		s.Addr = addr
	}
	if password := os.Getenv(prefix + "_REDIS_PASSWORD"); password != "" {
		s.Password = password
	}
	if dbStr := os.Getenv(prefix + "_REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err == nil {
			s.DB = db
		}
	}
	if envPrefix := os.Getenv(prefix + "_REDIS_PREFIX"); envPrefix != "" {
		s.Prefix = envPrefix
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads key from the environment, parses it as a duration,
// and sets *dst if the value is in the range (0, max]
func loadEnvDuration(key string, dst *time.Duration, max time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if v <= 0 || v > max {
		return fmt.Errorf("invalid %s: %s out of range (0, %s]", key, v, max)
	}
	*dst = v
	return nil
}
