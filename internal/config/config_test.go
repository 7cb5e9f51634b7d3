package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/intake/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	as := assert.New(t)
	c := config.NewDefaultConfig()

	as.Equal(config.DefaultAPIHost, c.APIHost)
	as.Equal(config.DefaultAPIPort, c.APIPort)
	as.Equal("info", c.LogLevel)
	as.Equal(config.DefaultRedisEndpoint, c.DraftStore.Addr)
	as.Equal(config.DefaultArchivePrefix, c.ArchivePrefix)
	as.Equal(config.DefaultRemoteTimeout, c.RemoteTimeout)
	as.Equal(config.DefaultShutdownTimeout, c.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	as := assert.New(t)
	t.Setenv("API_HOST", "127.0.0.1")
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DRAFT_REDIS_ADDR", "redis:6380")
	t.Setenv("DRAFT_REDIS_DB", "3")
	t.Setenv("DRAFT_REDIS_PREFIX", "intake-test")
	t.Setenv("ARCHIVE_BUCKET_URL", "s3://surveys")
	t.Setenv("REMOTE_BASE_URL", "http://api.example.com")
	t.Setenv("REMOTE_TIMEOUT", "5s")

	c := config.NewDefaultConfig()
	as.NoError(c.LoadFromEnv())

	as.Equal("127.0.0.1", c.APIHost)
	as.Equal(9090, c.APIPort)
	as.Equal("debug", c.LogLevel)
	as.Equal("redis:6380", c.DraftStore.Addr)
	as.Equal(3, c.DraftStore.DB)
	as.Equal("intake-test", c.DraftStore.Prefix)
	as.Equal("s3://surveys", c.ArchiveBucketURL)
	as.Equal("http://api.example.com", c.RemoteBaseURL)
	as.Equal(5*time.Second, c.RemoteTimeout)
}

func TestLoadFromEnvErrors(t *testing.T) {
	as := assert.New(t)

	t.Setenv("API_PORT", "not-a-number")
	c := config.NewDefaultConfig()
	as.Error(c.LoadFromEnv())

	t.Setenv("API_PORT", "70000")
	c = config.NewDefaultConfig()
	as.Error(c.LoadFromEnv())

	t.Setenv("API_PORT", "8080")
	t.Setenv("REMOTE_TIMEOUT", "banana")
	c = config.NewDefaultConfig()
	as.Error(c.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	as := assert.New(t)

	c := config.NewDefaultConfig()
	c.RemoteBaseURL = "http://api.example.com"
	as.NoError(c.Validate())

	c = config.NewDefaultConfig()
	as.ErrorIs(c.Validate(), config.ErrRemoteBaseURLEmpty)

	c = config.NewDefaultConfig()
	c.RemoteBaseURL = "http://api.example.com"
	c.APIPort = 0
	as.ErrorIs(c.Validate(), config.ErrInvalidAPIPort)

	c = config.NewDefaultConfig()
	c.RemoteBaseURL = "http://api.example.com"
	c.RemoteTimeout = 0
	as.ErrorIs(c.Validate(), config.ErrInvalidRemoteTimeout)
}
