package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optionsdesk.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithDefaults_MissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "optionsdesk", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/optionsdesk.db", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Analysis.DefaultHistoryLimit)
	assert.Equal(t, "X-User-ID", cfg.Auth.UserHeader)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
service_name = "desk"

[http]
port = 8181

[database]
driver = "postgres"
dsn = "host=localhost user=desk dbname=desk"

[kafka]
enabled = true
brokers = ["k1:9092", "k2:9092"]
`)
	t.Setenv("APP_HTTP_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "desk", cfg.ServiceName)
	assert.Equal(t, 9191, cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "optionsdesk.events", cfg.Kafka.Topic)
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			ServiceName: "desk",
			HTTP:        HTTPConfig{Port: 8080},
			Database:    DatabaseConfig{Driver: "sqlite"},
		}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Database.Driver = "oracle"
	assert.Error(t, c.Validate())

	c = base()
	c.Database.Driver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.Kafka.Enabled = true
	assert.Error(t, c.Validate())

	c = base()
	c.RateLimit = RateLimitConfig{Enabled: true, QPS: 0, Burst: 1}
	assert.Error(t, c.Validate())

	c = base()
	c.HTTP.Port = 70000
	assert.Error(t, c.Validate())

	c = base()
	require.NoError(t, c.Validate())
	assert.Equal(t, "dev", c.Environment)
	assert.Equal(t, 10, c.Analysis.DefaultHistoryLimit)
}
