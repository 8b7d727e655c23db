package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		Port:                     "8080",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		DBSchemaMode:             "sql",
		DBConnMaxLifetimeMinutes: 1,
		EventsBackend:            "redis",
		StorageBackend:           "local",
		UploadMaxFileMB:          8,
		UploadMaxFiles:           4,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateBackends(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"kafka without brokers", func(c *Config) { c.EventsBackend = "kafka" }, true},
		{"kafka without topic", func(c *Config) { c.EventsBackend = "kafka"; c.KafkaBrokers = "k1:9092"; c.KafkaTopic = " " }, true},
		{"kafka with brokers", func(c *Config) { c.EventsBackend = "kafka"; c.KafkaBrokers = "k1:9092"; c.KafkaTopic = "t" }, false},
		{"unknown events backend", func(c *Config) { c.EventsBackend = "nats" }, true},
		{"events disabled", func(c *Config) { c.EventsBackend = "none" }, false},
		{"minio without credentials", func(c *Config) { c.StorageBackend = "minio"; c.MinioEndpoint = "m:9000"; c.MinioBucket = "b" }, true},
		{"minio configured", func(c *Config) {
			c.StorageBackend = "minio"
			c.MinioEndpoint = "m:9000"
			c.MinioBucket = "b"
			c.MinioAccessKey = "ak"
			c.MinioSecretKey = "sk"
		}, false},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }, true},
		{"zero upload size", func(c *Config) { c.UploadMaxFileMB = 0 }, true},
		{"default secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = DefaultJWTSecret }, true},
		{"short secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = "short" }, true},
		{"weak db password in production", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Helpers(t *testing.T) {
	c := validConfig()
	c.KafkaBrokers = " k1:9092, ,k2:9092 "
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokerList())

	assert.Equal(t, 5*time.Second, c.QueryTimeout())
	c.DBQueryTimeoutMS = 250
	assert.Equal(t, 250*time.Millisecond, c.QueryTimeout())

	assert.Equal(t, int64(8<<20), c.MaxUploadBytes())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("EVENTS_BACKEND", "None")
	t.Setenv("UPLOAD_MAX_FILES", "2")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "http://cdn.example.com/media/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "none", c.EventsBackend)
	assert.Equal(t, 2, c.UploadMaxFiles)
	assert.Equal(t, "http://cdn.example.com/media", c.StoragePublicBaseURL)
}
