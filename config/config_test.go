package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	for _, k := range []string{"PORT", "COLLECTION_BACKEND", "BLOB_BACKEND", "GEMINI_TIMEOUT", "DB_DSN", "DB_HOST", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.CollectionBackend)
	assert.Equal(t, "file", cfg.Storage.BlobBackend)
	assert.Equal(t, 60*time.Second, cfg.Gemini.Timeout)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := Load()
	assert.EqualError(t, err, "API_KEY is required")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("GEMINI_TIMEOUT", "15s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("COLLECTION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidate_BackendRequirements(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080"},
			Gemini:  GeminiConfig{APIKey: "k", Timeout: time.Second},
			Storage: StorageConfig{CollectionBackend: "memory", BlobBackend: "file", ArtifactsDir: "out"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Storage.CollectionBackend = "postgres"
	assert.Error(t, cfg.Validate())
	cfg.Database.DSN = "postgres://localhost/db"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Storage.BlobBackend = "s3"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.CollectionBackend = "sqlite"
	assert.EqualError(t, cfg.Validate(), `unknown COLLECTION_BACKEND "sqlite"`)
}
