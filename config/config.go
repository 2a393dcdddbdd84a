package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Snapshot SnapshotConfig
	Prompts  PromptsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// DatabaseConfig configures PostgreSQL. DSN wins over the individual fields;
// with neither DSN nor Host set, PostgreSQL-backed components stay disabled.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

func (d DatabaseConfig) Enabled() bool {
	return d.DSN != "" || d.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type GeminiConfig struct {
	APIKey     string
	ImageModel string
	EditModel  string
	Timeout    time.Duration
}

type StorageConfig struct {
	// CollectionBackend is one of memory, redis, postgres.
	CollectionBackend string
	// BlobBackend is one of file, s3.
	BlobBackend  string
	ArtifactsDir string
	S3Bucket     string
	S3Prefix     string
	S3Region     string
}

type SnapshotConfig struct {
	Cron string
	Dir  string
}

type PromptsConfig struct {
	ModesFile string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "imagestudio"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("API_KEY", getEnv("GOOGLE_API_KEY", "")),
			ImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
			EditModel:  getEnv("GEMINI_EDIT_MODEL", "gemini-2.5-flash-image-preview"),
			Timeout:    getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			CollectionBackend: getEnv("COLLECTION_BACKEND", "memory"),
			BlobBackend:       getEnv("BLOB_BACKEND", "file"),
			ArtifactsDir:      getEnv("ARTIFACTS_DIR", "public/artifacts"),
			S3Bucket:          getEnv("S3_BUCKET", ""),
			S3Prefix:          getEnv("S3_PREFIX", "artifacts"),
			S3Region:          getEnv("AWS_REGION", ""),
		},
		Snapshot: SnapshotConfig{
			Cron: getEnv("SNAPSHOT_CRON", "0 0 * * * *"),
			Dir:  getEnv("SNAPSHOT_DIR", "artifacts/data"),
		},
		Prompts: PromptsConfig{
			ModesFile: getEnv("PROMPT_MODES_FILE", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "image-studio-backend"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Gemini.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}

	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive")
	}

	switch c.Storage.CollectionBackend {
	case "memory":
	case "redis":
		if !c.Redis.Enabled() {
			return fmt.Errorf("REDIS_ADDR is required for COLLECTION_BACKEND=redis")
		}
	case "postgres":
		if !c.Database.Enabled() {
			return fmt.Errorf("DB_DSN or DB_HOST is required for COLLECTION_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown COLLECTION_BACKEND %q", c.Storage.CollectionBackend)
	}

	switch c.Storage.BlobBackend {
	case "file":
		if c.Storage.ArtifactsDir == "" {
			return fmt.Errorf("ARTIFACTS_DIR is required for BLOB_BACKEND=file")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.Storage.BlobBackend)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
