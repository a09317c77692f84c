package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
	"github.com/abhisek/examprep/internal/store"
)

// Config holds application configuration. LLM provider settings are read
// separately by llm.ConfigFromEnv.
type Config struct {
	DBPath     string
	Generation GenerationConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Backend    BackendConfig
}

// GenerationConfig holds session generation defaults.
type GenerationConfig struct {
	BatchSize  int
	Difficulty string
}

// RedisConfig holds Redis configuration. An empty Address disables Redis.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	TTL time.Duration
}

// BackendConfig holds generation backend configuration.
type BackendConfig struct {
	ListenAddr     string
	URL            string
	RatePerSecond  float64
	RateBurst      int
	RequestTimeout time.Duration
}

// Load reads configuration from the environment after loading any .env
// files. Files that do not exist are skipped.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath: getEnv("EXAMPREP_DB", ""),
		Generation: GenerationConfig{
			BatchSize:  getEnvAsInt("EXAMPREP_BATCH_SIZE", 10),
			Difficulty: getEnv("EXAMPREP_DIFFICULTY", "medium"),
		},
		Redis: RedisConfig{
			Address:  getEnv("EXAMPREP_REDIS_ADDRESS", ""),
			Password: getEnv("EXAMPREP_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("EXAMPREP_REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("EXAMPREP_CACHE_TTL", 24*time.Hour),
		},
		Backend: BackendConfig{
			ListenAddr:     getEnv("EXAMPREP_LISTEN_ADDR", ":8080"),
			URL:            getEnv("EXAMPREP_BACKEND_URL", ""),
			RatePerSecond:  getEnvAsFloat("EXAMPREP_RATE_PER_SECOND", 2),
			RateBurst:      getEnvAsInt("EXAMPREP_RATE_BURST", 5),
			RequestTimeout: getEnvAsDuration("EXAMPREP_REQUEST_TIMEOUT", 2*time.Minute),
		},
	}

	if cfg.DBPath == "" {
		path, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Generation.BatchSize < 1 || c.Generation.BatchSize > itemgen.MaxBatchSize {
		return fmt.Errorf("batch size must be between 1 and %d, got %d", itemgen.MaxBatchSize, c.Generation.BatchSize)
	}
	if _, err := exam.ParseDifficulty(c.Generation.Difficulty); err != nil {
		return err
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Backend.RatePerSecond <= 0 || c.Backend.RateBurst < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
