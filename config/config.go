package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Candidate source settings.
const (
	CandidateSourceMemory   = "memory"
	CandidateSourceDatabase = "database"

	// CorpusSourceDatabase loads the corpus from the recipe store. Any other
	// CORPUS_SOURCE value is a snapshot path or s3:// URI.
	CorpusSourceDatabase = "database"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration. An empty RedisURL disables Redis: the query
	// cache stays process-local and rate limiting runs in memory.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration for admin routes
	JWTSecret string

	// Search configuration
	CorpusSource       string
	CandidateSource    string
	MaxCandidates      int
	ScoringWeightsFile string
	TFIDFMinDF         int
	TFIDFMaxDF         float64
	TFIDFMaxFeatures   int

	// Query cache
	CacheTTL        time.Duration
	CacheMaxEntries int

	// HTTP
	RateLimitPerMinute int
	CORSAllowedOrigins []string

	// Snapshot storage
	AWSRegion    string
	S3BucketName string

	LogLevel string
}

// LoadConfig creates a new Config instance with values from environment
// variables or secrets. Outside production a .env file in the working
// directory is loaded first; variables already set win.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env != Production {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to load .env file: %v", err)
		}
	}

	cfg, err := load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load(env Environment) (*Config, error) {
	var errs ValidationErrors
	cfg := &Config{
		Environment: env,

		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBPath:     getEnv("DB_PATH", "recipes.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     readSecret("db_user", "postgres"),
		DBPassword: readSecret("db_password", ""),
		DBName:     getEnv("DB_NAME", "recipe_buddy"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisURL:      readSecret("redis_url", ""),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: readSecret("redis_password", ""),

		JWTSecret: readSecret("jwt_secret", ""),

		CorpusSource:       getEnv("CORPUS_SOURCE", CorpusSourceDatabase),
		CandidateSource:    strings.ToLower(getEnv("SEARCH_CANDIDATE_SOURCE", CandidateSourceMemory)),
		ScoringWeightsFile: getEnv("SCORING_WEIGHTS_FILE", ""),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		S3BucketName: getEnv("S3_BUCKET_NAME", ""),

		LogLevel: getEnv("LOG_LEVEL", ""),
	}

	cfg.RedisDB = getInt("REDIS_DB", 0, &errs)
	cfg.MaxCandidates = getInt("SEARCH_MAX_CANDIDATES", 5000, &errs)
	cfg.TFIDFMinDF = getInt("TFIDF_MIN_DF", 1, &errs)
	cfg.TFIDFMaxDF = getFloat("TFIDF_MAX_DF", 1.0, &errs)
	cfg.TFIDFMaxFeatures = getInt("TFIDF_MAX_FEATURES", 10000, &errs)
	cfg.CacheTTL = getDuration("CACHE_TTL", 300*time.Second, &errs)
	cfg.CacheMaxEntries = getInt("CACHE_MAX_ENTRIES", 1000, &errs)
	cfg.RateLimitPerMinute = getInt("RATE_LIMIT_PER_MINUTE", 60, &errs)
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	if cfg.RedisURL == "" && cfg.RedisHost != "" {
		cfg.RedisURL = fmt.Sprintf("redis://%s:%s/%d", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// DSN returns the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Address is the HTTP listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(name string, def int, errs *ValidationErrors) int {
	raw := getEnv(name, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, ValidationError{Field: name, Message: fmt.Sprintf("must be an integer, got %q", raw)})
		return def
	}
	return v
}

func getFloat(name string, def float64, errs *ValidationErrors) float64 {
	raw := getEnv(name, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, ValidationError{Field: name, Message: fmt.Sprintf("must be a number, got %q", raw)})
		return def
	}
	return v
}

// getDuration accepts Go durations ("5m") or a bare number of seconds.
func getDuration(name string, def time.Duration, errs *ValidationErrors) time.Duration {
	raw := getEnv(name, "")
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, ValidationError{Field: name, Message: fmt.Sprintf("must be a duration, got %q", raw)})
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSecret reads a Docker secret from SECRETS_DIR (default /run/secrets),
// falling back to the upper-cased environment variable and then def.
func readSecret(name, def string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}
	return getEnv(strings.ToUpper(name), def)
}
