package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// ConfigRequirements defines which settings must be non-empty for each
// environment.
type ConfigRequirements struct {
	RequiredSecrets []string
}

var requirements = map[Environment]ConfigRequirements{
	Development: {},
	Test:        {},
	CI:          {RequiredSecrets: []string{"jwt_secret"}},
	Production:  {RequiredSecrets: []string{"jwt_secret", "db_password"}},
}

// ValidateConfig checks cfg against the rules for its environment.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	for _, secret := range requirements[cfg.Environment].RequiredSecrets {
		if secretValue(cfg, secret) == "" {
			errs = append(errs, ValidationError{Field: secret, Message: fmt.Sprintf("required secret %s is not set", secret)})
		}
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{Field: "DB_HOST", Message: "postgres requires DB_HOST and DB_NAME"})
		}
	case DriverSQLite:
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "DB_PATH", Message: "sqlite requires DB_PATH"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.CandidateSource != CandidateSourceMemory && cfg.CandidateSource != CandidateSourceDatabase {
		errs = append(errs, ValidationError{Field: "SEARCH_CANDIDATE_SOURCE", Message: fmt.Sprintf("must be %q or %q", CandidateSourceMemory, CandidateSourceDatabase)})
	}
	if cfg.CorpusSource == "" {
		errs = append(errs, ValidationError{Field: "CORPUS_SOURCE", Message: "must not be empty"})
	}
	if strings.HasPrefix(cfg.CorpusSource, "s3://") && cfg.AWSRegion == "" {
		errs = append(errs, ValidationError{Field: "AWS_REGION", Message: "required for s3:// corpus sources"})
	}

	positive := []struct {
		field string
		value int
	}{
		{"SERVER_PORT", atoiOrZero(cfg.ServerPort)},
		{"SEARCH_MAX_CANDIDATES", cfg.MaxCandidates},
		{"CACHE_MAX_ENTRIES", cfg.CacheMaxEntries},
		{"RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute},
		{"TFIDF_MIN_DF", cfg.TFIDFMinDF},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, ValidationError{Field: p.field, Message: "must be a positive integer"})
		}
	}
	if cfg.CacheTTL <= 0 {
		errs = append(errs, ValidationError{Field: "CACHE_TTL", Message: "must be positive"})
	}
	if cfg.TFIDFMaxDF <= 0 || cfg.TFIDFMaxDF > 1 {
		errs = append(errs, ValidationError{Field: "TFIDF_MAX_DF", Message: "must be in (0, 1]"})
	}
	if cfg.TFIDFMaxFeatures < 0 {
		errs = append(errs, ValidationError{Field: "TFIDF_MAX_FEATURES", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func secretValue(cfg *Config, name string) string {
	switch name {
	case "jwt_secret":
		return cfg.JWTSecret
	case "db_password":
		if cfg.DBDriver == DriverSQLite {
			return "unused"
		}
		return cfg.DBPassword
	case "redis_password":
		return cfg.RedisPassword
	}
	return ""
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
