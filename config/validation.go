package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireSecrets bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {RequireSecrets: false},
	Test:        {RequireSecrets: false},
	CI:          {RequireSecrets: true},
	Production:  {RequireSecrets: true},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}
	if cfg.DBHost == "" || cfg.DBName == "" {
		errs = append(errs, ValidationError{"DB_HOST/DB_NAME", "database location is required"})
	}

	if reqs.RequireSecrets {
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "db_password secret is required"})
		}
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{"JWT_SECRET", "jwt_secret secret is required"})
		}
	}

	if u, err := url.Parse(cfg.NutritionAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"NUTRITION_API_URL", "must be an absolute URL"})
	}
	if cfg.NutritionTimeout <= 0 || cfg.NutritionTimeout > time.Minute {
		errs = append(errs, ValidationError{"NUTRITION_API_TIMEOUT", "must be between 0 and 1m"})
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, ValidationError{"APP_TIMEZONE", fmt.Sprintf("unknown timezone %q", cfg.Timezone)})
	}
	if cfg.HistoryMaxDays < 1 {
		errs = append(errs, ValidationError{"HISTORY_MAX_DAYS", "must be at least 1"})
	}
	if cfg.SearchRateLimit < 1 {
		errs = append(errs, ValidationError{"SEARCH_RATE_LIMIT", "must be at least 1"})
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
