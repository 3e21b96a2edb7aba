// Package config provides configuration management for the smartslip engine.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("cachebackend", validateCacheBackend)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// ValidateEngine validates only the engine policy. Components call this when
// they are built from a hand-assembled EngineConfig.
func ValidateEngine(cfg EngineConfig) error {
	cv := NewValidator()
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateEngineCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCacheBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "memory", "redis":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if err := validateEngineCrossField(cfg.Engine); err != nil {
		return err
	}

	if cfg.Engine.History.CacheBackend == "redis" && cfg.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when engine.history.cache_backend is 'redis'")
	}

	if cfg.Feed.Enabled && cfg.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required when the odds feed is enabled")
	}

	if cfg.Scheduler.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Scheduler.PurgeSchedule); err != nil {
			return fmt.Errorf("invalid scheduler.purge_schedule %q: %w", cfg.Scheduler.PurgeSchedule, err)
		}
		if cfg.Scheduler.InvalidateDaily != "" {
			if _, err := parser.Parse(cfg.Scheduler.InvalidateDaily); err != nil {
				return fmt.Errorf("invalid scheduler.invalidate_daily %q: %w", cfg.Scheduler.InvalidateDaily, err)
			}
		}
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

func validateEngineCrossField(e EngineConfig) error {
	t := e.Thresholds
	if t.MinProbability >= t.MaxProbability {
		return fmt.Errorf("min_probability (%.2f) must be below max_probability (%.2f)", t.MinProbability, t.MaxProbability)
	}

	b := e.Blend
	if b.SharpWeight+b.ConsensusWeight+b.PriorWeight <= 0 {
		return fmt.Errorf("at least one blend weight must be positive")
	}
	if b.Score.ImpliedOnly >= b.Score.Consensus || b.Score.ImpliedOnly >= b.Score.Sharp {
		return fmt.Errorf("blend.score.implied_only must be below the sharp and consensus scores")
	}
	if b.Score.Sharp+b.Score.Consensus+b.Score.Prior > 100 {
		return fmt.Errorf("blend confidence scores must not sum above 100")
	}

	s := e.SmartScore
	if math.Abs(s.EVWeight+s.ConfidenceWeight+s.MovementWeight-1.0) > 1e-6 {
		return fmt.Errorf("smart_score weights must sum to 1.0")
	}

	c := e.Correlation
	if c.Floor > c.WarningThreshold {
		return fmt.Errorf("correlation floor cannot exceed warning_threshold")
	}

	if strings.TrimSpace(e.SharpBook) == "" {
		return fmt.Errorf("engine.sharp_book must not be blank")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "cachebackend":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: memory, redis\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
