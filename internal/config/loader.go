// Package config provides configuration management for the smartslip engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "SMARTSLIP"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration, tolerating a missing file.
// Missing values fall back to DefaultEngineConfig and environment variables.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers every engine default so AutomaticEnv can override
// keys that never appear in the YAML file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "smartslip")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "smartslip")
	v.SetDefault("database.user", "smartslip")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("redis.key_prefix", "smartslip:prior:")

	v.SetDefault("feed.retry_max", 3)
	v.SetDefault("feed.timeout_seconds", 10)

	v.SetDefault("provider.lookup_timeout_ms", 2000)
	v.SetDefault("provider.requests_per_second", 50)
	v.SetDefault("provider.burst", 20)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.purge_schedule", "@every 10m")

	d := DefaultEngineConfig()
	v.SetDefault("engine.sharp_book", d.SharpBook)
	v.SetDefault("engine.model_version", d.ModelVersion)

	v.SetDefault("engine.blend.sharp_weight", d.Blend.SharpWeight)
	v.SetDefault("engine.blend.consensus_weight", d.Blend.ConsensusWeight)
	v.SetDefault("engine.blend.prior_weight", d.Blend.PriorWeight)
	v.SetDefault("engine.blend.consensus_full_books", d.Blend.ConsensusFullBooks)
	v.SetDefault("engine.blend.tier_multipliers.high", d.Blend.TierMultipliers.High)
	v.SetDefault("engine.blend.tier_multipliers.medium", d.Blend.TierMultipliers.Medium)
	v.SetDefault("engine.blend.tier_multipliers.low", d.Blend.TierMultipliers.Low)
	v.SetDefault("engine.blend.tier_multipliers.very_low", d.Blend.TierMultipliers.VeryLow)
	v.SetDefault("engine.blend.score.sharp", d.Blend.Score.Sharp)
	v.SetDefault("engine.blend.score.consensus", d.Blend.Score.Consensus)
	v.SetDefault("engine.blend.score.prior", d.Blend.Score.Prior)
	v.SetDefault("engine.blend.score.implied_only", d.Blend.Score.ImpliedOnly)

	v.SetDefault("engine.thresholds.min_single_ev_percent", d.Thresholds.MinSingleEVPercent)
	v.SetDefault("engine.thresholds.min_parlay_leg_ev_percent", d.Thresholds.MinParlayLegEVPercent)
	v.SetDefault("engine.thresholds.min_parlay_ev_percent", d.Thresholds.MinParlayEVPercent)
	v.SetDefault("engine.thresholds.min_probability", d.Thresholds.MinProbability)
	v.SetDefault("engine.thresholds.max_probability", d.Thresholds.MaxProbability)
	v.SetDefault("engine.thresholds.min_confidence", d.Thresholds.MinConfidence)
	v.SetDefault("engine.thresholds.kelly_fraction", d.Thresholds.KellyFraction)

	v.SetDefault("engine.movement.moneyline.drift", d.Movement.Moneyline.Drift)
	v.SetDefault("engine.movement.moneyline.velocity", d.Movement.Moneyline.Velocity)
	v.SetDefault("engine.movement.moneyline.favorite_pressure", d.Movement.Moneyline.FavoritePressure)
	v.SetDefault("engine.movement.spread_total.drift", d.Movement.SpreadTotal.Drift)
	v.SetDefault("engine.movement.spread_total.velocity", d.Movement.SpreadTotal.Velocity)
	v.SetDefault("engine.movement.spread_total.favorite_pressure", d.Movement.SpreadTotal.FavoritePressure)
	v.SetDefault("engine.movement.anchor_minutes", d.Movement.AnchorMinutes)
	v.SetDefault("engine.movement.velocity_window_minutes", d.Movement.VelocityWindowMinutes)

	v.SetDefault("engine.correlation.same_game_penalty", d.Correlation.SameGamePenalty)
	v.SetDefault("engine.correlation.same_market_penalty", d.Correlation.SameMarketPenalty)
	v.SetDefault("engine.correlation.floor", d.Correlation.Floor)
	v.SetDefault("engine.correlation.warning_threshold", d.Correlation.WarningThreshold)

	v.SetDefault("engine.smart_score.ev_weight", d.SmartScore.EVWeight)
	v.SetDefault("engine.smart_score.confidence_weight", d.SmartScore.ConfidenceWeight)
	v.SetDefault("engine.smart_score.movement_weight", d.SmartScore.MovementWeight)
	v.SetDefault("engine.smart_score.ev_scale_percent", d.SmartScore.EVScalePercent)

	v.SetDefault("engine.history.cache_ttl_seconds", d.History.CacheTTLSeconds)
	v.SetDefault("engine.history.lookback_days", d.History.LookbackDays)
	v.SetDefault("engine.history.cache_backend", d.History.CacheBackend)
	v.SetDefault("engine.history.cache_max_entries", d.History.CacheMaxEntries)
}
