// Package config loads application configuration from a YAML file with
// environment variable overrides and full defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/risk"
)

// Config represents the complete application configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Model      ModelConfig      `mapstructure:"model"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Overall    OverallConfig    `mapstructure:"overall"`
	Server     ServerConfig     `mapstructure:"server"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// StorageConfig selects the store backends.
type StorageConfig struct {
	// Driver is "memory" or "postgres".
	Driver      string `mapstructure:"driver"`
	PostgresDSN string `mapstructure:"postgres_dsn"`

	// ClickhouseDSN, when set, mirrors the derived tables into ClickHouse.
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
}

// FetchConfig holds the upstream source configuration.
type FetchConfig struct {
	CoingeckoBaseURL string        `mapstructure:"coingecko_base_url"`
	FearGreedBaseURL string        `mapstructure:"feargreed_base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`

	// Assets fetched from the market-chart endpoint.
	Assets []string `mapstructure:"assets"`

	// BackfillDays bounds the initial price fetch when a table is empty.
	BackfillDays int `mapstructure:"backfill_days"`

	// FearGreedLimit bounds incremental sentiment fetches; the initial
	// fetch on an empty store takes the full history.
	FearGreedLimit int `mapstructure:"feargreed_limit"`

	// TrendFile and MacroFile are optional JSON batch files for the
	// trend_scores and macro_indicators tables.
	TrendFile string `mapstructure:"trend_file"`
	MacroFile string `mapstructure:"macro_file"`
}

// ModelConfig holds issuance and stock-to-flow model parameters.
type ModelConfig struct {
	AssetID        string  `mapstructure:"asset_id"`
	BlockRewardBTC float64 `mapstructure:"block_reward_btc"`
	BlocksPerDay   float64 `mapstructure:"blocks_per_day"`
	RewardSince    string  `mapstructure:"reward_since"`
	S2FLogCoeff    float64 `mapstructure:"s2f_log_coeff"`
	S2FExponent    float64 `mapstructure:"s2f_exponent"`
}

// Issuance returns the configured issuance parameters.
func (m ModelConfig) Issuance() domain.IssuanceParams {
	return domain.IssuanceParams{
		BlockRewardBTC: m.BlockRewardBTC,
		BlocksPerDay:   m.BlocksPerDay,
		EffectiveFrom:  m.RewardSince,
	}
}

// S2FCalibration returns the configured stock-to-flow constants.
func (m ModelConfig) S2FCalibration() domain.S2FCalibration {
	return domain.S2FCalibration{LogCoeff: m.S2FLogCoeff, Exponent: m.S2FExponent}
}

// BoundConfig is one indicator's tier thresholds.
type BoundConfig struct {
	High      float64 `mapstructure:"high"`
	Medium    float64 `mapstructure:"medium"`
	LowIsGood bool    `mapstructure:"low_is_good"`
}

func (b BoundConfig) bound() risk.Bound {
	return risk.Bound{High: b.High, Medium: b.Medium, LowIsGood: b.LowIsGood}
}

// ThresholdsConfig holds the per-indicator classification bounds.
type ThresholdsConfig struct {
	Sentiment    BoundConfig `mapstructure:"sentiment"`
	Trend        BoundConfig `mapstructure:"trend"`
	PiCycleRatio BoundConfig `mapstructure:"pi_cycle_ratio"`
	WMARatio     BoundConfig `mapstructure:"wma_ratio"`
	Dominance    BoundConfig `mapstructure:"dominance"`
	S2FDeviation BoundConfig `mapstructure:"s2f_deviation"`
	Puell        BoundConfig `mapstructure:"puell"`
}

// Thresholds converts the config bounds into classifier thresholds.
func (t ThresholdsConfig) Thresholds() risk.Thresholds {
	return risk.Thresholds{
		Sentiment:    t.Sentiment.bound(),
		Trend:        t.Trend.bound(),
		PiCycleRatio: t.PiCycleRatio.bound(),
		WMARatio:     t.WMARatio.bound(),
		Dominance:    t.Dominance.bound(),
		S2FDeviation: t.S2FDeviation.bound(),
		Puell:        t.Puell.bound(),
	}
}

// OverallConfig holds the aggregate verdict cutoffs.
type OverallConfig struct {
	HighAt           int `mapstructure:"high_at"`
	MediumAtHigh     int `mapstructure:"medium_at_high"`
	MediumAtCombined int `mapstructure:"medium_at_combined"`
}

// Rule converts the config cutoffs into an aggregation rule.
func (o OverallConfig) Rule() risk.AggregateRule {
	return risk.AggregateRule{
		HighAt:           o.HighAt,
		MediumAtHigh:     o.MediumAtHigh,
		MediumAtCombined: o.MediumAtCombined,
	}
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SchedulerConfig holds the cron configuration.
type SchedulerConfig struct {
	// CronSpec in standard 5-field cron syntax, default 01:00 UTC daily.
	CronSpec string `mapstructure:"cron_spec"`

	// RunOnStart runs one cycle immediately before the schedule begins.
	RunOnStart bool `mapstructure:"run_on_start"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path loads defaults plus CYCLE_RADAR_* env overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("CYCLE_RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if len(c.Fetch.Assets) == 0 {
		return fmt.Errorf("fetch.assets must not be empty")
	}
	if c.Model.AssetID == "" {
		return fmt.Errorf("model.asset_id must not be empty")
	}
	return nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")

	v.SetDefault("fetch.coingecko_base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("fetch.feargreed_base_url", "https://api.alternative.me")
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.assets", []string{"bitcoin", "ethereum"})
	v.SetDefault("fetch.backfill_days", 360)
	v.SetDefault("fetch.feargreed_limit", 30)
	v.SetDefault("fetch.trend_file", "")
	v.SetDefault("fetch.macro_file", "")

	v.SetDefault("model.asset_id", "bitcoin")
	v.SetDefault("model.block_reward_btc", 3.125)
	v.SetDefault("model.blocks_per_day", 144)
	v.SetDefault("model.reward_since", "2024-04-20")
	v.SetDefault("model.s2f_log_coeff", 14.607)
	v.SetDefault("model.s2f_exponent", 3.3168)

	v.SetDefault("thresholds.sentiment.high", 80.0)
	v.SetDefault("thresholds.sentiment.medium", 65.0)
	v.SetDefault("thresholds.sentiment.low_is_good", true)
	v.SetDefault("thresholds.trend.high", 85.0)
	v.SetDefault("thresholds.trend.medium", 65.0)
	v.SetDefault("thresholds.trend.low_is_good", true)
	v.SetDefault("thresholds.pi_cycle_ratio.high", 1.0)
	v.SetDefault("thresholds.pi_cycle_ratio.medium", 0.95)
	v.SetDefault("thresholds.pi_cycle_ratio.low_is_good", true)
	v.SetDefault("thresholds.wma_ratio.high", 3.0)
	v.SetDefault("thresholds.wma_ratio.medium", 2.0)
	v.SetDefault("thresholds.wma_ratio.low_is_good", true)
	v.SetDefault("thresholds.dominance.high", 40.0)
	v.SetDefault("thresholds.dominance.medium", 48.0)
	v.SetDefault("thresholds.dominance.low_is_good", false)
	v.SetDefault("thresholds.s2f_deviation.high", 2.5)
	v.SetDefault("thresholds.s2f_deviation.medium", 1.7)
	v.SetDefault("thresholds.s2f_deviation.low_is_good", true)
	v.SetDefault("thresholds.puell.high", 3.0)
	v.SetDefault("thresholds.puell.medium", 1.8)
	v.SetDefault("thresholds.puell.low_is_good", true)

	v.SetDefault("overall.high_at", 3)
	v.SetDefault("overall.medium_at_high", 2)
	v.SetDefault("overall.medium_at_combined", 4)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("scheduler.cron_spec", "0 1 * * *")
	v.SetDefault("scheduler.run_on_start", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
}
