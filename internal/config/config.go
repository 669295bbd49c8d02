// Package config defines all configuration for a backtest run.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// overrides available via BACKTEST_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML
// file structure.
type Config struct {
	Sim       SimConfig       `mapstructure:"sim"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// SimConfig is the simulator's latency model: how long a placed
// order, a cancel, and a market-data update each take to arrive.
// CancelLatencyNanos may be left at zero to default to
// ExecutionLatencyNanos, so cancel latency is its own knob rather than
// folded into execution latency.
type SimConfig struct {
	ExecutionLatencyNanos int64 `mapstructure:"execution_latency_nanos"`
	CancelLatencyNanos    int64 `mapstructure:"cancel_latency_nanos"`
	MdLatencyNanos        int64 `mapstructure:"md_latency_nanos"`
}

// FeedConfig points at the recorded market-data stream to replay.
// Format is validated against "jsonl" (one MdUpdate per line); the
// loader shipped in this repo only implements that format.
type FeedConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

// RiskConfig tunes the backtest's invariant monitor: the bounded
// rolling window it keeps to flag an implausible quoted spread, and
// the cap on simultaneously resting own orders it treats as a runaway
// strategy signal.
type RiskConfig struct {
	SpreadWindow     time.Duration `mapstructure:"spread_window"`
	MaxSpreadBps     float64       `mapstructure:"max_spread_bps"`
	MaxRestingOrders int           `mapstructure:"max_resting_orders"`
}

// StoreConfig sets where the run summary is persisted (JSON file).
type StoreConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LoggingConfig controls slog's handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DashboardConfig controls the optional live-replay websocket server.
type DashboardConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config from a YAML file with env var overrides.
// BACKTEST_FEED_PATH, BACKTEST_STORE_DATA_DIR and friends override the
// matching nested field.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BACKTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if path := os.Getenv("BACKTEST_FEED_PATH"); path != "" {
		cfg.Feed.Path = path
	}
	if dir := os.Getenv("BACKTEST_STORE_DATA_DIR"); dir != "" {
		cfg.Store.DataDir = dir
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Sim.ExecutionLatencyNanos < 0 {
		return fmt.Errorf("sim.execution_latency_nanos must be >= 0")
	}
	if c.Sim.CancelLatencyNanos < 0 {
		return fmt.Errorf("sim.cancel_latency_nanos must be >= 0")
	}
	if c.Sim.MdLatencyNanos < 0 {
		return fmt.Errorf("sim.md_latency_nanos must be >= 0")
	}
	if c.Feed.Path == "" {
		return fmt.Errorf("feed.path is required")
	}
	switch c.Feed.Format {
	case "", "jsonl":
	default:
		return fmt.Errorf("feed.format must be \"jsonl\" (got %q)", c.Feed.Format)
	}
	if c.Risk.MaxSpreadBps <= 0 {
		return fmt.Errorf("risk.max_spread_bps must be > 0")
	}
	if c.Risk.MaxRestingOrders <= 0 {
		return fmt.Errorf("risk.max_resting_orders must be > 0")
	}
	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir is required")
	}
	return nil
}
