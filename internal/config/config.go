// Package config holds the host application's runtime configuration. This
// is tool configuration only — the electrical parameter contract for a
// circuit lives in the project file and is validated by the engine, never
// defaulted here.
package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for a nacalc session. Values are
// populated from .nacalc.yaml, NACALC_* env vars, and CLI flags.
type Config struct {
	// DefaultGauge is used when a project file names no wire gauge.
	DefaultGauge string `mapstructure:"default_gauge"`
	// DefaultRoutingFactor is used when a project file names no routing factor.
	DefaultRoutingFactor float64 `mapstructure:"default_routing_factor"`
	// HistoryPath is the SQLite database holding named circuit snapshots.
	HistoryPath string `mapstructure:"history_path"`
	// TelemetryPath is the JSONL event log; empty disables telemetry.
	TelemetryPath string `mapstructure:"telemetry_path"`
	Verbose       bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("default_gauge", "16 AWG")
	viper.SetDefault("default_routing_factor", 1.2)
	viper.SetDefault("history_path", ".nacalc/history.db")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
