package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load()
	if cfg.DefaultGauge != "16 AWG" {
		t.Errorf("DefaultGauge = %q, want %q", cfg.DefaultGauge, "16 AWG")
	}
	if cfg.DefaultRoutingFactor != 1.2 {
		t.Errorf("DefaultRoutingFactor = %v, want 1.2", cfg.DefaultRoutingFactor)
	}
	if cfg.HistoryPath != ".nacalc/history.db" {
		t.Errorf("HistoryPath = %q", cfg.HistoryPath)
	}
	if cfg.TelemetryPath != "" {
		t.Errorf("TelemetryPath = %q, want empty", cfg.TelemetryPath)
	}
	if cfg.Verbose {
		t.Error("Verbose = true, want false")
	}
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("default_gauge", "12 AWG")
	viper.Set("verbose", true)

	cfg := Load()
	if cfg.DefaultGauge != "12 AWG" {
		t.Errorf("DefaultGauge = %q, want %q", cfg.DefaultGauge, "12 AWG")
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}
