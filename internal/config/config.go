package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type PortalConfig struct {
	DashboardURL string `mapstructure:"dashboard_url"` // enrichment dashboard (login entry point)
	BaseURL      string `mapstructure:"base_url"`      // activity-enrichment API host
	Headless     bool   `mapstructure:"headless"`
	SlowMoMs     int    `mapstructure:"slow_mo_ms"`
}

type SubmissionConfig struct {
	MinActiveDays   int    `mapstructure:"min_active_days"`
	DefaultClockIn  string `mapstructure:"default_clock_in"`  // "09:00 am"
	DefaultClockOut string `mapstructure:"default_clock_out"` // "06:00 pm"
	DryRun          bool   `mapstructure:"dry_run"`
}

type Config struct {
	Portal     PortalConfig     `mapstructure:"portal"`
	Submission SubmissionConfig `mapstructure:"submission"`
	LogFile    string           `mapstructure:"log_file"`
	Notify     bool             `mapstructure:"notify"`
}

func Default() Config {
	return Config{
		Portal: PortalConfig{
			DashboardURL: "https://enrichment.apps.binus.ac.id/Dashboard",
			BaseURL:      "https://activity-enrichment.apps.binus.ac.id",
			Headless:     true,
			SlowMoMs:     0,
		},
		Submission: SubmissionConfig{
			MinActiveDays:   10,
			DefaultClockIn:  "09:00 am",
			DefaultClockOut: "06:00 pm",
			DryRun:          false,
		},
		LogFile: defaultLogPath(),
		Notify:  true,
	}
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logbook.log"
	}
	return filepath.Join(home, ".local", "share", "logbook", "run.log")
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "logbook")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the yaml config, falling back to defaults when the file
// is absent. Environment variables prefixed LOGBOOK_ override keys.
func Load() (Config, error) {
	cfg := Default()

	path, err := configPath()
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("LOGBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults
	v.SetDefault("portal.dashboard_url", cfg.Portal.DashboardURL)
	v.SetDefault("portal.base_url", cfg.Portal.BaseURL)
	v.SetDefault("portal.headless", cfg.Portal.Headless)
	v.SetDefault("portal.slow_mo_ms", cfg.Portal.SlowMoMs)
	v.SetDefault("submission.min_active_days", cfg.Submission.MinActiveDays)
	v.SetDefault("submission.default_clock_in", cfg.Submission.DefaultClockIn)
	v.SetDefault("submission.default_clock_out", cfg.Submission.DefaultClockOut)
	v.SetDefault("submission.dry_run", cfg.Submission.DryRun)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("notify", cfg.Notify)

	_ = v.ReadInConfig() // ok if missing
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	return cfg, nil
}
