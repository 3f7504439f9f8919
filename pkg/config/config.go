// Package config loads restkit's ambient tunables from
// <home>/.rest-api-tui/config.yaml via viper — the same pattern the CLI uses
// to wire viper to a JSON config file, adapted to YAML since restkit has no
// other file competing for viper's config-type guess.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunables that used to be hardcoded constants, plus the
// sampling intervals the load-test engine and HTTP client use.
type Config struct {
	// DefaultTimeout is the per-request timeout used when an endpoint
	// specifies none.
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`

	// MaxIdleConnsPerHost bounds the shared HTTP client's connection pool.
	MaxIdleConnsPerHost int `mapstructure:"max_idle_conns_per_host"`

	// RPSSampleWindow is the trailing window used by the rolling RPS
	// calculation.
	RPSSampleWindow time.Duration `mapstructure:"rps_sample_window"`

	// TimeSeriesSampleInterval is how often the load-test engine appends a
	// time-series point.
	TimeSeriesSampleInterval time.Duration `mapstructure:"time_series_sample_interval"`

	// WorkerSleep is the inter-iteration sleep each load-test worker
	// observes between requests.
	WorkerSleep time.Duration `mapstructure:"worker_sleep"`
}

// Default returns the tunables restkit ships with out of the box.
func Default() Config {
	return Config{
		DefaultTimeout:           30 * time.Second,
		MaxIdleConnsPerHost:      10,
		RPSSampleWindow:          time.Second,
		TimeSeriesSampleInterval: 5 * time.Second,
		WorkerSleep:              10 * time.Millisecond,
	}
}

// Load reads <baseDir>/config.yaml if present, overlaying it onto Default().
// A missing file is not an error: restkit runs entirely on defaults.
func Load(baseDir string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(baseDir)

	v.SetDefault("default_timeout", cfg.DefaultTimeout)
	v.SetDefault("max_idle_conns_per_host", cfg.MaxIdleConnsPerHost)
	v.SetDefault("rps_sample_window", cfg.RPSSampleWindow)
	v.SetDefault("time_series_sample_interval", cfg.TimeSeriesSampleInterval)
	v.SetDefault("worker_sleep", cfg.WorkerSleep)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Path returns the config.yaml path under baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, "config.yaml")
}
