// Package config provides configuration types and defaults for the depgraph
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultFile is read from the working directory when no config file is given.
const DefaultFile = ".depgraph.yaml"

// Config holds all configuration options for depgraph.
type Config struct {
	// Declarations are file names or glob patterns of YAML declaration files.
	Declarations []string      `mapstructure:"declarations"`
	Log          LogConfig     `mapstructure:"log"`
	Timing       bool          `mapstructure:"timing"`
	Watch        WatchConfig   `mapstructure:"watch"`
	Metrics      MetricsConfig `mapstructure:"metrics"`
	Trace        TraceConfig   `mapstructure:"trace"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // "console" (default) or "json"
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// MetricsConfig configures the prometheus endpoint of watch mode.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// TraceConfig configures span export.
type TraceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// SetDefaults registers Defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("declarations", d.Declarations)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("timing", d.Timing)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("trace.enabled", d.Trace.Enabled)
}

// Load reads the configuration into v and decodes it. file is used if set;
// otherwise DefaultFile is read when it exists. Environment variables prefixed
// with DEPGRAPH_ override file values.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("depgraph")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be checked by decoding alone.
func (c Config) Validate() error {
	var errs []error
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative"))
	}
	return errors.Join(errs...)
}

// ExpandDeclarations resolves the declaration patterns to a sorted list of
// files. A pattern that matches nothing is an error.
func ExpandDeclarations(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("declaration pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("declaration pattern %q matches no files", pattern)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
