// Package config loads sift settings from defaults, an optional YAML, TOML
// or JSON file and SIFT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// EnvPrefix is the prefix of every environment override, e.g.
// SIFT_ENGINE_WORKERS.
const EnvPrefix = "SIFT"

// Config holds all sift configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Input     InputConfig     `mapstructure:"input"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Sanitizer SanitizerConfig `mapstructure:"sanitizer"`
	Output    OutputConfig    `mapstructure:"output"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LogConfig controls diagnostic logging on stderr or a rotating file.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // "json" or "console"
	File      string `mapstructure:"file"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// InputConfig selects the artifact source.
type InputConfig struct {
	Provider string        `mapstructure:"provider"` // "file" or "ndjson"
	MaxBytes int64         `mapstructure:"max_bytes"`
	Settle   time.Duration `mapstructure:"settle"` // quiet period before a followed file is read
}

// EngineConfig holds pipeline settings.
type EngineConfig struct {
	DirectLimit int `mapstructure:"direct_limit"` // fallback truncation budget in characters
	Workers     int `mapstructure:"workers"`      // 0 = one per CPU
}

// SanitizerConfig points at the external redaction service. An empty
// endpoint disables sanitization.
type SanitizerConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Format    string `mapstructure:"format"`    // "ndjson" or "pretty"
	Path      string `mapstructure:"path"`      // additional rotating NDJSON file
	Verbosity string `mapstructure:"verbosity"` // "minimal", "standard", "full"
	MaxSizeMB int    `mapstructure:"max_size_mb"`

	WebhookURL       string `mapstructure:"webhook_url"`
	WebhookToken     string `mapstructure:"webhook_token"`
	WebhookBatchSize int    `mapstructure:"webhook_batch_size"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info", Format: "json", MaxSizeMB: 50},
		Input:     InputConfig{Provider: "file", Settle: 250 * time.Millisecond},
		Engine:    EngineConfig{DirectLimit: 10000},
		Sanitizer: SanitizerConfig{Timeout: 10 * time.Second},
		Output: OutputConfig{
			Format:           "ndjson",
			Verbosity:        "standard",
			MaxSizeMB:        100,
			WebhookBatchSize: 20,
		},
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType(path))
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// configType maps a file extension to a viper config type. Unknown
// extensions are read as YAML.
func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("input.provider", d.Input.Provider)
	v.SetDefault("input.max_bytes", d.Input.MaxBytes)
	v.SetDefault("input.settle", d.Input.Settle)
	v.SetDefault("engine.direct_limit", d.Engine.DirectLimit)
	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("sanitizer.endpoint", d.Sanitizer.Endpoint)
	v.SetDefault("sanitizer.token", d.Sanitizer.Token)
	v.SetDefault("sanitizer.timeout", d.Sanitizer.Timeout)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.verbosity", d.Output.Verbosity)
	v.SetDefault("output.max_size_mb", d.Output.MaxSizeMB)
	v.SetDefault("output.webhook_url", d.Output.WebhookURL)
	v.SetDefault("output.webhook_token", d.Output.WebhookToken)
	v.SetDefault("output.webhook_batch_size", d.Output.WebhookBatchSize)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

var (
	validLevels     = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
	validOutputs    = map[string]bool{"ndjson": true, "pretty": true}
	validProviders  = map[string]bool{"file": true, "ndjson": true}
	validVerbosity  = map[string]bool{"minimal": true, "standard": true, "full": true}
)

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	if !validProviders[c.Input.Provider] {
		errs = append(errs, fmt.Errorf("input.provider %q must be file or ndjson", c.Input.Provider))
	}
	if c.Input.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("input.max_bytes must be >= 0, got %d", c.Input.MaxBytes))
	}
	if c.Engine.DirectLimit <= 0 {
		errs = append(errs, fmt.Errorf("engine.direct_limit must be positive, got %d", c.Engine.DirectLimit))
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("engine.workers must be >= 0, got %d", c.Engine.Workers))
	}
	if c.Sanitizer.Endpoint != "" && !httpURL(c.Sanitizer.Endpoint) {
		errs = append(errs, fmt.Errorf("sanitizer.endpoint %q must be an http(s) URL", c.Sanitizer.Endpoint))
	}
	if c.Sanitizer.Timeout < 0 {
		errs = append(errs, fmt.Errorf("sanitizer.timeout must be >= 0, got %s", c.Sanitizer.Timeout))
	}
	if !validOutputs[c.Output.Format] {
		errs = append(errs, fmt.Errorf("output.format %q must be ndjson or pretty", c.Output.Format))
	}
	if !validVerbosity[c.Output.Verbosity] {
		errs = append(errs, fmt.Errorf("output.verbosity %q must be minimal, standard or full", c.Output.Verbosity))
	}
	if c.Output.WebhookURL != "" && !httpURL(c.Output.WebhookURL) {
		errs = append(errs, fmt.Errorf("output.webhook_url %q must be an http(s) URL", c.Output.WebhookURL))
	}
	if c.Output.WebhookBatchSize < 1 {
		errs = append(errs, fmt.Errorf("output.webhook_batch_size must be positive, got %d", c.Output.WebhookBatchSize))
	}

	return errors.Join(errs...)
}

func httpURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
