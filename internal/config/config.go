// Package config provides configuration types and defaults for featmodel.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/identifier"
	"github.com/zjrosen/featmodel/internal/log"
	"github.com/zjrosen/featmodel/internal/tracing"
)

// Config holds all configuration options for featmodel.
type Config struct {
	Model   ModelConfig    `mapstructure:"model" yaml:"model"`
	Store   StoreConfig    `mapstructure:"store" yaml:"store"`
	Cache   CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Log     LogConfig      `mapstructure:"log" yaml:"log"`
	Tracing tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Watch   WatchConfig    `mapstructure:"watch" yaml:"watch"`
}

// ModelConfig controls how models are built when they are decoded or created.
type ModelConfig struct {
	// IdentifierStrategy is "counter" (default) or "uuid".
	IdentifierStrategy string `mapstructure:"identifier_strategy" yaml:"identifier_strategy"`

	// NamePolicy is "permissive" (default) or "unique".
	NamePolicy string `mapstructure:"name_policy" yaml:"name_policy"`

	// AllowRootDeletion lets a sole root be removed, promoting its children.
	AllowRootDeletion bool `mapstructure:"allow_root_deletion" yaml:"allow_root_deletion"`

	// CascadeConstraints removes the constraints of a removed feature instead
	// of refusing the removal.
	CascadeConstraints bool `mapstructure:"cascade_constraints" yaml:"cascade_constraints"`
}

// StoreConfig holds model store location configuration.
type StoreConfig struct {
	// Path is the SQLite database file.
	// Default: ~/.featmodel/models.db
	Path string `mapstructure:"path" yaml:"path"`
}

// CacheConfig configures the read-through cache in front of the store.
type CacheConfig struct {
	Disabled        bool          `mapstructure:"disabled" yaml:"disabled"`
	TTL             time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
	Level   string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// WatchConfig configures `featmodel watch`.
type WatchConfig struct {
	// Debounce is how long to wait after the last file event before
	// revalidating.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// DefaultStorePath returns ~/.featmodel/models.db or an empty string if the
// home directory is unavailable.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".featmodel", "models.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Model: ModelConfig{
			IdentifierStrategy: "counter",
			NamePolicy:         "permissive",
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Log: LogConfig{
			Path:  "debug.log",
			Level: "debug",
		},
		Tracing: tracing.DefaultConfig(),
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
	}
}

// Validate checks the configuration for errors. Empty values are valid and
// fall back to defaults.
func (c Config) Validate() error {
	if err := ValidateModel(c.Model); err != nil {
		return err
	}
	if c.Cache.TTL < 0 || c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("cache.ttl and cache.cleanup_interval must not be negative")
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// ValidateModel checks the model section.
func ValidateModel(m ModelConfig) error {
	switch m.IdentifierStrategy {
	case "", "counter", "uuid":
	default:
		return fmt.Errorf("model.identifier_strategy must be \"counter\" or \"uuid\", got %q", m.IdentifierStrategy)
	}
	switch m.NamePolicy {
	case "", "permissive", "unique":
	default:
		return fmt.Errorf("model.name_policy must be \"permissive\" or \"unique\", got %q", m.NamePolicy)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	// Path requirements only matter when tracing is on.
	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ModelOptions converts the model section into options for
// featuremodel.New and the codecs. Every call returns a fresh identifier
// registry.
func (c Config) ModelOptions() []featuremodel.Option {
	var registry identifier.Registry = identifier.NewCounterRegistry()
	if c.Model.IdentifierStrategy == "uuid" {
		registry = identifier.NewUUIDRegistry()
	}
	policy := featuremodel.NamesPermissive
	if c.Model.NamePolicy == "unique" {
		policy = featuremodel.NamesUnique
	}
	return []featuremodel.Option{
		featuremodel.WithRegistry(registry),
		featuremodel.WithNamePolicy(policy),
		featuremodel.WithRootDeletion(c.Model.AllowRootDeletion),
		featuremodel.WithCascadeConstraints(c.Model.CascadeConstraints),
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# featmodel configuration

# How models are built when created or decoded
model:
  identifier_strategy: counter   # counter (default) or uuid
  name_policy: permissive        # permissive (default) or unique
  allow_root_deletion: false     # allow removing a sole root, promoting its children
  cascade_constraints: false     # removing a feature also removes its constraints

# Model store (SQLite)
# store:
#   path: ~/.featmodel/models.db

# Read-through cache in front of the store
cache:
  disabled: false
  ttl: 10m
  cleanup_interval: 30m

# Debug log file (also enabled with --debug or FEATMODEL_DEBUG=1)
log:
  enabled: false
  path: debug.log
  level: debug                   # debug, info, warn, error

# Distributed tracing
# tracing:
#   enabled: false               # Enable/disable tracing (default: false)
#   exporter: stdout             # Export backend: none, file, stdout, otlp
#   file_path: traces.jsonl      # Output file for file exporter
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0             # Trace sampling rate 0.0-1.0
#   service_name: featmodel

# featmodel watch
watch:
  debounce: 100ms
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
