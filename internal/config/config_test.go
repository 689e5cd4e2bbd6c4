package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/tracing"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "counter", cfg.Model.IdentifierStrategy)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"identifier strategy", func(c *Config) { c.Model.IdentifierStrategy = "random" }, "model.identifier_strategy"},
		{"name policy", func(c *Config) { c.Model.NamePolicy = "strict" }, "model.name_policy"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, "tracing.exporter"},
		{"file path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "file"
		}, "tracing.file_path"},
		{"otlp endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
			c.Tracing.OTLPEndpoint = ""
		}, "tracing.otlp_endpoint"},
		{"debounce", func(c *Config) { c.Watch.Debounce = -time.Millisecond }, "watch.debounce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_EmptyValuesUseDefaults(t *testing.T) {
	require.NoError(t, Config{}.Validate())
}

// Disabled tracing does not need its exporter settings.
func TestValidateTracing_DisabledSkipsPaths(t *testing.T) {
	tc := tracing.Config{Enabled: false, Exporter: "file", SampleRate: 1.0}
	require.NoError(t, ValidateTracing(tc))
}

func TestModelOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Model.NamePolicy = "unique"
	cfg.Model.IdentifierStrategy = "uuid"

	m := featuremodel.New(cfg.ModelOptions()...)
	t.Cleanup(m.Close)
	require.Equal(t, featuremodel.NamesUnique, m.NamePolicy())

	_, err := m.AddFeature("A")
	require.NoError(t, err)
	_, err = m.AddFeature("A")
	require.ErrorIs(t, err, featuremodel.ErrDuplicateName)

	f, ok := m.FeatureByName("A")
	require.True(t, ok)
	require.Len(t, f.ID().String(), 36, "uuid identifiers")
}

func TestModelOptions_FreshRegistry(t *testing.T) {
	cfg := Defaults()

	a := featuremodel.New(cfg.ModelOptions()...)
	b := featuremodel.New(cfg.ModelOptions()...)
	t.Cleanup(a.Close)
	t.Cleanup(b.Close)

	fa, err := a.AddFeature("X")
	require.NoError(t, err)
	fb, err := b.AddFeature("X")
	require.NoError(t, err)
	require.Equal(t, fa.ID(), fb.ID(), "each model counts from the same start")
}

func TestKeys(t *testing.T) {
	keys := Keys()
	require.Contains(t, keys, "model.name_policy")
	require.Contains(t, keys, "cache.ttl")
	require.Contains(t, keys, "tracing.otlp_endpoint")
	require.Contains(t, keys, "watch.debounce")
	require.NotContains(t, keys, "model")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `model:
  name_policy: unique
cache:
  ttl: 5s
watch:
  debounce: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "unique", cfg.Model.NamePolicy)
	require.Equal(t, "counter", cfg.Model.IdentifierStrategy, "unset keys keep defaults")
	require.Equal(t, 5*time.Second, cfg.Cache.TTL)
	require.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	require.Equal(t, 30*time.Minute, cfg.Cache.CleanupInterval)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: /tmp/a.db\n"), 0o600))
	t.Setenv("FEATMODEL_STORE_PATH", "/tmp/b.db")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/b.db", cfg.Store.Path)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  name_policy: strict\n"), 0o600))

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid config")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	// The template must load to the defaults.
	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	want := Defaults()
	require.Equal(t, want.Model, cfg.Model)
	require.Equal(t, want.Cache, cfg.Cache)
	require.Equal(t, want.Log, cfg.Log)
	require.Equal(t, want.Watch, cfg.Watch)
}
