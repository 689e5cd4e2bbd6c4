package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/featmodel/internal/log"
)

// LocalConfigPath is the project-local config file, checked before the user
// config.
const LocalConfigPath = ".featmodel/config.yaml"

// EnvPrefix prefixes environment overrides, e.g. FEATMODEL_STORE_PATH.
const EnvPrefix = "FEATMODEL"

// SetDefaults registers every field of Defaults() with v.
func SetDefaults(v *viper.Viper) {
	setDefaults(v, "", reflect.ValueOf(Defaults()))
}

func setDefaults(v *viper.Viper, prefix string, val reflect.Value) {
	t := val.Type()
	for i := range t.NumField() {
		key := t.Field(i).Tag.Get("mapstructure")
		if prefix != "" {
			key = prefix + "." + key
		}
		field := val.Field(i)
		if field.Kind() == reflect.Struct {
			setDefaults(v, key, field)
			continue
		}
		v.SetDefault(key, field.Interface())
	}
}

// Keys returns every dotted config key, e.g. "cache.ttl".
func Keys() []string {
	var keys []string
	collectKeys("", reflect.TypeOf(Config{}), &keys)
	return keys
}

func collectKeys(prefix string, t reflect.Type, keys *[]string) {
	for i := range t.NumField() {
		key := t.Field(i).Tag.Get("mapstructure")
		if prefix != "" {
			key = prefix + "." + key
		}
		if t.Field(i).Type.Kind() == reflect.Struct {
			collectKeys(key, t.Field(i).Type, keys)
			continue
		}
		*keys = append(*keys, key)
	}
}

// Load reads the configuration into v and returns it. With an explicit path
// only that file is read. Otherwise LocalConfigPath is used when it exists,
// then ~/.config/featmodel/config.yaml. A missing config file is not an
// error. Environment variables with EnvPrefix override file values.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case path != "":
		v.SetConfigFile(path)
	case fileExists(LocalConfigPath):
		v.SetConfigFile(LocalConfigPath)
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "featmodel"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file found, using defaults")
	} else {
		log.Debug(log.CatConfig, "Loaded config", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
