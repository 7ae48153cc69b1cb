// Package config provides configuration management for pmk using Viper for
// loading from files, environment variables, and command-line flags.
//
// Sources, highest priority first:
//  1. Command-line flags bound by the cmd package
//  2. PMK_* environment variables (PMK_WORDCOUNT_CACHE_SIZE, PMK_LOG_LEVEL, ...)
//  3. A .env file in the working directory, which never overrides variables
//     already present in the environment
//  4. The configuration file (--config, PMK_CONFIG_FILE, or .prosemark.yml)
//  5. Defaults
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/logging"
)

const (
	// EnvPrefix is prepended to every environment variable key.
	EnvPrefix = "PMK"

	// ConfigFileEnv names a config file to use instead of .prosemark.yml.
	ConfigFileEnv = "PMK_CONFIG_FILE"

	// DefaultConfigName is the config file searched for in the working
	// directory, without extension.
	DefaultConfigName = ".prosemark"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

type Config struct {
	Project   ProjectConfig   `mapstructure:"project" yaml:"project"`
	WordCount WordCountConfig `mapstructure:"wordcount" yaml:"wordcount"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

type ProjectConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type WordCountConfig struct {
	IncludeEmpty bool   `mapstructure:"include_empty" yaml:"include_empty"`
	CacheSize    int    `mapstructure:"cache_size" yaml:"cache_size"`
	Format       string `mapstructure:"format" yaml:"format"`
}

type WatchConfig struct {
	Debounce   time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Extensions []string      `mapstructure:"extensions" yaml:"extensions"`
}

// MarshalYAML writes the debounce as a duration string such as "300ms",
// the form the decoder reads back.
func (w WatchConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Debounce   string   `yaml:"debounce"`
		Extensions []string `yaml:"extensions"`
	}{w.Debounce.String(), w.Extensions}, nil
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type MetricsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{Path: "."},
		WordCount: WordCountConfig{
			CacheSize: 256,
			Format:    "text",
		},
		Watch: WatchConfig{
			Debounce:   300 * time.Millisecond,
			Extensions: []string{".md"},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// SetDefaults registers every key with v so that AutomaticEnv can see keys
// that no config file mentions.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("project.path", d.Project.Path)
	v.SetDefault("wordcount.include_empty", d.WordCount.IncludeEmpty)
	v.SetDefault("wordcount.cache_size", d.WordCount.CacheSize)
	v.SetDefault("wordcount.format", d.WordCount.Format)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.extensions", d.Watch.Extensions)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.file", d.Metrics.File)
}

// Configure points v at the configuration file and the PMK_ environment.
//
// File selection, highest priority first:
//  1. cfgFile, usually the --config flag
//  2. the PMK_CONFIG_FILE environment variable
//  3. .prosemark.yml in the working directory
func Configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(ConfigFileEnv); envConfigFile != "" {
		v.SetConfigFile(envConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(DefaultConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}

// ReadInConfig reads the file selected by Configure and returns its path.
// A missing default file is not an error; a missing explicit file is.
func ReadInConfig(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return "", nil
		}
		return "", errors.Wrap(err, errors.ErrorTypeConfig, errors.ErrCodeConfigInvalid, "read configuration file")
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes and validates the configuration held by the global viper.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom decodes and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config, err := Decode(v)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Decode decodes the configuration held by v without validating it.
func Decode(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.ErrCodeConfigInvalid, "decode configuration")
	}

	// Environment values arrive as one string; viper splits them on whitespace
	if v.IsSet("watch.extensions") && len(config.Watch.Extensions) <= 1 {
		if exts := v.GetStringSlice("watch.extensions"); len(exts) > 0 {
			config.Watch.Extensions = exts
		}
	}

	return &config, nil
}

// LoggerConfig translates the log section into a logger configuration.
func (c LogConfig) LoggerConfig() (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, err.Error()).
			WithContext("field", "log.level")
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = c.Format
	return lc, nil
}
