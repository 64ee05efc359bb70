// Package config loads bibcheck configuration from defaults, config files,
// .env files, environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/christopherosthues/bibcheck/internal/checker"
)

const (
	// EnvPrefix prefixes every environment variable read by bibcheck.
	EnvPrefix = "BIBCHECK"
	// LocalConfigName is the config file looked up in the working directory.
	LocalConfigName = "bibcheck"
	// DotEnvFile is loaded from the working directory if present.
	DotEnvFile = ".env"
)

// Configuration keys. Flags bound to viper use the same names.
const (
	KeyMute               = "mute"
	KeyErrorsOnly         = "errors_only"
	KeyCheckAll           = "check_all"
	KeyCheckFields        = "check_fields"
	KeyCheckAbbreviations = "check_abbreviations"
	KeyCheckKeys          = "check_keys"
	KeyCheckKeyFormat     = "check_key_format"
	KeyCheckNames         = "check_names"
	KeyCheckEditors       = "check_editors"
	KeyRules              = "rules"
	KeyWorkers            = "workers"
	KeyLogLevel           = "log_level"
)

// ErrConfigFile is returned when a config file exists but cannot be used.
var ErrConfigFile = errors.New("invalid config file")

// Config is the merged configuration.
type Config struct {
	Mute               bool   `mapstructure:"mute" json:"mute"`
	ErrorsOnly         bool   `mapstructure:"errors_only" json:"errors_only"`
	CheckAll           bool   `mapstructure:"check_all" json:"check_all"`
	CheckFields        bool   `mapstructure:"check_fields" json:"check_fields"`
	CheckAbbreviations bool   `mapstructure:"check_abbreviations" json:"check_abbreviations"`
	CheckKeys          bool   `mapstructure:"check_keys" json:"check_keys"`
	CheckKeyFormat     bool   `mapstructure:"check_key_format" json:"check_key_format"`
	CheckNames         bool   `mapstructure:"check_names" json:"check_names"`
	CheckEditors       bool   `mapstructure:"check_editors" json:"check_editors"`
	Rules              string `mapstructure:"rules" json:"rules,omitempty"` // Path to a YAML rules file
	Workers            int    `mapstructure:"workers" json:"workers"`
	LogLevel           string `mapstructure:"log_level" json:"log_level"`

	// Source is the config file that was read, if any.
	Source string `mapstructure:"-" json:"source,omitempty"`
}

// New returns a viper instance with bibcheck's defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyLogLevel, "warn")
	for _, key := range []string{
		KeyMute, KeyErrorsOnly, KeyCheckAll, KeyCheckFields, KeyCheckAbbreviations,
		KeyCheckKeys, KeyCheckKeyFormat, KeyCheckNames, KeyCheckEditors,
	} {
		v.SetDefault(key, false)
	}
	v.SetDefault(KeyRules, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and returns the merged configuration.
// If path is empty, bibcheck.yaml in dir and then the global config file are
// tried; a missing file is not an error. A .env file in dir is loaded into
// the environment first without overriding variables already set.
func Load(v *viper.Viper, path, dir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(dir, DotEnvFile)); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(ExpandTilde(path))
	} else {
		v.SetConfigName(LocalConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", ErrConfigFile, err)
		}
	}

	if path == "" && v.ConfigFileUsed() == "" {
		if err := readGlobal(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	cfg.Source = v.ConfigFileUsed()
	cfg.Rules = ExpandTilde(cfg.Rules)
	return &cfg, nil
}

// readGlobal merges the global config.yml, whose name differs from the local file's.
func readGlobal(v *viper.Viper) error {
	global := GlobalConfigPath()
	if global == "" {
		return nil
	}
	if _, err := os.Stat(global); err != nil {
		return nil
	}
	v.SetConfigFile(global)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Options converts the configuration into checker options.
func (c *Config) Options() checker.Options {
	return checker.Options{
		Mute:               c.Mute,
		ErrorsOnly:         c.ErrorsOnly,
		CheckAll:           c.CheckAll,
		CheckFields:        c.CheckFields,
		CheckAbbreviations: c.CheckAbbreviations,
		CheckKeys:          c.CheckKeys,
		CheckKeyFormat:     c.CheckKeyFormat,
		CheckNames:         c.CheckNames,
		CheckEditors:       c.CheckEditors,
		Workers:            c.Workers,
	}
}
