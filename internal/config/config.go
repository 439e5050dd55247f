// Package config loads CLI settings from flags, DBCHANGELOG_* environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/koba/db-changelog/internal/database"
	"github.com/koba/db-changelog/internal/expr"
)

// EnvPrefix is the prefix of configuration environment variables
const EnvPrefix = "DBCHANGELOG"

// Config holds the settings shared by all commands
type Config struct {
	DB             database.Config   `mapstructure:"db"`
	Author         string            `mapstructure:"author"`
	Properties     map[string]string `mapstructure:"-"`
	PropertiesFile string            `mapstructure:"properties_file"`
	Log            LogConfig         `mapstructure:"log"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// keys bound to environment variables. The DB_* names predate the prefix.
var envKeys = map[string][]string{
	"db.type":         {"DB_TYPE"},
	"db.host":         {"DB_HOST"},
	"db.port":         {"DB_PORT"},
	"db.name":         {"DB_NAME"},
	"db.user":         {"DB_USER"},
	"db.password":     {"DB_PASSWORD"},
	"author":          nil,
	"properties_file": nil,
	"log.level":       nil,
}

// flags bound by name when present in the flag set
var flagKeys = map[string]string{
	"author":          "author",
	"properties-file": "properties_file",
	"log-level":       "log.level",
}

// Load reads the configuration. Flags that were set win over the environment,
// which wins over the file. An empty configPath skips the file.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("author", "dbchangelog")
	v.SetDefault("log.level", "info")

	for key, legacy := range envKeys {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, legacy...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if configPath != "" {
		props, err := fileProperties(configPath)
		if err != nil {
			return nil, err
		}
		cfg.Properties = props
	}
	if err := cfg.loadProperties(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileProperties reads the properties section of the config file.
// viper lowercases keys and property names are case sensitive.
func fileProperties(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc struct {
		Properties yaml.Node `yaml:"properties"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if doc.Properties.Kind == 0 {
		return nil, nil
	}
	raw, err := yaml.Marshal(&doc.Properties)
	if err != nil {
		return nil, fmt.Errorf("read config properties: %w", err)
	}
	props, err := expr.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("read config properties: %w", err)
	}
	return props, nil
}

// loadProperties merges the properties file under the inline properties
func (c *Config) loadProperties() error {
	props := make(map[string]string, len(c.Properties))
	if c.PropertiesFile != "" {
		fromFile, err := expr.LoadFile(c.PropertiesFile)
		if err != nil {
			return fmt.Errorf("load properties: %w", err)
		}
		for k, v := range fromFile {
			props[k] = v
		}
	}
	for k, v := range c.Properties {
		props[k] = v
	}
	c.Properties = props
	return nil
}

// Database returns the connection settings with defaults applied
func (c *Config) Database() (database.Config, error) {
	db, err := c.DB.WithDefaults()
	if err != nil {
		return db, fmt.Errorf("db.type: %w", err)
	}
	if db.Database == "" {
		return db, errors.New("database name is required (db.name)")
	}
	return db, nil
}

// Logger returns a text logger writing to w at the configured level
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
