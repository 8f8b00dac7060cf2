package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the soakd runtime configuration.
type Config struct {
	Listen   string         `mapstructure:"listen"`
	Database DatabaseConfig `mapstructure:"database"`
	Mappings string         `mapstructure:"mappings"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// DatabaseConfig selects the backing store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig points the definition cache at a Redis server. An empty
// address selects the in-process memory cache.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

func loadConfig() (*Config, error) {
	viper.SetConfigName("soakd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("listen", ":8080")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./soakd.db")
	viper.SetDefault("mappings", "")
	viper.SetDefault("redis.addr", "")

	viper.SetEnvPrefix("SOAKD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine, the defaults cover everything.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
