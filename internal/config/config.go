package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Database struct {
		// Driver selects the repository backend: "postgres" or "sqlite".
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	ClientLibs struct {
		// ResourceTypeRegex validates which resource types are eligible
		// for category aggregation. Exposed verbatim to callers.
		ResourceTypeRegex string `mapstructure:"resource_type_regex"`
		Minify            bool   `mapstructure:"minify"`
		CacheEnabled      bool   `mapstructure:"cache_enabled"`
		// SearchPaths are directories scanned for clientlib.yaml manifests.
		SearchPaths []string `mapstructure:"search_paths"`
	} `mapstructure:"clientlibs"`

	Amp struct {
		// DefaultMode applies to pages without an explicit ampMode
		// property: "ampOnly", "pairedAmp", "noAmp", or "".
		DefaultMode string `mapstructure:"default_mode"`
	} `mapstructure:"amp"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.BindEnv("database.dsn", "DATABASE_DSN")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")

	viper.SetDefault("server.addr", "localhost")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "file:content.db?_fk=1")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("worker.concurrency", 5)
	viper.SetDefault("clientlibs.minify", true)
	viper.SetDefault("clientlibs.cache_enabled", true)

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
