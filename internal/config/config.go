package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Driver   DriverConfig   `mapstructure:"driver"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig points at the record database files: where to search and
// which databases to load at startup.
type DatabaseConfig struct {
	SearchPaths []string `mapstructure:"search_paths"`
	Load        []string `mapstructure:"load"`
}

type ScanConfig struct {
	DefaultInterval time.Duration `mapstructure:"default_interval"`
}

// DriverConfig sizes the simulated card bank.
type DriverConfig struct {
	Cards int `mapstructure:"cards"`
}

// ArchiveConfig points the update archiver at Postgres. Disabled by
// default: the archive is optional, the IOC is fully functional without
// it.
type ArchiveConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	DSN            string `mapstructure:"dsn"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// AuthConfig lists the operators allowed to write output records. With
// auth disabled the write endpoint is open, which is only acceptable on a
// bench setup.
type AuthConfig struct {
	Enabled   bool             `mapstructure:"enabled"`
	JWTSecret string           `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration    `mapstructure:"token_ttl"`
	Operators []OperatorConfig `mapstructure:"operators"`
}

type OperatorConfig struct {
	Name         string `mapstructure:"name"`
	Role         string `mapstructure:"role"`
	PasswordHash string `mapstructure:"password_hash"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("scan.default_interval", "100ms")
	viper.SetDefault("driver.cards", 4)
	viper.SetDefault("archive.enabled", false)
	viper.SetDefault("archive.max_connections", 4)
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.token_ttl", "8h")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VMECORE")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
