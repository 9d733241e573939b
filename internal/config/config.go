package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Version is the application version, overridden at build time
var Version = "dev"

// StreamConfig controls chunked processing
type StreamConfig struct {
	ChunkSize int  `json:"chunk_size" mapstructure:"chunk_size"` // bytes
	Atomic    bool `json:"atomic" mapstructure:"atomic"`         // temp file + rename
}

// HistoryConfig controls the operation log
type HistoryConfig struct {
	Enable bool `json:"enable" mapstructure:"enable"`
	Limit  int  `json:"limit" mapstructure:"limit"`
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Address   string `json:"address" mapstructure:"address"`
	Port      int    `json:"port" mapstructure:"port"`
	EnableH2C bool   `json:"enable_h2c" mapstructure:"enable_h2c"`
	Gzip      bool   `json:"gzip" mapstructure:"gzip"`
	MaxBodyMB int    `json:"max_body_mb" mapstructure:"max_body_mb"`
}

// AuthConfig represents API token configuration
type AuthConfig struct {
	JWTSecret string `json:"jwt_secret" mapstructure:"jwt_secret"`
	JWTExpire int    `json:"jwt_expire" mapstructure:"jwt_expire"` // hours
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // console, json
}

// Config represents the main configuration
type Config struct {
	Stream  StreamConfig  `json:"stream" mapstructure:"stream"`
	History HistoryConfig `json:"history" mapstructure:"history"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Auth    AuthConfig    `json:"auth" mapstructure:"auth"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
	DataDir string        `json:"data_dir" mapstructure:"data_dir"`
}

// New builds a Config from defaults, the config file and the environment
func New(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.textcipher")
	}

	v.SetEnvPrefix("TEXTCIPHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msg("Config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.normalize()
	return c, nil
}

func setDefaults(v *viper.Viper) {
	// Stream defaults
	v.SetDefault("stream.chunk_size", 1024)
	v.SetDefault("stream.atomic", true)

	// History defaults
	v.SetDefault("history.enable", true)
	v.SetDefault("history.limit", 20)

	// Server defaults
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 5345)
	v.SetDefault("server.enable_h2c", false)
	v.SetDefault("server.gzip", true)
	v.SetDefault("server.max_body_mb", 16)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expire", 24)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("data_dir", defaultDataDir())
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".textcipher")
}

func (c *Config) normalize() {
	if c.Stream.ChunkSize <= 0 {
		c.Stream.ChunkSize = 1024
	}
	if c.History.Limit <= 0 {
		c.History.Limit = 20
	}
	if c.Server.MaxBodyMB <= 0 {
		c.Server.MaxBodyMB = 16
	}
	if c.Auth.JWTExpire <= 0 {
		c.Auth.JWTExpire = 24
	}
}

// GetHTTPAddr returns the HTTP listen address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IsAuthEnabled returns whether API tokens are required
func (c *Config) IsAuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

// MaxBodyBytes returns the request body limit for the API
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.Server.MaxBodyMB) << 20
}
