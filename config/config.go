// Package config loads application configuration from flags, environment
// variables and an optional .env file. Environment variables use the
// DATATABLES_ prefix with dashes replaced by underscores, e.g.
// DATATABLES_PAGE_SIZE for the page-size key.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by New
const EnvPrefix = "DATATABLES"

// Configuration keys
const (
	KeyAddr        = "addr"
	KeyBasePath    = "base-path"
	KeyPageSize    = "page-size"
	KeyMaxPageSize = "max-page-size"
	KeyDebug       = "debug"
	KeyLogLevel    = "log-level"
	KeyTables      = "tables"
	KeyAuthUser    = "auth-user"
	KeyAuthPass    = "auth-password"
)

// Config holds all application configuration
type Config struct {
	Addr        string
	BasePath    string
	PageSize    int
	MaxPageSize int
	Debug       bool // enables SQL debug logging
	LogLevel    string
	Tables      string // table definition file
	Auth        AuthConfig
}

// AuthConfig holds the optional HTTP Basic credentials guarding the table
// endpoints. An empty user disables authentication.
type AuthConfig struct {
	BasicAuthUser string
	BasicAuthPass string
}

// Enabled reports whether credentials are configured
func (a AuthConfig) Enabled() bool {
	return a.BasicAuthUser != ""
}

// New returns a viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyBasePath, "/tables")
	v.SetDefault(KeyPageSize, 10)
	v.SetDefault(KeyMaxPageSize, 100)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyTables, "tables.yaml")
	v.SetDefault(KeyAuthUser, "")
	v.SetDefault(KeyAuthPass, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // read in environment variables that match
	return v
}

// LoadConfig reads the configuration held by v and validates it
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:        v.GetString(KeyAddr),
		BasePath:    strings.TrimRight(v.GetString(KeyBasePath), "/"),
		PageSize:    v.GetInt(KeyPageSize),
		MaxPageSize: v.GetInt(KeyMaxPageSize),
		Debug:       v.GetBool(KeyDebug),
		LogLevel:    v.GetString(KeyLogLevel),
		Tables:      v.GetString(KeyTables),
		Auth: AuthConfig{
			BasicAuthUser: v.GetString(KeyAuthUser),
			BasicAuthPass: v.GetString(KeyAuthPass),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot use
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid %s %d: must be positive", KeyPageSize, c.PageSize)
	}
	if c.MaxPageSize < c.PageSize {
		return fmt.Errorf("invalid %s %d: must be at least %s (%d)", KeyMaxPageSize, c.MaxPageSize, KeyPageSize, c.PageSize)
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("invalid %s %q: must start with /", KeyBasePath, c.BasePath)
	}
	if c.Auth.Enabled() && c.Auth.BasicAuthPass == "" {
		return fmt.Errorf("%s is set but %s is empty", KeyAuthUser, KeyAuthPass)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger builds the structured logger described by the configuration
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel parses debug, info, warn or error
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid %s %q: %w", KeyLogLevel, s, err)
	}
	return level, nil
}
