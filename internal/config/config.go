// Package config loads the settings shared by both commands from the environment
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when no GitHub credential could be found.
var ErrMissingToken = errors.New("GITHUB_TOKEN environment variable is not set")

// DefaultFile is the optional config file looked up in the working directory.
const DefaultFile = ".issuestats.yaml"

const (
	SourceREST    = "rest"
	SourceGraphQL = "graphql"
)

// Config holds the settings that are not exposed as command-line flags.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Log    LogConfig    `mapstructure:"log"`
}

// GitHubConfig holds the API credential.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// FetchConfig selects which API the fetcher lists issues through.
type FetchConfig struct {
	Source string `mapstructure:"source" validate:"oneof=rest graphql"`
}

// LogConfig selects the log encoder.
type LogConfig struct {
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// Load reads the configuration. A .env file and the config file at path are both optional;
// an empty path means DefaultFile.
func Load(path string) (*Config, error) {
	// .env is a convenience for local runs; the process environment wins.
	_ = godotenv.Load()

	if path == "" {
		path = DefaultFile
	}

	v := viper.New()
	v.SetEnvPrefix("ISSUESTATS")
	v.AutomaticEnv()
	v.BindEnv("github.token", "GITHUB_TOKEN", "ISSUESTATS_GITHUB_TOKEN")
	v.BindEnv("fetch.source", "ISSUESTATS_SOURCE")
	v.BindEnv("log.format", "ISSUESTATS_LOG_FORMAT")

	v.SetDefault("fetch.source", SourceREST)
	v.SetDefault("log.format", "console")

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RequireToken returns ErrMissingToken when the credential is empty.
func (c *Config) RequireToken() error {
	if c.GitHub.Token == "" {
		return ErrMissingToken
	}
	return nil
}
