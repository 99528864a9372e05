// Package config loads application configuration from an optional TOML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrMissingSpotifyCredentials is returned when no Spotify client ID and
// secret are configured by file or environment.
var ErrMissingSpotifyCredentials = errors.New("missing Spotify client credentials")

// Config holds all application settings.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	LastFM   LastFMConfig   `toml:"lastfm"`
	LLM      LLMConfig      `toml:"llm"`
	Database DatabaseConfig `toml:"database"`
}

type ServerConfig struct {
	Addr          string `toml:"addr"`
	AllowedOrigin string `toml:"allowed_origin"`
}

type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

type LastFMConfig struct {
	APIKey string `toml:"api_key"`
}

type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			AllowedOrigin: "http://127.0.0.1:3000",
		},
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8080/callback",
		},
	}
}

// Load reads a TOML config file over the defaults, then applies environment
// overrides. A missing file is not an error; the environment alone can
// configure the application.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with environment variables when set.
func (c *Config) applyEnv() {
	setIfPresent(&c.Server.Addr, "ADDR")
	setIfPresent(&c.Server.AllowedOrigin, "ALLOWED_ORIGIN")
	setIfPresent(&c.Spotify.ClientID, "SPOTIFY_ID")
	setIfPresent(&c.Spotify.ClientSecret, "SPOTIFY_SECRET")
	setIfPresent(&c.Spotify.RedirectURI, "SPOTIFY_REDIRECT_URI")
	setIfPresent(&c.LastFM.APIKey, "LASTFM_API_KEY")
	setIfPresent(&c.LLM.BaseURL, "LLM_BASE_URL")
	setIfPresent(&c.LLM.APIKey, "LLM_API_KEY")
	setIfPresent(&c.LLM.Model, "LLM_MODEL")
	setIfPresent(&c.Database.URL, "DATABASE_URL")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingSpotifyCredentials
	}
	return nil
}
