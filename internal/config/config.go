// Package config loads runtime configuration from a .env file and the
// environment, and persists the access token obtained by the auth flow.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyAccessToken  = "SPOTIFY_ACCESS_TOKEN"
	KeyClientID     = "SPOTIFY_CLIENT_ID"
	KeyClientSecret = "SPOTIFY_CLIENT_SECRET"
	KeyRedirectURI  = "SPOTIFY_REDIRECT_URI"
	KeyAPIBaseURL   = "SPOTIFY_API_BASE_URL"
	KeyHTTPTimeout  = "SPOTIFY_HTTP_TIMEOUT"
	KeyLogLevel     = "SPOTIFY_MCP_LOG_LEVEL"
	KeyRadarPause   = "SPOTIFY_RADAR_PAUSE"
)

// Defaults.
const (
	DefaultEnvFile     = ".env"
	DefaultRedirectURI = "https://github.com/josuemj/mcp-llm-client"
	DefaultAPIBaseURL  = "https://api.spotify.com/v1"
	DefaultHTTPTimeout = 10 * time.Second
	DefaultLogLevel    = "info"
	DefaultRadarPause  = 500 * time.Millisecond
)

var (
	// ErrMissingToken is returned when SPOTIFY_ACCESS_TOKEN is not set.
	ErrMissingToken = errors.New("missing SPOTIFY_ACCESS_TOKEN; run `spotify-mcp auth` first")

	// ErrMissingCredentials is returned when the client id or secret is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET")
)

// Config holds all runtime configuration.
type Config struct {
	EnvFile      string
	AccessToken  string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBaseURL   string
	HTTPTimeout  time.Duration
	LogLevel     string
	RadarPause   time.Duration
}

// Load reads envFile (if present) into the process environment and then
// resolves every setting from the environment, falling back to defaults.
// Variables already set in the environment win over the file.
// A missing token is not an error here; see RequireToken.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault(KeyRedirectURI, DefaultRedirectURI)
	v.SetDefault(KeyAPIBaseURL, DefaultAPIBaseURL)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyRadarPause, DefaultRadarPause)
	v.AutomaticEnv()

	cfg := &Config{
		EnvFile:      envFile,
		AccessToken:  v.GetString(KeyAccessToken),
		ClientID:     v.GetString(KeyClientID),
		ClientSecret: v.GetString(KeyClientSecret),
		RedirectURI:  v.GetString(KeyRedirectURI),
		APIBaseURL:   v.GetString(KeyAPIBaseURL),
		HTTPTimeout:  v.GetDuration(KeyHTTPTimeout),
		LogLevel:     v.GetString(KeyLogLevel),
		RadarPause:   v.GetDuration(KeyRadarPause),
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.RadarPause < 0 {
		cfg.RadarPause = 0
	}

	return cfg, nil
}

// RequireToken returns ErrMissingToken when no access token is configured.
func (c *Config) RequireToken() error {
	if c.AccessToken == "" {
		return ErrMissingToken
	}
	return nil
}

// RequireCredentials returns ErrMissingCredentials when the OAuth client
// credentials are incomplete.
func (c *Config) RequireCredentials() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// SaveToken sets SPOTIFY_ACCESS_TOKEN in the .env file at path, keeping
// every other key. The file is created if needed and written with mode 0600.
// The file is rewritten from its parsed keys, so comments and blank lines
// are dropped and keys come out sorted.
func SaveToken(path, token string) error {
	if token == "" {
		return errors.New("cannot save empty token")
	}

	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		env = make(map[string]string)
	}

	env[KeyAccessToken] = token

	content, err := godotenv.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("restricting %s: %w", path, err)
	}

	return nil
}
