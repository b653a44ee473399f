package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

const (
	configDirName = "spotify-mcp"
	tokenFileName = "token.json"
)

// StoredToken is the on-disk record of the last successful login. The
// refresh token it carries lets `auth --refresh` mint a new access token
// without another browser round trip.
type StoredToken struct {
	Token   *oauth2.Token `json:"token"`
	UserID  string        `json:"user_id,omitempty"`
	SavedAt time.Time     `json:"saved_at"`
}

// CanRefresh reports whether the record holds a refresh token.
func (s *StoredToken) CanRefresh() bool {
	return s != nil && s.Token != nil && s.Token.RefreshToken != ""
}

// TokenCache stores the full OAuth token next to the user's config.
type TokenCache struct {
	path string
}

// DefaultTokenCache returns a TokenCache at
// <user config dir>/spotify-mcp/token.json.
func DefaultTokenCache() (*TokenCache, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}
	return NewTokenCache(filepath.Join(configDir, configDirName, tokenFileName)), nil
}

// NewTokenCache creates a TokenCache with a custom path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the file path where tokens are stored.
func (c *TokenCache) Path() string {
	return c.path
}

// Load reads the stored token. It returns (nil, nil) when nothing has
// been saved yet.
func (c *TokenCache) Load() (*StoredToken, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var stored StoredToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	if stored.Token == nil {
		return nil, nil
	}
	return &stored, nil
}

// Save writes the token record with mode 0600, creating the parent
// directory if needed. A token without a refresh token keeps the refresh
// token of the previous record, as Spotify omits it on refresh.
func (c *TokenCache) Save(token *oauth2.Token, userID string) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	if token.RefreshToken == "" {
		if prev, err := c.Load(); err == nil && prev.CanRefresh() {
			copied := *token
			copied.RefreshToken = prev.Token.RefreshToken
			token = &copied
		}
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(StoredToken{
		Token:   token,
		UserID:  userID,
		SavedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Delete removes the token file. A missing file is not an error.
func (c *TokenCache) Delete() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
