// Package auth obtains a Spotify access token through the OAuth2
// authorization code flow and persists it for the MCP server.
package auth

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-mcp/internal/config"
)

const callbackTimeout = 2 * time.Minute

var (
	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")

	// ErrNoCode is returned when the redirect URL carries no authorization code.
	ErrNoCode = errors.New("no authorization code in redirect URL")

	// ErrDenied is returned when Spotify redirects back with an error.
	ErrDenied = errors.New("authorization denied")

	// ErrNoRefreshToken is returned when no refreshable token is cached.
	ErrNoRefreshToken = errors.New("no cached refresh token; run `spotify-mcp auth` first")
)

// Scopes requested for every tool in the catalog.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserFollowRead,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
}

// Result describes a completed login or refresh.
type Result struct {
	UserID      string
	DisplayName string
	Token       *oauth2.Token
	EnvFile     string
}

// ExpiresIn returns the seconds until the access token expires, or 0 when
// the expiry is unknown.
func (r *Result) ExpiresIn() int {
	if r.Token == nil || r.Token.Expiry.IsZero() {
		return 0
	}
	return max(0, int(time.Until(r.Token.Expiry).Seconds()))
}

// Authenticator runs the login flows and persists their tokens.
type Authenticator struct {
	auth        *spotifyauth.Authenticator
	redirect    *url.URL
	envFile     string
	cache       *TokenCache
	in          io.Reader
	out         io.Writer
	openBrowser func(string) error
	logger      *zap.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenCache sets where the full token is cached.
func WithTokenCache(c *TokenCache) Option {
	return func(a *Authenticator) {
		a.cache = c
	}
}

// WithIO sets the prompt input and output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *Authenticator) {
		a.in, a.out = in, out
	}
}

// WithBrowser sets the function used to open the authorization URL. A nil
// function disables opening a browser.
func WithBrowser(open func(string) error) Option {
	return func(a *Authenticator) {
		a.openBrowser = open
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Authenticator from cfg. It returns
// config.ErrMissingCredentials when the client id or secret is not set.
func New(cfg *config.Config, opts ...Option) (*Authenticator, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	redirect, err := url.Parse(cfg.RedirectURI)
	if err != nil || redirect.Scheme == "" || redirect.Host == "" {
		return nil, fmt.Errorf("invalid redirect URI %q", cfg.RedirectURI)
	}

	a := &Authenticator{
		auth: spotifyauth.New(
			spotifyauth.WithClientID(cfg.ClientID),
			spotifyauth.WithClientSecret(cfg.ClientSecret),
			spotifyauth.WithRedirectURL(cfg.RedirectURI),
			spotifyauth.WithScopes(Scopes...),
		),
		redirect:    redirect,
		envFile:     cfg.EnvFile,
		in:          os.Stdin,
		out:         os.Stdout,
		openBrowser: OpenBrowser,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cache == nil {
		cache, err := DefaultTokenCache()
		if err != nil {
			return nil, fmt.Errorf("creating token cache: %w", err)
		}
		a.cache = cache
	}

	return a, nil
}

// AuthURL returns the consent URL. The consent dialog is always shown so
// the user can switch accounts.
func (a *Authenticator) AuthURL(state string) string {
	return a.auth.AuthURL(state, spotifyauth.ShowDialog)
}

// Exchange trades an authorization code for a token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.auth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return token, nil
}

// ExtractCode returns the authorization code from the URL Spotify
// redirected to. A state present in the URL must equal state.
func ExtractCode(redirected, state string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(redirected))
	if err != nil {
		return "", fmt.Errorf("parsing redirect URL: %w", err)
	}
	return codeFromQuery(u.Query(), state)
}

func codeFromQuery(q url.Values, state string) (string, error) {
	if msg := q.Get("error"); msg != "" {
		return "", fmt.Errorf("%w: %s", ErrDenied, msg)
	}
	if got := q.Get("state"); got != "" && got != state {
		return "", ErrStateMismatch
	}
	code := q.Get("code")
	if code == "" {
		return "", ErrNoCode
	}
	return code, nil
}

// Login runs the paste flow, or the loopback callback flow when listen is
// set, then verifies and persists the token.
func (a *Authenticator) Login(ctx context.Context, listen bool) (*Result, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	var code string
	if listen {
		code, err = a.awaitCallback(ctx, state)
	} else {
		code, err = a.awaitPaste(ctx, state)
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(a.out, "Obteniendo access token...")
	token, err := a.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return a.finish(ctx, token)
}

// Refresh mints a new access token from the cached refresh token.
func (a *Authenticator) Refresh(ctx context.Context) (*Result, error) {
	stored, err := a.cache.Load()
	if err != nil {
		return nil, fmt.Errorf("loading cached token: %w", err)
	}
	if !stored.CanRefresh() {
		return nil, ErrNoRefreshToken
	}

	expired := *stored.Token
	expired.Expiry = time.Now().Add(-time.Minute)
	return a.finish(ctx, &expired)
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	return a.cache.Delete()
}

// finish verifies token against the API, letting oauth2 refresh it when
// expired, and saves the resulting token to the cache and the .env file.
func (a *Authenticator) finish(ctx context.Context, token *oauth2.Token) (*Result, error) {
	client := spotify.New(a.auth.Client(ctx, token))

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("verifying token: %w", err)
	}

	current, err := client.Token()
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}

	if err := a.cache.Save(current, user.ID); err != nil {
		a.logger.Warn("caching token failed", zap.String("path", a.cache.Path()), zap.Error(err))
	}
	if err := config.SaveToken(a.envFile, current.AccessToken); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}

	a.logger.Info("token saved", zap.String("user_id", user.ID), zap.String("env_file", a.envFile))

	return &Result{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Token:       current,
		EnvFile:     a.envFile,
	}, nil
}

func (a *Authenticator) showURL(authURL string) {
	fmt.Fprintln(a.out, "=== Autorización de Spotify ===")
	fmt.Fprintln(a.out, "1. Abre este link para autorizar:")
	fmt.Fprintln(a.out, authURL)
	fmt.Fprintln(a.out)

	if a.openBrowser == nil {
		return
	}
	if err := a.openBrowser(authURL); err != nil {
		a.logger.Debug("opening browser failed", zap.Error(err))
		fmt.Fprintln(a.out, "No se pudo abrir el navegador automáticamente")
		return
	}
	fmt.Fprintln(a.out, "Navegador abierto automáticamente")
}

// awaitPaste reads the redirect URL the user copies from the browser.
func (a *Authenticator) awaitPaste(ctx context.Context, state string) (string, error) {
	a.showURL(a.AuthURL(state))

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "2. Después de autorizar, serás redirigido a una URL.")
	fmt.Fprintln(a.out, "3. Copia esa URL completa y pégala aquí:")
	fmt.Fprint(a.out, "URL de redirección: ")

	lines := make(chan string, 1)
	errs := make(chan error, 1)
	// The read cannot be interrupted; on cancellation the goroutine stays
	// blocked until input arrives or the process exits.
	go func() {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			errs <- fmt.Errorf("reading redirect URL: %w", err)
			return
		}
		lines <- line
	}()

	select {
	case line := <-lines:
		return ExtractCode(line, state)
	case err := <-errs:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// generateState creates a random state string for OAuth.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
