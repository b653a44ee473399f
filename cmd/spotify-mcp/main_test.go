package main

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/justestif/go-spotify-mcp/internal/config"
)

// isolate points every command at an empty .env and blanks the Spotify
// variables for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{
		config.KeyAccessToken, config.KeyClientID, config.KeyClientSecret,
		config.KeyRedirectURI, config.KeyLogLevel,
	} {
		t.Setenv(k, "")
	}
	return filepath.Join(t.TempDir(), ".env")
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestServe_MissingToken(t *testing.T) {
	envFile := isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"explicit serve", []string{"serve", "--env-file", envFile}},
		{"default command", []string{"--env-file", envFile}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); !errors.Is(err, config.ErrMissingToken) {
				t.Errorf("Execute() error = %v, want ErrMissingToken", err)
			}
		})
	}
}

func TestAuth_MissingCredentials(t *testing.T) {
	envFile := isolate(t)

	if err := execute(t, "auth", "--env-file", envFile, "--no-browser"); !errors.Is(err, config.ErrMissingCredentials) {
		t.Errorf("Execute() error = %v, want ErrMissingCredentials", err)
	}
}

func TestAuth_ListenAndRefreshExclusive(t *testing.T) {
	envFile := isolate(t)

	if err := execute(t, "auth", "--env-file", envFile, "--listen", "--refresh"); err == nil {
		t.Error("Execute() should reject --listen with --refresh")
	}
}

func TestRoot_RejectsArgs(t *testing.T) {
	if err := execute(t, "unexpected"); err == nil {
		t.Error("Execute() should reject positional arguments")
	}
}

func TestRoot_Flags(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"env-file", "log-level"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing global flag --%s", name)
		}
	}

	authCmd, _, err := root.Find([]string{"auth"})
	if err != nil {
		t.Fatalf("Find(auth) error = %v", err)
	}
	for _, name := range []string{"listen", "no-browser", "refresh"} {
		if authCmd.Flags().Lookup(name) == nil {
			t.Errorf("auth is missing --%s", name)
		}
	}

	if f := root.PersistentFlags().Lookup("env-file"); f.DefValue != config.DefaultEnvFile {
		t.Errorf("--env-file default = %q, want %q", f.DefValue, config.DefaultEnvFile)
	}
}

func TestGlobalOptions_LogLevelOverride(t *testing.T) {
	envFile := isolate(t)
	t.Setenv(config.KeyLogLevel, "error")

	tests := []struct {
		flag      string
		wantDebug bool
		wantInfo  bool
	}{
		{"", false, false},
		{"debug", true, true},
		{"info", false, true},
	}

	for _, tt := range tests {
		t.Run("flag="+tt.flag, func(t *testing.T) {
			opts := &globalOptions{envFile: envFile, logLevel: tt.flag}
			_, logger, err := opts.load()
			if err != nil {
				t.Fatalf("load() error = %v", err)
			}
			if got := logger.Core().Enabled(zap.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := logger.Core().Enabled(zap.InfoLevel); got != tt.wantInfo {
				t.Errorf("info enabled = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestNewDispatcher(t *testing.T) {
	cfg := &config.Config{
		AccessToken: "token",
		APIBaseURL:  config.DefaultAPIBaseURL,
		HTTPTimeout: config.DefaultHTTPTimeout,
	}

	d := newDispatcher(cfg, zap.NewNop())
	if n := len(d.Tools()); n != 10 {
		t.Errorf("dispatcher has %d tools, want 10", n)
	}
}
