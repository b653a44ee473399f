package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-mcp/internal/config"
)

func testConfig(t *testing.T, redirect string) *config.Config {
	t.Helper()
	return &config.Config{
		EnvFile:      filepath.Join(t.TempDir(), ".env"),
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURI:  redirect,
	}
}

func newTestAuthenticator(t *testing.T, redirect string, opts ...Option) *Authenticator {
	t.Helper()
	opts = append([]Option{
		WithTokenCache(NewTokenCache(filepath.Join(t.TempDir(), "token.json"))),
		WithIO(strings.NewReader(""), io.Discard),
		WithBrowser(nil),
	}, opts...)

	a, err := New(testConfig(t, redirect), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"both missing", "", ""},
		{"id missing", "", "secret"},
		{"secret missing", "id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, config.DefaultRedirectURI)
			cfg.ClientID, cfg.ClientSecret = tt.id, tt.secret

			_, err := New(cfg)
			if !errors.Is(err, config.ErrMissingCredentials) {
				t.Errorf("New() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}

func TestNew_InvalidRedirect(t *testing.T) {
	for _, redirect := range []string{"", "not a url", "/callback"} {
		if _, err := New(testConfig(t, redirect)); err == nil {
			t.Errorf("New() with redirect %q should fail", redirect)
		}
	}
}

func TestAuthURL(t *testing.T) {
	a := newTestAuthenticator(t, config.DefaultRedirectURI)

	u, err := url.Parse(a.AuthURL("state-123"))
	if err != nil {
		t.Fatalf("AuthURL() is not a URL: %v", err)
	}
	q := u.Query()

	checks := map[string]string{
		"client_id":     "test-client-id",
		"response_type": "code",
		"redirect_uri":  config.DefaultRedirectURI,
		"state":         "state-123",
		"show_dialog":   "true",
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}

	scope := q.Get("scope")
	for _, s := range []string{"user-read-playback-state", "user-modify-playback-state", "playlist-modify-private", "user-follow-read", "user-top-read"} {
		if !strings.Contains(scope, s) {
			t.Errorf("scope %q missing %q", scope, s)
		}
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{"code and state", "https://github.com/josuemj/mcp-llm-client?code=abc123&state=s1", "abc123", nil},
		{"surrounding whitespace", "  https://example.com/cb?code=xyz&state=s1\n", "xyz", nil},
		{"no state", "https://example.com/cb?code=abc", "abc", nil},
		{"no code", "https://example.com/cb?state=s1", "", ErrNoCode},
		{"empty", "", "", ErrNoCode},
		{"state mismatch", "https://example.com/cb?code=abc&state=other", "", ErrStateMismatch},
		{"denied", "https://example.com/cb?error=access_denied&state=s1", "", ErrDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractCode(tt.url, "s1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ExtractCode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractCode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
		wantErr    error
	}{
		{"success", "/callback?code=abc&state=s1", http.StatusOK, "abc", nil},
		{"missing state", "/callback?code=abc", http.StatusBadRequest, "", ErrStateMismatch},
		{"wrong state", "/callback?code=abc&state=bad", http.StatusBadRequest, "", ErrStateMismatch},
		{"denied", "/callback?error=access_denied&state=s1", http.StatusBadRequest, "", ErrDenied},
		{"wrong path", "/other?code=abc&state=s1", http.StatusNotFound, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAuthenticator(t, "http://127.0.0.1:8080/callback")
			codes := make(chan string, 1)
			errs := make(chan error, 1)

			rec := httptest.NewRecorder()
			a.callbackHandler("s1", codes, errs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			select {
			case code := <-codes:
				if code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
			case err := <-errs:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			default:
				if tt.wantCode != "" || tt.wantErr != nil {
					t.Error("handler sent nothing")
				}
			}
		})
	}
}

func TestAwaitPaste(t *testing.T) {
	var out bytes.Buffer
	var opened string
	a := newTestAuthenticator(t, config.DefaultRedirectURI,
		WithIO(strings.NewReader(config.DefaultRedirectURI+"?code=pasted&state=s1\n"), &out),
		WithBrowser(func(u string) error {
			opened = u
			return nil
		}),
	)

	code, err := a.awaitPaste(context.Background(), "s1")
	if err != nil {
		t.Fatalf("awaitPaste() error = %v", err)
	}
	if code != "pasted" {
		t.Errorf("code = %q, want pasted", code)
	}
	if !strings.Contains(opened, "state=s1") {
		t.Errorf("browser opened %q", opened)
	}
	if !strings.Contains(out.String(), "URL de redirección") {
		t.Errorf("prompt missing from output: %q", out.String())
	}
}

func TestAwaitPaste_BrowserFailure(t *testing.T) {
	var out bytes.Buffer
	a := newTestAuthenticator(t, config.DefaultRedirectURI,
		WithIO(strings.NewReader(config.DefaultRedirectURI+"?code=c"), &out),
		WithBrowser(func(string) error { return errors.New("no display") }),
	)

	code, err := a.awaitPaste(context.Background(), "s1")
	if err != nil || code != "c" {
		t.Fatalf("awaitPaste() = (%q, %v), want (c, nil)", code, err)
	}
	if !strings.Contains(out.String(), "No se pudo abrir el navegador") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAwaitPaste_EmptyInput(t *testing.T) {
	a := newTestAuthenticator(t, config.DefaultRedirectURI)

	if _, err := a.awaitPaste(context.Background(), "s1"); err == nil {
		t.Error("awaitPaste() with no input should fail")
	}
}

func TestAwaitPaste_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	a := newTestAuthenticator(t, config.DefaultRedirectURI, WithIO(pr, io.Discard))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := a.awaitPaste(ctx, "s1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("awaitPaste() error = %v, want context.DeadlineExceeded", err)
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestAwaitCallback(t *testing.T) {
	addr := freeAddr(t)
	a := newTestAuthenticator(t, "http://"+addr+"/callback")

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := a.awaitCallback(context.Background(), "s1")
		done <- result{code, err}
	}()

	target := fmt.Sprintf("http://%s/callback?code=loopback&state=s1", addr)
	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get(target)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("callback server never answered: %v", err)
	}
	resp.Body.Close()

	select {
	case r := <-done:
		if r.err != nil || r.code != "loopback" {
			t.Errorf("awaitCallback() = (%q, %v), want (loopback, nil)", r.code, r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("awaitCallback() did not return")
	}
}

func TestAwaitCallback_Cancelled(t *testing.T) {
	a := newTestAuthenticator(t, "http://"+freeAddr(t)+"/callback")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.awaitCallback(ctx, "s1"); !errors.Is(err, context.Canceled) {
		t.Errorf("awaitCallback() error = %v, want context.Canceled", err)
	}
}

func TestRefresh_NoCachedToken(t *testing.T) {
	a := newTestAuthenticator(t, config.DefaultRedirectURI)

	if _, err := a.Refresh(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh() error = %v, want ErrNoRefreshToken", err)
	}
}

func TestRefresh_AccessOnlyToken(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))
	if err := cache.Save(&oauth2.Token{AccessToken: "a"}, "u"); err != nil {
		t.Fatal(err)
	}
	a := newTestAuthenticator(t, config.DefaultRedirectURI, WithTokenCache(cache))

	if _, err := a.Refresh(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh() error = %v, want ErrNoRefreshToken", err)
	}
}

func TestLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	cache := NewTokenCache(path)
	if err := cache.Save(&oauth2.Token{AccessToken: "a"}, "u"); err != nil {
		t.Fatal(err)
	}
	a := newTestAuthenticator(t, config.DefaultRedirectURI, WithTokenCache(cache))

	if err := a.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if stored, _ := cache.Load(); stored != nil {
		t.Error("token still cached after Logout()")
	}
}

func TestResult_ExpiresIn(t *testing.T) {
	tests := []struct {
		name  string
		token *oauth2.Token
		min   int
		max   int
	}{
		{"nil token", nil, 0, 0},
		{"no expiry", &oauth2.Token{}, 0, 0},
		{"expired", &oauth2.Token{Expiry: time.Now().Add(-time.Hour)}, 0, 0},
		{"one hour", &oauth2.Token{Expiry: time.Now().Add(time.Hour)}, 3590, 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&Result{Token: tt.token}).ExpiresIn()
			if got < tt.min || got > tt.max {
				t.Errorf("ExpiresIn() = %d, want in [%d, %d]", got, tt.min, tt.max)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	state1, err := generateState()
	if err != nil {
		t.Fatalf("generateState() error = %v", err)
	}
	if len(state1) != 32 { // 16 bytes = 32 hex chars
		t.Errorf("generateState() length = %d, want 32", len(state1))
	}

	state2, err := generateState()
	if err != nil {
		t.Fatalf("generateState() error = %v", err)
	}
	if state1 == state2 {
		t.Error("generateState() returned same value twice")
	}
}

func TestOpenBrowser_UnsupportedPlatform(t *testing.T) {
	orig := getRuntime
	getRuntime = func() string { return "plan9" }
	defer func() { getRuntime = orig }()

	if err := OpenBrowser("https://example.com"); err == nil {
		t.Error("OpenBrowser() should fail on an unsupported platform")
	}
}
