// Package spotify provides a wrapper around the Spotify Web API.
//
// Catalog, library and playlist calls go through the zmb3 client. Player
// commands whose success code must match exactly (next answers 200, the
// others 204) and the device listing use Do, which returns the raw reply.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultTimeout is applied to every outbound request.
	DefaultTimeout = 10 * time.Second
)

// ErrUnreadable marks a success reply whose body could not be decoded.
var ErrUnreadable = errors.New("unreadable response")

// APIError is a non-success reply from the Web API.
type APIError struct {
	StatusCode int
	Header     http.Header
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("spotify: HTTP %d: %s", e.StatusCode, e.Message)
}

// Response is the status, headers and raw body of an upstream call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("parsing response body: %w", err)
	}
	return nil
}

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	token      string
	baseURL    string
	timeout    time.Duration
	base       *http.Client
	httpClient *http.Client
	api        *spotify.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the client whose transport carries the requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.base = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client that authenticates with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx := context.Background()
	if c.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	authed := oauth2.NewClient(ctx, src)

	c.httpClient = &http.Client{
		Transport: &recorder{base: authed.Transport, logger: c.logger},
		Timeout:   c.timeout,
	}
	c.api = spotify.New(c.httpClient, spotify.WithBaseURL(c.baseURL+"/"))

	return c
}

// HasToken reports whether an access token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Do performs one request. body, when non-nil, is sent as JSON.
// Any HTTP status is returned as a Response; err is set only when the
// request could not be completed.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// call performs a request and decodes the body into out when the status is
// one of okStatus.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any, okStatus ...int) (*Response, error) {
	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if out != nil && slices.Contains(okStatus, resp.StatusCode) {
		if err := resp.Decode(out); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// deviceQuery returns the device_id query for playback commands.
func deviceQuery(deviceID string) url.Values {
	if deviceID == "" {
		return nil
	}
	return url.Values{"device_id": {deviceID}}
}

type exchangeKey struct{}

// exchange holds the last reply seen during one library call.
type exchange struct {
	status int
	header http.Header
}

func watch(ctx context.Context) (context.Context, *exchange) {
	ex := &exchange{}
	return context.WithValue(ctx, exchangeKey{}, ex), ex
}

// recorder traces every request and stores the reply status and headers
// on the request's exchange, if any.
type recorder struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := r.base.RoundTrip(req)
	if err != nil {
		r.logger.Debug("spotify request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("spotify request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if ex, ok := req.Context().Value(exchangeKey{}).(*exchange); ok {
		ex.status = resp.StatusCode
		ex.header = resp.Header
	}
	return resp, nil
}

// classify turns a library error into an *APIError when a non-success
// reply was received, or an ErrUnreadable error when a success reply
// could not be decoded. Anything else is a transport failure.
func classify(op string, ex *exchange, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case ex.status == 0:
		return fmt.Errorf("%s: %w", op, err)
	case ex.status >= 200 && ex.status < 300:
		return fmt.Errorf("%s: %w: %v", op, ErrUnreadable, err)
	}

	apiErr := &APIError{StatusCode: ex.status, Header: ex.header, Message: err.Error()}
	var se spotify.Error
	if errors.As(err, &se) {
		apiErr.Message = se.Message
		if se.Status != 0 {
			apiErr.StatusCode = se.Status
		}
	}
	return apiErr
}
