// Package playback implements the player-facing operations: device
// resolution, transport commands, the currently-playing lookup,
// search-and-play and top tracks.
package playback

import (
	"context"
	"math/rand/v2"
	"net/http"

	"go.uber.org/zap"

	"github.com/justestif/go-spotify-mcp/internal/spotify"
)

// Service runs playback operations against the Spotify API.
type Service struct {
	client *spotify.Client
	logger *zap.Logger
	rng    *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRand sets the random source used by PlayTopTrack.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rng = r
	}
}

// New creates a playback service.
func New(client *spotify.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveDevice returns the id of the first device flagged active.
// It reports false when the device list cannot be fetched or no device
// is active. Devices without an id (restricted) are skipped.
func (s *Service) ActiveDevice(ctx context.Context) (string, bool) {
	devices, resp, err := s.client.Devices(ctx)
	if err != nil {
		s.logger.Debug("listing devices failed", zap.Error(err))
		return "", false
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("listing devices returned non-200", zap.Int("status", resp.StatusCode))
		return "", false
	}

	for _, d := range devices {
		if d.IsActive && d.ID != nil && *d.ID != "" {
			return *d.ID, true
		}
	}
	return "", false
}

func (s *Service) intN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}
