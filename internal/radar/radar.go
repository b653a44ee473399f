// Package radar builds the Personal Release Radar: a private playlist of
// recent releases from artists the user follows or listens to most.
package radar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
	"github.com/justestif/go-spotify-mcp/internal/spotify"
)

// Upstream request caps.
const (
	MaxFollowedArtists = 30
	MaxTopArtists      = 20
	MaxScannedArtists  = 25
	MaxAlbumsPerArtist = 10
	AlbumTracksFetched = 5
	AlbumTracksKept    = 3
	FeatureThreshold   = 20
	MaxFeatureArtists  = 10
	FeatureSearchLimit = 8
	FeatureTracksKept  = 3
	MaxPlaylistTracks  = 30
)

const (
	// DefaultWeeksBack is the default lookback window.
	DefaultWeeksBack = 4

	// DefaultPause is the pause taken every PauseEvery artist iterations.
	DefaultPause = 500 * time.Millisecond

	// PauseEvery is the number of artist iterations between pauses.
	PauseEvery = 5

	seedTimeRange = "medium_term"
	action        = "create_personal_release_radar"
)

// Options are the per-invocation arguments.
type Options struct {
	WeeksBack       int
	IncludeFeatures bool
	PlaylistName    string
}

// Stats summarizes the playlist contents.
type Stats struct {
	TotalTracks     int `json:"total_tracks"`
	UniqueArtists   int `json:"unique_artists"`
	FeatureTracks   int `json:"feature_tracks"`
	ArtistsScanned  int `json:"artists_scanned"`
	AlbumsInWindow  int `json:"albums_in_window"`
	CandidatesFound int `json:"candidates_found"`
}

// Result is the payload of a successful run.
type Result struct {
	PlaylistID   string      `json:"playlist_id"`
	PlaylistName string      `json:"playlist_name"`
	PlaylistURI  string      `json:"playlist_uri,omitempty"`
	PlaylistURL  string      `json:"playlist_url,omitempty"`
	WeeksBack    int         `json:"weeks_back"`
	Cutoff       string      `json:"cutoff_date"`
	Stats        Stats       `json:"stats"`
	Tracks       []Candidate `json:"tracks"`
}

type orphanPayload struct {
	PlaylistID   string `json:"playlist_id"`
	PlaylistName string `json:"playlist_name"`
}

// Engine runs the release radar aggregation.
type Engine struct {
	client *spotify.Client
	logger *zap.Logger
	pause  time.Duration
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPause sets the throttling pause. Zero disables it.
func WithPause(d time.Duration) Option {
	return func(e *Engine) {
		e.pause = d
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine.
func New(client *spotify.Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		logger: zap.NewNop(),
		pause:  DefaultPause,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultPlaylistName returns "Personal Release Radar - <Month Year>".
func DefaultPlaylistName(now time.Time) string {
	return "Personal Release Radar - " + now.Format("January 2006")
}

// Create collects recent releases and saves them to a new private
// playlist. Per-artist and per-album failures contribute nothing; a
// playlist created before a later failure is left in place and its id is
// reported in the failure.
func (e *Engine) Create(ctx context.Context, opts Options) outcome.Outcome {
	if !e.client.HasToken() {
		return outcome.MissingToken()
	}
	if opts.WeeksBack <= 0 {
		opts.WeeksBack = DefaultWeeksBack
	}

	now := e.now()
	cutoff := Cutoff(now, opts.WeeksBack)
	stats := Stats{}

	artists, fail, ok := e.seedArtists(ctx)
	if !ok {
		return fail
	}
	stats.ArtistsScanned = len(artists)

	cands, albums, err := e.scanAlbums(ctx, artists, cutoff)
	if err != nil {
		return outcome.Connection(err)
	}
	stats.AlbumsInWindow = albums

	if opts.IncludeFeatures && len(cands) < FeatureThreshold {
		features, err := e.searchFeatures(ctx, artists, cutoff)
		if err != nil {
			return outcome.Connection(err)
		}
		cands = append(cands, features...)
	}
	stats.CandidatesFound = len(cands)

	cands = Dedupe(cands)
	SortByRelease(cands)
	if len(cands) > MaxPlaylistTracks {
		cands = cands[:MaxPlaylistTracks]
	}

	e.logger.Info("release radar collected",
		zap.Int("artists", stats.ArtistsScanned),
		zap.Int("albums_in_window", stats.AlbumsInWindow),
		zap.Int("tracks", len(cands)),
	)

	if len(cands) == 0 {
		return outcome.Failf(outcome.KindNotFound,
			"No se encontraron lanzamientos recientes en las últimas %d semanas", opts.WeeksBack)
	}

	user, err := e.client.CurrentUser(ctx)
	if err != nil {
		return outcome.FromError(err, "Error obteniendo información del usuario")
	}

	name := opts.PlaylistName
	if name == "" {
		name = DefaultPlaylistName(now)
	}
	description := fmt.Sprintf("Lanzamientos de las últimas %d semanas de artistas que sigues y escuchas. Generado el %s.",
		opts.WeeksBack, now.Format(dateLayout))

	playlist, err := e.client.CreatePlaylist(ctx, user.ID, name, description, false)
	if err != nil {
		return outcome.FromError(err, "Error creando playlist")
	}
	playlistID := string(playlist.ID)

	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.ID
	}

	if err := e.client.AddTracksToPlaylist(ctx, playlistID, ids); err != nil {
		e.logger.Warn("playlist left empty", zap.String("playlist_id", playlistID), zap.Error(err))
		orphan := orphanPayload{PlaylistID: playlistID, PlaylistName: playlist.Name}
		return outcome.FromError(err, "Error agregando canciones a la playlist").With(orphan)
	}

	stats.TotalTracks = len(cands)
	artistsSeen := make(map[string]bool)
	for _, c := range cands {
		artistsSeen[c.primaryArtist] = true
		if c.Feature {
			stats.FeatureTracks++
		}
	}
	stats.UniqueArtists = len(artistsSeen)

	o := outcome.OK(action).With(Result{
		PlaylistID:   playlistID,
		PlaylistName: playlist.Name,
		PlaylistURI:  string(playlist.URI),
		PlaylistURL:  playlist.ExternalURLs["spotify"],
		WeeksBack:    opts.WeeksBack,
		Cutoff:       cutoff.Format(dateLayout),
		Stats:        stats,
		Tracks:       cands,
	})
	o.Message = fmt.Sprintf("Playlist '%s' creada con %d canciones", playlist.Name, len(cands))
	return o
}

// seedArtists unions followed and top artists by id, followed first,
// capped at MaxScannedArtists. Auth failures are fatal; any other failure
// leaves that source empty.
func (e *Engine) seedArtists(ctx context.Context) ([]spotify.Artist, outcome.Outcome, bool) {
	followed, err := e.client.FollowedArtists(ctx, MaxFollowedArtists)
	if fail, fatal := e.seedFailure("followed", err); fatal {
		return nil, fail, false
	}

	top, err := e.client.TopArtists(ctx, seedTimeRange, MaxTopArtists)
	if fail, fatal := e.seedFailure("top", err); fatal {
		return nil, fail, false
	}

	seen := make(map[spotify.ID]bool)
	var artists []spotify.Artist
	for _, a := range append(followed, top...) {
		if a.ID == "" || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		artists = append(artists, a)
	}
	if len(artists) > MaxScannedArtists {
		artists = artists[:MaxScannedArtists]
	}
	return artists, outcome.Outcome{}, true
}

func (e *Engine) seedFailure(source string, err error) (outcome.Outcome, bool) {
	if err == nil {
		return outcome.Outcome{}, false
	}

	var apiErr *spotify.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return outcome.FromError(err, ""), true
		}
	}
	e.logger.Warn("fetching seed artists failed", zap.String("source", source), zap.Error(err))
	return outcome.Outcome{}, false
}

func (e *Engine) scanAlbums(ctx context.Context, artists []spotify.Artist, cutoff time.Time) ([]Candidate, int, error) {
	var cands []Candidate
	inWindow := 0

	for i, artist := range artists {
		if err := e.throttle(ctx, i); err != nil {
			return nil, 0, err
		}

		albums, err := e.client.ArtistAlbums(ctx, string(artist.ID), MaxAlbumsPerArtist)
		if err != nil {
			e.logger.Debug("skipping artist", zap.String("artist_id", string(artist.ID)), zap.Error(err))
			continue
		}

		for _, album := range albums {
			released, err := ParseReleaseDate(album.ReleaseDate)
			if err != nil || !Within(released, cutoff) {
				continue
			}
			inWindow++

			tracks, err := e.client.AlbumTracks(ctx, string(album.ID), AlbumTracksFetched)
			if err != nil {
				e.logger.Debug("skipping album", zap.String("album_id", string(album.ID)), zap.Error(err))
				continue
			}

			for _, t := range tracks[:min(len(tracks), AlbumTracksKept)] {
				cands = append(cands, Candidate{
					ID:            string(t.ID),
					URI:           string(t.URI),
					Name:          t.Name,
					Artist:        spotify.ArtistNames(t.Artists),
					Album:         album.Name,
					ReleaseDate:   released.Format(dateLayout),
					SourceArtist:  artist.Name,
					primaryArtist: primaryKey(t.Artists, artist),
				})
			}
		}
	}
	return cands, inWindow, nil
}

// searchFeatures finds recent appearances of the seed artists on other
// artists' releases. Only the first FeatureTracksKept results of each
// search are considered; those outside the window are then dropped.
func (e *Engine) searchFeatures(ctx context.Context, artists []spotify.Artist, cutoff time.Time) ([]Candidate, error) {
	var cands []Candidate

	for i, artist := range artists[:min(len(artists), MaxFeatureArtists)] {
		if err := e.throttle(ctx, i); err != nil {
			return nil, err
		}

		query := fmt.Sprintf("artist:%q", artist.Name)
		tracks, err := e.client.SearchTracks(ctx, query, FeatureSearchLimit)
		if err != nil {
			e.logger.Debug("skipping feature search", zap.String("artist_id", string(artist.ID)), zap.Error(err))
			continue
		}

		for _, t := range tracks[:min(len(tracks), FeatureTracksKept)] {
			released, err := ParseReleaseDate(t.Album.ReleaseDate)
			if err != nil || !Within(released, cutoff) {
				continue
			}

			cands = append(cands, Candidate{
				ID:            string(t.ID),
				URI:           string(t.URI),
				Name:          t.Name,
				Artist:        spotify.ArtistNames(t.Artists),
				Album:         t.Album.Name,
				ReleaseDate:   released.Format(dateLayout),
				SourceArtist:  artist.Name,
				Feature:       isFeature(t.Artists, artist),
				primaryArtist: primaryKey(t.Artists, artist),
			})
		}
	}
	return cands, nil
}

// isFeature reports whether artist is credited without being the primary
// artist.
func isFeature(credited []spotify.SimpleArtist, artist spotify.Artist) bool {
	primary := spotify.PrimaryArtist(credited)
	if primary.ID != "" && artist.ID != "" {
		return primary.ID != artist.ID
	}
	return primary.Name != artist.Name
}

func primaryKey(credited []spotify.SimpleArtist, fallback spotify.Artist) string {
	primary := spotify.PrimaryArtist(credited)
	switch {
	case primary.ID != "":
		return string(primary.ID)
	case primary.Name != "":
		return primary.Name
	}
	return string(fallback.ID)
}

// throttle pauses before every PauseEvery-th iteration after the first.
func (e *Engine) throttle(ctx context.Context, i int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.pause <= 0 || i == 0 || i%PauseEvery != 0 {
		return nil
	}

	timer := time.NewTimer(e.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
