package playback

import (
	"context"
	"fmt"
	"net/http"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
	"github.com/justestif/go-spotify-mcp/internal/spotify"
)

// Time ranges accepted by the top items endpoints.
const (
	ShortTerm  = "short_term"
	MediumTerm = "medium_term"
	LongTerm   = "long_term"
)

// TimeRanges lists the accepted time ranges in display order.
var TimeRanges = []string{ShortTerm, MediumTerm, LongTerm}

// Top tracks limit bounds.
const (
	MinLimit = 1
	MaxLimit = 50
)

// ValidTimeRange reports whether tr is an accepted time range.
func ValidTimeRange(tr string) bool {
	switch tr {
	case ShortTerm, MediumTerm, LongTerm:
		return true
	}
	return false
}

// TrackSummary is the flat projection of a track returned to callers.
type TrackSummary struct {
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	URI        string `json:"uri"`
	Duration   string `json:"duration"`
	Popularity int    `json:"popularity,omitempty"`
}

// RankedTrack is a TrackSummary with its 1-based rank.
type RankedTrack struct {
	Position int `json:"position"`
	TrackSummary
}

// NowPlaying is the payload of a successful CurrentTrack.
type NowPlaying struct {
	Track    string `json:"track"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Progress string `json:"progress,omitempty"`
	URI      string `json:"uri"`
}

// TopTracksResult is the payload of a successful TopTracks.
type TopTracksResult struct {
	TimeRange string        `json:"time_range"`
	Count     int           `json:"count"`
	Tracks    []RankedTrack `json:"tracks"`
}

type foundTrackPayload struct {
	FoundTrack TrackSummary `json:"found_track"`
}

type playedTrackPayload struct {
	TimeRange   string      `json:"time_range"`
	PlayedTrack RankedTrack `json:"played_track"`
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

func summarize(t spotify.Track) TrackSummary {
	return TrackSummary{
		Name:       t.Name,
		Artist:     spotify.ArtistNames(t.Artists),
		Album:      t.Album.Name,
		URI:        string(t.URI),
		Duration:   FormatDuration(int(t.Duration)),
		Popularity: int(t.Popularity),
	}
}

// CurrentTrack describes the item loaded in the user's player.
func (s *Service) CurrentTrack(ctx context.Context) outcome.Outcome {
	if !s.client.HasToken() {
		return outcome.MissingToken()
	}

	cp, err := s.client.CurrentlyPlaying(ctx)
	if err != nil {
		return outcome.FromPlayerError(err, "Error obteniendo canción actual")
	}
	if cp.Item == nil {
		return outcome.Fail(outcome.KindNothingPlaying, outcome.MsgNothingPlaying)
	}

	status := "paused"
	if cp.Playing {
		status = "playing"
	}

	return outcome.OK("current_track").With(NowPlaying{
		Track:    cp.Item.Name,
		Artist:   spotify.ArtistNames(cp.Item.Artists),
		Album:    cp.Item.Album.Name,
		Status:   status,
		Duration: FormatDuration(int(cp.Item.Duration)),
		Progress: FormatDuration(int(cp.Progress)),
		URI:      string(cp.Item.URI),
	})
}

// SearchAndPlay plays the best catalog match for query. Failures after a
// successful search still carry the found track.
func (s *Service) SearchAndPlay(ctx context.Context, query string) outcome.Outcome {
	if !s.client.HasToken() {
		return outcome.MissingToken()
	}

	tracks, err := s.client.SearchTracks(ctx, query, 1)
	if err != nil {
		return outcome.FromError(err, "Error buscando canción")
	}
	if len(tracks) == 0 {
		return outcome.Failf(outcome.KindNotFound, "No se encontraron resultados para: '%s'", query)
	}

	found := summarize(tracks[0])
	return s.play(ctx, "search_and_play", found, foundTrackPayload{FoundTrack: found})
}

// TopTracks returns the user's top tracks in upstream order.
func (s *Service) TopTracks(ctx context.Context, timeRange string, limit int) outcome.Outcome {
	ranked, fail, ok := s.fetchTop(ctx, timeRange, limit)
	if !ok {
		return fail
	}

	return outcome.OK("get_top_tracks").With(TopTracksResult{
		TimeRange: timeRange,
		Count:     len(ranked),
		Tracks:    ranked,
	})
}

// PlayTopTrack plays a uniformly random track from the same set TopTracks
// would return for the given arguments.
func (s *Service) PlayTopTrack(ctx context.Context, timeRange string, limit int) outcome.Outcome {
	ranked, fail, ok := s.fetchTop(ctx, timeRange, limit)
	if !ok {
		return fail
	}
	if len(ranked) == 0 {
		return outcome.Failf(outcome.KindNotFound, "No se encontraron canciones top para el periodo '%s'", timeRange)
	}

	pick := ranked[s.intN(len(ranked))]
	return s.play(ctx, "play_top_track", pick.TrackSummary, playedTrackPayload{
		TimeRange:   timeRange,
		PlayedTrack: pick,
	})
}

func (s *Service) fetchTop(ctx context.Context, timeRange string, limit int) ([]RankedTrack, outcome.Outcome, bool) {
	if !s.client.HasToken() {
		return nil, outcome.MissingToken(), false
	}

	tracks, err := s.client.TopTracks(ctx, timeRange, limit)
	if err != nil {
		return nil, outcome.FromError(err, "Error obteniendo canciones top"), false
	}

	ranked := make([]RankedTrack, len(tracks))
	for i, t := range tracks {
		ranked[i] = RankedTrack{Position: i + 1, TrackSummary: summarize(t)}
	}
	return ranked, outcome.Outcome{}, true
}

// play starts track on the active device. payload is attached to every
// outcome, success or failure.
func (s *Service) play(ctx context.Context, action string, track TrackSummary, payload any) outcome.Outcome {
	deviceID, ok := s.ActiveDevice(ctx)
	if !ok {
		return outcome.NoDevice().With(payload)
	}

	resp, err := s.client.PlayTracks(ctx, deviceID, track.URI)
	if err != nil {
		return outcome.Connection(err).With(payload)
	}
	if resp.StatusCode != http.StatusNoContent {
		return outcome.FromPlayerStatus(resp.StatusCode, resp.Header, "Error reproduciendo canción").With(payload)
	}

	o := outcome.OK(action).WithDevice(deviceID).With(payload)
	o.Message = fmt.Sprintf("Reproduciendo: %s - %s", track.Name, track.Artist)
	return o
}
