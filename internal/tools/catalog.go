package tools

import (
	"context"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
	"github.com/justestif/go-spotify-mcp/internal/playback"
	"github.com/justestif/go-spotify-mcp/internal/radar"
)

// Argument defaults.
const (
	DefaultTimeRange = playback.MediumTerm
	DefaultLimit     = 10
	MinWeeksBack     = 1
	MaxWeeksBack     = 52
)

func timeRangeParam() Param {
	return Param{
		Name:        "time_range",
		Type:        TypeString,
		Description: "Periodo: short_term (~4 semanas), medium_term (~6 meses) o long_term (años)",
		Enum:        playback.TimeRanges,
		Default:     DefaultTimeRange,
	}
}

func limitParam() Param {
	return Param{
		Name:        "limit",
		Type:        TypeInteger,
		Description: "Número de canciones (1-50)",
		Min:         playback.MinLimit,
		Max:         playback.MaxLimit,
		Default:     DefaultLimit,
	}
}

func noArgs(f func(context.Context) outcome.Outcome) func(context.Context, Args) outcome.Outcome {
	return func(ctx context.Context, _ Args) outcome.Outcome {
		return f(ctx)
	}
}

func catalog(p Player, b RadarBuilder) []Tool {
	return []Tool{
		{
			Name:        "next_track",
			Description: "Skip to next track on active Spotify device",
			run:         noArgs(p.Next),
		},
		{
			Name:        "previous_track",
			Description: "Go back to the previous track on active Spotify device",
			run:         noArgs(p.Previous),
		},
		{
			Name:        "pause_playback",
			Description: "Pause playback on active Spotify device",
			run:         noArgs(p.Pause),
		},
		{
			Name:        "resume_playback",
			Description: "Resume playback on active Spotify device",
			run:         noArgs(p.Resume),
		},
		{
			Name:        "get_current_track",
			Description: "Get the track currently playing or paused on Spotify",
			run:         noArgs(p.CurrentTrack),
		},
		{
			Name:        "search_and_play",
			Description: "Search the Spotify catalog and play the best matching track",
			Params: []Param{{
				Name:        "query",
				Type:        TypeString,
				Description: "Canción a buscar, por ejemplo 'bohemian rhapsody queen'",
				Required:    true,
			}},
			run: func(ctx context.Context, a Args) outcome.Outcome {
				return p.SearchAndPlay(ctx, a.String("query"))
			},
		},
		{
			Name:        "get_top_tracks",
			Description: "Get the user's most played tracks for a time range",
			Params:      []Param{timeRangeParam(), limitParam()},
			run: func(ctx context.Context, a Args) outcome.Outcome {
				return p.TopTracks(ctx, a.String("time_range"), a.Int("limit"))
			},
		},
		{
			Name:        "play_top_track",
			Description: "Play a random track from the user's top tracks",
			Params:      []Param{timeRangeParam(), limitParam()},
			run: func(ctx context.Context, a Args) outcome.Outcome {
				return p.PlayTopTrack(ctx, a.String("time_range"), a.Int("limit"))
			},
		},
		{
			Name:        "create_personal_release_radar",
			Description: "Create a private playlist with recent releases from followed and top artists",
			Params: []Param{
				{
					Name:        "weeks_back",
					Type:        TypeInteger,
					Description: "Semanas hacia atrás a considerar (1-52)",
					Min:         MinWeeksBack,
					Max:         MaxWeeksBack,
					Default:     radar.DefaultWeeksBack,
				},
				{
					Name:        "include_features",
					Type:        TypeBoolean,
					Description: "Incluir colaboraciones donde el artista aparece como invitado",
					Default:     true,
				},
				{
					Name:        "playlist_name",
					Type:        TypeString,
					Description: "Nombre de la playlist (por defecto 'Personal Release Radar - <Mes Año>')",
				},
			},
			run: func(ctx context.Context, a Args) outcome.Outcome {
				return b.Create(ctx, radar.Options{
					WeeksBack:       a.Int("weeks_back"),
					IncludeFeatures: a.Bool("include_features"),
					PlaylistName:    a.String("playlist_name"),
				})
			},
		},
		{
			Name:        "list_devices",
			Description: "List the Spotify Connect devices available to the user",
			run:         noArgs(p.ListDevices),
		},
	}
}
