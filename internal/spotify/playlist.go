package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const maxTracksPerRequest = 100

// CurrentUser returns the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	ctx, ex := watch(ctx)
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, classify("getting current user", ex, err)
	}
	return user, nil
}

// CreatePlaylist creates a playlist owned by userID.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error) {
	ctx, ex := watch(ctx)
	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, classify("creating playlist", ex, err)
	}
	return playlist, nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))

		bctx, ex := watch(ctx)
		if _, err := c.api.AddTracksToPlaylist(bctx, spotify.ID(playlistID), ids[i:end]...); err != nil {
			return classify(fmt.Sprintf("adding tracks (batch %d-%d)", i+1, end), ex, err)
		}
	}

	return nil
}
