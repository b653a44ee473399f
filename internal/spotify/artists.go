package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
)

// FollowedArtists returns the first page of artists the user follows.
func (c *Client) FollowedArtists(ctx context.Context, limit int) ([]Artist, error) {
	ctx, ex := watch(ctx)
	page, err := c.api.CurrentUsersFollowedArtists(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, classify("fetching followed artists", ex, err)
	}
	return page.Artists, nil
}

// TopArtists returns the user's top artists for timeRange.
func (c *Client) TopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error) {
	ctx, ex := watch(ctx)
	page, err := c.api.CurrentUsersTopArtists(ctx,
		spotify.Timerange(spotify.Range(timeRange)),
		spotify.Limit(limit),
	)
	if err != nil {
		return nil, classify("fetching top artists", ex, err)
	}
	return page.Artists, nil
}

// ArtistAlbums returns up to limit albums and singles by an artist.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string, limit int) ([]Album, error) {
	ctx, ex := watch(ctx)
	page, err := c.api.GetArtistAlbums(ctx, spotify.ID(artistID),
		[]spotify.AlbumType{spotify.AlbumTypeAlbum, spotify.AlbumTypeSingle},
		spotify.Limit(limit),
	)
	if err != nil {
		return nil, classify("fetching artist albums", ex, err)
	}
	return page.Albums, nil
}
