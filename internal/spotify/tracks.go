package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
)

// SearchTracks searches the catalog for tracks matching q.
func (c *Client) SearchTracks(ctx context.Context, q string, limit int) ([]Track, error) {
	ctx, ex := watch(ctx)
	res, err := c.api.Search(ctx, q, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, classify("searching tracks", ex, err)
	}
	if res == nil || res.Tracks == nil {
		return nil, nil
	}
	return res.Tracks.Tracks, nil
}

// TopTracks returns the user's top tracks for timeRange
// (short_term, medium_term or long_term), in upstream rank order.
func (c *Client) TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error) {
	ctx, ex := watch(ctx)
	page, err := c.api.CurrentUsersTopTracks(ctx,
		spotify.Timerange(spotify.Range(timeRange)),
		spotify.Limit(limit),
	)
	if err != nil {
		return nil, classify("fetching top tracks", ex, err)
	}
	return page.Tracks, nil
}

// AlbumTracks returns up to limit tracks of an album.
func (c *Client) AlbumTracks(ctx context.Context, albumID string, limit int) ([]SimpleTrack, error) {
	ctx, ex := watch(ctx)
	page, err := c.api.GetAlbumTracks(ctx, spotify.ID(albumID), spotify.Limit(limit))
	if err != nil {
		return nil, classify("fetching album tracks", ex, err)
	}
	return page.Tracks, nil
}
