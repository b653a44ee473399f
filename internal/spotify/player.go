package spotify

import (
	"context"
	"net/http"
)

// Devices lists the user's available playback devices.
func (c *Client) Devices(ctx context.Context) ([]Device, *Response, error) {
	var out devicesResponse
	resp, err := c.call(ctx, http.MethodGet, "/me/player/devices", nil, nil, &out, http.StatusOK)
	if err != nil {
		return nil, resp, err
	}
	return out.Devices, resp, nil
}

// Next skips to the next track on deviceID.
func (c *Client) Next(ctx context.Context, deviceID string) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "/me/player/next", deviceQuery(deviceID), nil)
}

// Previous skips to the previous track on deviceID.
func (c *Client) Previous(ctx context.Context, deviceID string) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "/me/player/previous", deviceQuery(deviceID), nil)
}

// Pause pauses playback on deviceID.
func (c *Client) Pause(ctx context.Context, deviceID string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil)
}

// Resume resumes the current context on deviceID.
func (c *Client) Resume(ctx context.Context, deviceID string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, "/me/player/play", deviceQuery(deviceID), nil)
}

// PlayTracks starts playback of the given track URIs on deviceID.
func (c *Client) PlayTracks(ctx context.Context, deviceID string, uris ...string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, "/me/player/play", deviceQuery(deviceID), playRequest{URIs: uris})
}

// CurrentlyPlaying returns the item loaded in the user's player. A 204
// yields a result with a nil Item.
func (c *Client) CurrentlyPlaying(ctx context.Context) (*CurrentlyPlaying, error) {
	ctx, ex := watch(ctx)
	cp, err := c.api.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return nil, classify("getting currently playing", ex, err)
	}
	if cp == nil {
		cp = &CurrentlyPlaying{}
	}
	return cp, nil
}
