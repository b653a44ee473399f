package spotify

import (
	"strings"

	"github.com/zmb3/spotify/v2"
)

// Web API objects returned by the library-backed calls.
type (
	ID               = spotify.ID
	Track            = spotify.FullTrack
	SimpleTrack      = spotify.SimpleTrack
	Artist           = spotify.FullArtist
	SimpleArtist     = spotify.SimpleArtist
	Album            = spotify.SimpleAlbum
	User             = spotify.PrivateUser
	Playlist         = spotify.FullPlaylist
	CurrentlyPlaying = spotify.CurrentlyPlaying
)

// Device is a Spotify Connect playback target. ID is null for restricted
// devices and VolumePercent is null when the device has no volume control.
type Device struct {
	ID            *string `json:"id"`
	IsActive      bool    `json:"is_active"`
	IsRestricted  bool    `json:"is_restricted"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	VolumePercent *int    `json:"volume_percent"`
}

// ArtistNames joins the credited artist names with ", ".
func ArtistNames(artists []SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// PrimaryArtist returns the first credited artist, or the zero value.
func PrimaryArtist(artists []SimpleArtist) SimpleArtist {
	if len(artists) == 0 {
		return SimpleArtist{}
	}
	return artists[0]
}

type devicesResponse struct {
	Devices []Device `json:"devices"`
}

type playRequest struct {
	URIs []string `json:"uris"`
}
