package playback

import (
	"context"
	"net/http"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
)

// DeviceInfo is the caller-facing view of a playback device.
type DeviceInfo struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Active     bool   `json:"is_active"`
	Restricted bool   `json:"is_restricted,omitempty"`
	Volume     *int   `json:"volume_percent,omitempty"`
}

type devicesPayload struct {
	Count   int          `json:"count"`
	Devices []DeviceInfo `json:"devices"`
}

// ListDevices returns every device the user can play on.
func (s *Service) ListDevices(ctx context.Context) outcome.Outcome {
	if !s.client.HasToken() {
		return outcome.MissingToken()
	}

	devices, resp, err := s.client.Devices(ctx)
	switch {
	case err != nil && resp == nil:
		return outcome.Connection(err)
	case err != nil:
		return outcome.Undecodable(err)
	case resp.StatusCode != http.StatusOK:
		return outcome.FromPlayerStatus(resp.StatusCode, resp.Header, "Error listando dispositivos")
	}

	infos := make([]DeviceInfo, len(devices))
	for i, d := range devices {
		info := DeviceInfo{
			Name:       d.Name,
			Type:       d.Type,
			Active:     d.IsActive,
			Restricted: d.IsRestricted,
			Volume:     d.VolumePercent,
		}
		if d.ID != nil {
			info.ID = *d.ID
		}
		infos[i] = info
	}

	return outcome.OK("list_devices").With(devicesPayload{
		Count:   len(infos),
		Devices: infos,
	})
}
