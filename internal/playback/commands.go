package playback

import (
	"context"
	"fmt"
	"net/http"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
	"github.com/justestif/go-spotify-mcp/internal/spotify"
)

// command describes one transport control. Spotify answers next with 200
// and the others with 204; each command carries its own success status.
type command struct {
	action  string
	success int
	done    string
	label   string
	send    func(c *spotify.Client, ctx context.Context, deviceID string) (*spotify.Response, error)
}

var (
	cmdNext = command{
		action:  "next_track",
		success: http.StatusOK,
		done:    "Saltó a la siguiente canción",
		label:   "Error saltando canción",
		send:    (*spotify.Client).Next,
	}
	cmdPrevious = command{
		action:  "previous_track",
		success: http.StatusNoContent,
		done:    "Volvió a la canción anterior",
		label:   "Error volviendo a la canción anterior",
		send:    (*spotify.Client).Previous,
	}
	cmdPause = command{
		action:  "pause_playback",
		success: http.StatusNoContent,
		done:    "Reproducción pausada",
		label:   "Error pausando reproducción",
		send:    (*spotify.Client).Pause,
	}
	cmdResume = command{
		action:  "resume_playback",
		success: http.StatusNoContent,
		done:    "Reproducción reanudada",
		label:   "Error reanudando reproducción",
		send:    (*spotify.Client).Resume,
	}
)

// Next skips to the next track on the active device.
func (s *Service) Next(ctx context.Context) outcome.Outcome {
	return s.run(ctx, cmdNext)
}

// Previous returns to the previous track on the active device.
func (s *Service) Previous(ctx context.Context) outcome.Outcome {
	return s.run(ctx, cmdPrevious)
}

// Pause pauses playback on the active device.
func (s *Service) Pause(ctx context.Context) outcome.Outcome {
	return s.run(ctx, cmdPause)
}

// Resume resumes playback on the active device.
func (s *Service) Resume(ctx context.Context) outcome.Outcome {
	return s.run(ctx, cmdResume)
}

func (s *Service) run(ctx context.Context, cmd command) outcome.Outcome {
	if !s.client.HasToken() {
		return outcome.MissingToken()
	}

	deviceID, ok := s.ActiveDevice(ctx)
	if !ok {
		return outcome.NoDevice()
	}

	resp, err := cmd.send(s.client, ctx, deviceID)
	if err != nil {
		return outcome.Connection(err)
	}
	if resp.StatusCode != cmd.success {
		return outcome.FromPlayerStatus(resp.StatusCode, resp.Header, cmd.label)
	}

	o := outcome.OK(cmd.action).WithDevice(deviceID)
	o.Message = fmt.Sprintf("%s en dispositivo %s", cmd.done, deviceID)
	return o
}
