package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/justestif/go-spotify-mcp/internal/spotify"
)

func decode(t *testing.T, o Outcome) map[string]any {
	t.Helper()
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return m
}

func TestMarshal_Success(t *testing.T) {
	o := OK("next_track").WithDevice("dev1")
	m := decode(t, o)

	if m["success"] != true {
		t.Errorf("success = %v, want true", m["success"])
	}
	if m["action"] != "next_track" {
		t.Errorf("action = %v, want next_track", m["action"])
	}
	if m["device_id"] != "dev1" {
		t.Errorf("device_id = %v, want dev1", m["device_id"])
	}
	if _, ok := m["error"]; ok {
		t.Error("successful outcome must not carry an error field")
	}
}

func TestMarshal_FlattensPayload(t *testing.T) {
	payload := struct {
		Track  string `json:"track"`
		Artist string `json:"artist"`
	}{"Creep", "Radiohead"}

	m := decode(t, OK("current_track").With(payload))
	if m["track"] != "Creep" || m["artist"] != "Radiohead" {
		t.Errorf("payload not flattened: %v", m)
	}
}

func TestMarshal_NonObjectPayload(t *testing.T) {
	_, err := json.Marshal(OK("x").With([]string{"a"}))
	if err == nil {
		t.Error("Marshal() with array payload should fail")
	}
}

func TestFail_NeverBlank(t *testing.T) {
	o := Fail(KindUpstream, "")
	if o.Error == "" {
		t.Error("Fail() with empty message produced blank error")
	}
	if o.Success {
		t.Error("Fail() produced a successful outcome")
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		header    http.Header
		wantKind  Kind
		wantError string
		wantRetry int
	}{
		{"forbidden", 403, nil, KindAuth, MsgAuth, 0},
		{"unauthorized", 401, nil, KindAuth, MsgAuth, 0},
		{"not found", 404, nil, KindNotFound, MsgNotFound, 0},
		{"rate limited", 429, http.Header{"Retry-After": {"7"}}, KindRateLimited, MsgRateLimited, 7},
		{"rate limited without header", 429, nil, KindRateLimited, MsgRateLimited, 0},
		{"server error", 502, nil, KindUpstream, "Error pausando reproducción: 502", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := FromStatus(tt.code, tt.header, "Error pausando reproducción")
			if o.Success {
				t.Fatal("FromStatus() returned success")
			}
			if o.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", o.Kind, tt.wantKind)
			}
			if o.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", o.Error, tt.wantError)
			}
			if o.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", o.StatusCode, tt.code)
			}
			if o.RetryAfter != tt.wantRetry {
				t.Errorf("RetryAfter = %d, want %d", o.RetryAfter, tt.wantRetry)
			}
		})
	}
}

func TestConnection(t *testing.T) {
	o := Connection(errors.New("dial tcp: refused"))
	if o.Kind != KindConnection {
		t.Errorf("Kind = %q, want %q", o.Kind, KindConnection)
	}
	if o.Error != "Error de conexión: dial tcp: refused" {
		t.Errorf("Error = %q", o.Error)
	}
}

func TestFromPlayerStatus(t *testing.T) {
	o := FromPlayerStatus(404, nil, "Error pausando reproducción")
	if o.Kind != KindNoDevice || o.Error != MsgDeviceNotFound || o.StatusCode != 404 {
		t.Errorf("404 = %+v, want no-device", o)
	}

	for _, code := range []int{401, 429, 500} {
		player := FromPlayerStatus(code, nil, "x")
		catalog := FromStatus(code, nil, "x")
		if player.Kind != catalog.Kind || player.Error != catalog.Error {
			t.Errorf("FromPlayerStatus(%d) = %+v, want %+v", code, player, catalog)
		}
	}
}

func TestFromError(t *testing.T) {
	notFound := &spotify.APIError{StatusCode: 404, Message: "Not found."}
	limited := &spotify.APIError{StatusCode: 429, Header: http.Header{"Retry-After": {"3"}}}

	tests := []struct {
		name       string
		err        error
		player     bool
		wantKind   Kind
		wantStatus int
		wantRetry  int
	}{
		{"catalog 404", notFound, false, KindNotFound, 404, 0},
		{"player 404", notFound, true, KindNoDevice, 404, 0},
		{"wrapped auth", fmt.Errorf("creating playlist: %w", &spotify.APIError{StatusCode: 403}), false, KindAuth, 403, 0},
		{"rate limited", limited, false, KindRateLimited, 429, 3},
		{"unreadable", fmt.Errorf("searching tracks: %w: eof", spotify.ErrUnreadable), false, KindUpstream, 0, 0},
		{"transport", errors.New("dial tcp: refused"), true, KindConnection, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Outcome
			if tt.player {
				o = FromPlayerError(tt.err, "Error")
			} else {
				o = FromError(tt.err, "Error")
			}
			if o.Success || o.Error == "" {
				t.Fatalf("outcome = %+v, want failure with message", o)
			}
			if o.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", o.Kind, tt.wantKind)
			}
			if o.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", o.StatusCode, tt.wantStatus)
			}
			if o.RetryAfter != tt.wantRetry {
				t.Errorf("RetryAfter = %d, want %d", o.RetryAfter, tt.wantRetry)
			}
		})
	}
}
