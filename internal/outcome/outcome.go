// Package outcome defines the uniform result returned by every tool
// operation, together with the error taxonomy and the user-facing messages.
package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/justestif/go-spotify-mcp/internal/spotify"
)

// Kind classifies a failed operation.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindNoDevice       Kind = "no_device"
	KindAuth           Kind = "auth"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindUpstream       Kind = "upstream"
	KindConnection     Kind = "connection"
	KindValidation     Kind = "validation"
	KindNothingPlaying Kind = "nothing_playing"
)

// User-facing messages.
const (
	MsgMissingToken   = "ACCESS_TOKEN no configurado en .env"
	MsgNoDevice       = "No hay dispositivo activo encontrado. Asegúrate de que Spotify esté reproduciéndose."
	MsgAuth           = "Token expirado o permisos insuficientes"
	MsgDeviceNotFound = "No hay dispositivos activos o no se encontró el dispositivo"
	MsgNotFound       = "Recurso no encontrado en Spotify"
	MsgRateLimited    = "Límite de peticiones de Spotify excedido, intenta de nuevo más tarde"
	MsgNothingPlaying = "No hay nada reproduciéndose actualmente"
)

// Outcome is the result contract of every operation. When Success is true
// Error is empty; when it is false Error is always set.
//
// Payload carries operation-specific fields. It must marshal to a JSON
// object; its fields are merged into the top level of the encoded outcome.
type Outcome struct {
	Success    bool
	Action     string
	Error      string
	Kind       Kind
	Message    string
	StatusCode int
	RetryAfter int
	DeviceID   string
	Payload    any
}

// OK returns a successful outcome for action.
func OK(action string) Outcome {
	return Outcome{Success: true, Action: action}
}

// Fail returns a failed outcome. An empty msg is replaced with the kind so
// the error field is never blank.
func Fail(kind Kind, msg string) Outcome {
	if msg == "" {
		msg = string(kind)
	}
	return Outcome{Kind: kind, Error: msg}
}

// Failf is Fail with a format string.
func Failf(kind Kind, format string, args ...any) Outcome {
	return Fail(kind, fmt.Sprintf(format, args...))
}

// MissingToken is the configuration failure for an absent access token.
func MissingToken() Outcome {
	return Fail(KindConfiguration, MsgMissingToken)
}

// NoDevice is the failure for a missing active playback device.
func NoDevice() Outcome {
	return Fail(KindNoDevice, MsgNoDevice)
}

// Connection wraps a transport failure.
func Connection(err error) Outcome {
	return Failf(KindConnection, "Error de conexión: %v", err)
}

// FromStatus classifies a non-success upstream status code from a catalog,
// library or playlist endpoint. label prefixes the generic message, e.g.
// "Error creando playlist".
func FromStatus(code int, header http.Header, label string) Outcome {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		o := Fail(KindAuth, MsgAuth)
		o.StatusCode = code
		return o
	case http.StatusNotFound:
		o := Fail(KindNotFound, MsgNotFound)
		o.StatusCode = code
		return o
	case http.StatusTooManyRequests:
		o := Fail(KindRateLimited, MsgRateLimited)
		o.StatusCode = code
		if header != nil {
			if secs, err := strconv.Atoi(header.Get("Retry-After")); err == nil {
				o.RetryAfter = secs
			}
		}
		return o
	}
	if label == "" {
		label = "Error HTTP"
	}
	o := Failf(KindUpstream, "%s: %d", label, code)
	o.StatusCode = code
	return o
}

// FromPlayerStatus is FromStatus for player endpoints, where a 404 means
// there is no active device to act on.
func FromPlayerStatus(code int, header http.Header, label string) Outcome {
	if code == http.StatusNotFound {
		o := Fail(KindNoDevice, MsgDeviceNotFound)
		o.StatusCode = code
		return o
	}
	return FromStatus(code, header, label)
}

// FromError classifies a library-backed adapter error: a non-success reply
// goes through FromStatus, an undecodable success reply is an upstream
// failure, and anything else is a connection failure.
func FromError(err error, label string) Outcome {
	return fromError(err, label, FromStatus)
}

// FromPlayerError is FromError for player endpoints.
func FromPlayerError(err error, label string) Outcome {
	return fromError(err, label, FromPlayerStatus)
}

func fromError(err error, label string, status func(int, http.Header, string) Outcome) Outcome {
	var apiErr *spotify.APIError
	switch {
	case errors.As(err, &apiErr):
		return status(apiErr.StatusCode, apiErr.Header, label)
	case errors.Is(err, spotify.ErrUnreadable):
		return Undecodable(err)
	}
	return Connection(err)
}

// Undecodable is the failure for a success reply that could not be parsed.
func Undecodable(err error) Outcome {
	return Failf(KindUpstream, "Respuesta inválida de Spotify: %v", err)
}

// With returns a copy of o carrying payload.
func (o Outcome) With(payload any) Outcome {
	o.Payload = payload
	return o
}

// WithDevice returns a copy of o carrying the device id.
func (o Outcome) WithDevice(id string) Outcome {
	o.DeviceID = id
	return o
}

// MarshalJSON flattens the payload into the top-level object.
func (o Outcome) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any)
	if o.Payload != nil {
		raw, err := json.Marshal(o.Payload)
		if err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("payload is not an object: %w", err)
		}
	}

	fields["success"] = o.Success
	if o.Action != "" {
		fields["action"] = o.Action
	}
	if !o.Success {
		fields["error"] = o.Error
		if o.Kind != "" {
			fields["error_kind"] = o.Kind
		}
	}
	if o.Message != "" {
		fields["message"] = o.Message
	}
	if o.StatusCode != 0 {
		fields["status_code"] = o.StatusCode
	}
	if o.RetryAfter != 0 {
		fields["retry_after_seconds"] = o.RetryAfter
	}
	if o.DeviceID != "" {
		fields["device_id"] = o.DeviceID
	}
	return json.Marshal(fields)
}
