// Package tools exposes the Spotify operations as a fixed catalog of named
// tools with declared argument schemas, and serves them over MCP.
package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
	"github.com/justestif/go-spotify-mcp/internal/playback"
	"github.com/justestif/go-spotify-mcp/internal/radar"
)

// Player is the playback surface the catalog dispatches to.
type Player interface {
	Next(ctx context.Context) outcome.Outcome
	Previous(ctx context.Context) outcome.Outcome
	Pause(ctx context.Context) outcome.Outcome
	Resume(ctx context.Context) outcome.Outcome
	CurrentTrack(ctx context.Context) outcome.Outcome
	SearchAndPlay(ctx context.Context, query string) outcome.Outcome
	TopTracks(ctx context.Context, timeRange string, limit int) outcome.Outcome
	PlayTopTrack(ctx context.Context, timeRange string, limit int) outcome.Outcome
	ListDevices(ctx context.Context) outcome.Outcome
}

// RadarBuilder creates release radar playlists.
type RadarBuilder interface {
	Create(ctx context.Context, opts radar.Options) outcome.Outcome
}

var (
	_ Player       = (*playback.Service)(nil)
	_ RadarBuilder = (*radar.Engine)(nil)
)

// Tool is one catalog entry.
type Tool struct {
	Name        string
	Description string
	Params      []Param

	run func(ctx context.Context, args Args) outcome.Outcome
}

// Dispatcher resolves tool names, validates arguments and runs the tool.
type Dispatcher struct {
	tools  []Tool
	index  map[string]int
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher builds the catalog over player and builder.
func NewDispatcher(player Player, builder RadarBuilder, opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}

	d.tools = catalog(player, builder)
	d.index = make(map[string]int, len(d.tools))
	for i, t := range d.tools {
		d.index[t.Name] = i
	}
	return d
}

// Tools returns the catalog in registration order.
func (d *Dispatcher) Tools() []Tool {
	return d.tools
}

// Dispatch runs the named tool. Unknown names and invalid arguments yield
// a validation outcome without touching the network.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw map[string]any) outcome.Outcome {
	logger := d.logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("tool", name),
	)
	start := time.Now()

	o := d.dispatch(ctx, name, raw)

	fields := []zap.Field{
		zap.Bool("success", o.Success),
		zap.Duration("elapsed", time.Since(start)),
	}
	if !o.Success {
		fields = append(fields, zap.String("error_kind", string(o.Kind)), zap.String("error", o.Error))
		if o.StatusCode != 0 {
			fields = append(fields, zap.Int("status", o.StatusCode))
		}
		logger.Warn("tool failed", fields...)
	} else {
		logger.Info("tool completed", fields...)
	}
	return o
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, raw map[string]any) outcome.Outcome {
	i, ok := d.index[name]
	if !ok {
		return outcome.Failf(outcome.KindValidation, "Herramienta desconocida: %s", name)
	}
	tool := d.tools[i]

	args, fail := bind(tool.Params, raw)
	if fail != nil {
		return *fail
	}
	return tool.run(ctx, args)
}
