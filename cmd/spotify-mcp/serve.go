package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-spotify-mcp/internal/config"
	"github.com/justestif/go-spotify-mcp/internal/playback"
	"github.com/justestif/go-spotify-mcp/internal/radar"
	"github.com/justestif/go-spotify-mcp/internal/spotify"
	"github.com/justestif/go-spotify-mcp/internal/tools"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the Spotify tools over MCP stdio",
		Long: `Serve the tool catalog over the MCP stdio transport.

Requires SPOTIFY_ACCESS_TOKEN in the environment or the .env file.
Logs are written to stderr; stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions, in io.Reader, out io.Writer) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireToken(); err != nil {
		logger.Error("cannot start without an access token", zap.String("env_file", cfg.EnvFile))
		return err
	}

	dispatcher := newDispatcher(cfg, logger)
	server := tools.NewMCPServer(dispatcher)

	logger.Info("serving MCP on stdio",
		zap.String("version", version),
		zap.Int("tools", len(dispatcher.Tools())),
		zap.String("api_base_url", cfg.APIBaseURL),
	)

	if err := tools.ServeStdio(ctx, server, logger, in, out); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newDispatcher wires the Spotify client and the services behind the tool
// catalog.
func newDispatcher(cfg *config.Config, logger *zap.Logger) *tools.Dispatcher {
	client := spotify.New(cfg.AccessToken,
		spotify.WithBaseURL(cfg.APIBaseURL),
		spotify.WithTimeout(cfg.HTTPTimeout),
		spotify.WithLogger(logger.Named("spotify")),
	)

	player := playback.New(client, playback.WithLogger(logger.Named("playback")))
	engine := radar.New(client,
		radar.WithLogger(logger.Named("radar")),
		radar.WithPause(cfg.RadarPause),
	)

	return tools.NewDispatcher(player, engine, tools.WithLogger(logger.Named("tools")))
}
