package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-spotify-mcp/internal/config"
	"github.com/justestif/go-spotify-mcp/internal/logging"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	envFile  string
	logLevel string
}

// load reads the configuration and builds the logger. --log-level wins
// over SPOTIFY_MCP_LOG_LEVEL.
func (o *globalOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}

	logger, err := logging.InitLogger(level)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:   "spotify-mcp",
		Short: "Spotify playback tools for MCP clients",
		Long: `spotify-mcp exposes Spotify playback as Model Context Protocol tools
over stdio: transport controls, the current track, search-and-play,
top tracks and a personal release radar playlist.

Run "spotify-mcp auth" once to obtain an access token; it is saved to the
.env file as SPOTIFY_ACCESS_TOKEN. Without a subcommand the server starts.`,
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "path to the .env file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default from "+config.KeyLogLevel+")")

	root.AddCommand(serve, newAuthCmd(opts), newLogoutCmd())
	return root
}
