package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mcp/internal/auth"
)

type authFlags struct {
	listen    bool
	noBrowser bool
	refresh   bool
}

func newAuthCmd(opts *globalOptions) *cobra.Command {
	flags := &authFlags{}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain a Spotify access token",
		Long: `Authorize spotify-mcp with your Spotify account.

Requires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET. The authorization URL
is printed (and opened in a browser); after approving, paste the URL you
were redirected to. With --listen the redirect is received on the host of
SPOTIFY_REDIRECT_URI instead, which must then point at this machine, e.g.
http://127.0.0.1:8080/callback.

The access token is written to the .env file as SPOTIFY_ACCESS_TOKEN. The
full token is also cached so --refresh can renew it without a browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd.Context(), opts, flags, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&flags.listen, "listen", false, "receive the redirect on a local callback server")
	cmd.Flags().BoolVar(&flags.noBrowser, "no-browser", false, "do not try to open a browser")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "renew the access token from the cached refresh token")
	cmd.MarkFlagsMutuallyExclusive("listen", "refresh")

	return cmd
}

func runAuth(ctx context.Context, opts *globalOptions, flags *authFlags, in io.Reader, out io.Writer) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	authOpts := []auth.Option{
		auth.WithIO(in, out),
		auth.WithLogger(logger.Named("auth")),
	}
	if flags.noBrowser {
		authOpts = append(authOpts, auth.WithBrowser(nil))
	}

	authn, err := auth.New(cfg, authOpts...)
	if err != nil {
		return err
	}

	var res *auth.Result
	if flags.refresh {
		res, err = authn.Refresh(ctx)
	} else {
		res, err = authn.Login(ctx, flags.listen)
	}
	if err != nil {
		return err
	}

	name := res.DisplayName
	if name == "" {
		name = res.UserID
	}
	fmt.Fprintf(out, "Access token obtenido exitosamente para %s\n", name)
	fmt.Fprintf(out, "Token expira en: %d segundos\n", res.ExpiresIn())
	fmt.Fprintf(out, "ACCESS_TOKEN guardado en %s\n", res.EnvFile)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached Spotify token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := auth.DefaultTokenCache()
			if err != nil {
				return err
			}
			if err := cache.Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token en caché eliminado: %s\n", cache.Path())
			return nil
		},
	}
}
