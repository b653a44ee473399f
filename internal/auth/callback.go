package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const successPage = `<!DOCTYPE html>
<html>
<head><title>Spotify MCP</title></head>
<body>
<h1>Autorización completada</h1>
<p>Puedes cerrar esta ventana y volver a la terminal.</p>
</body>
</html>`

// callbackHandler serves the OAuth redirect. Exactly one result is sent on
// codes or errs per request.
func (a *Authenticator) callbackHandler(state string, codes chan<- string, errs chan<- error) http.Handler {
	path := a.redirect.Path
	if path == "" {
		path = "/"
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		code, err := codeFromQuery(r.URL.Query(), state)
		if err == nil && r.URL.Query().Get("state") != state {
			err = ErrStateMismatch
		}
		if err != nil {
			http.Error(w, "Autorización fallida: "+err.Error(), http.StatusBadRequest)
			send(errs, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, successPage)
		send(codes, code)
	})
	return router
}

func send[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// awaitCallback serves the redirect URI on its own host and waits for
// Spotify to call back. The redirect URI must point at this machine, e.g.
// http://127.0.0.1:8080/callback.
func (a *Authenticator) awaitCallback(ctx context.Context, state string) (string, error) {
	addr := a.redirect.Host
	if a.redirect.Port() == "" {
		addr = net.JoinHostPort(a.redirect.Hostname(), "80")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listening on %s: %w", addr, err)
	}

	codes := make(chan string, 1)
	errs := make(chan error, 1)
	server := &http.Server{
		Handler:           a.callbackHandler(state, codes, errs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			send(errs, fmt.Errorf("callback server error: %w", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.showURL(a.AuthURL(state))
	fmt.Fprintf(a.out, "Esperando la redirección en %s ...\n", a.redirect)

	timer := time.NewTimer(callbackTimeout)
	defer timer.Stop()

	select {
	case code := <-codes:
		return code, nil
	case err := <-errs:
		return "", err
	case <-timer.C:
		return "", ErrAuthTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
