package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberlab/flambeau/internal/server"
	"github.com/emberlab/flambeau/pkg/cache"
)

// newServeCmd creates the serve command: the HTTP preview front-end.
func newServeCmd() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser flame editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the rendered-image cache")

	return cmd
}

func runServe(ctx context.Context, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)

	c, err := newRenderCache(noCache)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(logger, c),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	logger.Infof("Serving flame editor on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// newRenderCache builds the rendered-image cache for the server. Failing to
// resolve the cache directory degrades to a no-op cache rather than refusing
// to serve.
func newRenderCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
