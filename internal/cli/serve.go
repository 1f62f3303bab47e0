package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/internal/api"
	"github.com/matzehuels/scormlens/pkg/httputil"
)

// shutdownTimeout bounds how long in-flight requests may finish after an
// interrupt.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  POST /v1/analyses                         upload a zip or {"url": "..."}
  GET  /v1/analyses/{id}                    full analysis as JSON
  GET  /v1/analyses/{id}/content-map.csv    content map download
  GET  /v1/analyses/{id}/findings.csv       findings download
  GET  /v1/analyses/{id}/export?format=pdf  any export or render format

Stored analyses live in the configured cache. Use the redis backend to
share them between server processes. URL analyses are refused for
loopback, private and link-local addresses unless api.allow_private_urls
is set.`,
		Example: `  scormlens serve --listen :9000
  curl -s --data-binary @course.zip -H 'X-Package-Name: course.zip' localhost:9000/v1/analyses`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = c.config.API.Listen
			}
			return c.serve(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	return cmd
}

// serve runs the API until ctx is cancelled, then shuts down gracefully.
func (c *CLI) serve(ctx context.Context, listen string) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := api.New(runner, c.Logger, api.Options{
		MaxUploadBytes:       c.config.Limits.MaxUploadBytes,
		MaxUncompressedBytes: c.config.Limits.MaxUncompressedBytes,
		Download: httputil.Options{
			Timeout:  c.config.HTTP.Timeout.Duration,
			Attempts: c.config.HTTP.Attempts,
			MaxBytes: c.config.Limits.MaxUploadBytes,
		},
		AllowPrivateURLs: c.config.API.AllowPrivateURLs,
	})

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       c.config.API.ReadTimeout.Duration,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.Serve(ln)
	}()
	c.Logger.Info("serving API", "addr", ln.Addr().String(), "cache", c.config.Cache.Backend)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
