package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apihttp "finassist/internal/http"
	applog "finassist/internal/log"
)

// NewServeCommand creates the serve command.
func NewServeCommand(newApp AppFactory) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if port == "" {
				port = app.Config.Port
			}
			return Serve(cmd.Context(), app, ":"+port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default: PORT)")
	return cmd
}

// Serve runs the HTTP API on addr until ctx is done, then drains in-flight requests
// for at most the configured shutdown timeout.
func Serve(ctx context.Context, app *App, addr string) error {
	srv := apihttp.NewServer(addr, apihttp.Deps{
		Services:       app.Services,
		Tools:          app.Tools,
		Reports:        app.Reports,
		Store:          app.Backend.Store,
		WriteRateLimit: app.Config.WriteRateLimit,
	}, app.Log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Log.InfoContext(gctx, "HTTP server listening",
			applog.FieldOperation, applog.OpStartup,
			"addr", addr,
			"backend", app.Backend.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.Config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
