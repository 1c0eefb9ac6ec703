package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/strata/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the preview server",
		Long: `Start a preview server for the views of the templates directory.

Every view is served at /view/<name> with the model from the models
directory. With live reload enabled, pages refresh when a template or a
model file changes, and load errors are shown as an overlay.

Examples:
  strata serve                    # Serve on localhost:7331
  strata serve -p 3000            # Serve on port 3000
  strata serve --live-reload=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.newRenderer()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(a.config, r, a.logger)
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}
			a.logger.Info(context.WithoutCancel(ctx), "Preview server stopped")
			return nil
		},
	}

	flags := serveCmd.Flags()
	flags.String("host", "localhost", "host to bind to")
	flags.IntP("port", "p", 7331, "port to serve on")
	flags.Bool("live-reload", true, "reload pages when files change")
	addFlagValidation(flags, "port", validatePort)

	bindFlags(a.viper, flags, map[string]string{
		"host":        "server.host",
		"port":        "server.port",
		"live-reload": "server.live_reload",
	})
	return serveCmd
}
