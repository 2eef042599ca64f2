package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/routekit/internal/metrics"
)

type watchOptions struct {
	metricsAddr string
}

func newWatchCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the route table in sync with the manifest directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, rootFlags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (for example :9090)")

	return cmd
}

func runWatch(cmd *cobra.Command, rootFlags *rootFlags, opts *watchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newAppContext(ctx, cmd, rootFlags, appOptions{
		requireManifestDir: true,
		metrics:            opts.metricsAddr != "",
	})
	if err != nil {
		return err
	}
	reportSyncErrors(cmd, app)

	if opts.metricsAddr != "" {
		shutdown, err := serveMetrics(ctx, app, opts.metricsAddr)
		if err != nil {
			return newCommandError("watch", "starting the metrics endpoint", err, "Choose a free address with --metrics-addr.")
		}
		defer shutdown()
	}

	table := app.Registry.CurrentTable()
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s: %d plugins, %d routes (table v%d). Press Ctrl+C to stop.\n",
		app.Config.ManifestDir(), len(app.Registry.Plugins()), table.Len(), table.Version())

	if err := app.Watcher.Run(ctx); err != nil {
		return newCommandError("watch", "watching the manifest directory", err, "Check that the directory exists and is readable.")
	}
	return nil
}

func serveMetrics(ctx context.Context, app *AppContext, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	metrics.RegisterMetricsEndpoint(mux, app.Metrics)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error(err, "metrics endpoint stopped")
		}
	}()
	app.Logger.WithFields(map[string]any{"addr": listener.Addr().String()}).Info("serving metrics")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}, nil
}
