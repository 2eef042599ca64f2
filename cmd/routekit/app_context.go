package main

import (
	"context"
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/routekit/internal/config"
	"github.com/alexisbeaulieu97/routekit/internal/logger"
	"github.com/alexisbeaulieu97/routekit/internal/metrics"
	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	feedplugin "github.com/alexisbeaulieu97/routekit/internal/plugins/feed"
	"github.com/alexisbeaulieu97/routekit/internal/watch"
	routekiterrors "github.com/alexisbeaulieu97/routekit/pkg/errors"
)

const defaultConfigPath = "routekit.yaml"

// AppContext bundles the services a command works with.
type AppContext struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *plugin.Registry
	Watcher  *watch.Watcher

	// Metrics is nil unless metrics are enabled in the configuration.
	Metrics  *prometheus.Registry
	Recorder *metrics.Recorder

	// SyncErr holds manifest registration failures from the initial load.
	SyncErr error
}

type appOptions struct {
	// policy overrides the configured conflict policy when set.
	policy plugin.ConflictPolicy
	// requireManifestDir fails when the manifest directory does not exist.
	requireManifestDir bool
	// metrics enables the Prometheus recorder regardless of the configuration.
	metrics bool
}

// newAppContext loads configuration, registers the built-in plugins and every
// manifest found in the manifest directory. Registration failures are kept in
// SyncErr; configuration and parse failures are returned.
func newAppContext(ctx context.Context, cmd *cobra.Command, flags *rootFlags, opts appOptions) (*AppContext, error) {
	cfg, err := config.LoadConfig(flags.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, newCommandError("load configuration", flags.configPath, err, "Check the configuration file path and its YAML syntax.")
	}
	if flags.manifestDir != "" {
		cfg.Manifests.Dir = flags.manifestDir
		cfg.Path = ""
	}

	logOpts := cfg.LoggerOptions()
	logOpts.Writer = cmd.ErrOrStderr()
	logOpts.Component = "routekit"
	if flags.verbose {
		logOpts.Level = "debug"
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return nil, newCommandError("create logger", "log settings", err, "Use one of trace, debug, info, warn, error or disabled for log.level.")
	}

	regCfg, err := cfg.RegistryConfig()
	if err != nil {
		return nil, newCommandError("read registry settings", "registry.conflict_policy", err, "Use quarantine or reject for registry.conflict_policy.")
	}
	switch {
	case opts.policy != "":
		regCfg.ConflictPolicy = opts.policy
	case cfg.Registry.ConflictPolicy == "":
		regCfg.ConflictPolicy = defaultConflictPolicy()
	}

	app := &AppContext{Config: cfg, Logger: log}

	var observer plugin.Observer
	if cfg.Metrics.Enabled || opts.metrics {
		app.Metrics = prometheus.NewRegistry()
		app.Recorder = metrics.NewRecorder(app.Metrics, cfg.Metrics.Namespace)
		observer = app.Recorder
	}

	app.Registry = plugin.NewRegistry(regCfg, log, observer)
	if _, err := app.Registry.RegisterPlugin(feedplugin.New()); err != nil {
		return nil, newCommandError("register built-in plugins", feedplugin.ID, err, "This is a bug; please report it.")
	}

	dir := cfg.ManifestDir()
	app.Watcher = watch.New(dir, app.Registry, log)

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) && !opts.requireManifestDir {
			log.WithFields(map[string]any{"dir": dir}).Debug("manifest directory not found, using built-in plugins only")
			return app, nil
		}
		return nil, newCommandError("open manifest directory", dir, err, "Create the directory or point --manifests at an existing one.")
	}

	if err := app.Watcher.Sync(ctx); err != nil {
		var pluginErr *routekiterrors.PluginError
		if !errors.As(err, &pluginErr) {
			return nil, newCommandError("load plugin manifests", dir, err, "Fix the reported manifest and run 'routekit validate'.")
		}
		app.SyncErr = err
	}

	return app, nil
}
