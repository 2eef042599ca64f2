package config

import (
	"path/filepath"

	"github.com/alexisbeaulieu97/routekit/internal/logger"
	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

// Manifest describes a plugin declared in a YAML file.
type Manifest struct {
	ID          string          `yaml:"id" validate:"required,plugin_id"`
	Description string          `yaml:"description,omitempty" validate:"max=200"`
	Routes      []ManifestRoute `yaml:"routes" validate:"required,min=1,dive"`

	// Path is the file the manifest was read from.
	Path string `yaml:"-"`
}

// ManifestRoute is one route entry of a manifest.
type ManifestRoute struct {
	Pattern  string `yaml:"pattern" validate:"required,route_pattern"`
	Priority int    `yaml:"priority,omitempty"`
	Override bool   `yaml:"override,omitempty"`
	Handler  string `yaml:"handler,omitempty" validate:"max=200"`
}

// Descriptor builds the plugin descriptor declared by the manifest. A route
// without a handler name gets "<id>:<pattern>".
func (m *Manifest) Descriptor() (*plugin.Descriptor, error) {
	routes := make([]routing.Route, len(m.Routes))
	for i, r := range m.Routes {
		handler := r.Handler
		if handler == "" {
			handler = m.ID + ":" + r.Pattern
		}
		routes[i] = routing.Route{
			Pattern:  r.Pattern,
			Priority: r.Priority,
			Override: r.Override,
			Handler:  handler,
		}
	}
	return plugin.BuildDescriptor(m.ID, routes)
}

// Config is the host configuration document (routekit.yaml).
type Config struct {
	Log       LogSettings      `yaml:"log"`
	Registry  RegistrySettings `yaml:"registry"`
	Manifests ManifestSettings `yaml:"manifests"`
	Metrics   MetricsSettings  `yaml:"metrics"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// LogSettings configures the zerolog logger.
type LogSettings struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// RegistrySettings configures conflict handling and resolution caching.
type RegistrySettings struct {
	ConflictPolicy string `yaml:"conflict_policy" validate:"omitempty,conflict_policy"`
	CacheSize      int    `yaml:"cache_size" validate:"min=0,max=1048576"`
}

// ManifestSettings locates plugin manifests.
type ManifestSettings struct {
	Dir string `yaml:"dir" validate:"required"`
}

// MetricsSettings toggles the Prometheus recorder.
type MetricsSettings struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"omitempty,alphanum"`
}

// DefaultConfig returns the configuration used when no routekit.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		Log:       LogSettings{Level: "info", Format: "console"},
		Registry:  RegistrySettings{CacheSize: routing.DefaultCacheSize},
		Manifests: ManifestSettings{Dir: "plugins"},
		Metrics:   MetricsSettings{Namespace: "routekit"},
	}
}

// RegistryConfig converts the registry section into a plugin.RegistryConfig.
// An empty conflict policy keeps plugin.DefaultConfig; the CLI picks one per environment.
func (c *Config) RegistryConfig() (*plugin.RegistryConfig, error) {
	cfg := plugin.DefaultConfig()
	if c.Registry.ConflictPolicy != "" {
		policy, err := plugin.ParseConflictPolicy(c.Registry.ConflictPolicy)
		if err != nil {
			return nil, err
		}
		cfg.ConflictPolicy = policy
	}
	cfg.CacheSize = c.Registry.CacheSize
	return cfg, nil
}

// LoggerOptions converts the log section into logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
	}
}

// ManifestDir returns the manifest directory, resolved against the directory
// of the configuration file when relative.
func (c *Config) ManifestDir() string {
	dir := c.Manifests.Dir
	if filepath.IsAbs(dir) || c.Path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(c.Path), dir)
}
