package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, env := range ciEnvVars {
		t.Setenv(env, "")
	}
}

func TestDefaultConflictPolicyInCI(t *testing.T) {
	for _, env := range ciEnvVars {
		t.Run(env, func(t *testing.T) {
			clearCIEnv(t)
			t.Setenv(env, "1")

			require.Equal(t, plugin.PolicyReject, defaultConflictPolicy())
		})
	}
}

func TestDefaultConflictPolicyInteractive(t *testing.T) {
	clearCIEnv(t)
	require.Equal(t, plugin.PolicyQuarantine, defaultConflictPolicy())
}

func TestDefaultConflictPolicyFalseValuesAreNotCI(t *testing.T) {
	clearCIEnv(t)

	t.Setenv("CI", "false")
	require.Equal(t, plugin.PolicyQuarantine, defaultConflictPolicy())

	t.Setenv("CI", "0")
	require.Equal(t, plugin.PolicyQuarantine, defaultConflictPolicy())
}

// registerConflicting loads the project and registers a plugin colliding with
// the blog manifest, returning the state it ends up in.
func registerConflicting(t *testing.T, configPath string) (plugin.State, error) {
	t.Helper()

	app, err := newAppContext(context.Background(), newRootCmd(), &rootFlags{configPath: configPath}, appOptions{})
	require.NoError(t, err)

	desc, err := plugin.BuildDescriptor("dupe", []routing.Route{{Pattern: "/blog"}})
	require.NoError(t, err)
	_, err = app.Registry.Register(desc)
	require.Error(t, err)

	_, state, err := app.Registry.Descriptor("dupe")
	return state, err
}

func TestUnconfiguredPolicyRejectsInCI(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("CI", "true")

	cfg := setupProject(t, "", map[string]string{"blog.yaml": blogManifest})
	_, err := registerConflicting(t, cfg)

	var notFound plugin.ErrPluginNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestConfiguredPolicyWinsOverCI(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("CI", "true")

	cfg := setupProject(t, "quarantine", map[string]string{"blog.yaml": blogManifest})
	state, err := registerConflicting(t, cfg)
	require.NoError(t, err)
	require.Equal(t, plugin.StateQuarantined, state)
}
