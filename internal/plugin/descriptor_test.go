package plugin

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

type testPlugin struct {
	id     string
	routes []routing.Route
	calls  int
}

func (p *testPlugin) ID() string { return p.id }

func (p *testPlugin) Routes() []routing.Route {
	p.calls++
	return p.routes
}

func newTestPlugin(id string, patterns ...string) *testPlugin {
	routes := make([]routing.Route, len(patterns))
	for i, pattern := range patterns {
		routes[i] = routing.Route{Pattern: pattern, Handler: id + ":" + pattern}
	}
	return &testPlugin{id: id, routes: routes}
}

type panickingPlugin struct{}

func (panickingPlugin) ID() string              { return "boom" }
func (panickingPlugin) Routes() []routing.Route { panic("not ready") }

func TestNewDescriptorCopiesAndCompilesRoutes(t *testing.T) {
	t.Parallel()

	p := newTestPlugin("feed", "/", "/feed/:id")
	desc, err := NewDescriptor(p)
	require.NoError(t, err)
	require.Equal(t, "feed", desc.ID())
	require.Equal(t, 1, p.calls)

	routes := desc.Routes()
	require.Len(t, routes, 2)
	for _, r := range routes {
		_, ok := r.Compiled()
		require.True(t, ok)
	}

	// Mutating the plugin or the returned slice does not leak into the descriptor.
	p.routes[0].Pattern = "/changed"
	routes[1].Pattern = "/changed"
	again := desc.Routes()
	require.Equal(t, "/", again[0].Pattern)
	require.Equal(t, "/feed/:id", again[1].Pattern)
}

func TestNewDescriptorFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		plugin  Plugin
		message string
	}{
		{name: "nil plugin", plugin: nil, message: "plugin is nil"},
		{name: "empty id", plugin: newTestPlugin("", "/feed"), message: "cannot be empty"},
		{name: "bad id", plugin: newTestPlugin("has space", "/feed"), message: "invalid plugin id"},
		{name: "long id", plugin: newTestPlugin(strings.Repeat("a", 65), "/feed"), message: "too long"},
		{name: "no routes", plugin: newTestPlugin("empty"), message: "declares no routes"},
		{name: "invalid pattern", plugin: newTestPlugin("bad", "/ok", "nope"), message: "invalid route pattern"},
		{name: "panic", plugin: panickingPlugin{}, message: "panicked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desc, err := NewDescriptor(tt.plugin)
			require.Nil(t, desc)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.message)

			var descErr ErrDescriptor
			require.ErrorAs(t, err, &descErr)
		})
	}
}

func TestNewDescriptorInvalidPatternIsDetectable(t *testing.T) {
	t.Parallel()

	_, err := NewDescriptor(newTestPlugin("bad", "/feed//x"))

	var invalid ErrInvalidPattern
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "/feed//x", invalid.Pattern)
}

func TestDescriptorSatisfiesPlugin(t *testing.T) {
	t.Parallel()

	desc, err := BuildDescriptor("static", []routing.Route{{Pattern: "/about"}})
	require.NoError(t, err)

	var p Plugin = desc
	rebuilt, err := NewDescriptor(p)
	require.NoError(t, err)
	require.Equal(t, desc.ID(), rebuilt.ID())
	require.Len(t, rebuilt.Routes(), 1)
}

func TestValidateID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"feed", "Feed", "core.feed", "my-plugin_2"} {
		require.NoError(t, ValidateID(id), id)
	}
	for _, id := range []string{"", " ", "-feed", "feed/x", "feed plugin"} {
		require.Error(t, ValidateID(id), id)
	}
}
