package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

func newDescriptor(t *testing.T, id string, patterns ...string) *plugin.Descriptor {
	t.Helper()
	routes := make([]routing.Route, len(patterns))
	for i, p := range patterns {
		routes[i] = routing.Route{Pattern: p}
	}
	desc, err := plugin.BuildDescriptor(id, routes)
	require.NoError(t, err)
	return desc
}

func TestRecorderObserveRebuild(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	rec := NewRecorder(registry, "")

	table, err := routing.Build(3, []routing.Source{{
		PluginID: "feed",
		Sequence: 1,
		Routes:   []routing.Route{{Pattern: "/"}, {Pattern: "/feed/:id"}},
	}})
	require.NoError(t, err)

	rec.ObserveRebuild(plugin.RebuildSucceeded, table, time.Millisecond)
	rec.ObserveRebuild(plugin.RebuildConflict, nil, time.Millisecond)

	require.Equal(t, float64(1), testutil.ToFloat64(rec.RebuildsTotal.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.RebuildsTotal.WithLabelValues("conflict")))
	require.Equal(t, float64(3), testutil.ToFloat64(rec.TableVersion))
	require.Equal(t, float64(2), testutil.ToFloat64(rec.TableEntries))
	require.Equal(t, float64(0), testutil.ToFloat64(rec.OverriddenTotal))
	require.Equal(t, 1, testutil.CollectAndCount(rec.RebuildDuration))
}

func TestRecorderWiredToRegistry(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	rec := NewRecorder(registry, "test")

	reg := plugin.NewRegistry(&plugin.RegistryConfig{ConflictPolicy: plugin.PolicyQuarantine, CacheSize: 16}, nil, rec)

	_, err := reg.Register(newDescriptor(t, "feed", "/feed"))
	require.NoError(t, err)
	_, err = reg.Register(newDescriptor(t, "blog", "/feed"))
	require.Error(t, err)

	reg.Resolve("/feed")
	reg.Resolve("/feed")
	reg.Resolve("/missing")

	require.Equal(t, float64(1), testutil.ToFloat64(rec.Plugins.WithLabelValues("active")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.Plugins.WithLabelValues("quarantined")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.RebuildsTotal.WithLabelValues("conflict")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.TableVersion))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.ResolutionsTotal.WithLabelValues("true", "false")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.ResolutionsTotal.WithLabelValues("true", "true")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.ResolutionsTotal.WithLabelValues("false", "false")))
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	rec := NewRecorder(registry, "routekit")
	rec.ObservePlugins(2, 0)

	mux := http.NewServeMux()
	RegisterMetricsEndpoint(mux, registry)

	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `routekit_plugins{state="active"} 2`)
}

func TestNewRecorderPanicsOnDoubleRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	NewRecorder(registry, "routekit")
	require.Panics(t, func() { NewRecorder(registry, "routekit") })
}
