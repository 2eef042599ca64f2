package plugin

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

// Each plugin id owns a disjoint pattern namespace, so any sequence of
// operations stays conflict-free.
func uniquePatterns(id string, n int) []string {
	out := make([]string, n)
	for i := range out {
		switch i % 3 {
		case 0:
			out[i] = fmt.Sprintf("/%s/r%d", id, i)
		case 1:
			out[i] = fmt.Sprintf("/%s/r%d/:id", id, i)
		default:
			out[i] = fmt.Sprintf("/%s/r%d/*rest", id, i)
		}
	}
	return out
}

func routeKeys(table *routing.Table) []string {
	keys := make([]string, 0, table.Len())
	for _, e := range table.Entries() {
		keys = append(keys, e.PluginID+" "+e.Route.Pattern)
	}
	sort.Strings(keys)
	return keys
}

func TestRegistry_PropertyBased_TableIsUnionOfRegisteredRoutes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := NewRegistry(&RegistryConfig{ConflictPolicy: PolicyQuarantine, CacheSize: 32}, nil, nil)
		model := map[string][]string{}

		ids := []string{"feed", "blog", "shop", "docs", "admin"}
		steps := rapid.IntRange(1, 40).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "id")
			register := rapid.Bool().Draw(t, "register")

			before := reg.CurrentTable()

			if register {
				n := rapid.IntRange(1, 5).Draw(t, "routes")
				patterns := uniquePatterns(id, n)
				desc, err := NewDescriptor(newTestPlugin(id, patterns...))
				require.NoError(t, err)

				_, err = reg.Register(desc)
				if _, exists := model[id]; exists {
					var dup ErrDuplicateID
					require.ErrorAs(t, err, &dup)
					require.Same(t, before, reg.CurrentTable())
				} else {
					require.NoError(t, err)
					model[id] = patterns
				}
				continue
			}

			_, err := reg.Unregister(id)
			if _, exists := model[id]; exists {
				require.NoError(t, err)
				delete(model, id)
			} else {
				var notFound ErrPluginNotFound
				require.ErrorAs(t, err, &notFound)
				require.Same(t, before, reg.CurrentTable())
			}
		}

		want := make([]string, 0)
		for id, patterns := range model {
			for _, p := range patterns {
				want = append(want, id+" "+p)
			}
		}
		sort.Strings(want)

		require.Equal(t, want, routeKeys(reg.CurrentTable()))
		require.Len(t, reg.Plugins(), len(model))
	})
}

func TestRegistry_PropertyBased_ResolutionIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := NewRegistry(&RegistryConfig{ConflictPolicy: PolicyReject}, nil, nil)
		for _, id := range []string{"feed", "blog", "shop"} {
			desc, err := NewDescriptor(newTestPlugin(id, uniquePatterns(id, 4)...))
			require.NoError(t, err)
			_, err = reg.Register(desc)
			require.NoError(t, err)
		}

		segments := rapid.SliceOfN(rapid.SampledFrom([]string{"feed", "blog", "r0", "r1", "r2", "x", "42"}), 0, 4).Draw(t, "segments")
		path := "/"
		for i, s := range segments {
			if i > 0 {
				path += "/"
			}
			path += s
		}

		table := reg.CurrentTable()
		first := routing.Resolve(table, path)
		for i := 0; i < 3; i++ {
			again := routing.Resolve(table, path)
			require.Equal(t, first, again)
		}
		require.Equal(t, first.Found, reg.Resolve(path).Found)
	})
}

func TestRegistry_PropertyBased_ConflictLeavesTableUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := rapid.SampledFrom([]ConflictPolicy{PolicyQuarantine, PolicyReject}).Draw(t, "policy")
		reg := NewRegistry(&RegistryConfig{ConflictPolicy: policy}, nil, nil)

		shared := rapid.SampledFrom([]string{"/feed", "/feed/:id", "/", "/assets/*path"}).Draw(t, "shared")
		_, err := reg.Register(mustDescriptorRapid(t, "first", shared))
		require.NoError(t, err)
		before := reg.CurrentTable()

		_, err = reg.Register(mustDescriptorRapid(t, "second", "/second", shared))
		var conflict ErrRouteConflict
		require.ErrorAs(t, err, &conflict)
		require.Same(t, before, reg.CurrentTable())
		require.False(t, reg.Resolve("/second").Found)
	})
}

func mustDescriptorRapid(t *rapid.T, id string, patterns ...string) *Descriptor {
	desc, err := NewDescriptor(newTestPlugin(id, patterns...))
	require.NoError(t, err)
	return desc
}
