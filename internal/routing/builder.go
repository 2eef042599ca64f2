package routing

import (
	"sort"
	"strings"
)

// Source is the set of routes one plugin contributes to a build.
type Source struct {
	PluginID string
	// Sequence is the registration order of the plugin; lower registered earlier.
	Sequence uint64
	Routes   []Route
}

// Build merges all sources into a new table with the given version.
//
// Entries are ordered by pattern specificity, then priority (higher first),
// then registration sequence, plugin id and declaration index. Two routes with
// the same normalized pattern are only accepted when exactly one of them is an
// override; the other is moved to the table's overridden list. Any other
// duplicate aborts the build with ErrRouteConflict.
func Build(version uint64, sources []Source) (*Table, error) {
	entries := make([]Entry, 0, countRoutes(sources))
	for _, src := range sources {
		for i, route := range src.Routes {
			p, err := route.pattern()
			if err != nil {
				return nil, err
			}
			if route.compiled == nil {
				route.compiled = &p
			}
			entries = append(entries, Entry{
				PluginID: src.PluginID,
				Route:    route,
				pattern:  p,
				sequence: src.Sequence,
				index:    i,
			})
		}
	}

	sortEntries(entries)

	kept, overridden, err := resolveDuplicates(entries)
	if err != nil {
		return nil, err
	}

	return &Table{version: version, entries: kept, overridden: overridden}, nil
}

func countRoutes(sources []Source) int {
	total := 0
	for _, src := range sources {
		total += len(src.Routes)
	}
	return total
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := compareSpecificity(a.pattern, b.pattern); c != 0 {
			return c < 0
		}
		if a.Route.Priority != b.Route.Priority {
			return a.Route.Priority > b.Route.Priority
		}
		return registeredBefore(a, b)
	})
}

func registeredBefore(a, b Entry) bool {
	if a.sequence != b.sequence {
		return a.sequence < b.sequence
	}
	if c := strings.Compare(a.PluginID, b.PluginID); c != 0 {
		return c < 0
	}
	return a.index < b.index
}

// resolveDuplicates walks the sorted entries and applies the override rule to
// every group of identical patterns. Sorted order keeps the outcome deterministic.
func resolveDuplicates(entries []Entry) ([]Entry, []Entry, error) {
	groups := make(map[string][]int, len(entries))
	order := make([]string, 0, len(entries))
	for i, e := range entries {
		key := e.pattern.String()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	drop := make(map[int]struct{})
	for _, key := range order {
		idx := groups[key]
		if len(idx) < 2 {
			continue
		}

		members := make([]Entry, len(idx))
		for i, n := range idx {
			members[i] = entries[n]
		}
		sort.SliceStable(members, func(i, j int) bool {
			return registeredBefore(members[i], members[j])
		})

		var overrides []Entry
		for _, m := range members {
			if m.Route.Override {
				overrides = append(overrides, m)
			}
		}

		switch len(overrides) {
		case 0:
			return nil, nil, ErrRouteConflict{
				Pattern:        members[0].pattern.String(),
				ExistingPlugin: members[0].PluginID,
				IncomingPlugin: members[1].PluginID,
			}
		case 1:
			for _, n := range idx {
				if !entries[n].Route.Override {
					drop[n] = struct{}{}
				}
			}
		default:
			return nil, nil, ErrRouteConflict{
				Pattern:        overrides[0].pattern.String(),
				ExistingPlugin: overrides[0].PluginID,
				IncomingPlugin: overrides[1].PluginID,
			}
		}
	}

	if len(drop) == 0 {
		return entries, nil, nil
	}

	kept := make([]Entry, 0, len(entries)-len(drop))
	overridden := make([]Entry, 0, len(drop))
	for i, e := range entries {
		if _, ok := drop[i]; ok {
			overridden = append(overridden, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, overridden, nil
}
