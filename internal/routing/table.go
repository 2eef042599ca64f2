package routing

import "sort"

// Entry is one route in a table together with the plugin that owns it.
type Entry struct {
	PluginID string
	Route    Route

	pattern  Pattern
	sequence uint64
	index    int
}

// Pattern returns the compiled pattern of the entry.
func (e Entry) Pattern() Pattern {
	return e.pattern
}

// Table is an immutable, ordered snapshot of all active routes. Entries are
// stored in resolution order, so the first matching entry wins.
type Table struct {
	version    uint64
	entries    []Entry
	overridden []Entry
}

// EmptyTable returns a table with no entries.
func EmptyTable(version uint64) *Table {
	return &Table{version: version}
}

// Version identifies the snapshot. Every successful rebuild produces a higher version.
func (t *Table) Version() uint64 {
	if t == nil {
		return 0
	}
	return t.version
}

// Len returns the number of routes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the ordered entries.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Overridden returns the routes that were replaced by an override route from
// another declaration of the same pattern.
func (t *Table) Overridden() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.overridden))
	copy(out, t.overridden)
	return out
}

// PluginIDs returns the sorted set of plugins that own at least one entry.
func (t *Table) PluginIDs() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, e := range t.entries {
		if _, ok := seen[e.PluginID]; ok {
			continue
		}
		seen[e.PluginID] = struct{}{}
		ids = append(ids, e.PluginID)
	}
	sort.Strings(ids)
	return ids
}

// RoutesFor returns the entries owned by the given plugin in table order.
func (t *Table) RoutesFor(pluginID string) []Entry {
	if t == nil {
		return nil
	}
	var out []Entry
	for _, e := range t.entries {
		if e.PluginID == pluginID {
			out = append(out, e)
		}
	}
	return out
}
