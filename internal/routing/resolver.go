package routing

import "strings"

// Match is the outcome of resolving a path. Found is false for the NoMatch
// result, which is an expected outcome rather than an error.
type Match struct {
	Found    bool
	PluginID string
	Route    Route
	Params   map[string]string
}

// NoMatch is the zero Match.
var NoMatch = Match{}

// Param returns a named parameter captured by the match.
func (m Match) Param(name string) (string, bool) {
	v, ok := m.Params[name]
	return v, ok
}

// Resolve returns the first entry of the table whose pattern matches path.
// It never modifies the table and is safe for concurrent use.
func Resolve(table *Table, path string) Match {
	if table == nil || len(table.entries) == 0 {
		return NoMatch
	}

	parts, ok := splitPath(path)
	if !ok {
		return NoMatch
	}

	for _, e := range table.entries {
		params, matched := e.pattern.match(parts)
		if !matched {
			continue
		}
		return Match{
			Found:    true,
			PluginID: e.PluginID,
			Route:    e.Route,
			Params:   params,
		}
	}
	return NoMatch
}

// splitPath turns a request path into segments. The root path yields no
// segments; paths with empty segments are rejected.
func splitPath(path string) ([]string, bool) {
	if !strings.HasPrefix(path, "/") {
		return nil, false
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "/" {
		return nil, true
	}

	parts := strings.Split(path[1:], "/")
	for _, part := range parts {
		if part == "" {
			return nil, false
		}
	}
	return parts, true
}
