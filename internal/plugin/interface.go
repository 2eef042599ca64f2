package plugin

import "github.com/alexisbeaulieu97/routekit/internal/routing"

// Plugin is the capability contract every route-contributing plugin satisfies.
//
// Implementations should:
//   - return a stable, unique identifier from ID()
//   - return a finite, ordered list of routes from Routes()
//
// The registry calls Routes() exactly once, when the descriptor is built, and
// never calls into the plugin's page handling afterwards.
type Plugin interface {
	ID() string
	Routes() []routing.Route
}
