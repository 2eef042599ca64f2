package routing

import "fmt"

// ErrInvalidPattern is returned when a route pattern does not satisfy the pattern grammar.
type ErrInvalidPattern struct {
	Pattern string
	Reason  string
}

func (e ErrInvalidPattern) Error() string {
	return fmt.Sprintf(
		"invalid route pattern '%s': %s\nHint: patterns look like /feed, /feed/:id or /assets/*path",
		e.Pattern,
		e.Reason,
	)
}

// ErrRouteConflict is returned when two routes declare the same pattern and
// neither (or both) of them is marked as an override.
type ErrRouteConflict struct {
	Pattern        string
	ExistingPlugin string
	IncomingPlugin string
}

func (e ErrRouteConflict) Error() string {
	return fmt.Sprintf(
		"route conflict on pattern '%s' between plugin '%s' and plugin '%s'\nHint: mark exactly one of the routes with override, or change one pattern",
		e.Pattern,
		e.ExistingPlugin,
		e.IncomingPlugin,
	)
}
