package plugin

import (
	"fmt"

	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

// ErrDuplicateID is returned when a plugin id is already registered.
type ErrDuplicateID struct {
	ID string
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("plugin '%s' already registered\nHint: unregister the existing plugin first or choose a different id", e.ID)
}

// ErrPluginNotFound is returned when the requested plugin is not registered.
type ErrPluginNotFound struct {
	ID string
}

func (e ErrPluginNotFound) Error() string {
	return fmt.Sprintf("plugin '%s' not found in registry\nHint: ensure the plugin is registered before removing it", e.ID)
}

// ErrDescriptor is returned when a plugin cannot produce a valid descriptor.
// The plugin is never registered in that case.
type ErrDescriptor struct {
	ID  string
	Err error
}

func (e ErrDescriptor) Error() string {
	id := e.ID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("plugin '%s' descriptor invalid: %v", id, e.Err)
}

// Unwrap exposes the underlying construction error.
func (e ErrDescriptor) Unwrap() error {
	return e.Err
}

// Errors raised while building route tables, re-exported for registry callers.
type (
	// ErrRouteConflict is returned when a rebuild finds two routes with the same pattern.
	ErrRouteConflict = routing.ErrRouteConflict
	// ErrInvalidPattern is returned when a declared pattern fails to compile.
	ErrInvalidPattern = routing.ErrInvalidPattern
)
