package plugin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

const pluginIDMaxLength = 64

var pluginIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Descriptor is the immutable identity and route declaration of one plugin.
type Descriptor struct {
	id     string
	routes []routing.Route
}

// NewDescriptor builds a descriptor from a plugin, calling Routes() once and
// compiling every pattern. Construction is all-or-nothing: any invalid route,
// or a panic inside the plugin, yields an error and no descriptor.
func NewDescriptor(p Plugin) (desc *Descriptor, err error) {
	if p == nil {
		return nil, ErrDescriptor{Err: fmt.Errorf("plugin is nil")}
	}

	var id string
	defer func() {
		if r := recover(); r != nil {
			desc = nil
			err = ErrDescriptor{ID: id, Err: fmt.Errorf("plugin panicked while declaring routes: %v", r)}
		}
	}()

	id = p.ID()
	return BuildDescriptor(id, p.Routes())
}

// BuildDescriptor validates an id and a route list and returns a descriptor
// owning private copies of them.
func BuildDescriptor(id string, routes []routing.Route) (*Descriptor, error) {
	if err := ValidateID(id); err != nil {
		return nil, ErrDescriptor{ID: id, Err: err}
	}
	if len(routes) == 0 {
		return nil, ErrDescriptor{ID: id, Err: fmt.Errorf("plugin declares no routes")}
	}

	compiled := make([]routing.Route, 0, len(routes))
	for _, r := range routes {
		c, err := r.Compile()
		if err != nil {
			return nil, ErrDescriptor{ID: id, Err: err}
		}
		compiled = append(compiled, c)
	}

	return &Descriptor{id: id, routes: compiled}, nil
}

// ValidateID ensures a plugin id is usable as a registry key.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("plugin id cannot be empty")
	}
	if len(id) > pluginIDMaxLength {
		return fmt.Errorf("plugin id %q is too long: maximum length is %d characters", id, pluginIDMaxLength)
	}
	if !pluginIDPattern.MatchString(id) {
		return fmt.Errorf("invalid plugin id %q: must match %s", id, pluginIDPattern.String())
	}
	return nil
}

// ID returns the plugin id.
func (d *Descriptor) ID() string {
	return d.id
}

// Routes returns a copy of the declared routes in declaration order.
func (d *Descriptor) Routes() []routing.Route {
	out := make([]routing.Route, len(d.routes))
	copy(out, d.routes)
	return out
}

func (d *Descriptor) source(seq uint64) routing.Source {
	return routing.Source{PluginID: d.id, Sequence: seq, Routes: d.routes}
}
