// Package feedplugin provides the built-in plugin serving the feed index page.
package feedplugin

import (
	"fmt"
	"strconv"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

// ID is the registry id of the feed plugin.
const ID = "feed"

// View names the page a feed route renders. It is the Handler value of every
// feed route.
type View string

const (
	ViewIndex View = "feed.index"
	ViewList  View = "feed.list"
	ViewPage  View = "feed.page"
)

type feedPlugin struct{}

// New creates the feed plugin.
func New() plugin.Plugin {
	return &feedPlugin{}
}

var _ plugin.Plugin = (*feedPlugin)(nil)

func (p *feedPlugin) ID() string { return ID }

func (p *feedPlugin) Routes() []routing.Route {
	return []routing.Route{
		{Pattern: "/", Handler: ViewIndex},
		{Pattern: "/feed", Handler: ViewList},
		{Pattern: "/feed/page/:page", Handler: ViewPage},
	}
}

// PageNumber returns the page requested by a match on the paged feed route.
// Matches on the other feed routes are page 1.
func PageNumber(m routing.Match) (int, error) {
	if !m.Found || m.PluginID != ID {
		return 0, fmt.Errorf("match does not belong to the %s plugin", ID)
	}
	raw, ok := m.Param("page")
	if !ok {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid feed page %q: must be a positive integer", raw)
	}
	return page, nil
}
