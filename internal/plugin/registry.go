package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexisbeaulieu97/routekit/internal/logger"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
)

// State describes whether a registered plugin contributes to the route table.
type State string

const (
	// StateActive plugins contribute their routes to the published table.
	StateActive State = "active"
	// StateQuarantined plugins caused a route conflict and are excluded from
	// every rebuild until they are registered again or removed.
	StateQuarantined State = "quarantined"
)

// Rebuild outcomes reported to the Observer.
const (
	RebuildSucceeded = "success"
	RebuildConflict  = "conflict"
	RebuildFailed    = "error"
)

// Observer receives registry events. Implementations must be safe for
// concurrent use; ObserveResolve is called from resolving goroutines.
type Observer interface {
	ObserveRebuild(outcome string, table *routing.Table, elapsed time.Duration)
	ObserveResolve(found, cached bool)
	ObservePlugins(active, quarantined int)
}

// PluginStatus is a read-only view of one registered plugin.
type PluginStatus struct {
	ID       string
	State    State
	Sequence uint64
	Routes   int
}

type record struct {
	desc  *Descriptor
	seq   uint64
	state State
}

// Registry owns the set of registered plugins and publishes an immutable route
// table after every change. Mutations are serialized; CurrentTable and Resolve
// never block on them.
type Registry struct {
	mu       sync.Mutex
	plugins  map[string]*record
	nextSeq  uint64
	version  uint64
	stale    bool
	table    atomic.Pointer[routing.Table]
	cache    *routing.ResolveCache
	observer Observer
	logger   *logger.Logger
	config   *RegistryConfig
}

// NewRegistry returns an empty registry publishing an empty table.
// The logger and observer are optional.
func NewRegistry(config *RegistryConfig, log *logger.Logger, observer Observer) *Registry {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ConflictPolicy == "" {
		config.ConflictPolicy = PolicyQuarantine
	}

	r := &Registry{
		plugins:  make(map[string]*record),
		observer: observer,
		logger:   log,
		config:   config,
	}

	if config.CacheSize > 0 {
		cache, err := routing.NewResolveCache(config.CacheSize)
		if err != nil {
			r.logWarn(fmt.Sprintf("resolution cache disabled: %v", err))
		} else {
			r.cache = cache
		}
	}

	r.table.Store(routing.EmptyTable(0))
	return r
}

// RegisterPlugin builds the plugin's descriptor off-registry and registers it.
// A plugin whose descriptor cannot be built is never registered.
func (r *Registry) RegisterPlugin(p Plugin) (*routing.Table, error) {
	desc, err := NewDescriptor(p)
	if err != nil {
		return nil, err
	}
	return r.Register(desc)
}

// Register adds a descriptor and returns the rebuilt table.
//
// It fails with ErrDuplicateID when the id is already active. Registering the
// id of a quarantined plugin replaces it and retries the build. When the build
// reports ErrRouteConflict the published table is left untouched; under
// PolicyQuarantine the descriptor stays registered as quarantined, under
// PolicyReject the registration is discarded.
func (r *Registry) Register(desc *Descriptor) (*routing.Table, error) {
	if desc == nil {
		return nil, ErrDescriptor{Err: fmt.Errorf("descriptor is nil")}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.register(desc)
}

func (r *Registry) register(desc *Descriptor) (*routing.Table, error) {
	id := desc.ID()
	existing, exists := r.plugins[id]
	if exists && existing.state == StateActive {
		return nil, ErrDuplicateID{ID: id}
	}

	rec := &record{desc: desc, seq: r.nextSeq + 1, state: StateActive}
	table, err := r.rebuild(func(otherID string) bool { return otherID != id }, rec)
	if err != nil {
		var conflict routing.ErrRouteConflict
		if errors.As(err, &conflict) && r.config.ConflictPolicy == PolicyQuarantine {
			rec.state = StateQuarantined
			r.plugins[id] = rec
			r.nextSeq = rec.seq
			r.reportPlugins()
			r.logger.WithPlugin(id).WithFields(map[string]any{"pattern": conflict.Pattern}).
				Warn(fmt.Sprintf("plugin '%s' quarantined after route conflict with '%s'", id, otherPlugin(conflict, id)))
		}
		return nil, err
	}

	r.plugins[id] = rec
	r.nextSeq = rec.seq
	r.publish(table)
	r.reportPlugins()

	r.logWith(map[string]any{
		"plugin":  id,
		"routes":  len(desc.routes),
		"version": table.Version(),
		"retry":   exists,
	}).Info("plugin registered")

	return table, nil
}

// Replace swaps the routes of a registered plugin in a single rebuild, keeping
// its registration order. When the rebuild fails the previous registration
// stays in place; a quarantined plugin stays quarantined with the new routes
// under PolicyQuarantine. An id that is not registered is registered.
func (r *Registry) Replace(desc *Descriptor) (*routing.Table, error) {
	if desc == nil {
		return nil, ErrDescriptor{Err: fmt.Errorf("descriptor is nil")}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := desc.ID()
	existing, exists := r.plugins[id]
	if !exists {
		return r.register(desc)
	}

	rec := &record{desc: desc, seq: existing.seq, state: StateActive}
	table, err := r.rebuild(func(otherID string) bool { return otherID != id }, rec)
	if err != nil {
		if existing.state == StateQuarantined && r.config.ConflictPolicy == PolicyQuarantine {
			existing.desc = desc
		}
		return nil, err
	}

	r.plugins[id] = rec
	r.publish(table)
	r.reportPlugins()

	r.logWith(map[string]any{
		"plugin":  id,
		"routes":  len(desc.routes),
		"version": table.Version(),
	}).Info("plugin replaced")

	return table, nil
}

// Unregister removes a plugin and returns the rebuilt table.
//
// The plugin is always removed. Removing the only override of a pattern can
// expose a conflict between the routes it replaced; the conflict is returned.
// Under PolicyQuarantine the later-registered plugins of each exposed conflict
// are quarantined and the repaired table is published. Under PolicyReject the
// last good table stays published and Stale reports true until a later change
// rebuilds successfully.
func (r *Registry) Unregister(id string) (*routing.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.plugins[id]
	if !exists {
		return nil, ErrPluginNotFound{ID: id}
	}
	delete(r.plugins, id)

	table, err := r.rebuild(func(string) bool { return true }, nil)
	if err != nil {
		var conflict routing.ErrRouteConflict
		if !errors.As(err, &conflict) || r.config.ConflictPolicy != PolicyQuarantine {
			r.stale = true
			r.reportPlugins()
			r.logger.WithPlugin(id).Warn("plugin unregistered, route table is stale until the conflict is resolved")
			return nil, err
		}
		if repaired, ok := r.quarantineSurvivors(conflict); ok {
			r.publish(repaired)
		} else {
			r.stale = true
		}
		r.reportPlugins()
		return nil, err
	}

	r.publish(table)
	r.reportPlugins()

	r.logWith(map[string]any{
		"plugin":  id,
		"state":   string(rec.state),
		"version": table.Version(),
	}).Info("plugin unregistered")

	return table, nil
}

// quarantineSurvivors quarantines the later-registered plugin of each conflict
// until the active set builds. It must be called with r.mu held.
func (r *Registry) quarantineSurvivors(conflict routing.ErrRouteConflict) (*routing.Table, bool) {
	for {
		rec, ok := r.plugins[conflict.IncomingPlugin]
		if !ok || rec.state != StateActive {
			return nil, false
		}
		rec.state = StateQuarantined
		r.logger.WithPlugin(conflict.IncomingPlugin).WithFields(map[string]any{"pattern": conflict.Pattern}).
			Warn(fmt.Sprintf("plugin '%s' quarantined after route conflict with '%s'", conflict.IncomingPlugin, conflict.ExistingPlugin))

		table, err := r.rebuild(func(string) bool { return true }, nil)
		if err == nil {
			return table, true
		}
		if !errors.As(err, &conflict) {
			return nil, false
		}
	}
}

// Stale reports whether the published table lags behind the registered
// plugins because the last rebuild failed.
func (r *Registry) Stale() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stale
}

// CurrentTable returns the latest successfully built table. It never blocks
// and never triggers a rebuild.
func (r *Registry) CurrentTable() *routing.Table {
	return r.table.Load()
}

// Resolve matches path against the current table. The returned Params map
// belongs to the caller.
func (r *Registry) Resolve(path string) routing.Match {
	m, cached := r.cache.Resolve(r.CurrentTable(), path)
	if r.observer != nil {
		r.observer.ObserveResolve(m.Found, cached)
	}
	return m
}

// Descriptor returns the registered descriptor and its state.
func (r *Registry) Descriptor(id string) (*Descriptor, State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.plugins[id]
	if !ok {
		return nil, "", ErrPluginNotFound{ID: id}
	}
	return rec.desc, rec.state, nil
}

// Plugins lists registered plugins in registration order.
func (r *Registry) Plugins() []PluginStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PluginStatus, 0, len(r.plugins))
	for id, rec := range r.plugins {
		out = append(out, PluginStatus{
			ID:       id,
			State:    rec.state,
			Sequence: rec.seq,
			Routes:   len(rec.desc.routes),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// Close removes every plugin and publishes an empty table.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plugins = make(map[string]*record)
	r.version++
	table := routing.EmptyTable(r.version)
	r.publish(table)
	if r.observer != nil {
		r.observer.ObserveRebuild(RebuildSucceeded, table, 0)
	}
	r.reportPlugins()
	r.logInfo("plugin registry closed")
}

// rebuild builds a table from the active plugins accepted by keep plus the
// optional extra record. It must be called with r.mu held. The new version is
// only consumed when the build succeeds.
func (r *Registry) rebuild(keep func(id string) bool, extra *record) (*routing.Table, error) {
	sources := make([]routing.Source, 0, len(r.plugins)+1)
	for id, rec := range r.plugins {
		if rec.state != StateActive || !keep(id) {
			continue
		}
		sources = append(sources, rec.desc.source(rec.seq))
	}
	if extra != nil {
		sources = append(sources, extra.desc.source(extra.seq))
	}

	start := time.Now()
	table, err := routing.Build(r.version+1, sources)
	elapsed := time.Since(start)

	if err != nil {
		outcome := RebuildFailed
		var conflict routing.ErrRouteConflict
		if errors.As(err, &conflict) {
			outcome = RebuildConflict
		}
		if r.observer != nil {
			r.observer.ObserveRebuild(outcome, nil, elapsed)
		}
		r.logError(err, "route table rebuild failed, keeping previous table")
		return nil, err
	}

	r.version = table.Version()
	if r.observer != nil {
		r.observer.ObserveRebuild(RebuildSucceeded, table, elapsed)
	}
	r.logWith(map[string]any{"version": table.Version(), "entries": table.Len()}).Debug("route table rebuilt")
	return table, nil
}

func (r *Registry) publish(table *routing.Table) {
	r.table.Store(table)
	r.stale = false
	r.cache.Purge()
}

func (r *Registry) reportPlugins() {
	if r.observer == nil {
		return
	}
	active, quarantined := 0, 0
	for _, rec := range r.plugins {
		if rec.state == StateActive {
			active++
		} else {
			quarantined++
		}
	}
	r.observer.ObservePlugins(active, quarantined)
}

func otherPlugin(conflict routing.ErrRouteConflict, id string) string {
	if conflict.ExistingPlugin == id {
		return conflict.IncomingPlugin
	}
	return conflict.ExistingPlugin
}

func (r *Registry) logWith(fields map[string]any) *logger.Logger {
	return r.logger.WithFields(fields)
}

func (r *Registry) logInfo(msg string) {
	if r.logger == nil {
		return
	}
	r.logger.Info(msg)
}

func (r *Registry) logWarn(msg string) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(msg)
}

func (r *Registry) logError(err error, msg string) {
	if r.logger == nil {
		return
	}
	r.logger.Error(err, msg)
}
