// Package watch keeps a plugin registry in sync with a directory of YAML
// plugin manifests.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/alexisbeaulieu97/routekit/internal/config"
	"github.com/alexisbeaulieu97/routekit/internal/logger"
	"github.com/alexisbeaulieu97/routekit/internal/plugin"
	"github.com/alexisbeaulieu97/routekit/internal/routing"
	routekiterrors "github.com/alexisbeaulieu97/routekit/pkg/errors"
)

// Registrar is the part of plugin.Registry the watcher drives.
type Registrar interface {
	Register(desc *plugin.Descriptor) (*routing.Table, error)
	Replace(desc *plugin.Descriptor) (*routing.Table, error)
	Unregister(id string) (*routing.Table, error)
	Descriptor(id string) (*plugin.Descriptor, plugin.State, error)
}

// Watcher maps manifest files to registered plugins.
type Watcher struct {
	dir    string
	reg    Registrar
	logger *logger.Logger

	mu     sync.Mutex
	owners map[string]string // manifest path -> plugin id
}

// New creates a watcher for dir. The logger is optional.
func New(dir string, reg Registrar, log *logger.Logger) *Watcher {
	return &Watcher{
		dir:    dir,
		reg:    reg,
		logger: log,
		owners: make(map[string]string),
	}
}

// Sync loads every manifest in the directory and registers it in file name
// order. A directory that cannot be read or a manifest that fails to parse
// aborts before anything is registered. Registration failures do not stop the
// remaining manifests; they are returned joined as PluginErrors.
func (w *Watcher) Sync(ctx context.Context) error {
	manifests, err := config.LoadManifestDir(ctx, w.dir)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, m := range manifests {
		if err := w.apply(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sources maps each plugin loaded by the watcher to its manifest path.
func (w *Watcher) Sources() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]string, len(w.owners))
	for path, id := range w.owners {
		out[id] = path
	}
	return out
}

// Run watches the directory until ctx is canceled. Created or written
// manifests are (re)registered and removed or renamed ones are unregistered.
// Failures are logged and never stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logWith(map[string]any{"dir": w.dir}).Info("watching plugin manifests")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := w.Handle(event); err != nil {
				w.logError(err, "manifest change not applied")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logError(err, "watcher error")
		}
	}
}

// Handle applies a single file system event.
func (w *Watcher) Handle(event fsnotify.Event) error {
	if !config.IsManifestFile(event.Name) {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return w.remove(event.Name)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		m, err := config.ParseManifest(event.Name)
		if err != nil {
			return err
		}
		return w.apply(m)
	default:
		return nil
	}
}

// apply registers m, replacing the plugin previously loaded from the same
// file. Must be called with w.mu held.
func (w *Watcher) apply(m *config.Manifest) error {
	desc, err := m.Descriptor()
	if err != nil {
		return routekiterrors.NewPluginSourceError(m.ID, m.Path, err)
	}

	id := desc.ID()

	if previous, ok := w.owners[m.Path]; ok && previous != id {
		if err := w.remove(m.Path); err != nil {
			w.logError(err, "previous plugin removed with a route conflict")
		}
	}

	if owner := w.ownerOf(id); owner != "" && owner != m.Path {
		return routekiterrors.NewPluginSourceError(id, m.Path, fmt.Errorf("plugin id already loaded from %s", filepath.Base(owner)))
	}

	owned := w.owners[m.Path] == id
	if owned {
		_, err = w.reg.Replace(desc)
	} else {
		_, err = w.reg.Register(desc)
	}
	if err != nil {
		var dup plugin.ErrDuplicateID
		if !owned && !errors.As(err, &dup) {
			// A quarantined registration still belongs to this file.
			if _, _, lookupErr := w.reg.Descriptor(id); lookupErr == nil {
				w.owners[m.Path] = id
			}
		}
		return routekiterrors.NewPluginSourceError(id, m.Path, err)
	}
	w.owners[m.Path] = id

	w.logger.WithPlugin(id).WithFields(map[string]any{"file": filepath.Base(m.Path)}).Debug("manifest applied")
	return nil
}

// remove unregisters the plugin loaded from path. Must be called with w.mu held.
func (w *Watcher) remove(path string) error {
	id, ok := w.owners[path]
	if !ok {
		return nil
	}
	delete(w.owners, path)

	// Unregister always removes the plugin; an error only reports a conflict
	// exposed among the remaining plugins.
	if _, err := w.reg.Unregister(id); err != nil {
		var notFound plugin.ErrPluginNotFound
		if errors.As(err, &notFound) {
			return nil
		}
		return routekiterrors.NewPluginSourceError(id, path, err)
	}
	return nil
}

func (w *Watcher) ownerOf(id string) string {
	for path, owner := range w.owners {
		if owner == id {
			return path
		}
	}
	return ""
}

func (w *Watcher) logWith(fields map[string]any) *logger.Logger {
	return w.logger.WithFields(fields)
}

func (w *Watcher) logError(err error, msg string) {
	if w.logger == nil {
		return
	}
	w.logger.Error(err, msg)
}
