package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	routekiterrors "github.com/alexisbeaulieu97/routekit/pkg/errors"
)

// IsManifestFile reports whether name has a manifest extension.
func IsManifestFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LoadManifestDir parses every manifest in dir concurrently. Results are
// sorted by file name so registration order is stable. The first parse or
// validation failure cancels the remaining work and is returned. Two files
// declaring the same plugin id are rejected.
func LoadManifestDir(ctx context.Context, dir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, routekiterrors.NewParseError(dir, 0, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsManifestFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	manifests := make([]*Manifest, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := ParseManifest(path)
			if err != nil {
				return err
			}
			manifests[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owners := make(map[string]string, len(manifests))
	for _, m := range manifests {
		if first, ok := owners[m.ID]; ok {
			return nil, routekiterrors.NewValidationError(
				"id",
				fmt.Sprintf("plugin id %q declared by both %s and %s", m.ID, filepath.Base(first), filepath.Base(m.Path)),
				nil,
			)
		}
		owners[m.ID] = m.Path
	}

	return manifests, nil
}
