package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	routekiterrors "github.com/alexisbeaulieu97/routekit/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseManifest loads a plugin manifest from disk and validates it.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, routekiterrors.NewParseError(path, 0, err)
	}
	return ParseManifestBytes(path, data)
}

// ParseManifestBytes decodes and validates manifest contents. path is only
// used for error reporting.
func ParseManifestBytes(path string, data []byte) (*Manifest, error) {
	var m Manifest
	if err := decodeStrict(data, &m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, routekiterrors.NewParseError(path, 0, fmt.Errorf("manifest is empty"))
		}
		return nil, routekiterrors.NewParseError(path, extractLine(err), err)
	}
	m.Path = path

	if err := ValidateManifest(&m); err != nil {
		return nil, routekiterrors.WithPath(err, path)
	}

	return &m, nil
}

// ParseConfig loads a host configuration file, layering it over DefaultConfig.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, routekiterrors.NewParseError(path, 0, err)
	}

	cfg := DefaultConfig()
	if err := decodeStrict(data, cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, routekiterrors.NewParseError(path, extractLine(err), err)
	}
	cfg.Path = path

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig parses path when it names an existing file. A missing file
// yields DefaultConfig unless required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return DefaultConfig(), nil
		}
		return nil, routekiterrors.NewParseError(path, 0, err)
	}
	return ParseConfig(path)
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
