package plugin

import (
	"fmt"
	"strings"
)

// ConflictPolicy controls what the registry keeps when a registration causes a
// route conflict.
type ConflictPolicy string

const (
	// PolicyQuarantine keeps the conflicting plugin registered but excluded from
	// the route table until it is registered again or removed.
	PolicyQuarantine ConflictPolicy = "quarantine"
	// PolicyReject rolls the conflicting registration back entirely.
	PolicyReject ConflictPolicy = "reject"
)

// ParseConflictPolicy converts a configuration string into a ConflictPolicy.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyQuarantine:
		return PolicyQuarantine, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown conflict policy '%s' (expected quarantine or reject)", s)
	}
}

// RegistryConfig configures registry conflict handling and resolution caching.
type RegistryConfig struct {
	ConflictPolicy ConflictPolicy
	// CacheSize bounds the resolution cache. Zero disables caching.
	CacheSize int
}

// DefaultConfig returns the registry defaults: conflicting plugins are
// quarantined and resolutions are cached.
func DefaultConfig() *RegistryConfig {
	return &RegistryConfig{
		ConflictPolicy: PolicyQuarantine,
		CacheSize:      1024,
	}
}
