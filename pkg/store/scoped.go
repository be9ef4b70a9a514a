package store

import "github.com/matzehuels/alluvial/pkg/render/alluvial/override"

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful for the API server where different workspaces share one
// backend but need separate override namespaces.
//
// Example usage:
//
//	// Workspace-specific keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ws:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all record keys. Diagram keys are not
// prefixed, so the same diagram has the same identity in every scope.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DiagramKey delegates to the wrapped keyer.
func (k *ScopedKeyer) DiagramKey(title string, nodeIDs []string) string {
	return k.inner.DiagramKey(title, nodeIDs)
}

// RecordKey generates a prefixed record key.
func (k *ScopedKeyer) RecordKey(diagram string, record override.Record) string {
	return k.prefix + k.inner.RecordKey(diagram, record)
}
