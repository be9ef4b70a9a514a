package store

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
)

// Keyer builds store keys for diagrams and their override records.
type Keyer interface {
	// DiagramKey identifies a diagram by its title and node set. Node
	// order does not matter.
	DiagramKey(title string, nodeIDs []string) string
	// RecordKey is the store key of one override record of a diagram.
	RecordKey(diagram string, record override.Record) string
}

// DefaultKeyer produces keys like "overrides:<slug>-<fingerprint>:<record>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

const (
	maxSlugLen     = 40
	fingerprintLen = 16
)

// DiagramKey combines a readable slug of the title with a fingerprint of
// the sorted node IDs, so two diagrams sharing a title but not a node set
// never share overrides.
func (DefaultKeyer) DiagramKey(title string, nodeIDs []string) string {
	ids := slices.Sorted(slices.Values(nodeIDs))
	fp := Hash(ids...)[:fingerprintLen]
	return Slug(title) + "-" + fp
}

// Hash returns the hex SHA-256 of parts joined by NUL bytes, so
// Hash("ab", "c") and Hash("a", "bc") differ.
func Hash(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RecordKey returns "overrides:<diagram>:<record>".
func (DefaultKeyer) RecordKey(diagram string, record override.Record) string {
	return "overrides:" + diagram + ":" + string(record)
}

// Slug lowercases s and replaces runs of anything other than letters and
// digits with a single dash. An empty result becomes "diagram".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if runes := []rune(out); len(runes) > maxSlugLen {
		out = strings.TrimRight(string(runes[:maxSlugLen]), "-")
	}
	if out == "" {
		return "diagram"
	}
	return out
}
