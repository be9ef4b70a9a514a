package style

import (
	"fmt"
	"strings"
	"sync"
)

// Stop is one color stop of a horizontal linear gradient.
type Stop struct {
	Offset  float64 `json:"offset"`
	Opacity float64 `json:"opacity"`
}

// Gradient fades an edge from strong at its source to faint at its target.
type Gradient struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Color  string  `json:"color"`
	Stops  [3]Stop `json:"stops"`
}

// Stop opacities relative to the edge opacity.
var stopProfile = [3]Stop{
	{Offset: 0, Opacity: 1.5},
	{Offset: 0.5, Opacity: 0.8},
	{Offset: 1, Opacity: 0.4},
}

// NewGradient builds the gradient of an edge with the given opacity. Stop
// opacities are capped at 1.
func NewGradient(id, source, target, color string, opacity float64) Gradient {
	g := Gradient{ID: id, Source: source, Target: target, Color: color}
	for i, s := range stopProfile {
		g.Stops[i] = Stop{Offset: s.Offset, Opacity: min(s.Opacity*opacity, 1)}
	}
	return g
}

// GradientCache memoizes gradients by (source, target). The first request
// for a pair defines its gradient; later requests reuse it unchanged.
// IDs are unique within a cache and assigned in request order.
//
// GradientCache is safe for concurrent use.
type GradientCache struct {
	mu    sync.Mutex
	byKey map[[2]string]Gradient
	order [][2]string
}

// NewGradientCache returns an empty cache.
func NewGradientCache() *GradientCache {
	return &GradientCache{byKey: make(map[[2]string]Gradient)}
}

// Get returns the gradient for (source, target), creating it on first use.
func (c *GradientCache) Get(source, target, color string, opacity float64) Gradient {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := [2]string{source, target}
	if g, ok := c.byKey[key]; ok {
		return g
	}
	id := fmt.Sprintf("gradient-%d-%s-%s", len(c.order), sanitizeID(source), sanitizeID(target))
	g := NewGradient(id, source, target, color, opacity)
	c.byKey[key] = g
	c.order = append(c.order, key)
	return g
}

// Len returns the number of memoized gradients.
func (c *GradientCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Lookup returns the gradients with the given IDs in the order the IDs are
// given, skipping unknown IDs and duplicates.
func (c *GradientCache) Lookup(ids []string) []Gradient {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID := make(map[string]Gradient, len(c.byKey))
	for _, g := range c.byKey {
		byID[g.ID] = g
	}
	seen := make(map[string]bool, len(ids))
	var out []Gradient
	for _, id := range ids {
		if g, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, g)
		}
	}
	return out
}

func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}
