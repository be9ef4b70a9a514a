package io

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/alluvial/pkg/dag"
	apperr "github.com/matzehuels/alluvial/pkg/errors"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
)

type rulesFile struct {
	FillFactor      *float64 `toml:"fill_factor"`
	NodeWidth       *float64 `toml:"node_width"`
	MinLayerSpacing *float64 `toml:"min_layer_spacing"`
	Gap             *float64 `toml:"gap"`
	CurveFactor     *float64 `toml:"curve_factor"`
	SkipCurveFactor *float64 `toml:"skip_curve_factor"`
	Bow             *float64 `toml:"bow"`
	LabelY          *float64 `toml:"label_y"`
	OverlapPenalty  *float64 `toml:"overlap_penalty"`
	Jitter          *float64 `toml:"jitter"`
	MinStrokeWidth  *float64 `toml:"min_stroke_width"`
	LinkColor       *string  `toml:"link_color"`

	Layers []layerEntry         `toml:"layer"`
	Nodes  []nodeEntry          `toml:"node"`
	Pairs  []pairEntry          `toml:"pair"`
	Tiers  map[string]tierEntry `toml:"tiers"`
}

type layerEntry struct {
	Index         int      `toml:"index"`
	HeightScale   float64  `toml:"height_scale"`
	MinNodeHeight float64  `toml:"min_node_height"`
	Gap           *float64 `toml:"gap"`
	BandScale     float64  `toml:"band_scale"`
	Anchor        string   `toml:"anchor"`
	NodeWidth     float64  `toml:"node_width"`
}

type nodeEntry struct {
	ID          string   `toml:"id"`
	HeightScale float64  `toml:"height_scale"`
	Nudge       *float64 `toml:"nudge"`
}

type pairEntry struct {
	Source           int     `toml:"source"`
	Target           int     `toml:"target"`
	WidthScale       float64 `toml:"width_scale"`
	TargetWidthScale float64 `toml:"target_width_scale"`
	AnchorSource     bool    `toml:"anchor_source"`
	Tier             string  `toml:"tier"`
	CurveFactor      float64 `toml:"curve_factor"`
}

type tierEntry struct {
	BaseOpacity *float64 `toml:"base_opacity"`
	Floor       *float64 `toml:"floor"`
	StrokeWidth *float64 `toml:"stroke_width"`
}

// ReadRules decodes TOML shaping rules from r on top of
// [layout.DefaultRules]. Unknown keys and inconsistent values are errors.
func ReadRules(r io.Reader) (layout.Rules, error) {
	var f rulesFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return layout.Rules{}, apperr.Wrap(apperr.ErrCodeInvalidRules, err, "decode rules")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return layout.Rules{}, apperr.New(apperr.ErrCodeInvalidRules, "unknown rule keys: %s", strings.Join(keys, ", "))
	}
	rules, err := f.toRules()
	if err == nil {
		err = rules.Validate()
	}
	if err != nil {
		return layout.Rules{}, apperr.Wrap(apperr.ErrCodeInvalidRules, err, "invalid rules")
	}
	return rules, nil
}

// ReadRulesFile reads TOML shaping rules from path.
func ReadRulesFile(path string) (layout.Rules, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return layout.Rules{}, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "rules file %s not found", path)
	}
	if err != nil {
		return layout.Rules{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadRules(file)
}

func (f rulesFile) toRules() (layout.Rules, error) {
	r := layout.DefaultRules()
	setIf(&r.FillFactor, f.FillFactor)
	setIf(&r.NodeWidth, f.NodeWidth)
	setIf(&r.MinLayerSpacing, f.MinLayerSpacing)
	setIf(&r.Gap, f.Gap)
	setIf(&r.CurveFactor, f.CurveFactor)
	setIf(&r.SkipCurveFactor, f.SkipCurveFactor)
	setIf(&r.Bow, f.Bow)
	setIf(&r.LabelY, f.LabelY)
	setIf(&r.OverlapPenalty, f.OverlapPenalty)
	setIf(&r.Jitter, f.Jitter)
	setIf(&r.MinStrokeWidth, f.MinStrokeWidth)
	setIf(&r.LinkColor, f.LinkColor)

	for _, l := range f.Layers {
		if _, dup := r.Layers[l.Index]; dup {
			return r, fmt.Errorf("layer %d: defined twice", l.Index)
		}
		r.Layers[l.Index] = layout.LayerRule{
			HeightScale:   l.HeightScale,
			MinNodeHeight: l.MinNodeHeight,
			Gap:           l.Gap,
			BandScale:     l.BandScale,
			Anchor:        layout.Anchor(l.Anchor),
			NodeWidth:     l.NodeWidth,
		}
	}
	for _, n := range f.Nodes {
		if n.ID == "" {
			return r, errors.New("node rule without id")
		}
		if _, dup := r.Nodes[n.ID]; dup {
			return r, fmt.Errorf("node %s: defined twice", n.ID)
		}
		r.Nodes[n.ID] = layout.NodeRule{HeightScale: n.HeightScale, Nudge: n.Nudge}
	}
	for name, t := range f.Tiers {
		ts := r.Tiers[layout.Tier(name)]
		setIf(&ts.BaseOpacity, t.BaseOpacity)
		setIf(&ts.Floor, t.Floor)
		setIf(&ts.StrokeWidth, t.StrokeWidth)
		r.Tiers[layout.Tier(name)] = ts
	}
	for _, p := range f.Pairs {
		key := dag.Pair{Source: p.Source, Target: p.Target}
		if _, dup := r.Pairs[key]; dup {
			return r, fmt.Errorf("pair %d->%d: defined twice", p.Source, p.Target)
		}
		r.Pairs[key] = layout.PairRule{
			WidthScale:       p.WidthScale,
			TargetWidthScale: p.TargetWidthScale,
			AnchorSource:     p.AnchorSource,
			Tier:             layout.Tier(p.Tier),
			CurveFactor:      p.CurveFactor,
		}
	}
	return r, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
