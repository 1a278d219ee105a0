package plugin

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ayusman/handlink/internal/action"
)

// SnapMode selects how the distance to a target is measured.
type SnapMode string

const (
	// SnapCenter measures to the target's centre.
	SnapCenter SnapMode = "center"
	// SnapEdge measures to the nearest point of the target's bounds; a cursor
	// inside the bounds is at distance zero.
	SnapEdge SnapMode = "edge"
)

// Target is an on-screen rectangle the cursor can snap to.
type Target struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Disabled bool    `json:"disabled,omitempty"`
}

// Center returns the middle of the target.
func (t Target) Center() action.Point {
	return action.Point{X: t.X + t.Width/2, Y: t.Y + t.Height/2}
}

// distanceTo returns how far p is from the target under mode.
func (t Target) distanceTo(p action.Point, mode SnapMode) float64 {
	if mode != SnapEdge {
		return p.Distance(t.Center())
	}
	nearest := action.Point{
		X: math.Max(t.X, math.Min(p.X, t.X+t.Width)),
		Y: math.Max(t.Y, math.Min(p.Y, t.Y+t.Height)),
	}
	return p.Distance(nearest)
}

// SnapConfig configures a Snap plugin.
type SnapConfig struct {
	Mode SnapMode `json:"mode"`
	// Distance is the threshold in pixels; targets further away are ignored.
	Distance float64 `json:"distance"`
	// Softness is the fraction of the remaining offset to the target centre the
	// cursor moves by, in [0, 1].
	Softness float64  `json:"softness"`
	Targets  []Target `json:"targets,omitempty"`
}

// Validate checks the configuration.
func (c SnapConfig) Validate() error {
	switch c.Mode {
	case SnapCenter, SnapEdge, "":
	default:
		return fmt.Errorf("snap: unknown mode %q", c.Mode)
	}
	if c.Distance < 0 {
		return fmt.Errorf("snap: distance must not be negative, got %v", c.Distance)
	}
	if c.Softness < 0 || c.Softness > 1 {
		return fmt.Errorf("snap: softness must be within [0, 1], got %v", c.Softness)
	}
	return nil
}

// Snap pulls the cursor toward the nearest eligible target within range.
type Snap struct {
	name string
	cfg  SnapConfig
}

// NewSnap creates a Snap plugin.
func NewSnap(name string, cfg SnapConfig) (*Snap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == "" {
		cfg.Mode = SnapCenter
	}
	targets := make([]Target, len(cfg.Targets))
	copy(targets, cfg.Targets)
	cfg.Targets = targets

	return &Snap{name: name, cfg: cfg}, nil
}

// Name returns the plugin name.
func (s *Snap) Name() string { return s.name }

// Config returns a copy of the configuration.
func (s *Snap) Config() SnapConfig {
	cfg := s.cfg
	cfg.Targets = append([]Target(nil), s.cfg.Targets...)
	return cfg
}

// WithTargets returns a new Snap with the same settings and a new target set.
// Use it with Session.SetPlugins when the layout changes.
func (s *Snap) WithTargets(targets []Target) *Snap {
	cfg := s.Config()
	cfg.Targets = append([]Target(nil), targets...)
	return &Snap{name: s.name, cfg: cfg}
}

// Transform implements Plugin.
func (s *Snap) Transform(a action.InputAction) (action.InputAction, error) {
	target, dist, ok := s.nearest(a.CursorPosition)
	if !ok || dist > s.cfg.Distance {
		return a, nil
	}
	return a.WithCursor(a.CursorPosition.Lerp(target.Center(), s.cfg.Softness)), nil
}

// nearest returns the closest enabled target. Ties keep the first target.
func (s *Snap) nearest(p action.Point) (Target, float64, bool) {
	var best Target
	bestDist := math.Inf(1)
	found := false

	for _, t := range s.cfg.Targets {
		if t.Disabled {
			continue
		}
		if d := t.distanceTo(p, s.cfg.Mode); d < bestDist {
			best, bestDist, found = t, d, true
		}
	}
	return best, bestDist, found
}

// newSnapFromManifest builds a Snap from a manifest's config block.
func newSnapFromManifest(m Manifest) (Plugin, error) {
	var cfg SnapConfig
	if len(m.Config) > 0 {
		if err := json.Unmarshal(m.Config, &cfg); err != nil {
			return nil, fmt.Errorf("snap %s: invalid config: %w", m.Name, err)
		}
	}
	return NewSnap(m.Name, cfg)
}
