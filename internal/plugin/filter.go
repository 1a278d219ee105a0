package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/handlink/internal/action"
)

// FilterConfig lists the actions a Filter suppresses.
type FilterConfig struct {
	InputTypes       []action.InputType       `json:"inputTypes,omitempty"`
	InteractionTypes []action.InteractionType `json:"interactionTypes,omitempty"`
	HandTypes        []action.HandType        `json:"handTypes,omitempty"`
}

// Filter suppresses actions matching any configured type.
type Filter struct {
	name         string
	inputs       map[action.InputType]bool
	interactions map[action.InteractionType]bool
	hands        map[action.HandType]bool
}

// NewFilter creates a Filter plugin.
func NewFilter(name string, cfg FilterConfig) *Filter {
	f := &Filter{
		name:         name,
		inputs:       make(map[action.InputType]bool),
		interactions: make(map[action.InteractionType]bool),
		hands:        make(map[action.HandType]bool),
	}
	for _, t := range cfg.InputTypes {
		f.inputs[t] = true
	}
	for _, t := range cfg.InteractionTypes {
		f.interactions[t] = true
	}
	for _, t := range cfg.HandTypes {
		f.hands[t] = true
	}
	return f
}

// Name returns the plugin name.
func (f *Filter) Name() string { return f.name }

// Transform implements Plugin.
func (f *Filter) Transform(a action.InputAction) (action.InputAction, error) {
	if f.inputs[a.InputType] || f.interactions[a.InteractionType] || f.hands[a.HandType] {
		return action.InputAction{}, ErrSuppressed
	}
	return a, nil
}

func newFilterFromManifest(m Manifest) (Plugin, error) {
	var cfg FilterConfig
	if len(m.Config) > 0 {
		if err := json.Unmarshal(m.Config, &cfg); err != nil {
			return nil, fmt.Errorf("filter %s: invalid config: %w", m.Name, err)
		}
	}
	return NewFilter(m.Name, cfg), nil
}
