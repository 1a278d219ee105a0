package plugin

import "github.com/ayusman/handlink/internal/action"

// Noop passes every action through unchanged.
type Noop struct {
	name string
}

// NewNoop creates a Noop plugin.
func NewNoop(name string) *Noop {
	if name == "" {
		name = "noop"
	}
	return &Noop{name: name}
}

// Name returns the plugin name.
func (n *Noop) Name() string { return n.name }

// Transform returns a unchanged.
func (n *Noop) Transform(a action.InputAction) (action.InputAction, error) { return a, nil }
