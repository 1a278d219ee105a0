// Package plugin provides the input-action transforms applied before delivery,
// and discovery of their manifests on disk.
package plugin

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/handlink/internal/action"
)

// ErrSuppressed is returned by Transform to drop the sample. The rest of the
// chain is skipped and no consumer sees it.
var ErrSuppressed = errors.New("input action suppressed")

// Plugin transforms one input action. Implementations must be deterministic
// for a given configuration and must not block.
type Plugin interface {
	Name() string
	Transform(a action.InputAction) (action.InputAction, error)
}

// Func adapts a function to Plugin.
type Func struct {
	ID string
	Fn func(action.InputAction) (action.InputAction, error)
}

// Name returns f.ID.
func (f Func) Name() string { return f.ID }

// Transform calls f.Fn.
func (f Func) Transform(a action.InputAction) (action.InputAction, error) { return f.Fn(a) }

// FaultError reports a plugin that failed or panicked. The sample it was
// processing is dropped.
type FaultError struct {
	Plugin string
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("plugin %s: %v", e.Plugin, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

// Manifest describes a configured plugin found on disk.
type Manifest struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Order       int             `json:"order"`
	Disabled    bool            `json:"disabled,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Discovered is a manifest together with where it was found.
type Discovered struct {
	Manifest Manifest
	Path     string
}
