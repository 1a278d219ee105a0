package plugin

import (
	"errors"
	"fmt"

	"github.com/ayusman/handlink/internal/action"
)

// Outcome is what happened to a sample that went through a chain.
type Outcome int

const (
	// Passed means the sample survived every plugin.
	Passed Outcome = iota
	// Suppressed means a plugin returned ErrSuppressed.
	Suppressed
	// Faulted means a plugin returned another error or panicked.
	Faulted
)

// Result describes what happened to one sample.
type Result struct {
	Action  action.InputAction
	Outcome Outcome
	// Plugin names the plugin that suppressed or faulted.
	Plugin string
	// Err is a *FaultError when Outcome is Faulted.
	Err error
}

// Chain is an ordered plugin sequence. It is replaced wholesale, never edited
// in place.
type Chain []Plugin

// Run threads a through each plugin in order, feeding every plugin the
// previous plugin's output. The first suppression or fault stops the chain.
func (c Chain) Run(a action.InputAction) Result {
	current := a
	for _, p := range c {
		next, err := safeTransform(p, current)
		if err == nil {
			current = next
			continue
		}
		if errors.Is(err, ErrSuppressed) {
			return Result{Outcome: Suppressed, Plugin: p.Name()}
		}
		return Result{Outcome: Faulted, Plugin: p.Name(), Err: &FaultError{Plugin: p.Name(), Err: err}}
	}
	return Result{Action: current, Outcome: Passed}
}

// Names returns the plugin names in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return names
}

func safeTransform(p Plugin, a action.InputAction) (out action.InputAction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Transform(a)
}
