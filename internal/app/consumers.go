package app

import (
	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/callback"
	"github.com/ayusman/handlink/internal/hand"
	"github.com/ayusman/handlink/internal/plugin"
)

// OnConfigState registers fn for every configuration state and response.
func (s *Session) OnConfigState(fn func(action.Message)) callback.Handle {
	return s.registry.Register(action.FamilyConfig, "", fn)
}

// OnHandFound registers fn for hand presence changing to HAND_FOUND.
func (s *Session) OnHandFound(fn func()) callback.Handle {
	return s.conn.OnHandPresenceChange(func(st action.HandPresenceState) {
		if st == action.HandFound {
			fn()
		}
	})
}

// OnHandsLost registers fn for hand presence changing to HANDS_LOST.
func (s *Session) OnHandsLost(fn func()) callback.Handle {
	return s.conn.OnHandPresenceChange(func(st action.HandPresenceState) {
		if st == action.HandsLost {
			fn()
		}
	})
}

// OnInteractionZoneChange registers fn for interaction zone transitions.
func (s *Session) OnInteractionZoneChange(fn func(action.InteractionZoneState)) callback.Handle {
	return s.conn.OnInteractionZoneChange(fn)
}

// OnTrackingServiceChange registers fn for tracking service transitions.
func (s *Session) OnTrackingServiceChange(fn func(action.TrackingServiceState)) callback.Handle {
	return s.conn.OnTrackingServiceChange(fn)
}

// OnInputAction registers fn for input actions that passed the plugin chain.
func (s *Session) OnInputAction(fn func(action.InputAction)) callback.Handle {
	return s.pipeline.OnInputAction(fn)
}

// OnHandData registers fn for decoded HAND_DATA frames.
func (s *Session) OnHandData(fn func(hand.Frame)) callback.Handle {
	return s.frames.Add(fn)
}

// OnPluginFault registers fn for plugin faults.
func (s *Session) OnPluginFault(fn func(*plugin.FaultError)) callback.Handle {
	return s.faults.Add(fn)
}

// SetPlugins replaces the plugin sequence.
func (s *Session) SetPlugins(plugins []plugin.Plugin) {
	s.pipeline.SetPlugins(plugins)
}

// LoadPlugins discovers the manifests in the plugin directory and installs
// the chain they describe.
func (s *Session) LoadPlugins() error {
	if err := s.pluginMgr.Discover(); err != nil {
		return err
	}
	chain, err := s.pluginMgr.Build()
	if err != nil {
		return err
	}
	s.pipeline.SetPlugins(chain)
	return nil
}

// SetEnabled turns input action delivery on or off.
func (s *Session) SetEnabled(enabled bool) {
	s.pipeline.SetEnabled(enabled)
}

// IsEnabled reports whether input actions are delivered.
func (s *Session) IsEnabled() bool {
	return s.pipeline.IsEnabled()
}

// TrackingServiceState returns the last known service state.
func (s *Session) TrackingServiceState() action.TrackingServiceState {
	return s.conn.TrackingServiceState()
}

// HandPresenceState returns the last hand presence state.
func (s *Session) HandPresenceState() action.HandPresenceState {
	return s.conn.HandPresenceState()
}

// InteractionZoneState returns the last interaction zone state.
func (s *Session) InteractionZoneState() action.InteractionZoneState {
	return s.conn.InteractionZoneState()
}

// Plugins returns the names of the installed plugins in chain order.
func (s *Session) Plugins() []string {
	return s.pipeline.Plugins()
}
