package connection

import (
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/callback"
)

// TrackingServiceState returns the last known service state.
func (m *Manager) TrackingServiceState() action.TrackingServiceState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.tracking
}

// HandPresenceState returns the last hand presence event, or PROCESSED if
// none has arrived.
func (m *Manager) HandPresenceState() action.HandPresenceState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.presence
}

// InteractionZoneState returns the last interaction zone event.
func (m *Manager) InteractionZoneState() action.InteractionZoneState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.zone
}

// OnTrackingServiceChange registers fn for tracking service transitions.
func (m *Manager) OnTrackingServiceChange(fn func(action.TrackingServiceState)) callback.Handle {
	return m.onTracking.Add(fn)
}

// OnHandPresenceChange registers fn for hand presence transitions.
func (m *Manager) OnHandPresenceChange(fn func(action.HandPresenceState)) callback.Handle {
	return m.onPresence.Add(fn)
}

// OnInteractionZoneChange registers fn for interaction zone transitions.
func (m *Manager) OnInteractionZoneChange(fn func(action.InteractionZoneState)) callback.Handle {
	return m.onZone.Add(fn)
}

func (m *Manager) handleServiceStatus(msg action.Message) {
	var status action.ServiceStatusContent
	if err := msg.Decode(&status); err != nil {
		m.log.WithError(err).Warn("Invalid service status")
		return
	}
	// A status may carry only version fields.
	if status.TrackingServiceState == "" {
		return
	}
	if !status.TrackingServiceState.Valid() {
		m.dropInvalid("tracking", string(status.TrackingServiceState))
		return
	}
	m.setTracking(status.TrackingServiceState)
}

func (m *Manager) handleHandPresence(msg action.Message) {
	var ev action.HandPresenceContent
	if err := msg.Decode(&ev); err != nil {
		m.log.WithError(err).Warn("Invalid hand presence event")
		return
	}
	if !ev.State.Valid() {
		m.dropInvalid("presence", string(ev.State))
		return
	}
	m.setPresence(ev.State)
}

func (m *Manager) handleInteractionZone(msg action.Message) {
	var ev action.InteractionZoneContent
	if err := msg.Decode(&ev); err != nil {
		m.log.WithError(err).Warn("Invalid interaction zone event")
		return
	}
	if !ev.State.Valid() {
		m.dropInvalid("zone", string(ev.State))
		return
	}
	m.setZone(ev.State)
}

// dropInvalid leaves the current state as it is.
func (m *Manager) dropInvalid(category, value string) {
	m.metrics.StateInvalid.WithLabelValues(category).Inc()
	m.log.WithFields(logrus.Fields{"category": category, "state": value}).Warn("Dropping state event with unknown value")
}

// The setters run on the loop. Listeners only hear about real changes.

func (m *Manager) setTracking(s action.TrackingServiceState) {
	m.stateMu.Lock()
	if m.tracking == s {
		m.stateMu.Unlock()
		return
	}
	m.tracking = s
	m.stateMu.Unlock()

	m.metrics.StateTransitions.WithLabelValues("tracking", string(s)).Inc()
	m.log.WithField("state", s).Info("Tracking service state changed")
	m.onTracking.Emit(s)
}

func (m *Manager) setPresence(s action.HandPresenceState) {
	m.stateMu.Lock()
	if m.presence == s {
		m.stateMu.Unlock()
		return
	}
	m.presence = s
	m.stateMu.Unlock()

	m.metrics.StateTransitions.WithLabelValues("presence", string(s)).Inc()
	m.log.WithField("state", s).Debug("Hand presence changed")
	m.onPresence.Emit(s)
}

func (m *Manager) setZone(s action.InteractionZoneState) {
	m.stateMu.Lock()
	if m.zone == s {
		m.stateMu.Unlock()
		return
	}
	m.zone = s
	m.stateMu.Unlock()

	m.metrics.StateTransitions.WithLabelValues("zone", string(s)).Inc()
	m.log.WithField("state", s).Debug("Interaction zone changed")
	m.onZone.Emit(s)
}
