package app

import (
	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/callback"
)

// RequestConfigState asks for the active configuration. fn receives the
// CONFIGURATION_STATE reply.
func (s *Session) RequestConfigState(fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeRequestConfigurationState, nil, fn)
}

// SetConfigState applies a configuration change. content is the interaction
// and physical configuration object the service expects.
func (s *Session) SetConfigState(content any, fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeSetConfigurationState, content, fn)
}

// RequestServiceStatus asks for the service status. The reply also updates
// the tracking service state.
func (s *Session) RequestServiceStatus(fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeRequestServiceStatus, nil, fn)
}

// RequestConfigFile asks for the configuration stored on disk by the service.
func (s *Session) RequestConfigFile(fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeRequestConfigurationFile, nil, fn)
}

// SetConfigFile writes the service's configuration file.
func (s *Session) SetConfigFile(content any, fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeSetConfigurationFile, content, fn)
}

// ResetConfigFile restores the service's default interaction configuration.
func (s *Session) ResetConfigFile(fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeResetInteractionConfigFile, nil, fn)
}

// QuickSetup sends one quick setup step. position is "Top" or "Bottom".
func (s *Session) QuickSetup(position string, fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeQuickSetup, map[string]string{"position": position}, fn)
}

// RequestTrackingState asks for the tracking mode settings.
func (s *Session) RequestTrackingState(fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeGetTrackingState, nil, fn)
}

// SetTrackingState changes the tracking mode settings.
func (s *Session) SetTrackingState(content any, fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeSetTrackingState, content, fn)
}

// SetHandDataStream turns the HAND_DATA stream on or off.
func (s *Session) SetHandDataStream(enabled bool, fn callback.Func) (callback.Handle, error) {
	return s.conn.Request(action.CodeSetHandDataStreamState, map[string]bool{"enabled": enabled}, fn)
}
