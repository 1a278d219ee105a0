package action

// TrackingServiceState is the coarse availability of the tracking service.
type TrackingServiceState string

const (
	TrackingUnavailable TrackingServiceState = "UNAVAILABLE"
	TrackingNoCamera    TrackingServiceState = "NO_CAMERA"
	TrackingConnected   TrackingServiceState = "CONNECTED"
)

// Valid reports whether s is one of the defined tracking service states.
func (s TrackingServiceState) Valid() bool {
	switch s {
	case TrackingUnavailable, TrackingNoCamera, TrackingConnected:
		return true
	}
	return false
}

// HandPresenceState is the last hand presence event. Processed means no
// presence event has been seen yet.
type HandPresenceState string

const (
	HandFound        HandPresenceState = "HAND_FOUND"
	HandsLost        HandPresenceState = "HANDS_LOST"
	HandPresenceIdle HandPresenceState = "PROCESSED"
)

// Valid reports whether s is one of the defined hand presence states.
func (s HandPresenceState) Valid() bool {
	switch s {
	case HandFound, HandsLost, HandPresenceIdle:
		return true
	}
	return false
}

// InteractionZoneState tells whether the active hand is inside the interaction zone.
type InteractionZoneState string

const (
	HandEntered InteractionZoneState = "HAND_ENTERED"
	HandExited  InteractionZoneState = "HAND_EXITED"
)

// Valid reports whether s is one of the defined interaction zone states.
func (s InteractionZoneState) Valid() bool {
	return s == HandEntered || s == HandExited
}

// ServiceStatusContent is the content of SERVICE_STATUS and SERVICE_STATUS_RESPONSE.
type ServiceStatusContent struct {
	RequestID            string               `json:"requestID,omitempty"`
	TrackingServiceState TrackingServiceState `json:"trackingServiceState"`
	ConfigurationState   string               `json:"configurationState,omitempty"`
	ServiceVersion       string               `json:"serviceVersion,omitempty"`
	TrackingVersion      string               `json:"trackingVersion,omitempty"`
	CameraSerial         string               `json:"cameraSerial,omitempty"`
	CameraFirmware       string               `json:"cameraFirmwareVersion,omitempty"`
}

// HandPresenceContent is the content of HAND_PRESENCE_EVENT.
type HandPresenceContent struct {
	State HandPresenceState `json:"state"`
}

// InteractionZoneContent is the content of INTERACTION_ZONE_EVENT.
type InteractionZoneContent struct {
	State InteractionZoneState `json:"state"`
}

// ResponseContent is the generic status carried by *_RESPONSE messages.
type ResponseContent struct {
	RequestID       string `json:"requestID"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	OriginalRequest string `json:"originalRequest,omitempty"`
}

// OK reports whether the service accepted the request.
func (r ResponseContent) OK() bool {
	return r.Status == "Success"
}
