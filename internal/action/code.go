// Package action defines the message taxonomy shared with the tracking service:
// action codes, the immutable Message envelope, input actions and the service states
// carried inside status messages.
package action

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned when a wire name does not map to any Code.
var ErrUnknownAction = errors.New("unknown action")

// Code identifies the semantic kind of a message.
type Code int

const (
	CodeInputAction Code = iota
	CodeConfigurationState
	CodeConfigurationResponse
	CodeSetConfigurationState
	CodeRequestConfigurationState
	CodeVersionHandshake
	CodeVersionHandshakeResponse
	CodeHandPresenceEvent
	CodeInteractionZoneEvent
	CodeRequestServiceStatus
	CodeServiceStatus
	CodeServiceStatusResponse
	CodeRequestConfigurationFile
	CodeConfigurationFileState
	CodeSetConfigurationFile
	CodeConfigurationFileResponse
	CodeQuickSetup
	CodeQuickSetupConfig
	CodeQuickSetupResponse
	CodeGetTrackingState
	CodeSetTrackingState
	CodeTrackingState
	CodeHandData
	CodeSetHandDataStreamState
	CodeHandDataStreamState
	CodeResetInteractionConfigFile
	CodeAnalyticsSessionRequest

	numCodes
)

// Direction says which side of the connection may send a code.
type Direction uint8

const (
	Inbound  Direction = 1 << iota // service -> client
	Outbound                       // client -> service
)

// Family groups codes that resolve against the same callbacks. A request and the
// response it produces share a family.
type Family string

const (
	FamilyInputAction     Family = "input-action"
	FamilyConfig          Family = "config"
	FamilyConfigFile      Family = "config-file"
	FamilyQuickSetup      Family = "quick-setup"
	FamilyHandshake       Family = "handshake"
	FamilyServiceStatus   Family = "service-status"
	FamilyHandPresence    Family = "hand-presence"
	FamilyInteractionZone Family = "interaction-zone"
	FamilyTrackingState   Family = "tracking-state"
	FamilyHandData        Family = "hand-data"
	FamilyHandDataStream  Family = "hand-data-stream"
	FamilyAnalytics       Family = "analytics"
)

type codeInfo struct {
	name       string
	direction  Direction
	family     Family
	correlated bool
}

// codes is indexed by Code; every Code below numCodes must have a row.
var codes = [numCodes]codeInfo{
	CodeInputAction:                {"INPUT_ACTION", Inbound, FamilyInputAction, false},
	CodeConfigurationState:         {"CONFIGURATION_STATE", Inbound, FamilyConfig, true},
	CodeConfigurationResponse:      {"CONFIGURATION_RESPONSE", Inbound, FamilyConfig, true},
	CodeSetConfigurationState:      {"SET_CONFIGURATION_STATE", Outbound, FamilyConfig, true},
	CodeRequestConfigurationState:  {"REQUEST_CONFIGURATION_STATE", Outbound, FamilyConfig, true},
	CodeVersionHandshake:           {"VERSION_HANDSHAKE", Outbound, FamilyHandshake, true},
	CodeVersionHandshakeResponse:   {"VERSION_HANDSHAKE_RESPONSE", Inbound, FamilyHandshake, true},
	CodeHandPresenceEvent:          {"HAND_PRESENCE_EVENT", Inbound, FamilyHandPresence, false},
	CodeInteractionZoneEvent:       {"INTERACTION_ZONE_EVENT", Inbound, FamilyInteractionZone, false},
	CodeRequestServiceStatus:       {"REQUEST_SERVICE_STATUS", Outbound, FamilyServiceStatus, true},
	CodeServiceStatus:              {"SERVICE_STATUS", Inbound, FamilyServiceStatus, false},
	CodeServiceStatusResponse:      {"SERVICE_STATUS_RESPONSE", Inbound, FamilyServiceStatus, true},
	CodeRequestConfigurationFile:   {"REQUEST_CONFIGURATION_FILE", Outbound, FamilyConfigFile, true},
	CodeConfigurationFileState:     {"CONFIGURATION_FILE_STATE", Inbound, FamilyConfigFile, true},
	CodeSetConfigurationFile:       {"SET_CONFIGURATION_FILE", Outbound, FamilyConfigFile, true},
	CodeConfigurationFileResponse:  {"CONFIGURATION_FILE_RESPONSE", Inbound, FamilyConfigFile, true},
	CodeQuickSetup:                 {"QUICK_SETUP", Outbound, FamilyQuickSetup, true},
	CodeQuickSetupConfig:           {"QUICK_SETUP_CONFIG", Inbound, FamilyQuickSetup, true},
	CodeQuickSetupResponse:         {"QUICK_SETUP_RESPONSE", Inbound, FamilyQuickSetup, true},
	CodeGetTrackingState:           {"GET_TRACKING_STATE", Outbound, FamilyTrackingState, true},
	CodeSetTrackingState:           {"SET_TRACKING_STATE", Outbound, FamilyTrackingState, true},
	CodeTrackingState:              {"TRACKING_STATE", Inbound, FamilyTrackingState, true},
	CodeHandData:                   {"HAND_DATA", Inbound, FamilyHandData, false},
	CodeSetHandDataStreamState:     {"SET_HAND_DATA_STREAM_STATE", Outbound, FamilyHandDataStream, true},
	CodeHandDataStreamState:        {"HAND_DATA_STREAM_STATE", Inbound, FamilyHandDataStream, true},
	CodeResetInteractionConfigFile: {"RESET_INTERACTION_CONFIG_FILE", Outbound, FamilyConfigFile, true},
	CodeAnalyticsSessionRequest:    {"ANALYTICS_SESSION_REQUEST", Inbound | Outbound, FamilyAnalytics, true},
}

var byName = func() map[string]Code {
	m := make(map[string]Code, numCodes)
	for c := Code(0); c < numCodes; c++ {
		m[codes[c].name] = c
	}
	return m
}()

// AllCodes returns every defined code in declaration order.
func AllCodes() []Code {
	all := make([]Code, 0, numCodes)
	for c := Code(0); c < numCodes; c++ {
		all = append(all, c)
	}
	return all
}

// ParseCode maps a wire name such as "CONFIGURATION_STATE" to its Code.
func ParseCode(name string) (Code, error) {
	c, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return c, nil
}

// Valid reports whether c is a defined code.
func (c Code) Valid() bool {
	return c >= 0 && c < numCodes
}

// String returns the wire name.
func (c Code) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return codes[c].name
}

// Family returns the callback family the code resolves into.
func (c Code) Family() Family {
	if !c.Valid() {
		return ""
	}
	return codes[c].family
}

// Direction returns which side may send the code.
func (c Code) Direction() Direction {
	if !c.Valid() {
		return 0
	}
	return codes[c].direction
}

// Inbound reports whether the service may send this code to a client.
func (c Code) Inbound() bool { return c.Direction()&Inbound != 0 }

// Outbound reports whether a client may send this code to the service.
func (c Code) Outbound() bool { return c.Direction()&Outbound != 0 }

// Correlated reports whether messages of this code carry a request id.
func (c Code) Correlated() bool {
	return c.Valid() && codes[c].correlated
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(c))
	}
	return []byte(codes[c].name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
