package action

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeTable_Complete(t *testing.T) {
	seen := make(map[string]Code)
	for _, c := range AllCodes() {
		info := codes[c]
		assert.NotEmptyf(t, info.name, "code %d has no wire name", int(c))
		assert.NotEmptyf(t, info.family, "code %s has no family", c)
		assert.NotZerof(t, info.direction, "code %s has no direction", c)

		if prev, dup := seen[info.name]; dup {
			t.Errorf("wire name %q used by both %d and %d", info.name, int(prev), int(c))
		}
		seen[info.name] = c
	}
	assert.Len(t, seen, int(numCodes))
}

func TestParseCode(t *testing.T) {
	t.Run("round trips every code", func(t *testing.T) {
		for _, c := range AllCodes() {
			parsed, err := ParseCode(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := ParseCode("NOT_A_CODE")
		assert.True(t, errors.Is(err, ErrUnknownAction))
	})

	t.Run("invalid code stringer", func(t *testing.T) {
		assert.Equal(t, "Code(-1)", Code(-1).String())
		assert.False(t, numCodes.Valid())
	})
}

func TestCode_Properties(t *testing.T) {
	assert.True(t, CodeConfigurationState.Inbound())
	assert.False(t, CodeConfigurationState.Outbound())
	assert.True(t, CodeRequestConfigurationState.Outbound())
	assert.True(t, CodeAnalyticsSessionRequest.Inbound())
	assert.True(t, CodeAnalyticsSessionRequest.Outbound())

	assert.Equal(t, FamilyConfig, CodeConfigurationResponse.Family())
	assert.Equal(t, CodeConfigurationState.Family(), CodeRequestConfigurationState.Family())
	assert.True(t, CodeConfigurationState.Correlated())
	assert.False(t, CodeHandPresenceEvent.Correlated())
}

func TestStates_Valid(t *testing.T) {
	for _, s := range []TrackingServiceState{TrackingUnavailable, TrackingNoCamera, TrackingConnected} {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []HandPresenceState{HandFound, HandsLost, HandPresenceIdle} {
		assert.True(t, s.Valid(), s)
	}
	assert.True(t, HandEntered.Valid())
	assert.True(t, HandExited.Valid())

	assert.False(t, TrackingServiceState("").Valid())
	assert.False(t, TrackingServiceState("FOO").Valid())
	assert.False(t, HandPresenceState("").Valid())
	assert.False(t, HandPresenceState("hand_found").Valid())
	assert.False(t, InteractionZoneState("").Valid())
	assert.False(t, InteractionZoneState("BOGUS").Valid())
}

func TestDecode(t *testing.T) {
	t.Run("correlated message", func(t *testing.T) {
		msg, err := Decode([]byte(`{"action":"CONFIGURATION_STATE","content":{"requestID":"cfg-1","interaction":{}}}`))
		require.NoError(t, err)
		assert.Equal(t, CodeConfigurationState, msg.Code())
		assert.Equal(t, "cfg-1", msg.RequestID())
		assert.Equal(t, FamilyConfig, msg.Family())
		assert.Equal(t, "CONFIGURATION_STATE#cfg-1", msg.String())
		assert.False(t, msg.Received().IsZero())
	})

	t.Run("message without content", func(t *testing.T) {
		msg, err := Decode([]byte(`{"action":"HAND_DATA"}`))
		require.NoError(t, err)
		assert.Equal(t, "", msg.RequestID())
		assert.Error(t, msg.Decode(&struct{}{}))
	})

	malformed := map[string]string{
		"not json":        `{{`,
		"missing action":  `{"content":{}}`,
		"unknown action":  `{"action":"NOPE","content":{}}`,
		"content not obj": `{"action":"SERVICE_STATUS","content":[1,2]}`,
	}
	for name, frame := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(frame))
			assert.True(t, errors.Is(err, ErrMalformedFrame), "got %v", err)
		})
	}
}

func TestMessage_Immutable(t *testing.T) {
	content := json.RawMessage(`{"state":"HAND_FOUND"}`)
	msg := NewMessage(CodeHandPresenceEvent, "", content)

	content[2] = 'X'
	got := msg.Content()
	got[3] = 'Y'

	var presence HandPresenceContent
	require.NoError(t, msg.Decode(&presence))
	assert.Equal(t, HandFound, presence.State)
}

func TestEncode(t *testing.T) {
	frame, err := Encode(CodeRequestServiceStatus, map[string]string{"requestID": "r1"})
	require.NoError(t, err)

	msg, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, CodeRequestServiceStatus, msg.Code())
	assert.Equal(t, "r1", msg.RequestID())

	_, err = Encode(Code(99), nil)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestInputAction_Wire(t *testing.T) {
	in := InputAction{
		Timestamp:          42,
		InteractionType:    InteractionPush,
		HandType:           HandPrimary,
		Chirality:          ChiralityRight,
		InputType:          InputMove,
		CursorPosition:     Point{X: 10, Y: 20},
		DistanceFromScreen: 0.1,
		ProgressToClick:    0.5,
	}
	frame, err := EncodeInputAction(in)
	require.NoError(t, err)

	msg, err := Decode(frame)
	require.NoError(t, err)
	out, err := DecodeInputAction(msg)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	t.Run("rejects other codes", func(t *testing.T) {
		_, err := DecodeInputAction(NewMessage(CodeHandData, "", json.RawMessage(`{}`)))
		assert.Error(t, err)
	})

	t.Run("rejects short cursor", func(t *testing.T) {
		msg := NewMessage(CodeInputAction, "", json.RawMessage(`{"CursorPosition":[1]}`))
		_, err := DecodeInputAction(msg)
		assert.Error(t, err)
	})
}

func TestPoint(t *testing.T) {
	p := Point{X: 0, Y: 0}
	q := Point{X: 3, Y: 4}
	assert.InDelta(t, 5.0, p.Distance(q), 1e-9)
	assert.Equal(t, Point{X: 1.5, Y: 2}, p.Lerp(q, 0.5))
	assert.Equal(t, q, p.Lerp(q, 1))
}
