package action

import (
	"fmt"
	"math"
)

// InteractionType is the interaction that produced an input action.
type InteractionType string

const (
	InteractionGrab          InteractionType = "GRAB"
	InteractionHover         InteractionType = "HOVER"
	InteractionPush          InteractionType = "PUSH"
	InteractionTouchPlane    InteractionType = "TOUCHPLANE"
	InteractionVelocitySwipe InteractionType = "VELOCITYSWIPE"
)

// HandType distinguishes the primary tracked hand from the secondary one.
type HandType string

const (
	HandPrimary   HandType = "PRIMARY"
	HandSecondary HandType = "SECONDARY"
)

// Chirality is the physical handedness.
type Chirality string

const (
	ChiralityLeft  Chirality = "LEFT"
	ChiralityRight Chirality = "RIGHT"
)

// InputType is the phase of a cursor interaction.
type InputType string

const (
	InputNone   InputType = "NONE"
	InputCancel InputType = "CANCEL"
	InputDown   InputType = "DOWN"
	InputMove   InputType = "MOVE"
	InputUp     InputType = "UP"
)

// Point is a screen position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp moves p toward q by fraction t (0 keeps p, 1 lands on q).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// InputAction is one processed hand/cursor sample. It is passed by value; a
// plugin that changes it returns a new value.
type InputAction struct {
	Timestamp          int64           `json:"timestamp"` // microseconds
	InteractionType    InteractionType `json:"interactionType"`
	HandType           HandType        `json:"handType"`
	Chirality          Chirality       `json:"chirality"`
	InputType          InputType       `json:"inputType"`
	CursorPosition     Point           `json:"cursorPosition"`
	DistanceFromScreen float64         `json:"distanceFromScreen"`
	ProgressToClick    float64         `json:"progressToClick"`
}

// WithCursor returns a copy of a with the cursor moved to p.
func (a InputAction) WithCursor(p Point) InputAction {
	a.CursorPosition = p
	return a
}

// wireInputAction mirrors the INPUT_ACTION content, where the cursor is sent as
// a two element array.
type wireInputAction struct {
	Timestamp          int64           `json:"Timestamp"`
	InteractionType    InteractionType `json:"InteractionType"`
	HandType           HandType        `json:"HandType"`
	Chirality          Chirality       `json:"Chirality"`
	InputType          InputType       `json:"InputType"`
	CursorPosition     []float64       `json:"CursorPosition"`
	DistanceFromScreen float64         `json:"DistanceFromScreen"`
	ProgressToClick    float64         `json:"ProgressToClick"`
}

// DecodeInputAction converts an INPUT_ACTION message into an InputAction.
func DecodeInputAction(m Message) (InputAction, error) {
	if m.Code() != CodeInputAction {
		return InputAction{}, fmt.Errorf("expected %s, got %s", CodeInputAction, m.Code())
	}

	var w wireInputAction
	if err := m.Decode(&w); err != nil {
		return InputAction{}, err
	}
	if len(w.CursorPosition) < 2 {
		return InputAction{}, fmt.Errorf("%s: cursor position needs 2 coordinates, got %d", CodeInputAction, len(w.CursorPosition))
	}

	return InputAction{
		Timestamp:          w.Timestamp,
		InteractionType:    w.InteractionType,
		HandType:           w.HandType,
		Chirality:          w.Chirality,
		InputType:          w.InputType,
		CursorPosition:     Point{X: w.CursorPosition[0], Y: w.CursorPosition[1]},
		DistanceFromScreen: w.DistanceFromScreen,
		ProgressToClick:    w.ProgressToClick,
	}, nil
}

// EncodeInputAction is the inverse of DecodeInputAction. Used by fakes and tests
// that play the service side.
func EncodeInputAction(a InputAction) ([]byte, error) {
	return Encode(CodeInputAction, wireInputAction{
		Timestamp:          a.Timestamp,
		InteractionType:    a.InteractionType,
		HandType:           a.HandType,
		Chirality:          a.Chirality,
		InputType:          a.InputType,
		CursorPosition:     []float64{a.CursorPosition.X, a.CursorPosition.Y},
		DistanceFromScreen: a.DistanceFromScreen,
		ProgressToClick:    a.ProgressToClick,
	})
}
