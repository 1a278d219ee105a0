package hand

import (
	"errors"
	"fmt"

	"github.com/ayusman/handlink/internal/action"
)

// ErrBadFrame is returned when a HAND_DATA message does not hold a valid frame.
var ErrBadFrame = errors.New("invalid hand frame")

// Hand is one tracked hand within a frame.
type Hand struct {
	Chirality  action.Chirality `json:"chirality"`
	Confidence float64          `json:"confidence"`
	Landmarks  Landmarks        `json:"-"`
}

// Frame is one HAND_DATA sample.
type Frame struct {
	// Timestamp is the service timestamp in microseconds.
	Timestamp int64
	Hands     []Hand
}

// Hand returns the hand with the given chirality.
func (f Frame) Hand(c action.Chirality) (Hand, bool) {
	for _, h := range f.Hands {
		if h.Chirality == c {
			return h, true
		}
	}
	return Hand{}, false
}

type wireHand struct {
	Chirality  action.Chirality `json:"chirality"`
	Confidence float64          `json:"confidence"`
	Landmarks  []Point3D        `json:"landmarks"`
}

type wireFrame struct {
	Timestamp int64      `json:"timestamp"`
	Hands     []wireHand `json:"hands"`
}

// DecodeFrame reads a Frame from a HAND_DATA message. Every hand must carry
// exactly NumLandmarks points.
func DecodeFrame(m action.Message) (Frame, error) {
	if m.Code() != action.CodeHandData {
		return Frame{}, fmt.Errorf("%w: unexpected action %s", ErrBadFrame, m.Code())
	}

	var w wireFrame
	if err := m.Decode(&w); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}

	f := Frame{Timestamp: w.Timestamp, Hands: make([]Hand, 0, len(w.Hands))}
	for i, wh := range w.Hands {
		if len(wh.Landmarks) != NumLandmarks {
			return Frame{}, fmt.Errorf("%w: hand %d has %d landmarks", ErrBadFrame, i, len(wh.Landmarks))
		}
		h := Hand{Chirality: wh.Chirality, Confidence: wh.Confidence}
		copy(h.Landmarks[:], wh.Landmarks)
		f.Hands = append(f.Hands, h)
	}
	return f, nil
}

// EncodeFrame returns the HAND_DATA content for f. It is the inverse of
// DecodeFrame and is used by test fixtures and the debug server.
func EncodeFrame(f Frame) any {
	w := wireFrame{Timestamp: f.Timestamp, Hands: make([]wireHand, 0, len(f.Hands))}
	for _, h := range f.Hands {
		w.Hands = append(w.Hands, wireHand{
			Chirality:  h.Chirality,
			Confidence: h.Confidence,
			Landmarks:  append([]Point3D(nil), h.Landmarks[:]...),
		})
	}
	return w
}
