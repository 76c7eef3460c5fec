// Package detector provides hand landmark types and the detectors that produce them.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Palm is the landmark used as the palm reference for shape checks.
const Palm = Wrist

// ErrMalformedLandmarks is returned when a landmark set has the wrong shape
// or carries coordinates that cannot be used.
var ErrMalformedLandmarks = errors.New("malformed landmarks")

// Point3D is a landmark position. X and Y are normalized to [0,1] relative to
// the frame; Z is the relative depth reported by the model and is unused by
// the gesture logic.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Observation is what the landmark source yields for one tick: either no
// hand, or one hand together with the pixel size of the frame it came from.
type Observation struct {
	hand   *HandLandmarks
	Width  int
	Height int
}

// NoHand is the observation for a tick in which no hand was detected.
func NoHand() Observation {
	return Observation{}
}

// HandObservation wraps an already shaped landmark set.
func HandObservation(hand HandLandmarks, width, height int) (Observation, error) {
	if width <= 0 || height <= 0 {
		return Observation{}, fmt.Errorf("%w: frame %dx%d", ErrMalformedLandmarks, width, height)
	}
	for i, p := range hand.Points {
		if !finite(p.X) || !finite(p.Y) {
			return Observation{}, fmt.Errorf("%w: landmark %d is not finite", ErrMalformedLandmarks, i)
		}
	}
	return Observation{hand: &hand, Width: width, Height: height}, nil
}

// NewObservation builds an observation from a raw point list, as delivered by
// an external model. Anything other than exactly NumLandmarks points is rejected.
func NewObservation(points []Point3D, width, height int) (Observation, error) {
	if len(points) != NumLandmarks {
		return Observation{}, fmt.Errorf("%w: got %d points, want %d", ErrMalformedLandmarks, len(points), NumLandmarks)
	}
	var hand HandLandmarks
	copy(hand.Points[:], points)
	return HandObservation(hand, width, height)
}

// Hand returns the observed hand and true, or nil and false for NoHand.
func (o Observation) Hand() (*HandLandmarks, bool) {
	return o.hand, o.hand != nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
