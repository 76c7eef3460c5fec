package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmLandmarks returns a right hand with every finger extended. At
// 640x480 no fingertip is within 60px of the thumb tip or the wrist, so it
// triggers no discrete gesture.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return landmarks
}

// PointAt returns the open palm translated so the index fingertip sits at
// the given normalized position. Relative geometry is unchanged.
func PointAt(x, y float64) HandLandmarks {
	hand := OpenPalmLandmarks()
	dx := x - hand.Points[IndexTip].X
	dy := y - hand.Points[IndexTip].Y
	for i := range hand.Points {
		hand.Points[i].X += dx
		hand.Points[i].Y += dy
	}
	return hand
}

// PinchLandmarks returns an open palm whose thumb tip has been moved onto
// the index fingertip, the left-click shape.
func PinchLandmarks() HandLandmarks {
	hand := OpenPalmLandmarks()
	tip := hand.Points[IndexTip]
	hand.Points[ThumbTip] = Point3D{X: tip.X + 0.01, Y: tip.Y + 0.01}
	return hand
}

// MiddlePinchLandmarks returns an open palm whose thumb tip touches the
// middle fingertip, the right-click shape.
func MiddlePinchLandmarks() HandLandmarks {
	hand := OpenPalmLandmarks()
	tip := hand.Points[MiddleTip]
	hand.Points[ThumbTip] = Point3D{X: tip.X + 0.01, Y: tip.Y + 0.01}
	return hand
}

// FistLandmarks returns a closed fist: the four non-thumb fingertips are
// curled within 20px of the wrist at 640x480 while the thumb rests well
// away from the index and middle tips.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.93,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.59, Y: 0.73}
	landmarks.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.71}
	landmarks.Points[ThumbTip] = Point3D{X: 0.63, Y: 0.69}

	landmarks.Points[IndexMCP] = Point3D{X: 0.54, Y: 0.72}
	landmarks.Points[IndexPIP] = Point3D{X: 0.54, Y: 0.70}
	landmarks.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.75}
	landmarks.Points[IndexTip] = Point3D{X: 0.52, Y: 0.78}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.71}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.69}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.74}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.77}

	landmarks.Points[RingMCP] = Point3D{X: 0.47, Y: 0.72}
	landmarks.Points[RingPIP] = Point3D{X: 0.47, Y: 0.70}
	landmarks.Points[RingDIP] = Point3D{X: 0.48, Y: 0.75}
	landmarks.Points[RingTip] = Point3D{X: 0.48, Y: 0.78}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.44, Y: 0.74}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.44, Y: 0.72}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.46, Y: 0.76}
	landmarks.Points[PinkyTip] = Point3D{X: 0.47, Y: 0.79}

	return landmarks
}
