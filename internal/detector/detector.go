package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. Only the first one
	// drives the cursor.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Script overrides the location of the MediaPipe service script.
	Script string
}

// DefaultConfig returns the single-hand settings the cursor controller is tuned for.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}
