package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurKernel is the Gaussian kernel applied before differencing.
	blurKernel = 21
	// pixelDelta is the grey-level change that counts a pixel as moved.
	pixelDelta = 25
	// DefaultMotionThreshold is the share of moved pixels, in percent,
	// that counts as motion.
	DefaultMotionThreshold = 1.0
)

// MotionDetector reports whether consecutive frames differ. The loop uses
// it to decide when an idle camera is worth running hand detection on.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	hasPrev   bool
}

// NewMotionDetector returns a detector that fires when more than threshold
// percent of pixels change. A threshold <= 0 selects the default.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether motion
// was seen plus the changed share in percent. The first frame after
// construction or Reset only establishes the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	cur := prepare(frame)

	if !m.hasPrev {
		m.prev.Close()
		m.prev = cur
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, m.prev, &diff)
	gocv.Threshold(diff, &diff, pixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100

	m.prev.Close()
	m.prev = cur

	return changed > m.threshold, changed
}

// prepare converts frame to a blurred grey image.
func prepare(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)
	return gray
}

// Reset forgets the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.hasPrev = false
}

// Close releases the baseline frame. The detector may be reused after
// Close; it starts over with a new baseline.
func (m *MotionDetector) Close() {
	m.Reset()
}

// Threshold returns the motion threshold in percent.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
