package gesture

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/mudra/internal/detector"
)

// Dimensions is a pixel size. Both values are positive wherever they are used.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToPixels converts a normalized landmark into pixel coordinates.
func (d Dimensions) ToPixels(p detector.Point3D) (float64, float64) {
	return p.X * float64(d.Width), p.Y * float64(d.Height)
}

// PixelDistance is the Euclidean distance between two landmarks after
// scaling both into frame pixels.
func PixelDistance(a, b detector.Point3D, frame Dimensions) float64 {
	ax, ay := frame.ToPixels(a)
	bx, by := frame.ToPixels(b)
	return floats.Distance([]float64{ax, ay}, []float64{bx, by}, 2)
}

var fistTips = [...]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// IsFist reports whether all four non-thumb fingertips lie closer than
// threshold pixels to the palm reference.
func IsFist(hand *detector.HandLandmarks, frame Dimensions, threshold float64) bool {
	palm := hand.Points[detector.Palm]
	for _, tip := range fistTips {
		if PixelDistance(hand.Points[tip], palm, frame) >= threshold {
			return false
		}
	}
	return true
}
