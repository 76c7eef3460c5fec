package gesture

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Point is a cursor target in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Smoother is a moving average over the most recent cursor targets. Its
// history is a fixed ring, so it never holds more than its capacity.
type Smoother struct {
	ring []Point
	head int // index of the oldest sample
	size int

	xs, ys []float64
}

// NewSmoother returns a smoother averaging over capacity samples.
// A capacity below one is treated as one.
func NewSmoother(capacity int) *Smoother {
	if capacity < 1 {
		capacity = 1
	}
	return &Smoother{
		ring: make([]Point, capacity),
		xs:   make([]float64, 0, capacity),
		ys:   make([]float64, 0, capacity),
	}
}

// PushAndAverage records p, evicting the oldest sample when full, and
// returns the mean of the retained samples rounded to whole pixels.
func (s *Smoother) PushAndAverage(p Point) (int, int) {
	if s.size < len(s.ring) {
		s.ring[(s.head+s.size)%len(s.ring)] = p
		s.size++
	} else {
		s.ring[s.head] = p
		s.head = (s.head + 1) % len(s.ring)
	}

	s.xs, s.ys = s.xs[:0], s.ys[:0]
	for _, q := range s.Samples() {
		s.xs = append(s.xs, q.X)
		s.ys = append(s.ys, q.Y)
	}

	return int(math.Round(stat.Mean(s.xs, nil))), int(math.Round(stat.Mean(s.ys, nil)))
}

// Samples returns the retained samples, oldest first.
func (s *Smoother) Samples() []Point {
	out := make([]Point, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.ring[(s.head+i)%len(s.ring)]
	}
	return out
}

// Len returns the number of retained samples.
func (s *Smoother) Len() int { return s.size }

// Cap returns the history capacity.
func (s *Smoother) Cap() int { return len(s.ring) }
