package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoother_SingleSampleIsIdentity(t *testing.T) {
	s := NewSmoother(5)

	x, y := s.PushAndAverage(Point{X: 960, Y: 540})

	assert.Equal(t, 960, x)
	assert.Equal(t, 540, y)
	assert.Equal(t, 1, s.Len())
}

func TestSmoother_MeanOfRetainedSamples(t *testing.T) {
	s := NewSmoother(5)

	pushes := []struct {
		p          Point
		wantX      int
		wantY      int
		wantLength int
	}{
		{Point{X: 10, Y: 100}, 10, 100, 1},
		{Point{X: 20, Y: 200}, 15, 150, 2},
		{Point{X: 30, Y: 300}, 20, 200, 3},
		{Point{X: 40, Y: 400}, 25, 250, 4},
		{Point{X: 50, Y: 500}, 30, 300, 5},
		// 10/100 is evicted.
		{Point{X: 60, Y: 600}, 40, 400, 5},
		// 20/200 is evicted.
		{Point{X: 0, Y: 0}, 36, 360, 5},
	}

	for i, tt := range pushes {
		x, y := s.PushAndAverage(tt.p)
		assert.Equal(t, tt.wantX, x, "push %d x", i)
		assert.Equal(t, tt.wantY, y, "push %d y", i)
		assert.Equal(t, tt.wantLength, s.Len(), "push %d length", i)
	}

	assert.Equal(t, []Point{{30, 300}, {40, 400}, {50, 500}, {60, 600}, {0, 0}}, s.Samples())
}

func TestSmoother_NeverExceedsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 2, 5, 8} {
		s := NewSmoother(capacity)
		for i := 0; i < 3*capacity+1; i++ {
			s.PushAndAverage(Point{X: float64(i), Y: float64(-i)})
			require.LessOrEqual(t, s.Len(), capacity)
		}
		assert.Equal(t, capacity, s.Len())
		assert.Equal(t, capacity, s.Cap())
	}
}

func TestSmoother_RoundsToWholePixels(t *testing.T) {
	s := NewSmoother(5)

	s.PushAndAverage(Point{X: 1, Y: 2})
	x, y := s.PushAndAverage(Point{X: 2, Y: 2.2})

	// (1+2)/2 = 1.5 rounds half away from zero; (2+2.2)/2 = 2.1.
	assert.Equal(t, 2, x)
	assert.Equal(t, 2, y)
}

func TestSmoother_MinimumCapacity(t *testing.T) {
	s := NewSmoother(0)
	s.PushAndAverage(Point{X: 1, Y: 1})
	x, y := s.PushAndAverage(Point{X: 7, Y: 9})

	assert.Equal(t, 1, s.Cap())
	assert.Equal(t, 7, x)
	assert.Equal(t, 9, y)
}
