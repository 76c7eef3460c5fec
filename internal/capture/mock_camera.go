package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back in-memory frames for tests.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	fps     int
	reads   int
	mu      sync.Mutex
	running bool
}

// NewMockCamera returns a camera over frames. Without loop it reports
// ErrEndOfStream after the last frame.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// BlankFrames returns n black BGR frames of the given size. The caller
// closes them.
func BlankFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return frames
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, errors.New("no frames available")
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrEndOfStream
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	c.reads++

	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads reports how many frames have been handed out.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
