// Package capture supplies BGR video frames from a webcam or a recording.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings. The gesture thresholds are tuned for 640x480.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
	DefaultFPS    = 30
)

var (
	// ErrCameraNotOpen is returned when reading from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned once a finite source has no frames left.
	ErrEndOfStream = errors.New("end of stream")
)

// Camera is a source of frames. The caller owns and must close every Mat
// returned by ReadFrame.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Options configure a frame source.
type Options struct {
	Device int
	Width  int
	Height int
	FPS    int
	// Mirror flips every frame horizontally so the preview behaves like a mirror.
	Mirror bool
	// VideoFile, when set, replays a recording instead of opening Device.
	VideoFile string
}

// DefaultOptions returns device 0 at 640x480, mirrored.
func DefaultOptions() Options {
	return Options{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		FPS:    DefaultFPS,
		Mirror: true,
	}
}

// New returns a VideoCamera when opts names a video file, otherwise a
// device camera.
func New(opts Options) Camera {
	if opts.VideoFile != "" {
		return NewVideoCamera(opts.VideoFile, opts.Mirror)
	}
	return NewCamera(opts)
}

// deviceCamera captures from a local camera device using GoCV.
type deviceCamera struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a camera for opts.Device. Nothing is opened until Open.
func NewCamera(opts Options) Camera {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	return &deviceCamera{opts: opts}
}

// Open opens the device and requests the configured resolution and rate.
func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.opts.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.opts.Device, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))

	c.capture = capture
	c.running = true

	return nil
}

// Close releases the device.
func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame grabs the next frame, mirrored if configured.
func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	if c.opts.Mirror {
		mirror(&mat)
	}

	return &mat, nil
}

// SetFPS changes the requested capture rate. Values <= 0 are ignored.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.FPS = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.opts.FPS
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// mirror flips mat around the vertical axis in place.
func mirror(mat *gocv.Mat) {
	gocv.Flip(*mat, mat, 1)
}
