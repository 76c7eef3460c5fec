package capture

import (
	"fmt"
	"math"
	"sync"

	vidio "github.com/AlexEidt/Vidio"
	"gocv.io/x/gocv"
)

// VideoCamera replays a video file frame by frame. Vidio decodes through
// ffmpeg, so ffmpeg must be on PATH. Reads past the last frame return
// ErrEndOfStream.
type VideoCamera struct {
	path   string
	mirror bool

	mu    sync.Mutex
	video *vidio.Video
	fps   int
}

// NewVideoCamera returns a camera that will replay path once opened.
func NewVideoCamera(path string, mirror bool) *VideoCamera {
	return &VideoCamera{path: path, mirror: mirror}
}

// Open starts decoding. Reopening restarts from the first frame.
func (c *VideoCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.video != nil {
		c.video.Close()
	}

	video, err := vidio.NewVideo(c.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", c.path, err)
	}

	c.video = video
	if c.fps <= 0 {
		c.fps = int(math.Round(video.FPS()))
		if c.fps <= 0 {
			c.fps = DefaultFPS
		}
	}
	return nil
}

func (c *VideoCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.video != nil {
		c.video.Close()
		c.video = nil
	}
	return nil
}

// ReadFrame decodes the next frame and converts it from RGBA to BGR.
func (c *VideoCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.video == nil {
		return nil, ErrCameraNotOpen
	}
	if !c.video.Read() {
		return nil, ErrEndOfStream
	}

	rgba, err := gocv.NewMatFromBytes(c.video.Height(), c.video.Width(), gocv.MatTypeCV8UC4, c.video.FrameBuffer())
	if err != nil {
		return nil, fmt.Errorf("wrap video frame: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	if c.mirror {
		mirror(&bgr)
	}
	return &bgr, nil
}

// SetFPS sets the replay rate reported by FPS. Pacing is up to the reader.
func (c *VideoCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *VideoCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *VideoCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.video != nil
}
