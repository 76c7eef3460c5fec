package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantFPS int
	}{
		{"defaults", DefaultOptions(), DefaultFPS},
		{"custom rate", Options{Device: 1, Width: 1280, Height: 720, FPS: 15}, 15},
		{"zero rate falls back", Options{Device: 2}, DefaultFPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.opts)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open before Open()")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	cam.SetFPS(5)
	if got := cam.FPS(); got != 5 {
		t.Errorf("FPS() = %d, want 5", got)
	}

	cam.SetFPS(0)
	cam.SetFPS(-3)
	if got := cam.FPS(); got != 5 {
		t.Errorf("non-positive rates must be ignored, FPS() = %d", got)
	}
}

func TestCamera_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestNewPicksSource(t *testing.T) {
	if _, ok := New(DefaultOptions()).(*deviceCamera); !ok {
		t.Error("expected a device camera without video_file")
	}

	opts := DefaultOptions()
	opts.VideoFile = "clip.mp4"
	vc, ok := New(opts).(*VideoCamera)
	if !ok {
		t.Fatal("expected a VideoCamera for video_file")
	}
	if !vc.mirror {
		t.Error("mirror option not carried to the video camera")
	}
}

func TestVideoCamera_NotOpened(t *testing.T) {
	cam := NewVideoCamera("missing.mp4", false)

	if cam.IsOpen() {
		t.Error("video camera should not be open before Open()")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	cam.SetFPS(12)
	if cam.FPS() != 12 {
		t.Errorf("FPS() = %d, want 12", cam.FPS())
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultOptions())
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should be false after Close()")
	}
}

func TestMockCamera_Playback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frames := BlankFrames(2, 640, 480)
	defer closeAll(frames)

	cam := NewMockCamera(frames, false)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("read before open: %v", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if f.Cols() != 640 || f.Rows() != 480 {
			t.Errorf("frame %d is %dx%d", i, f.Cols(), f.Rows())
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream after last frame, got %v", err)
	}
	if cam.Reads() != 2 {
		t.Errorf("Reads() = %d, want 2", cam.Reads())
	}
}

func TestMockCamera_Loop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frames := BlankFrames(1, 320, 240)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMirror(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV8UC1)
	defer mat.Close()
	mat.SetUCharAt(0, 0, 200)

	mirror(&mat)

	if got := mat.GetUCharAt(0, 2); got != 200 {
		t.Errorf("pixel (0,2) = %d, want 200 after flip", got)
	}
	if got := mat.GetUCharAt(0, 0); got != 0 {
		t.Errorf("pixel (0,0) = %d, want 0 after flip", got)
	}
}

func closeAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
