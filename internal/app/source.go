package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// Source supplies one observation per tick.
type Source interface {
	// Next blocks for the next observation. capture.ErrEndOfStream means
	// the source is exhausted.
	Next(ctx context.Context) (detector.Observation, error)
	// Rate is the tick rate the source currently wants, in frames per second.
	Rate() int
	Close() error
}

// CameraSourceConfig configures a CameraSource.
type CameraSourceConfig struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Motion gates detection while idle. Nil disables idling.
	Motion *capture.MotionDetector

	FPS       int
	IdleFPS   int
	IdleAfter time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// CameraSource runs hand detection on camera frames.
//
// It starts active at FPS. After IdleAfter without a hand it drops the
// camera to IdleFPS and only runs the detector on frames where Motion
// sees movement; every other idle frame is a no-hand observation. A
// detected hand switches it back to active.
type CameraSource struct {
	cfg      CameraSourceConfig
	idle     bool
	lastHand time.Time
}

// NewCameraSource returns a source over cfg.Camera. The camera is opened
// by Open.
func NewCameraSource(cfg CameraSourceConfig) *CameraSource {
	if cfg.FPS <= 0 {
		cfg.FPS = capture.DefaultFPS
	}
	if cfg.IdleFPS <= 0 || cfg.IdleFPS > cfg.FPS {
		cfg.IdleFPS = cfg.FPS
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CameraSource{cfg: cfg}
}

// Open opens the camera at the active frame rate.
func (s *CameraSource) Open() error {
	if err := s.cfg.Camera.Open(); err != nil {
		return err
	}
	s.cfg.Camera.SetFPS(s.cfg.FPS)
	s.lastHand = s.cfg.Now()
	return nil
}

// Next reads one frame and turns it into an observation. The first hand
// reported by the detector is used.
func (s *CameraSource) Next(ctx context.Context) (detector.Observation, error) {
	if err := ctx.Err(); err != nil {
		return detector.NoHand(), err
	}

	frame, err := s.cfg.Camera.ReadFrame()
	if err != nil {
		return detector.NoHand(), err
	}
	defer frame.Close()

	if s.idle && s.cfg.Motion != nil {
		if moved, _ := s.cfg.Motion.Detect(frame); !moved {
			return detector.NoHand(), nil
		}
	}

	hands, err := s.cfg.Detector.Detect(frame)
	if err != nil {
		return detector.NoHand(), fmt.Errorf("detect hands: %w", err)
	}

	now := s.cfg.Now()
	if len(hands) == 0 {
		if !s.idle && s.cfg.Motion != nil && now.Sub(s.lastHand) > s.cfg.IdleAfter {
			s.setIdle(true)
		}
		return detector.NoHand(), nil
	}

	s.lastHand = now
	if s.idle {
		s.setIdle(false)
	}

	return detector.HandObservation(hands[0], frame.Cols(), frame.Rows())
}

func (s *CameraSource) setIdle(idle bool) {
	s.idle = idle
	if idle {
		s.cfg.Camera.SetFPS(s.cfg.IdleFPS)
		s.cfg.Motion.Reset()
		s.cfg.Logger.Info("no hand, switching to idle rate", "fps", s.cfg.IdleFPS)
		return
	}
	s.cfg.Camera.SetFPS(s.cfg.FPS)
	s.cfg.Logger.Info("hand detected, switching to active rate", "fps", s.cfg.FPS)
}

// Idle reports whether the source is in its low-rate state.
func (s *CameraSource) Idle() bool { return s.idle }

// Rate returns the current frame rate.
func (s *CameraSource) Rate() int {
	if s.idle {
		return s.cfg.IdleFPS
	}
	return s.cfg.FPS
}

// Close releases the camera, the detector and the motion baseline.
func (s *CameraSource) Close() error {
	err := s.cfg.Camera.Close()
	if s.cfg.Motion != nil {
		s.cfg.Motion.Close()
	}
	if derr := s.cfg.Detector.Close(); err == nil {
		err = derr
	}
	return err
}
