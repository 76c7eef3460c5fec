package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"explicit", 5.0, 5.0},
		{"zero selects default", 0, DefaultMotionThreshold},
		{"negative selects default", -1, DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if got := md.Threshold(); got != tt.want {
				t.Errorf("Threshold() = %f, want %f", got, tt.want)
			}
			if md.hasPrev {
				t.Error("new detector should have no baseline")
			}
		})
	}
}

func TestMotionDetector_Detect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	t.Run("first frame is the baseline", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		if detected, changed := md.Detect(&black); detected || changed != 0 {
			t.Errorf("first frame: detected=%v changed=%f", detected, changed)
		}
	})

	t.Run("identical frames", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		if detected, changed := md.Detect(&black); detected {
			t.Errorf("identical frames reported motion, changed=%f", changed)
		}
	})

	t.Run("black to white", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		detected, changed := md.Detect(&white)
		if !detected {
			t.Errorf("expected motion, changed=%f", changed)
		}
		if changed < 50 {
			t.Errorf("changed = %f, expected > 50%%", changed)
		}
	})

	t.Run("reset drops the baseline", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		md.Reset()
		if detected, _ := md.Detect(&white); detected {
			t.Error("first frame after Reset should not report motion")
		}
	})

	t.Run("nil and empty frames", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		empty := gocv.NewMat()
		defer empty.Close()

		if detected, _ := md.Detect(nil); detected {
			t.Error("nil frame reported motion")
		}
		if detected, _ := md.Detect(&empty); detected {
			t.Error("empty frame reported motion")
		}
	})
}

func TestMotionDetector_CloseTwice(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}
