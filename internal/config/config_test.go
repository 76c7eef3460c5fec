package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "<defaults>", cfg.Source)
	assert.Equal(t, gesture.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, 640, cfg.Camera.Width)
	assert.Equal(t, 480, cfg.Camera.Height)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, 1, cfg.Detector.MaxHands)
	assert.Equal(t, 0.7, cfg.Detector.MinConfidence)
	assert.Equal(t, 0.5, cfg.Detector.MinTrackingConfidence)
	assert.Equal(t, "robotgo", cfg.Sink.Kind)
	assert.Equal(t, "127.0.0.1:8765", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mudra.yaml")
	content := `
gesture:
  click_threshold: 45
  history_length: 8
  double_click_interval: 400ms
  mode_switch_cooldown: 1.5s
camera:
  width: 1280
  height: 720
  mirror: false
  video_file: clip.mp4
sink:
  kind: LOG
keyboard:
  quit: ["escape"]
store:
  path: ""
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 45.0, cfg.Gesture.ClickThreshold)
	assert.Equal(t, 20.0, cfg.Gesture.ScrollThreshold, "unset keys keep defaults")
	assert.Equal(t, 8, cfg.Gesture.HistoryLength)
	assert.Equal(t, 400*time.Millisecond, cfg.Gesture.DoubleClickInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Gesture.ModeSwitchCooldown)
	assert.Equal(t, 1280, cfg.Camera.Width)
	assert.False(t, cfg.Camera.Mirror)
	assert.Equal(t, "clip.mp4", cfg.Camera.VideoFile)
	assert.Equal(t, "log", cfg.Sink.Kind)
	assert.Equal(t, []string{"escape"}, cfg.Keyboard.Quit)
	assert.Equal(t, []string{"m", "ctrl", "shift"}, cfg.Keyboard.Pointer)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mudra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gesture:\n  pinch: 3\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mudra.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, gesture.DefaultThresholds(), cfg.Thresholds())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero history", func(c *Config) { c.Gesture.HistoryLength = 0 }},
		{"zero scroll divisor", func(c *Config) { c.Gesture.ScrollDivisor = 0 }},
		{"zero camera width", func(c *Config) { c.Camera.Width = 0 }},
		{"idle fps above fps", func(c *Config) { c.Camera.IdleFPS = 60 }},
		{"confidence above one", func(c *Config) { c.Detector.MinConfidence = 1.5 }},
		{"unknown sink", func(c *Config) { c.Sink.Kind = "xdotool" }},
		{"empty hotkey", func(c *Config) { c.Keyboard.Scroll = nil }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}

	t.Run("disabled keyboard needs no combos", func(t *testing.T) {
		cfg := Default()
		cfg.Keyboard = KeyboardConfig{}
		assert.NoError(t, cfg.Validate())
	})
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{EnvLogLevel: "DEBUG", EnvLogFormat: " text "}

	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestThresholdsRoundTrip(t *testing.T) {
	cfg := Default()
	th := gesture.DefaultThresholds()
	th.ScrollThreshold = 12
	th.ClickCooldown = 0

	cfg.SetThresholds(th)

	assert.Equal(t, th, cfg.Thresholds())
}

func TestNormalizeLogLevel(t *testing.T) {
	for in, want := range map[string]string{"": "info", "WARNING": "warn", " debug ": "debug"} {
		got, err := NormalizeLogLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := NormalizeLogLevel("trace")
	assert.Error(t, err)
}
