// Package config loads mudra's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultFileName is read from the working directory when no path is given.
const DefaultFileName = "mudra.yaml"

// Environment variables consulted by ApplyEnv and by the binary.
const (
	EnvConfig    = "MUDRA_CONFIG"
	EnvLogLevel  = "MUDRA_LOG_LEVEL"
	EnvLogFormat = "MUDRA_LOG_FORMAT"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full set of user-adjustable settings.
type Config struct {
	Gesture  GestureConfig  `yaml:"gesture"`
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Screen   ScreenConfig   `yaml:"screen"`
	Sink     SinkConfig     `yaml:"sink"`
	Keyboard KeyboardConfig `yaml:"keyboard"`
	Tray     TrayConfig     `yaml:"tray"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-"`
}

// GestureConfig holds the classifier calibration. Pixel values assume
// the camera resolution in CameraConfig.
type GestureConfig struct {
	ClickThreshold      float64       `yaml:"click_threshold"`
	ScrollThreshold     float64       `yaml:"scroll_threshold"`
	HistoryLength       int           `yaml:"history_length"`
	ClickCooldown       time.Duration `yaml:"click_cooldown"`
	DoubleClickInterval time.Duration `yaml:"double_click_interval"`
	ModeSwitchCooldown  time.Duration `yaml:"mode_switch_cooldown"`
	ScrollDivisor       float64       `yaml:"scroll_divisor"`
}

// CameraConfig selects and shapes the frame source.
type CameraConfig struct {
	Device    int           `yaml:"device"`
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	FPS       int           `yaml:"fps"`
	IdleFPS   int           `yaml:"idle_fps"`
	IdleAfter time.Duration `yaml:"idle_after"`
	Mirror    bool          `yaml:"mirror"`
	// VideoFile replays a recording instead of opening Device.
	VideoFile string `yaml:"video_file"`
}

// DetectorConfig is passed to the hand landmark service.
type DetectorConfig struct {
	MaxHands              int     `yaml:"max_hands"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
	Script                string  `yaml:"script"`
}

// ScreenConfig fixes the cursor target area. Zero width or height means
// detect it from Display.
type ScreenConfig struct {
	Display int `yaml:"display"`
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
}

// SinkConfig selects the action sink: "robotgo" or "log".
type SinkConfig struct {
	Kind string `yaml:"kind"`
}

// KeyboardConfig binds global hotkeys. Each combo is a key followed by
// its modifiers, e.g. ["m", "ctrl", "shift"].
type KeyboardConfig struct {
	Enabled bool     `yaml:"enabled"`
	Pointer []string `yaml:"pointer"`
	Scroll  []string `yaml:"scroll"`
	Quit    []string `yaml:"quit"`
}

// TrayConfig toggles the system tray menu.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ServerConfig controls the local HTTP API. An empty Addr disables it.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// StoreConfig locates the SQLite database. An empty Path disables
// persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used when no overrides are supplied.
func Default() Config {
	th := gesture.DefaultThresholds()
	return Config{
		Gesture: GestureConfig{
			ClickThreshold:      th.ClickThreshold,
			ScrollThreshold:     th.ScrollThreshold,
			HistoryLength:       th.HistoryLength,
			ClickCooldown:       th.ClickCooldown,
			DoubleClickInterval: th.DoubleClickInterval,
			ModeSwitchCooldown:  th.ModeSwitchCooldown,
			ScrollDivisor:       th.ScrollDivisor,
		},
		Camera: CameraConfig{
			Width:     640,
			Height:    480,
			FPS:       30,
			IdleFPS:   5,
			IdleAfter: 2 * time.Second,
			Mirror:    true,
		},
		Detector: DetectorConfig{
			MaxHands:              1,
			MinConfidence:         0.7,
			MinTrackingConfidence: 0.5,
		},
		Sink: SinkConfig{Kind: "robotgo"},
		Keyboard: KeyboardConfig{
			Enabled: true,
			Pointer: []string{"m", "ctrl", "shift"},
			Scroll:  []string{"s", "ctrl", "shift"},
			Quit:    []string{"q", "ctrl", "shift"},
		},
		Server: ServerConfig{Addr: "127.0.0.1:8765"},
		Store:  StoreConfig{Path: DefaultStorePath()},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Source: "<defaults>",
	}
}

// DefaultStorePath is ~/.mudra/mudra.db, or mudra.db when there is no home
// directory.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mudra.db"
	}
	return filepath.Join(home, ".mudra", "mudra.db")
}

// Load reads configuration from disk if present, otherwise returning defaults.
// When path is empty, the loader attempts to read ./mudra.yaml but tolerates a missing file.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	file, err := os.Open(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}
	defer file.Close()

	if err := decode(file, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides logging settings from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
}

// Thresholds converts the gesture section for the classifier.
func (c Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		ClickThreshold:      c.Gesture.ClickThreshold,
		ScrollThreshold:     c.Gesture.ScrollThreshold,
		HistoryLength:       c.Gesture.HistoryLength,
		ClickCooldown:       c.Gesture.ClickCooldown,
		DoubleClickInterval: c.Gesture.DoubleClickInterval,
		ModeSwitchCooldown:  c.Gesture.ModeSwitchCooldown,
		ScrollDivisor:       c.Gesture.ScrollDivisor,
	}
}

// SetThresholds replaces the gesture section.
func (c *Config) SetThresholds(th gesture.Thresholds) {
	c.Gesture = GestureConfig{
		ClickThreshold:      th.ClickThreshold,
		ScrollThreshold:     th.ScrollThreshold,
		HistoryLength:       th.HistoryLength,
		ClickCooldown:       th.ClickCooldown,
		DoubleClickInterval: th.DoubleClickInterval,
		ModeSwitchCooldown:  th.ModeSwitchCooldown,
		ScrollDivisor:       th.ScrollDivisor,
	}
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("%w: gesture: %v", ErrInvalid, err)
	}

	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("%w: camera.width and camera.height must be positive", ErrInvalid)
	case c.Camera.FPS <= 0:
		return fmt.Errorf("%w: camera.fps must be positive", ErrInvalid)
	case c.Camera.IdleFPS <= 0 || c.Camera.IdleFPS > c.Camera.FPS:
		return fmt.Errorf("%w: camera.idle_fps must be in [1, fps]", ErrInvalid)
	case c.Camera.IdleAfter < 0:
		return fmt.Errorf("%w: camera.idle_after must not be negative", ErrInvalid)
	case c.Detector.MaxHands < 1:
		return fmt.Errorf("%w: detector.max_hands must be at least 1", ErrInvalid)
	case c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1:
		return fmt.Errorf("%w: detector.min_confidence must be in [0, 1]", ErrInvalid)
	case c.Detector.MinTrackingConfidence < 0 || c.Detector.MinTrackingConfidence > 1:
		return fmt.Errorf("%w: detector.min_tracking_confidence must be in [0, 1]", ErrInvalid)
	case c.Screen.Width < 0 || c.Screen.Height < 0:
		return fmt.Errorf("%w: screen size must not be negative", ErrInvalid)
	}

	switch c.Sink.Kind {
	case "robotgo", "log":
	default:
		return fmt.Errorf("%w: sink.kind %q is not robotgo or log", ErrInvalid, c.Sink.Kind)
	}

	if c.Keyboard.Enabled {
		for name, combo := range map[string][]string{
			"pointer": c.Keyboard.Pointer,
			"scroll":  c.Keyboard.Scroll,
			"quit":    c.Keyboard.Quit,
		} {
			if len(combo) == 0 {
				return fmt.Errorf("%w: keyboard.%s must name at least one key", ErrInvalid, name)
			}
		}
	}

	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

func (c *Config) normalize() {
	defaults := Default()

	c.Sink.Kind = strings.ToLower(strings.TrimSpace(c.Sink.Kind))
	if c.Sink.Kind == "" {
		c.Sink.Kind = defaults.Sink.Kind
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	c.Store.Path = expandHome(strings.TrimSpace(c.Store.Path))
	c.Camera.VideoFile = expandHome(strings.TrimSpace(c.Camera.VideoFile))
	c.Detector.Script = expandHome(strings.TrimSpace(c.Detector.Script))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
