package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrNoScript is returned when the MediaPipe service script cannot be located.
var ErrNoScript = errors.New("mediapipe_service.py not found")

// idleShutdown is how long the service may sit unused before it is stopped.
// It is restarted lazily on the next Detect.
const idleShutdown = 30 * time.Second

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Wire protocol: each request is a 4-byte big-endian length followed by a
// JPEG-encoded frame on stdin; each response is one JSON line on stdout of
// the form {"hands":[{"points":[{x,y,z}...],"handedness":"Right","score":0.9}]}.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	idleTimer  *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := config.Script
	if scriptPath == "" {
		scriptPath = findMediaPipeScript()
	}
	if scriptPath == "" {
		return nil, ErrNoScript
	}
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoScript, err)
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: scriptPath,
	}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
// A response whose hands do not carry exactly NumLandmarks points fails
// with an error wrapping ErrMalformedLandmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	if _, err := d.stdin.Write(header); err != nil {
		d.shutdown()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		d.shutdown()
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		d.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	hands, err := decodeHands(line)
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()
	return hands, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, d.scriptPath,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/mediapipe_service.py"),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment
// next to the working directory, the executable, or the data directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	)
}

func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// decodeHands parses one response line from the service.
func decodeHands(line []byte) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", response.Error)
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for i, h := range response.Hands {
		if len(h.Points) != NumLandmarks {
			return nil, fmt.Errorf("%w: hand %d has %d points", ErrMalformedLandmarks, i, len(h.Points))
		}
		lm := HandLandmarks{
			Handedness: h.Handedness,
			Score:      h.Score,
		}
		copy(lm.Points[:], h.Points)
		result = append(result, lm)
	}

	return result, nil
}
