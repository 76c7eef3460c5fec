package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/keyboard"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/mouse"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	// A missing .env is normal; the process environment still applies.
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Getenv, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(1)
	}
}

// options are the command line overrides.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	sink       string
	video      string
	noTray     bool
}

func parseFlags(args []string, getenv func(string) string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("mudra", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: $"+config.EnvConfig+" or ./"+config.DefaultFileName+")")
	fs.StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "Override log output format (json, console)")
	fs.StringVar(&opts.sink, "sink", "", "Override action sink (robotgo, log)")
	fs.StringVar(&opts.video, "video", "", "Replay a video file instead of the camera")
	fs.BoolVar(&opts.noTray, "no-tray", false, "Do not show the system tray menu")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.configPath == "" {
		opts.configPath = strings.TrimSpace(getenv(config.EnvConfig))
	}
	return opts, nil
}

// loadConfig reads the config file and layers the environment and flags
// on top, in that order.
func loadConfig(opts options, getenv func(string) string) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	cfg.ApplyEnv(getenv)
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	if opts.sink != "" {
		cfg.Sink.Kind = strings.ToLower(opts.sink)
	}
	if opts.video != "" {
		cfg.Camera.VideoFile = opts.video
	}
	if opts.noTray {
		cfg.Tray.Enabled = false
	}

	return cfg, cfg.Validate()
}

func run(args []string, getenv func(string) string, stderr io.Writer) error {
	opts, err := parseFlags(args, getenv, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts, getenv)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: stderr})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "source", cfg.Source)

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.New(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}

	th := thresholds(cfg, st, logger)

	screen, err := mouse.ResolveScreen(cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.Display)
	if err != nil {
		return err
	}
	logger.Info("screen resolved", "width", screen.Width, "height", screen.Height)

	sink, err := mouse.NewSink(cfg.Sink.Kind, logger)
	if err != nil {
		return err
	}

	machine, err := control.NewMachine(sink, screen, th)
	if err != nil {
		return err
	}

	source, sourceName, err := openSource(cfg, logger)
	if err != nil {
		return err
	}

	application := app.New(app.Config{
		Source:     source,
		Machine:    machine,
		Store:      st,
		SourceName: sourceName,
		SinkName:   cfg.Sink.Kind,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	submit := func(cmd control.Command) {
		_ = application.Submit(cmd)
	}

	if cfg.Keyboard.Enabled {
		kb := keyboard.NewListener(keyboard.Bindings(cfg.Keyboard), submit, logger)
		if err := kb.Start(); err != nil {
			logger.Warn("keyboard hotkeys unavailable", "error", err)
		} else {
			defer kb.Stop()
		}
	}

	if cfg.Server.Addr != "" {
		srv := server.New(server.Config{
			StaticDir: staticDir(cfg.Server.StaticDir),
			Store:     st,
			App:       application,
			Logger:    logger,
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				logger.Error("http server failed", "error", err)
			}
		}()
	}

	if !cfg.Tray.Enabled {
		return application.Run(ctx)
	}
	return runWithTray(ctx, stop, application, submit, dashboardURL(cfg.Server.Addr), logger)
}

// runWithTray keeps the tray on the main goroutine, as the platform menu
// APIs require, and runs the loop beside it.
func runWithTray(ctx context.Context, stop context.CancelFunc, application *app.App, submit func(control.Command), dashboard string, logger *slog.Logger) error {
	t := tray.New(submit)
	t.OnExit(stop)
	if dashboard != "" {
		t.OnSettings(func() {
			if err := openBrowser(dashboard); err != nil {
				logger.Warn("could not open dashboard", "url", dashboard, "error", err)
			}
		})
	}

	actions, unsubscribe := application.Subscribe(16)
	defer unsubscribe()
	go func() {
		for act := range actions {
			if m, err := gesture.ParseMode(act.Mode); err == nil {
				t.SetMode(m)
			}
			switch act.Kind {
			case control.CmdPause.String():
				t.SetPaused(true)
			case control.CmdResume.String():
				t.SetPaused(false)
			}
			t.SetLastAction(act.Kind)
		}
	}()

	errc := make(chan error, 1)
	go func() {
		err := application.Run(ctx)
		t.Quit()
		errc <- err
	}()

	logger.Info("tray menu active")
	t.Run()
	stop()
	return <-errc
}

// dashboardURL is the browser address of the HTTP server listening on
// addr, or "" when the server is disabled.
func dashboardURL(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// thresholds prefers a calibration saved through the API over the config
// file.
func thresholds(cfg config.Config, st *store.Store, logger *slog.Logger) gesture.Thresholds {
	th := cfg.Thresholds()
	if st == nil {
		return th
	}

	saved, err := st.Settings().LoadThresholds()
	switch {
	case errors.Is(err, store.ErrNotFound):
		return th
	case err != nil:
		logger.Warn("ignoring saved calibration", "error", err)
		return th
	case saved.Validate() != nil:
		logger.Warn("ignoring invalid saved calibration", "error", saved.Validate())
		return th
	}
	logger.Info("using saved calibration")
	return saved
}

func openSource(cfg config.Config, logger *slog.Logger) (app.Source, string, error) {
	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.Detector.MaxHands,
		MinConfidence:   cfg.Detector.MinConfidence,
		MinTrackingConf: cfg.Detector.MinTrackingConfidence,
		Script:          cfg.Detector.Script,
	})
	var hands detector.Detector = det
	if err != nil {
		logger.Warn("hand detection unavailable, no hand will ever be seen", "error", err)
		hands = detector.NewMockDetector()
	}

	cam := capture.New(capture.Options{
		Device:    cfg.Camera.Device,
		Width:     cfg.Camera.Width,
		Height:    cfg.Camera.Height,
		FPS:       cfg.Camera.FPS,
		Mirror:    cfg.Camera.Mirror,
		VideoFile: cfg.Camera.VideoFile,
	})

	name := fmt.Sprintf("camera:%d", cfg.Camera.Device)
	var motion *capture.MotionDetector
	if cfg.Camera.VideoFile != "" {
		name = "video:" + filepath.Base(cfg.Camera.VideoFile)
	} else if cfg.Camera.IdleFPS < cfg.Camera.FPS {
		motion = capture.NewMotionDetector(capture.DefaultMotionThreshold)
	}

	src := app.NewCameraSource(app.CameraSourceConfig{
		Camera:    cam,
		Detector:  hands,
		Motion:    motion,
		FPS:       cfg.Camera.FPS,
		IdleFPS:   cfg.Camera.IdleFPS,
		IdleAfter: cfg.Camera.IdleAfter,
		Logger:    logger,
	})
	if err := src.Open(); err != nil {
		hands.Close()
		if motion != nil {
			motion.Close()
		}
		return nil, "", fmt.Errorf("open %s: %w", name, err)
	}
	return src, name, nil
}

// staticDir returns the configured directory, or the first web directory
// found in the usual locations.
func staticDir(configured string) string {
	if configured != "" {
		return configured
	}

	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
