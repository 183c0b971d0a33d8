package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/publish"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

const windowTitle = "Hand Detection"

func main() {
	fmt.Println("Mudra - Hand Gesture Control")

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		log.Fatalf("mudra: %v", err)
	}
}

func run(opts options) error {
	dataDir, err := resolveDataDir(opts.dataDir)
	if err != nil {
		return err
	}

	st, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	cfg := app.DefaultConfig()
	cfg.Store = st
	cfg.Capture = capture.Config{DeviceID: opts.camera, Width: opts.width, Height: opts.height, FPS: opts.fps}
	cfg.Detector = detector.Config{
		MaxHands:        opts.maxHands,
		MinConfidence:   opts.confidence,
		MinTrackingConf: opts.tracking,
		ModelComplexity: opts.complexity,
	}
	cfg.ForceFallback = opts.fallback
	cfg.FPSLimit = opts.fps
	cfg.ScreenshotDir = opts.screenshots
	if cfg.InitialMode, err = initialMode(opts.mode, st); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source := hand.NewSource(cfg.Detector, cfg.ForceFallback, newEstimator)
	defer source.Close()

	session := app.NewSession(cfg, capture.NewCamera(cfg.Capture), source)
	if opts.smoothing < 0 || opts.smoothing >= 1 {
		return fmt.Errorf("smoothing must be within [0,1), got %f", opts.smoothing)
	}
	session.Dispatcher().Mouse.SetSmoothing(opts.smoothing)

	signals := server.NewSignalHub()
	frames := server.NewFrameHub()
	sinks := publish.NewMulti(signals)
	defer sinks.Close()
	session.SetSink(sinks)
	session.SetFrameSink(frames)

	if opts.mqttBroker != "" {
		mqttCfg := publish.DefaultMQTTConfig()
		mqttCfg.Broker = opts.mqttBroker
		mqttCfg.Topic = opts.mqttTopic
		sink, err := publish.NewMQTTSink(mqttCfg)
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			sinks.Add(sink)
			log.Printf("publishing signals to %s", sink.Topic(publish.KindSignal))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.listen != "" {
		staticDir := opts.staticDir
		if staticDir == "" {
			staticDir = findWebDir(dataDir)
		}
		if staticDir != "" {
			fmt.Printf("Serving static files from: %s\n", staticDir)
		}

		srv := server.New(server.Config{
			StaticDir:  staticDir,
			Store:      st,
			Controller: session,
			Signals:    signals,
			Frames:     frames,
		})
		go func() {
			fmt.Printf("Starting server on %s\n", opts.listen)
			if err := srv.Run(ctx, opts.listen); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()
	}

	// The tray and the preview window both need the main thread.
	if opts.tray {
		return runWithTray(ctx, stop, session, sinks, dashboardURL(opts.listen))
	}

	if !opts.headless {
		win := render.NewWindow(windowTitle)
		defer win.Close()
		session.SetDisplay(win)
	}

	_, err = session.Run(ctx)
	return err
}

// runWithTray runs the session in the background while the tray menu owns
// the main thread. Either side ending stops the other.
func runWithTray(ctx context.Context, stop context.CancelFunc, session *app.Session, sinks *publish.Multi, dashboard string) error {
	t := tray.New(session.Mode())
	sinks.Add(t)

	t.OnMode(func(m control.Mode) {
		if err := session.SwitchMode(m); err != nil {
			log.Printf("switch mode: %v", err)
		}
	})
	t.OnCommand(func(name string) {
		if err := session.Exec(name); err != nil {
			log.Printf("tray command %s: %v", name, err)
		}
	})
	t.OnDashboard(func() {
		if dashboard == "" {
			log.Printf("dashboard disabled: no listen address")
			return
		}
		if err := openBrowser(dashboard); err != nil {
			log.Printf("open dashboard: %v", err)
		}
	})
	t.OnQuit(stop)

	done := make(chan error, 1)
	go func() {
		_, err := session.Run(ctx)
		done <- err
		t.Quit()
	}()

	t.Run()
	stop()
	return <-done
}

func newEstimator(config detector.Config) (detector.Detector, error) {
	d, err := detector.NewMediaPipeDetector(config)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// initialMode picks the flag value, then the mode of the previous session,
// then mouse mode.
func initialMode(flagValue string, st *store.Store) (control.Mode, error) {
	if flagValue != "" {
		m, err := control.ParseMode(flagValue)
		if err != nil {
			return 0, fmt.Errorf("invalid -mode: %w", err)
		}
		return m, nil
	}

	last, err := st.Settings().Get(store.SettingLastMode)
	if errors.Is(err, store.ErrNotFound) {
		return control.ModeMouse, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load last mode: %w", err)
	}
	m, err := control.ParseMode(last)
	if err != nil {
		log.Printf("ignoring stored mode %q: %v", last, err)
		return control.ModeMouse, nil
	}
	return m, nil
}

func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".mudra")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// findWebDir searches for the dashboard in "web", "../web", "../../web"
// and <dataDir>/web. It returns "" when none exists.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// dashboardURL turns a listen address into a local URL.
func dashboardURL(listen string) string {
	if listen == "" {
		return ""
	}
	if listen[0] == ':' {
		return "http://localhost" + listen
	}
	return "http://" + listen
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
	return cmd.Start()
}
