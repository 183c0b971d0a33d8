package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/publish"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/store"
)

// ErrCommandQueueFull is returned by Submit when the session is not keeping
// up with remote commands.
var ErrCommandQueueFull = errors.New("command queue full")

// Display shows annotated frames and reports key presses.
type Display interface {
	Show(img *gocv.Mat)
	// PollKey returns the pressed key code or -1.
	PollKey() int
	ToggleFullscreen()
	Close() error
}

// FrameSink receives every annotated frame, e.g. for streaming. The frame is
// only valid for the duration of the call.
type FrameSink interface {
	PublishFrame(img *gocv.Mat)
}

// Session is one run of the capture loop. Run must be called at most once.
// Submit, Exec, SwitchMode and Mode are safe for concurrent use.
type Session struct {
	config     Config
	camera     capture.Camera
	source     *hand.Source
	dispatcher *control.Dispatcher
	canvas     *render.MatCanvas
	stats      *Stats

	display Display
	frames  FrameSink
	sink    publish.Sink

	commands  chan Command
	mode      atomic.Int32
	showMouse bool
	quit      bool
	failing   bool
	now       func() time.Time
}

// NewSession creates a session reading from camera and detecting with source.
func NewSession(config Config, camera capture.Camera, source *hand.Source) *Session {
	if config.CommandBuffer < 1 {
		config.CommandBuffer = DefaultConfig().CommandBuffer
	}

	s := &Session{
		config:     config,
		camera:     camera,
		source:     source,
		dispatcher: control.NewDispatcher(config.Capture.Width, nil),
		commands:   make(chan Command, config.CommandBuffer),
		showMouse:  config.ShowMouse,
		now:        time.Now,
	}
	if config.InitialMode.Valid() {
		s.dispatcher.Switch(config.InitialMode)
	}
	s.mode.Store(int32(s.dispatcher.Mode()))
	return s
}

// SetDisplay attaches a window. Without one the session runs headless.
func (s *Session) SetDisplay(d Display) {
	s.display = d
}

// SetFrameSink attaches a consumer of annotated frames.
func (s *Session) SetFrameSink(f FrameSink) {
	s.frames = f
}

// SetSink attaches the signal and summary publisher.
func (s *Session) SetSink(sink publish.Sink) {
	s.sink = sink
}

// Dispatcher returns the mode dispatcher. It must only be used from the
// goroutine running the session.
func (s *Session) Dispatcher() *control.Dispatcher {
	return s.dispatcher
}

// Mode returns the active control mode as of the last applied command.
func (s *Session) Mode() control.Mode {
	return control.Mode(s.mode.Load())
}

// Detector names the hand detector in use.
func (s *Session) Detector() string {
	return s.source.Kind().String()
}

// Submit queues cmd for the next iteration of the loop.
func (s *Session) Submit(cmd Command) error {
	select {
	case s.commands <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Exec parses and queues a command given by name.
func (s *Session) Exec(name string) error {
	cmd, err := ParseCommand(name)
	if err != nil {
		return err
	}
	return s.Submit(cmd)
}

// SwitchMode queues a mode switch.
func (s *Session) SwitchMode(m control.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", control.ErrUnknownMode, int(m))
	}
	return s.Submit(Command{Op: OpSwitchMode, Mode: m})
}

// Run reads frames until ctx is cancelled, a quit command arrives or the
// camera stops delivering frames. The returned summary covers every frame
// processed.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	if err := s.camera.Open(); err != nil {
		return Summary{}, fmt.Errorf("open camera: %w", err)
	}
	defer s.camera.Close()
	defer func() {
		if s.canvas != nil {
			s.canvas.Close()
		}
	}()

	s.stats = NewStats(s.now())
	log.Printf("session started: detector=%s mode=%s", s.Detector(), s.dispatcher.Mode())

	for ctx.Err() == nil && !s.quit {
		start := s.now()

		frame, err := s.camera.ReadFrame()
		if err != nil {
			log.Printf("read frame: %v", err)
			break
		}

		// Skipped frames are still shown so the window keeps taking keys.
		s.process(frame, start)
		if s.display != nil {
			s.display.Show(frame)
			if cmd, ok := KeyCommand(s.display.PollKey()); ok {
				s.apply(cmd, frame)
			}
		}
		s.drain(frame)
		frame.Close()

		s.throttle(ctx, start)
	}

	return s.finish(), nil
}

// process runs detection, control and rendering on one frame. A frame
// whose detection fails is left unannotated and not counted.
func (s *Session) process(frame *gocv.Mat, start time.Time) {
	render.Mirror(frame)
	s.ensureCanvas(frame.Cols(), frame.Rows())

	records, err := s.source.Records(frame)
	if err != nil {
		log.Printf("skipping frame: %v", err)
		return
	}
	s.stats.Count(records)

	var sig *control.Signal
	if rec := primary(records); rec != nil {
		out, err := s.dispatcher.Process(rec, start)
		if err != nil {
			log.Printf("dispatch: %v", err)
		} else {
			sig = &out
			s.publish(publish.KindSignal, out)
		}
	}

	render.DrawHands(frame, records, s.source.Trails())
	render.DrawMode(frame, s.dispatcher, sig, s.canvas)
	if s.showMouse {
		if p, ok := render.MousePosition(records); ok {
			render.DrawMouseMarker(frame, p)
		}
	}

	s.stats.Frame(s.now().Sub(start))
	render.DrawHUD(frame, render.HUD{
		FPS:      s.stats.FPS(),
		Hands:    len(records),
		Detector: s.Detector(),
		Gestures: s.stats.Gestures(),
	})

	if s.frames != nil {
		s.frames.PublishFrame(frame)
	}
}

// primary is the first record carrying landmarks.
func primary(records []hand.Record) *hand.Record {
	for i := range records {
		if records[i].HasLandmarks() {
			return &records[i]
		}
	}
	return nil
}

func (s *Session) ensureCanvas(width, height int) {
	if s.canvas != nil {
		return
	}
	s.canvas = render.NewMatCanvas(width, height)
	s.dispatcher.Drawing.SetCanvas(s.canvas)
	s.dispatcher.Keyboard.FrameWidth = width
}

// drain applies every queued command.
func (s *Session) drain(frame *gocv.Mat) {
	for {
		select {
		case cmd := <-s.commands:
			s.apply(cmd, frame)
		default:
			return
		}
	}
}

func (s *Session) apply(cmd Command, frame *gocv.Mat) {
	switch cmd.Op {
	case OpQuit:
		s.quit = true
	case OpFullscreen:
		if s.display != nil {
			s.display.ToggleFullscreen()
		}
	case OpScreenshot:
		path, err := render.SaveScreenshot(s.config.ScreenshotDir, frame, s.now())
		if err != nil {
			log.Printf("screenshot: %v", err)
			return
		}
		log.Printf("screenshot saved: %s", path)
	case OpResetCounters:
		s.stats.ResetGestures()
		log.Println("gesture counter reset")
	case OpToggleMouse:
		s.showMouse = !s.showMouse
		log.Printf("mouse visualization: %s", onOff(s.showMouse))
	case OpSwitchMode:
		if err := s.dispatcher.Switch(cmd.Mode); err != nil {
			log.Printf("switch mode: %v", err)
			return
		}
		s.mode.Store(int32(s.dispatcher.Mode()))
	case OpClearCanvas:
		s.dispatcher.Clear()
	case OpUndoStroke:
		s.dispatcher.Undo()
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// throttle sleeps out the rest of the frame interval.
func (s *Session) throttle(ctx context.Context, start time.Time) {
	if s.config.FPSLimit <= 0 {
		return
	}
	wait := time.Second/time.Duration(s.config.FPSLimit) - s.now().Sub(start)
	if wait <= 0 {
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// publish sends v to the sink, logging only the first of a run of failures.
func (s *Session) publish(kind string, v any) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(kind, v); err != nil {
		if !s.failing {
			log.Printf("publish %s: %v", kind, err)
		}
		s.failing = true
		return
	}
	s.failing = false
}

func (s *Session) finish() Summary {
	sum := s.stats.Summary(s.now())
	sum.Detector = s.Detector()
	sum.Mode = s.dispatcher.Mode().Key()
	sum.Text = s.dispatcher.Keyboard.Text()

	if st := s.config.Store; st != nil {
		rec := sum.record()
		if err := st.Sessions().Create(rec); err != nil {
			log.Printf("save session: %v", err)
		} else {
			sum.ID = rec.ID
		}
		if err := st.Settings().Set(store.SettingLastMode, sum.Mode); err != nil {
			log.Printf("save last mode: %v", err)
		}
	}

	s.failing = false
	s.publish(publish.KindSummary, sum)
	log.Print(sum.Report())
	return sum
}

func (sum Summary) record() *store.Session {
	gestures := make([]store.GestureStat, len(sum.Gestures))
	for i, g := range sum.Gestures {
		gestures[i] = store.GestureStat{Name: g.Name, Count: g.Count}
	}
	return &store.Session{
		StartedAt: sum.StartedAt,
		Duration:  sum.Duration,
		Frames:    sum.Frames,
		AvgFPS:    sum.AvgFPS,
		Detector:  sum.Detector,
		Mode:      sum.Mode,
		Text:      sum.Text,
		Gestures:  gestures,
	}
}

// Report formats the summary for the log.
func (sum Summary) Report() string {
	var b strings.Builder
	b.WriteString("session summary:\n")
	fmt.Fprintf(&b, "  total frames: %d\n", sum.Frames)
	fmt.Fprintf(&b, "  duration: %.1fs\n", sum.Duration.Seconds())
	fmt.Fprintf(&b, "  average fps: %.1f\n", sum.AvgFPS)
	b.WriteString("  gesture statistics:\n")
	for _, g := range sum.Gestures {
		fmt.Fprintf(&b, "    %s: %d detections\n", g.Name, g.Count)
	}
	return b.String()
}
