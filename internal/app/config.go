// Package app runs a capture session: frames are read, hands detected,
// the primary hand dispatched to the active control mode and the result
// rendered and published.
package app

import (
	"fmt"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds configuration options for a session.
type Config struct {
	// Store receives the summary of the session. Optional.
	Store *store.Store

	Capture  capture.Config
	Detector detector.Config

	// ForceFallback skips the pose estimator and uses the contour detector.
	ForceFallback bool

	// FPSLimit caps the loop rate; zero disables the cap.
	FPSLimit int

	// ScreenshotDir is where screenshots are written.
	ScreenshotDir string

	// InitialMode is the active control mode at start.
	InitialMode control.Mode

	// ShowMouse enables the mouse position overlay at start.
	ShowMouse bool

	// CommandBuffer is the capacity of the remote command queue.
	CommandBuffer int
}

// DefaultConfig returns the settings used by the command line tool.
func DefaultConfig() Config {
	return Config{
		Capture:       capture.DefaultConfig(),
		Detector:      detector.DefaultConfig(),
		FPSLimit:      capture.DefaultFPS,
		ScreenshotDir: ".",
		InitialMode:   control.ModeMouse,
		ShowMouse:     true,
		CommandBuffer: 16,
	}
}

// Validate checks the nested configurations and the session limits.
func (c Config) Validate() error {
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if c.FPSLimit < 0 {
		return fmt.Errorf("fps limit must not be negative, got %d", c.FPSLimit)
	}
	if !c.InitialMode.Valid() {
		return fmt.Errorf("%w: %d", control.ErrUnknownMode, int(c.InitialMode))
	}
	if c.CommandBuffer < 1 {
		return fmt.Errorf("command buffer must be positive, got %d", c.CommandBuffer)
	}
	return nil
}
