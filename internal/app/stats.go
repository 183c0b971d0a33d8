package app

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/render"
)

// FPSWindow is the number of recent frame times averaged for the FPS readout.
const FPSWindow = 30

// Stats accumulates per-session counters. It is owned by the session loop.
type Stats struct {
	start      time.Time
	frames     int
	frameTimes []float64
	next       int
	gestures   map[string]int
}

// NewStats starts a statistics window at start.
func NewStats(start time.Time) *Stats {
	return &Stats{
		start:      start,
		frameTimes: make([]float64, 0, FPSWindow),
		gestures:   make(map[string]int),
	}
}

// Frame records the processing time of one frame.
func (s *Stats) Frame(d time.Duration) {
	s.frames++
	if len(s.frameTimes) < FPSWindow {
		s.frameTimes = append(s.frameTimes, d.Seconds())
		return
	}
	s.frameTimes[s.next] = d.Seconds()
	s.next = (s.next + 1) % FPSWindow
}

// Count adds one detection per record to its gesture counter.
func (s *Stats) Count(records []hand.Record) {
	for i := range records {
		s.gestures[records[i].Gesture.Name]++
	}
}

// ResetGestures clears the gesture counters.
func (s *Stats) ResetGestures() {
	clear(s.gestures)
}

// Frames returns the number of frames recorded.
func (s *Stats) Frames() int {
	return s.frames
}

// FPS is the inverse of the mean of the last FPSWindow frame times.
func (s *Stats) FPS() float64 {
	if len(s.frameTimes) == 0 {
		return 0
	}
	mean := stat.Mean(s.frameTimes, nil)
	if mean <= 0 {
		return 0
	}
	return 1 / mean
}

// Gestures returns the counters sorted by count, highest first. Ties are
// ordered by name.
func (s *Stats) Gestures() []render.GestureCount {
	out := make([]render.GestureCount, 0, len(s.gestures))
	for name, n := range s.gestures {
		out = append(out, render.GestureCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Summary is the end-of-session report.
type Summary struct {
	ID        string                `json:"id,omitempty"`
	StartedAt time.Time             `json:"started_at"`
	Duration  time.Duration         `json:"duration"`
	Frames    int                   `json:"frames"`
	AvgFPS    float64               `json:"avg_fps"`
	Detector  string                `json:"detector"`
	Mode      string                `json:"mode"`
	Text      string                `json:"text,omitempty"`
	Gestures  []render.GestureCount `json:"gestures"`
}

// Summary closes the statistics window at end.
func (s *Stats) Summary(end time.Time) Summary {
	sum := Summary{
		StartedAt: s.start,
		Duration:  end.Sub(s.start),
		Frames:    s.frames,
		Gestures:  s.Gestures(),
	}
	if secs := sum.Duration.Seconds(); secs > 0 {
		sum.AvgFPS = float64(s.frames) / secs
	}
	return sum
}
