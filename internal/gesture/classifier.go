// Package gesture classifies static hand poses from landmark geometry.
package gesture

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Gesture names produced by Classify.
const (
	OpenPalm  = "Open Palm"
	Fist      = "Fist"
	ThumbsUp  = "Thumbs Up"
	OKSign    = "OK Sign"
	PeaceSign = "Peace Sign"
	Unknown   = "Unknown"
)

// CurlRadius is the tip-to-joint distance under which a finger counts as curled.
const CurlRadius = 0.1

// ErrLandmarkCount is returned when a hand does not carry exactly 21 landmarks.
var ErrLandmarkCount = errors.New("hand must have 21 landmarks")

// Result is the outcome of classifying one hand.
type Result struct {
	Name       string                       `json:"name"`
	Confidence float64                      `json:"confidence"`
	Curls      [detector.NumFingers]float64 `json:"curls"`
}

// features are the measurements every rule may look at.
type features struct {
	points   []detector.Point3D
	curls    [detector.NumFingers]float64
	total    float64 // sum of all curls
	nonThumb float64 // sum of index..pinky curls
}

type rule struct {
	name       string
	confidence float64
	match      func(f *features) bool
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{OpenPalm, 0.95, func(f *features) bool {
		return f.total < 1.5
	}},
	{Fist, 0.95, func(f *features) bool {
		return f.total > 4.0
	}},
	{ThumbsUp, 0.85, func(f *features) bool {
		return thumbOut(f) && thumbPointsUp(f.points)
	}},
	// An extended thumb over a closed hand that is not pointing up stops
	// evaluation here.
	{Unknown, 0.0, thumbOut},
	{OKSign, 0.90, func(f *features) bool {
		d := detector.Distance3D(f.points[detector.ThumbTip], f.points[detector.IndexTip])
		return d < 0.05 && f.nonThumb < 2.0
	}},
	{PeaceSign, 0.90, func(f *features) bool {
		c := f.curls
		return c[detector.Index] < 0.5 && c[detector.Middle] < 0.5 &&
			c[detector.Ring] > 0.8 && c[detector.Pinky] > 0.8
	}},
}

func thumbOut(f *features) bool {
	return f.curls[detector.Thumb] < 0.5 && f.nonThumb > 3.5
}

func thumbPointsUp(p []detector.Point3D) bool {
	tip, ip, mcp := p[detector.ThumbTip], p[detector.ThumbIP], p[detector.ThumbMCP]
	return tip.Y < ip.Y && ip.Y < mcp.Y
}

// Classify returns the gesture of a single hand.
func Classify(points []detector.Point3D) (Result, error) {
	if len(points) != detector.NumLandmarks {
		return Result{}, fmt.Errorf("%w: got %d", ErrLandmarkCount, len(points))
	}

	f := &features{points: points, curls: curls(points)}
	for i, c := range f.curls {
		f.total += c
		if i > 0 {
			f.nonThumb += c
		}
	}

	for _, r := range rules {
		if r.match(f) {
			return Result{Name: r.name, Confidence: r.confidence, Curls: f.curls}, nil
		}
	}

	return Result{Name: OpenPalm, Confidence: 0.5, Curls: f.curls}, nil
}

// Curls reports, per finger, 1 when the tip lies within CurlRadius of any
// other joint of the same finger and 0 otherwise.
func Curls(points []detector.Point3D) ([detector.NumFingers]float64, error) {
	if len(points) != detector.NumLandmarks {
		return [detector.NumFingers]float64{}, fmt.Errorf("%w: got %d", ErrLandmarkCount, len(points))
	}
	return curls(points), nil
}

func curls(points []detector.Point3D) [detector.NumFingers]float64 {
	var out [detector.NumFingers]float64
	for f := detector.Thumb; f < detector.NumFingers; f++ {
		chain := f.Chain()
		tip := points[f.Tip()]

		closest := detector.Distance3D(points[chain[0]], tip)
		for _, j := range chain[1 : len(chain)-1] {
			if d := detector.Distance3D(points[j], tip); d < closest {
				closest = d
			}
		}
		if closest < CurlRadius {
			out[f] = 1.0
		}
	}
	return out
}
