package control

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
)

// Pinch distances mapped to the ends of the volume scale.
const (
	VolumeMinDistance = 0.03
	VolumeMaxDistance = 0.15
)

// VolumeSignal is the per-frame output of the volume mode.
type VolumeSignal struct {
	// Percent is this frame's unsmoothed level.
	Percent float64 `json:"percent"`
	// Level is the smoothed level truncated to an integer.
	Level  int  `json:"level"`
	Open   bool `json:"open"`
	Closed bool `json:"closed"`
}

// Volume reads the thumb-index spread as a level between 0 and 100.
type Volume struct {
	level *EMA
}

// NewVolume creates a volume mode.
func NewVolume() *Volume {
	return &Volume{level: NewEMA(0.8)}
}

// VolumePercent maps a thumb-index distance onto 0..100 without smoothing.
func VolumePercent(distance float64) float64 {
	normalized := (distance - VolumeMinDistance) / (VolumeMaxDistance - VolumeMinDistance)
	return math.Max(0, math.Min(100, normalized*100))
}

// Update computes the volume signal for one frame.
func (v *Volume) Update(rec *hand.Record, _ time.Time) VolumeSignal {
	d := rec.Distance(detector.ThumbTip, detector.IndexTip)
	percent := VolumePercent(d)

	return VolumeSignal{
		Percent: percent,
		Level:   int(v.level.Update(percent)),
		Open:    d > VolumeMaxDistance,
		Closed:  d < VolumeMinDistance,
	}
}

// Level returns the smoothed level.
func (v *Volume) Level() float64 {
	return v.level.Value()
}
