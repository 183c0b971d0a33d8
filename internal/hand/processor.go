package hand

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

const (
	// BoxMargin is added around the landmark extent, in pixels.
	BoxMargin = 20
	// VolumeScale maps a thumb-index distance of 0.3 to a level of 100.
	VolumeScale = 333
)

// Processor converts estimator output into hand records.
type Processor struct {
	maxHands int
	trails   *Trails
}

// NewProcessor creates a Processor keeping at most maxHands records per frame.
// trails may be nil.
func NewProcessor(maxHands int, trails *Trails) *Processor {
	return &Processor{maxHands: maxHands, trails: trails}
}

// Records builds one record per detected hand for a width x height frame.
func (p *Processor) Records(hands []detector.HandLandmarks, width, height int) ([]Record, error) {
	if p.maxHands > 0 && len(hands) > p.maxHands {
		hands = hands[:p.maxHands]
	}

	records := make([]Record, 0, len(hands))
	for i := range hands {
		rec, err := p.record(i, &hands[i], width, height)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}
		if p.trails != nil {
			p.trails.Push(rec.ID, rec.Center)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *Processor) record(id int, h *detector.HandLandmarks, width, height int) (Record, error) {
	result, err := gesture.Classify(h.Points[:])
	if err != nil {
		return Record{}, err
	}

	landmarks := make([]detector.Point3D, detector.NumLandmarks)
	copy(landmarks, h.Points[:])

	pixels := make([]image.Point, detector.NumLandmarks)
	xs := make([]float64, detector.NumLandmarks)
	ys := make([]float64, detector.NumLandmarks)
	for i, lm := range landmarks {
		pixels[i] = detector.ToPixel(lm, width, height)
		xs[i] = float64(pixels[i].X)
		ys[i] = float64(pixels[i].Y)
	}

	return Record{
		ID:           id,
		Handedness:   h.Handedness,
		Confidence:   h.Score,
		Landmarks:    landmarks,
		Pixels:       pixels,
		Center:       image.Pt(int(stat.Mean(xs, nil)), int(stat.Mean(ys, nil))),
		BBox:         boundingBox(pixels),
		Gesture:      result,
		TipDistances: tipDistances(h),
		Volume:       Volume(h.Distance(detector.ThumbTip, detector.IndexTip)),
	}, nil
}

// boundingBox returns the pixel extent grown by BoxMargin. Only the minimum
// corner is clamped to the frame origin.
func boundingBox(pixels []image.Point) image.Rectangle {
	r := image.Rectangle{Min: pixels[0], Max: pixels[0]}
	for _, p := range pixels[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}

	return image.Rectangle{
		Min: image.Pt(max(0, r.Min.X-BoxMargin), max(0, r.Min.Y-BoxMargin)),
		Max: r.Max.Add(image.Pt(BoxMargin, BoxMargin)),
	}
}

func tipDistances(h *detector.HandLandmarks) map[string]float64 {
	out := make(map[string]float64, 10)
	for a := detector.Thumb; a < detector.NumFingers; a++ {
		for b := a + 1; b < detector.NumFingers; b++ {
			out[TipPair(a, b)] = h.Distance(a.Tip(), b.Tip())
		}
	}
	return out
}

// Volume maps a thumb-index distance linearly onto 0..100.
func Volume(distance float64) float64 {
	return math.Max(0, math.Min(100, distance*VolumeScale))
}
