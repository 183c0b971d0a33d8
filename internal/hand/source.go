package hand

import (
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Kind tells which detector a Source runs.
type Kind int

const (
	// KindLandmarks runs the pose estimator and classifies gestures.
	KindLandmarks Kind = iota
	// KindContour runs the skin colour fallback.
	KindContour
)

func (k Kind) String() string {
	switch k {
	case KindLandmarks:
		return "landmarks"
	case KindContour:
		return "contour"
	default:
		return "unknown"
	}
}

// EstimatorFactory constructs the primary pose estimator.
type EstimatorFactory func(detector.Config) (detector.Detector, error)

// Source produces hand records for frames. Its kind is fixed at construction.
type Source struct {
	kind      Kind
	trails    *Trails
	estimator detector.Detector
	processor *Processor
	fallback  *FallbackDetector
}

// NewSource picks the detector for a session. The fallback is used when
// forceFallback is set or when newEstimator fails; the estimator is never
// retried afterwards.
func NewSource(config detector.Config, forceFallback bool, newEstimator EstimatorFactory) *Source {
	s := &Source{trails: NewTrails()}

	if !forceFallback && newEstimator != nil {
		est, err := newEstimator(config)
		if err == nil {
			s.kind = KindLandmarks
			s.estimator = est
			s.processor = NewProcessor(config.MaxHands, s.trails)
			return s
		}
		log.Printf("pose estimator unavailable, using contour fallback: %v", err)
	}

	s.kind = KindContour
	s.fallback = NewFallbackDetector(s.trails)
	return s
}

// Kind reports which detector the source runs.
func (s *Source) Kind() Kind {
	return s.kind
}

// Trails returns the center history shared by both detectors.
func (s *Source) Trails() *Trails {
	return s.trails
}

// Records detects the hands in a BGR frame.
func (s *Source) Records(frame *gocv.Mat) ([]Record, error) {
	if s.kind == KindContour {
		return s.fallback.Records(frame)
	}

	hands, err := s.estimator.Detect(frame)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	return s.processor.Records(hands, frame.Cols(), frame.Rows())
}

// Close releases the active detector.
func (s *Source) Close() error {
	if s.estimator != nil {
		return s.estimator.Close()
	}
	if s.fallback != nil {
		return s.fallback.Close()
	}
	return nil
}
