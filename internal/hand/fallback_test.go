package hand

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/testdata"
)

func TestCentroid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	tests := []struct {
		name    string
		polygon []image.Point
		box     image.Rectangle
		want    image.Point
	}{
		{
			name:    "square",
			polygon: []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
			box:     image.Rect(0, 0, 10, 10),
			want:    image.Pt(5, 5),
		},
		{
			name:    "offset rectangle",
			polygon: []image.Point{{100, 100}, {300, 100}, {300, 260}, {100, 260}},
			box:     image.Rect(100, 100, 301, 261),
			want:    image.Pt(200, 180),
		},
		{
			name:    "triangle clockwise",
			polygon: []image.Point{{0, 0}, {0, 30}, {30, 0}},
			box:     image.Rect(0, 0, 30, 30),
			want:    image.Pt(10, 10),
		},
		{
			name:    "triangle counter clockwise",
			polygon: []image.Point{{0, 0}, {30, 0}, {0, 30}},
			box:     image.Rect(0, 0, 30, 30),
			want:    image.Pt(10, 10),
		},
		{
			name:    "zero area uses box center",
			polygon: []image.Point{{0, 0}, {10, 0}, {20, 0}},
			box:     image.Rect(0, 0, 21, 1),
			want:    image.Pt(10, 0),
		},
		{
			name:    "segment uses box center",
			polygon: []image.Point{{2, 2}, {12, 2}},
			box:     image.Rect(2, 2, 13, 3),
			want:    image.Pt(7, 2),
		},
		{
			name:    "empty polygon uses box center",
			polygon: nil,
			box:     image.Rect(4, 6, 8, 10),
			want:    image.Pt(6, 8),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := centroid(tt.polygon, tt.box); got != tt.want {
				t.Errorf("centroid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLargestBlobs(t *testing.T) {
	tests := []struct {
		name  string
		blobs []blob
		want  []blob
	}{
		{
			name:  "keeps two largest",
			blobs: []blob{{0, 700}, {1, 9000}, {2, 600}, {3, 800}},
			want:  []blob{{1, 9000}, {3, 800}},
		},
		{
			name:  "drops small blobs after ranking",
			blobs: []blob{{0, 499}, {1, 1200}, {2, 300}},
			want:  []blob{{1, 1200}},
		},
		{
			name:  "area at the limit is kept",
			blobs: []blob{{0, 500}},
			want:  []blob{{0, 500}},
		},
		{
			name:  "nothing large enough",
			blobs: []blob{{0, 10}, {1, 20}},
			want:  []blob{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := largestBlobs(tt.blobs, maxContourHands, MinContourArea)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(blob{})); diff != "" {
				t.Errorf("largestBlobs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContourRecord(t *testing.T) {
	contour := []image.Point{{0, 0}, {40, 0}, {40, 40}, {0, 40}}
	hull := []image.Point{{0, 0}, {20, -5}, {40, 0}, {45, 20}, {40, 40}, {0, 40}}
	box := image.Rect(0, -5, 46, 41)

	first := contourRecord(0, contour, hull, box)
	second := contourRecord(1, contour, hull, box)

	if first.Handedness != "Right" || second.Handedness != "Left" {
		t.Errorf("handedness = %s/%s, want Right/Left", first.Handedness, second.Handedness)
	}
	if first.ID != 0 || second.ID != 1 {
		t.Errorf("ids = %d/%d, want 0/1", first.ID, second.ID)
	}
	if first.Fingers != 5 {
		t.Errorf("Fingers = %d, want 5", first.Fingers)
	}
	if first.Gesture.Name != "Hand (5 fingers)" {
		t.Errorf("gesture name = %q", first.Gesture.Name)
	}
	if first.Confidence != ContourConfidence || first.Gesture.Confidence != ContourConfidence {
		t.Errorf("confidence = %f/%f, want %f", first.Confidence, first.Gesture.Confidence, ContourConfidence)
	}
	if first.Center != image.Pt(20, 20) {
		t.Errorf("center = %v, want (20,20)", first.Center)
	}
	if first.HasLandmarks() {
		t.Error("contour records carry no landmarks")
	}
}

func TestFallbackDetector_Records(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	trails := NewTrails()
	d := NewFallbackDetector(trails)
	defer d.Close()

	t.Run("finds one skin region", func(t *testing.T) {
		frame := testdata.SkinFrame(image.Rect(100, 100, 300, 250))
		defer frame.Close()

		records, err := d.Records(&frame)
		if err != nil {
			t.Fatalf("Records() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		rec := records[0]
		if rec.Handedness != "Right" {
			t.Errorf("handedness = %s, want Right", rec.Handedness)
		}
		if !strings.HasPrefix(rec.Gesture.Name, "Hand (") {
			t.Errorf("gesture name = %q", rec.Gesture.Name)
		}
		if dx, dy := rec.Center.X-200, rec.Center.Y-175; dx*dx+dy*dy > 9 {
			t.Errorf("center = %v, want near (200,175)", rec.Center)
		}
		if len(trails.Points(0)) == 0 {
			t.Error("center should be pushed to the trail")
		}
	})

	t.Run("largest region ranks first", func(t *testing.T) {
		frame := testdata.SkinFrame(image.Rect(20, 20, 80, 80), image.Rect(300, 100, 600, 400))
		defer frame.Close()

		records, err := d.Records(&frame)
		if err != nil {
			t.Fatalf("Records() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if !records[0].BBox.In(image.Rect(290, 90, 610, 410)) {
			t.Errorf("first record should be the large region, got bbox %v", records[0].BBox)
		}
		if records[1].Handedness != "Left" {
			t.Errorf("second record handedness = %s, want Left", records[1].Handedness)
		}
	})

	t.Run("ignores specks", func(t *testing.T) {
		frame := testdata.SkinFrame(image.Rect(10, 10, 20, 20))
		defer frame.Close()

		records, err := d.Records(&frame)
		if err != nil {
			t.Fatalf("Records() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})

	t.Run("rejects empty frame", func(t *testing.T) {
		empty := gocv.NewMat()
		defer empty.Close()

		if _, err := d.Records(&empty); err == nil {
			t.Error("expected error for empty frame")
		}
	})
}

func TestNewSource(t *testing.T) {
	cfg := detector.DefaultConfig()

	t.Run("uses estimator when available", func(t *testing.T) {
		mock := detector.NewMockDetector()
		src := NewSource(cfg, false, func(detector.Config) (detector.Detector, error) {
			return mock, nil
		})
		defer src.Close()

		if src.Kind() != KindLandmarks {
			t.Errorf("Kind() = %s, want landmarks", src.Kind())
		}
	})

	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	t.Run("falls back when estimator fails", func(t *testing.T) {
		calls := 0
		src := NewSource(cfg, false, func(detector.Config) (detector.Detector, error) {
			calls++
			return nil, errors.New("no model")
		})
		defer src.Close()

		if src.Kind() != KindContour {
			t.Errorf("Kind() = %s, want contour", src.Kind())
		}

		frame := testdata.SkinFrame()
		defer frame.Close()
		for i := 0; i < 3; i++ {
			if _, err := src.Records(&frame); err != nil {
				t.Fatalf("Records() error = %v", err)
			}
		}
		if calls != 1 {
			t.Errorf("estimator constructed %d times, want 1", calls)
		}
	})

	t.Run("forced fallback skips estimator", func(t *testing.T) {
		src := NewSource(cfg, true, func(detector.Config) (detector.Detector, error) {
			t.Fatal("estimator should not be constructed")
			return nil, nil
		})
		defer src.Close()

		if src.Kind() != KindContour {
			t.Errorf("Kind() = %s, want contour", src.Kind())
		}
	})

	t.Run("landmark records from estimator", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetHands([]detector.HandLandmarks{detector.ThumbsUpLandmarks()})
		src := NewSource(cfg, false, func(detector.Config) (detector.Detector, error) {
			return mock, nil
		})
		defer src.Close()

		frame := testdata.SkinFrame()
		defer frame.Close()

		records, err := src.Records(&frame)
		if err != nil {
			t.Fatalf("Records() error = %v", err)
		}
		if len(records) != 1 || records[0].Gesture.Name != "Thumbs Up" {
			t.Fatalf("unexpected records: %+v", records)
		}
		if len(src.Trails().Points(0)) != 1 {
			t.Error("landmark center should be pushed to the trail")
		}

		mock.SetError(errors.New("boom"))
		if _, err := src.Records(&frame); err == nil {
			t.Error("expected detection error")
		}
	})
}
