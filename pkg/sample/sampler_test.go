package sample

import (
	"image"
	"image/color"
	"testing"

	"stepwedge/pkg/grid"
	"stepwedge/pkg/pattern"
)

func fillGray16(img *image.Gray16, r image.Rectangle, tone uint16) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray16(x, y, color.Gray16{Y: tone})
		}
	}
}

// TestMeanUniformRectangle verifies that a uniformly filled rectangle
// samples to exactly its fill value regardless of size, including a
// single pixel.
func TestMeanUniformRectangle(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 100, 100))
	fillGray16(img, img.Bounds(), 1234)

	rects := []image.Rectangle{
		image.Rect(0, 0, 100, 100),
		image.Rect(10, 10, 60, 60),
		image.Rect(99, 99, 100, 100), // 1x1
	}
	for _, r := range rects {
		if got := meanGray16(img, r); got != 1234 {
			t.Errorf("Rect %v: expected mean 1234, got %d", r, got)
		}
	}
}

func TestMeanTruncates(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 1})
	img.SetGray16(1, 0, color.Gray16{Y: 2})
	img.SetGray16(0, 1, color.Gray16{Y: 2})
	img.SetGray16(1, 1, color.Gray16{Y: 2})

	// 7 / 4 truncates to 1.
	if got := meanGray16(img, img.Bounds()); got != 1 {
		t.Errorf("Expected truncated mean 1, got %d", got)
	}
}

func TestSamplePatches(t *testing.T) {
	desc, err := pattern.New(4, 2, 200, 65535)
	if err != nil {
		t.Fatalf("Failed to build descriptor: %v", err)
	}

	img := image.NewGray16(image.Rect(0, 0, 200, 200))
	for n := 0; n < desc.Count; n++ {
		row, col := desc.PatchCell(n)
		fillGray16(img, image.Rect(col*100, row*100, (col+1)*100, (row+1)*100), uint16(n*1000))
	}

	samples, err := Sampler{}.SamplePatches(img, desc, grid.Geometry{SquareSize: 100})
	if err != nil {
		t.Fatalf("Sampling failed: %v", err)
	}
	if len(samples) != desc.Count {
		t.Fatalf("Expected %d samples, got %d", desc.Count, len(samples))
	}
	for n, s := range samples {
		if s != uint16(n*1000) {
			t.Errorf("Patch %d: expected %d, got %d", n, n*1000, s)
		}
	}
}

// TestSamplePatchesSmallSquares verifies the margin cap: patches
// smaller than twice the margin still keep a nonempty window.
func TestSamplePatchesSmallSquares(t *testing.T) {
	desc, err := pattern.New(4, 2, 8, 65535)
	if err != nil {
		t.Fatalf("Failed to build descriptor: %v", err)
	}

	img := image.NewGray16(image.Rect(0, 0, 8, 8))
	fillGray16(img, img.Bounds(), 777)

	samples, err := Sampler{Margin: 25}.SamplePatches(img, desc, grid.Geometry{SquareSize: 4})
	if err != nil {
		t.Fatalf("Sampling failed: %v", err)
	}
	for n, s := range samples {
		if s != 777 {
			t.Errorf("Patch %d: expected 777, got %d", n, s)
		}
	}
}

func TestSamplePatchesOutsideImage(t *testing.T) {
	desc, err := pattern.New(4, 2, 200, 65535)
	if err != nil {
		t.Fatalf("Failed to build descriptor: %v", err)
	}
	img := image.NewGray16(image.Rect(0, 0, 50, 50))

	if _, err := (Sampler{}).SamplePatches(img, desc, grid.Geometry{OriginX: 500, OriginY: 500, SquareSize: 100}); err == nil {
		t.Error("Expected an error for a grid outside the scan")
	}
}

func TestSetMinMax(t *testing.T) {
	s := Set{300, 100, 200}
	if min, ok := s.Min(); !ok || min != 100 {
		t.Errorf("Expected min 100, got %d (ok=%v)", min, ok)
	}
	if max, ok := s.Max(); !ok || max != 300 {
		t.Errorf("Expected max 300, got %d (ok=%v)", max, ok)
	}

	var empty Set
	if _, ok := empty.Min(); ok {
		t.Error("Expected no min for an empty set")
	}
	if _, ok := empty.Max(); ok {
		t.Error("Expected no max for an empty set")
	}
}
