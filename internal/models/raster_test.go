package models

import (
	"image"
	"image/color"
	"testing"
)

func TestNewScanPairReusesGray16(t *testing.T) {
	src := image.NewGray16(image.Rect(0, 0, 4, 3))
	src.SetGray16(1, 2, color.Gray16{Y: 0xabcd})

	pair := NewScanPair(src, "scan.tif")

	if pair.Gray16 != src {
		t.Error("Expected a 16-bit grayscale source to be reused as is")
	}
	if pair.Filename != "scan.tif" {
		t.Errorf("Expected filename scan.tif, got %q", pair.Filename)
	}
	if got := pair.Gray8.GrayAt(1, 2).Y; got != 0xab {
		t.Errorf("Expected reduced-depth value 0xab, got 0x%02x", got)
	}
}

func TestNewScanPairConvertsColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	src.Set(11, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(12, 11, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	pair := NewScanPair(src, "scan.png")

	b := pair.Gray16.Bounds()
	if b.Min.X != 0 || b.Min.Y != 0 || b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("Expected a zero-origin 4x2 raster, got %v", b)
	}
	if got := pair.Gray16.Gray16At(1, 0).Y; got != 0xffff {
		t.Errorf("Expected white to convert to 0xffff, got 0x%04x", got)
	}
	if got := pair.Gray16.Gray16At(2, 1).Y; got != 0 {
		t.Errorf("Expected black to convert to 0, got 0x%04x", got)
	}
	if got := pair.Gray8.GrayAt(1, 0).Y; got != 0xff {
		t.Errorf("Expected white in the 8-bit raster, got 0x%02x", got)
	}
}
