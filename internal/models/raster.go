package models

import (
	"image"
	"image/color"
)

// ScanPair couples the two renderings of one decoded scan: the
// full-precision 16-bit raster the tone math runs on, and the 8-bit
// derivative used for edge and line detection.
type ScanPair struct {
	// Gray16 is the working raster for sampling and correction.
	Gray16 *image.Gray16

	// Gray8 is the reduced-depth raster for grid detection.
	Gray8 *image.Gray

	// Filename is where the scan was decoded from, for messages.
	Filename string
}

// NewScanPair converts a decoded image into both working depths. A
// raster that is already 16-bit grayscale is used as is; anything else
// goes through the standard grayscale conversion.
func NewScanPair(img image.Image, filename string) ScanPair {
	g16 := toGray16(img)
	return ScanPair{
		Gray16:   g16,
		Gray8:    toGray8(g16),
		Filename: filename,
	}
}

func toGray16(img image.Image) *image.Gray16 {
	if g, ok := img.(*image.Gray16); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			out.SetGray16(x, y, c)
		}
	}
	return out
}

func toGray8(img *image.Gray16) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.Gray{Y: uint8(img.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)})
		}
	}
	return out
}
