// Package sample reduces the patches of a located step-wedge scan to
// per-patch tone values and rescales them to the full tonal range.
package sample

import (
	"fmt"
	"image"

	"stepwedge/pkg/grid"
	"stepwedge/pkg/pattern"
)

// Set is the ordered sequence of sampled patch tones, one mean value
// per patch in row-major patch order.
type Set []uint16

// Min returns the smallest sample. The second result is false for an
// empty set.
func (s Set) Min() (uint16, bool) {
	if len(s) == 0 {
		return 0, false
	}
	min := s[0]
	for _, v := range s[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the largest sample. The second result is false for an
// empty set.
func (s Set) Max() (uint16, bool) {
	if len(s) == 0 {
		return 0, false
	}
	max := s[0]
	for _, v := range s[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// Sampler reduces each patch region of a scan to one tone value.
type Sampler struct {
	// Margin is how many pixels to inset the sampling window on every
	// side of a patch, keeping clear of the patch borders and the
	// printed index label in the corner. It is capped at a quarter of
	// the patch size so small patches keep a nonempty window.
	Margin int
}

// DefaultMargin matches the label and border clearance of the standard
// rendered target.
const DefaultMargin = 25

// SamplePatches walks the patch grid in row-major order and samples
// the mean tone of every patch from the full-precision raster. It is a
// pure function of the image and geometry.
func (s Sampler) SamplePatches(img *image.Gray16, desc *pattern.Descriptor, geom grid.Geometry) (Set, error) {
	margin := s.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	if max := geom.SquareSize / 4; margin > max {
		margin = max
	}

	samples := make(Set, desc.Count)
	for n := 0; n < desc.Count; n++ {
		row, col := desc.PatchCell(n)
		window := image.Rect(
			geom.OriginX+col*geom.SquareSize+margin,
			geom.OriginY+row*geom.SquareSize+margin,
			geom.OriginX+(col+1)*geom.SquareSize-margin,
			geom.OriginY+(row+1)*geom.SquareSize-margin,
		).Intersect(img.Bounds())
		if window.Empty() {
			return nil, fmt.Errorf("patch %d window lies outside the scan", n)
		}
		samples[n] = meanGray16(img, window)
	}
	return samples, nil
}

// meanGray16 is the arithmetic mean of all pixel tones inside r,
// truncated to an integer. The accumulation is integral so the result
// is bit-for-bit reproducible.
func meanGray16(img *image.Gray16, r image.Rectangle) uint16 {
	var total uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			total += uint64(img.Gray16At(x, y).Y)
		}
	}
	count := uint64(r.Dx()) * uint64(r.Dy())
	return uint16(total / count)
}
