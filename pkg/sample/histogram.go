package sample

import "image"

// Histogram is a 256-bucket tone distribution of a 16-bit raster.
// Bucket index is the high byte of the tone and counters saturate
// instead of wrapping. Purely diagnostic; it never feeds back into
// the curve math.
type Histogram [256]uint32

// BuildHistogram counts every pixel of the raster into its bucket.
func BuildHistogram(img *image.Gray16) *Histogram {
	var h Histogram
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			h.observe(img.Gray16At(x, y).Y)
		}
	}
	return &h
}

func (h *Histogram) observe(tone uint16) {
	bucket := tone >> 8
	if h[bucket] != ^uint32(0) {
		h[bucket]++
	}
}

// Max returns the largest bucket count, used to scale plots.
func (h *Histogram) Max() uint32 {
	var max uint32
	for _, v := range h {
		if v > max {
			max = v
		}
	}
	return max
}
