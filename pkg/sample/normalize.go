package sample

import (
	"errors"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
)

var (
	// ErrEmptySampleSet is returned when no patches were sampled.
	ErrEmptySampleSet = errors.New("no valid samples, check source image")

	// ErrDegenerateRange is returned when every patch sampled to the
	// same tone, leaving nothing to normalize against.
	ErrDegenerateRange = errors.New("sample range is degenerate, max equals min")
)

// Normalizer rescales sampled tones so the observed dynamic range
// spans the full output range.
//
// The rescaling rule is fixed to truncation: normalized values are
// floor((s - min) * factor) with the subtraction saturating at zero,
// so calibration points are bit-for-bit reproducible.
type Normalizer struct {
	// MaxTone is the full-scale tone value the samples are stretched to.
	MaxTone int

	// Reversed reverses the normalized sequence, reconciling targets
	// printed light-to-dark with targets printed dark-to-light. Only
	// the index correspondence changes, not the magnitudes.
	Reversed bool

	// NumCores bounds the worker count for whole-raster normalization.
	// Zero means all available cores.
	NumCores int
}

// Factor computes the sample floor and the affine scale that stretches
// the observed range [min, max] onto [0, MaxTone].
func (n Normalizer) Factor(s Set) (min uint16, factor float64, err error) {
	min, ok := s.Min()
	if !ok {
		return 0, 0, ErrEmptySampleSet
	}
	max, _ := s.Max()
	if max == min {
		return 0, 0, ErrDegenerateRange
	}
	return min, float64(n.MaxTone) / float64(max-min), nil
}

// Normalize rescales the sample set onto [0, MaxTone]. The input set
// is left untouched.
func (n Normalizer) Normalize(s Set) (Set, error) {
	min, factor, err := n.Factor(s)
	if err != nil {
		return nil, err
	}

	out := make(Set, len(s))
	for i, v := range s {
		out[i] = normalizeTone(v, min, factor)
	}
	if n.Reversed {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// NormalizeImage applies the same affine map pixelwise over a whole
// raster, producing the normalized preview image. Rows are processed
// in parallel; each worker writes disjoint rows, so the result is
// identical to sequential execution.
func (n Normalizer) NormalizeImage(img *image.Gray16, min uint16, factor float64) *image.Gray16 {
	b := img.Bounds()
	out := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))

	workers := n.NumCores
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > b.Dy() {
		workers = b.Dy()
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	rows := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				for x := 0; x < b.Dx(); x++ {
					v := img.Gray16At(b.Min.X+x, b.Min.Y+y).Y
					out.SetGray16(x, y, color.Gray16{Y: normalizeTone(v, min, factor)})
				}
			}
		}()
	}
	for y := 0; y < b.Dy(); y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	return out
}

// normalizeTone maps one tone through the affine stretch, saturating
// the subtraction at zero and truncating the scaled value.
func normalizeTone(v, min uint16, factor float64) uint16 {
	if v < min {
		return 0
	}
	scaled := math.Floor(float64(v-min) * factor)
	if scaled > 65535 {
		return 65535
	}
	return uint16(scaled)
}
