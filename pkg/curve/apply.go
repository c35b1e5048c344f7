package curve

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
)

// Apply maps every pixel of a 16-bit grayscale raster through the
// curve, rounding the evaluated value to the nearest tone. Clamped
// evaluation makes this total: it cannot fail for any in-range input.
//
// Rows are processed in parallel over workers goroutines (all cores
// when workers is zero); each writes disjoint rows, so the output is
// identical to sequential execution.
func Apply(img *image.Gray16, c *ToneCurve, workers int) *image.Gray16 {
	b := img.Bounds()
	out := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))

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
					p := img.Gray16At(b.Min.X+x, b.Min.Y+y).Y
					v := math.Round(c.EvaluateClamped(float64(p)))
					if v < 0 {
						v = 0
					}
					if v > 65535 {
						v = 65535
					}
					out.SetGray16(x, y, color.Gray16{Y: uint16(v)})
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
