package grid

import (
	"image"
	"math"
)

// Canny runs the Canny edge detector over an 8-bit grayscale image and
// returns a binary edge map (255 on edges, 0 elsewhere). low and high
// are the hysteresis thresholds applied to the gradient magnitude:
// pixels above high seed edges, pixels between low and high survive
// only when connected to a seed.
func Canny(src *image.Gray, low, high float64) *image.Gray {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return out
	}

	blurred := gaussianBlur(src)
	mag, dir := sobel(blurred, w, h)
	thin := nonMaxSuppress(mag, dir, w, h)
	hysteresis(thin, out, w, h, low, high)
	return out
}

// gaussian5 is a 5x5 Gaussian kernel with sigma 1.4, the usual
// smoothing stage before gradient estimation.
var gaussian5 = [5][5]float64{
	{2, 4, 5, 4, 2},
	{4, 9, 12, 9, 4},
	{5, 12, 15, 12, 5},
	{4, 9, 12, 9, 4},
	{2, 4, 5, 4, 2},
}

const gaussian5Sum = 159.0

func gaussianBlur(src *image.Gray) []float64 {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	minX := src.Bounds().Min.X
	minY := src.Bounds().Min.Y

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					sy := clampInt(y+ky, 0, h-1)
					v := float64(src.GrayAt(minX+sx, minY+sy).Y)
					acc += v * gaussian5[ky+2][kx+2]
				}
			}
			out[y*w+x] = acc / gaussian5Sum
		}
	}
	return out
}

// sobel returns the gradient magnitude and the orientation quantized
// to four directions (0: horizontal, 1: 45 degrees, 2: vertical,
// 3: 135 degrees).
func sobel(img []float64, w, h int) (mag []float64, dir []uint8) {
	mag = make([]float64, w*h)
	dir = make([]uint8, w*h)

	at := func(x, y int) float64 {
		return img[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			i := y*w + x
			mag[i] = math.Hypot(gx, gy)

			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[i] = 0
			case angle < 67.5:
				dir[i] = 1
			case angle < 112.5:
				dir[i] = 2
			default:
				dir[i] = 3
			}
		}
	}
	return mag, dir
}

// nonMaxSuppress keeps a pixel only when its gradient magnitude is a
// local maximum along the gradient direction, thinning edges to a
// single pixel width.
func nonMaxSuppress(mag []float64, dir []uint8, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			var a, b float64
			switch dir[i] {
			case 0: // gradient along x, compare left/right
				a, b = mag[i-1], mag[i+1]
			case 1:
				a, b = mag[(y-1)*w+x+1], mag[(y+1)*w+x-1]
			case 2: // gradient along y, compare up/down
				a, b = mag[(y-1)*w+x], mag[(y+1)*w+x]
			default:
				a, b = mag[(y-1)*w+x-1], mag[(y+1)*w+x+1]
			}
			if mag[i] >= a && mag[i] >= b {
				out[i] = mag[i]
			}
		}
	}
	return out
}

// hysteresis applies the double threshold: strong pixels seed edges
// and weak pixels are kept only when 8-connected to a strong one.
func hysteresis(mag []float64, out *image.Gray, w, h int, low, high float64) {
	const edge = 255

	var stack []int
	for i, m := range mag {
		if m >= high && out.Pix[i] != edge {
			out.Pix[i] = edge
			stack = append(stack, i)
			for len(stack) > 0 {
				j := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := j%w, j/w
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						n := ny*w + nx
						if out.Pix[n] != edge && mag[n] >= low {
							out.Pix[n] = edge
							stack = append(stack, n)
						}
					}
				}
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
