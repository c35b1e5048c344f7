// Package render draws the diagnostic rasters of an analyze run: the
// detected grid lines over the edge map, the fitted curve, and the
// tone histogram. Everything here is display only and never feeds
// back into the calibration math.
package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"stepwedge/pkg/curve"
	"stepwedge/pkg/grid"
	"stepwedge/pkg/sample"
)

// plotSize is the edge length of the curve and histogram plots. One
// plot pixel covers 64 tones, so the full 16-bit range fits exactly.
const plotSize = 1024

// LinesOverlay renders the binary edge map in white on black with the
// kept grid lines drawn over it in green.
func LinesOverlay(edges *image.Gray, lines []grid.PolarLine, tol int) image.Image {
	b := edges.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())

	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGB(1, 1, 1)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if edges.GrayAt(b.Min.X+x, b.Min.Y+y).Y > 0 {
				dc.SetPixel(x, y)
			}
		}
	}

	dc.SetRGB(0, 1, 0)
	dc.SetLineWidth(1)
	reach := math.Hypot(float64(b.Dx()), float64(b.Dy()))
	for _, l := range lines {
		if !l.IsHorizontal(tol) && !l.IsVertical(tol) {
			continue
		}
		// Base point on the line along its normal, extended in both
		// directions along the line itself.
		rad := float64(l.AngleDeg) * math.Pi / 180
		bx, by := l.R*math.Sin(rad), l.R*math.Cos(rad)
		dx, dy := math.Cos(rad), -math.Sin(rad)
		dc.DrawLine(bx-reach*dx, by-reach*dy, bx+reach*dx, by+reach*dy)
		dc.Stroke()
	}

	return dc.Image()
}

// CurvePlot renders the fitted curve sampled every 64 tones, with the
// target tone on the x axis and the corrected input tone on the y
// axis, origin at the bottom left.
func CurvePlot(c *curve.ToneCurve) image.Image {
	dc := gg.NewContext(plotSize, plotSize)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGB(0, 1, 0)
	for x := 0; x < plotSize; x++ {
		v := c.EvaluateClamped(float64(x) * 64)
		y := plotSize - 1 - int(v/64)
		if y < 0 {
			y = 0
		}
		if y >= plotSize {
			y = plotSize - 1
		}
		dc.SetPixel(x, y)
	}

	return dc.Image()
}

// HistogramPlot renders the 256 tone buckets as vertical bars scaled
// against the fullest bucket.
func HistogramPlot(h *sample.Histogram) image.Image {
	dc := gg.NewContext(plotSize, plotSize)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	max := h.Max()
	if max == 0 {
		return dc.Image()
	}

	dc.SetRGB(0.5, 0.5, 0.5)
	for i, v := range h {
		height := float64(v) / float64(max) * plotSize
		if height < 1 {
			continue
		}
		dc.DrawRectangle(float64(i*4), plotSize-height, 4, height)
		dc.Fill()
	}

	return dc.Image()
}
