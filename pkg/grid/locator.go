// Package grid locates the patch grid of a scanned step-wedge target.
// It offers two interchangeable strategies: a fixed subdivision for
// scans that are already cropped to the pattern, and a detection-based
// locator that finds the printed grid lines with a Canny edge detector
// followed by a Hough line transform.
package grid

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
)

// ErrGridNotFound is returned by detection-based location when too few
// grid lines were found to establish the patch geometry.
var ErrGridNotFound = errors.New("failed to find sufficient lines for patch detection")

// Geometry describes where the patch grid sits in a scanned raster.
type Geometry struct {
	// OriginX, OriginY is the top-left pixel of the first patch.
	OriginX int
	OriginY int

	// SquareSize is the pixel edge length of one patch.
	SquareSize int
}

// Locator finds the patch grid in an 8-bit intensity rendering of the
// scan. Implementations are pure: the same image always yields the
// same geometry.
type Locator interface {
	Locate(img *image.Gray) (Geometry, error)
}

// FixedLocator assumes the scan is already cropped and aligned to the
// pattern exactly. It is cheap and fails silently on misaligned scans;
// that limitation is accepted, deskewing is out of scope.
type FixedLocator struct {
	// Columns is the number of patches per row.
	Columns int
}

// Locate subdivides the image width evenly: origin (0,0), square size
// width/columns.
func (l FixedLocator) Locate(img *image.Gray) (Geometry, error) {
	if l.Columns < 1 {
		return Geometry{}, fmt.Errorf("fixed locator needs at least 1 column, got %d", l.Columns)
	}
	size := img.Bounds().Dx() / l.Columns
	if size < 1 {
		return Geometry{}, fmt.Errorf("image width %d too small for %d columns", img.Bounds().Dx(), l.Columns)
	}
	return Geometry{OriginX: 0, OriginY: 0, SquareSize: size}, nil
}

// HoughLocator finds the printed grid lines in the scan. The grid is
// assumed to be axis-aligned: only near-horizontal and near-vertical
// detected lines are considered.
type HoughLocator struct {
	// Columns and Rows describe the expected grid. Detection needs at
	// least Columns+1 vertical and Rows+1 horizontal lines.
	Columns int
	Rows    int

	// CannyLow and CannyHigh are the hysteresis thresholds of the edge
	// detector. Zero values fall back to 50 and 100.
	CannyLow  float64
	CannyHigh float64

	// VoteThreshold is the minimum accumulator count for a detected
	// line. Zero falls back to 200.
	VoteThreshold int

	// SuppressionRadius suppresses weaker lines too close to a
	// stronger one in (offset, angle) space. Zero falls back to 8.
	SuppressionRadius int

	// AngleTolerance is how far from 0 or 90 degrees a line may be
	// and still count as horizontal or vertical. Zero falls back to 1.
	AngleTolerance int
}

func (l HoughLocator) options() LineDetectionOptions {
	opts := LineDetectionOptions{
		VoteThreshold:     l.VoteThreshold,
		SuppressionRadius: l.SuppressionRadius,
	}
	if opts.VoteThreshold == 0 {
		opts.VoteThreshold = 200
	}
	if opts.SuppressionRadius == 0 {
		opts.SuppressionRadius = 8
	}
	return opts
}

func (l HoughLocator) thresholds() (low, high float64) {
	low, high = l.CannyLow, l.CannyHigh
	if low == 0 {
		low = 50
	}
	if high == 0 {
		high = 100
	}
	return low, high
}

func (l HoughLocator) tolerance() int {
	if l.AngleTolerance == 0 {
		return 1
	}
	return l.AngleTolerance
}

// Locate runs edge detection and the line transform, then derives the
// grid geometry from the detected lines.
func (l HoughLocator) Locate(img *image.Gray) (Geometry, error) {
	geom, _, _, err := l.Detect(img)
	return geom, err
}

// Detect is Locate plus the intermediate artifacts: the edge map and
// the detected lines, which callers may hand to a diagnostic renderer.
func (l HoughLocator) Detect(img *image.Gray) (Geometry, *image.Gray, []PolarLine, error) {
	low, high := l.thresholds()
	edges := Canny(img, low, high)
	lines := DetectLines(edges, l.options())
	geom, err := l.geometryFromLines(lines)
	return geom, edges, lines, err
}

// geometryFromLines keeps only the axis-aligned lines, demands enough
// of them to delimit the expected grid, and reads the origin and patch
// size off the first line offsets.
func (l HoughLocator) geometryFromLines(lines []PolarLine) (Geometry, error) {
	tol := l.tolerance()

	var vertical, horizontal []PolarLine
	for _, line := range lines {
		switch {
		case line.IsVertical(tol):
			vertical = append(vertical, line)
		case line.IsHorizontal(tol):
			horizontal = append(horizontal, line)
		}
	}

	if len(vertical) < l.Columns+1 || len(horizontal) < l.Rows+1 {
		return Geometry{}, fmt.Errorf("%w: got %d vertical and %d horizontal lines, need %d and %d",
			ErrGridNotFound, len(vertical), len(horizontal), l.Columns+1, l.Rows+1)
	}

	sort.Slice(vertical, func(i, j int) bool { return vertical[i].R < vertical[j].R })
	sort.Slice(horizontal, func(i, j int) bool { return horizontal[i].R < horizontal[j].R })

	// For vertical lines R is the x coordinate, for horizontal lines
	// the y coordinate. The first pair of vertical lines bounds the
	// first patch column, so their spacing is the patch size.
	return Geometry{
		OriginX:    int(vertical[0].R),
		OriginY:    int(horizontal[0].R),
		SquareSize: int(math.Floor(vertical[1].R - vertical[0].R)),
	}, nil
}
