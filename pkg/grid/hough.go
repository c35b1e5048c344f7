package grid

import (
	"image"
	"math"
	"sort"
)

// PolarLine is a straight line in normal form: every point (x, y) on
// the line satisfies x*sin(angle) + y*cos(angle) = R with the angle in
// degrees. Angle 0 describes a horizontal line at y = R; angle 90 a
// vertical line at x = R.
type PolarLine struct {
	AngleDeg int
	R        float64
}

// IsHorizontal reports whether the line is within tol degrees of
// horizontal.
func (l PolarLine) IsHorizontal(tol int) bool {
	return l.AngleDeg <= tol || l.AngleDeg >= 180-tol
}

// IsVertical reports whether the line is within tol degrees of
// vertical.
func (l PolarLine) IsVertical(tol int) bool {
	return l.AngleDeg >= 90-tol && l.AngleDeg <= 90+tol
}

// LineDetectionOptions tunes the Hough transform.
type LineDetectionOptions struct {
	// VoteThreshold is the minimum number of edge pixels that must
	// agree on a line before it is reported.
	VoteThreshold int

	// SuppressionRadius drops a candidate line when a stronger line
	// was already accepted within this distance in offset and angle.
	SuppressionRadius int
}

// DetectLines runs a straight-line Hough transform over a binary edge
// map. Each edge pixel votes for every line passing through it at one
// degree angular resolution; accumulator cells over the vote threshold
// are reported strongest first, with weaker near-duplicates suppressed.
// The result is deterministic for a given edge map.
func DetectLines(edges *image.Gray, opts LineDetectionOptions) []PolarLine {
	w := edges.Bounds().Dx()
	h := edges.Bounds().Dy()
	minX := edges.Bounds().Min.X
	minY := edges.Bounds().Min.Y

	// Offsets range over [-diag, diag]; shift them up by diag so the
	// accumulator can be a flat slice.
	diag := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	nR := 2*diag + 1

	sin := make([]float64, 180)
	cos := make([]float64, 180)
	for a := 0; a < 180; a++ {
		rad := float64(a) * math.Pi / 180
		sin[a] = math.Sin(rad)
		cos[a] = math.Cos(rad)
	}

	acc := make([]int, 180*nR)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.GrayAt(minX+x, minY+y).Y == 0 {
				continue
			}
			for a := 0; a < 180; a++ {
				r := int(math.Round(float64(x)*sin[a] + float64(y)*cos[a]))
				acc[a*nR+r+diag]++
			}
		}
	}

	type candidate struct {
		votes int
		angle int
		r     int
	}
	var candidates []candidate
	for a := 0; a < 180; a++ {
		for r := 0; r < nR; r++ {
			if v := acc[a*nR+r]; v >= opts.VoteThreshold {
				candidates = append(candidates, candidate{votes: v, angle: a, r: r - diag})
			}
		}
	}

	// Strongest first; ties broken by angle then offset so detection
	// order never depends on map iteration or scheduling.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].votes != candidates[j].votes {
			return candidates[i].votes > candidates[j].votes
		}
		if candidates[i].angle != candidates[j].angle {
			return candidates[i].angle < candidates[j].angle
		}
		return candidates[i].r < candidates[j].r
	})

	var lines []PolarLine
	for _, c := range candidates {
		suppressed := false
		for _, l := range lines {
			if angularDistance(c.angle, l.AngleDeg) <= opts.SuppressionRadius &&
				math.Abs(float64(c.r)-l.R) <= float64(opts.SuppressionRadius) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			lines = append(lines, PolarLine{AngleDeg: c.angle, R: float64(c.r)})
		}
	}
	return lines
}

// angularDistance is the distance between two line angles on the
// 180-degree circle.
func angularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 90 {
		d = 180 - d
	}
	return d
}
