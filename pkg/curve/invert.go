// Package curve turns a measured tonal response into a correction
// curve and applies that curve to rasters. The curve is the single
// artifact exchanged between an analyze run and any number of later
// apply runs.
package curve

import (
	"errors"
	"fmt"
)

// ErrToneOutOfRange is returned when the bracket search finds no
// usable bound for a target tone.
var ErrToneOutOfRange = errors.New("unable to map tones, value out of range")

// Point is one knot of the correction curve: to obtain Target in the
// print, render the pixel at Input.
type Point struct {
	Target int
	Input  int
}

// Invert derives the calibration points from the measured response.
// targets is the strictly increasing sequence of nominal patch tones
// and observed the normalized sample measured for each, paired index
// for index.
//
// For every needle drawn from targets itself the table is bracketed
// from both ends: a forward scan stops at the first observation
// strictly greater than the needle and records the previous entry's
// target as the lower bound (zero when the very first entry already
// exceeds it); a backward scan stops at the first observation strictly
// less than the needle and records the following entry's target as the
// upper bound (maxTone when the last entry is already below it). An
// observation equal to the needle is therefore resolved to its own
// target. The result is the integer midpoint of the two bounds, or
// whichever bound exists alone.
//
// Resolving each direction independently tolerates local
// non-monotonicity from sensor and print noise. When the response
// clips at either extreme, consecutive needles resolve to the same
// bound and the calibration points cluster near the ends of the curve;
// that behavior is intentional and covered by tests.
func Invert(targets []int, observed []uint16, maxTone int) ([]Point, error) {
	if len(targets) != len(observed) {
		return nil, fmt.Errorf("got %d targets but %d observations", len(targets), len(observed))
	}
	points := make([]Point, len(targets))
	for i, needle := range targets {
		input, err := bracketInput(targets, observed, needle, maxTone)
		if err != nil {
			return nil, fmt.Errorf("target tone %d: %w", needle, err)
		}
		points[i] = Point{Target: needle, Input: input}
	}
	return points, nil
}

func bracketInput(targets []int, observed []uint16, needle, maxTone int) (int, error) {
	lower, upper := -1, -1
	haveLower, haveUpper := false, false

	for i, obs := range observed {
		if int(obs) > needle {
			if i == 0 {
				lower = 0
			} else {
				lower = targets[i-1]
			}
			haveLower = true
			break
		}
	}

	for i := len(observed) - 1; i >= 0; i-- {
		if int(observed[i]) < needle {
			if i == len(observed)-1 {
				upper = maxTone
			} else {
				upper = targets[i+1]
			}
			haveUpper = true
			break
		}
	}

	switch {
	case haveLower && haveUpper:
		return (lower + upper) / 2, nil
	case haveLower:
		return lower, nil
	case haveUpper:
		return upper, nil
	}
	return 0, ErrToneOutOfRange
}
