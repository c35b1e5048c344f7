package curve

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Interpolation names the interpolation family fitted between
// calibration points. The tag is persisted with the curve.
type Interpolation string

const (
	// InterpLinear fits straight segments between points.
	InterpLinear Interpolation = "linear"

	// InterpAkima fits a local cubic Akima spline, which stays tame
	// around the clustered points a clipped response produces.
	InterpAkima Interpolation = "akima"
)

// ToneCurve is a continuous interpolation function through the
// calibration points, evaluated with clamping at the domain ends.
// It is immutable once fitted, so any number of apply runs may share
// one curve concurrently.
type ToneCurve struct {
	points []Point
	kind   Interpolation

	predictor interp.Predictor
	minX      float64
	maxX      float64
	constant  float64
}

// Fit builds a ToneCurve through every supplied point. Points must be
// strictly increasing in Target; a single point degenerates to a
// constant curve.
func Fit(points []Point, kind Interpolation) (*ToneCurve, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("cannot fit a curve through zero calibration points")
	}
	for i := 1; i < len(points); i++ {
		if points[i].Target <= points[i-1].Target {
			return nil, fmt.Errorf("calibration points must be strictly increasing in target tone, got %d after %d",
				points[i].Target, points[i-1].Target)
		}
	}

	c := &ToneCurve{
		points: append([]Point(nil), points...),
		kind:   kind,
		minX:   float64(points[0].Target),
		maxX:   float64(points[len(points)-1].Target),
	}

	if len(points) == 1 {
		c.constant = float64(points[0].Input)
		return c, nil
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Target)
		ys[i] = float64(p.Input)
	}

	switch kind {
	case InterpLinear:
		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("failed to fit linear curve: %w", err)
		}
		c.predictor = &pl
	case InterpAkima:
		var ak interp.AkimaSpline
		if err := ak.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("failed to fit akima curve: %w", err)
		}
		c.predictor = &ak
	default:
		return nil, fmt.Errorf("unknown interpolation %q", kind)
	}

	return c, nil
}

// EvaluateClamped evaluates the curve at x. Arguments outside the
// fitted domain return the boundary point's value; the curve never
// extrapolates, so evaluation is total over [0, max tone].
func (c *ToneCurve) EvaluateClamped(x float64) float64 {
	if c.predictor == nil {
		return c.constant
	}
	if x < c.minX {
		x = c.minX
	}
	if x > c.maxX {
		x = c.maxX
	}
	return c.predictor.Predict(x)
}

// Points returns a copy of the calibration points the curve passes
// through, in target order.
func (c *ToneCurve) Points() []Point {
	return append([]Point(nil), c.points...)
}

// Kind returns the interpolation family the curve was fitted with.
func (c *ToneCurve) Kind() Interpolation {
	return c.kind
}
