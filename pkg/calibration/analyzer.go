// Package calibration orchestrates the analyze and apply runs. An
// analyze run turns a scanned calibration target into a persisted
// tone curve; an apply run maps any raster through such a curve.
// Both are pure boundary operations, independent of any front end.
package calibration

import (
	"fmt"
	"image"
	"runtime"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"stepwedge/internal/models"
	"stepwedge/pkg/curve"
	"stepwedge/pkg/grid"
	"stepwedge/pkg/pattern"
	"stepwedge/pkg/sample"
)

// Params configures an analyze run.
type Params struct {
	// Pattern describes the printed calibration target.
	Pattern *pattern.Descriptor

	// Locator is the grid-location strategy to run over the scan.
	Locator grid.Locator

	// Margin insets the per-patch sampling window; zero uses the
	// default clearance.
	Margin int

	// Reversed reverses the normalized samples for targets printed in
	// the opposite tonal order.
	Reversed bool

	// Interpolation selects the curve fit; empty means linear.
	Interpolation curve.Interpolation

	// NumCores bounds the parallel pixel loops. Zero uses all cores.
	NumCores int

	// Verbose prints step-by-step progress.
	Verbose bool
}

// SampleStats are diagnostic statistics over the raw patch samples.
// They are reported alongside the curve and never feed back into it.
type SampleStats struct {
	Min             uint16
	Max             uint16
	Mean            float64
	StdDev          float64
	DynamicRange    int
	NormalizeFactor float64
}

// Results is the complete output of one successful analyze run.
type Results struct {
	// Geometry is where the patch grid was found in the scan.
	Geometry grid.Geometry

	// Samples are the raw per-patch means in row-major patch order.
	Samples sample.Set

	// Normalized are the samples stretched onto the full tonal range,
	// possibly reversed.
	Normalized sample.Set

	// Stats summarizes the raw samples.
	Stats SampleStats

	// Curve is the fitted correction curve, the persisted artifact.
	Curve *curve.ToneCurve

	// Histogram is the tone distribution of the normalized preview.
	Histogram *sample.Histogram

	// NormalizedImage is the full-range preview of the scan.
	NormalizedImage *image.Gray16

	// Edges and Lines are the detection artifacts, present only when
	// a detection-based locator ran. Both are for display only.
	Edges *image.Gray
	Lines []grid.PolarLine
}

// Analyzer runs the calibration pipeline: locate the patch grid,
// sample each patch, normalize the samples, invert the response into
// calibration points, and fit the tone curve.
type Analyzer struct {
	params *Params
}

// NewAnalyzer creates an analyzer with the provided parameters,
// filling in defaults for anything unset.
func NewAnalyzer(params *Params) *Analyzer {
	if params.Pattern == nil {
		params.Pattern = pattern.Default()
	}
	if params.Locator == nil {
		params.Locator = grid.HoughLocator{
			Columns: params.Pattern.Columns,
			Rows:    params.Pattern.Rows,
		}
	}
	if params.Interpolation == "" {
		params.Interpolation = curve.InterpLinear
	}
	if params.NumCores <= 0 {
		params.NumCores = runtime.NumCPU()
	}
	return &Analyzer{params: params}
}

// Analyze runs the full pipeline over one decoded scan. It either
// returns a complete result with a valid curve or a terminal error
// with no partial output; the computation is deterministic, so a
// failure means the scan itself needs to be redone, not retried.
func (a *Analyzer) Analyze(scan models.ScanPair) (*Results, error) {
	desc := a.params.Pattern
	results := &Results{}

	a.logf("Step 1: Locating patch grid...")
	if detector, ok := a.params.Locator.(grid.HoughLocator); ok {
		geom, edges, lines, err := detector.Detect(scan.Gray8)
		if err != nil {
			return nil, fmt.Errorf("failed to locate patch grid: %w", err)
		}
		results.Geometry = geom
		results.Edges = edges
		results.Lines = lines
	} else {
		geom, err := a.params.Locator.Locate(scan.Gray8)
		if err != nil {
			return nil, fmt.Errorf("failed to locate patch grid: %w", err)
		}
		results.Geometry = geom
	}
	a.logf("Origin: (%d, %d), square size: %d",
		results.Geometry.OriginX, results.Geometry.OriginY, results.Geometry.SquareSize)

	a.logf("Step 2: Sampling %d patches...", desc.Count)
	sampler := sample.Sampler{Margin: a.params.Margin}
	samples, err := sampler.SamplePatches(scan.Gray16, desc, results.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to sample patches: %w", err)
	}
	results.Samples = samples

	a.logf("Step 3: Normalizing samples to full range...")
	normalizer := sample.Normalizer{
		MaxTone:  desc.MaxTone,
		Reversed: a.params.Reversed,
		NumCores: a.params.NumCores,
	}
	min, factor, err := normalizer.Factor(samples)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize samples: %w", err)
	}
	normalized, err := normalizer.Normalize(samples)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize samples: %w", err)
	}
	results.Normalized = normalized
	results.Stats = sampleStats(samples, factor)
	a.logf("Sample min: %d, max: %d, dynamic range: %d, normalize factor: %f",
		results.Stats.Min, results.Stats.Max, results.Stats.DynamicRange, factor)

	results.NormalizedImage = normalizer.NormalizeImage(scan.Gray16, min, factor)
	results.Histogram = sample.BuildHistogram(results.NormalizedImage)

	a.logf("Step 4: Inverting the tonal response...")
	points, err := curve.Invert(desc.TargetTones(), normalized, desc.MaxTone)
	if err != nil {
		return nil, fmt.Errorf("failed to invert tonal response: %w", err)
	}

	a.logf("Step 5: Fitting the correction curve...")
	fitted, err := curve.Fit(points, a.params.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("failed to fit correction curve: %w", err)
	}
	results.Curve = fitted

	return results, nil
}

// Apply maps a raster through a previously fitted curve. It never
// fails for an in-range 16-bit input because evaluation is clamped.
func (a *Analyzer) Apply(img *image.Gray16, c *curve.ToneCurve) *image.Gray16 {
	return curve.Apply(img, c, a.params.NumCores)
}

// Apply maps a raster through a fitted curve using all cores. It is
// the package-level form for callers without an Analyzer.
func Apply(img *image.Gray16, c *curve.ToneCurve) *image.Gray16 {
	return curve.Apply(img, c, 0)
}

func sampleStats(samples sample.Set, factor float64) SampleStats {
	vals := make([]float64, len(samples))
	for i, v := range samples {
		vals[i] = float64(v)
	}
	min, _ := samples.Min()
	max, _ := samples.Max()
	return SampleStats{
		Min:             min,
		Max:             max,
		Mean:            stat.Mean(vals, nil),
		StdDev:          stat.StdDev(vals, nil),
		DynamicRange:    int(floats.Max(vals) - floats.Min(vals)),
		NormalizeFactor: factor,
	}
}

func (a *Analyzer) logf(format string, args ...interface{}) {
	if a.params.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}
