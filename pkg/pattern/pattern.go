// Package pattern describes the geometry of a printed step-wedge
// calibration target: how many patches it carries, how they are laid
// out, and which nominal tone each patch was rendered with.
package pattern

import (
	"fmt"
)

// Descriptor holds the static parameters of a calibration target.
// It is immutable once constructed and shared read-only by every
// downstream stage of the calibration pipeline.
type Descriptor struct {
	// Count is the total number of patches on the target.
	Count int

	// Columns is the number of patches per row.
	Columns int

	// Rows is the number of rows needed to hold Count patches.
	Rows int

	// Width is the nominal rendered width of the patch area in pixels.
	Width int

	// Height is the nominal rendered height of the patch area in pixels.
	Height int

	// SquareSize is the nominal edge length of one patch in pixels.
	SquareSize int

	// MaxTone is the full-scale tone value (65535 for 16-bit grayscale).
	MaxTone int

	// Step is the tonal distance between two consecutive patches.
	Step int
}

// New builds a Descriptor and validates its invariants. The defaults
// used by this system are New(101, 10, 1000, 65535).
func New(count, columns, width, maxTone int) (*Descriptor, error) {
	if count < 2 {
		return nil, fmt.Errorf("patch count must be at least 2, got %d", count)
	}
	if columns < 1 {
		return nil, fmt.Errorf("columns must be at least 1, got %d", columns)
	}
	if width < columns {
		return nil, fmt.Errorf("width %d cannot hold %d columns", width, columns)
	}
	if maxTone < count-1 {
		// Step would be zero and the target tones would not be
		// strictly increasing.
		return nil, fmt.Errorf("max tone %d too small for %d patches", maxTone, count)
	}

	rows := (count + columns - 1) / columns
	squareSize := (width + columns - 1) / columns

	return &Descriptor{
		Count:      count,
		Columns:    columns,
		Rows:       rows,
		Width:      width,
		Height:     rows * squareSize,
		SquareSize: squareSize,
		MaxTone:    maxTone,
		Step:       maxTone / (count - 1),
	}, nil
}

// Default returns the descriptor for the standard 101-patch target.
func Default() *Descriptor {
	d, err := New(101, 10, 1000, 65535)
	if err != nil {
		// The standard parameters always validate.
		panic(err)
	}
	return d
}

// TargetTones returns the strictly increasing sequence of nominal
// patch tones, i*Step for i in [0, Count). The first entry is always 0
// and the last never exceeds MaxTone.
func (d *Descriptor) TargetTones() []int {
	tones := make([]int, d.Count)
	for i := range tones {
		tones[i] = i * d.Step
	}
	return tones
}

// PatchCell returns the row and column of patch n in row-major order.
func (d *Descriptor) PatchCell(n int) (row, col int) {
	return n / d.Columns, n % d.Columns
}
