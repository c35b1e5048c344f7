package curve

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// TestCurveRoundTrip verifies that point order, values, and the
// interpolation tag survive a write/read cycle exactly.
func TestCurveRoundTrip(t *testing.T) {
	points := []Point{{0, 3}, {655, 17}, {1310, 1290}, {65500, 65011}}

	for _, kind := range []Interpolation{InterpLinear, InterpAkima} {
		original, err := Fit(points, kind)
		if err != nil {
			t.Fatalf("%s: fit failed: %v", kind, err)
		}

		var buf bytes.Buffer
		if err := WriteCurve(&buf, original); err != nil {
			t.Fatalf("%s: write failed: %v", kind, err)
		}
		restored, err := ReadCurve(&buf)
		if err != nil {
			t.Fatalf("%s: read failed: %v", kind, err)
		}

		if restored.Kind() != kind {
			t.Errorf("Expected interpolation %q, got %q", kind, restored.Kind())
		}
		got := restored.Points()
		if len(got) != len(points) {
			t.Fatalf("Expected %d points, got %d", len(points), len(got))
		}
		for i := range points {
			if got[i] != points[i] {
				t.Errorf("Point %d: expected %v, got %v", i, points[i], got[i])
			}
		}
	}
}

func TestSaveLoadCurveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.yaml")

	original, err := Fit([]Point{{0, 0}, {100, 90}, {200, 210}}, InterpLinear)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := SaveCurve(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored, err := LoadCurve(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, p := range original.Points() {
		if restored.Points()[i] != p {
			t.Errorf("Point %d: expected %v, got %v", i, p, restored.Points()[i])
		}
	}
}

func TestReadCurveRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unknown tag", "points:\n  - {x: 0, y: 0, interpolation: cubic}\n  - {x: 1, y: 1, interpolation: cubic}\n"},
		{"mixed tags", "points:\n  - {x: 0, y: 0, interpolation: linear}\n  - {x: 1, y: 1, interpolation: akima}\n"},
		{"no points", "points: []\n"},
		{"unsorted points", "points:\n  - {x: 5, y: 0, interpolation: linear}\n  - {x: 1, y: 1, interpolation: linear}\n"},
		{"not yaml", "]]]"},
	}
	for _, tc := range cases {
		if _, err := ReadCurve(strings.NewReader(tc.doc)); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}
