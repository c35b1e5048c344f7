package curve

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// The persisted curve is an ordered list of (x, y, interpolation)
// triples. Point order and values round-trip exactly between the
// analyze run that wrote the curve and any later apply run.
type curveDocument struct {
	Points []curveKnot `yaml:"points"`
}

type curveKnot struct {
	X             int    `yaml:"x"`
	Y             int    `yaml:"y"`
	Interpolation string `yaml:"interpolation"`
}

// WriteCurve serializes the curve as YAML.
func WriteCurve(w io.Writer, c *ToneCurve) error {
	doc := curveDocument{Points: make([]curveKnot, 0, len(c.points))}
	for _, p := range c.points {
		doc.Points = append(doc.Points, curveKnot{
			X:             p.Target,
			Y:             p.Input,
			Interpolation: string(c.kind),
		})
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode curve: %w", err)
	}
	return enc.Close()
}

// ReadCurve deserializes a curve written by WriteCurve and refits the
// interpolation function through its points.
func ReadCurve(r io.Reader) (*ToneCurve, error) {
	var doc curveDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode curve: %w", err)
	}
	if len(doc.Points) == 0 {
		return nil, fmt.Errorf("curve file holds no points")
	}

	kind := Interpolation(doc.Points[0].Interpolation)
	switch kind {
	case InterpLinear, InterpAkima:
	default:
		return nil, fmt.Errorf("unknown interpolation %q in curve file", doc.Points[0].Interpolation)
	}

	points := make([]Point, len(doc.Points))
	for i, k := range doc.Points {
		if Interpolation(k.Interpolation) != kind {
			return nil, fmt.Errorf("curve file mixes interpolations %q and %q", kind, k.Interpolation)
		}
		points[i] = Point{Target: k.X, Input: k.Y}
	}
	return Fit(points, kind)
}

// SaveCurve writes the curve to a file.
func SaveCurve(path string, c *ToneCurve) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create curve file: %w", err)
	}
	defer f.Close()
	if err := WriteCurve(f, c); err != nil {
		return err
	}
	return f.Close()
}

// LoadCurve reads a curve from a file.
func LoadCurve(path string) (*ToneCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open curve file: %w", err)
	}
	defer f.Close()
	return ReadCurve(f)
}
