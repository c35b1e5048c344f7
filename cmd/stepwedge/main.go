package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/tiff"

	"stepwedge/internal/models"
	"stepwedge/pkg/calibration"
	"stepwedge/pkg/config"
	"stepwedge/pkg/curve"
	"stepwedge/pkg/render"
)

func main() {
	mode := flag.String("mode", "analyze", "Operation to run: analyze or apply")
	input := flag.String("input", "", "Input image (16-bit grayscale TIFF or PNG)")
	curvePath := flag.String("curve", "curve.yaml", "Curve file to write (analyze) or read (apply)")
	output := flag.String("output", "corrected.tif", "Corrected image to write (apply)")
	configPath := flag.String("config", "stepwedge.yaml", "Configuration file")
	debugDir := flag.String("debug-dir", "", "Directory for diagnostic images (analyze)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration file and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch *mode {
	case "analyze":
		runAnalyze(cfg, *input, *curvePath, *debugDir)
	case "apply":
		runApply(cfg, *input, *curvePath, *output)
	default:
		log.Fatalf("Unknown mode %q, want analyze or apply", *mode)
	}
}

func runAnalyze(cfg *config.Config, input, curvePath, debugDir string) {
	params, err := cfg.BuildParams()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	img, err := decodeImage(input)
	if err != nil {
		log.Fatalf("Failed to read scan: %v", err)
	}
	scan := models.NewScanPair(img, filepath.Base(input))

	analyzer := calibration.NewAnalyzer(params)
	startTime := time.Now()
	results, err := analyzer.Analyze(scan)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := curve.SaveCurve(curvePath, results.Curve); err != nil {
		log.Fatalf("Failed to save curve: %v", err)
	}

	fmt.Printf("\nAnalysis completed in %.2f seconds\n", time.Since(startTime).Seconds())
	fmt.Printf("Correction curve saved to: %s\n", curvePath)
	fmt.Printf("Sample statistics:\n")
	fmt.Printf("  min: %d  max: %d  dynamic range: %d\n",
		results.Stats.Min, results.Stats.Max, results.Stats.DynamicRange)
	fmt.Printf("  mean: %.1f  stddev: %.1f  normalize factor: %.4f\n",
		results.Stats.Mean, results.Stats.StdDev, results.Stats.NormalizeFactor)

	if debugDir == "" && !cfg.Output.SaveDiagnostics {
		return
	}
	if debugDir == "" {
		debugDir = filepath.Dir(curvePath)
	}
	if err := os.MkdirAll(debugDir, 0755); err != nil {
		log.Fatalf("Failed to create debug directory: %v", err)
	}

	diagnostics := map[string]image.Image{
		"normalized.png": results.NormalizedImage,
		"curve.png":      render.CurvePlot(results.Curve),
		"histogram.png":  render.HistogramPlot(results.Histogram),
	}
	if results.Edges != nil {
		diagnostics["lines.png"] = render.LinesOverlay(results.Edges, results.Lines, cfg.Locator.AngleTolerance)
	}
	for name, im := range diagnostics {
		path := filepath.Join(debugDir, name)
		if err := encodePNG(path, im); err != nil {
			log.Printf("Warning: failed to save %s: %v", name, err)
			continue
		}
		fmt.Printf("Diagnostic written: %s\n", path)
	}
}

func runApply(cfg *config.Config, input, curvePath, output string) {
	c, err := curve.LoadCurve(curvePath)
	if err != nil {
		log.Fatalf("Failed to load curve: %v", err)
	}

	img, err := decodeImage(input)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}
	scan := models.NewScanPair(img, filepath.Base(input))

	startTime := time.Now()
	corrected := curve.Apply(scan.Gray16, c, cfg.Processing.NumCores)

	if err := encodeImage(output, corrected); err != nil {
		log.Fatalf("Failed to write corrected image: %v", err)
	}
	fmt.Printf("Corrected image written to %s in %.2f seconds\n", output, time.Since(startTime).Seconds())
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return tiff.Decode(f)
	case ".png":
		return png.Decode(f)
	}
	return nil, fmt.Errorf("unsupported image format %q", filepath.Ext(path))
}

func encodeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		if err := tiff.Encode(f, img, nil); err != nil {
			return err
		}
	case ".png":
		if err := png.Encode(f, img); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
	return f.Close()
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}
