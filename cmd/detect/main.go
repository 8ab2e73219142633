// detect runs the food detection pipeline on local images without the HTTP
// server.
//
// Usage:
//
//	detect run --model models/yolov8n.onnx photo1.jpg photo2.png
//	detect labels --format ssd
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"fooddetect/internal/aggregate"
	"fooddetect/internal/config"
	"fooddetect/internal/logger"
	"fooddetect/internal/models"
	"fooddetect/internal/service/ai"
	"fooddetect/internal/service/ai/postprocess"
)

var version = "dev"

type fileResult struct {
	File          string                  `json:"file"`
	DetectedItems []models.AggregatedItem `json:"detectedItems,omitempty"`
	Error         string                  `json:"error,omitempty"`
}

func main() {
	app := &cli.App{
		Name:    "detect",
		Usage:   "Detect and count objects in images",
		Version: version,
		Commands: []*cli.Command{
			runCommand(),
			labelsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run detection and aggregation on image files",
		ArgsUsage: "IMAGE [IMAGE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Path to the network weights",
				EnvVars: []string{"MODEL_PATH"},
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the network config (SSD graphs)",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Network output layout (yolov8, ssd)",
				EnvVars: []string{"MODEL_FORMAT"},
			},
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Minimum confidence for an item to be counted",
				EnvVars: []string{"CONFIDENCE_THRESHOLD"},
			},
			&cli.StringFlag{
				Name:    "unit",
				Usage:   "Unit label attached to each item",
				EnvVars: []string{"UNIT_LABEL"},
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent JSON output",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one image path is required", 2)
	}

	cfg := config.Load()
	if c.IsSet("model") {
		cfg.ModelPath = c.String("model")
	}
	if c.IsSet("config") {
		cfg.ConfigPath = c.String("config")
	}
	if c.IsSet("format") {
		cfg.ModelFormat = c.String("format")
	}
	if c.IsSet("threshold") {
		cfg.ConfidenceThresh = c.Float64("threshold")
	}
	if c.IsSet("unit") {
		cfg.UnitLabel = c.String("unit")
	}

	log := logger.NewNop()
	detector, err := ai.NewDetectorService(cfg, log)
	if err != nil {
		return err
	}
	defer detector.Close()

	aggregator := aggregate.New(cfg.ConfidenceThresh, cfg.UnitLabel)
	ctx := context.Background()

	results := make([]fileResult, 0, c.NArg())
	failed := 0
	for _, path := range c.Args().Slice() {
		result := fileResult{File: filepath.Base(path)}
		raw, err := detector.Detect(ctx, path)
		if err != nil {
			result.Error = err.Error()
			failed++
		} else {
			result.DetectedItems = aggregator.Aggregate(raw)
		}
		results = append(results, result)
	}

	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(results); err != nil {
		return err
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d images failed", failed, len(results)), 1)
	}
	return nil
}

func labelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "labels",
		Usage: "Print the class vocabulary of a model format",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Value: ai.FormatYOLOv8,
				Usage: "Network output layout (yolov8, ssd)",
			},
		},
		Action: func(c *cli.Context) error {
			switch c.String("format") {
			case ai.FormatYOLOv8:
				for i, name := range postprocess.COCOClasses {
					fmt.Fprintf(c.App.Writer, "%d\t%s\n", i, name)
				}
			case ai.FormatSSD:
				for _, id := range postprocess.TFCOCOIDs() {
					fmt.Fprintf(c.App.Writer, "%d\t%s\n", id, postprocess.SSDLabel(id))
				}
			default:
				return cli.Exit(fmt.Sprintf("unknown format %q", c.String("format")), 2)
			}
			return nil
		},
	}
}
