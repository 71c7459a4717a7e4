// Command analyze prints quick, human-readable heuristics about scenario
// files in the project's configs directory. It summarizes densities, speed
// limits, predicted speeds and vehicle volumes, and highlights approaches
// that start congested or carry unusually heavy volume.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/crosslight/controlroom/traffic/engine"
)

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "summarize traffic scenario files and flag congested approaches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Value: "configs",
				Usage: "directory containing scenario JSON files",
			},
			&cli.Float64Flag{
				Name:  "density-warn",
				Value: 40,
				Usage: "density (veh/km) above which an approach is flagged",
			},
			&cli.IntFlag{
				Name:  "volume-warn",
				Value: 70,
				Usage: "total vehicle count above which an approach is flagged",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	configDir := cmd.String("config-dir")
	densityWarn := cmd.Float64("density-warn")
	volumeWarn := int(cmd.Int("volume-warn"))

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list scenario files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no scenario files found in %s", configDir)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeScenario(file, densityWarn, volumeWarn)
	}

	return nil
}

func analyzeScenario(path string, densityWarn float64, volumeWarn int) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var config engine.ScenarioConfig
	if err := json.Unmarshal(data, &config); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", config.Name)
	if config.Description != "" {
		fmt.Printf("Description: %s\n", config.Description)
	}
	fmt.Printf("Jam Density: %g veh/km\n", config.JamDensity)
	fmt.Printf("Push Interval: %ds\n", config.PushIntervalSeconds)

	if err := engine.ValidateScenarioConfig(&config); err != nil {
		fmt.Printf("⚠️  WARNING: scenario does not validate: %v\n", err)
	}

	jamDensity := config.JamDensity
	if jamDensity <= 0 {
		jamDensity = engine.DefaultJamDensity
	}

	congested := 0
	for _, dir := range engine.Directions {
		approach, ok := config.Approaches[string(dir)]
		if !ok {
			fmt.Printf("⚠️  Missing approach: %s\n", dir)
			continue
		}

		predicted := engine.PredictSpeed(approach.Density, approach.MaxSpeed, jamDensity)
		fmt.Printf("%s: density %g veh/km, limit %g km/h, predicted %.1f km/h, %d vehicles\n",
			dir, approach.Density, approach.MaxSpeed, predicted, approach.Volumes.Total)

		if approach.Density >= densityWarn {
			fmt.Printf("   ⚠️  starts congested (density >= %g)\n", densityWarn)
			congested++
		}
		if approach.Volumes.Total >= volumeWarn {
			fmt.Printf("   ⚠️  heavy volume (total >= %d)\n", volumeWarn)
		}
		if predicted <= engine.MinCrawlSpeed {
			fmt.Printf("   ⚠️  traffic at crawl speed\n")
		}
	}

	if congested == 0 {
		fmt.Println("✅ No approach starts above the congestion threshold")
	} else {
		fmt.Printf("⚠️  %d approach(es) start above the congestion threshold\n", congested)
	}
}
