// Command validate provides a small CLI that validates traffic scenario JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Presence of all four approaches (north, south, east, west)
//   - Density, speed limit, and distance ranges per approach
//   - Volume consistency (first + second groups vs. total)
//   - Push interval sanity
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config mirrors the JSON schema for a traffic scenario.
type Config struct {
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	JamDensity          float64             `json:"jam_density"`
	PushIntervalSeconds int                 `json:"push_interval_seconds"`
	Approaches          map[string]Approach `json:"approaches"`
}

// Approach is the initial state of one approach in a scenario file.
type Approach struct {
	Density  float64 `json:"density"`
	MaxSpeed float64 `json:"max_speed"`
	Volumes  struct {
		Total  int `json:"total"`
		First  int `json:"first"`
		Second int `json:"second"`
	} `json:"volumes"`
	FirstGroupKm  float64 `json:"first_group_km"`
	SecondGroupKm float64 `json:"second_group_km"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

var requiredApproaches = []string{"north", "south", "east", "west"}

// validateConfig loads and validates a single scenario JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if config.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Scenario name is required")
	}

	if config.JamDensity <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("jam_density must be positive, got %g", config.JamDensity))
	}

	if config.PushIntervalSeconds < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("push_interval_seconds cannot be negative, got %d", config.PushIntervalSeconds))
	}

	// Validate approaches
	for _, name := range requiredApproaches {
		approach, exists := config.Approaches[name]
		if !exists {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Missing required approach: %s", name))
			continue
		}

		if approach.Density < 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: density cannot be negative, got %g", name, approach.Density))
		}

		if config.JamDensity > 0 && approach.Density > config.JamDensity {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: density %g exceeds jam_density %g", name, approach.Density, config.JamDensity))
		}

		if approach.MaxSpeed <= 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: max_speed must be positive, got %g", name, approach.MaxSpeed))
		}

		if approach.FirstGroupKm <= 0 || approach.SecondGroupKm <= 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: group distances must be positive", name))
		}

		if approach.SecondGroupKm < approach.FirstGroupKm {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: second_group_km (%g) cannot be closer than first_group_km (%g)", name, approach.SecondGroupKm, approach.FirstGroupKm))
		}

		if approach.Volumes.Total < 0 || approach.Volumes.First < 0 || approach.Volumes.Second < 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: volumes cannot be negative", name))
		}

		if approach.Volumes.First+approach.Volumes.Second > approach.Volumes.Total {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: group volumes (%d+%d) exceed total (%d)", name, approach.Volumes.First, approach.Volumes.Second, approach.Volumes.Total))
		}
	}

	// Reject unknown approaches
	for name := range config.Approaches {
		known := false
		for _, required := range requiredApproaches {
			if name == required {
				known = true
				break
			}
		}
		if !known {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Unknown approach: %s", name))
		}
	}

	// Add informational data
	if result.Valid {
		totalVehicles := 0
		for _, approach := range config.Approaches {
			totalVehicles += approach.Volumes.Total
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Jam density: %g veh/km", config.JamDensity))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Push interval: %ds", config.PushIntervalSeconds))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Approaches: %d", len(config.Approaches)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Total vehicles: %d", totalVehicles))
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}
