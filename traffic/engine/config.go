package engine

import "fmt"

// ScenarioConfig seeds the engine from a scenario JSON file.
type ScenarioConfig struct {
	Name                string                    `json:"name"`
	Description         string                    `json:"description"`
	JamDensity          float64                   `json:"jam_density"`
	PushIntervalSeconds int                       `json:"push_interval_seconds"`
	Approaches          map[string]ApproachConfig `json:"approaches"`
}

// ApproachConfig is the initial state of one approach.
type ApproachConfig struct {
	Density       float64        `json:"density"`
	MaxSpeed      float64        `json:"max_speed"`
	Volumes       VehicleVolumes `json:"volumes"`
	FirstGroupKm  float64        `json:"first_group_km"`
	SecondGroupKm float64        `json:"second_group_km"`
}

// ValidateScenarioConfig checks that a scenario covers every approach with
// sane values.
func ValidateScenarioConfig(config *ScenarioConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if config.JamDensity <= 0 {
		return fmt.Errorf("jam_density must be positive, got %g", config.JamDensity)
	}
	if config.PushIntervalSeconds < 0 {
		return fmt.Errorf("push_interval_seconds cannot be negative, got %d", config.PushIntervalSeconds)
	}

	for _, dir := range Directions {
		approach, ok := config.Approaches[string(dir)]
		if !ok {
			return fmt.Errorf("missing approach %q", dir)
		}
		if approach.Density < MinDensity || approach.Density > MaxDensity {
			return fmt.Errorf("approach %q: density %g out of range [%g, %g]", dir, approach.Density, MinDensity, MaxDensity)
		}
		if approach.MaxSpeed <= 0 || approach.MaxSpeed > MaxMaxSpeed {
			return fmt.Errorf("approach %q: max_speed %g out of range (0, %g]", dir, approach.MaxSpeed, MaxMaxSpeed)
		}
		if approach.FirstGroupKm <= 0 || approach.SecondGroupKm <= 0 {
			return fmt.Errorf("approach %q: group distances must be positive", dir)
		}
		if approach.SecondGroupKm < approach.FirstGroupKm {
			return fmt.Errorf("approach %q: second group cannot be closer than the first", dir)
		}
		if approach.Volumes.Total < 0 || approach.Volumes.First < 0 || approach.Volumes.Second < 0 {
			return fmt.Errorf("approach %q: volumes cannot be negative", dir)
		}
	}

	for name := range config.Approaches {
		if !ValidDirection(name) {
			return fmt.Errorf("unknown approach %q", name)
		}
	}

	return nil
}

// DefaultScenario returns the built-in scenario used when no configuration
// file is available.
func DefaultScenario() *ScenarioConfig {
	return &ScenarioConfig{
		Name:                "default",
		Description:         "Balanced mid-day traffic on all approaches",
		JamDensity:          DefaultJamDensity,
		PushIntervalSeconds: 1,
		Approaches: map[string]ApproachConfig{
			string(North): {
				Density:       22,
				MaxSpeed:      60,
				Volumes:       VehicleVolumes{Total: 34, First: 20, Second: 14},
				FirstGroupKm:  1.2,
				SecondGroupKm: 2.8,
			},
			string(South): {
				Density:       18,
				MaxSpeed:      60,
				Volumes:       VehicleVolumes{Total: 27, First: 15, Second: 12},
				FirstGroupKm:  0.9,
				SecondGroupKm: 2.1,
			},
			string(East): {
				Density:       30,
				MaxSpeed:      50,
				Volumes:       VehicleVolumes{Total: 45, First: 26, Second: 19},
				FirstGroupKm:  1.5,
				SecondGroupKm: 3.4,
			},
			string(West): {
				Density:       12,
				MaxSpeed:      70,
				Volumes:       VehicleVolumes{Total: 18, First: 11, Second: 7},
				FirstGroupKm:  0.8,
				SecondGroupKm: 1.9,
			},
		},
	}
}
