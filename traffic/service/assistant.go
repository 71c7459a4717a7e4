package service

import (
	"fmt"
	"strings"

	"github.com/crosslight/controlroom/traffic/engine"
)

// Assistant thresholds.
const (
	highDensity     = 40.0
	moderateDensity = 25.0
	highVolume      = 70
)

// buildAssistReply produces the rule-based assistant answer from a snapshot.
// Directions are reported in the engine's fixed order so replies are stable.
func buildAssistReply(prompt string, snap engine.Snapshot) *AssistReply {
	lines := make([]string, 0, len(engine.Directions))
	suggestions := make([]string, 0)

	for _, dir := range engine.Directions {
		status, ok := snap[dir]
		if !ok {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s: density %.0f veh/km, total %d vehicles; first ETA %ds, second ETA %ds",
			dir, status.Density, status.Volumes.Total,
			status.FirstGroup.EstimatedTimeToReach, status.SecondGroup.EstimatedTimeToReach))

		if status.Density >= highDensity || status.Volumes.Total >= highVolume {
			suggestions = append(suggestions, fmt.Sprintf("%s: high density — consider reducing inflow or rerouting traffic", dir))
		} else if status.Density >= moderateDensity {
			suggestions = append(suggestions, fmt.Sprintf("%s: moderate density — monitor speed and volumes", dir))
		}

		if status.FirstGroup.HasReached && !status.SecondGroup.HasReached {
			suggestions = append(suggestions, fmt.Sprintf("%s: first group has reached; you may accelerate the second group or clear the path", dir))
		}
	}

	reply := "Traffic summary:\n" + strings.Join(lines, "\n")
	if len(suggestions) > 0 {
		reply += "\n\nSuggestions:\n- " + strings.Join(suggestions, "\n- ")
	}
	if prompt != "" {
		reply = "User: " + prompt + "\n\n" + reply
	}

	return &AssistReply{
		Reply:          reply,
		Suggestions:    suggestions,
		StatusSnapshot: snap,
	}
}
