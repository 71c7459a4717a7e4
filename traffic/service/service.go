package service

import (
	"context"
	"errors"

	"github.com/crosslight/controlroom/traffic/engine"
)

// ErrInvalidDirection reports a direction name that is not one of the
// recognized approaches.
var ErrInvalidDirection = errors.New("invalid direction")

// TrafficService defines all traffic-state operations.
type TrafficService interface {
	// State
	Snapshot(ctx context.Context) (engine.Snapshot, error)

	// Mutations
	SetDensity(ctx context.Context, direction string, density float64) (*DirectionResult, error)
	SetMaxSpeed(ctx context.Context, direction string, maxSpeed float64) (*DirectionResult, error)

	// Assistant
	Assist(ctx context.Context, prompt string) (*AssistReply, error)
}

// DirectionResult is the outcome of a successful per-direction mutation.
type DirectionResult struct {
	Direction string                 `json:"direction"`
	Status    engine.DirectionStatus `json:"status"`
}

// AssistReply is the assistant's answer: a text summary, actionable
// suggestions and the snapshot they were derived from.
type AssistReply struct {
	Reply          string          `json:"reply"`
	Suggestions    []string        `json:"suggestions"`
	StatusSnapshot engine.Snapshot `json:"statusSnapshot"`
}
