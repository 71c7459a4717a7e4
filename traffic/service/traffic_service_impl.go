package service

import (
	"context"
	"fmt"

	"github.com/crosslight/controlroom/traffic/engine"
)

// trafficService implements TrafficService on top of the simulation engine.
type trafficService struct {
	engine *engine.Engine
}

// NewTrafficService creates the service backed by the given engine.
func NewTrafficService(eng *engine.Engine) TrafficService {
	return &trafficService{engine: eng}
}

// Snapshot returns the current state of every approach.
func (s *trafficService) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	return s.engine.Snapshot(), nil
}

// SetDensity updates one approach's density.
func (s *trafficService) SetDensity(ctx context.Context, direction string, density float64) (*DirectionResult, error) {
	if !s.engine.SetDensity(direction, density) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}

	snap := s.engine.Snapshot()
	return &DirectionResult{
		Direction: direction,
		Status:    snap[engine.Direction(direction)],
	}, nil
}

// SetMaxSpeed updates one approach's speed limit.
func (s *trafficService) SetMaxSpeed(ctx context.Context, direction string, maxSpeed float64) (*DirectionResult, error) {
	if !s.engine.SetMaxSpeed(direction, maxSpeed) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}

	snap := s.engine.Snapshot()
	return &DirectionResult{
		Direction: direction,
		Status:    snap[engine.Direction(direction)],
	}, nil
}

// Assist answers a free-text prompt with a heuristic summary of current
// conditions.
func (s *trafficService) Assist(ctx context.Context, prompt string) (*AssistReply, error) {
	return buildAssistReply(prompt, s.engine.Snapshot()), nil
}
