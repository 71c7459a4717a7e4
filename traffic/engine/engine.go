package engine

import (
	"math"
	"sync"
	"time"
)

// approach holds the mutable simulation state for one direction.
type approach struct {
	density    float64
	maxSpeed   float64
	volumes    VehicleVolumes
	firstKm    float64
	secondKm   float64
	since      time.Time // start of the current countdown
	firstDone  bool      // latched once the group reaches the intersection
	secondDone bool
}

// Engine is the Traffic State Provider. Snapshot is called from every
// connection's push loop and from the REST facade, so all state is
// mutex-guarded.
type Engine struct {
	approaches map[Direction]*approach
	jamDensity float64
	now        func() time.Time
	mu         sync.Mutex
}

// NewEngine creates an engine seeded from the given scenario.
func NewEngine(config *ScenarioConfig) (*Engine, error) {
	if err := ValidateScenarioConfig(config); err != nil {
		return nil, err
	}

	e := &Engine{
		approaches: make(map[Direction]*approach, len(Directions)),
		jamDensity: config.JamDensity,
		now:        time.Now,
	}

	start := e.now()
	for _, dir := range Directions {
		cfg := config.Approaches[string(dir)]
		e.approaches[dir] = &approach{
			density:  cfg.Density,
			maxSpeed: cfg.MaxSpeed,
			volumes:  cfg.Volumes,
			firstKm:  cfg.FirstGroupKm,
			secondKm: cfg.SecondGroupKm,
			since:    start,
		}
	}

	return e, nil
}

// PredictSpeed applies the linear density-speed relation, floored at the
// crawl speed so arrival estimates stay finite under jam conditions.
func PredictSpeed(density, maxSpeed, jamDensity float64) float64 {
	speed := maxSpeed * (1 - density/jamDensity)
	if speed < MinCrawlSpeed {
		return MinCrawlSpeed
	}
	return speed
}

// Snapshot returns the current state of every approach. The returned value
// is a copy and safe to hold without locking.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	snap := make(Snapshot, len(e.approaches))
	for dir, a := range e.approaches {
		speed := PredictSpeed(a.density, a.maxSpeed, e.jamDensity)
		elapsed := now.Sub(a.since).Seconds()

		first := groupStatus(a.firstKm, speed, elapsed, &a.firstDone)
		second := groupStatus(a.secondKm, speed, elapsed, &a.secondDone)

		snap[dir] = DirectionStatus{
			Density:        a.density,
			MaxSpeed:       a.maxSpeed,
			PredictedSpeed: speed,
			Volumes:        a.volumes,
			FirstGroup:     first,
			SecondGroup:    second,
		}
	}
	return snap
}

// groupStatus computes one group's remaining travel time and latches the
// reached flag on arrival.
func groupStatus(distanceKm, speed, elapsed float64, done *bool) GroupStatus {
	if *done {
		return GroupStatus{HasReached: true}
	}

	remaining := distanceKm/speed*3600 - elapsed
	if remaining <= 0 {
		*done = true
		return GroupStatus{HasReached: true}
	}

	return GroupStatus{EstimatedTimeToReach: int(math.Ceil(remaining))}
}

// SetDensity updates one approach's density and restarts its countdown.
// It returns false if direction is not a recognized approach.
func (e *Engine) SetDensity(direction string, density float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.approaches[Direction(direction)]
	if !ok {
		return false
	}

	if density < MinDensity {
		density = MinDensity
	}
	if density > MaxDensity {
		density = MaxDensity
	}

	a.density = density
	e.restartLocked(a)
	return true
}

// SetMaxSpeed updates one approach's speed limit and restarts its countdown.
// It returns false if direction is not a recognized approach.
func (e *Engine) SetMaxSpeed(direction string, maxSpeed float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.approaches[Direction(direction)]
	if !ok {
		return false
	}

	if maxSpeed < MinCrawlSpeed {
		maxSpeed = MinCrawlSpeed
	}
	if maxSpeed > MaxMaxSpeed {
		maxSpeed = MaxMaxSpeed
	}

	a.maxSpeed = maxSpeed
	e.restartLocked(a)
	return true
}

// restartLocked resets an approach's countdown after a parameter change.
// Callers must hold e.mu.
func (e *Engine) restartLocked(a *approach) {
	a.since = e.now()
	a.firstDone = false
	a.secondDone = false
}
