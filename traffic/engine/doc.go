// Package engine simulates traffic conditions for the control room.
//
// The engine package implements:
//   - Per-approach state (density, max speed, vehicle volumes)
//   - Density-based speed prediction
//   - Arrival estimates for two vehicle groups per approach
//   - Scenario configuration loading and validation
//
// Model:
//
// Each of the four approaches (north, south, east, west) carries two vehicle
// groups travelling toward the intersection. The predicted travel speed
// follows a linear density-speed relation, floored at a crawl speed so
// estimates stay finite under jam conditions. Arrival estimates count down
// against the wall clock from the moment an approach's parameters were last
// changed, and the has-reached flag latches once a group arrives.
//
// Concurrency:
//
// A single Engine is shared by every connection's periodic push loop and by
// the REST facade, so all state is mutex-guarded. Snapshot returns a deep
// copy that callers may hold without further locking.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultScenario())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	snap := eng.Snapshot()
//	ok := eng.SetDensity("north", 42)
package engine
