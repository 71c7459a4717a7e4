// Package config loads traffic scenario configurations.
//
// The config package implements:
//   - Scenario loading from JSON files in a configurable directory
//   - Validation via the engine's scenario rules
//   - In-memory caching of loaded scenarios
//   - A built-in default when no default.json is shipped
//
// Scenario files select the initial densities, speed limits, vehicle volumes
// and group distances per approach, plus the interval of the periodic push
// to connected clients.
package config
