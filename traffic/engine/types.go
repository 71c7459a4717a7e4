package engine

// Direction names one inbound approach to the intersection.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists every recognized approach in a fixed reporting order.
var Directions = []Direction{North, South, East, West}

// Simulation constants.
const (
	DefaultJamDensity = 120.0 // veh/km at which predicted flow stalls
	MinCrawlSpeed     = 5.0   // km/h floor for the density-speed relation

	MinDensity  = 0.0
	MaxDensity  = 500.0
	MaxMaxSpeed = 200.0
)

// ValidDirection reports whether name matches a recognized approach.
func ValidDirection(name string) bool {
	for _, d := range Directions {
		if string(d) == name {
			return true
		}
	}
	return false
}

// VehicleVolumes counts the vehicles on one approach, split into the two
// tracked groups.
type VehicleVolumes struct {
	Total  int `json:"total"`
	First  int `json:"first"`
	Second int `json:"second"`
}

// GroupStatus reports one vehicle group's progress toward the intersection.
type GroupStatus struct {
	EstimatedTimeToReach int  `json:"estimatedTimeToReach"` // seconds
	HasReached           bool `json:"hasReached"`
}

// DirectionStatus is the client-visible state of one approach. Field names
// match what the control-room frontend expects.
type DirectionStatus struct {
	Density        float64        `json:"density"`        // veh/km
	MaxSpeed       float64        `json:"maxSpeed"`       // km/h
	PredictedSpeed float64        `json:"predictedSpeed"` // km/h
	Volumes        VehicleVolumes `json:"volumes"`
	FirstGroup     GroupStatus    `json:"firstGroup"`
	SecondGroup    GroupStatus    `json:"secondGroup"`
}

// Snapshot is a point-in-time read of every approach.
type Snapshot map[Direction]DirectionStatus
