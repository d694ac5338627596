// Package sim drives a simulated vehicle along a route and reports position fixes.
package sim

// State represents the progress of the simulated vehicle.
type State string

const (
	// StateIdle indicates the vehicle has not moved yet.
	StateIdle State = "idle"
	// StateDriving indicates the vehicle is on the route.
	StateDriving State = "driving"
	// StateArrived indicates the vehicle reached the end of the route.
	StateArrived State = "arrived"
)

// stateAt returns the state for a position along a route of the given length.
func stateAt(along, length float64) State {
	switch {
	case along >= length:
		return StateArrived
	case along > 0:
		return StateDriving
	default:
		return StateIdle
	}
}
