package sim

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"turnvoice/pkg/route"
)

// speedWindow is the smoothing window for reported ground speed.
const speedWindow = 3 * time.Second

// SpeedStep sets the vehicle speed from a distance along the route onwards.
type SpeedStep struct {
	From     float64 // meters
	SpeedMps float64
}

// Vehicle drives along a route following a speed profile.
type Vehicle struct {
	mu      sync.Mutex
	route   *route.Route
	profile []SpeedStep
	along   float64
	elapsed time.Duration
	speed   *SpeedBuffer
}

// NewVehicle creates a vehicle at the start of r. Profile steps are applied
// in order of their From distance. The profile must start at the route start
// and every speed must be positive so the vehicle always arrives.
func NewVehicle(r *route.Route, profile []SpeedStep) (*Vehicle, error) {
	if r == nil {
		return nil, ErrNoRoute
	}
	p := make([]SpeedStep, len(profile))
	copy(p, profile)
	sort.SliceStable(p, func(i, j int) bool { return p[i].From < p[j].From })

	if len(p) == 0 || p[0].From > 0 {
		return nil, fmt.Errorf("%w: no speed set at the route start", ErrInvalidProfile)
	}
	for _, s := range p {
		if !(s.SpeedMps > 0) {
			return nil, fmt.Errorf("%w: speed %.1f m/s from %.0fm", ErrInvalidProfile, s.SpeedMps, s.From)
		}
	}

	v := &Vehicle{
		route:   r,
		profile: p,
		speed:   NewSpeedBuffer(speedWindow),
	}
	v.speed.Update(0, 0)
	return v, nil
}

// Step advances the vehicle by dt at the profile speed for its current position.
func (v *Vehicle) Step(dt time.Duration) Fix {
	v.mu.Lock()
	defer v.mu.Unlock()

	length := v.route.Length()
	if v.along >= length {
		return v.fixLocked(0)
	}

	v.elapsed += dt
	v.along += v.speedAt(v.along) * dt.Seconds()
	if v.along > length {
		v.along = length
	}
	return v.fixLocked(v.speed.Update(v.elapsed, v.along))
}

// GetState returns the current progress state.
func (v *Vehicle) GetState() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return stateAt(v.along, v.route.Length())
}

func (v *Vehicle) fixLocked(speed float64) Fix {
	return Fix{
		Elapsed:  v.elapsed,
		Along:    v.along,
		SpeedMps: speed,
		Point:    v.route.PointAt(v.along),
		Done:     v.along >= v.route.Length(),
	}
}

func (v *Vehicle) speedAt(along float64) float64 {
	speed := 0.0
	for _, s := range v.profile {
		if s.From > along {
			break
		}
		speed = s.SpeedMps
	}
	return speed
}
