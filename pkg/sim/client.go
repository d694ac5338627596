package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

var (
	// ErrNoRoute is returned when a vehicle is created without a route.
	ErrNoRoute        = errors.New("simulator has no route")
	// ErrInvalidProfile is returned for speed profiles that never reach the destination.
	ErrInvalidProfile = errors.New("invalid speed profile")
)

// Source defines the interface for position providers.
type Source interface {
	// Step advances the source by dt and returns the new fix.
	Step(dt time.Duration) Fix
	// GetState returns the current progress state.
	GetState() State
}

// Fix represents a snapshot of vehicle state.
type Fix struct {
	Elapsed  time.Duration // simulation time since start
	Along    float64       // meters from the route start
	SpeedMps float64       // smoothed ground speed
	Point    orb.Point     // lon/lat
	Done     bool          // destination reached
}

// FixFunc receives every fix produced by Run.
type FixFunc func(ctx context.Context, f Fix) error

// Run steps src every tick until it arrives or ctx is canceled. In realtime
// mode steps are paced by a ticker, otherwise they run back to back.
func Run(ctx context.Context, src Source, tick time.Duration, realtime bool, onFix FixFunc) error {
	if tick <= 0 {
		return fmt.Errorf("invalid tick %v", tick)
	}

	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(tick)
		defer ticker.Stop()
	}

	for {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		f := src.Step(tick)
		if err := onFix(ctx, f); err != nil {
			return fmt.Errorf("fix at %.1fm: %w", f.Along, err)
		}
		if f.Done {
			return nil
		}
	}
}
