// Package probe runs startup checks before a simulation session begins.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"turnvoice/pkg/route"
	"turnvoice/pkg/turns/sound"
)

// DefaultTimeout bounds a single check when the probe sets none.
const DefaultTimeout = 5 * time.Second

// CheckFunc performs one check and returns nil if it passes.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure prevents the session from starting
	Timeout  time.Duration
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes probes in order, each under its own timeout.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)

		start := time.Now()
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}
	return results
}

// AnalyzeResults logs every result and joins the errors of failed critical probes.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")
	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}
		msg := fmt.Sprintf("[%s] %-22s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error == nil {
			slog.Info(msg)
			continue
		}
		slog.Error(msg, "error", r.Error, "critical", r.Probe.Critical)
		if r.Probe.Critical {
			criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		}
	}
	return errors.Join(criticalErrors...)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Database checks that the journal database answers.
func Database(p Pinger) Probe {
	return Probe{
		Name:     "Journal Database",
		Critical: true,
		Check:    p.PingContext,
	}
}

// SettingsSource yields the notification settings currently in effect.
type SettingsSource interface {
	Settings(ctx context.Context) (sound.Settings, error)
}

// Settings checks that the active notification settings can drive announcements.
func Settings(src SettingsSource) Probe {
	return Probe{
		Name:     "Notification Settings",
		Critical: true,
		Check: func(ctx context.Context) error {
			s, err := src.Settings(ctx)
			if err != nil {
				return err
			}
			return s.Validate()
		},
	}
}

// Route warns about routes that carry no maneuver besides the destination.
func Route(r *route.Route) Probe {
	return Probe{
		Name: "Route Maneuvers",
		Check: func(context.Context) error {
			if n := len(r.Turns()); n < 2 {
				return fmt.Errorf("route of %.0fm has %d maneuver(s), nothing to announce before arrival", r.Length(), n)
			}
			return nil
		},
	}
}
