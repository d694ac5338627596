package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/paulmach/orb"

	"turnvoice/pkg/route"
)

// demoStart is the first point of the built-in demo route.
var demoStart = orb.Point{13.3777, 52.5163}

// demoLegs drive a few blocks, a roundabout and a final approach.
var demoLegs = []route.Leg{
	{Bearing: 0, Length: 1500},
	{Bearing: 90, Length: 900},
	{Bearing: 60, Length: 1200}, // roundabout, second exit
	{Bearing: 330, Length: 700},
	{Bearing: 355, Length: 600},
}

func loadRoute(path string) (*route.Route, error) {
	if path == "" {
		slog.Info("Route Source: Demo")
		return route.Build(route.FromLegs(demoStart, demoLegs), route.WithRoundabout(2, 2))
	}

	slog.Info("Route Source: GeoJSON", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route: %w", err)
	}
	r, err := route.ParseGeoJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load route %s: %w", path, err)
	}
	return r, nil
}

func exportRoute(r *route.Route, path string) error {
	data, err := r.GeoJSON()
	if err != nil {
		return fmt.Errorf("failed to encode route: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write route: %w", err)
	}
	slog.Info("Route exported", "path", path)
	return nil
}
