package route

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoLineString is returned when a GeoJSON document carries no route geometry.
var ErrNoLineString = errors.New("geojson: no LineString feature")

// ParseGeoJSON builds a route from the first LineString feature of a
// FeatureCollection. A "roundabouts" property of [vertexIndex, exit] pairs
// marks roundabout entries.
func ParseGeoJSON(data []byte, opts ...BuildOption) (*Route, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson: %w", err)
	}

	for _, f := range fc.Features {
		ls, ok := f.Geometry.(orb.LineString)
		if !ok {
			continue
		}
		rbOpts, err := roundaboutOptions(f.Properties)
		if err != nil {
			return nil, err
		}
		return Build(ls, append(rbOpts, opts...)...)
	}
	return nil, ErrNoLineString
}

func roundaboutOptions(props geojson.Properties) ([]BuildOption, error) {
	raw, ok := props["roundabouts"]
	if !ok {
		return nil, nil
	}
	pairs, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("roundabouts: expected array, got %T", raw)
	}

	var opts []BuildOption
	for _, p := range pairs {
		pair, ok := p.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("roundabouts: expected [index, exit] pair, got %v", p)
		}
		idx, ok1 := pair[0].(float64)
		exit, ok2 := pair[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("roundabouts: non-numeric pair %v", p)
		}
		opts = append(opts, WithRoundabout(int(idx), int(exit)))
	}
	return opts, nil
}

// GeoJSON exports the route line and one point feature per maneuver.
func (r *Route) GeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(r.Path())
	line.Properties["length_m"] = r.Length()
	fc.Append(line)

	for _, t := range r.turns {
		f := geojson.NewFeature(r.path[t.Index])
		f.Properties["id"] = t.ID
		f.Properties["direction"] = t.Direction.String()
		f.Properties["along_m"] = r.cum[t.Index]
		if t.ExitNum > 0 {
			f.Properties["exit"] = t.ExitNum
		}
		fc.Append(f)
	}

	return fc.MarshalJSON()
}
