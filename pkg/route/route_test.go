package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnvoice/pkg/turns"
)

var start = orb.Point{13.4050, 52.5200}

func seqIDs() BuildOption {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("t%d", n)
	})
}

func testLegs() []Leg {
	return []Leg{
		{Bearing: 0, Length: 1000},  // north
		{Bearing: 90, Length: 800},  // right
		{Bearing: 0, Length: 600},   // left
		{Bearing: 5, Length: 400},   // straight on, no maneuver
		{Bearing: 35, Length: 500},  // slight right
		{Bearing: 190, Length: 300}, // sharp right
	}
}

func TestBuild_DerivesManeuvers(t *testing.T) {
	r, err := Build(FromLegs(start, testLegs()), seqIDs())
	require.NoError(t, err)

	got := r.Turns()
	want := []turns.Direction{
		turns.TurnRight,
		turns.TurnLeft,
		turns.TurnSlightRight,
		turns.TurnSharpRight,
		turns.ReachedYourDestination,
	}
	require.Len(t, got, len(want))
	for i, dir := range want {
		assert.Equal(t, dir, got[i].Direction, "maneuver %d", i)
		assert.Equal(t, fmt.Sprintf("t%d", i+1), got[i].ID)
	}
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 6, got[len(got)-1].Index)

	assert.InDelta(t, 3600.0, r.Length(), 1.0)
}

func TestBuild_Roundabout(t *testing.T) {
	r, err := Build(FromLegs(start, testLegs()), WithRoundabout(2, 3))
	require.NoError(t, err)

	tt := r.Turns()
	require.GreaterOrEqual(t, len(tt), 2)
	assert.Equal(t, turns.EnterRoundAbout, tt[1].Direction)
	assert.Equal(t, 3, tt[1].ExitNum)
	assert.NotEmpty(t, tt[1].ID)
	assert.NotEqual(t, tt[0].ID, tt[1].ID)
}

func TestBuild_TooShort(t *testing.T) {
	_, err := Build(orb.LineString{start})
	assert.True(t, errors.Is(err, ErrTooShort))

	_, err = Build(orb.LineString{start, start})
	assert.True(t, errors.Is(err, ErrTooShort))
}

func TestBuild_RepeatedVertex(t *testing.T) {
	a := orb.Point{13.40, 52.52}
	b := orb.Point{13.41, 52.52}
	c := orb.Point{13.42, 52.52}

	// A straight eastbound line stays straight when a point is doubled
	r, err := Build(orb.LineString{a, b, b, c}, seqIDs())
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{a, b, c}, r.Path())

	got := r.Turns()
	require.Len(t, got, 1)
	assert.Equal(t, turns.ReachedYourDestination, got[0].Direction)
	assert.Equal(t, 2, got[0].Index)
	assert.InDelta(t, geo.DistanceHaversine(a, c), r.Length(), 1e-6)

	// Roundabout indexes on a repeated point land on its first copy
	r, err = Build(orb.LineString{a, b, b, c}, WithRoundabout(2, 1))
	require.NoError(t, err)
	got = r.Turns()
	require.Len(t, got, 2)
	assert.Equal(t, turns.EnterRoundAbout, got[0].Direction)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 1, got[0].ExitNum)
	assert.Equal(t, 2, got[1].Index)

	// ...and are rejected when that copy is an end point
	_, err = Build(orb.LineString{a, a, b, c}, WithRoundabout(1, 1))
	assert.True(t, errors.Is(err, ErrBadRoundabout))
}

func TestBuild_RoundaboutOutOfRange(t *testing.T) {
	path := FromLegs(start, testLegs())
	for _, idx := range []int{-1, 0, len(path) - 1, len(path), 42} {
		_, err := Build(path, WithRoundabout(idx, 1))
		assert.True(t, errors.Is(err, ErrBadRoundabout), "index %d: %v", idx, err)
	}

	_, err := Build(path, WithRoundabout(1, 1), WithRoundabout(len(path)-2, 2))
	assert.NoError(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		delta float64
		want  turns.Direction
	}{
		{0, turns.NoTurn},
		{-14, turns.NoTurn},
		{20, turns.TurnSlightRight},
		{-30, turns.TurnSlightLeft},
		{90, turns.TurnRight},
		{-90, turns.TurnLeft},
		{150, turns.TurnSharpRight},
		{-150, turns.TurnSharpLeft},
		{175, turns.UTurnRight},
		{-180, turns.UTurnLeft},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.delta, DefaultMinTurnAngle), "delta %v", tt.delta)
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, -90.0, normalizeAngle(270), 1e-9)
	assert.InDelta(t, 90.0, normalizeAngle(-270), 1e-9)
	assert.InDelta(t, 10.0, normalizeAngle(370), 1e-9)
}

func TestLocate(t *testing.T) {
	r, err := Build(FromLegs(start, testLegs()), seqIDs())
	require.NoError(t, err)

	first, err := r.DistanceAlong(r.Turns()[0])
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, first, 1.0)

	next, dist, ok := r.Locate(0)
	require.True(t, ok)
	assert.Equal(t, "t1", next.ID)
	assert.InDelta(t, 1000.0, dist, 1.0)

	// Distance shrinks as the vehicle advances towards the turn
	prev := dist
	for along := 100.0; along < first; along += 100 {
		n, d, ok := r.Locate(along)
		require.True(t, ok)
		assert.Equal(t, "t1", n.ID)
		assert.Less(t, d, prev)
		prev = d
	}

	// Exactly at the turn it is still the target, past it the next one is
	next, dist, ok = r.Locate(first)
	require.True(t, ok)
	assert.Equal(t, "t1", next.ID)
	assert.Equal(t, 0.0, dist)

	next, _, ok = r.Locate(first + 1)
	require.True(t, ok)
	assert.Equal(t, "t2", next.ID)

	next, dist, ok = r.Locate(r.Length())
	require.True(t, ok)
	assert.Equal(t, turns.ReachedYourDestination, next.Direction)
	assert.Equal(t, 0.0, dist)

	_, _, ok = r.Locate(r.Length() + 10)
	assert.False(t, ok)

	// Negative positions clamp to the start
	next, dist, ok = r.Locate(-50)
	require.True(t, ok)
	assert.Equal(t, "t1", next.ID)
	assert.InDelta(t, first, dist, 1e-9)
}

func TestDistanceAlong_OutOfRange(t *testing.T) {
	r, err := Build(FromLegs(start, testLegs()))
	require.NoError(t, err)

	_, err = r.DistanceAlong(turns.Item{ID: "x", Index: 99})
	assert.Error(t, err)
}

func TestPointAt(t *testing.T) {
	path := FromLegs(start, testLegs())
	r, err := Build(path)
	require.NoError(t, err)

	assert.Equal(t, path[0], r.PointAt(-1))
	assert.Equal(t, path[len(path)-1], r.PointAt(r.Length()+1))

	mid := r.PointAt(500)
	assert.InDelta(t, 500.0, geo.DistanceHaversine(path[0], mid), 1.0)

	// A point on the second leg
	p := r.PointAt(1400)
	assert.InDelta(t, 400.0, geo.DistanceHaversine(path[1], p), 1.0)
}

func TestGeoJSON_RoundTrip(t *testing.T) {
	r, err := Build(FromLegs(start, testLegs()), WithRoundabout(2, 2))
	require.NoError(t, err)

	data, err := r.GeoJSON()
	require.NoError(t, err)

	var doc struct {
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Features, 1+len(r.Turns()))
	assert.Equal(t, "LineString", doc.Features[0].Geometry.Type)
	assert.Equal(t, "EnterRoundAbout", doc.Features[2].Properties["direction"])
	assert.Equal(t, 2.0, doc.Features[2].Properties["exit"])

	// Re-import keeps geometry; roundabouts come from the line's properties
	in := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{}},
		{"type":"Feature","geometry":{"type":"LineString","coordinates":` + mustCoords(t, r.Path()) + `},
		 "properties":{"roundabouts":[[2,4]]}}]}`
	r2, err := ParseGeoJSON([]byte(in))
	require.NoError(t, err)
	assert.InDelta(t, r.Length(), r2.Length(), 1e-6)
	assert.Equal(t, 4, r2.Turns()[1].ExitNum)
}

func TestParseGeoJSON_Errors(t *testing.T) {
	_, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.True(t, errors.Is(err, ErrNoLineString))

	_, err = ParseGeoJSON([]byte(`not json`))
	assert.Error(t, err)

	bad := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[0,1]]},"properties":{"roundabouts":[[1]]}}]}`
	_, err = ParseGeoJSON([]byte(bad))
	assert.Error(t, err)

	endpoint := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[0,1],[1,1]]},"properties":{"roundabouts":[[0,2]]}}]}`
	_, err = ParseGeoJSON([]byte(endpoint))
	assert.True(t, errors.Is(err, ErrBadRoundabout))
}

func mustCoords(t *testing.T, ls orb.LineString) string {
	t.Helper()
	coords := make([][2]float64, len(ls))
	for i, p := range ls {
		coords[i] = [2]float64{p[0], p[1]}
	}
	b, err := json.Marshal(coords)
	require.NoError(t, err)
	return string(b)
}
