package route

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"turnvoice/pkg/turns"
)

var (
	// ErrTooShort is returned for paths that cannot form a route.
	ErrTooShort = errors.New("route needs at least two distinct points")
	// ErrBadRoundabout is returned for roundabout marks outside the interior vertices.
	ErrBadRoundabout = errors.New("roundabout must be on an interior vertex")
)

// Default bearing-change thresholds in degrees used to classify maneuvers.
const (
	DefaultMinTurnAngle = 15.0
	slightTurnAngle     = 45.0
	sharpTurnAngle      = 120.0
	uTurnAngle          = 170.0
)

// Route is a followed path with the maneuvers along it.
type Route struct {
	path  orb.LineString
	cum   []float64 // distance from the start to each vertex, meters
	turns []turns.Item
}

type buildOptions struct {
	minTurnAngle float64
	roundabouts  map[int]int
	idFunc       func() string
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithRoundabout marks the vertex at index as a roundabout entry with the given exit.
func WithRoundabout(index, exit int) BuildOption {
	return func(o *buildOptions) {
		o.roundabouts[index] = exit
	}
}

// WithMinTurnAngle sets the bearing change below which a vertex is not a maneuver.
func WithMinTurnAngle(deg float64) BuildOption {
	return func(o *buildOptions) {
		o.minTurnAngle = deg
	}
}

// WithIDFunc replaces the maneuver id generator (uuid by default).
func WithIDFunc(fn func() string) BuildOption {
	return func(o *buildOptions) {
		o.idFunc = fn
	}
}

// Build creates a route along path (lon/lat points) and derives its maneuvers
// from the bearing change at each interior vertex. Consecutive duplicate points
// are dropped, so maneuver indexes refer to Path(), not to path. Roundabout
// indexes refer to path and must name an interior vertex.
func Build(path orb.LineString, opts ...BuildOption) (*Route, error) {
	o := &buildOptions{
		minTurnAngle: DefaultMinTurnAngle,
		roundabouts:  make(map[int]int),
		idFunc:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}

	if len(path) < 2 {
		return nil, ErrTooShort
	}
	for idx := range o.roundabouts {
		if idx < 1 || idx > len(path)-2 {
			return nil, fmt.Errorf("%w: index %d on a path of %d points", ErrBadRoundabout, idx, len(path))
		}
	}

	// Repeated points carry no bearing; collapse them onto their first copy.
	kept, remap := dedupe(path)
	if len(kept) < 2 {
		return nil, ErrTooShort
	}
	roundabouts := make(map[int]int, len(o.roundabouts))
	for idx, exit := range o.roundabouts {
		k := remap[idx]
		if k < 1 || k > len(kept)-2 {
			return nil, fmt.Errorf("%w: index %d repeats an end point", ErrBadRoundabout, idx)
		}
		roundabouts[k] = exit
	}
	path = kept

	r := &Route{
		path: path,
		cum:  make([]float64, len(path)),
	}
	for i := 1; i < len(path); i++ {
		r.cum[i] = r.cum[i-1] + geo.DistanceHaversine(path[i-1], path[i])
	}
	if r.Length() <= 0 {
		return nil, ErrTooShort
	}

	for i := 1; i < len(path)-1; i++ {
		if exit, ok := roundabouts[i]; ok {
			r.turns = append(r.turns, turns.NewRoundaboutItem(o.idFunc(), i, turns.EnterRoundAbout, exit))
			continue
		}
		in := geo.Bearing(path[i-1], path[i])
		out := geo.Bearing(path[i], path[i+1])
		dir := Classify(normalizeAngle(out-in), o.minTurnAngle)
		if dir == turns.NoTurn {
			continue
		}
		r.turns = append(r.turns, turns.NewItem(o.idFunc(), i, dir))
	}
	r.turns = append(r.turns, turns.NewItem(o.idFunc(), len(path)-1, turns.ReachedYourDestination))

	return r, nil
}

// dedupe drops consecutive duplicate points. remap[i] is the index in kept
// of the point that path[i] collapsed onto.
func dedupe(path orb.LineString) (kept orb.LineString, remap []int) {
	kept = make(orb.LineString, 0, len(path))
	remap = make([]int, len(path))
	for i, p := range path {
		if len(kept) == 0 || !p.Equal(kept[len(kept)-1]) {
			kept = append(kept, p)
		}
		remap[i] = len(kept) - 1
	}
	return kept, remap
}

// Classify maps a signed bearing change (positive is clockwise) to a maneuver kind.
func Classify(delta, minTurnAngle float64) turns.Direction {
	abs := math.Abs(delta)
	right := delta > 0

	switch {
	case abs < minTurnAngle:
		return turns.NoTurn
	case abs < slightTurnAngle:
		return pick(right, turns.TurnSlightRight, turns.TurnSlightLeft)
	case abs < sharpTurnAngle:
		return pick(right, turns.TurnRight, turns.TurnLeft)
	case abs < uTurnAngle:
		return pick(right, turns.TurnSharpRight, turns.TurnSharpLeft)
	default:
		return pick(right, turns.UTurnRight, turns.UTurnLeft)
	}
}

func pick(right bool, r, l turns.Direction) turns.Direction {
	if right {
		return r
	}
	return l
}

// normalizeAngle normalizes an angle difference to the range [-180, 180].
func normalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}

// Length returns the route length in meters.
func (r *Route) Length() float64 {
	return r.cum[len(r.cum)-1]
}

// Path returns a copy of the route geometry.
func (r *Route) Path() orb.LineString {
	return r.path.Clone()
}

// Turns returns the maneuvers in route order.
func (r *Route) Turns() []turns.Item {
	out := make([]turns.Item, len(r.turns))
	copy(out, r.turns)
	return out
}

// DistanceAlong returns the distance from the start to the maneuver's vertex.
func (r *Route) DistanceAlong(t turns.Item) (float64, error) {
	if t.Index < 0 || t.Index >= len(r.cum) {
		return 0, fmt.Errorf("turn %s index %d outside route of %d points", t.ID, t.Index, len(r.cum))
	}
	return r.cum[t.Index], nil
}

// Locate returns the next maneuver at or ahead of the position that is along
// meters from the start, and the distance to it. ok is false once the
// destination has been passed.
func (r *Route) Locate(along float64) (next turns.Item, distance float64, ok bool) {
	if math.IsNaN(along) {
		return turns.Item{}, 0, false
	}
	along = math.Max(0, along)

	i := sort.Search(len(r.turns), func(i int) bool {
		return r.cum[r.turns[i].Index] >= along
	})
	if i == len(r.turns) {
		return turns.Item{}, 0, false
	}
	next = r.turns[i]
	return next, r.cum[next.Index] - along, true
}

// PointAt returns the position along meters from the start, clamped to the route.
func (r *Route) PointAt(along float64) orb.Point {
	if along <= 0 || math.IsNaN(along) {
		return r.path[0]
	}
	if along >= r.Length() {
		return r.path[len(r.path)-1]
	}

	// first vertex at or beyond along
	i := sort.SearchFloat64s(r.cum, along)
	if r.cum[i] == along {
		return r.path[i]
	}
	from := r.path[i-1]
	return geo.PointAtBearingAndDistance(from, geo.Bearing(from, r.path[i]), along-r.cum[i-1])
}

// Leg is one straight stretch of a route built with FromLegs.
type Leg struct {
	Bearing float64 // degrees clockwise from north
	Length  float64 // meters
}

// FromLegs builds the polyline that starts at start and follows legs in order.
func FromLegs(start orb.Point, legs []Leg) orb.LineString {
	ls := orb.LineString{start}
	p := start
	for _, l := range legs {
		p = geo.PointAtBearingAndDistance(p, l.Bearing, l.Length)
		ls = append(ls, p)
	}
	return ls
}
