package turns

// Direction is the kind of maneuver a route instruction asks for.
type Direction int

const (
	NoTurn Direction = iota
	GoStraight

	TurnRight
	TurnSharpRight
	TurnSlightRight

	TurnLeft
	TurnSharpLeft
	TurnSlightLeft

	UTurnLeft
	UTurnRight

	TakeTheExit

	EnterRoundAbout
	LeaveRoundAbout
	StayOnRoundAbout

	StartAtEndOfStreet
	ReachedYourDestination
)

var directionNames = map[Direction]string{
	NoTurn:                 "NoTurn",
	GoStraight:             "GoStraight",
	TurnRight:              "TurnRight",
	TurnSharpRight:         "TurnSharpRight",
	TurnSlightRight:        "TurnSlightRight",
	TurnLeft:               "TurnLeft",
	TurnSharpLeft:          "TurnSharpLeft",
	TurnSlightLeft:         "TurnSlightLeft",
	UTurnLeft:              "UTurnLeft",
	UTurnRight:             "UTurnRight",
	TakeTheExit:            "TakeTheExit",
	EnterRoundAbout:        "EnterRoundAbout",
	LeaveRoundAbout:        "LeaveRoundAbout",
	StayOnRoundAbout:       "StayOnRoundAbout",
	StartAtEndOfStreet:     "StartAtEndOfStreet",
	ReachedYourDestination: "ReachedYourDestination",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "Unknown"
}

// IsRoundabout reports whether the exit number of an item is meaningful for d.
func (d Direction) IsRoundabout() bool {
	switch d {
	case EnterRoundAbout, LeaveRoundAbout, StayOnRoundAbout:
		return true
	}
	return false
}

// Item describes one maneuver on the route being followed.
// ID distinguishes maneuver instances; two items with the same ID are the same turn.
type Item struct {
	ID        string
	Index     int // vertex index on the route polyline
	Direction Direction
	ExitNum   int // 0 when not a roundabout maneuver
}

// NewItem creates a maneuver without an exit number.
func NewItem(id string, index int, dir Direction) Item {
	return Item{ID: id, Index: index, Direction: dir}
}

// NewRoundaboutItem creates a maneuver that carries a roundabout exit number.
func NewRoundaboutItem(id string, index int, dir Direction, exitNum int) Item {
	return Item{ID: id, Index: index, Direction: dir, ExitNum: exitNum}
}
