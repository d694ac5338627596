package turns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{TurnRight, "TurnRight"},
		{EnterRoundAbout, "EnterRoundAbout"},
		{ReachedYourDestination, "ReachedYourDestination"},
		{Direction(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dir.String())
		})
	}
}

func TestDirectionIsRoundabout(t *testing.T) {
	assert.True(t, EnterRoundAbout.IsRoundabout())
	assert.True(t, LeaveRoundAbout.IsRoundabout())
	assert.True(t, StayOnRoundAbout.IsRoundabout())
	assert.False(t, TurnLeft.IsRoundabout())
	assert.False(t, GoStraight.IsRoundabout())
}

func TestNewItem(t *testing.T) {
	it := NewItem("a", 5, TurnRight)
	assert.Equal(t, Item{ID: "a", Index: 5, Direction: TurnRight}, it)

	rb := NewRoundaboutItem("b", 7, EnterRoundAbout, 3)
	assert.Equal(t, 3, rb.ExitNum)
	assert.Equal(t, EnterRoundAbout, rb.Direction)
}
