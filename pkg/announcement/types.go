package announcement

import (
	"context"
	"fmt"
	"io"
	"strings"

	"turnvoice/pkg/turns"
	"turnvoice/pkg/turns/sound"
)

// Speaker voices turn notifications.
type Speaker interface {
	Announce(ctx context.Context, n sound.Notification) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, n sound.Notification) error

// Announce calls f(ctx, n).
func (f SpeakerFunc) Announce(ctx context.Context, n sound.Notification) error {
	return f(ctx, n)
}

// TextSpeaker writes one spoken phrase per notification to W.
type TextSpeaker struct {
	W io.Writer
}

func (s TextSpeaker) Announce(ctx context.Context, n sound.Notification) error {
	_, err := fmt.Fprintln(s.W, Phrase(n))
	return err
}

var maneuverPhrases = map[turns.Direction]string{
	turns.GoStraight:             "continue straight",
	turns.TurnRight:              "turn right",
	turns.TurnSharpRight:         "turn sharp right",
	turns.TurnSlightRight:        "bear right",
	turns.TurnLeft:               "turn left",
	turns.TurnSharpLeft:          "turn sharp left",
	turns.TurnSlightLeft:         "bear left",
	turns.UTurnLeft:              "make a U-turn",
	turns.UTurnRight:             "make a U-turn",
	turns.TakeTheExit:            "take the exit",
	turns.EnterRoundAbout:        "enter the roundabout",
	turns.LeaveRoundAbout:        "leave the roundabout",
	turns.StayOnRoundAbout:       "stay on the roundabout",
	turns.StartAtEndOfStreet:     "start at the end of the street",
	turns.ReachedYourDestination: "you will arrive at your destination",
}

// Phrase renders a notification as an English sentence.
func Phrase(n sound.Notification) string {
	action, ok := maneuverPhrases[n.TurnDir]
	if !ok {
		action = "continue"
	}
	if n.TurnDir.IsRoundabout() && n.ExitNum > 0 {
		action = fmt.Sprintf("%s and take the %s exit", action, ordinal(n.ExitNum))
	}

	var b strings.Builder
	switch {
	case n.Stage == sound.StageImminent:
		b.WriteString(action)
		b.WriteString(" now")
	case n.UseThenInsteadOfDistance:
		b.WriteString("then ")
		b.WriteString(action)
	default:
		fmt.Fprintf(&b, "in %.0f %s, %s", n.DistanceUnits, n.LengthUnits, action)
	}

	s := b.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
