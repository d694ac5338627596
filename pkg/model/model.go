package model

import (
	"fmt"
	"time"
)

// Announcement is a journaled turn notification.
type Announcement struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	TurnID          string    `json:"turn_id"`
	Stage           string    `json:"stage"`          // lead, imminent
	DistanceUnits   float64   `json:"distance_units"` // 0 for imminent
	LengthUnit      string    `json:"length_unit"`    // meters, feet
	Direction       string    `json:"direction"`
	ExitNum         int       `json:"exit_num"`
	UseThen         bool      `json:"use_then"`
	DistanceToTurnM float64   `json:"distance_to_turn_m"` // raw distance when it fired
	CreatedAt       time.Time `json:"created_at"`
}

// Summary returns a one-line description for logs.
func (a *Announcement) Summary() string {
	if a.Stage == "imminent" {
		return fmt.Sprintf("%s now (exit %d)", a.Direction, a.ExitNum)
	}
	return fmt.Sprintf("%s in %.0f %s (exit %d)", a.Direction, a.DistanceUnits, a.LengthUnit, a.ExitNum)
}
