package sound

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// LengthUnit is the unit system distances are spoken in.
type LengthUnit int

const (
	// Undefined marks an unconfigured Settings value; it is never a valid operating unit.
	Undefined LengthUnit = iota
	Meters
	Feet
)

// metersPerUnit is the length of one unit in meters.
var metersPerUnit = map[LengthUnit]float64{
	Meters: 1.0,
	Feet:   0.3048,
}

func (u LengthUnit) String() string {
	switch u {
	case Meters:
		return "meters"
	case Feet:
		return "feet"
	}
	return "undefined"
}

// ParseLengthUnit maps a config value to a LengthUnit.
// Accepts unit names ("meters", "feet") and unit systems ("metric", "imperial").
func ParseLengthUnit(s string) (LengthUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meters", "metres", "m", "metric":
		return Meters, nil
	case "feet", "ft", "imperial":
		return Feet, nil
	}
	return Undefined, fmt.Errorf("unknown length unit %q: must be metric or imperial", s)
}

// ErrInvalidSettings is returned by Validate for settings that must not drive announcements.
var ErrInvalidSettings = errors.New("invalid notification settings")

// Settings configures when the lead notification is pronounced and which
// distances may be spoken. Build it once with NewSettings and treat it as
// read-only; the announcer keeps its own copy.
type Settings struct {
	timeSeconds           int
	minDistanceUnits      float64
	maxDistanceUnits      float64
	soundedDistancesUnits []float64
	lengthUnit            LengthUnit
}

// NewSettings creates a Settings value. It does not validate; call IsValid or Validate.
func NewSettings(timeSeconds int, minDistanceUnits, maxDistanceUnits float64, soundedDistancesUnits []float64, unit LengthUnit) Settings {
	presets := make([]float64, len(soundedDistancesUnits))
	copy(presets, soundedDistancesUnits)
	return Settings{
		timeSeconds:           timeSeconds,
		minDistanceUnits:      minDistanceUnits,
		maxDistanceUnits:      maxDistanceUnits,
		soundedDistancesUnits: presets,
		lengthUnit:            unit,
	}
}

// TimeSeconds returns how far ahead, in seconds, the lead prompt aims for.
func (s Settings) TimeSeconds() int { return s.timeSeconds }

// MinDistanceUnits returns the smallest lead distance, in LengthUnit.
func (s Settings) MinDistanceUnits() float64 { return s.minDistanceUnits }

// MaxDistanceUnits returns the largest lead distance, in LengthUnit.
func (s Settings) MaxDistanceUnits() float64 { return s.maxDistanceUnits }

// LengthUnit returns the unit distances are expressed in.
func (s Settings) LengthUnit() LengthUnit { return s.lengthUnit }

// SoundedDistancesUnits returns a copy of the preset distances.
func (s Settings) SoundedDistancesUnits() []float64 {
	out := make([]float64, len(s.soundedDistancesUnits))
	copy(out, s.soundedDistancesUnits)
	return out
}

// Validate reports the first violated invariant, wrapped in ErrInvalidSettings.
func (s Settings) Validate() error {
	if _, ok := metersPerUnit[s.lengthUnit]; !ok {
		return fmt.Errorf("%w: length unit is %s", ErrInvalidSettings, s.lengthUnit)
	}
	if len(s.soundedDistancesUnits) == 0 {
		return fmt.Errorf("%w: no sounded distances", ErrInvalidSettings)
	}
	for i, d := range s.soundedDistancesUnits {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: sounded distance %d is not finite", ErrInvalidSettings, i)
		}
		if i > 0 && d <= s.soundedDistancesUnits[i-1] {
			return fmt.Errorf("%w: sounded distances must be strictly increasing (%v after %v)",
				ErrInvalidSettings, d, s.soundedDistancesUnits[i-1])
		}
	}
	if !(s.minDistanceUnits <= s.maxDistanceUnits) {
		return fmt.Errorf("%w: min distance %v exceeds max distance %v",
			ErrInvalidSettings, s.minDistanceUnits, s.maxDistanceUnits)
	}

	first := s.soundedDistancesUnits[0]
	last := s.soundedDistancesUnits[len(s.soundedDistancesUnits)-1]
	if s.minDistanceUnits < first || s.minDistanceUnits > last {
		return fmt.Errorf("%w: min distance %v outside sounded range [%v, %v]",
			ErrInvalidSettings, s.minDistanceUnits, first, last)
	}
	if s.maxDistanceUnits < first || s.maxDistanceUnits > last {
		return fmt.Errorf("%w: max distance %v outside sounded range [%v, %v]",
			ErrInvalidSettings, s.maxDistanceUnits, first, last)
	}
	return nil
}

// IsValid reports whether the settings may be used to drive announcements.
func (s Settings) IsValid() bool {
	return s.Validate() == nil
}

// ConvertMetersPerSecondToUnitsPerSecond converts a speed to the configured unit.
// Returns 0 for an Undefined unit.
func (s Settings) ConvertMetersPerSecondToUnitsPerSecond(speedMps float64) float64 {
	m, ok := metersPerUnit[s.lengthUnit]
	if !ok {
		return 0
	}
	return speedMps / m
}

// ConvertUnitsToMeters converts a distance in the configured unit to meters.
func (s Settings) ConvertUnitsToMeters(distanceUnits float64) float64 {
	return distanceUnits * metersPerUnit[s.lengthUnit]
}

// ConvertMetersToUnits converts a distance in meters to the configured unit.
// Returns 0 for an Undefined unit.
func (s Settings) ConvertMetersToUnits(distanceMeters float64) float64 {
	m, ok := metersPerUnit[s.lengthUnit]
	if !ok {
		return 0
	}
	return distanceMeters / m
}

// RoundByPresetSoundedDistancesUnits returns the smallest preset >= distanceUnits,
// clamped to the first and last presets. Spoken distances never understate
// the remaining distance.
func (s Settings) RoundByPresetSoundedDistancesUnits(distanceUnits float64) float64 {
	presets := s.soundedDistancesUnits
	if len(presets) == 0 {
		return 0
	}
	for _, p := range presets {
		if distanceUnits <= p {
			return p
		}
	}
	return presets[len(presets)-1]
}

// ComputeTurnDistance returns the unrounded distance at which a vehicle moving
// at speedUnitsPerSecond is TimeSeconds away from the turn, clamped to
// [MinDistanceUnits, MaxDistanceUnits].
func (s Settings) ComputeTurnDistance(speedUnitsPerSecond float64) float64 {
	d := speedUnitsPerSecond * float64(s.timeSeconds)
	return math.Max(s.minDistanceUnits, math.Min(d, s.maxDistanceUnits))
}
