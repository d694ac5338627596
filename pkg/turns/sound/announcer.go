package sound

import (
	"log/slog"
	"math"

	"turnvoice/pkg/turns"
)

// Stage is one of the announcements pronounced for a single maneuver.
type Stage uint8

const (
	// StageLead is the first prompt, pronounced TimeSeconds ahead of the turn.
	StageLead Stage = 1 << iota
	// StageImminent is the last prompt, pronounced just before the turn.
	StageImminent
)

func (s Stage) String() string {
	switch s {
	case StageLead:
		return "lead"
	case StageImminent:
		return "imminent"
	}
	return "unknown"
}

// stageSet holds the stages already pronounced for the tracked maneuver.
type stageSet uint8

func (s stageSet) has(st Stage) bool { return s&stageSet(st) != 0 }
func (s *stageSet) add(st Stage)     { *s |= stageSet(st) }

// Notification is a single voice prompt for the speech layer to render.
// DistanceUnits is 0 for the imminent prompt and one of the sounded
// distances otherwise.
type Notification struct {
	DistanceUnits            float64
	ExitNum                  int
	UseThenInsteadOfDistance bool
	TurnDir                  turns.Direction
	LengthUnits              LengthUnit
	Stage                    Stage
}

// Tuning holds the empirical constants of the trigger logic.
type Tuning struct {
	// PronounceSeconds is the time needed to play a prompt.
	PronounceSeconds float64
	// MaxPronounceDistanceMeters caps the distance travelled while a prompt plays.
	MaxPronounceDistanceMeters float64
	// ImminentDistanceMeters is the distance below which the imminent prompt fires.
	ImminentDistanceMeters float64
}

// DefaultTuning returns the stock trigger constants.
func DefaultTuning() Tuning {
	return Tuning{
		PronounceSeconds:           5,
		MaxPronounceDistanceMeters: 100,
		ImminentDistanceMeters:     100,
	}
}

// withDefaults replaces every non-positive or non-finite field by its default.
func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if !positive(t.PronounceSeconds) {
		t.PronounceSeconds = def.PronounceSeconds
	}
	if !positive(t.MaxPronounceDistanceMeters) {
		t.MaxPronounceDistanceMeters = def.MaxPronounceDistanceMeters
	}
	if !positive(t.ImminentDistanceMeters) {
		t.ImminentDistanceMeters = def.ImminentDistanceMeters
	}
	return t
}

// thresholdEpsilon absorbs float error when a tick lands exactly on a trigger
// distance after unit conversion.
const thresholdEpsilon = 1e-6

// Option configures an Announcer.
type Option func(*Announcer)

// WithTuning overrides the trigger constants.
func WithTuning(t Tuning) Option {
	return func(a *Announcer) {
		a.tuning = t.withDefaults()
	}
}

// WithSettings sets the initial notification settings.
func WithSettings(s Settings) Option {
	return func(a *Announcer) {
		a.settings = s
	}
}

// Announcer decides when turn notifications are pronounced while a route is followed.
//
// It is driven synchronously by UpdateRouteFollowingInfo, once per position
// fix. It is not safe for concurrent use; hosts that configure it from
// another goroutine must serialize access.
type Announcer struct {
	enabled  bool
	settings Settings
	tuning   Tuning

	// Speed is kept in m/s and converted on use, so a later SetSettings
	// with another unit does not leave a stale converted value behind.
	speedMps float64

	announced stageSet
	trackedID string
	tracking  bool
}

// NewAnnouncer creates a disabled announcer with default tuning and no settings.
func NewAnnouncer(opts ...Option) *Announcer {
	a := &Announcer{tuning: DefaultTuning()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enable switches prompt output on or off. Stage bookkeeping continues while
// disabled: stages that come due are consumed silently, so re-enabling in the
// middle of an approach does not replay stale prompts.
func (a *Announcer) Enable(enable bool) {
	a.enabled = enable
}

// IsEnabled reports whether prompts are emitted.
func (a *Announcer) IsEnabled() bool {
	return a.enabled
}

// SetSettings replaces the notification settings. Invalid settings suppress all prompts.
func (a *Announcer) SetSettings(s Settings) {
	a.settings = s
}

// Settings returns the settings in effect.
func (a *Announcer) Settings() Settings {
	return a.settings
}

// Tuning returns the trigger constants with defaults filled in.
func (a *Announcer) Tuning() Tuning {
	return a.tuning.withDefaults()
}

// SetSpeedMetersPerSecond records the current speed. It is kept in m/s and
// converted with the settings in effect at the next UpdateRouteFollowingInfo
// call, so a speed set before the settings is not lost.
func (a *Announcer) SetSpeedMetersPerSecond(speed float64) {
	a.speedMps = speed
}

// CurrentSpeedUnitsPerSecond returns the last speed in the configured unit.
func (a *Announcer) CurrentSpeedUnitsPerSecond() float64 {
	return a.settings.ConvertMetersPerSecondToUnitsPerSecond(a.speedMps)
}

// Reset forgets the tracked maneuver and re-arms both stages.
func (a *Announcer) Reset() {
	a.announced = 0
	a.trackedID = ""
	a.tracking = false
}

// Announced reports whether stage already fired for the tracked maneuver.
func (a *Announcer) Announced(stage Stage) bool {
	return a.announced.has(stage)
}

// TrackedTurnID returns the id of the maneuver the stage set applies to.
func (a *Announcer) TrackedTurnID() (string, bool) {
	return a.trackedID, a.tracking
}

// UpdateRouteFollowingInfo evaluates one position fix against turn and appends
// the prompts that are due to out. Each stage fires at most once per maneuver;
// a distance that grows back above a trigger does not re-arm it.
func (a *Announcer) UpdateRouteFollowingInfo(out *[]Notification, turn turns.Item, distanceToTurnMeters float64) {
	if !a.tracking || turn.ID != a.trackedID {
		a.trackedID = turn.ID
		a.tracking = true
		a.announced = 0
	}

	if !a.settings.IsValid() {
		return
	}
	if !finite(distanceToTurnMeters) || distanceToTurnMeters < 0 {
		return
	}

	tuning := a.tuning.withDefaults()
	distanceUnits := a.settings.ConvertMetersToUnits(distanceToTurnMeters)

	// Imminent: fixed absolute distance, independent of speed.
	if !a.announced.has(StageImminent) && distanceToTurnMeters < tuning.ImminentDistanceMeters {
		a.pronounce(out, turn, StageImminent, 0)
	}

	if a.announced.has(StageLead) {
		return
	}
	speed := a.CurrentSpeedUnitsPerSecond()
	if !finite(speed) || speed < 0 {
		return
	}

	// Lead: the nominal distance plus what is covered while the prompt plays.
	nominal := a.settings.ComputeTurnDistance(speed)
	allowance := math.Min(speed*tuning.PronounceSeconds,
		a.settings.ConvertMetersToUnits(tuning.MaxPronounceDistanceMeters))
	trigger := nominal + allowance

	if distanceUnits+thresholdEpsilon < trigger {
		a.pronounce(out, turn, StageLead, a.settings.RoundByPresetSoundedDistancesUnits(nominal))
	}
}

func (a *Announcer) pronounce(out *[]Notification, turn turns.Item, stage Stage, distanceUnits float64) {
	a.announced.add(stage)

	if !a.enabled {
		slog.Debug("TurnAnnouncer: stage due while disabled", "turn", turn.ID, "stage", stage)
		return
	}
	if out == nil {
		return
	}

	*out = append(*out, Notification{
		DistanceUnits: distanceUnits,
		ExitNum:       turn.ExitNum,
		TurnDir:       turn.Direction,
		LengthUnits:   a.settings.LengthUnit(),
		Stage:         stage,
	})
	slog.Debug("TurnAnnouncer: notification",
		"turn", turn.ID, "stage", stage, "distance", distanceUnits, "unit", a.settings.LengthUnit())
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
