package announcement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"turnvoice/pkg/config"
	"turnvoice/pkg/logging"
	"turnvoice/pkg/model"
	"turnvoice/pkg/route"
	"turnvoice/pkg/sim"
	"turnvoice/pkg/store"
	"turnvoice/pkg/turns"
	"turnvoice/pkg/turns/sound"
)

// Manager runs one announcer for a driving session. The announcer itself is
// not safe for concurrent use, so every call goes through mu.
type Manager struct {
	mu        sync.Mutex
	announcer *sound.Announcer
	cfg       config.Provider
	speaker   Speaker
	journal   store.AnnouncementStore
	state     store.StateStore
	sessionID string
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithJournal records every emitted notification in st.
func WithJournal(st store.AnnouncementStore) Option {
	return func(m *Manager) { m.journal = st }
}

// WithStateStore persists runtime choices (units, enabled) in st.
func WithStateStore(st store.StateStore) Option {
	return func(m *Manager) { m.state = st }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(m *Manager) { m.sessionID = id }
}

// NewManager builds a manager from the settings and tuning currently in
// effect. It fails if those settings are invalid.
func NewManager(ctx context.Context, cfg config.Provider, sp Speaker, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		speaker:   sp,
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	settings, err := cfg.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification settings: %w", err)
	}
	m.announcer = sound.NewAnnouncer(
		sound.WithSettings(settings),
		sound.WithTuning(cfg.Tuning(ctx)),
	)
	m.announcer.Enable(cfg.SoundEnabled(ctx))

	if m.state != nil {
		if err := m.state.SetState(ctx, config.KeyActiveSession, m.sessionID); err != nil {
			slog.Warn("Failed to persist session id", "error", err)
		}
	}

	slog.Info("Announcement session started",
		"session", m.sessionID,
		"units", settings.LengthUnit().String(),
		"enabled", m.announcer.IsEnabled(),
	)
	return m, nil
}

// SessionID returns the id under which notifications are journaled.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// Tick feeds one position fix on r to the announcer and delivers whatever it
// emits. Journal failures are logged; speaker failures are returned after all
// notifications were delivered.
func (m *Manager) Tick(ctx context.Context, fix sim.Fix, r *route.Route) ([]sound.Notification, error) {
	next, distance, ok := r.Locate(fix.Along)
	if !ok {
		return nil, nil
	}

	logging.TraceDefault("Tick",
		"along", fix.Along,
		"speed_mps", fix.SpeedMps,
		"turn", next.ID,
		"distance_m", distance,
	)

	var out []sound.Notification
	m.mu.Lock()
	m.announcer.SetSpeedMetersPerSecond(fix.SpeedMps)
	m.announcer.UpdateRouteFollowingInfo(&out, next, distance)
	m.mu.Unlock()

	var errs []error
	for _, n := range out {
		m.record(ctx, next, n, distance)
		if m.speaker == nil {
			continue
		}
		if err := m.speaker.Announce(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("speaker failed for turn %s: %w", next.ID, err))
		}
	}
	return out, errors.Join(errs...)
}

func (m *Manager) record(ctx context.Context, turn turns.Item, n sound.Notification, distanceM float64) {
	a := &model.Announcement{
		SessionID:       m.sessionID,
		TurnID:          turn.ID,
		Stage:           n.Stage.String(),
		DistanceUnits:   n.DistanceUnits,
		LengthUnit:      n.LengthUnits.String(),
		Direction:       n.TurnDir.String(),
		ExitNum:         n.ExitNum,
		UseThen:         n.UseThenInsteadOfDistance,
		DistanceToTurnM: distanceM,
		CreatedAt:       m.now(),
	}
	logging.LogAnnouncement(a)

	if m.journal == nil {
		return
	}
	if err := m.journal.SaveAnnouncement(ctx, a); err != nil {
		slog.Warn("Failed to journal announcement", "turn", turn.ID, "stage", a.Stage, "error", err)
	}
}

// SetUnits switches the active unit system and persists the choice. The
// current turn keeps its fired stages.
func (m *Manager) SetUnits(ctx context.Context, unit sound.LengthUnit) error {
	settings, err := m.cfg.AppConfig().Sound.Settings(unit)
	if err != nil {
		return err
	}
	if m.state != nil {
		if err := m.state.SetState(ctx, config.KeyUnits, unit.String()); err != nil {
			return fmt.Errorf("failed to persist units: %w", err)
		}
	}

	m.mu.Lock()
	m.announcer.SetSettings(settings)
	m.mu.Unlock()

	slog.Info("Units changed", "units", unit.String())
	return nil
}

// SetEnabled turns voice output on or off and persists the choice.
func (m *Manager) SetEnabled(ctx context.Context, enabled bool) error {
	if m.state != nil {
		if err := m.state.SetState(ctx, config.KeySoundEnabled, strconv.FormatBool(enabled)); err != nil {
			return fmt.Errorf("failed to persist sound state: %w", err)
		}
	}

	m.mu.Lock()
	m.announcer.Enable(enabled)
	m.mu.Unlock()

	slog.Info("Sound toggled", "enabled", enabled)
	return nil
}

// ResetRoute forgets the tracked turn, e.g. after a reroute.
func (m *Manager) ResetRoute() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announcer.Reset()
}

// Settings returns the settings currently in effect.
func (m *Manager) Settings() sound.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.announcer.Settings()
}

// Enabled reports whether voice output is on.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.announcer.IsEnabled()
}
