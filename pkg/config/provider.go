package config

import (
	"context"
	"strconv"
	"time"

	"turnvoice/pkg/store"
	"turnvoice/pkg/turns/sound"
)

// Provider defines the interface for accessing unified configuration.
type Provider interface {
	// Sound
	Units(ctx context.Context) string
	SoundEnabled(ctx context.Context) bool
	Settings(ctx context.Context) (sound.Settings, error)
	Tuning(ctx context.Context) sound.Tuning

	// Sim
	SimTick(ctx context.Context) time.Duration
	SimRealtime(ctx context.Context) bool

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

// --- Implementations ---

func (p *UnifiedProvider) Units(ctx context.Context) string {
	return p.getString(ctx, KeyUnits, p.base.Sound.Units)
}

func (p *UnifiedProvider) SoundEnabled(ctx context.Context) bool {
	return p.getBool(ctx, KeySoundEnabled, p.base.Sound.Enabled)
}

// Settings builds the notification settings for the unit system currently in effect.
// A stored unit choice that no longer parses falls back to the config file.
func (p *UnifiedProvider) Settings(ctx context.Context) (sound.Settings, error) {
	unit, err := sound.ParseLengthUnit(p.Units(ctx))
	if err != nil {
		if unit, err = p.base.Sound.Unit(); err != nil {
			return sound.Settings{}, err
		}
	}
	return p.base.Sound.Settings(unit)
}

func (p *UnifiedProvider) Tuning(ctx context.Context) sound.Tuning {
	return p.base.Sound.Tuning.Tuning()
}

func (p *UnifiedProvider) SimTick(ctx context.Context) time.Duration {
	return time.Duration(p.base.Sim.Tick)
}

func (p *UnifiedProvider) SimRealtime(ctx context.Context) bool {
	return p.getBool(ctx, KeySimRealtime, p.base.Sim.Realtime)
}

// --- Helpers ---

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return b
			}
		}
	}
	return fallback
}
