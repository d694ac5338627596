package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"turnvoice/pkg/turns/sound"
)

// Environment overrides applied by Load.
const (
	EnvUnits  = "TURNVOICE_UNITS"
	EnvDBPath = "TURNVOICE_DB"
)

// Config holds the application configuration.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	DB    DBConfig    `yaml:"db"`
	Sound SoundConfig `yaml:"sound"`
	Sim   SimConfig   `yaml:"sim"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server        LogSettings `yaml:"server"`
	Announcements LogSettings `yaml:"announcements"`
	Trace         bool        `yaml:"trace"` // per-tick debug output
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path      string   `yaml:"path"`
	Retention Duration `yaml:"retention"` // journal age limit, 0 keeps everything
}

// SoundConfig holds the turn notification settings for both unit systems.
type SoundConfig struct {
	Enabled  bool                `yaml:"enabled"`
	Units    string              `yaml:"units"` // "metric", "imperial"
	Metric   NotificationProfile `yaml:"metric"`
	Imperial NotificationProfile `yaml:"imperial"`
	Tuning   TuningConfig        `yaml:"tuning"`
}

// NotificationProfile holds the lead notification settings of one unit system.
// Distances are in the unit of the profile (meters for metric, feet for imperial).
type NotificationProfile struct {
	TimeSeconds      int       `yaml:"time_seconds"`
	MinDistance      float64   `yaml:"min_distance"`
	MaxDistance      float64   `yaml:"max_distance"`
	SoundedDistances []float64 `yaml:"sounded_distances"`
}

// TuningConfig holds the empirical trigger constants.
type TuningConfig struct {
	PronounceTime        Duration `yaml:"pronounce_time"`
	MaxPronounceDistance Distance `yaml:"max_pronounce_distance"`
	ImminentDistance     Distance `yaml:"imminent_distance"`
}

// SimConfig holds settings for the route simulation.
type SimConfig struct {
	Tick     Duration    `yaml:"tick"`
	Realtime bool        `yaml:"realtime"`
	Speeds   []SpeedStep `yaml:"speeds"`
}

// SpeedStep sets the vehicle speed from a distance along the route onwards.
type SpeedStep struct {
	From  Distance `yaml:"from"`
	Speed float64  `yaml:"speed_mps"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Announcements: LogSettings{
				Path:  "./logs/announcements.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path:      "./data/turnvoice.db",
			Retention: Duration(30 * 24 * time.Hour),
		},
		Sound: SoundConfig{
			Enabled: true,
			Units:   "metric",
			Metric: NotificationProfile{
				TimeSeconds:      20,
				MinDistance:      200,
				MaxDistance:      700,
				SoundedDistances: []float64{100, 200, 300, 400, 500, 600, 700},
			},
			Imperial: NotificationProfile{
				TimeSeconds:      20,
				MinDistance:      500,
				MaxDistance:      2000,
				SoundedDistances: []float64{200, 400, 600, 800, 1000, 1500, 2000},
			},
			Tuning: TuningConfig{
				PronounceTime:        Duration(5 * time.Second),
				MaxPronounceDistance: Distance(100),
				ImminentDistance:     Distance(100),
			},
		},
		Sim: SimConfig{
			Tick:     Duration(1 * time.Second),
			Realtime: false,
			Speeds: []SpeedStep{
				{From: 0, Speed: 30},
				{From: Distance(2500), Speed: 14},
			},
		},
	}
}

// Unit returns the active length unit.
func (c *SoundConfig) Unit() (sound.LengthUnit, error) {
	return sound.ParseLengthUnit(c.Units)
}

// Settings builds validated notification settings for unit.
func (c *SoundConfig) Settings(unit sound.LengthUnit) (sound.Settings, error) {
	var p NotificationProfile
	switch unit {
	case sound.Meters:
		p = c.Metric
	case sound.Feet:
		p = c.Imperial
	default:
		return sound.Settings{}, fmt.Errorf("%w: no profile for unit %s", sound.ErrInvalidSettings, unit)
	}

	s := sound.NewSettings(p.TimeSeconds, p.MinDistance, p.MaxDistance, p.SoundedDistances, unit)
	if err := s.Validate(); err != nil {
		return sound.Settings{}, fmt.Errorf("%s profile: %w", unit, err)
	}
	return s, nil
}

// ActiveSettings builds the settings of the configured unit system.
func (c *SoundConfig) ActiveSettings() (sound.Settings, error) {
	unit, err := c.Unit()
	if err != nil {
		return sound.Settings{}, err
	}
	return c.Settings(unit)
}

// Tuning converts the YAML tuning block. Zero fields fall back to engine defaults.
func (t TuningConfig) Tuning() sound.Tuning {
	return sound.Tuning{
		PronounceSeconds:           time.Duration(t.PronounceTime).Seconds(),
		MaxPronounceDistanceMeters: t.MaxPronounceDistance.Meters(),
		ImminentDistanceMeters:     t.ImminentDistance.Meters(),
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Env wins over the file but is never written back
	if units := os.Getenv(EnvUnits); units != "" {
		cfg.Sound.Units = units
	}
	if dbPath := os.Getenv(EnvDBPath); dbPath != "" {
		cfg.DB.Path = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts of the config the engine cannot degrade gracefully on.
func (c *Config) Validate() error {
	if _, err := c.Sound.ActiveSettings(); err != nil {
		return fmt.Errorf("invalid sound config: %w", err)
	}
	if time.Duration(c.Sim.Tick) <= 0 {
		return fmt.Errorf("invalid sim tick %v: must be positive", time.Duration(c.Sim.Tick))
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# TurnVoice Configuration
# -----------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), ft (feet), mi (miles), nm (nautical miles)
# Profile distances (min_distance, max_distance, sounded_distances) are in the
# unit of the profile: meters for metric, feet for imperial.

`)
	data = append(header, data...)

	reUnits := regexp.MustCompile(`(?m)^(\s+)units:`)
	data = reUnits.ReplaceAll(data, []byte("${1}# Options: metric, imperial\n${1}units:"))

	reSounded := regexp.MustCompile(`(?m)^(\s+)sounded_distances:`)
	data = reSounded.ReplaceAll(data, []byte("${1}# Strictly increasing; min/max must lie within this range\n${1}sounded_distances:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
