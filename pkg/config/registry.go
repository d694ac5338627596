package config

// Persistent state keys (Registry)
const (
	KeyUnits         = "units"
	KeySoundEnabled  = "sound_enabled"
	KeySimRealtime   = "sim_realtime"
	KeyActiveSession = "active_session"
)
