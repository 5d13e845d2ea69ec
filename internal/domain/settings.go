package domain

import "time"

const (
	// DefaultPollInterval is the tick of both scheduling loops.
	DefaultPollInterval = time.Second
	// MinPollInterval keeps the loops from spinning.
	MinPollInterval = 100 * time.Millisecond

	DefaultProbeTarget  = "8.8.8.8"
	DefaultProbeTimeout = 2 * time.Second
	MaxProbeTimeout     = 10 * time.Second

	DefaultWebAddr = "127.0.0.1:7070"
)

// Settings holds ambient preferences. Schedules are deliberately not part of it.
type Settings struct {
	PollInterval  time.Duration
	ProbeEnabled  bool
	ProbeTarget   string
	ProbeTimeout  time.Duration
	Notifications bool
	WebAddr       string
	LogFile       string
}

// DefaultSettings returns the default settings values.
func DefaultSettings() Settings {
	return Settings{
		PollInterval:  DefaultPollInterval,
		ProbeEnabled:  true,
		ProbeTarget:   DefaultProbeTarget,
		ProbeTimeout:  DefaultProbeTimeout,
		Notifications: true,
		WebAddr:       DefaultWebAddr,
	}
}

// Validate checks if the settings values are usable.
func (s Settings) Validate() error {
	if s.PollInterval < MinPollInterval {
		return settingsErrorf("poll interval must be at least %s", MinPollInterval)
	}
	if s.ProbeTimeout < time.Second || s.ProbeTimeout > MaxProbeTimeout {
		return settingsErrorf("probe timeout must be between 1s and %s", MaxProbeTimeout)
	}
	if s.ProbeEnabled && s.ProbeTarget == "" {
		return settingsErrorf("probe target is required when probing is enabled")
	}
	if s.WebAddr == "" {
		return settingsErrorf("web address is required")
	}
	return nil
}
