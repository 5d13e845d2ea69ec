package domain

import "context"

// SettingsRepository is a secondary port that defines how to persist settings.
type SettingsRepository interface {
	Load() (Settings, error)
	Save(settings Settings) error
}

// AudioEngine is a secondary port for the external audio-playback service.
// The core never touches audio bytes itself.
type AudioEngine interface {
	// Init acquires the output device. Called at session start.
	Init() error
	// Load opens and decodes path, replacing anything loaded before.
	Load(path string) error
	// Play starts the loaded track from the beginning.
	Play(loop bool) error
	// Stop halts playback. Stopping an idle engine is not an error.
	Stop() error
	// IsBusy reports whether sound is currently being produced.
	IsBusy() bool
	// Close releases the device and the loaded track. Called at session end.
	Close() error
}

// ConnectivityProbe is a secondary port for the best-effort reachability check.
// Implementations must honor ctx as their only timeout.
type ConnectivityProbe interface {
	Probe(ctx context.Context, target string) error
}

// Notifier is a secondary port for user-visible messages.
type Notifier interface {
	// Notify shows an informational confirmation.
	Notify(title, message string) error
	// Alert shows an error the user should see.
	Alert(title, message string) error
}
