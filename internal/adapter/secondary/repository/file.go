package repository

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"sound-scheduler/internal/domain"
)

// FileRepository implements domain.SettingsRepository using a TOML file.
// This is a secondary adapter.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a new file-based settings repository.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create config dir")
	}

	return &FileRepository{path: path}, nil
}

// Path returns the file backing the repository.
func (f *FileRepository) Path() string {
	return f.path
}

// persistedData represents the TOML structure on disk.
type persistedData struct {
	PollIntervalMs int    `toml:"poll_interval_ms"`
	Notifications  *bool  `toml:"notifications"`
	LogFile        string `toml:"log_file,omitempty"`
	Probe          struct {
		Enabled   *bool  `toml:"enabled"`
		Target    string `toml:"target"`
		TimeoutMs int    `toml:"timeout_ms"`
	} `toml:"probe"`
	Web struct {
		Addr string `toml:"addr"`
	} `toml:"web"`
}

// Load reads the settings from disk. A missing file yields the defaults.
func (f *FileRepository) Load() (domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return domain.Settings{}, errors.Wrap(err, "read settings")
	}

	var persisted persistedData
	if err := toml.Unmarshal(data, &persisted); err != nil {
		return domain.Settings{}, errors.Mark(errors.Wrapf(err, "parse %s", f.path), domain.ErrInvalidSettings)
	}

	// Unset keys keep their defaults
	if persisted.PollIntervalMs > 0 {
		settings.PollInterval = time.Duration(persisted.PollIntervalMs) * time.Millisecond
	}
	if persisted.Notifications != nil {
		settings.Notifications = *persisted.Notifications
	}
	if persisted.Probe.Enabled != nil {
		settings.ProbeEnabled = *persisted.Probe.Enabled
	}
	if persisted.Probe.Target != "" {
		settings.ProbeTarget = persisted.Probe.Target
	}
	if persisted.Probe.TimeoutMs > 0 {
		settings.ProbeTimeout = time.Duration(persisted.Probe.TimeoutMs) * time.Millisecond
	}
	if persisted.Web.Addr != "" {
		settings.WebAddr = persisted.Web.Addr
	}
	settings.LogFile = persisted.LogFile

	return settings, nil
}

// Save persists the settings to disk.
func (f *FileRepository) Save(settings domain.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var persisted persistedData
	persisted.PollIntervalMs = int(settings.PollInterval.Milliseconds())
	persisted.Notifications = &settings.Notifications
	persisted.LogFile = settings.LogFile
	persisted.Probe.Enabled = &settings.ProbeEnabled
	persisted.Probe.Target = settings.ProbeTarget
	persisted.Probe.TimeoutMs = int(settings.ProbeTimeout.Milliseconds())
	persisted.Web.Addr = settings.WebAddr

	data, err := toml.Marshal(&persisted)
	if err != nil {
		return errors.Wrap(err, "marshal settings")
	}

	// Atomic write
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write tmp")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "rename tmp")
	}

	return nil
}

// DefaultPath returns the default settings file path.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "sound-scheduler", "settings.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sound-scheduler", "settings.toml")
}
