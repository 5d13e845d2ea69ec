package web

import (
	"time"

	"github.com/cockroachdb/errors"

	"sound-scheduler/internal/domain"
)

// SettingsView is the JSON shape of domain.Settings, durations as strings.
type SettingsView struct {
	PollInterval  string `json:"pollInterval"`
	ProbeEnabled  bool   `json:"probeEnabled"`
	ProbeTarget   string `json:"probeTarget"`
	ProbeTimeout  string `json:"probeTimeout"`
	Notifications bool   `json:"notifications"`
	WebAddr       string `json:"webAddr"`
	LogFile       string `json:"logFile,omitempty"`
}

func NewSettingsView(s domain.Settings) SettingsView {
	return SettingsView{
		PollInterval:  s.PollInterval.String(),
		ProbeEnabled:  s.ProbeEnabled,
		ProbeTarget:   s.ProbeTarget,
		ProbeTimeout:  s.ProbeTimeout.String(),
		Notifications: s.Notifications,
		WebAddr:       s.WebAddr,
		LogFile:       s.LogFile,
	}
}

// settingsPayload is a partial update; nil fields are left alone.
type settingsPayload struct {
	PollInterval  *string `json:"pollInterval"`
	ProbeEnabled  *bool   `json:"probeEnabled"`
	ProbeTarget   *string `json:"probeTarget"`
	ProbeTimeout  *string `json:"probeTimeout"`
	Notifications *bool   `json:"notifications"`
	WebAddr       *string `json:"webAddr"`
	LogFile       *string `json:"logFile"`
}

func (p settingsPayload) apply(s domain.Settings) (domain.Settings, error) {
	parse := func(field, raw string) (time.Duration, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, errors.Mark(errors.Wrapf(err, "%s", field), domain.ErrInvalidSettings)
		}
		return d, nil
	}

	if p.PollInterval != nil {
		d, err := parse("pollInterval", *p.PollInterval)
		if err != nil {
			return s, err
		}
		s.PollInterval = d
	}
	if p.ProbeTimeout != nil {
		d, err := parse("probeTimeout", *p.ProbeTimeout)
		if err != nil {
			return s, err
		}
		s.ProbeTimeout = d
	}
	if p.ProbeEnabled != nil {
		s.ProbeEnabled = *p.ProbeEnabled
	}
	if p.ProbeTarget != nil {
		s.ProbeTarget = *p.ProbeTarget
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.WebAddr != nil {
		s.WebAddr = *p.WebAddr
	}
	if p.LogFile != nil {
		s.LogFile = *p.LogFile
	}
	return s, nil
}

type statusView struct {
	Running    bool       `json:"running"`
	SessionID  string     `json:"sessionId,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FilePath   string     `json:"filePath,omitempty"`
	Start      string     `json:"start,omitempty"`
	End        string     `json:"end,omitempty"`
	Playing    bool       `json:"playing"`
	EngineBusy bool       `json:"engineBusy"`
	Since      *time.Time `json:"since,omitempty"`
	Restarts   int        `json:"restarts"`
}

func newStatusView(snap domain.SessionSnapshot) statusView {
	v := statusView{Running: snap.Running}
	if !snap.Running {
		return v
	}
	started := snap.StartedAt
	v.SessionID = snap.SessionID
	v.StartedAt = &started
	v.FilePath = snap.Config.FilePath
	v.Start = snap.Config.Window.Start.String()
	v.End = snap.Config.Window.End.String()
	v.Playing = snap.Playback.Playing
	v.EngineBusy = snap.Playback.EngineBusy
	v.Restarts = snap.Playback.Restarts
	if !snap.Playback.Since.IsZero() {
		since := snap.Playback.Since
		v.Since = &since
	}
	return v
}
