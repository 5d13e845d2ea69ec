package domain

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ScheduleConfig is the immutable snapshot a scheduling session runs on.
// It is created once per session and never mutated afterwards.
type ScheduleConfig struct {
	FilePath string
	Window   Window
}

// NewScheduleConfig validates raw user input in the order
// missing field -> malformed time -> inverted window.
func NewScheduleConfig(filePath, start, end string) (ScheduleConfig, error) {
	filePath = strings.TrimSpace(filePath)
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	switch {
	case filePath == "":
		return ScheduleConfig{}, validationErrorf("file path is required")
	case start == "":
		return ScheduleConfig{}, validationErrorf("start time is required")
	case end == "":
		return ScheduleConfig{}, validationErrorf("end time is required")
	}

	startTOD, err := ParseTimeOfDay(start)
	if err != nil {
		return ScheduleConfig{}, errors.Wrap(err, "start time")
	}
	endTOD, err := ParseTimeOfDay(end)
	if err != nil {
		return ScheduleConfig{}, errors.Wrap(err, "end time")
	}
	window, err := NewWindow(startTOD, endTOD)
	if err != nil {
		return ScheduleConfig{}, err
	}
	return ScheduleConfig{FilePath: filePath, Window: window}, nil
}

// PlaybackState is a point-in-time view of the playback controller.
// Playing is the intent flag ("we started it and have not stopped it");
// EngineBusy is what the audio engine reports right now.
type PlaybackState struct {
	Playing    bool
	EngineBusy bool
	File       string
	Since      time.Time
	Restarts   int
}

// SessionSnapshot represents a complete view of the scheduler state.
type SessionSnapshot struct {
	SessionID string
	Running   bool
	StartedAt time.Time
	Config    ScheduleConfig
	Playback  PlaybackState
	Settings  Settings
}
