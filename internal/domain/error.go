package domain

import "github.com/cockroachdb/errors"

var (
	// ErrValidation indicates a required field is missing.
	ErrValidation = errors.New("validation error")

	// ErrParse indicates a time string is not HH:MM.
	ErrParse = errors.New("parse error")

	// ErrRange indicates the start time is not before the end time.
	ErrRange = errors.New("range error")

	// ErrPlayback indicates the audio engine failed to load, play or stop a file.
	ErrPlayback = errors.New("playback error")

	// ErrProbe indicates the connectivity check failed. Never fatal.
	ErrProbe = errors.New("probe error")

	// ErrSessionActive indicates scheduling is already running.
	ErrSessionActive = errors.New("scheduling is already running")

	// ErrInvalidSettings indicates a settings value is out of range.
	ErrInvalidSettings = errors.New("invalid settings")
)

func validationErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func parseErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrParse)
}

func rangeErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrRange)
}

func settingsErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidSettings)
}

// PlaybackErrorf wraps an engine failure so callers can match ErrPlayback.
func PlaybackErrorf(err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Newf(format, args...), ErrPlayback)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrPlayback)
}

// ProbeErrorf wraps a connectivity failure so callers can match ErrProbe.
func ProbeErrorf(err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Newf(format, args...), ErrProbe)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrProbe)
}

// Kind names the taxonomy bucket of err for UI surfaces.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrRange):
		return "range"
	case errors.Is(err, ErrPlayback):
		return "playback"
	case errors.Is(err, ErrProbe):
		return "probe"
	case errors.Is(err, ErrSessionActive):
		return "session"
	case errors.Is(err, ErrInvalidSettings):
		return "settings"
	default:
		return "internal"
	}
}
