package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents logging severity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var (
	currentLevel     = LevelWarn
	currentVerbosity = 0
)

func init() {
	SetOutput(os.Stderr, "")
	SetVerbosity(0)
}

// SetOutput routes log lines to w in console format and, when logFile is set,
// to a small rolling JSON file as well.
func SetOutput(w io.Writer, logFile string) {
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}
	writers := []io.Writer{console}
	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger()
}

// SetVerbosity configures logger output from count of -v flags (0-4).
func SetVerbosity(count int) {
	if count < 0 {
		count = 0
	}
	if count > 4 {
		count = 4
	}
	currentVerbosity = count
	switch count {
	case 0:
		currentLevel = LevelWarn
	case 1:
		currentLevel = LevelInfo
	case 2:
		currentLevel = LevelDebug
	default:
		currentLevel = LevelTrace
	}
	zerolog.SetGlobalLevel(toZerolog(currentLevel))
}

// Verbosity returns the stored -v count.
func Verbosity() int {
	return currentVerbosity
}

// LevelName returns current level label.
func LevelName() string {
	return LevelToString(currentLevel)
}

// LevelToString converts a Level to human readable text.
func LevelToString(l Level) string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ParseLevel returns Level + verbosity count from string.
func ParseLevel(s string) (Level, int, error) {
	switch strings.ToLower(s) {
	case "error":
		return LevelError, 0, nil
	case "warn", "warning":
		return LevelWarn, 0, nil
	case "info":
		return LevelInfo, 1, nil
	case "debug":
		return LevelDebug, 2, nil
	case "trace":
		return LevelTrace, 4, nil
	default:
		return LevelWarn, currentVerbosity, errors.Newf("unknown level %s", s)
	}
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

func logf(l Level, format string, args ...any) {
	log.WithLevel(toZerolog(l)).Msgf(format, args...)
}

// Errorf always prints.
func Errorf(format string, args ...any) {
	logf(LevelError, format, args...)
}

func Warnf(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

func Infof(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

func Debugf(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

func Tracef(format string, args ...any) {
	logf(LevelTrace, format, args...)
}
