package domain

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduleConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		start   string
		end     string
		wantErr error
	}{
		{name: "missing file", file: "", start: "09:00", end: "10:00", wantErr: ErrValidation},
		{name: "blank file", file: "   ", start: "09:00", end: "10:00", wantErr: ErrValidation},
		{name: "missing start", file: "a.mp3", start: "", end: "10:00", wantErr: ErrValidation},
		{name: "missing end", file: "a.mp3", start: "09:00", end: "", wantErr: ErrValidation},
		{name: "hour out of range", file: "a.mp3", start: "25:61", end: "10:00", wantErr: ErrParse},
		{name: "garbage end", file: "a.mp3", start: "09:00", end: "ten", wantErr: ErrParse},
		{name: "inverted", file: "a.mp3", start: "10:00", end: "09:00", wantErr: ErrRange},
		{name: "empty window", file: "a.mp3", start: "10:00", end: "10:00", wantErr: ErrRange},
		{name: "ok", file: "a.mp3", start: "09:00", end: "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := NewScheduleConfig(tt.file, tt.start, tt.end)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a.mp3", cfg.FilePath)
			assert.Equal(t, NewTimeOfDay(9, 0, 0), cfg.Window.Start)
			assert.Equal(t, NewTimeOfDay(10, 0, 0), cfg.Window.End)
		})
	}
}

func TestNewScheduleConfig_MissingFieldWinsOverParse(t *testing.T) {
	t.Parallel()

	_, err := NewScheduleConfig("", "25:61", "10:00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrParse))
}

func TestKind(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Kind(nil))
	assert.Equal(t, "validation", Kind(validationErrorf("x")))
	assert.Equal(t, "parse", Kind(errors.Wrap(parseErrorf("x"), "start time")))
	assert.Equal(t, "range", Kind(rangeErrorf("x")))
	assert.Equal(t, "playback", Kind(PlaybackErrorf(errors.New("boom"), "load %s", "a.mp3")))
	assert.Equal(t, "probe", Kind(ProbeErrorf(nil, "unreachable")))
	assert.Equal(t, "internal", Kind(errors.New("other")))
}
