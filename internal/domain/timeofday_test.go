package domain

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	got, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, "09:30", got.String())

	got, err = ParseTimeOfDay(" 23:59 ")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(23, 59, 0), got)

	for _, bad := range []string{"25:61", "24:00", "12:60", "noon", "12-30", "10:00:00"} {
		_, err := ParseTimeOfDay(bad)
		assert.True(t, errors.Is(err, ErrParse), "input %q: %v", bad, err)
	}

	_, err = ParseTimeOfDay("")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTimeOfDayOf(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 14, 5, 7, 999, time.Local)
	tod := TimeOfDayOf(ts)
	assert.Equal(t, NewTimeOfDay(14, 5, 7), tod)
	assert.Equal(t, "14:05:07", tod.String())
}

func TestTimeOfDayAddWraps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NewTimeOfDay(0, 0, 1), NewTimeOfDay(23, 59, 59).Add(2*time.Second))
	assert.Equal(t, NewTimeOfDay(10, 0, 3), NewTimeOfDay(10, 0, 0).Add(3*time.Second))
}

func TestWindow(t *testing.T) {
	t.Parallel()

	w, err := NewWindow(NewTimeOfDay(9, 0, 0), NewTimeOfDay(10, 0, 0))
	require.NoError(t, err)

	assert.False(t, w.Contains(NewTimeOfDay(8, 59, 59)))
	assert.True(t, w.Contains(NewTimeOfDay(9, 0, 0)))
	assert.True(t, w.Contains(NewTimeOfDay(9, 59, 59)))
	assert.False(t, w.Contains(NewTimeOfDay(10, 0, 0)))

	assert.False(t, w.Closed(NewTimeOfDay(9, 59, 59)))
	assert.True(t, w.Closed(NewTimeOfDay(10, 0, 0)))
	assert.True(t, w.Closed(NewTimeOfDay(23, 0, 0)))
	assert.Equal(t, "09:00-10:00", w.String())

	_, err = NewWindow(NewTimeOfDay(22, 0, 0), NewTimeOfDay(2, 0, 0))
	assert.True(t, errors.Is(err, ErrRange))
}
