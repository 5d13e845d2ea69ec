package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sound-scheduler/internal/domain"
	"sound-scheduler/internal/eventlog"
)

type schedulerEnv struct {
	uc       SchedulerUseCase
	engine   *fakeEngine
	probe    *fakeProbe
	notifier *fakeNotifier
	repo     *memRepo
	clock    *clockwork.FakeClock
	bus      *eventlog.Bus
}

func newSchedulerEnv(t *testing.T, now time.Time) *schedulerEnv {
	t.Helper()
	env := &schedulerEnv{
		engine:   &fakeEngine{},
		probe:    &fakeProbe{},
		notifier: &fakeNotifier{},
		repo:     &memRepo{settings: domain.DefaultSettings()},
		clock:    clockwork.NewFakeClockAt(now),
		bus:      eventlog.NewBus(64),
	}
	uc, err := NewSchedulerUseCase(env.repo, env.engine, env.probe, env.notifier,
		WithClock(env.clock), WithEvents(env.bus))
	require.NoError(t, err)
	env.uc = uc
	t.Cleanup(func() { _ = uc.StopScheduling() })
	return env
}

func (env *schedulerEnv) playing() bool {
	return env.uc.Snapshot().Playback.Playing
}

func TestStartScheduling_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  ScheduleRequest
		want error
	}{
		{name: "missing file", req: ScheduleRequest{FilePath: "", Start: "09:00", End: "10:00"}, want: domain.ErrValidation},
		{name: "blank file", req: ScheduleRequest{FilePath: "  ", Start: "09:00", End: "10:00"}, want: domain.ErrValidation},
		{name: "missing end", req: ScheduleRequest{FilePath: "a.mp3", Start: "09:00"}, want: domain.ErrValidation},
		{name: "bad time", req: ScheduleRequest{FilePath: "a.mp3", Start: "25:61", End: "10:00"}, want: domain.ErrParse},
		{name: "inverted", req: ScheduleRequest{FilePath: "a.mp3", Start: "10:00", End: "09:00"}, want: domain.ErrRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newSchedulerEnv(t, at(9, 0, 0))

			err := env.uc.StartScheduling(tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.False(t, env.uc.Snapshot().Running, "no loop may launch")
			assert.Zero(t, env.engine.inits)
			assert.Empty(t, env.bus.History(0))
		})
	}
}

func TestStartScheduling_ValidationMessage(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 0, 0))

	err := env.uc.StartScheduling(ScheduleRequest{Start: "09:00", End: "10:00"})
	require.Error(t, err)
	assert.Equal(t, "file path is required", err.Error())

	err = env.uc.StartScheduling(ScheduleRequest{FilePath: "a.mp3"})
	require.Error(t, err)
	assert.Equal(t, "start time is required; end time is required", err.Error())
}

func TestStartScheduling_ReturnsImmediatelyAndRefusesSecondSession(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(8, 0, 0))

	req := ScheduleRequest{FilePath: "/music/song.mp3", Start: "09:00", End: "10:00"}
	require.NoError(t, env.uc.StartScheduling(req))

	snap := env.uc.Snapshot()
	assert.True(t, snap.Running)
	assert.NotEmpty(t, snap.SessionID)
	assert.Equal(t, "/music/song.mp3", snap.Config.FilePath)
	assert.False(t, snap.Playback.Playing, "outside the window the loops stay idle")

	err := env.uc.StartScheduling(req)
	assert.True(t, errors.Is(err, domain.ErrSessionActive))

	notices, _ := env.notifier.snapshot()
	assert.Equal(t, []string{"Scheduling started"}, notices)
}

func TestStartScheduling_EngineInitFailure(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 0, 0))
	env.engine.initErr = errors.New("no output device")

	err := env.uc.StartScheduling(ScheduleRequest{FilePath: "a.mp3", Start: "09:00", End: "10:00"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPlayback))
	assert.False(t, env.uc.Snapshot().Running)
}

func TestScheduling_WindowOpensAndCloses(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(8, 59, 59))

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "song.mp3", Start: "09:00", End: "09:01",
	}))
	waitForTickers(t, env.clock)
	assert.False(t, env.playing())

	env.clock.Advance(time.Second)
	require.Eventually(t, env.playing, waitFor, time.Millisecond, "playback starts within one tick")

	env.clock.Advance(30 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, env.playing(), "still inside the window")

	env.clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool { return !env.playing() }, waitFor, time.Millisecond,
		"boundary monitor stops playback at the end time")

	_, _, stops, _ := env.engine.counts()
	assert.Equal(t, 1, stops)
	assert.Equal(t, []eventlog.Kind{
		eventlog.KindSchedulingStarted, eventlog.KindStarted, eventlog.KindStopped,
	}, kinds(env.bus))
}

func TestScheduling_StartsImmediatelyInsideWindow(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 30, 0))

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "song.mp3", Start: "09:00", End: "10:00",
	}))
	require.Eventually(t, env.playing, waitFor, time.Millisecond)
}

func TestScheduling_RestartsWhenTrackEnds(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 30, 0))

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "short.mp3", Start: "09:00", End: "10:00",
	}))
	waitForTickers(t, env.clock)
	require.Eventually(t, env.playing, waitFor, time.Millisecond)

	for i := 1; i <= 3; i++ {
		env.engine.endTrack()
		env.clock.Advance(time.Second)
		require.Eventually(t, func() bool {
			return env.uc.Snapshot().Playback.Restarts == i
		}, waitFor, time.Millisecond)
		assert.True(t, env.engine.IsBusy())
	}
	assert.Equal(t, 3, countKind(env.bus, eventlog.KindRestarted))
}

func TestScheduling_TrackEndedAfterWindowClearsFlag(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 59, 59))

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "a.mp3", Start: "09:00", End: "10:00",
	}))
	waitForTickers(t, env.clock)
	require.Eventually(t, env.playing, waitFor, time.Millisecond)

	env.engine.endTrack()
	env.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return !env.playing() }, waitFor, time.Millisecond)

	loads, plays, _, _ := env.engine.counts()
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, plays, "no restart after the window closed")
}

func TestScheduling_PlaybackFailureRetriesNextTick(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 30, 0))
	env.engine.setLoadErr(errBadFile)

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "a.mp3", Start: "09:00", End: "10:00",
	}))
	waitForTickers(t, env.clock)
	require.Eventually(t, func() bool {
		return countKind(env.bus, eventlog.KindPlaybackError) == 1
	}, waitFor, time.Millisecond)
	assert.False(t, env.playing())
	assert.True(t, env.uc.Snapshot().Running, "loops survive playback errors")

	env.engine.setLoadErr(nil)
	env.clock.Advance(time.Second)
	require.Eventually(t, env.playing, waitFor, time.Millisecond)

	_, alerts := env.notifier.snapshot()
	assert.Len(t, alerts, 1)
}

func TestStopScheduling_WhilePlaying(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 30, 0))

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "a.mp3", Start: "09:00", End: "10:00",
	}))
	require.Eventually(t, env.playing, waitFor, time.Millisecond)

	require.NoError(t, env.uc.StopScheduling())

	snap := env.uc.Snapshot()
	assert.False(t, snap.Running)
	assert.False(t, snap.Playback.Playing)
	assert.False(t, env.engine.IsBusy())
	_, _, stops, closes := env.engine.counts()
	assert.Equal(t, 1, stops)
	assert.Equal(t, 1, closes)

	// no further lines once the loops are gone
	before := len(env.bus.History(0))
	env.clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, env.bus.History(0), before)
	assert.Equal(t, eventlog.KindSchedulingStopped, env.bus.History(1)[0].Kind)

	notices, _ := env.notifier.snapshot()
	assert.Equal(t, []string{"Scheduling started", "Scheduling stopped"}, notices)

	// idempotent and restartable
	require.NoError(t, env.uc.StopScheduling())
	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "a.mp3", Start: "09:00", End: "10:00",
	}))
	assert.Equal(t, 2, env.engine.inits)
}

func TestWait_ReturnsWhenStopped(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(8, 0, 0))

	require.NoError(t, env.uc.Wait(context.Background()), "no session means no wait")

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "a.mp3", Start: "09:00", End: "10:00",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, env.uc.Wait(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- env.uc.Wait(context.Background()) }()
	require.NoError(t, env.uc.StopScheduling())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Wait did not return after StopScheduling")
	}
}

func TestScheduling_ProbeDisabledAndNotificationsOff(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 30, 0))

	settings := domain.DefaultSettings()
	settings.ProbeEnabled = false
	settings.Notifications = false
	require.NoError(t, env.uc.UpdateSettings(settings))
	assert.Equal(t, 1, env.repo.saves)

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{
		FilePath: "a.mp3", Start: "09:00", End: "10:00",
	}))
	require.Eventually(t, env.playing, waitFor, time.Millisecond)
	require.NoError(t, env.uc.StopScheduling())

	assert.Zero(t, env.probe.callCount())
	notices, alerts := env.notifier.snapshot()
	assert.Empty(t, notices)
	assert.Empty(t, alerts)
}

func TestUpdateSettings_RejectsInvalid(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 0, 0))

	bad := domain.DefaultSettings()
	bad.PollInterval = time.Millisecond
	err := env.uc.UpdateSettings(bad)
	assert.True(t, errors.Is(err, domain.ErrInvalidSettings))
	assert.Zero(t, env.repo.saves)
	assert.Equal(t, domain.DefaultPollInterval, env.uc.Snapshot().Settings.PollInterval)
}

func TestStartScheduling_ReloadsSavedSettings(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 30, 0))

	// another writer of the settings file, e.g. a separate CLI invocation
	saved := domain.DefaultSettings()
	saved.PollInterval = 500 * time.Millisecond
	saved.ProbeEnabled = false
	require.NoError(t, env.repo.Save(saved))
	assert.Equal(t, domain.DefaultPollInterval, env.uc.Snapshot().Settings.PollInterval)

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{FilePath: "a.mp3", Start: "09:00", End: "10:00"}))
	require.Eventually(t, env.playing, waitFor, time.Millisecond)

	got := env.uc.Snapshot().Settings
	assert.Equal(t, 500*time.Millisecond, got.PollInterval)
	assert.False(t, got.ProbeEnabled)
	assert.Zero(t, env.probe.callCount(), "the session runs with the reloaded settings")
}

func TestStartScheduling_InvalidSavedSettingsKeepPrevious(t *testing.T) {
	t.Parallel()
	env := newSchedulerEnv(t, at(9, 30, 0))

	env.repo.mu.Lock()
	env.repo.settings.PollInterval = time.Millisecond
	env.repo.mu.Unlock()

	require.NoError(t, env.uc.StartScheduling(ScheduleRequest{FilePath: "a.mp3", Start: "09:00", End: "10:00"}))
	assert.Equal(t, domain.DefaultPollInterval, env.uc.Snapshot().Settings.PollInterval)
}
