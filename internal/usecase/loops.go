package usecase

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"sound-scheduler/internal/domain"
)

// playbackManagerLoop starts playback when the window opens and restarts it
// when the track ends early. It never stops a sounding track.
type playbackManagerLoop struct {
	ctl      *PlaybackController
	config   domain.ScheduleConfig
	service  *domain.SchedulerService
	clock    clockwork.Clock
	interval time.Duration
}

func (l *playbackManagerLoop) run(ctx context.Context) error {
	return pollLoop(ctx, l.clock, l.interval, l.tick)
}

func (l *playbackManagerLoop) tick() {
	w := l.config.Window
	// Errors are already logged, published and alerted by the controller;
	// the next tick retries while the window is open.
	_, _ = l.ctl.StartWhen(l.config.FilePath, func(st domain.PlaybackState) bool {
		now := domain.TimeOfDayOf(l.clock.Now())
		return l.service.ShouldStart(w, now, st) || l.service.ShouldRestart(w, now, st)
	})
	l.ctl.ReconcileWhen(func(st domain.PlaybackState) bool {
		return l.service.EndedOutsideWindow(w, domain.TimeOfDayOf(l.clock.Now()), st)
	})
}

// stopBoundaryLoop is the only loop allowed to stop playback.
type stopBoundaryLoop struct {
	ctl      *PlaybackController
	config   domain.ScheduleConfig
	service  *domain.SchedulerService
	clock    clockwork.Clock
	interval time.Duration
}

func (l *stopBoundaryLoop) run(ctx context.Context) error {
	return pollLoop(ctx, l.clock, l.interval, l.tick)
}

func (l *stopBoundaryLoop) tick() {
	w := l.config.Window
	_, _ = l.ctl.StopWhen(func(st domain.PlaybackState) bool {
		return l.service.ShouldStop(w, domain.TimeOfDayOf(l.clock.Now()), st)
	})
}

// pollLoop runs tick immediately and then once per interval until ctx is done.
func pollLoop(ctx context.Context, clock clockwork.Clock, interval time.Duration, tick func()) error {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return nil
			}
			tick()
		}
	}
}
