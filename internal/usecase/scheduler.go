package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"sound-scheduler/internal/domain"
	"sound-scheduler/internal/eventlog"
	"sound-scheduler/internal/logging"
)

// SchedulerUseCase is the primary port for scheduling operations.
type SchedulerUseCase interface {
	StartScheduling(req ScheduleRequest) error
	StopScheduling() error
	Snapshot() domain.SessionSnapshot
	Wait(ctx context.Context) error
	Events() *eventlog.Bus
	UpdateSettings(settings domain.Settings) error
}

// session owns the lifetime of both loops and the controller.
type session struct {
	id        string
	config    domain.ScheduleConfig
	startedAt time.Time
	ctl       *PlaybackController
	cancel    context.CancelFunc
	group     *errgroup.Group
	done      chan struct{}
}

// schedulerInteractor implements SchedulerUseCase.
// It depends only on domain layer and secondary ports.
type schedulerInteractor struct {
	repo     domain.SettingsRepository
	engine   domain.AudioEngine
	probe    domain.ConnectivityProbe
	notifier domain.Notifier
	events   *eventlog.Bus
	clock    clockwork.Clock
	service  *domain.SchedulerService

	mu       sync.Mutex
	settings domain.Settings
	session  *session
}

// Option customises the interactor.
type Option func(*schedulerInteractor)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *schedulerInteractor) { s.clock = clock }
}

// WithEvents shares an existing event bus.
func WithEvents(bus *eventlog.Bus) Option {
	return func(s *schedulerInteractor) { s.events = bus }
}

// NewSchedulerUseCase creates a new scheduler use case.
// Dependencies are injected (secondary ports).
func NewSchedulerUseCase(
	repo domain.SettingsRepository,
	engine domain.AudioEngine,
	probe domain.ConnectivityProbe,
	notifier domain.Notifier,
	opts ...Option,
) (SchedulerUseCase, error) {
	if repo == nil || engine == nil {
		return nil, errors.New("settings repository and audio engine are required")
	}
	settings, err := repo.Load()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &schedulerInteractor{
		repo:     repo,
		engine:   engine,
		probe:    probe,
		notifier: notifier,
		service:  domain.NewSchedulerService(),
		settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.events == nil {
		s.events = eventlog.NewBus(eventlog.DefaultHistory)
	}
	return s, nil
}

// StartScheduling validates req and launches both loops. It returns immediately.
func (s *schedulerInteractor) StartScheduling(req ScheduleRequest) error {
	cfg, err := validateRequest(req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return errors.WithHint(domain.ErrSessionActive, "stop the current schedule first")
	}
	if err := s.engine.Init(); err != nil {
		return domain.PlaybackErrorf(err, "initialise audio output")
	}

	s.reloadSettingsLocked()
	settings := s.settings
	probe := s.probe
	if !settings.ProbeEnabled {
		probe = nil
	}

	id := uuid.NewString()
	ctl := NewPlaybackController(ControllerConfig{
		Engine:       s.engine,
		Probe:        probe,
		Notifier:     s.alertNotifier(settings),
		Events:       s.events,
		Clock:        s.clock,
		Session:      id,
		ProbeTarget:  settings.ProbeTarget,
		ProbeTimeout: settings.ProbeTimeout,
	})

	manager := &playbackManagerLoop{
		ctl: ctl, config: cfg, service: s.service, clock: s.clock, interval: settings.PollInterval,
	}
	boundary := &stopBoundaryLoop{
		ctl: ctl, config: cfg, service: s.service, clock: s.clock, interval: settings.PollInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return manager.run(gctx) })
	g.Go(func() error { return boundary.run(gctx) })

	s.session = &session{
		id:        id,
		config:    cfg,
		startedAt: s.clock.Now(),
		ctl:       ctl,
		cancel:    cancel,
		group:     g,
		done:      make(chan struct{}),
	}

	msg := fmt.Sprintf("%s daily %s", filepath.Base(cfg.FilePath), cfg.Window)
	s.publish(id, eventlog.KindSchedulingStarted, msg)
	s.notify(settings, "Scheduling started", msg)
	return nil
}

// StopScheduling ends the session. When it returns both loops have exited and
// nothing is playing. Calling it without a session is a no-op.
func (s *schedulerInteractor) StopScheduling() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess == nil {
		return nil
	}
	s.session = nil

	sess.cancel()
	if err := sess.group.Wait(); err != nil {
		logging.Warnf("scheduling loop exited with error: %v", err)
	}

	var stopErr error
	if sess.ctl.IsPlaying() {
		stopErr = sess.ctl.Stop()
	}
	sess.ctl.Close()
	if err := s.engine.Close(); err != nil {
		logging.Warnf("release audio output: %v", err)
	}
	close(sess.done)

	s.publish(sess.id, eventlog.KindSchedulingStopped, filepath.Base(sess.config.FilePath))
	s.notify(s.settings, "Scheduling stopped", filepath.Base(sess.config.FilePath))
	return stopErr
}

// Snapshot returns the current system state.
func (s *schedulerInteractor) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{Settings: s.settings}
	if s.session != nil {
		snap.SessionID = s.session.id
		snap.Running = true
		snap.StartedAt = s.session.startedAt
		snap.Config = s.session.config
		snap.Playback = s.session.ctl.State()
	}
	return snap
}

// Wait blocks until the current session is stopped or ctx is done.
func (s *schedulerInteractor) Wait(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return nil
	}
	select {
	case <-sess.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events exposes the event log.
func (s *schedulerInteractor) Events() *eventlog.Bus {
	return s.events
}

// UpdateSettings validates and persists settings. A running session keeps the
// settings it started with; StartScheduling reloads them from the repository.
func (s *schedulerInteractor) UpdateSettings(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(settings); err != nil {
		return err
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// reloadSettingsLocked picks up settings saved since the last session, also by
// other processes. An unreadable or invalid file keeps the previous settings.
func (s *schedulerInteractor) reloadSettingsLocked() {
	settings, err := s.repo.Load()
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		logging.Warnf("keeping previous settings: %v", err)
		return
	}
	s.settings = settings
}

func (s *schedulerInteractor) alertNotifier(settings domain.Settings) domain.Notifier {
	if !settings.Notifications {
		return nil
	}
	return s.notifier
}

func (s *schedulerInteractor) notify(settings domain.Settings, title, msg string) {
	if s.notifier == nil || !settings.Notifications {
		return
	}
	if err := s.notifier.Notify(title, msg); err != nil {
		logging.Debugf("notify failed: %v", err)
	}
}

func (s *schedulerInteractor) publish(id string, kind eventlog.Kind, msg string) {
	ev := eventlog.Event{Time: s.clock.Now(), Kind: kind, Session: id, Message: msg}
	logging.Infof("%s", ev)
	s.events.Publish(ev)
}
