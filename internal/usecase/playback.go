package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"sound-scheduler/internal/domain"
	"sound-scheduler/internal/eventlog"
	"sound-scheduler/internal/logging"
)

// Condition decides, under the controller lock, whether a transition applies.
type Condition func(st domain.PlaybackState) bool

func always(domain.PlaybackState) bool { return true }

// PlaybackController owns the audio engine for one session and serializes
// every start, stop and read of the playing flag.
type PlaybackController struct {
	engine   domain.AudioEngine
	probe    domain.ConnectivityProbe
	notifier domain.Notifier
	events   *eventlog.Bus
	clock    clockwork.Clock
	session  string

	probeTarget  string
	probeTimeout time.Duration
	probeCtx     context.Context
	probeCancel  context.CancelFunc
	probeWG      sync.WaitGroup

	mu       sync.Mutex
	playing  bool
	file     string
	since    time.Time
	restarts int
	closed   bool
}

// ControllerConfig carries the collaborators of a PlaybackController.
// A nil Probe disables the connectivity check.
type ControllerConfig struct {
	Engine       domain.AudioEngine
	Probe        domain.ConnectivityProbe
	Notifier     domain.Notifier
	Events       *eventlog.Bus
	Clock        clockwork.Clock
	Session      string
	ProbeTarget  string
	ProbeTimeout time.Duration
}

// NewPlaybackController creates a controller. The engine must already be initialised.
func NewPlaybackController(cfg ControllerConfig) *PlaybackController {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Events == nil {
		cfg.Events = eventlog.NewBus(0)
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = domain.DefaultProbeTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PlaybackController{
		engine:       cfg.Engine,
		probe:        cfg.Probe,
		notifier:     cfg.Notifier,
		events:       cfg.Events,
		clock:        cfg.Clock,
		session:      cfg.Session,
		probeTarget:  cfg.ProbeTarget,
		probeTimeout: cfg.ProbeTimeout,
		probeCtx:     ctx,
		probeCancel:  cancel,
	}
}

// Start loads path and plays it on an infinite loop from the beginning.
// Starting while already playing restarts the track.
func (c *PlaybackController) Start(path string) error {
	_, err := c.StartWhen(path, always)
	return err
}

// StartWhen starts playback if cond holds for the current state.
// It reports whether a start was attempted.
func (c *PlaybackController) StartWhen(path string, cond Condition) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked()
	if !cond(st) {
		return false, nil
	}
	c.probeAsync("start")

	if err := c.engine.Load(path); err != nil {
		return true, c.failLocked(domain.PlaybackErrorf(err, "load %s", path))
	}
	if err := c.engine.Play(true); err != nil {
		return true, c.failLocked(domain.PlaybackErrorf(err, "play %s", path))
	}

	kind := eventlog.KindStarted
	if st.Playing {
		kind = eventlog.KindRestarted
		c.restarts++
	}
	c.playing = true
	c.file = path
	c.since = c.clock.Now()
	c.publish(kind, filepath.Base(path))
	return true, nil
}

// Stop halts playback. Stopping while idle only runs the probe.
func (c *PlaybackController) Stop() error {
	_, err := c.StopWhen(always)
	return err
}

// StopWhen stops playback if cond holds for the current state.
// It reports whether a playing track was stopped.
func (c *PlaybackController) StopWhen(cond Condition) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked()
	if !cond(st) {
		return false, nil
	}
	c.probeAsync("stop")

	if !c.playing {
		logging.Debugf("stop requested while idle")
		return false, nil
	}
	if err := c.engine.Stop(); err != nil {
		return false, c.failLocked(domain.PlaybackErrorf(err, "stop %s", c.file))
	}
	c.playing = false
	c.publish(eventlog.KindStopped, filepath.Base(c.file))
	return true, nil
}

// ReconcileWhen clears the playing flag without touching the engine when cond
// holds. Used after the track ended on its own outside the window.
func (c *PlaybackController) ReconcileWhen(cond Condition) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing || !cond(c.stateLocked()) {
		return false
	}
	c.playing = false
	c.publish(eventlog.KindEnded, filepath.Base(c.file))
	return true
}

// IsActive reports whether the engine is producing sound right now.
func (c *PlaybackController) IsActive() bool {
	return c.engine.IsBusy()
}

// IsPlaying reports the intent flag.
func (c *PlaybackController) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// State returns a consistent snapshot of the controller.
func (c *PlaybackController) State() domain.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Close cancels in-flight probes and waits for them. The engine is not closed.
func (c *PlaybackController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.probeCancel()
	c.probeWG.Wait()
}

func (c *PlaybackController) stateLocked() domain.PlaybackState {
	return domain.PlaybackState{
		Playing:    c.playing,
		EngineBusy: c.engine.IsBusy(),
		File:       c.file,
		Since:      c.since,
		Restarts:   c.restarts,
	}
}

func (c *PlaybackController) failLocked(err error) error {
	logging.Errorf("%v", err)
	c.publish(eventlog.KindPlaybackError, err.Error())
	if c.notifier != nil {
		if nerr := c.notifier.Alert("Playback error", err.Error()); nerr != nil {
			logging.Debugf("alert failed: %v", nerr)
		}
	}
	return err
}

// probeAsync must be called with c.mu held.
func (c *PlaybackController) probeAsync(action string) {
	if c.probe == nil || c.closed {
		return
	}
	c.probeWG.Add(1)
	go func() {
		defer c.probeWG.Done()
		ctx, cancel := context.WithTimeout(c.probeCtx, c.probeTimeout)
		defer cancel()

		err := c.probe.Probe(ctx, c.probeTarget)
		if err == nil {
			logging.Tracef("probe before %s ok", action)
			return
		}
		if c.probeCtx.Err() != nil {
			return
		}
		logging.Warnf("probe before %s failed: %v", action, err)
		c.publish(eventlog.KindProbeFailed, fmt.Sprintf("before %s: %v", action, err))
	}()
}

func (c *PlaybackController) publish(kind eventlog.Kind, msg string) {
	ev := eventlog.Event{
		Time:    c.clock.Now(),
		Kind:    kind,
		Session: c.session,
		Message: msg,
	}
	logging.Infof("%s", ev)
	c.events.Publish(ev)
}
