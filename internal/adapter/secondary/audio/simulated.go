package audio

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"sound-scheduler/internal/domain"
)

// SimulatedEngine decodes files like the real engine but produces no sound.
// A track "plays" for its decoded duration on the injected clock, or forever
// when looping. Used for --dry-run and on machines without audio output.
type SimulatedEngine struct {
	clock clockwork.Clock

	mu        sync.Mutex
	path      string
	duration  time.Duration
	loaded    bool
	playing   bool
	loop      bool
	startedAt time.Time
}

// NewSimulatedEngine creates a silent engine. A nil clock uses wall time.
func NewSimulatedEngine(clock clockwork.Clock) *SimulatedEngine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SimulatedEngine{clock: clock}
}

func (e *SimulatedEngine) Init() error { return nil }

// Load decodes path to validate it and learn its duration.
func (e *SimulatedEngine) Load(path string) error {
	track, err := Decode(path)
	if err != nil {
		return err
	}
	duration := track.Duration()
	if err := track.Close(); err != nil {
		log.Debug().Err(err).Msg("close decoded track")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.path = path
	e.duration = duration
	e.loaded = true
	e.playing = false
	return nil
}

func (e *SimulatedEngine) Play(loop bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return domain.PlaybackErrorf(nil, "no track loaded")
	}
	e.playing = true
	e.loop = loop
	e.startedAt = e.clock.Now()
	log.Debug().Str("path", e.path).Bool("loop", loop).Msg("simulated playback started")
	return nil
}

func (e *SimulatedEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	return nil
}

func (e *SimulatedEngine) IsBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return false
	}
	return e.loop || e.clock.Since(e.startedAt) < e.duration
}

func (e *SimulatedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.loaded = false
	return nil
}
