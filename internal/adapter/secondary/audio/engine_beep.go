//go:build (linux && cgo) || windows || darwin

package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"

	"sound-scheduler/internal/domain"
)

// Available indicates whether real audio output is compiled in.
const Available = true

const sampleRate = beep.SampleRate(44100)

// The speaker owns a process-wide output context that can only be created once.
var (
	speakerOnce sync.Once
	speakerErr  error
)

// BeepEngine plays one track at a time through the beep speaker.
type BeepEngine struct {
	mu    sync.Mutex
	track *Track
	ctrl  *beep.Ctrl
	gen   uint64
	busy  bool
}

// NewBeepEngine creates an engine. The speaker is opened by Init.
func NewBeepEngine() *BeepEngine {
	return &BeepEngine{}
}

// Init opens the speaker on first use.
func (e *BeepEngine) Init() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return domain.PlaybackErrorf(speakerErr, "open speaker")
	}
	return nil
}

// Load decodes path, replacing and stopping any previous track.
func (e *BeepEngine) Load(path string) error {
	track, err := Decode(path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.closeTrackLocked()
	e.track = track
	log.Debug().Str("path", path).Dur("duration", track.Duration()).Msg("audio track loaded")
	return nil
}

// Play starts the loaded track from the beginning.
func (e *BeepEngine) Play(loop bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return domain.PlaybackErrorf(nil, "no track loaded")
	}
	e.stopLocked()

	if err := e.track.Streamer.Seek(0); err != nil {
		return domain.PlaybackErrorf(err, "rewind %s", e.track.Path)
	}
	var s beep.Streamer = e.track.Streamer
	if loop {
		s = beep.Loop(-1, e.track.Streamer)
	}
	resampled := beep.Resample(4, e.track.Format.SampleRate, sampleRate, s)

	e.ctrl = &beep.Ctrl{Streamer: resampled}
	e.gen++
	gen := e.gen
	e.busy = true

	speaker.Play(beep.Seq(e.ctrl, beep.Callback(func() {
		// runs on the speaker goroutine with the speaker locked
		go e.finished(gen)
	})))
	return nil
}

// Stop halts playback. The track stays loaded.
func (e *BeepEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

// IsBusy reports whether the current track is still sounding.
func (e *BeepEngine) IsBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Close stops playback, drops the track and clears the speaker.
func (e *BeepEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.closeTrackLocked()
	speaker.Clear()
	return nil
}

func (e *BeepEngine) finished(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.gen {
		e.busy = false
		log.Debug().Msg("audio track finished")
	}
}

func (e *BeepEngine) stopLocked() {
	if e.ctrl != nil {
		speaker.Lock()
		// a nil streamer drains the ctrl and lets the mixer drop it
		e.ctrl.Streamer = nil
		speaker.Unlock()
		e.ctrl = nil
	}
	e.gen++
	e.busy = false
}

func (e *BeepEngine) closeTrackLocked() {
	if e.track == nil {
		return
	}
	if err := e.track.Close(); err != nil {
		log.Warn().Err(err).Str("path", e.track.Path).Msg("failed to close audio track")
	}
	e.track = nil
}
