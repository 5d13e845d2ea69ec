//go:build !((linux && cgo) || windows || darwin)

package audio

import "sound-scheduler/internal/domain"

// Available indicates whether real audio output is compiled in.
const Available = false

// BeepEngine is a stub for builds without an audio backend.
// Use SimulatedEngine (--dry-run) instead.
type BeepEngine struct{}

func NewBeepEngine() *BeepEngine {
	return &BeepEngine{}
}

func (e *BeepEngine) Init() error {
	return domain.PlaybackErrorf(nil, "audio output is not available in this build (cgo disabled)")
}

func (e *BeepEngine) Load(path string) error {
	track, err := Decode(path)
	if err != nil {
		return err
	}
	return track.Close()
}

func (e *BeepEngine) Play(bool) error {
	return domain.PlaybackErrorf(nil, "audio output is not available in this build")
}

func (e *BeepEngine) Stop() error  { return nil }
func (e *BeepEngine) IsBusy() bool { return false }
func (e *BeepEngine) Close() error { return nil }
