// Package audio implements the audio engine port on top of gopxl/beep.
package audio

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"sound-scheduler/internal/domain"
)

// SupportedExtensions lists the file types Decode understands.
var SupportedExtensions = []string{".mp3", ".wav", ".ogg", ".flac"}

// Track is a decoded, seekable audio file.
type Track struct {
	Path     string
	Streamer beep.StreamSeekCloser
	Format   beep.Format
	file     *os.File
}

// Duration returns the length of one pass through the track.
func (t *Track) Duration() time.Duration {
	return t.Format.SampleRate.D(t.Streamer.Len())
}

// Close releases the decoder and the underlying file.
func (t *Track) Close() error {
	err := t.Streamer.Close()
	if ferr := t.file.Close(); ferr != nil && !errors.Is(ferr, os.ErrClosed) && err == nil {
		err = ferr
	}
	return err
}

// Decode opens path and picks a decoder by extension.
func Decode(path string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))

	//nolint:gosec // G304: the path is chosen by the local user
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.PlaybackErrorf(err, "open %s", path)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, domain.PlaybackErrorf(nil, "unsupported audio format %q (supported: %s)",
			ext, strings.Join(SupportedExtensions, ", "))
	}
	if err != nil {
		_ = f.Close()
		return nil, domain.PlaybackErrorf(err, "decode %s", path)
	}

	return &Track{Path: path, Streamer: streamer, Format: format, file: f}, nil
}
