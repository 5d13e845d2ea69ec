package notify

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sound-scheduler/internal/logging"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf, "")
	logging.SetVerbosity(1)
	t.Cleanup(func() {
		logging.SetOutput(os.Stderr, "")
		logging.SetVerbosity(0)
	})

	n := NewLogNotifier()
	require.NoError(t, n.Notify("Scheduling started", "song.mp3 daily 09:00-10:00"))
	require.NoError(t, n.Alert("Playback failed", "broken.mp3"))

	out := buf.String()
	assert.Contains(t, out, "Scheduling started: song.mp3 daily 09:00-10:00")
	assert.Contains(t, out, "Playback failed: broken.mp3")
}
