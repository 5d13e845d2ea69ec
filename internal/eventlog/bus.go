package eventlog

import (
	"fmt"
	"sync"
	"time"
)

// Kind enumerates event categories.
type Kind string

const (
	KindSchedulingStarted Kind = "scheduling_started"
	KindSchedulingStopped Kind = "scheduling_stopped"
	KindStarted           Kind = "started"
	KindRestarted         Kind = "restarted"
	KindEnded             Kind = "ended"
	KindStopped           Kind = "stopped"
	KindPlaybackError     Kind = "playback_error"
	KindProbeFailed       Kind = "probe_failed"
)

// DefaultHistory is the number of events kept for late subscribers.
const DefaultHistory = 256

// Event is one timestamped line of the event log.
type Event struct {
	Time    time.Time `json:"time"`
	Kind    Kind      `json:"kind"`
	Session string    `json:"session,omitempty"`
	Message string    `json:"message"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Time.Format("15:04:05"), e.Kind, e.Message)
}

// Subscriber receives published events.
type Subscriber chan Event

// Bus implements a simple in-process pubsub with a bounded history.
type Bus struct {
	mu      sync.RWMutex
	subs    []Subscriber
	history []Event
	next    int
	full    bool
}

// NewBus creates an event bus keeping up to size past events.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = DefaultHistory
	}
	return &Bus{history: make([]Event, size)}
}

// Publish records ev and sends it to subscribers. Slow subscribers miss events.
// Sends happen under the lock so Unsubscribe cannot close a channel mid-send.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history[b.next] = ev
	b.next = (b.next + 1) % len(b.history)
	if b.next == 0 {
		b.full = true
	}

	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Subscribe registers a subscriber with the given buffer size.
func (b *Bus) Subscribe(buffer int) Subscriber {
	ch := make(Subscriber, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes it.
func (b *Bus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, candidate := range b.subs {
		if candidate == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// History returns up to n most recent events, oldest first. n <= 0 returns all.
func (b *Bus) History(n int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	if b.full {
		out = append(out, b.history[b.next:]...)
	}
	out = append(out, b.history[:b.next]...)
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
