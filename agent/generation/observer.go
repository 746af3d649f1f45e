package generation

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

type EventKind string

const (
	EventStepFinished     EventKind = "step_finished"
	EventToolCallStarted  EventKind = "tool_call_started"
	EventToolCallFinished EventKind = "tool_call_finished"
)

type Event struct {
	Kind   EventKind
	Step   int
	Text   string
	Call   *contractx.ToolCall
	Result *contractx.ToolResult
}

// Observer sees progress events. Observers cannot influence the run.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type LogObserver struct{}

func (LogObserver) Observe(e Event) {
	evt := log.Debug().Str("event", string(e.Kind)).Int("step", e.Step)
	if e.Call != nil {
		evt = evt.Str("tool", e.Call.Tool).Str("call_id", e.Call.ID)
	}
	if e.Result != nil {
		evt = evt.Bool("success", e.Result.Success)
		if e.Result.Error != "" {
			evt = evt.Str("tool_error", e.Result.Error)
		}
	}
	evt.Msg("generation event")
}

// ChannelObserver forwards events to a buffered channel and drops them
// when the reader falls behind. The owner calls Close once Run has
// returned so readers ranging over Events finish.
type ChannelObserver struct {
	mu      sync.RWMutex
	ch      chan Event
	closed  bool
	dropped atomic.Int64
}

func NewChannelObserver(buffer int) *ChannelObserver {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelObserver{ch: make(chan Event, buffer)}
}

func (c *ChannelObserver) Observe(e Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.dropped.Add(1)
		return
	}
	select {
	case c.ch <- e:
	default:
		c.dropped.Add(1)
	}
}

// Close ends the event stream. Events observed afterwards count as dropped.
func (c *ChannelObserver) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

func (c *ChannelObserver) Events() <-chan Event {
	return c.ch
}

func (c *ChannelObserver) Dropped() int64 {
	return c.dropped.Load()
}

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}
