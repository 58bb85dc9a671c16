package channel

import (
	"perun.network/go-perun/log"
)

// EventType enumerates the five lifecycle events a settlement
// operation can emit.
type EventType int

const (
	EventChannelOpened EventType = iota
	EventCounterPartyJoined
	EventChannelOnChallenge
	EventChannelChallenged
	EventChannelClosed
)

// String implements fmt.Stringer.
func (t EventType) String() string {
	switch t {
	case EventChannelOpened:
		return "ChannelOpened"
	case EventCounterPartyJoined:
		return "CounterPartyJoined"
	case EventChannelOnChallenge:
		return "ChannelOnChallenge"
	case EventChannelChallenged:
		return "ChannelChallenged"
	case EventChannelClosed:
		return "ChannelClosed"
	default:
		return "Unknown"
	}
}

// Event is the append-only notification emitted on successful
// completion of a settlement operation. A rolled-back operation emits
// nothing.
type Event struct {
	Type      EventType
	ChannelID ID
}

// EventSink receives events as they are emitted.
type EventSink interface {
	Emit(Event)
}

// LogSink emits events through perun's structured logger.
type LogSink struct {
	embedding log.Embedding
}

// NewLogSink returns an EventSink that logs through perun's default logger.
func NewLogSink() *LogSink {
	return &LogSink{embedding: log.MakeEmbedding(log.Default())}
}

// Emit implements EventSink.
func (s *LogSink) Emit(e Event) {
	s.embedding.Log().Infof("%s(%s)", e.Type, e.ChannelID)
}

// ChanSink delivers events to a buffered Go channel, for tests and for
// off-chain observers that want to consume events programmatically
// rather than parse log lines.
type ChanSink struct {
	events chan Event
}

// NewChanSink returns a ChanSink buffering up to capacity events before
// Emit starts blocking.
func NewChanSink(capacity int) *ChanSink {
	return &ChanSink{events: make(chan Event, capacity)}
}

// Emit implements EventSink.
func (s *ChanSink) Emit(e Event) {
	s.events <- e
}

// Events exposes the receive side of the buffered channel.
func (s *ChanSink) Events() <-chan Event {
	return s.events
}
