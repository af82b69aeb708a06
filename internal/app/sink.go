package app

import (
	"interviewkit/internal/domain"
)

// EventKind discriminates coordinator events flowing into the UI loop.
type EventKind int

const (
	EventPhase EventKind = iota
	EventQuestion
	EventTick
	EventFragment
	EventAI
	EventFault
)

// Event is the flat union delivered to the bubbletea loop. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind      EventKind
	Phase     domain.SessionPhase
	Reason    domain.PhaseReason
	Index     int
	Question  domain.Question
	Remaining int
	Text      string
	AI        domain.AIMessage
	Code      domain.ErrorCode
	Detail    string
}

// ChannelSink adapts the coordinator's event callbacks into a channel the
// bubbletea program can poll. Delivery is non-blocking: if the UI falls
// behind, events are dropped rather than stalling the interview.
type ChannelSink struct {
	ch chan Event
}

func NewChannelSink() *ChannelSink {
	return &ChannelSink{ch: make(chan Event, 256)}
}

func (s *ChannelSink) Events() <-chan Event { return s.ch }

func (s *ChannelSink) PhaseChanged(phase domain.SessionPhase, reason domain.PhaseReason) {
	s.send(Event{Kind: EventPhase, Phase: phase, Reason: reason})
}

func (s *ChannelSink) QuestionChanged(index int, question domain.Question) {
	s.send(Event{Kind: EventQuestion, Index: index, Question: question})
}

func (s *ChannelSink) TimerTick(remaining int) {
	s.send(Event{Kind: EventTick, Remaining: remaining})
}

func (s *ChannelSink) TranscriptFragment(text string) {
	s.send(Event{Kind: EventFragment, Text: text})
}

func (s *ChannelSink) AIMessageReceived(msg domain.AIMessage) {
	s.send(Event{Kind: EventAI, AI: msg})
}

func (s *ChannelSink) SessionError(code domain.ErrorCode, detail string) {
	s.send(Event{Kind: EventFault, Code: code, Detail: detail})
}

func (s *ChannelSink) send(event Event) {
	select {
	case s.ch <- event:
	default:
	}
}
