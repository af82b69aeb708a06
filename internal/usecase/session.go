package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"interviewkit/internal/domain"
	"interviewkit/internal/ports"
)

// activeInterview holds the mutable state for one interview run, from a
// validated code through completion or teardown.
type activeInterview struct {
	ctx    context.Context
	cancel context.CancelFunc

	channel ports.RealtimeChannel

	sessionID     string
	candidateName string
	questions     []domain.Question

	stateMu   sync.Mutex
	phase     domain.SessionPhase
	index     int
	remaining int

	// advancing is the single-shot guard for question advancement. It is
	// claimed by CompareAndSwap so a timer expiry racing a manual skip
	// produces exactly one advance, and re-armed once the next question
	// is installed.
	advancing atomic.Bool

	audioOn atomic.Bool
	videoOn atomic.Bool

	transcript *TranscriptBuffer

	timerDone  chan struct{}
	relayDone  chan struct{}
	eventsDone chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (s *activeInterview) getPhase() domain.SessionPhase {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.phase
}

func (s *activeInterview) setPhase(phase domain.SessionPhase) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.phase.Terminal() {
		return false
	}
	s.phase = phase
	return true
}

func (s *activeInterview) currentQuestion() (domain.Question, int) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.index < 0 || s.index >= len(s.questions) {
		return domain.Question{}, s.index
	}
	return s.questions[s.index], s.index
}

// installQuestion makes the given question current and resets the timer.
func (s *activeInterview) installQuestion(q domain.Question) int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.index = len(s.questions)
	for i, known := range s.questions {
		if known.ID == q.ID {
			s.index = i
			break
		}
	}
	if s.index == len(s.questions) {
		s.questions = append(s.questions, q)
	}
	s.remaining = q.TimeLimit
	return s.index
}

// tick decrements the countdown by one second. It returns the new remaining
// value, or -1 when no countdown is running.
func (s *activeInterview) tick() int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.phase != domain.PhaseActive || s.remaining <= 0 {
		return -1
	}
	s.remaining--
	return s.remaining
}

func (s *activeInterview) timeRemaining() int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.remaining
}
