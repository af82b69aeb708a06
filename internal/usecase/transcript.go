package usecase

import (
	"strings"
	"sync"
)

// TranscriptBuffer accumulates transcription fragments for the question being
// answered. It is append-only between resets.
type TranscriptBuffer struct {
	mu        sync.Mutex
	fragments []string
}

func NewTranscriptBuffer() *TranscriptBuffer {
	return &TranscriptBuffer{}
}

func (b *TranscriptBuffer) Append(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fragments = append(b.fragments, text)
}

// Text joins all accumulated fragments with single spaces.
func (b *TranscriptBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.fragments, " ")
}

// Reset clears the buffer for the next question.
func (b *TranscriptBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fragments = nil
}
