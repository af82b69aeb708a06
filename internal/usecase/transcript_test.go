package usecase

import "testing"

func TestTranscriptBufferAccumulates(t *testing.T) {
	t.Parallel()

	buffer := NewTranscriptBuffer()
	buffer.Append("  I worked on ")
	buffer.Append("")
	buffer.Append("a migration project.")

	if got := buffer.Text(); got != "I worked on a migration project." {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptBufferReset(t *testing.T) {
	t.Parallel()

	buffer := NewTranscriptBuffer()
	buffer.Append("old answer")
	buffer.Reset()
	if got := buffer.Text(); got != "" {
		t.Fatalf("expected empty transcript after reset, got %q", got)
	}
	buffer.Append("new answer")
	if got := buffer.Text(); got != "new answer" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}
