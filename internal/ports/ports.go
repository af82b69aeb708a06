package ports

import (
	"context"
	"time"

	"interviewkit/internal/domain"
)

// CaptureConfig describes how the camera and microphone should be captured.
// The device fields are fallbacks used when no explicit selection is made.
type CaptureConfig struct {
	VideoInputFormat string
	AudioInputFormat string
	CameraDevice     string
	MicrophoneDevice string
	Width            int
	Height           int
	FrameRate        int
	SampleRate       int
	Channels         int
	EchoCancel       bool
}

// MediaCapture acquires and releases local devices and produces both a
// continuous recording and bounded time-sliced chunks. At most one capture
// stream is live per adapter instance.
type MediaCapture interface {
	// ListDevices enumerates cameras and microphones. Enumeration failure is
	// reported as domain.ErrDeviceEnumeration.
	ListDevices(ctx context.Context) ([]domain.DeviceInfo, error)

	// StartCapture opens a combined audio+video stream for the selection.
	// Starting over a live stream implicitly stops the previous one.
	StartCapture(ctx context.Context, sel domain.DeviceSelection) error

	// StopCapture releases the stream. Idempotent.
	StopCapture() error

	// StartRecording begins continuous encoding of the live stream, starting
	// capture implicitly if necessary.
	StartRecording(ctx context.Context) error

	// StopRecording finalizes and returns the accumulated recording. With no
	// active recording it returns an empty blob and no error.
	StopRecording() (domain.RecordingBlob, error)

	// ToggleAudio and ToggleVideo flip mute flags without tearing down the
	// stream and return the new enabled state.
	ToggleAudio() bool
	ToggleVideo() bool

	// CaptureChunk records exactly one audio chunk of the given duration for
	// transcription transport. The caller schedules repeat invocations.
	CaptureChunk(ctx context.Context, duration time.Duration) (domain.RecordingChunk, error)
}

// RealtimeChannel is a thin named-event wrapper over one persistent
// bidirectional connection. It carries no buffering or retry logic.
type RealtimeChannel interface {
	Join(sessionID string) error
	Leave(sessionID string) error
	SendAudioData(sessionID string, audio []byte, ts time.Time) error
	SendTranscriptSegment(sessionID string, questionID int64, text string, confidence float64, start, end float64) error
	RequestAIResponse(sessionID string, questionID int64, transcriptContext string, kind domain.AIMessageKind) error
	StartVideoStream(sessionID string, video, audio bool) error
	StopVideoStream(sessionID string) error
	SendRecordingMetadata(sessionID string, questionID int64, recordingType string, sizeBytes int, mimeType string) error
	UpdateSessionStatus(sessionID string, status string) error

	// Events yields decoded server events. The channel closes when the
	// connection ends.
	Events() <-chan domain.ChannelEvent

	Close() error
}

// ChannelDialer opens realtime channels. The coordinator owns the returned
// connection for the session's lifetime.
type ChannelDialer interface {
	Dial(ctx context.Context) (RealtimeChannel, error)
}

// InterviewAPI is the candidate-facing slice of the backend REST surface.
// Implementations are stateless and safe for reuse across calls.
type InterviewAPI interface {
	ValidateCode(ctx context.Context, code, candidateName string) (domain.CodeValidation, error)
	GetSession(ctx context.Context, sessionID string) (domain.SessionDetail, error)
	StartSession(ctx context.Context, sessionID string) (domain.Question, error)
	NextQuestion(ctx context.Context, sessionID string) (domain.NextQuestionResult, error)
	SaveResponse(ctx context.Context, sessionID string, questionID int64, transcript string) error
	UploadRecording(ctx context.Context, up domain.RecordingUpload) (string, error)
}

// EventSink receives coordinator state for the presentation layer.
type EventSink interface {
	PhaseChanged(phase domain.SessionPhase, reason domain.PhaseReason)
	QuestionChanged(index int, question domain.Question)
	TimerTick(remaining int)
	TranscriptFragment(text string)
	AIMessageReceived(msg domain.AIMessage)
	SessionError(code domain.ErrorCode, detail string)
}
