package domain

import "time"

// SessionPhase models the local interview lifecycle. It is never persisted;
// the backend owns the durable session status.
type SessionPhase string

const (
	PhaseLoading   SessionPhase = "loading"
	PhaseReady     SessionPhase = "ready"
	PhaseActive    SessionPhase = "active"
	PhaseCompleted SessionPhase = "completed"
	PhaseError     SessionPhase = "error"
)

// Terminal reports whether no further phase transitions are possible.
func (p SessionPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseError
}

// PhaseReason provides a structured reason for phase transitions.
type PhaseReason string

const (
	ReasonSessionLoaded      PhaseReason = "session_loaded"
	ReasonSessionLoadFailed  PhaseReason = "session_load_failed"
	ReasonInterviewStarted   PhaseReason = "interview_started"
	ReasonQuestionAdvanced   PhaseReason = "question_advanced"
	ReasonTimerExpired       PhaseReason = "timer_expired"
	ReasonInterviewCompleted PhaseReason = "interview_completed"
	ReasonMediaFailed        PhaseReason = "media_failed"
	ReasonChannelFailed      PhaseReason = "channel_failed"
	ReasonSessionLeft        PhaseReason = "session_left"
)

// ErrorCode identifies the source of a surfaced failure.
type ErrorCode string

const (
	ErrorCodeDevice        ErrorCode = "device"
	ErrorCodeNetwork       ErrorCode = "network"
	ErrorCodeChannel       ErrorCode = "channel"
	ErrorCodeValidation    ErrorCode = "validation"
	ErrorCodeRecording     ErrorCode = "recording"
	ErrorCodeTranscription ErrorCode = "transcription"
)

// Question is immutable once fetched; the coordinator references it by index.
type Question struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	OrderIndex int      `json:"order_index"`
	TimeLimit  int      `json:"time_limit"`
	Hints      []string `json:"hints,omitempty"`
}

// Session is a read-only cached copy of the backend session record.
// Timestamps stay as the backend's ISO strings; the client only displays them.
type Session struct {
	ID                string `json:"id"`
	CandidateName     string `json:"candidate_name"`
	Status            string `json:"status"`
	CurrentQuestionID int64  `json:"current_question_id"`
	StartedAt         string `json:"started_at,omitempty"`
	CompletedAt       string `json:"completed_at,omitempty"`
}

// SessionDetail bundles a session with its ordered question list.
type SessionDetail struct {
	Session   Session    `json:"session"`
	Questions []Question `json:"questions"`
}

// CodeValidation is the result of redeeming an interview code.
type CodeValidation struct {
	SessionID     string `json:"session_id"`
	CandidateName string `json:"candidate_name"`
}

// NextQuestionResult is either the next question or a completion flag.
type NextQuestionResult struct {
	Completed bool
	Question  Question
	Message   string
}

// RecordingChunk is one bounded slice of captured media. A chunk is atomic
// once captured: it is either flushed whole to the backend or discarded.
type RecordingChunk struct {
	Data      []byte
	MimeType  string
	Timestamp time.Time
	Duration  time.Duration
}

// RecordingBlob is a finalized continuous recording.
type RecordingBlob struct {
	Data     []byte
	MimeType string
	Duration time.Duration
}

// Empty reports whether the blob carries no recorded data.
func (b RecordingBlob) Empty() bool { return len(b.Data) == 0 }

// RecordingUpload describes a multipart recording upload.
type RecordingUpload struct {
	SessionID  string
	QuestionID int64
	Type       string
	Blob       RecordingBlob
}

// AIMessageKind classifies assistant messages.
type AIMessageKind string

const (
	AIMessageHint          AIMessageKind = "hint"
	AIMessageFeedback      AIMessageKind = "feedback"
	AIMessageEncouragement AIMessageKind = "encouragement"
)

// AIMessage is an assistant message received over the realtime channel.
// The list is append-only; no deduplication is attempted.
type AIMessage struct {
	ID         string
	Kind       AIMessageKind
	Message    string
	ReceivedAt time.Time
}

// DeviceKind classifies capture devices.
type DeviceKind string

const (
	DeviceCamera     DeviceKind = "camera"
	DeviceMicrophone DeviceKind = "microphone"
)

// DeviceInfo describes one enumerated capture device.
type DeviceInfo struct {
	ID    string
	Label string
	Kind  DeviceKind
}

// DeviceSelection holds the user's chosen devices. Empty fields fall back to
// the first enumerated device of that kind.
type DeviceSelection struct {
	CameraID     string
	MicrophoneID string
}

// ChannelEvent is one decoded server-to-client message. It is a flat union:
// only the fields relevant to Name are populated.
type ChannelEvent struct {
	Name      string
	SessionID string
	Text      string
	Status    string
	Message   string
	AI        *AIMessage
}

// Channel event names, mirroring the wire contract.
const (
	EventJoinedInterview      = "joined_interview"
	EventLeftInterview        = "left_interview"
	EventTranscriptUpdate     = "transcript_update"
	EventAIResponse           = "ai_response"
	EventVideoStreamStarted   = "video_stream_started"
	EventVideoStreamStopped   = "video_stream_stopped"
	EventRecordingSaved       = "recording_saved"
	EventSessionStatusUpdated = "session_status_updated"
	EventError                = "error"
)

// AIPrompt is an admin-managed prompt template.
type AIPrompt struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PromptText  string `json:"prompt_text"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// InterviewCode is an admin-issued one-time access code.
type InterviewCode struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	IsUsed        bool   `json:"is_used"`
	CandidateName string `json:"candidate_name,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	UsedAt        string `json:"used_at,omitempty"`
}

// QuestionSet groups ordered questions; at most one set is active at a time.
type QuestionSet struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	IsActive      bool       `json:"is_active"`
	QuestionCount int        `json:"question_count,omitempty"`
	Questions     []Question `json:"questions,omitempty"`
}

// QuestionResponse is a persisted per-question transcript with optional
// AI analysis, as returned by the admin session views.
type QuestionResponse struct {
	ID         int64   `json:"id"`
	QuestionID int64   `json:"question_id"`
	Transcript string  `json:"transcript"`
	AIAnalysis string  `json:"ai_analysis,omitempty"`
	AIScore    float64 `json:"ai_score,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// TranscriptSegment is one stored transcription fragment.
type TranscriptSegment struct {
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
}

// StoredAIResponse is an assistant message persisted server-side.
type StoredAIResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at,omitempty"`
}

// RecordingInfo describes a stored recording available for download.
type RecordingInfo struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Duration  int    `json:"duration"`
	CreatedAt string `json:"created_at,omitempty"`
}
