package app

import "interviewkit/internal/domain"

// SessionLoadedMsg is sent when a code has been redeemed and the session
// detail loaded.
type SessionLoadedMsg struct {
	Detail domain.SessionDetail
}

// SessionLoadErrorMsg is sent when code validation or session load fails.
type SessionLoadErrorMsg struct {
	Err error
}

// InterviewStartedMsg confirms devices and the realtime channel are up.
type InterviewStartedMsg struct{}

// InterviewStartErrorMsg is sent when interview startup fails.
type InterviewStartErrorMsg struct {
	Err error
}

// CoordinatorEventMsg wraps one event from the coordinator sink.
type CoordinatorEventMsg struct {
	Event Event
}

// EventStreamClosedMsg is sent when the coordinator sink channel closes.
type EventStreamClosedMsg struct{}

// SkipDoneMsg reports the outcome of a manual question skip.
type SkipDoneMsg struct {
	Err error
}

// AudioToggledMsg carries the new microphone state.
type AudioToggledMsg struct {
	Enabled bool
}

// VideoToggledMsg carries the new camera state.
type VideoToggledMsg struct {
	Enabled bool
}

// AdminLoggedInMsg confirms an admin session.
type AdminLoggedInMsg struct{}

// AdminErrorMsg surfaces a failed admin operation.
type AdminErrorMsg struct {
	Err error
}

// CodesLoadedMsg carries the interview code list.
type CodesLoadedMsg struct {
	Codes []domain.InterviewCode
}

// SessionsLoadedMsg carries the session list.
type SessionsLoadedMsg struct {
	Sessions []domain.Session
}

// SessionDetailsLoadedMsg bundles everything the details page shows.
type SessionDetailsLoadedMsg struct {
	Session     domain.Session
	Responses   []domain.QuestionResponse
	Transcripts []domain.TranscriptSegment
	AIResponses []domain.StoredAIResponse
	Recordings  []domain.RecordingInfo
}

// AuthCheckedMsg reports whether an admin cookie session is still valid.
type AuthCheckedMsg struct {
	Authenticated bool
}

// QuestionSetsLoadedMsg carries the question set list.
type QuestionSetsLoadedMsg struct {
	Sets []domain.QuestionSet
}

// RecordingSavedMsg reports the outcome of a recording download.
type RecordingSavedMsg struct {
	Path string
	Err  error
}

// PromptsLoadedMsg carries the AI prompt templates.
type PromptsLoadedMsg struct {
	Prompts []domain.AIPrompt
}

// PromptSavedMsg confirms a prompt create or update.
type PromptSavedMsg struct {
	Prompt domain.AIPrompt
}
