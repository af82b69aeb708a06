package app

import (
	"context"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"interviewkit/internal/domain"
)

func TestLandingRequiresCodeAndName(t *testing.T) {
	driver := &stubDriver{}
	m := New(driver, &stubAdmin{}, nil)

	updated, cmd := m.Update(keyMsg(tea.KeyEnter))
	model := updated.(Model)

	if cmd != nil {
		t.Error("empty form should not produce a command")
	}
	if model.landingError != "Code and name are required" {
		t.Errorf("landingError = %q", model.landingError)
	}
	if driver.initCalls != 0 {
		t.Error("driver should not be called with an empty form")
	}
}

func TestLandingSubmitLoadsSession(t *testing.T) {
	driver := &stubDriver{}
	m := New(driver, &stubAdmin{}, nil)
	m.codeInput = "ABC123"
	m.nameInput = "Jane Doe"

	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected an initialize command")
	}
	msg := cmd()
	loaded, ok := msg.(SessionLoadedMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	if driver.initCalls != 1 || driver.lastCode != "ABC123" || driver.lastName != "Jane Doe" {
		t.Fatalf("unexpected driver call: %+v", driver)
	}

	updated, _ := m.Update(loaded)
	model := updated.(Model)
	if model.page != pageInterview || model.phase != domain.PhaseReady {
		t.Fatalf("unexpected state after load: page=%d phase=%s", model.page, model.phase)
	}
	if model.totalQuestions != 2 {
		t.Errorf("totalQuestions = %d, want 2", model.totalQuestions)
	}
}

func TestLandingTyping(t *testing.T) {
	m := New(&stubDriver{}, &stubAdmin{}, nil)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("AB")})
	m = updated.(Model)
	if m.codeInput != "AB" {
		t.Fatalf("codeInput = %q", m.codeInput)
	}

	updated, _ = m.Update(keyMsg(tea.KeyBackspace))
	m = updated.(Model)
	if m.codeInput != "A" {
		t.Fatalf("codeInput after backspace = %q", m.codeInput)
	}

	updated, _ = m.Update(keyMsg(tea.KeyTab))
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Jo")})
	m = updated.(Model)
	if m.nameInput != "Jo" {
		t.Fatalf("nameInput = %q", m.nameInput)
	}
}

func TestInterviewEventsUpdateDisplay(t *testing.T) {
	m := New(&stubDriver{}, &stubAdmin{}, nil)
	m.page = pageInterview
	m.phase = domain.PhaseActive

	m.applyEvent(Event{Kind: EventQuestion, Index: 1, Question: domain.Question{ID: 2, Text: "Next?", TimeLimit: 90}})
	if m.question.ID != 2 || m.remaining != 90 {
		t.Fatalf("question event not applied: %+v", m)
	}

	m.applyEvent(Event{Kind: EventTick, Remaining: 42})
	if m.remaining != 42 {
		t.Fatalf("remaining = %d", m.remaining)
	}

	m.applyEvent(Event{Kind: EventFragment, Text: "first words"})
	m.applyEvent(Event{Kind: EventFragment, Text: "more words"})
	if len(m.fragments) != 2 {
		t.Fatalf("fragments = %d", len(m.fragments))
	}

	m.applyEvent(Event{Kind: EventQuestion, Index: 2, Question: domain.Question{ID: 3, TimeLimit: 60}})
	if len(m.fragments) != 0 {
		t.Fatal("fragments should reset on question change")
	}

	m.applyEvent(Event{Kind: EventAI, AI: domain.AIMessage{Message: "try STAR"}})
	if len(m.hints) != 1 || m.hints[0].Message != "try STAR" {
		t.Fatalf("hints = %+v", m.hints)
	}

	m.applyEvent(Event{Kind: EventPhase, Phase: domain.PhaseCompleted})
	if m.phase != domain.PhaseCompleted {
		t.Fatalf("phase = %s", m.phase)
	}
}

func TestInterviewSkipKey(t *testing.T) {
	driver := &stubDriver{}
	m := New(driver, &stubAdmin{}, nil)
	m.page = pageInterview
	m.phase = domain.PhaseActive

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("expected a skip command")
	}
	if _, ok := cmd().(SkipDoneMsg); !ok {
		t.Fatal("expected SkipDoneMsg")
	}
	if driver.skipCalls != 1 {
		t.Fatalf("skipCalls = %d", driver.skipCalls)
	}
}

func TestInterviewKeysIgnoredWhenNotActive(t *testing.T) {
	driver := &stubDriver{}
	m := New(driver, &stubAdmin{}, nil)
	m.page = pageInterview
	m.phase = domain.PhaseReady

	for _, key := range []string{"s", "h", "m", "v"} {
		if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}); cmd != nil {
			t.Errorf("key %q should be inert before the interview starts", key)
		}
	}
	if driver.skipCalls != 0 || driver.hintCalls != 0 {
		t.Fatal("driver should not have been called")
	}
}

func TestPromptEditorValidatesLocally(t *testing.T) {
	admin := &stubAdmin{}
	m := New(&stubDriver{}, admin, nil)
	m.page = pagePromptEditor

	updated, cmd := m.Update(keyMsg(tea.KeyEnter))
	model := updated.(Model)

	if cmd != nil {
		t.Error("invalid prompt should not produce a command")
	}
	if model.promptError != "Name and prompt text are required" {
		t.Errorf("promptError = %q", model.promptError)
	}
	if admin.createPromptCalls != 0 {
		t.Error("backend should not see an invalid prompt")
	}
}

func TestPromptEditorSavesValidPrompt(t *testing.T) {
	admin := &stubAdmin{}
	m := New(&stubDriver{}, admin, nil)
	m.page = pagePromptEditor
	m.promptDraft = domain.AIPrompt{Name: "Behavioral", PromptText: "Probe for specifics."}

	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	if _, ok := cmd().(PromptSavedMsg); !ok {
		t.Fatal("expected PromptSavedMsg")
	}
	if admin.createPromptCalls != 1 {
		t.Fatalf("createPromptCalls = %d", admin.createPromptCalls)
	}
}

func TestAdminLoginFlow(t *testing.T) {
	admin := &stubAdmin{}
	m := New(&stubDriver{}, admin, nil)
	m.page = pageAdminLogin
	m.usernameInput = "admin"
	m.passwordInput = "secret"

	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a login command")
	}
	msg := cmd()
	if _, ok := msg.(AdminLoggedInMsg); !ok {
		t.Fatalf("unexpected message %T", msg)
	}

	updated, followup := m.Update(msg)
	model := updated.(Model)
	if model.page != pageAdminDashboard || model.tab != tabCodes {
		t.Fatalf("unexpected state after login: page=%d tab=%d", model.page, model.tab)
	}
	if followup == nil {
		t.Fatal("expected codes to load after login")
	}
	if _, ok := followup().(CodesLoadedMsg); !ok {
		t.Fatal("expected CodesLoadedMsg")
	}
}

func TestAdminEntryChecksExistingSession(t *testing.T) {
	admin := &stubAdmin{authenticated: true}
	m := New(&stubDriver{}, admin, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	if cmd == nil {
		t.Fatal("expected an auth check command")
	}
	msg := cmd()
	checked, ok := msg.(AuthCheckedMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	if !checked.Authenticated {
		t.Fatal("expected the cookie session to be accepted")
	}

	updated, followup := m.Update(msg)
	model := updated.(Model)
	if model.page != pageAdminDashboard {
		t.Fatalf("valid session should land on the dashboard, got page %d", model.page)
	}
	if followup == nil {
		t.Fatal("expected codes to load on entry")
	}
}

func TestAdminEntryFallsBackToLogin(t *testing.T) {
	m := New(&stubDriver{}, &stubAdmin{}, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	if cmd == nil {
		t.Fatal("expected an auth check command")
	}
	updated, _ := m.Update(cmd())
	if model := updated.(Model); model.page != pageAdminLogin {
		t.Fatalf("expired session should land on the login form, got page %d", model.page)
	}
}

func TestDashboardQuestionSetTab(t *testing.T) {
	admin := &stubAdmin{questionSets: []domain.QuestionSet{
		{ID: 3, Name: "Backend screen", QuestionCount: 4},
		{ID: 5, Name: "Frontend screen", QuestionCount: 3, IsActive: true},
	}}
	m := New(&stubDriver{}, admin, nil)
	m.page = pageAdminDashboard
	m.tab = tabCodes

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	m = updated.(Model)
	if m.tab != tabQuestionSets {
		t.Fatalf("tab = %d, want question sets", m.tab)
	}
	if cmd == nil {
		t.Fatal("expected the question set list to load")
	}
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if len(m.questionSets) != 2 {
		t.Fatalf("questionSets = %+v", m.questionSets)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if cmd == nil {
		t.Fatal("expected an activate command")
	}
	if _, ok := cmd().(QuestionSetsLoadedMsg); !ok {
		t.Fatal("expected the list to reload after activation")
	}
	if admin.activatedSetID != 3 {
		t.Fatalf("activated set %d, want 3", admin.activatedSetID)
	}
}

func TestDashboardDeleteCode(t *testing.T) {
	admin := &stubAdmin{codes: []domain.InterviewCode{{ID: 7, Code: "ABC123"}}}
	m := New(&stubDriver{}, admin, nil)
	m.page = pageAdminDashboard
	m.tab = tabCodes
	m.codes = admin.codes

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if cmd == nil {
		t.Fatal("expected a delete command")
	}
	cmd()
	if admin.deletedCodeID != 7 {
		t.Fatalf("deletedCodeID = %d", admin.deletedCodeID)
	}
}

func TestSinkDeliversAndDrops(t *testing.T) {
	sink := NewChannelSink()
	sink.TimerTick(30)
	sink.TranscriptFragment("hello")

	first := <-sink.Events()
	if first.Kind != EventTick || first.Remaining != 30 {
		t.Fatalf("unexpected first event: %+v", first)
	}
	second := <-sink.Events()
	if second.Kind != EventFragment || second.Text != "hello" {
		t.Fatalf("unexpected second event: %+v", second)
	}

	// Flooding past the buffer must not block the caller.
	for i := 0; i < 1000; i++ {
		sink.TimerTick(i)
	}
}

func TestSessionDetailsDownloadsSelectedRecording(t *testing.T) {
	t.Chdir(t.TempDir())
	admin := &stubAdmin{}
	m := New(&stubDriver{}, admin, nil)
	m.page = pageSessionDetails
	m.details = SessionDetailsLoadedMsg{Recordings: []domain.RecordingInfo{
		{ID: 7, Filename: "a.webm"},
		{ID: 9, Filename: "b.webm"},
	}}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = updated.(Model)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a download command")
	}

	msg := cmd()
	saved, ok := msg.(RecordingSavedMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	if saved.Err != nil {
		t.Fatalf("download failed: %v", saved.Err)
	}
	if admin.downloadedRecordingID != 9 {
		t.Fatalf("downloaded recording %d, want 9", admin.downloadedRecordingID)
	}
	if _, err := os.Stat(saved.Path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	updated, _ = m.Update(msg)
	m = updated.(Model)
	if m.detailStatus != "saved recording.webm" {
		t.Errorf("detailStatus = %q", m.detailStatus)
	}
}

func keyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}

type stubDriver struct {
	initCalls int
	skipCalls int
	hintCalls int
	lastCode  string
	lastName  string
}

func (s *stubDriver) Initialize(_ context.Context, code, name string) (domain.SessionDetail, error) {
	s.initCalls++
	s.lastCode = code
	s.lastName = name
	return domain.SessionDetail{
		Session:   domain.Session{ID: "s1", CandidateName: name},
		Questions: []domain.Question{{ID: 1}, {ID: 2}},
	}, nil
}

func (s *stubDriver) Start(_ context.Context) error { return nil }

func (s *stubDriver) Skip(_ context.Context) error {
	s.skipCalls++
	return nil
}

func (s *stubDriver) RequestHint() error {
	s.hintCalls++
	return nil
}

func (s *stubDriver) ToggleAudio() (bool, error) { return false, nil }

func (s *stubDriver) ToggleVideo() (bool, error) { return false, nil }

func (s *stubDriver) Close() error { return nil }

type stubAdmin struct {
	codes                 []domain.InterviewCode
	questionSets          []domain.QuestionSet
	authenticated         bool
	activatedSetID        int64
	deletedCodeID         int64
	createPromptCalls     int
	downloadedRecordingID int64
}

func (s *stubAdmin) Login(_ context.Context, _, _ string) error { return nil }

func (s *stubAdmin) Logout(_ context.Context) error { return nil }

func (s *stubAdmin) CheckAuth(_ context.Context) (bool, error) { return s.authenticated, nil }

func (s *stubAdmin) GetQuestionSets(_ context.Context) ([]domain.QuestionSet, error) {
	return s.questionSets, nil
}

func (s *stubAdmin) ActivateQuestionSet(_ context.Context, setID int64) error {
	s.activatedSetID = setID
	return nil
}

func (s *stubAdmin) GetCodes(_ context.Context) ([]domain.InterviewCode, error) {
	return s.codes, nil
}

func (s *stubAdmin) CreateCode(_ context.Context, _ int) (domain.InterviewCode, error) {
	return domain.InterviewCode{ID: 1, Code: "NEW001"}, nil
}

func (s *stubAdmin) DeleteCode(_ context.Context, codeID int64) error {
	s.deletedCodeID = codeID
	return nil
}

func (s *stubAdmin) GetSessions(_ context.Context) ([]domain.Session, error) { return nil, nil }

func (s *stubAdmin) GetAdminSession(_ context.Context, sessionID string) (domain.Session, error) {
	return domain.Session{ID: sessionID}, nil
}

func (s *stubAdmin) GetSessionResponses(_ context.Context, _ string) ([]domain.QuestionResponse, error) {
	return nil, nil
}

func (s *stubAdmin) GetSessionTranscripts(_ context.Context, _ string) ([]domain.TranscriptSegment, error) {
	return nil, nil
}

func (s *stubAdmin) GetSessionAIResponses(_ context.Context, _ string) ([]domain.StoredAIResponse, error) {
	return nil, nil
}

func (s *stubAdmin) GetSessionRecordings(_ context.Context, _ string) ([]domain.RecordingInfo, error) {
	return nil, nil
}

func (s *stubAdmin) DownloadRecording(_ context.Context, recordingID int64) ([]byte, string, error) {
	s.downloadedRecordingID = recordingID
	return []byte("bytes"), "recording.webm", nil
}

func (s *stubAdmin) GetAIPrompts(_ context.Context) ([]domain.AIPrompt, error) { return nil, nil }

func (s *stubAdmin) CreateAIPrompt(_ context.Context, prompt domain.AIPrompt) (domain.AIPrompt, error) {
	s.createPromptCalls++
	prompt.ID = 10
	return prompt, nil
}

func (s *stubAdmin) UpdateAIPrompt(_ context.Context, prompt domain.AIPrompt) (domain.AIPrompt, error) {
	return prompt, nil
}

func (s *stubAdmin) DeleteAIPrompt(_ context.Context, _ int64) error { return nil }

func (s *stubAdmin) ActivateAIPrompt(_ context.Context, _ int64) error { return nil }
