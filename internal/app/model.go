package app

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"interviewkit/internal/domain"
)

type page int

const (
	pageLanding page = iota
	pageInterview
	pageAdminLogin
	pageAdminDashboard
	pageSessionDetails
	pagePromptEditor
)

type dashboardTab int

const (
	tabCodes dashboardTab = iota
	tabSessions
	tabPrompts
	tabQuestionSets
)

// interviewDriver is the slice of the coordinator the UI needs.
type interviewDriver interface {
	Initialize(ctx context.Context, code, candidateName string) (domain.SessionDetail, error)
	Start(ctx context.Context) error
	Skip(ctx context.Context) error
	RequestHint() error
	ToggleAudio() (bool, error)
	ToggleVideo() (bool, error)
	Close() error
}

// adminClient is the admin REST surface the dashboard pages use.
type adminClient interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	CheckAuth(ctx context.Context) (bool, error)
	GetCodes(ctx context.Context) ([]domain.InterviewCode, error)
	CreateCode(ctx context.Context, expiresInHours int) (domain.InterviewCode, error)
	DeleteCode(ctx context.Context, codeID int64) error
	GetSessions(ctx context.Context) ([]domain.Session, error)
	GetAdminSession(ctx context.Context, sessionID string) (domain.Session, error)
	GetSessionResponses(ctx context.Context, sessionID string) ([]domain.QuestionResponse, error)
	GetSessionTranscripts(ctx context.Context, sessionID string) ([]domain.TranscriptSegment, error)
	GetSessionAIResponses(ctx context.Context, sessionID string) ([]domain.StoredAIResponse, error)
	GetSessionRecordings(ctx context.Context, sessionID string) ([]domain.RecordingInfo, error)
	DownloadRecording(ctx context.Context, recordingID int64) ([]byte, string, error)
	GetQuestionSets(ctx context.Context) ([]domain.QuestionSet, error)
	ActivateQuestionSet(ctx context.Context, setID int64) error
	GetAIPrompts(ctx context.Context) ([]domain.AIPrompt, error)
	CreateAIPrompt(ctx context.Context, prompt domain.AIPrompt) (domain.AIPrompt, error)
	UpdateAIPrompt(ctx context.Context, prompt domain.AIPrompt) (domain.AIPrompt, error)
	DeleteAIPrompt(ctx context.Context, promptID int64) error
	ActivateAIPrompt(ctx context.Context, promptID int64) error
}

// Model is the root bubbletea model for the interview client.
type Model struct {
	driver interviewDriver
	admin  adminClient
	events <-chan Event

	page   page
	width  int
	height int

	// Landing page
	codeInput    string
	nameInput    string
	landingFocus int
	landingError string

	// Interview state
	phase          domain.SessionPhase
	question       domain.Question
	questionIndex  int
	totalQuestions int
	remaining      int
	fragments      []string
	hints          []domain.AIMessage
	audioOn        bool
	videoOn        bool
	faultText      string
	starting       bool

	// Admin login
	usernameInput string
	passwordInput string
	loginFocus    int
	adminError    string

	// Dashboard
	tab          dashboardTab
	codes        []domain.InterviewCode
	sessions     []domain.Session
	prompts      []domain.AIPrompt
	questionSets []domain.QuestionSet
	selected     int

	// Session details
	details        SessionDetailsLoadedMsg
	detailSelected int
	detailStatus   string

	// Prompt editor
	promptDraft domain.AIPrompt
	promptFocus int
	promptError string
}

func New(driver interviewDriver, admin adminClient, events <-chan Event) Model {
	return Model{
		driver:  driver,
		admin:   admin,
		events:  events,
		audioOn: true,
		videoOn: true,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// waitForEvent polls the coordinator sink for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return EventStreamClosedMsg{}
		}
		return CoordinatorEventMsg{Event: event}
	}
}

func (m Model) initializeCmd(code, name string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.driver.Initialize(context.Background(), code, name)
		if err != nil {
			return SessionLoadErrorMsg{Err: err}
		}
		return SessionLoadedMsg{Detail: detail}
	}
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.driver.Start(context.Background()); err != nil {
			return InterviewStartErrorMsg{Err: err}
		}
		return InterviewStartedMsg{}
	}
}

func (m Model) skipCmd() tea.Cmd {
	return func() tea.Msg {
		return SkipDoneMsg{Err: m.driver.Skip(context.Background())}
	}
}

func (m Model) hintCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.driver.RequestHint(); err != nil {
			return AdminErrorMsg{Err: err}
		}
		return nil
	}
}

func (m Model) toggleAudioCmd() tea.Cmd {
	return func() tea.Msg {
		enabled, err := m.driver.ToggleAudio()
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return AudioToggledMsg{Enabled: enabled}
	}
}

func (m Model) toggleVideoCmd() tea.Cmd {
	return func() tea.Msg {
		enabled, err := m.driver.ToggleVideo()
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return VideoToggledMsg{Enabled: enabled}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		if err := m.admin.Login(context.Background(), username, password); err != nil {
			return AdminErrorMsg{Err: err}
		}
		return AdminLoggedInMsg{}
	}
}

func (m Model) checkAuthCmd() tea.Cmd {
	return func() tea.Msg {
		authenticated, err := m.admin.CheckAuth(context.Background())
		if err != nil {
			return AuthCheckedMsg{Authenticated: false}
		}
		return AuthCheckedMsg{Authenticated: authenticated}
	}
}

func (m Model) loadCodesCmd() tea.Cmd {
	return func() tea.Msg {
		codes, err := m.admin.GetCodes(context.Background())
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return CodesLoadedMsg{Codes: codes}
	}
}

func (m Model) createCodeCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.admin.CreateCode(context.Background(), 24); err != nil {
			return AdminErrorMsg{Err: err}
		}
		return m.loadCodesCmd()()
	}
}

func (m Model) deleteCodeCmd(codeID int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.admin.DeleteCode(context.Background(), codeID); err != nil {
			return AdminErrorMsg{Err: err}
		}
		return m.loadCodesCmd()()
	}
}

func (m Model) loadQuestionSetsCmd() tea.Cmd {
	return func() tea.Msg {
		sets, err := m.admin.GetQuestionSets(context.Background())
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return QuestionSetsLoadedMsg{Sets: sets}
	}
}

func (m Model) activateQuestionSetCmd(setID int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.admin.ActivateQuestionSet(context.Background(), setID); err != nil {
			return AdminErrorMsg{Err: err}
		}
		return m.loadQuestionSetsCmd()()
	}
}

func (m Model) loadSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.admin.GetSessions(context.Background())
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return SessionsLoadedMsg{Sessions: sessions}
	}
}

func (m Model) loadSessionDetailsCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		session, err := m.admin.GetAdminSession(context.Background(), sessionID)
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		responses, err := m.admin.GetSessionResponses(context.Background(), sessionID)
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		transcripts, err := m.admin.GetSessionTranscripts(context.Background(), sessionID)
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		aiResponses, err := m.admin.GetSessionAIResponses(context.Background(), sessionID)
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		recordings, err := m.admin.GetSessionRecordings(context.Background(), sessionID)
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return SessionDetailsLoadedMsg{
			Session:     session,
			Responses:   responses,
			Transcripts: transcripts,
			AIResponses: aiResponses,
			Recordings:  recordings,
		}
	}
}

func (m Model) downloadRecordingCmd(recordingID int64) tea.Cmd {
	return func() tea.Msg {
		data, filename, err := m.admin.DownloadRecording(context.Background(), recordingID)
		if err != nil {
			return RecordingSavedMsg{Err: err}
		}
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return RecordingSavedMsg{Err: err}
		}
		return RecordingSavedMsg{Path: filename}
	}
}

func (m Model) loadPromptsCmd() tea.Cmd {
	return func() tea.Msg {
		prompts, err := m.admin.GetAIPrompts(context.Background())
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return PromptsLoadedMsg{Prompts: prompts}
	}
}

func (m Model) savePromptCmd(prompt domain.AIPrompt) tea.Cmd {
	return func() tea.Msg {
		var (
			saved domain.AIPrompt
			err   error
		)
		if prompt.ID == 0 {
			saved, err = m.admin.CreateAIPrompt(context.Background(), prompt)
		} else {
			saved, err = m.admin.UpdateAIPrompt(context.Background(), prompt)
		}
		if err != nil {
			return AdminErrorMsg{Err: err}
		}
		return PromptSavedMsg{Prompt: saved}
	}
}

func (m Model) deletePromptCmd(promptID int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.admin.DeleteAIPrompt(context.Background(), promptID); err != nil {
			return AdminErrorMsg{Err: err}
		}
		return m.loadPromptsCmd()()
	}
}

func (m Model) activatePromptCmd(promptID int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.admin.ActivateAIPrompt(context.Background(), promptID); err != nil {
			return AdminErrorMsg{Err: err}
		}
		return m.loadPromptsCmd()()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SessionLoadedMsg:
		m.page = pageInterview
		m.phase = domain.PhaseReady
		m.totalQuestions = len(msg.Detail.Questions)
		m.landingError = ""
		m.faultText = ""
		m.fragments = nil
		m.hints = nil
		return m, nil

	case SessionLoadErrorMsg:
		m.landingError = msg.Err.Error()
		return m, nil

	case InterviewStartedMsg:
		m.starting = false
		return m, nil

	case InterviewStartErrorMsg:
		m.starting = false
		m.faultText = msg.Err.Error()
		return m, nil

	case CoordinatorEventMsg:
		m.applyEvent(msg.Event)
		return m, waitForEvent(m.events)

	case EventStreamClosedMsg:
		return m, nil

	case SkipDoneMsg:
		if msg.Err != nil {
			m.faultText = msg.Err.Error()
		}
		return m, nil

	case AudioToggledMsg:
		m.audioOn = msg.Enabled
		return m, nil

	case VideoToggledMsg:
		m.videoOn = msg.Enabled
		return m, nil

	case AdminLoggedInMsg:
		m.page = pageAdminDashboard
		m.tab = tabCodes
		m.selected = 0
		m.adminError = ""
		return m, m.loadCodesCmd()

	case AuthCheckedMsg:
		if msg.Authenticated {
			m.page = pageAdminDashboard
			m.tab = tabCodes
			m.selected = 0
			m.adminError = ""
			return m, m.loadCodesCmd()
		}
		m.page = pageAdminLogin
		m.adminError = ""
		return m, nil

	case QuestionSetsLoadedMsg:
		m.questionSets = msg.Sets
		m.clampSelection()
		return m, nil

	case AdminErrorMsg:
		m.adminError = msg.Err.Error()
		return m, nil

	case CodesLoadedMsg:
		m.codes = msg.Codes
		m.clampSelection()
		return m, nil

	case SessionsLoadedMsg:
		m.sessions = msg.Sessions
		m.clampSelection()
		return m, nil

	case SessionDetailsLoadedMsg:
		m.details = msg
		m.page = pageSessionDetails
		m.detailSelected = 0
		m.detailStatus = ""
		return m, nil

	case RecordingSavedMsg:
		if msg.Err != nil {
			m.detailStatus = msg.Err.Error()
		} else {
			m.detailStatus = "saved " + msg.Path
		}
		return m, nil

	case PromptsLoadedMsg:
		m.prompts = msg.Prompts
		m.clampSelection()
		return m, nil

	case PromptSavedMsg:
		m.page = pageAdminDashboard
		m.promptError = ""
		return m, m.loadPromptsCmd()
	}

	return m, nil
}

// applyEvent folds one coordinator event into the display state.
func (m *Model) applyEvent(event Event) {
	switch event.Kind {
	case EventPhase:
		m.phase = event.Phase
	case EventQuestion:
		m.question = event.Question
		m.questionIndex = event.Index
		m.remaining = event.Question.TimeLimit
		m.fragments = nil
		m.hints = nil
	case EventTick:
		m.remaining = event.Remaining
	case EventFragment:
		m.fragments = append(m.fragments, event.Text)
	case EventAI:
		m.hints = append(m.hints, event.AI)
	case EventFault:
		m.faultText = event.Detail
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		_ = m.driver.Close()
		return m, tea.Quit
	}

	switch m.page {
	case pageLanding:
		return m.handleLandingKey(msg)
	case pageInterview:
		return m.handleInterviewKey(msg)
	case pageAdminLogin:
		return m.handleAdminLoginKey(msg)
	case pageAdminDashboard:
		return m.handleDashboardKey(msg)
	case pageSessionDetails:
		return m.handleDetailsKey(msg)
	case pagePromptEditor:
		return m.handlePromptEditorKey(msg)
	}
	return m, nil
}

func (m Model) handleLandingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.landingFocus = (m.landingFocus + 1) % 2
		return m, nil
	case "ctrl+a":
		// An existing cookie session skips the login form.
		return m, m.checkAuthCmd()
	case "enter":
		code := strings.TrimSpace(m.codeInput)
		name := strings.TrimSpace(m.nameInput)
		if code == "" || name == "" {
			m.landingError = "Code and name are required"
			return m, nil
		}
		m.landingError = ""
		return m, m.initializeCmd(code, name)
	}

	if m.landingFocus == 0 {
		m.codeInput = editField(m.codeInput, msg)
	} else {
		m.nameInput = editField(m.nameInput, msg)
	}
	return m, nil
}

func (m Model) handleInterviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.phase == domain.PhaseReady && !m.starting {
			m.starting = true
			return m, m.startCmd()
		}
		return m, nil
	case "s":
		if m.phase == domain.PhaseActive {
			return m, m.skipCmd()
		}
		return m, nil
	case "h":
		if m.phase == domain.PhaseActive {
			return m, m.hintCmd()
		}
		return m, nil
	case "m":
		if m.phase == domain.PhaseActive {
			return m, m.toggleAudioCmd()
		}
		return m, nil
	case "v":
		if m.phase == domain.PhaseActive {
			return m, m.toggleVideoCmd()
		}
		return m, nil
	case "q", "esc":
		if m.phase.Terminal() {
			m.page = pageLanding
			m.codeInput = ""
			m.nameInput = ""
			return m, nil
		}
		_ = m.driver.Close()
		m.page = pageLanding
		return m, nil
	}
	return m, nil
}

func (m Model) handleAdminLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.page = pageLanding
		return m, nil
	case "tab":
		m.loginFocus = (m.loginFocus + 1) % 2
		return m, nil
	case "enter":
		return m, m.loginCmd(m.usernameInput, m.passwordInput)
	}

	if m.loginFocus == 0 {
		m.usernameInput = editField(m.usernameInput, msg)
	} else {
		m.passwordInput = editField(m.passwordInput, msg)
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.page = pageLanding
		return m, func() tea.Msg {
			_ = m.admin.Logout(context.Background())
			return nil
		}
	case "1":
		m.tab = tabCodes
		m.selected = 0
		return m, m.loadCodesCmd()
	case "2":
		m.tab = tabSessions
		m.selected = 0
		return m, m.loadSessionsCmd()
	case "3":
		m.tab = tabPrompts
		m.selected = 0
		return m, m.loadPromptsCmd()
	case "4":
		m.tab = tabQuestionSets
		m.selected = 0
		return m, m.loadQuestionSetsCmd()
	case "r":
		switch m.tab {
		case tabCodes:
			return m, m.loadCodesCmd()
		case tabSessions:
			return m, m.loadSessionsCmd()
		case tabPrompts:
			return m, m.loadPromptsCmd()
		case tabQuestionSets:
			return m, m.loadQuestionSetsCmd()
		}
		return m, nil
	case "j", "down":
		if m.selected < m.tabLength()-1 {
			m.selected++
		}
		return m, nil
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "n":
		switch m.tab {
		case tabCodes:
			return m, m.createCodeCmd()
		case tabPrompts:
			m.promptDraft = domain.AIPrompt{}
			m.promptFocus = 0
			m.promptError = ""
			m.page = pagePromptEditor
		}
		return m, nil
	case "e":
		if m.tab == tabPrompts && m.selected < len(m.prompts) {
			m.promptDraft = m.prompts[m.selected]
			m.promptFocus = 0
			m.promptError = ""
			m.page = pagePromptEditor
		}
		return m, nil
	case "d":
		switch m.tab {
		case tabCodes:
			if m.selected < len(m.codes) {
				return m, m.deleteCodeCmd(m.codes[m.selected].ID)
			}
		case tabPrompts:
			if m.selected < len(m.prompts) {
				return m, m.deletePromptCmd(m.prompts[m.selected].ID)
			}
		}
		return m, nil
	case "a":
		switch m.tab {
		case tabPrompts:
			if m.selected < len(m.prompts) {
				return m, m.activatePromptCmd(m.prompts[m.selected].ID)
			}
		case tabQuestionSets:
			if m.selected < len(m.questionSets) {
				return m, m.activateQuestionSetCmd(m.questionSets[m.selected].ID)
			}
		}
		return m, nil
	case "enter":
		if m.tab == tabSessions && m.selected < len(m.sessions) {
			return m, m.loadSessionDetailsCmd(m.sessions[m.selected].ID)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.page = pageAdminDashboard
		return m, nil
	case "j", "down":
		if m.detailSelected < len(m.details.Recordings)-1 {
			m.detailSelected++
		}
		return m, nil
	case "k", "up":
		if m.detailSelected > 0 {
			m.detailSelected--
		}
		return m, nil
	case "d":
		if len(m.details.Recordings) == 0 {
			return m, nil
		}
		m.detailStatus = "downloading..."
		return m, m.downloadRecordingCmd(m.details.Recordings[m.detailSelected].ID)
	}
	return m, nil
}

func (m Model) handlePromptEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.page = pageAdminDashboard
		m.promptError = ""
		return m, nil
	case "tab":
		m.promptFocus = (m.promptFocus + 1) % 3
		return m, nil
	case "enter":
		// Validated locally so an empty form never reaches the backend.
		if strings.TrimSpace(m.promptDraft.Name) == "" || strings.TrimSpace(m.promptDraft.PromptText) == "" {
			m.promptError = "Name and prompt text are required"
			return m, nil
		}
		m.promptError = ""
		return m, m.savePromptCmd(m.promptDraft)
	}

	switch m.promptFocus {
	case 0:
		m.promptDraft.Name = editField(m.promptDraft.Name, msg)
	case 1:
		m.promptDraft.Description = editField(m.promptDraft.Description, msg)
	case 2:
		m.promptDraft.PromptText = editField(m.promptDraft.PromptText, msg)
	}
	return m, nil
}

func (m Model) tabLength() int {
	switch m.tab {
	case tabCodes:
		return len(m.codes)
	case tabSessions:
		return len(m.sessions)
	case tabPrompts:
		return len(m.prompts)
	case tabQuestionSets:
		return len(m.questionSets)
	}
	return 0
}

func (m *Model) clampSelection() {
	if length := m.tabLength(); m.selected >= length {
		m.selected = max(0, length-1)
	}
}

func editField(value string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		if len(value) > 0 {
			return value[:len(value)-1]
		}
		return value
	case tea.KeySpace:
		return value + " "
	case tea.KeyRunes:
		return value + string(msg.Runes)
	}
	return value
}
