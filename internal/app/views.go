package app

import (
	"fmt"
	"strings"

	"interviewkit/internal/domain"
	"interviewkit/internal/ui"
)

func (m Model) View() string {
	switch m.page {
	case pageLanding:
		return m.viewLanding()
	case pageInterview:
		return m.viewInterview()
	case pageAdminLogin:
		return m.viewAdminLogin()
	case pageAdminDashboard:
		return m.viewDashboard()
	case pageSessionDetails:
		return m.viewSessionDetails()
	case pagePromptEditor:
		return m.viewPromptEditor()
	}
	return ""
}

func (m Model) viewLanding() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("INTERVIEWKIT") + "\n\n")
	b.WriteString(renderInput("Interview code", m.codeInput, m.landingFocus == 0) + "\n")
	b.WriteString(renderInput("Your name", m.nameInput, m.landingFocus == 1) + "\n\n")
	if m.landingError != "" {
		b.WriteString(ui.ErrorStyle.Render(m.landingError) + "\n\n")
	}
	b.WriteString(footer(
		"tab", "switch field",
		"enter", "join",
		"ctrl+a", "admin",
		"ctrl+c", "quit",
	))
	return b.String()
}

func (m Model) viewInterview() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("INTERVIEW") + "\n\n")

	switch m.phase {
	case domain.PhaseReady:
		b.WriteString("Session loaded. ")
		b.WriteString(fmt.Sprintf("%d questions ahead.\n\n", m.totalQuestions))
		if m.starting {
			b.WriteString(ui.MutedStyle.Render("Starting devices...") + "\n\n")
		} else {
			b.WriteString("Press " + ui.FooterKeyStyle.Render("enter") + " to begin.\n\n")
		}
	case domain.PhaseActive:
		b.WriteString(m.renderActiveInterview())
	case domain.PhaseCompleted:
		b.WriteString(ui.BadgeActiveStyle.Render("Interview completed.") + "\n")
		b.WriteString("Thank you for your time. You can close this window.\n\n")
	case domain.PhaseError:
		b.WriteString(ui.ErrorStyle.Render("The interview hit an unrecoverable problem.") + "\n\n")
	}

	if m.faultText != "" {
		b.WriteString(ui.ErrorStyle.Render(m.faultText) + "\n\n")
	}
	b.WriteString(m.interviewFooter())
	return b.String()
}

func (m Model) renderActiveInterview() string {
	var b strings.Builder

	header := fmt.Sprintf("Question %d of %d", m.questionIndex+1, m.totalQuestions)
	b.WriteString(ui.LabelStyle.Render(header))

	timer := ui.FormatDuration(m.remaining)
	if m.remaining <= 10 {
		b.WriteString("   " + ui.TimerLowStyle.Render(timer))
	} else {
		b.WriteString("   " + ui.TimerStyle.Render(timer))
	}
	b.WriteString("   " + ui.RecordingDotStyle.Render("● REC"))
	if !m.audioOn {
		b.WriteString("   " + ui.MutedStyle.Render("[mic muted]"))
	}
	if !m.videoOn {
		b.WriteString("   " + ui.MutedStyle.Render("[camera off]"))
	}
	b.WriteString("\n\n")

	b.WriteString(ui.QuestionStyle.Render(m.question.Text) + "\n\n")

	if len(m.fragments) > 0 {
		b.WriteString(ui.LabelStyle.Render("Transcript") + "\n")
		for _, fragment := range tail(m.fragments, 6) {
			b.WriteString(ui.TranscriptStyle.Render(fragment) + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.hints) > 0 {
		b.WriteString(ui.LabelStyle.Render("Assistant") + "\n")
		for _, hint := range m.hints[max(0, len(m.hints)-3):] {
			b.WriteString(ui.HintStyle.Render(hint.Message) + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) interviewFooter() string {
	switch m.phase {
	case domain.PhaseActive:
		return footer(
			"s", "skip question",
			"h", "request hint",
			"m", "toggle mic",
			"v", "toggle camera",
			"esc", "leave",
		)
	default:
		return footer("esc", "back", "ctrl+c", "quit")
	}
}

func (m Model) viewAdminLogin() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("ADMIN LOGIN") + "\n\n")
	b.WriteString(renderInput("Username", m.usernameInput, m.loginFocus == 0) + "\n")
	b.WriteString(renderInput("Password", strings.Repeat("*", len(m.passwordInput)), m.loginFocus == 1) + "\n\n")
	if m.adminError != "" {
		b.WriteString(ui.ErrorStyle.Render(m.adminError) + "\n\n")
	}
	b.WriteString(footer("tab", "switch field", "enter", "log in", "esc", "back"))
	return b.String()
}

func (m Model) viewDashboard() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("ADMIN") + "  " + m.renderTabs() + "\n\n")

	switch m.tab {
	case tabCodes:
		b.WriteString(m.renderCodes())
	case tabSessions:
		b.WriteString(m.renderSessions())
	case tabPrompts:
		b.WriteString(m.renderPrompts())
	case tabQuestionSets:
		b.WriteString(m.renderQuestionSets())
	}

	if m.adminError != "" {
		b.WriteString("\n" + ui.ErrorStyle.Render(m.adminError) + "\n")
	}
	b.WriteString("\n" + m.dashboardFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	labels := []string{"1 codes", "2 sessions", "3 prompts", "4 question sets"}
	for i, label := range labels {
		if dashboardTab(i) == m.tab {
			labels[i] = ui.SelectedRowStyle.Render("[" + label + "]")
		} else {
			labels[i] = ui.MutedStyle.Render(" " + label + " ")
		}
	}
	return strings.Join(labels, " ")
}

func (m Model) renderCodes() string {
	if len(m.codes) == 0 {
		return ui.MutedStyle.Render("No interview codes yet. Press n to create one.") + "\n"
	}
	var b strings.Builder
	b.WriteString(ui.TableHeaderStyle.Render("CODE        STATUS      CANDIDATE") + "\n")
	for i, code := range m.codes {
		status := ui.BadgeActiveStyle.Render("unused")
		if code.IsUsed {
			status = ui.BadgeUsedStyle.Render("used  ")
		}
		row := fmt.Sprintf("%-10s  %s      %s", code.Code, status, code.CandidateName)
		if i == m.selected {
			row = ui.SelectedRowStyle.Render("> ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m Model) renderSessions() string {
	if len(m.sessions) == 0 {
		return ui.MutedStyle.Render("No interview sessions yet.") + "\n"
	}
	var b strings.Builder
	b.WriteString(ui.TableHeaderStyle.Render("CANDIDATE            STATUS       STARTED") + "\n")
	for i, session := range m.sessions {
		row := fmt.Sprintf("%-20s %-12s %s", session.CandidateName, session.Status, session.StartedAt)
		if i == m.selected {
			row = ui.SelectedRowStyle.Render("> ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m Model) renderPrompts() string {
	if len(m.prompts) == 0 {
		return ui.MutedStyle.Render("No prompt templates yet. Press n to create one.") + "\n"
	}
	var b strings.Builder
	for i, prompt := range m.prompts {
		badge := "  "
		if prompt.IsActive {
			badge = ui.BadgeActiveStyle.Render("* ")
		}
		row := badge + prompt.Name
		if prompt.Description != "" {
			row += ui.MutedStyle.Render("  " + prompt.Description)
		}
		if i == m.selected {
			row = ui.SelectedRowStyle.Render("> ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m Model) renderQuestionSets() string {
	if len(m.questionSets) == 0 {
		return ui.MutedStyle.Render("No question sets created yet") + "\n"
	}
	var b strings.Builder
	for i, set := range m.questionSets {
		badge := "  "
		if set.IsActive {
			badge = ui.BadgeActiveStyle.Render("* ")
		}
		row := badge + set.Name + ui.MutedStyle.Render(fmt.Sprintf("  %d questions", set.QuestionCount))
		if set.Description != "" {
			row += ui.MutedStyle.Render("  " + set.Description)
		}
		if i == m.selected {
			row = ui.SelectedRowStyle.Render("> ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m Model) dashboardFooter() string {
	switch m.tab {
	case tabCodes:
		return footer("n", "new code", "d", "delete", "r", "refresh", "esc", "log out")
	case tabSessions:
		return footer("enter", "details", "r", "refresh", "esc", "log out")
	case tabQuestionSets:
		return footer("a", "activate", "r", "refresh", "esc", "log out")
	default:
		return footer("n", "new", "e", "edit", "a", "activate", "d", "delete", "esc", "log out")
	}
}

func (m Model) viewSessionDetails() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("SESSION") + "  " + m.details.Session.CandidateName + "\n")
	b.WriteString(ui.MutedStyle.Render("status: "+m.details.Session.Status) + "\n\n")

	if len(m.details.Responses) > 0 {
		b.WriteString(ui.LabelStyle.Render("Responses") + "\n")
		for _, response := range m.details.Responses {
			b.WriteString(fmt.Sprintf("  Q%d: %s\n", response.QuestionID, truncate(response.Transcript, 70)))
		}
		b.WriteString("\n")
	}
	if len(m.details.Transcripts) > 0 {
		b.WriteString(ui.LabelStyle.Render("Transcript segments") + "\n")
		for _, segment := range tailSegments(m.details.Transcripts, 8) {
			b.WriteString("  " + truncate(segment.Text, 70) + "\n")
		}
		b.WriteString("\n")
	}
	if len(m.details.AIResponses) > 0 {
		b.WriteString(ui.LabelStyle.Render("Assistant messages") + "\n")
		for _, msg := range m.details.AIResponses {
			b.WriteString("  " + ui.HintStyle.Render(truncate(msg.Message, 70)) + "\n")
		}
		b.WriteString("\n")
	}
	if len(m.details.Recordings) > 0 {
		b.WriteString(ui.LabelStyle.Render("Recordings") + "\n")
		for i, recording := range m.details.Recordings {
			line := fmt.Sprintf("%s (%s, %d bytes)", recording.Filename, ui.FormatDuration(recording.Duration), recording.SizeBytes)
			if i == m.detailSelected {
				b.WriteString("> " + ui.SelectedRowStyle.Render(line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n")
	}
	if m.detailStatus != "" {
		b.WriteString(ui.MutedStyle.Render(m.detailStatus) + "\n\n")
	}

	b.WriteString(footer("j/k", "select", "d", "download", "esc", "back"))
	return b.String()
}

func (m Model) viewPromptEditor() string {
	title := "NEW PROMPT"
	if m.promptDraft.ID != 0 {
		title = "EDIT PROMPT"
	}
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(title) + "\n\n")
	b.WriteString(renderInput("Name", m.promptDraft.Name, m.promptFocus == 0) + "\n")
	b.WriteString(renderInput("Description", m.promptDraft.Description, m.promptFocus == 1) + "\n")
	b.WriteString(renderInput("Prompt text", m.promptDraft.PromptText, m.promptFocus == 2) + "\n\n")
	if m.promptError != "" {
		b.WriteString(ui.ErrorStyle.Render(m.promptError) + "\n\n")
	}
	b.WriteString(footer("tab", "next field", "enter", "save", "esc", "cancel"))
	return b.String()
}

func renderInput(label, value string, focused bool) string {
	cursor := " "
	if focused {
		cursor = ui.SelectedRowStyle.Render("_")
	}
	return ui.LabelStyle.Render(label+": ") + ui.InputStyle.Render(value) + cursor
}

func footer(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, ui.FooterKeyStyle.Render(pairs[i])+" "+ui.FooterDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit-3] + "..."
}

func tail(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func tailSegments(items []domain.TranscriptSegment, n int) []domain.TranscriptSegment {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
