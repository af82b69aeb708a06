package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the terminal client.
var (
	ColorRed    = lipgloss.Color("#FF5555")
	ColorGreen  = lipgloss.Color("#50FA7B")
	ColorYellow = lipgloss.Color("#F1FA8C")
	ColorCyan   = lipgloss.Color("#8BE9FD")
	ColorPurple = lipgloss.Color("#BD93F9")
	ColorGray   = lipgloss.Color("#6272A4")
	ColorWhite  = lipgloss.Color("#F8F8F2")
)

// Base styles reused by the page views.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	QuestionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			PaddingLeft(1)

	TimerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	TimerLowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	TranscriptStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			PaddingLeft(1)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorPurple).
			Italic(true).
			PaddingLeft(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	InputStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorCyan).
				Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite).
				Underline(true)

	BadgeActiveStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	BadgeUsedStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)
