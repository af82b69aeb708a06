package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"interviewkit/internal/app"
	"interviewkit/internal/bootstrap"
	"interviewkit/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("INTERVIEWKIT_LOG_LEVEL"), logOutput())

	sink := app.NewChannelSink()
	services, err := bootstrap.Build(sink, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "interviewkit: %v\n", err)
		os.Exit(1)
	}

	model := app.New(services.Coordinator, services.API, sink.Events())
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.WithError(err).Error("terminal ui failed")
		fmt.Fprintf(os.Stderr, "interviewkit: %v\n", err)
		os.Exit(1)
	}

	_ = services.Coordinator.Close()
}

// logOutput routes logs to a file so they never write over the UI.
func logOutput() io.Writer {
	base, err := os.UserCacheDir()
	if err != nil {
		return io.Discard
	}
	dir := filepath.Join(base, "interviewkit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard
	}
	file, err := os.OpenFile(filepath.Join(dir, "interviewkit.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard
	}
	return file
}
