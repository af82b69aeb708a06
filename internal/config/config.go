package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config stores runtime configuration for the interview client.
type Config struct {
	Backend BackendConfig
	Capture CaptureConfig
	Session SessionConfig
	LogLevel string
}

type BackendConfig struct {
	APIBaseURL string
	SocketURL  string
}

type CaptureConfig struct {
	FFmpegCommand    string
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

type SessionConfig struct {
	ChunkInterval time.Duration
	ChunkDuration time.Duration
	FlushInterval time.Duration
}

type envConfig struct {
	APIBaseURL       string `env:"INTERVIEWKIT_API_URL" envDefault:"http://localhost:5000"`
	SocketURL        string `env:"INTERVIEWKIT_SOCKET_URL"`
	LogLevel         string `env:"INTERVIEWKIT_LOG_LEVEL" envDefault:"info"`
	FFmpegCommand    string `env:"INTERVIEWKIT_FFMPEG_COMMAND" envDefault:"ffmpeg"`
	VideoInputFormat string `env:"INTERVIEWKIT_VIDEO_INPUT_FORMAT" envDefault:"v4l2"`
	AudioInputFormat string `env:"INTERVIEWKIT_AUDIO_INPUT_FORMAT" envDefault:"pulse"`
	CameraDevice     string `env:"INTERVIEWKIT_CAMERA_DEVICE"`
	MicrophoneDevice string `env:"INTERVIEWKIT_MICROPHONE_DEVICE" envDefault:"default"`
	Width            int    `env:"INTERVIEWKIT_CAPTURE_WIDTH" envDefault:"1280"`
	Height           int    `env:"INTERVIEWKIT_CAPTURE_HEIGHT" envDefault:"720"`
	FrameRate        int    `env:"INTERVIEWKIT_CAPTURE_FPS" envDefault:"30"`
	SampleRate       int    `env:"INTERVIEWKIT_SAMPLE_RATE" envDefault:"16000"`
	Channels         int    `env:"INTERVIEWKIT_CHANNELS" envDefault:"1"`
	EchoCancel       bool   `env:"INTERVIEWKIT_ECHO_CANCEL" envDefault:"true"`
	ChunkIntervalMS  int    `env:"INTERVIEWKIT_CHUNK_INTERVAL_MS" envDefault:"2000"`
	ChunkDurationMS  int    `env:"INTERVIEWKIT_CHUNK_DURATION_MS" envDefault:"2000"`
	FlushIntervalMS  int    `env:"INTERVIEWKIT_FLUSH_INTERVAL_MS" envDefault:"1000"`
}

// Load resolves configuration from environment variables and defaults.
func Load() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("environment variables are invalid: %w", err)
	}

	cfg := Config{
		Backend: BackendConfig{
			APIBaseURL: strings.TrimRight(strings.TrimSpace(raw.APIBaseURL), "/"),
			SocketURL:  strings.TrimSpace(raw.SocketURL),
		},
		Capture: CaptureConfig{
			FFmpegCommand:    raw.FFmpegCommand,
			VideoInputFormat: raw.VideoInputFormat,
			AudioInputFormat: raw.AudioInputFormat,
			CameraDevice:     raw.CameraDevice,
			MicrophoneDevice: raw.MicrophoneDevice,
			Width:            raw.Width,
			Height:           raw.Height,
			FrameRate:        raw.FrameRate,
			SampleRate:       raw.SampleRate,
			Channels:         raw.Channels,
			EchoCancel:       raw.EchoCancel,
		},
		Session: SessionConfig{
			ChunkInterval: time.Duration(raw.ChunkIntervalMS) * time.Millisecond,
			ChunkDuration: time.Duration(raw.ChunkDurationMS) * time.Millisecond,
			FlushInterval: time.Duration(raw.FlushIntervalMS) * time.Millisecond,
		},
		LogLevel: raw.LogLevel,
	}

	// The socket endpoint defaults to the API host, mirroring how the
	// backend serves both from one origin.
	if cfg.Backend.SocketURL == "" {
		cfg.Backend.SocketURL = deriveSocketURL(cfg.Backend.APIBaseURL)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Backend.APIBaseURL == "" {
		return fmt.Errorf("INTERVIEWKIT_API_URL is required")
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return fmt.Errorf("capture resolution must be positive, got %dx%d", c.Capture.Width, c.Capture.Height)
	}
	if c.Capture.FrameRate <= 0 {
		return fmt.Errorf("capture frame rate must be positive, got %d", c.Capture.FrameRate)
	}
	if c.Capture.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.Capture.SampleRate)
	}
	if c.Capture.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", c.Capture.Channels)
	}
	if c.Session.ChunkInterval <= 0 || c.Session.ChunkDuration <= 0 {
		return fmt.Errorf("chunk interval and duration must be positive")
	}
	if c.Session.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive")
	}
	return nil
}

func deriveSocketURL(apiBase string) string {
	socket := apiBase
	if strings.HasPrefix(socket, "https://") {
		socket = "wss://" + strings.TrimPrefix(socket, "https://")
	} else if strings.HasPrefix(socket, "http://") {
		socket = "ws://" + strings.TrimPrefix(socket, "http://")
	}
	return strings.TrimRight(socket, "/") + "/ws"
}
