package bootstrap

import (
	"github.com/sirupsen/logrus"

	"interviewkit/internal/api"
	"interviewkit/internal/config"
	"interviewkit/internal/media"
	"interviewkit/internal/ports"
	"interviewkit/internal/realtime"
	"interviewkit/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Coordinator *usecase.Coordinator
	API         *api.Client
	Config      config.Config
}

// Build wires all client dependencies for the current runtime.
func Build(sink ports.EventSink, log *logrus.Logger) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	client, err := api.NewClient(cfg.Backend.APIBaseURL)
	if err != nil {
		return Services{}, err
	}

	adapter := media.NewAdapter(
		cfg.Capture.FFmpegCommand,
		ports.CaptureConfig{
			VideoInputFormat: cfg.Capture.VideoInputFormat,
			AudioInputFormat: cfg.Capture.AudioInputFormat,
			CameraDevice:     cfg.Capture.CameraDevice,
			MicrophoneDevice: cfg.Capture.MicrophoneDevice,
			Width:            cfg.Capture.Width,
			Height:           cfg.Capture.Height,
			FrameRate:        cfg.Capture.FrameRate,
			SampleRate:       cfg.Capture.SampleRate,
			Channels:         cfg.Capture.Channels,
			EchoCancel:       cfg.Capture.EchoCancel,
		},
		cfg.Session.FlushInterval,
		log.WithField("component", "media"),
	)

	coordinator := usecase.NewCoordinator(
		client,
		adapter,
		realtime.NewDialer(cfg.Backend.SocketURL, log.WithField("component", "realtime")),
		sink,
		log.WithField("component", "coordinator"),
		usecase.Config{
			ChunkInterval: cfg.Session.ChunkInterval,
			ChunkDuration: cfg.Session.ChunkDuration,
		},
	)

	return Services{Coordinator: coordinator, API: client, Config: cfg}, nil
}
