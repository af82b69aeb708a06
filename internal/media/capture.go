package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"interviewkit/internal/domain"
	"interviewkit/internal/ports"
)

// Audio cleanup filter applied when echo cancellation is requested. ffmpeg has
// no true acoustic echo canceller; this chain strips rumble and steady noise
// from the microphone path instead.
const echoCancelFilter = "highpass=f=80,lowpass=f=8000,afftdn"

// Adapter captures camera and microphone media through ffmpeg subprocesses
// and implements ports.MediaCapture. One adapter owns at most one live
// capture stream.
type Adapter struct {
	command string
	cfg     ports.CaptureConfig
	flush   time.Duration
	probe   *encoderProbe
	log     *logrus.Entry

	mu        sync.Mutex
	stream    *captureStream
	profile   CodecProfile
	haveCodec bool
	selection domain.DeviceSelection
	audioOn   bool
	videoOn   bool
}

func NewAdapter(command string, cfg ports.CaptureConfig, flushInterval time.Duration, log *logrus.Entry) *Adapter {
	if command == "" {
		command = "ffmpeg"
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Adapter{
		command: command,
		cfg:     cfg,
		flush:   flushInterval,
		probe:   newEncoderProbe(command),
		log:     log,
		audioOn: true,
		videoOn: true,
	}
}

// StartCapture opens the combined audio+video stream. A stream that is
// already live is stopped first and replaced.
func (a *Adapter) StartCapture(ctx context.Context, sel domain.DeviceSelection) error {
	a.mu.Lock()
	previous := a.stream
	a.stream = nil
	a.mu.Unlock()

	if previous != nil {
		_ = previous.stop()
	}

	profile, err := a.negotiateProfile()
	if err != nil {
		return err
	}

	camera := sel.CameraID
	if camera == "" {
		camera = a.cfg.CameraDevice
	}
	microphone := sel.MicrophoneID
	if microphone == "" {
		microphone = a.cfg.MicrophoneDevice
	}

	stream, err := a.spawnCapture(ctx, profile, camera, microphone)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.stream = stream
	a.selection = domain.DeviceSelection{CameraID: camera, MicrophoneID: microphone}
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{
		"camera":     camera,
		"microphone": microphone,
		"codec":      profile.Name,
	}).Info("media capture started")
	return nil
}

// StopCapture releases the stream. Safe to call when nothing is active.
func (a *Adapter) StopCapture() error {
	a.mu.Lock()
	stream := a.stream
	a.stream = nil
	a.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.stop()
}

// StartRecording begins retaining the encoded stream. Capture is started
// implicitly when no stream is live; a recording already in progress is
// discarded and restarted.
func (a *Adapter) StartRecording(ctx context.Context) error {
	a.mu.Lock()
	stream := a.stream
	sel := a.selection
	a.mu.Unlock()

	if stream == nil {
		if err := a.StartCapture(ctx, sel); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrNoStream, err)
		}
		a.mu.Lock()
		stream = a.stream
		a.mu.Unlock()
	}

	a.mu.Lock()
	profile := a.profile
	a.mu.Unlock()

	stream.attach(&recording{
		mimeType:  profile.MimeType,
		started:   time.Now(),
		lastFlush: time.Now(),
	})
	return nil
}

// StopRecording finalizes the active recording and returns the concatenated
// blob. With no recording in progress it returns an empty blob, not an error.
func (a *Adapter) StopRecording() (domain.RecordingBlob, error) {
	a.mu.Lock()
	stream := a.stream
	a.mu.Unlock()

	if stream == nil {
		return domain.RecordingBlob{}, nil
	}
	rec := stream.detach()
	if rec == nil {
		return domain.RecordingBlob{}, nil
	}
	return rec.blob(), nil
}

// ToggleAudio flips the microphone mute flag and returns the new enabled
// state. The stream keeps running; callers gate chunk dispatch on the flag.
func (a *Adapter) ToggleAudio() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.audioOn = !a.audioOn
	return a.audioOn
}

// ToggleVideo flips the camera mute flag and returns the new enabled state.
func (a *Adapter) ToggleVideo() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.videoOn = !a.videoOn
	return a.videoOn
}

// CaptureChunk records one bounded audio-only chunk from the microphone for
// transcription transport. The microphone is opened in a separate short-lived
// process; shared-access input formats allow this alongside the main stream.
func (a *Adapter) CaptureChunk(ctx context.Context, duration time.Duration) (domain.RecordingChunk, error) {
	if duration <= 0 {
		duration = 2 * time.Second
	}

	a.mu.Lock()
	microphone := a.selection.MicrophoneID
	a.mu.Unlock()
	if microphone == "" {
		microphone = a.cfg.MicrophoneDevice
	}

	codec, container, mimeType := a.chunkCodec()
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-f", a.cfg.AudioInputFormat,
		"-i", microphone,
		"-t", fmt.Sprintf("%.3f", duration.Seconds()),
		"-ac", strconv.Itoa(a.cfg.Channels),
		"-ar", strconv.Itoa(a.cfg.SampleRate),
	}
	if a.cfg.EchoCancel {
		args = append(args, "-af", echoCancelFilter)
	}
	args = append(args, "-c:a", codec, "-f", container, "-")

	runCtx, cancel := context.WithTimeout(ctx, duration+3*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		return domain.RecordingChunk{}, classifyDeviceErr(err, stderr.String())
	}
	if stdout.Len() == 0 {
		return domain.RecordingChunk{}, fmt.Errorf("%w: microphone produced no data", domain.ErrDeviceUnavailable)
	}

	return domain.RecordingChunk{
		Data:      stdout.Bytes(),
		MimeType:  mimeType,
		Timestamp: started,
		Duration:  duration,
	}, nil
}

func (a *Adapter) negotiateProfile() (CodecProfile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.haveCodec {
		return a.profile, nil
	}
	profile, err := SelectProfile(DefaultProfiles(), a.probe.Supported)
	if err != nil {
		return CodecProfile{}, err
	}
	a.profile = profile
	a.haveCodec = true
	return profile, nil
}

func (a *Adapter) chunkCodec() (codec, container, mimeType string) {
	if a.probe.Supported("libopus") {
		return "libopus", "webm", "audio/webm;codecs=opus"
	}
	return "pcm_s16le", "wav", "audio/wav"
}

func (a *Adapter) spawnCapture(ctx context.Context, profile CodecProfile, camera, microphone string) (*captureStream, error) {
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", a.cfg.VideoInputFormat,
		"-framerate", strconv.Itoa(a.cfg.FrameRate),
		"-video_size", fmt.Sprintf("%dx%d", a.cfg.Width, a.cfg.Height),
		"-i", camera,
		"-f", a.cfg.AudioInputFormat,
		"-i", microphone,
		"-ac", strconv.Itoa(a.cfg.Channels),
		"-ar", strconv.Itoa(a.cfg.SampleRate),
	}
	if a.cfg.EchoCancel {
		args = append(args, "-af", echoCancelFilter)
	}
	args = append(args,
		"-c:v", profile.VideoCodec,
		"-b:v", "2500k",
		"-c:a", profile.AudioCodec,
		"-b:a", "128k",
		"-f", profile.Container,
		"-",
	)

	cmd := exec.CommandContext(ctx, a.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err == nil {
			err = errors.New("capture exited before it started")
		}
		return nil, classifyDeviceErr(err, stderr.String())
	case <-time.After(250 * time.Millisecond):
	}

	stream := &captureStream{
		stdout:   stdout,
		stderr:   &stderr,
		process:  cmd.Process,
		waitErr:  waitErr,
		pumpDone: make(chan struct{}),
	}
	go stream.pump(a.flush)
	return stream, nil
}

// captureStream owns one live ffmpeg capture process. Its pump goroutine
// drains encoded output continuously, retaining bytes only while a recording
// is attached so the pipe never backs up.
type captureStream struct {
	stdout  io.ReadCloser
	stderr  *bytes.Buffer
	process *os.Process
	waitErr <-chan error

	pumpDone chan struct{}

	recMu sync.Mutex
	rec   *recording

	stopOnce sync.Once
	stopErr  error
}

func (s *captureStream) attach(rec *recording) {
	s.recMu.Lock()
	s.rec = rec
	s.recMu.Unlock()
}

func (s *captureStream) detach() *recording {
	s.recMu.Lock()
	rec := s.rec
	s.rec = nil
	s.recMu.Unlock()
	return rec
}

func (s *captureStream) pump(flushInterval time.Duration) {
	defer close(s.pumpDone)

	buf := make([]byte, 32*1024)
	for {
		n, err := s.stdout.Read(buf)
		if n > 0 {
			s.retain(buf[:n], flushInterval)
		}
		if err != nil {
			return
		}
	}
}

func (s *captureStream) retain(chunk []byte, flushInterval time.Duration) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	if s.rec == nil {
		return
	}
	s.rec.pending = append(s.rec.pending, chunk...)
	if time.Since(s.rec.lastFlush) >= flushInterval {
		s.rec.segments = append(s.rec.segments, s.rec.pending)
		s.rec.pending = nil
		s.rec.lastFlush = time.Now()
	}
}

func (s *captureStream) stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}
		<-s.pumpDone

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, trimmed(s.stderr.String()))
		}
	})

	return s.stopErr
}

// recording accumulates encoded segments flushed from the capture pump.
type recording struct {
	mimeType  string
	started   time.Time
	lastFlush time.Time
	pending   []byte
	segments  [][]byte
}

func (r *recording) blob() domain.RecordingBlob {
	if len(r.pending) > 0 {
		r.segments = append(r.segments, r.pending)
		r.pending = nil
	}

	size := 0
	for _, segment := range r.segments {
		size += len(segment)
	}
	data := make([]byte, 0, size)
	for _, segment := range r.segments {
		data = append(data, segment...)
	}

	return domain.RecordingBlob{
		Data:     data,
		MimeType: r.mimeType,
		Duration: time.Since(r.started),
	}
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func classifyDeviceErr(err error, stderr string) error {
	detail := trimmed(stderr)
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "permission denied"), strings.Contains(lower, "operation not permitted"):
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, detail)
	case strings.Contains(lower, "no such device"), strings.Contains(lower, "no such file"),
		strings.Contains(lower, "device or resource busy"), strings.Contains(lower, "connection refused"):
		return fmt.Errorf("%w: %s", domain.ErrDeviceUnavailable, detail)
	}
	if detail == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, detail)
}

func trimmed(input string) string {
	return strings.TrimSpace(input)
}
