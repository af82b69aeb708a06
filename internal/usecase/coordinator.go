package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"interviewkit/internal/domain"
	"interviewkit/internal/ports"
)

var ErrNoActiveInterview = errors.New("no active interview")

// Config controls coordinator pacing.
type Config struct {
	// ChunkInterval is how often an audio chunk is captured and relayed
	// for live transcription.
	ChunkInterval time.Duration
	// ChunkDuration is the length of each relayed audio chunk.
	ChunkDuration time.Duration
	// TimerInterval is the countdown resolution. One second in
	// production.
	TimerInterval time.Duration
}

// Coordinator drives one interview at a time: code validation, device and
// channel setup, question pacing, transcript collection, and teardown.
type Coordinator struct {
	api    ports.InterviewAPI
	media  ports.MediaCapture
	dialer ports.ChannelDialer
	events ports.EventSink
	log    *logrus.Entry
	cfg    Config

	mu      sync.Mutex
	current *activeInterview
}

func NewCoordinator(
	api ports.InterviewAPI,
	media ports.MediaCapture,
	dialer ports.ChannelDialer,
	events ports.EventSink,
	log *logrus.Entry,
	cfg Config,
) *Coordinator {
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = 2 * time.Second
	}
	if cfg.ChunkDuration <= 0 {
		cfg.ChunkDuration = cfg.ChunkInterval
	}
	if cfg.TimerInterval <= 0 {
		cfg.TimerInterval = time.Second
	}
	return &Coordinator{
		api:    api,
		media:  media,
		dialer: dialer,
		events: events,
		log:    log,
		cfg:    cfg,
	}
}

// Initialize redeems an interview code and loads the session. On success the
// interview sits in the ready phase waiting for Start.
func (c *Coordinator) Initialize(ctx context.Context, code, candidateName string) (domain.SessionDetail, error) {
	validation, err := c.api.ValidateCode(ctx, code, candidateName)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.events.SessionError(domain.ErrorCodeValidation, err.Error())
		} else {
			c.events.SessionError(domain.ErrorCodeNetwork, err.Error())
		}
		return domain.SessionDetail{}, err
	}

	detail, err := c.api.GetSession(ctx, validation.SessionID)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeNetwork, err.Error())
		c.events.PhaseChanged(domain.PhaseError, domain.ReasonSessionLoadFailed)
		return domain.SessionDetail{}, err
	}

	active := &activeInterview{
		sessionID:     validation.SessionID,
		candidateName: validation.CandidateName,
		questions:     detail.Questions,
		phase:         domain.PhaseReady,
		index:         -1,
		transcript:    NewTranscriptBuffer(),
	}

	var previous *activeInterview
	c.mu.Lock()
	previous = c.current
	c.current = active
	c.mu.Unlock()

	if previous != nil {
		_ = c.teardown(previous, domain.PhaseCompleted, domain.ReasonSessionLeft, false)
	}

	c.events.PhaseChanged(domain.PhaseReady, domain.ReasonSessionLoaded)
	return detail, nil
}

// Start acquires devices, connects the realtime channel, and begins the
// first question. It must follow a successful Initialize.
func (c *Coordinator) Start(ctx context.Context) error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}
	if phase := active.getPhase(); phase != domain.PhaseReady {
		return fmt.Errorf("interview cannot start from the %s phase", phase)
	}

	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	active.ctx = sessionCtx
	active.cancel = cancel

	channel, err := c.dialer.Dial(sessionCtx)
	if err != nil {
		cancel()
		c.fail(active, domain.ErrorCodeChannel, domain.ReasonChannelFailed, err)
		return err
	}
	active.channel = channel

	if err := channel.Join(active.sessionID); err != nil {
		_ = channel.Close()
		cancel()
		c.fail(active, domain.ErrorCodeChannel, domain.ReasonChannelFailed, err)
		return err
	}

	selection := c.defaultSelection(sessionCtx)
	if err := c.media.StartCapture(sessionCtx, selection); err != nil {
		_ = channel.Close()
		cancel()
		c.fail(active, domain.ErrorCodeDevice, domain.ReasonMediaFailed, err)
		return err
	}
	if err := c.media.StartRecording(sessionCtx); err != nil {
		_ = c.media.StopCapture()
		_ = channel.Close()
		cancel()
		c.fail(active, domain.ErrorCodeRecording, domain.ReasonMediaFailed, err)
		return err
	}

	question, err := c.api.StartSession(ctx, active.sessionID)
	if err != nil {
		_, _ = c.media.StopRecording()
		_ = c.media.StopCapture()
		_ = channel.Close()
		cancel()
		c.fail(active, domain.ErrorCodeNetwork, domain.ReasonSessionLoadFailed, err)
		return err
	}

	index := active.installQuestion(question)
	active.audioOn.Store(true)
	active.videoOn.Store(true)
	active.setPhase(domain.PhaseActive)

	if err := channel.StartVideoStream(active.sessionID, true, true); err != nil {
		c.log.WithError(err).Warn("video stream announcement failed")
	}
	if err := channel.UpdateSessionStatus(active.sessionID, "active"); err != nil {
		c.log.WithError(err).Warn("status update failed")
	}

	active.timerDone = make(chan struct{})
	active.relayDone = make(chan struct{})
	active.eventsDone = make(chan struct{})
	go c.timerLoop(active)
	go c.relayLoop(active)
	go c.consumeChannelEvents(active)

	c.events.PhaseChanged(domain.PhaseActive, domain.ReasonInterviewStarted)
	c.events.QuestionChanged(index, question)
	c.events.TimerTick(active.timeRemaining())
	return nil
}

// defaultSelection enumerates devices and picks the first camera and the
// first microphone. Enumeration failure falls back to an empty selection so
// the adapter uses its configured devices.
func (c *Coordinator) defaultSelection(ctx context.Context) domain.DeviceSelection {
	var selection domain.DeviceSelection
	devices, err := c.media.ListDevices(ctx)
	if err != nil {
		c.log.WithError(err).Warn("device enumeration failed, using configured defaults")
		return selection
	}
	for _, device := range devices {
		switch device.Kind {
		case domain.DeviceCamera:
			if selection.CameraID == "" {
				selection.CameraID = device.ID
			}
		case domain.DeviceMicrophone:
			if selection.MicrophoneID == "" {
				selection.MicrophoneID = device.ID
			}
		}
	}
	return selection
}

// Skip finishes the current question early and moves to the next one.
func (c *Coordinator) Skip(ctx context.Context) error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}
	return c.advance(ctx, active, domain.ReasonQuestionAdvanced)
}

// RequestHint asks the assistant for a hint grounded in what the candidate
// has said so far. The response arrives asynchronously over the channel.
func (c *Coordinator) RequestHint() error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}
	if active.channel == nil {
		return ErrNoActiveInterview
	}
	question, _ := active.currentQuestion()
	return active.channel.RequestAIResponse(active.sessionID, question.ID, active.transcript.Text(), domain.AIMessageHint)
}

// ToggleAudio flips the microphone mute flag and returns the new state.
// While muted, no audio chunks are relayed for transcription.
func (c *Coordinator) ToggleAudio() (bool, error) {
	active, err := c.getCurrent()
	if err != nil {
		return false, err
	}
	enabled := c.media.ToggleAudio()
	active.audioOn.Store(enabled)
	return enabled, nil
}

// ToggleVideo flips the camera mute flag and returns the new state.
func (c *Coordinator) ToggleVideo() (bool, error) {
	active, err := c.getCurrent()
	if err != nil {
		return false, err
	}
	enabled := c.media.ToggleVideo()
	active.videoOn.Store(enabled)
	return enabled, nil
}

// Phase reports the current interview phase, or loading when no interview
// has been initialized.
func (c *Coordinator) Phase() domain.SessionPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.PhaseLoading
	}
	return c.current.getPhase()
}

// Close tears the interview down. Every cleanup step is attempted even when
// earlier ones fail, and the combined error is returned.
func (c *Coordinator) Close() error {
	active, err := c.getCurrent()
	if err != nil {
		return nil
	}
	return c.teardown(active, domain.PhaseCompleted, domain.ReasonSessionLeft, true)
}

// advance finishes the current question and installs the next one. The
// single-shot guard makes concurrent calls (timer expiry racing a skip)
// collapse into one advancement.
func (c *Coordinator) advance(ctx context.Context, active *activeInterview, reason domain.PhaseReason) error {
	if active.getPhase() != domain.PhaseActive {
		return nil
	}
	if !active.advancing.CompareAndSwap(false, true) {
		return nil
	}

	question, _ := active.currentQuestion()
	transcript := active.transcript.Text()

	// The response is saved and the interview advances even when
	// persistence partially fails; losing one answer must not strand
	// the candidate on a finished question. Recording runs continuously
	// across questions and is only finalized on completion.
	if err := c.api.SaveResponse(ctx, active.sessionID, question.ID, transcript); err != nil {
		c.events.SessionError(domain.ErrorCodeNetwork, err.Error())
	}

	next, err := c.api.NextQuestion(ctx, active.sessionID)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeNetwork, err.Error())
		active.advancing.Store(false)
		return err
	}

	if next.Completed {
		return c.complete(ctx, active, question.ID)
	}

	active.transcript.Reset()
	index := active.installQuestion(next.Question)
	active.advancing.Store(false)

	c.events.QuestionChanged(index, next.Question)
	c.events.TimerTick(active.timeRemaining())
	c.events.PhaseChanged(domain.PhaseActive, reason)
	return nil
}

func (c *Coordinator) uploadRecording(ctx context.Context, active *activeInterview, questionID int64, blob domain.RecordingBlob) {
	if blob.Empty() {
		return
	}
	_, err := c.api.UploadRecording(ctx, domain.RecordingUpload{
		SessionID:  active.sessionID,
		QuestionID: questionID,
		Type:       "video",
		Blob:       blob,
	})
	if err != nil {
		c.events.SessionError(domain.ErrorCodeNetwork, err.Error())
		return
	}
	if active.channel != nil {
		if err := active.channel.SendRecordingMetadata(active.sessionID, questionID, "video", len(blob.Data), blob.MimeType); err != nil {
			c.log.WithError(err).Warn("recording metadata notification failed")
		}
	}
}

// complete is the terminal happy path: finalize the single continuous
// recording, upload it, and tear down. The guard is deliberately left
// claimed so no further advancement is possible.
func (c *Coordinator) complete(ctx context.Context, active *activeInterview, questionID int64) error {
	blob, err := c.media.StopRecording()
	if err != nil {
		c.events.SessionError(domain.ErrorCodeRecording, err.Error())
	} else {
		c.uploadRecording(ctx, active, questionID, blob)
	}
	if active.channel != nil {
		if err := active.channel.UpdateSessionStatus(active.sessionID, "completed"); err != nil {
			c.log.WithError(err).Warn("status update failed")
		}
	}
	return c.teardown(active, domain.PhaseCompleted, domain.ReasonInterviewCompleted, true)
}

func (c *Coordinator) fail(active *activeInterview, code domain.ErrorCode, reason domain.PhaseReason, err error) {
	c.events.SessionError(code, err.Error())
	if active.setPhase(domain.PhaseError) {
		c.events.PhaseChanged(domain.PhaseError, reason)
	}
	c.mu.Lock()
	if c.current == active {
		c.current = nil
	}
	c.mu.Unlock()
}

// teardown runs the full cleanup ladder in strict order: stop the timer and
// chunk loops first, then recording, capture, stream, leave, and channel
// close. Every step runs regardless of earlier failures.
func (c *Coordinator) teardown(active *activeInterview, phase domain.SessionPhase, reason domain.PhaseReason, emit bool) error {
	active.closeOnce.Do(func() {
		var errs []error

		// Claim the advance guard and flip the phase before anything
		// else. A timer expiry landing mid-cleanup must not start an
		// advance for a session that is already being left.
		active.advancing.Store(true)
		changed := active.setPhase(phase)

		if active.cancel != nil {
			active.cancel()
		}
		if active.timerDone != nil {
			<-active.timerDone
		}
		if active.relayDone != nil {
			<-active.relayDone
		}

		if _, err := c.media.StopRecording(); err != nil {
			errs = append(errs, fmt.Errorf("stop recording: %w", err))
		}
		if err := c.media.StopCapture(); err != nil {
			errs = append(errs, fmt.Errorf("stop capture: %w", err))
		}
		if active.channel != nil {
			if err := active.channel.StopVideoStream(active.sessionID); err != nil {
				c.log.WithError(err).Debug("video stream stop notification failed")
			}
			if err := active.channel.Leave(active.sessionID); err != nil {
				errs = append(errs, fmt.Errorf("leave session: %w", err))
			}
			if err := active.channel.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close channel: %w", err))
			}
		}

		// The events goroutine only exits once the channel closes, so
		// it is joined after the channel close above.
		if active.eventsDone != nil {
			<-active.eventsDone
		}

		c.mu.Lock()
		if c.current == active {
			c.current = nil
		}
		c.mu.Unlock()

		if emit && changed {
			c.events.PhaseChanged(phase, reason)
		}
		active.closeErr = errors.Join(errs...)
	})
	return active.closeErr
}

func (c *Coordinator) getCurrent() (*activeInterview, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoActiveInterview
	}
	return c.current, nil
}

// timerLoop drives the per-question countdown. Hitting zero behaves exactly
// like a manual skip.
func (c *Coordinator) timerLoop(active *activeInterview) {
	defer close(active.timerDone)

	ticker := time.NewTicker(c.cfg.TimerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-active.ctx.Done():
			return
		case <-ticker.C:
			remaining := active.tick()
			if remaining < 0 {
				continue
			}
			c.events.TimerTick(remaining)
			if remaining == 0 {
				// Advancement may tear the whole interview down, which
				// in turn waits for this loop to exit. Run it off the
				// timer goroutine so that wait can complete.
				go func() {
					if err := c.advance(active.ctx, active, domain.ReasonTimerExpired); err != nil {
						c.log.WithError(err).Warn("timed advancement failed")
					}
				}()
			}
		}
	}
}

// relayLoop periodically captures a short audio chunk and ships it over the
// channel for live transcription. Muted audio suspends relaying without
// stopping the loop.
func (c *Coordinator) relayLoop(active *activeInterview) {
	defer close(active.relayDone)

	ticker := time.NewTicker(c.cfg.ChunkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-active.ctx.Done():
			return
		case <-ticker.C:
			if !active.audioOn.Load() {
				continue
			}
			chunk, err := c.media.CaptureChunk(active.ctx, c.cfg.ChunkDuration)
			if err != nil {
				if active.ctx.Err() != nil {
					return
				}
				c.log.WithError(err).Warn("audio chunk capture failed")
				continue
			}
			if err := active.channel.SendAudioData(active.sessionID, chunk.Data, chunk.Timestamp); err != nil {
				if active.ctx.Err() != nil {
					return
				}
				c.log.WithError(err).Warn("audio chunk relay failed")
			}
		}
	}
}

func (c *Coordinator) consumeChannelEvents(active *activeInterview) {
	defer close(active.eventsDone)

	for event := range active.channel.Events() {
		switch event.Name {
		case domain.EventTranscriptUpdate:
			active.transcript.Append(event.Text)
			c.events.TranscriptFragment(event.Text)
		case domain.EventAIResponse:
			if event.AI != nil {
				c.events.AIMessageReceived(*event.AI)
			}
		case domain.EventError:
			c.events.SessionError(domain.ErrorCodeChannel, event.Message)
		}
	}

	// The events channel closing mid-interview means the connection died.
	// Teardown waits for this goroutine, so it runs detached.
	if active.ctx.Err() == nil && !active.getPhase().Terminal() {
		c.events.SessionError(domain.ErrorCodeChannel, "realtime connection closed")
		go func() {
			_ = c.teardown(active, domain.PhaseError, domain.ReasonChannelFailed, true)
		}()
	}
}
