package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"interviewkit/internal/domain"
	"interviewkit/internal/ports"
)

const writeTimeout = 10 * time.Second

// Dialer opens realtime channels against the interview backend.
type Dialer struct {
	socketURL string
	log       *logrus.Entry
}

func NewDialer(socketURL string, log *logrus.Entry) *Dialer {
	return &Dialer{socketURL: socketURL, log: log}
}

// Dial connects the websocket and starts the read loop. The caller owns the
// returned channel for the session's lifetime.
func (d *Dialer) Dial(ctx context.Context) (ports.RealtimeChannel, error) {
	if strings.TrimSpace(d.socketURL) == "" {
		return nil, errors.New("socket URL is not configured")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to interview channel: %w", err)
	}

	ch := &Channel{
		conn:   conn,
		log:    d.log,
		events: make(chan domain.ChannelEvent, 64),
		done:   make(chan struct{}),
	}
	go ch.readLoop()
	return ch, nil
}

// Channel is a thin named-event wrapper over one websocket connection. It
// forwards emits and decodes server events; it buffers nothing and never
// retries.
type Channel struct {
	conn *websocket.Conn
	log  *logrus.Entry

	events chan domain.ChannelEvent
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

// envelope is the wire framing for both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (c *Channel) Join(sessionID string) error {
	return c.emit("join_interview", map[string]string{"session_id": sessionID})
}

func (c *Channel) Leave(sessionID string) error {
	return c.emit("leave_interview", map[string]string{"session_id": sessionID})
}

func (c *Channel) SendAudioData(sessionID string, audio []byte, ts time.Time) error {
	return c.emit("audio_data", map[string]any{
		"session_id": sessionID,
		"audio_data": base64.StdEncoding.EncodeToString(audio),
		"timestamp":  ts.UnixMilli(),
	})
}

func (c *Channel) SendTranscriptSegment(sessionID string, questionID int64, text string, confidence float64, start, end float64) error {
	return c.emit("transcript_segment", map[string]any{
		"session_id":  sessionID,
		"question_id": questionID,
		"text":        text,
		"confidence":  confidence,
		"start_time":  start,
		"end_time":    end,
	})
}

func (c *Channel) RequestAIResponse(sessionID string, questionID int64, transcriptContext string, kind domain.AIMessageKind) error {
	return c.emit("ai_response_request", map[string]any{
		"session_id":         sessionID,
		"question_id":        questionID,
		"transcript_context": transcriptContext,
		"type":               string(kind),
	})
}

func (c *Channel) StartVideoStream(sessionID string, video, audio bool) error {
	return c.emit("video_stream_start", map[string]any{
		"session_id": sessionID,
		"config":     map[string]bool{"video": video, "audio": audio},
	})
}

func (c *Channel) StopVideoStream(sessionID string) error {
	return c.emit("video_stream_stop", map[string]string{"session_id": sessionID})
}

func (c *Channel) SendRecordingMetadata(sessionID string, questionID int64, recordingType string, sizeBytes int, mimeType string) error {
	return c.emit("recording_metadata", map[string]any{
		"session_id":  sessionID,
		"question_id": questionID,
		"type":        recordingType,
		"file_info": map[string]any{
			"size_bytes": sizeBytes,
			"mime_type":  mimeType,
		},
	})
}

func (c *Channel) UpdateSessionStatus(sessionID string, status string) error {
	return c.emit("session_status_update", map[string]string{
		"session_id": sessionID,
		"status":     status,
	})
}

func (c *Channel) Events() <-chan domain.ChannelEvent {
	return c.events
}

func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
	<-c.done
	return c.waitErr()
}

func (c *Channel) emit(event string, data any) error {
	select {
	case <-c.done:
		if err := c.waitErr(); err != nil {
			return err
		}
		return errors.New("channel closed")
	default:
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(envelope{Event: event, Data: payload}); err != nil {
		return fmt.Errorf("failed to emit %s: %w", event, err)
	}
	return nil
}

func (c *Channel) readLoop() {
	defer func() {
		close(c.events)
		close(c.done)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.setErr(err)
			return
		}

		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			c.log.WithError(err).Debug("discarding undecodable channel frame")
			continue
		}

		event, ok := decodeEvent(env)
		if !ok {
			continue
		}
		c.dispatch(event)
	}
}

// dispatch forwards without blocking; a full buffer drops the event, keeping
// the read loop live. Transcription is best-effort by contract.
func (c *Channel) dispatch(event domain.ChannelEvent) {
	select {
	case c.events <- event:
	default:
		c.log.WithField("event", event.Name).Warn("event buffer full, dropping")
	}
}

func (c *Channel) waitErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Channel) setErr(err error) {
	if err == nil || errors.Is(err, net.ErrClosed) {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Server payload shapes for the events the coordinator consumes.
type transcriptPayload struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type aiResponsePayload struct {
	Response struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	} `json:"response"`
}

type statusPayload struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func decodeEvent(env envelope) (domain.ChannelEvent, bool) {
	event := domain.ChannelEvent{Name: env.Event}

	switch env.Event {
	case domain.EventTranscriptUpdate:
		var p transcriptPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return domain.ChannelEvent{}, false
		}
		event.SessionID = p.SessionID
		event.Text = p.Text

	case domain.EventAIResponse:
		var p aiResponsePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return domain.ChannelEvent{}, false
		}
		received := time.Now()
		if ts, err := time.Parse(time.RFC3339, p.Response.Timestamp); err == nil {
			received = ts
		}
		event.AI = &domain.AIMessage{
			Kind:       domain.AIMessageKind(p.Response.Type),
			Message:    p.Response.Message,
			ReceivedAt: received,
		}

	case domain.EventError:
		var p statusPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return domain.ChannelEvent{}, false
		}
		event.Message = p.Message

	case domain.EventJoinedInterview, domain.EventLeftInterview,
		domain.EventSessionStatusUpdated, domain.EventRecordingSaved,
		domain.EventVideoStreamStarted, domain.EventVideoStreamStopped:
		var p statusPayload
		if len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &p)
		}
		event.SessionID = p.SessionID
		event.Status = p.Status
		event.Message = p.Message

	default:
		return domain.ChannelEvent{}, false
	}

	return event, true
}
