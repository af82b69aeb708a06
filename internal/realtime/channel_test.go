package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"interviewkit/internal/domain"
)

func TestChannelEmitAndReceive(t *testing.T) {
	t.Parallel()

	received := make(chan envelope, 8)
	server := newEchoServer(t, func(conn *websocket.Conn) {
		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			received <- env

			switch env.Event {
			case "join_interview":
				writeEvent(conn, "joined_interview", map[string]string{
					"session_id": "s1", "status": "pending",
				})
			case "audio_data":
				writeEvent(conn, "transcript_update", map[string]string{
					"session_id": "s1", "text": "hello world",
				})
			case "ai_response_request":
				writeEvent(conn, "ai_response", map[string]any{
					"response": map[string]string{
						"type":      "hint",
						"message":   "Think about tradeoffs.",
						"timestamp": "2026-09-01T10:00:00Z",
					},
				})
			}
		}
	})
	defer server.Close()

	ch := dialTest(t, server.URL)
	defer ch.Close()

	if err := ch.Join("s1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	joined := nextEvent(t, ch)
	if joined.Name != domain.EventJoinedInterview || joined.SessionID != "s1" {
		t.Fatalf("unexpected joined event: %+v", joined)
	}

	if err := ch.SendAudioData("s1", []byte("pcm"), time.Now()); err != nil {
		t.Fatalf("send audio failed: %v", err)
	}
	transcript := nextEvent(t, ch)
	if transcript.Name != domain.EventTranscriptUpdate || transcript.Text != "hello world" {
		t.Fatalf("unexpected transcript event: %+v", transcript)
	}

	if err := ch.RequestAIResponse("s1", 7, "so far", domain.AIMessageHint); err != nil {
		t.Fatalf("ai request failed: %v", err)
	}
	ai := nextEvent(t, ch)
	if ai.Name != domain.EventAIResponse || ai.AI == nil {
		t.Fatalf("unexpected ai event: %+v", ai)
	}
	if ai.AI.Kind != domain.AIMessageHint || ai.AI.Message != "Think about tradeoffs." {
		t.Fatalf("unexpected ai message: %+v", ai.AI)
	}
	if ai.AI.ReceivedAt.UTC().Hour() != 10 {
		t.Fatalf("expected server timestamp to be preserved, got %v", ai.AI.ReceivedAt)
	}

	// The audio payload must cross the wire base64-encoded with its session.
	drainUntil(t, received, func(env envelope) bool {
		if env.Event != "audio_data" {
			return false
		}
		var p struct {
			SessionID string `json:"session_id"`
			AudioData string `json:"audio_data"`
		}
		if err := json.Unmarshal(env.Data, &p); err != nil {
			t.Fatalf("bad audio payload: %v", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(p.AudioData)
		if err != nil {
			t.Fatalf("audio payload is not base64: %v", err)
		}
		if p.SessionID != "s1" || string(decoded) != "pcm" {
			t.Fatalf("unexpected audio payload: %+v", p)
		}
		return true
	})
}

func TestChannelSurfacesServerError(t *testing.T) {
	t.Parallel()

	server := newEchoServer(t, func(conn *websocket.Conn) {
		writeEvent(conn, "error", map[string]string{"message": "Invalid session ID"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ch := dialTest(t, server.URL)
	defer ch.Close()

	event := nextEvent(t, ch)
	if event.Name != domain.EventError || event.Message != "Invalid session ID" {
		t.Fatalf("unexpected error event: %+v", event)
	}
}

func TestChannelCloseEndsEventStream(t *testing.T) {
	t.Parallel()

	server := newEchoServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ch := dialTest(t, server.URL)
	if err := ch.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("close should be idempotent: %v", err)
	}

	if _, open := <-ch.Events(); open {
		t.Fatalf("expected events channel to be closed")
	}

	if err := ch.Join("s1"); err == nil {
		t.Fatalf("expected emit after close to fail")
	}
}

func TestChannelIgnoresUnknownEvents(t *testing.T) {
	t.Parallel()

	server := newEchoServer(t, func(conn *websocket.Conn) {
		writeEvent(conn, "mystery_event", map[string]string{"x": "y"})
		writeEvent(conn, "transcript_update", map[string]string{"text": "after"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	ch := dialTest(t, server.URL)
	defer ch.Close()

	event := nextEvent(t, ch)
	if event.Name != domain.EventTranscriptUpdate || event.Text != "after" {
		t.Fatalf("expected unknown event to be skipped, got %+v", event)
	}
}

func newEchoServer(t *testing.T, handle func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
}

func dialTest(t *testing.T, httpURL string) *Channel {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dialer := NewDialer("ws"+strings.TrimPrefix(httpURL, "http"), logrus.NewEntry(logger))
	ch, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return ch.(*Channel)
}

func nextEvent(t *testing.T, ch *Channel) domain.ChannelEvent {
	t.Helper()
	select {
	case event, open := <-ch.Events():
		if !open {
			t.Fatalf("events channel closed unexpectedly")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for channel event")
		return domain.ChannelEvent{}
	}
}

func drainUntil(t *testing.T, received chan envelope, match func(envelope) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case env := <-received:
			if match(env) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for expected frame")
		}
	}
}

func writeEvent(conn *websocket.Conn, event string, data any) {
	payload, _ := json.Marshal(data)
	_ = conn.WriteJSON(envelope{Event: event, Data: payload})
}
