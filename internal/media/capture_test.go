package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"interviewkit/internal/domain"
	"interviewkit/internal/ports"
)

const encoderBranch = `for a in "$@"; do
  if [ "$a" = "-encoders" ]; then
    echo " V....D libvpx-vp9           libvpx VP9"
    echo " A....D libopus              libopus Opus"
    exit 0
  fi
done
`

func TestAdapterRecordingLifecycle(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "capture.sh",
		"#!/usr/bin/env bash\n"+encoderBranch+
			"for i in $(seq 1 40); do printf 'x'; sleep 0.02; done\n")
	adapter := newTestAdapter(script, 20*time.Millisecond)

	if err := adapter.StartCapture(context.Background(), domain.DeviceSelection{}); err != nil {
		t.Fatalf("start capture failed: %v", err)
	}
	if err := adapter.StartRecording(context.Background()); err != nil {
		t.Fatalf("start recording failed: %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	blob, err := adapter.StopRecording()
	if err != nil {
		t.Fatalf("stop recording failed: %v", err)
	}
	if blob.Empty() {
		t.Fatalf("expected recorded bytes")
	}
	if blob.MimeType != "video/webm;codecs=vp9,opus" {
		t.Fatalf("unexpected mime type: %q", blob.MimeType)
	}
	if blob.Duration <= 0 {
		t.Fatalf("expected positive duration, got %v", blob.Duration)
	}

	if err := adapter.StopCapture(); err != nil {
		t.Fatalf("stop capture failed: %v", err)
	}
	if err := adapter.StopCapture(); err != nil {
		t.Fatalf("stop capture should be idempotent: %v", err)
	}
}

func TestAdapterStartRecordingImpliesCapture(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "capture.sh",
		"#!/usr/bin/env bash\n"+encoderBranch+"printf 'y'\nsleep 2\n")
	adapter := newTestAdapter(script, 20*time.Millisecond)
	defer adapter.StopCapture()

	if err := adapter.StartRecording(context.Background()); err != nil {
		t.Fatalf("start recording failed: %v", err)
	}
}

func TestAdapterStopRecordingWithoutRecordingIsNoop(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "capture.sh",
		"#!/usr/bin/env bash\n"+encoderBranch+"printf 'y'\nsleep 2\n")
	adapter := newTestAdapter(script, time.Second)

	// No stream at all.
	blob, err := adapter.StopRecording()
	if err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if !blob.Empty() {
		t.Fatalf("expected empty blob")
	}

	// Stream live but nothing recording.
	if err := adapter.StartCapture(context.Background(), domain.DeviceSelection{}); err != nil {
		t.Fatalf("start capture failed: %v", err)
	}
	defer adapter.StopCapture()

	blob, err = adapter.StopRecording()
	if err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if !blob.Empty() {
		t.Fatalf("expected empty blob with no active recording")
	}
}

func TestAdapterStartCaptureClassifiesPermissionFailure(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "denied.sh",
		"#!/usr/bin/env bash\n"+encoderBranch+
			"echo 'default: Permission denied' 1>&2\nexit 1\n")
	adapter := newTestAdapter(script, time.Second)

	err := adapter.StartCapture(context.Background(), domain.DeviceSelection{})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestAdapterStartCaptureClassifiesMissingDevice(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "missing.sh",
		"#!/usr/bin/env bash\n"+encoderBranch+
			"echo '/dev/video9: No such device' 1>&2\nexit 1\n")
	adapter := newTestAdapter(script, time.Second)

	err := adapter.StartCapture(context.Background(), domain.DeviceSelection{CameraID: "/dev/video9"})
	if !errors.Is(err, domain.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable, got %v", err)
	}
}

func TestAdapterCaptureChunk(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "chunk.sh",
		"#!/usr/bin/env bash\n"+encoderBranch+"printf 'opus-bytes'\n")
	adapter := newTestAdapter(script, time.Second)

	chunk, err := adapter.CaptureChunk(context.Background(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("capture chunk failed: %v", err)
	}
	if string(chunk.Data) != "opus-bytes" {
		t.Fatalf("unexpected chunk data: %q", string(chunk.Data))
	}
	if chunk.MimeType != "audio/webm;codecs=opus" {
		t.Fatalf("unexpected mime type: %q", chunk.MimeType)
	}
	if chunk.Duration != 100*time.Millisecond {
		t.Fatalf("unexpected duration: %v", chunk.Duration)
	}
}

func TestAdapterCaptureChunkEmptyOutputIsError(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "silent.sh", "#!/usr/bin/env bash\n"+encoderBranch+"exit 0\n")
	adapter := newTestAdapter(script, time.Second)

	if _, err := adapter.CaptureChunk(context.Background(), 50*time.Millisecond); !errors.Is(err, domain.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable for empty output, got %v", err)
	}
}

func TestAdapterToggles(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "noop.sh", "#!/usr/bin/env bash\nexit 0\n")
	adapter := newTestAdapter(script, time.Second)

	if on := adapter.ToggleAudio(); on {
		t.Fatalf("expected audio off after first toggle")
	}
	if on := adapter.ToggleAudio(); !on {
		t.Fatalf("expected audio back on")
	}
	if on := adapter.ToggleVideo(); on {
		t.Fatalf("expected video off after first toggle")
	}
}

func newTestAdapter(command string, flush time.Duration) *Adapter {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAdapter(command, ports.CaptureConfig{
		VideoInputFormat: "v4l2",
		AudioInputFormat: "pulse",
		CameraDevice:     "/dev/video0",
		MicrophoneDevice: "default",
		Width:            1280,
		Height:           720,
		FrameRate:        30,
		SampleRate:       16000,
		Channels:         1,
	}, flush, logrus.NewEntry(logger))
}

func writeScript(t *testing.T, name string, contents string) string {
	t.Helper()
	if !strings.HasPrefix(contents, "#!") {
		t.Fatalf("script %q must start with a shebang", name)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}
