package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"interviewkit/internal/domain"
)

// ListDevices enumerates capture sources for both configured input formats.
// A microphone listing failure and a camera listing failure together are an
// enumeration error; one missing kind degrades to the other.
func (a *Adapter) ListDevices(ctx context.Context) ([]domain.DeviceInfo, error) {
	mics, micErr := a.listSources(ctx, a.cfg.AudioInputFormat, domain.DeviceMicrophone)
	cams, camErr := a.listSources(ctx, a.cfg.VideoInputFormat, domain.DeviceCamera)

	if micErr != nil && camErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceEnumeration, micErr)
	}
	if micErr != nil {
		a.log.WithField("format", a.cfg.AudioInputFormat).WithError(micErr).Warn("microphone enumeration failed")
	}
	if camErr != nil {
		a.log.WithField("format", a.cfg.VideoInputFormat).WithError(camErr).Warn("camera enumeration failed")
	}

	devices := make([]domain.DeviceInfo, 0, len(cams)+len(mics))
	devices = append(devices, cams...)
	devices = append(devices, mics...)
	return devices, nil
}

func (a *Adapter) listSources(ctx context.Context, format string, kind domain.DeviceKind) ([]domain.DeviceInfo, error) {
	cmd := exec.CommandContext(ctx, a.command, "-hide_banner", "-sources", format)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("listing %s sources: %w: %s", format, err, trimmed(stderr.String()))
	}
	return parseSourceList(stdout.Bytes(), kind), nil
}

// parseSourceList reads ffmpeg "-sources" output. Each device line carries an
// identifier followed by a bracketed label; a leading "*" marks the default.
func parseSourceList(out []byte, kind domain.DeviceKind) []domain.DeviceInfo {
	var devices []domain.DeviceInfo
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))

		id := line
		label := ""
		if open := strings.Index(line, "["); open > 0 {
			id = strings.TrimSpace(line[:open])
			label = strings.TrimSuffix(strings.TrimSpace(line[open+1:]), "]")
		}
		if id == "" {
			continue
		}
		if label == "" {
			label = id
		}
		devices = append(devices, domain.DeviceInfo{ID: id, Label: label, Kind: kind})
	}
	return devices
}
