package media

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CodecProfile is one entry in the recording codec preference list.
type CodecProfile struct {
	Name       string
	MimeType   string
	Container  string
	VideoCodec string
	AudioCodec string
}

func (p CodecProfile) encoders() []string {
	return []string{p.VideoCodec, p.AudioCodec}
}

// DefaultProfiles returns the ordered codec preference list: VP9+Opus, then
// VP8+Opus, then a plain WebM pairing, then an MP4 baseline.
func DefaultProfiles() []CodecProfile {
	return []CodecProfile{
		{
			Name:       "vp9-opus",
			MimeType:   "video/webm;codecs=vp9,opus",
			Container:  "webm",
			VideoCodec: "libvpx-vp9",
			AudioCodec: "libopus",
		},
		{
			Name:       "vp8-opus",
			MimeType:   "video/webm;codecs=vp8,opus",
			Container:  "webm",
			VideoCodec: "libvpx",
			AudioCodec: "libopus",
		},
		{
			Name:       "webm",
			MimeType:   "video/webm",
			Container:  "webm",
			VideoCodec: "libvpx",
			AudioCodec: "libvorbis",
		},
		{
			Name:       "mp4",
			MimeType:   "video/mp4",
			Container:  "mp4",
			VideoCodec: "libx264",
			AudioCodec: "aac",
		},
	}
}

var errNoSupportedProfile = errors.New("no supported codec profile")

// SelectProfile picks the first profile whose encoders are all supported.
// Selection is deterministic: a later profile is never chosen over an
// earlier supported one.
func SelectProfile(profiles []CodecProfile, supported func(string) bool) (CodecProfile, error) {
	for _, profile := range profiles {
		ok := true
		for _, encoder := range profile.encoders() {
			if !supported(encoder) {
				ok = false
				break
			}
		}
		if ok {
			return profile, nil
		}
	}
	return CodecProfile{}, errNoSupportedProfile
}

// encoderProbe discovers which encoders the local ffmpeg build carries.
// The probe runs once and caches the result.
type encoderProbe struct {
	command string

	once sync.Once
	set  map[string]struct{}
	err  error
}

func newEncoderProbe(command string) *encoderProbe {
	return &encoderProbe{command: command}
}

func (p *encoderProbe) Supported(name string) bool {
	p.once.Do(p.run)
	if p.err != nil {
		return false
	}
	_, ok := p.set[name]
	return ok
}

func (p *encoderProbe) run() {
	out, err := exec.Command(p.command, "-hide_banner", "-encoders").Output()
	if err != nil {
		p.err = fmt.Errorf("encoder probe failed: %w", err)
		return
	}
	p.set = parseEncoderList(out)
}

func parseEncoderList(out []byte) map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		// Encoder rows start with a capability column like "V....D"; the
		// legend at the top reuses the same column with "=" rows.
		flags := fields[0]
		if flags[0] != 'V' && flags[0] != 'A' && flags[0] != 'S' {
			continue
		}
		if fields[1] == "=" {
			continue
		}
		set[fields[1]] = struct{}{}
	}
	return set
}
