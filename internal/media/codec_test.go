package media

import "testing"

func TestSelectProfilePicksFirstSupported(t *testing.T) {
	t.Parallel()

	profiles := DefaultProfiles()

	all := func(string) bool { return true }
	for i := 0; i < 5; i++ {
		selected, err := SelectProfile(profiles, all)
		if err != nil {
			t.Fatalf("select failed: %v", err)
		}
		if selected.Name != "vp9-opus" {
			t.Fatalf("expected first profile, got %q", selected.Name)
		}
	}
}

func TestSelectProfileNeverSkipsSupportedEntry(t *testing.T) {
	t.Parallel()

	profiles := DefaultProfiles()
	supported := map[string]bool{
		"libvpx":    true,
		"libopus":   true,
		"libvorbis": true,
		"libx264":   true,
		"aac":       true,
	}

	selected, err := SelectProfile(profiles, func(name string) bool { return supported[name] })
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if selected.Name != "vp8-opus" {
		t.Fatalf("expected vp8-opus when vp9 is missing, got %q", selected.Name)
	}
}

func TestSelectProfileFallsThroughToBaseline(t *testing.T) {
	t.Parallel()

	selected, err := SelectProfile(DefaultProfiles(), func(name string) bool {
		return name == "libx264" || name == "aac"
	})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if selected.Name != "mp4" {
		t.Fatalf("expected mp4 baseline, got %q", selected.Name)
	}
}

func TestSelectProfileNoSupportIsError(t *testing.T) {
	t.Parallel()

	if _, err := SelectProfile(DefaultProfiles(), func(string) bool { return false }); err == nil {
		t.Fatalf("expected error with no supported encoders")
	}
}

func TestParseEncoderList(t *testing.T) {
	t.Parallel()

	out := []byte(`Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D libopus              libopus Opus
 A....D aac                  AAC (Advanced Audio Coding)
`)

	set := parseEncoderList(out)
	for _, name := range []string{"libvpx-vp9", "libopus", "aac"} {
		if _, ok := set[name]; !ok {
			t.Fatalf("expected encoder %q in set", name)
		}
	}
	if _, ok := set["Video"]; ok {
		t.Fatalf("legend rows should not be parsed as encoders")
	}
}
