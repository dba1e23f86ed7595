package export

import (
	"strings"
	"testing"
)

func TestGenerateEDL_SingleClip(t *testing.T) {
	clips := []EDLClip{{
		Name:      "Intro",
		MediaPath: "https://cdn/intro.mp4",
		Start:     0,
		End:       2,
	}}

	edl := GenerateEDL(clips, "Project One", 30.0)

	for _, want := range []string{
		"TITLE: Project One",
		"FCM: NON-DROP FRAME",
		"001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00",
		"* FROM CLIP NAME:  Intro",
		"* MEDIA PATH:  https://cdn/intro.mp4",
	} {
		if !strings.Contains(edl, want) {
			t.Fatalf("EDL missing %q:\n%s", want, edl)
		}
	}
}

func TestGenerateEDL_RecordOffsets(t *testing.T) {
	clips := []EDLClip{
		{Name: "A", MediaPath: "/a.mp4", Start: 10, End: 11},
		{Name: "B", MediaPath: "/a.mp4", Start: 3, End: 4.5},
	}

	edl := GenerateEDL(clips, "Multi", 30.0)

	if !strings.Contains(edl, "001  AX       V     C        00:00:10:00 00:00:11:00 00:00:00:00 00:00:01:00") {
		t.Fatalf("first event mismatch:\n%s", edl)
	}
	if !strings.Contains(edl, "002  AX       V     C        00:00:03:00 00:00:04:15 00:00:01:00 00:00:02:15") {
		t.Fatalf("second event mismatch or bad record offset:\n%s", edl)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	edl := GenerateEDL([]EDLClip{{Name: "c", MediaPath: "/x.mp4", Start: 0, End: 1}}, "Drop", 29.97)

	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got:\n%s", edl)
	}
}

func TestTimecode(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		fps     int
		want    string
	}{
		{"zero", 0, 30, "00:00:00:00"},
		{"one second", 1, 30, "00:00:01:00"},
		{"half second", 0.5, 30, "00:00:00:15"},
		{"one minute", 60, 30, "00:01:00:00"},
		{"one hour", 3600, 25, "01:00:00:00"},
		{"negative", -4, 30, "00:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Timecode(tc.seconds, tc.fps); got != tc.want {
				t.Fatalf("Timecode(%v, %d) = %q, want %q", tc.seconds, tc.fps, got, tc.want)
			}
		})
	}
}

func TestClipName(t *testing.T) {
	if got := ClipName("beach day.mp4", 0); got != "beach day_clip_001" {
		t.Fatalf("ClipName = %q", got)
	}
	if got := ClipName("noext", 11); got != "noext_clip_012" {
		t.Fatalf("ClipName = %q", got)
	}
}
