package ui

import "testing"

func TestStatusLine(t *testing.T) {
	tests := []struct {
		uploads, exports int
		want             string
	}{
		{0, 0, "Status: Idle"},
		{2, 0, "Status: Uploading (2)"},
		{0, 1, "Status: Exporting (1)"},
		{1, 3, "Status: Uploading (1), Exporting (3)"},
	}
	for _, tt := range tests {
		if got := statusLine(tt.uploads, tt.exports); got != tt.want {
			t.Errorf("statusLine(%d, %d) = %q, want %q", tt.uploads, tt.exports, got, tt.want)
		}
	}
}

func TestSessionsLine(t *testing.T) {
	if got := sessionsLine(1); got != "1 session open" {
		t.Errorf("sessionsLine(1) = %q", got)
	}
	if got := sessionsLine(0); got != "0 sessions open" {
		t.Errorf("sessionsLine(0) = %q", got)
	}
}

func TestIconIsPNG(t *testing.T) {
	if len(iconBytes) < 8 || string(iconBytes[1:4]) != "PNG" {
		t.Fatal("iconBytes is not a PNG")
	}
}
